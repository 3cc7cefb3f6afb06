// Package mp4 cuts MP4 and QuickTime files at a point in time without touching the
// media data.
package mp4

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/deepch/vdk/utils/bits/pio"
	"github.com/ugparu/mp4split/format/mp4/mp4io"
	"github.com/ugparu/mp4split/utils/logger"
)

// ErrSameFile is returned by SplitFile when the output is the input file.
var ErrSameFile = errors.New("mp4: output is the input file")

// Cut returns a file that starts at start. f must come straight from mp4io.ReadFile:
// its chunk offsets are positions in the stream its media data refers to. The returned
// file shares that stream and has its chunk offsets rewritten for mp4io.WriteFile.
func Cut(f *mp4io.File, start time.Duration) (*mp4io.File, error) {
	oldFirst, ok := f.Movie.FirstDataOffset()
	if !ok {
		return nil, fmt.Errorf("%w: no track has a chunk", mp4io.ErrOutOfRange)
	}

	moov, err := f.Movie.Cut(start)
	if err != nil {
		return nil, err
	}
	newFirst, ok := moov.FirstDataOffset()
	if !ok || newFirst < oldFirst {
		return nil, fmt.Errorf("%w: cut moved the first chunk from %d to %d", mp4io.ErrOutOfRange, oldFirst, newFirst)
	}
	skip := newFirst - oldFirst

	md, err := f.MediaData.Cut(skip)
	if err != nil {
		return nil, err
	}
	out := &mp4io.File{Movie: moov, MediaData: md}
	if f.FileType != nil {
		out.FileType = f.FileType.Clone()
	}

	// Sizes are final from here on, so every offset moves by the same amount.
	oldStart := f.MediaData.DataOffset()
	newStart := int64(out.DataOffset())
	reduction := int64(skip) + (oldStart - newStart)
	logger.Debugf("mp4.Cut", "start=%s skip=%d moov %d->%d reduction=%d",
		start, skip, f.Movie.Len(), moov.Len(), reduction)

	if err = moov.FixupOffsets(reduction); err != nil {
		return nil, err
	}
	return out, nil
}

// Split parses r, cuts it at start and writes the result to w.
func Split(r io.ReadSeeker, w io.Writer, start time.Duration) error {
	f, err := mp4io.ReadFile(r)
	if err != nil {
		return err
	}
	cut, err := Cut(f, start)
	if err != nil {
		return err
	}
	return mp4io.WriteFile(w, cut)
}

// Splitter cuts one input file. The input is parsed once by Probe and can then be
// split at any number of points.
type Splitter struct {
	r    *os.File
	file *mp4io.File
	url  string
}

func NewSplitter(url string) *Splitter {
	return &Splitter{url: url}
}

// Probe opens and parses the input. It is called by Split when needed.
func (s *Splitter) Probe() (*mp4io.File, error) {
	if s.file != nil {
		return s.file, nil
	}
	if s.r == nil {
		r, err := os.Open(s.url)
		if err != nil {
			return nil, err
		}
		s.r = r
	}
	f, err := mp4io.ReadFile(s.r)
	if err != nil {
		return nil, err
	}
	logger.Debugf(s, "parsed %d tracks, movie %.3fs, media data %d bytes at %d",
		len(f.Movie.Tracks), f.Movie.Header.Seconds(), f.MediaData.DataLen(), f.MediaData.DataOffset())
	s.file = f
	return f, nil
}

// Split writes the input cut at start to w.
func (s *Splitter) Split(w io.Writer, start time.Duration) error {
	f, err := s.Probe()
	if err != nil {
		return err
	}
	cut, err := Cut(f, start)
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(w, pio.RecommendBufioSize)
	if err = mp4io.WriteFile(bw, cut); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", mp4io.ErrWriteIO, err)
	}
	for _, trak := range cut.Movie.Tracks {
		logger.Debugf(s, "track %d: %d samples, duration %d", trak.Header.TrackID(),
			trak.SampleTable().TimeToSample.SampleCount(), trak.Header.Duration())
	}
	return nil
}

// SplitFile writes the input cut at start to a new file. The output must not be the
// input: media data is copied from the input while the output is written. An
// interrupted write leaves a truncated output behind.
func (s *Splitter) SplitFile(output string, start time.Duration) (err error) {
	if _, err = s.Probe(); err != nil {
		return err
	}
	in, err := s.r.Stat()
	if err != nil {
		return err
	}
	switch out, serr := os.Stat(output); {
	case serr == nil && os.SameFile(in, out):
		return fmt.Errorf("%w: %s", ErrSameFile, output)
	case serr != nil && !errors.Is(serr, os.ErrNotExist):
		return serr
	}

	w, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", mp4io.ErrWriteIO, cerr)
		}
	}()
	return s.Split(w, start)
}

func (s *Splitter) Close() error {
	if s.r == nil {
		return nil
	}
	err := s.r.Close()
	s.r, s.file = nil, nil
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}

func (s *Splitter) String() string {
	return fmt.Sprintf("MP4_SPLITTER url=%s", s.url)
}
