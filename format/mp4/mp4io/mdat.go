package mp4io

import (
	"errors"
	"fmt"
	"io"

	"github.com/deepch/vdk/utils/bits/pio"
)

const MDAT = Tag(0x6d646174)

// MediaData ('mdat') is a window into the source stream. The payload is never loaded:
// Marshal copies it from the source, so the source must stay readable until the output
// is written.
type MediaData struct {
	src    io.ReadSeeker
	offset int64  // first payload byte in src
	length uint64 // payload bytes in src
	skip   uint64 // leading payload bytes left out of the output
	large  bool
	AtomPos
}

// NewMediaData returns a window of length bytes of src starting at offset.
func NewMediaData(src io.ReadSeeker, offset int64, length uint64) *MediaData {
	md := new(MediaData)
	md.attach(src, offset, length, false)
	return md
}

func (md *MediaData) attach(src io.ReadSeeker, offset int64, length uint64, large bool) {
	md.src, md.offset, md.length, md.large = src, offset, length, large
}

func (md *MediaData) Tag() Tag {
	return MDAT
}

// HeaderLen is 16 when the atom is written with a 64-bit size, 8 otherwise.
func (md *MediaData) HeaderLen() uint64 {
	if md.large || HeaderSize+md.DataLen() > maxU32 {
		return LargeHeaderSize
	}
	return HeaderSize
}

func (md *MediaData) Len() uint64 {
	return md.HeaderLen() + md.DataLen()
}

// DataOffset is the source position of the first byte written to the output.
func (md *MediaData) DataOffset() int64 {
	return md.offset + int64(md.skip)
}

// DataLen is the number of payload bytes written to the output.
func (md *MediaData) DataLen() uint64 {
	return md.length - md.skip
}

// PayloadOffset is the source position of the first payload byte, ignoring any skip.
func (md *MediaData) PayloadOffset() int64 {
	return md.offset
}

func (md *MediaData) Children() []Atom {
	return nil
}

// Cut returns a window that leaves out skip more bytes from the front. The end of the
// window is unchanged.
func (md *MediaData) Cut(skip uint64) (*MediaData, error) {
	if skip > md.DataLen() {
		return nil, fmt.Errorf("%w: skip of %d bytes exceeds the %d bytes of '%s'", ErrOutOfRange, skip, md.DataLen(), MDAT)
	}
	cut := *md
	cut.AtomPos = AtomPos{}
	cut.skip += skip
	return &cut, nil
}

func (md *MediaData) Marshal(w io.Writer) (err error) {
	if md.HeaderLen() == LargeHeaderSize {
		err = writeLargeHeader(w, md.Len(), MDAT)
	} else {
		err = writeHeader(w, md.Len(), MDAT)
	}
	if err != nil {
		return err
	}
	if md.DataLen() == 0 {
		return nil
	}
	if md.src == nil {
		return fmt.Errorf("%w: '%s' has no source", ErrTruncatedInput, MDAT)
	}
	if _, err = md.src.Seek(md.DataOffset(), io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek '%s' payload: %w", ErrTruncatedInput, MDAT, err)
	}
	return copyWindow(w, md.src, md.DataLen())
}

// copyWindow copies exactly n bytes. Source failures are reported as truncated input and
// sink failures as write errors.
func copyWindow(w io.Writer, r io.Reader, n uint64) error {
	buf := make([]byte, min(uint64(pio.RecommendBufioSize), n))
	for n > 0 {
		chunk := buf[:min(uint64(len(buf)), n)]
		read, err := io.ReadFull(r, chunk)
		if read > 0 {
			if werr := write(w, chunk[:read]); werr != nil {
				return werr
			}
			n -= uint64(read)
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return fmt.Errorf("%w: '%s' payload ends %d bytes early", ErrTruncatedInput, MDAT, n)
		default:
			return fmt.Errorf("%w: read '%s' payload: %w", ErrTruncatedInput, MDAT, err)
		}
	}
	return nil
}

func (md *MediaData) String() string {
	return fmt.Sprintf("data_offset=%d data_len=%d skip=%d", md.DataOffset(), md.DataLen(), md.skip)
}
