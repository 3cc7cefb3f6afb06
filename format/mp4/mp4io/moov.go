package mp4io

import (
	"fmt"
	"io"
	"time"
)

const MOOV = Tag(0x6d6f6f76)

type Movie struct {
	Header     *MovieHeader
	ObjectDesc *ObjectDesc
	Tracks     []*Track
	UserData   *UserData
	Meta       *Meta
	container
}

func (moov *Movie) Tag() Tag {
	return MOOV
}

func (moov *Movie) AddChild(atom Atom) error {
	switch a := atom.(type) {
	case *MovieHeader:
		if moov.Header != nil {
			return duplicateChild(MOOV, atom)
		}
		moov.Header = a
	case *ObjectDesc:
		if moov.ObjectDesc != nil {
			return duplicateChild(MOOV, atom)
		}
		moov.ObjectDesc = a
	case *Track:
		moov.Tracks = append(moov.Tracks, a)
	case *UserData:
		if moov.UserData != nil {
			return duplicateChild(MOOV, atom)
		}
		moov.UserData = a
	case *Meta:
		if moov.Meta != nil {
			return duplicateChild(MOOV, atom)
		}
		moov.Meta = a
	default:
		return invalidChild(MOOV, atom)
	}
	moov.push(atom.Tag())
	return nil
}

func (moov *Movie) Children() []Atom {
	var r []Atom
	if moov.Header != nil {
		r = append(r, moov.Header)
	}
	if moov.ObjectDesc != nil {
		r = append(r, moov.ObjectDesc)
	}
	for _, trak := range moov.Tracks {
		r = append(r, trak)
	}
	if moov.UserData != nil {
		r = append(r, moov.UserData)
	}
	if moov.Meta != nil {
		r = append(r, moov.Meta)
	}
	return moov.arrange(r)
}

func (moov *Movie) Len() uint64 {
	return childrenLen(moov.Children())
}

func (moov *Movie) Marshal(w io.Writer) error {
	return marshalChildren(w, MOOV, moov.Children())
}

func (moov *Movie) verify() error {
	if moov.Header == nil {
		return missingChild(MOOV, MVHD)
	}
	return nil
}

// Cut returns a movie that starts at start. Every track keeps the sample playing at
// start in its own timescale, so all tracks resume at the same source time. The movie
// duration becomes the longest cut track. Use SyncStart first to begin on a sync sample. A start at or past the end of every
// track fails with ErrOutOfRange.
func (moov *Movie) Cut(start time.Duration) (*Movie, error) {
	timeScale := moov.Header.TimeScale()
	if timeScale == 0 {
		return nil, fmt.Errorf("%w: '%s' has a zero timescale", ErrOutOfRange, MVHD)
	}

	cut := &Movie{
		Header:    moov.Header.Clone(),
		container: moov.cloneOrder(),
	}
	var duration uint64
	var samples uint64
	for _, trak := range moov.Tracks {
		ct, err := trak.Cut(start, timeScale)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", trak.Header.TrackID(), err)
		}
		duration = max(duration, ct.Header.Duration())
		samples += ct.SampleTable().TimeToSample.SampleCount()
		cut.Tracks = append(cut.Tracks, ct)
	}
	if samples == 0 {
		return nil, fmt.Errorf("%w: cut at %s is past the end of the movie (%.3fs)", ErrOutOfRange, start, moov.Header.Seconds())
	}
	if err := cut.Header.SetDuration(duration); err != nil {
		return nil, err
	}

	if moov.ObjectDesc != nil {
		cut.ObjectDesc = moov.ObjectDesc.Clone()
	}
	if moov.UserData != nil {
		cut.UserData = moov.UserData.Clone()
	}
	if moov.Meta != nil {
		cut.Meta = moov.Meta.Clone()
	}
	return cut, nil
}

// SyncStart moves start back to the last sync sample at or before it on the reference
// track: the first video track with a sync sample list, else the first track with one.
// Cutting every track at the returned time keeps the tracks together and starts the
// reference track on a sync sample. Without a reference track start is returned as is.
func (moov *Movie) SyncStart(start time.Duration) (time.Duration, error) {
	ref := moov.syncTrack()
	if ref == nil {
		return start, nil
	}
	timeScale := ref.Media.Header.TimeScale()
	t, err := toMediaTime(start, timeScale)
	if err != nil {
		return 0, err
	}
	sync, ok := ref.SampleTable().SyncTime(t)
	if !ok {
		return start, nil
	}
	return fromMediaTime(sync, timeScale)
}

func (moov *Movie) syncTrack() (ref *Track) {
	for _, trak := range moov.Tracks {
		stbl := trak.SampleTable()
		if stbl.SyncSample == nil || stbl.SyncSample.EntryCount() == 0 {
			continue
		}
		if trak.Media.Handler.HandlerType() == VIDE {
			return trak
		}
		if ref == nil {
			ref = trak
		}
	}
	return ref
}

// FirstDataOffset is the smallest chunk offset over all tracks. ok is false when no
// track has a chunk.
func (moov *Movie) FirstDataOffset() (offset uint64, ok bool) {
	for _, trak := range moov.Tracks {
		if v, has := trak.SampleTable().ChunkOffsets().MinOffset(); has && (!ok || v < offset) {
			offset, ok = v, true
		}
	}
	return
}

// FixupOffsets subtracts reduction from the chunk offsets of every track. It runs once
// the size of everything before the media data is final. Every track is checked before
// any is changed, so on error the movie is left as it was.
func (moov *Movie) FixupOffsets(reduction int64) error {
	fixed := make([][]uint64, len(moov.Tracks))
	for i, trak := range moov.Tracks {
		var err error
		if fixed[i], err = trak.SampleTable().ChunkOffsets().fixedOffsets(reduction); err != nil {
			return fmt.Errorf("track %d: %w", trak.Header.TrackID(), err)
		}
	}
	for i, trak := range moov.Tracks {
		trak.SampleTable().ChunkOffsets().setOffsets(fixed[i])
	}
	return nil
}

func (moov *Movie) Clone() *Movie {
	cut := &Movie{
		Header:    moov.Header.Clone(),
		container: moov.cloneOrder(),
	}
	for _, trak := range moov.Tracks {
		cut.Tracks = append(cut.Tracks, trak.Clone())
	}
	if moov.ObjectDesc != nil {
		cut.ObjectDesc = moov.ObjectDesc.Clone()
	}
	if moov.UserData != nil {
		cut.UserData = moov.UserData.Clone()
	}
	if moov.Meta != nil {
		cut.Meta = moov.Meta.Clone()
	}
	return cut
}

func (moov *Movie) String() string {
	return fmt.Sprintf("tracks=%d", len(moov.Tracks))
}
