package mp4io

import (
	"fmt"
	"io"
	"time"
)

const TRAK = Tag(0x7472616b)

type Track struct {
	Header   *TrackHeader
	Refer    *TrackRefer
	Edit     *Edit
	Media    *Media
	UserData *UserData
	Meta     *Meta
	container
}

func (trak *Track) Tag() Tag {
	return TRAK
}

func (trak *Track) AddChild(atom Atom) error {
	switch a := atom.(type) {
	case *TrackHeader:
		if trak.Header != nil {
			return duplicateChild(TRAK, atom)
		}
		trak.Header = a
	case *TrackRefer:
		if trak.Refer != nil {
			return duplicateChild(TRAK, atom)
		}
		trak.Refer = a
	case *Edit:
		if trak.Edit != nil {
			return duplicateChild(TRAK, atom)
		}
		trak.Edit = a
	case *Media:
		if trak.Media != nil {
			return duplicateChild(TRAK, atom)
		}
		trak.Media = a
	case *UserData:
		if trak.UserData != nil {
			return duplicateChild(TRAK, atom)
		}
		trak.UserData = a
	case *Meta:
		if trak.Meta != nil {
			return duplicateChild(TRAK, atom)
		}
		trak.Meta = a
	default:
		return invalidChild(TRAK, atom)
	}
	trak.push(atom.Tag())
	return nil
}

func (trak *Track) Children() []Atom {
	var r []Atom
	if trak.Header != nil {
		r = append(r, trak.Header)
	}
	if trak.Refer != nil {
		r = append(r, trak.Refer)
	}
	if trak.Edit != nil {
		r = append(r, trak.Edit)
	}
	if trak.Media != nil {
		r = append(r, trak.Media)
	}
	if trak.UserData != nil {
		r = append(r, trak.UserData)
	}
	if trak.Meta != nil {
		r = append(r, trak.Meta)
	}
	return trak.arrange(r)
}

func (trak *Track) Len() uint64 {
	return childrenLen(trak.Children())
}

func (trak *Track) Marshal(w io.Writer) error {
	return marshalChildren(w, TRAK, trak.Children())
}

func (trak *Track) verify() error {
	if trak.Header == nil {
		return missingChild(TRAK, TKHD)
	}
	if trak.Media == nil {
		return missingChild(TRAK, MDIA)
	}
	return nil
}

func (trak *Track) SampleTable() *SampleTable {
	return trak.Media.Info.Sample
}

// Cut cuts the track at start. The track header and the edit list take the new media
// duration converted to the movie timescale.
func (trak *Track) Cut(start time.Duration, movieTimeScale uint32) (*Track, error) {
	mediaTimeScale := trak.Media.Header.TimeScale()
	t, err := toMediaTime(start, mediaTimeScale)
	if err != nil {
		return nil, err
	}
	media, err := trak.Media.Cut(t)
	if err != nil {
		return nil, err
	}
	d, err := rescale(media.Header.Duration(), uint64(movieTimeScale), uint64(mediaTimeScale))
	if err != nil {
		return nil, err
	}

	cut := &Track{
		Header:    trak.Header.Clone(),
		Media:     media,
		container: trak.cloneOrder(),
	}
	if err = cut.Header.SetDuration(d); err != nil {
		return nil, err
	}
	if trak.Edit != nil {
		if cut.Edit, err = trak.Edit.Cut(d); err != nil {
			return nil, err
		}
	}
	if trak.Refer != nil {
		cut.Refer = trak.Refer.Clone()
	}
	if trak.UserData != nil {
		cut.UserData = trak.UserData.Clone()
	}
	if trak.Meta != nil {
		cut.Meta = trak.Meta.Clone()
	}
	return cut, nil
}

func (trak *Track) FixupOffsets(reduction int64) error {
	return trak.SampleTable().ChunkOffsets().FixupOffsets(reduction)
}

func (trak *Track) Clone() *Track {
	cut := &Track{
		Header:    trak.Header.Clone(),
		Media:     trak.Media.Clone(),
		container: trak.cloneOrder(),
	}
	if trak.Edit != nil {
		cut.Edit = trak.Edit.Clone()
	}
	if trak.Refer != nil {
		cut.Refer = trak.Refer.Clone()
	}
	if trak.UserData != nil {
		cut.UserData = trak.UserData.Clone()
	}
	if trak.Meta != nil {
		cut.Meta = trak.Meta.Clone()
	}
	return cut
}

func (trak *Track) String() string {
	return fmt.Sprintf("id=%d", trak.Header.TrackID())
}
