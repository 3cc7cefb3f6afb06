package mp4io

import "io"

const MDIA = Tag(0x6d646961)

type Media struct {
	Header   *MediaHeader
	Handler  *HandlerRefer
	Info     *MediaInfo
	UserData *UserData
	container
}

func (mdia *Media) Tag() Tag {
	return MDIA
}

func (mdia *Media) AddChild(atom Atom) error {
	switch a := atom.(type) {
	case *MediaHeader:
		if mdia.Header != nil {
			return duplicateChild(MDIA, atom)
		}
		mdia.Header = a
	case *HandlerRefer:
		if mdia.Handler != nil {
			return duplicateChild(MDIA, atom)
		}
		mdia.Handler = a
	case *MediaInfo:
		if mdia.Info != nil {
			return duplicateChild(MDIA, atom)
		}
		mdia.Info = a
	case *UserData:
		if mdia.UserData != nil {
			return duplicateChild(MDIA, atom)
		}
		mdia.UserData = a
	default:
		return invalidChild(MDIA, atom)
	}
	mdia.push(atom.Tag())
	return nil
}

func (mdia *Media) Children() []Atom {
	var r []Atom
	if mdia.Header != nil {
		r = append(r, mdia.Header)
	}
	if mdia.Handler != nil {
		r = append(r, mdia.Handler)
	}
	if mdia.Info != nil {
		r = append(r, mdia.Info)
	}
	if mdia.UserData != nil {
		r = append(r, mdia.UserData)
	}
	return mdia.arrange(r)
}

func (mdia *Media) Len() uint64 {
	return childrenLen(mdia.Children())
}

func (mdia *Media) Marshal(w io.Writer) error {
	return marshalChildren(w, MDIA, mdia.Children())
}

func (mdia *Media) verify() error {
	switch {
	case mdia.Header == nil:
		return missingChild(MDIA, MDHD)
	case mdia.Handler == nil:
		return missingChild(MDIA, HDLR)
	case mdia.Info == nil:
		return missingChild(MDIA, MINF)
	}
	return nil
}

// Cut cuts the media at media time t. The media header duration is recomputed from the
// cut time-to-sample table.
func (mdia *Media) Cut(t uint64) (*Media, error) {
	info, err := mdia.Info.Cut(t)
	if err != nil {
		return nil, err
	}
	cut := &Media{
		Header:    mdia.Header.Clone(),
		Handler:   mdia.Handler.Clone(),
		Info:      info,
		container: mdia.cloneOrder(),
	}
	if mdia.UserData != nil {
		cut.UserData = mdia.UserData.Clone()
	}
	if err = cut.Header.SetDuration(info.Sample.TimeToSample.ComputeDuration()); err != nil {
		return nil, err
	}
	return cut, nil
}

func (mdia *Media) Clone() *Media {
	cut := &Media{
		Header:    mdia.Header.Clone(),
		Handler:   mdia.Handler.Clone(),
		Info:      mdia.Info.Clone(),
		container: mdia.cloneOrder(),
	}
	if mdia.UserData != nil {
		cut.UserData = mdia.UserData.Clone()
	}
	return cut
}
