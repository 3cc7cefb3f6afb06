package mp4io

import "io"

const MINF = Tag(0x6d696e66)

// MediaInfo ('minf') holds one media type header, the data references and the sample
// table. QuickTime files may carry a data handler reference here as well.
type MediaInfo struct {
	Video   *VideoMediaInfo
	Sound   *SoundMediaInfo
	Generic *GenericMediaInfo
	Hint    *HintMediaInfo
	Null    *NullMediaInfo
	Handler *HandlerRefer
	Data    *DataInfo
	Sample  *SampleTable
	container
}

func (minf *MediaInfo) Tag() Tag {
	return MINF
}

func (minf *MediaInfo) hasMediaHeader() bool {
	return minf.Video != nil || minf.Sound != nil || minf.Generic != nil || minf.Hint != nil || minf.Null != nil
}

func (minf *MediaInfo) AddChild(atom Atom) error {
	switch a := atom.(type) {
	case *VideoMediaInfo:
		if minf.hasMediaHeader() {
			return duplicateChild(MINF, atom)
		}
		minf.Video = a
	case *SoundMediaInfo:
		if minf.hasMediaHeader() {
			return duplicateChild(MINF, atom)
		}
		minf.Sound = a
	case *GenericMediaInfo:
		if minf.hasMediaHeader() {
			return duplicateChild(MINF, atom)
		}
		minf.Generic = a
	case *HintMediaInfo:
		if minf.hasMediaHeader() {
			return duplicateChild(MINF, atom)
		}
		minf.Hint = a
	case *NullMediaInfo:
		if minf.hasMediaHeader() {
			return duplicateChild(MINF, atom)
		}
		minf.Null = a
	case *HandlerRefer:
		if minf.Handler != nil {
			return duplicateChild(MINF, atom)
		}
		minf.Handler = a
	case *DataInfo:
		if minf.Data != nil {
			return duplicateChild(MINF, atom)
		}
		minf.Data = a
	case *SampleTable:
		if minf.Sample != nil {
			return duplicateChild(MINF, atom)
		}
		minf.Sample = a
	default:
		return invalidChild(MINF, atom)
	}
	minf.push(atom.Tag())
	return nil
}

func (minf *MediaInfo) Children() []Atom {
	var r []Atom
	if minf.Video != nil {
		r = append(r, minf.Video)
	}
	if minf.Sound != nil {
		r = append(r, minf.Sound)
	}
	if minf.Generic != nil {
		r = append(r, minf.Generic)
	}
	if minf.Hint != nil {
		r = append(r, minf.Hint)
	}
	if minf.Null != nil {
		r = append(r, minf.Null)
	}
	if minf.Handler != nil {
		r = append(r, minf.Handler)
	}
	if minf.Data != nil {
		r = append(r, minf.Data)
	}
	if minf.Sample != nil {
		r = append(r, minf.Sample)
	}
	return minf.arrange(r)
}

func (minf *MediaInfo) Len() uint64 {
	return childrenLen(minf.Children())
}

func (minf *MediaInfo) Marshal(w io.Writer) error {
	return marshalChildren(w, MINF, minf.Children())
}

func (minf *MediaInfo) verify() error {
	if minf.Data == nil {
		return missingChild(MINF, DINF)
	}
	if minf.Sample == nil {
		return missingChild(MINF, STBL)
	}
	return nil
}

// Cut cuts the sample table at media time t and copies everything else.
func (minf *MediaInfo) Cut(t uint64) (*MediaInfo, error) {
	sample, err := minf.Sample.Cut(t)
	if err != nil {
		return nil, err
	}
	cut := minf.cloneHeaders()
	cut.Sample = sample
	return cut, nil
}

func (minf *MediaInfo) Clone() *MediaInfo {
	cut := minf.cloneHeaders()
	cut.Sample = minf.Sample.Clone()
	return cut
}

func (minf *MediaInfo) cloneHeaders() *MediaInfo {
	cut := &MediaInfo{container: minf.cloneOrder()}
	if minf.Video != nil {
		cut.Video = minf.Video.Clone()
	}
	if minf.Sound != nil {
		cut.Sound = minf.Sound.Clone()
	}
	if minf.Generic != nil {
		cut.Generic = minf.Generic.Clone()
	}
	if minf.Hint != nil {
		cut.Hint = minf.Hint.Clone()
	}
	if minf.Null != nil {
		cut.Null = minf.Null.Clone()
	}
	if minf.Handler != nil {
		cut.Handler = minf.Handler.Clone()
	}
	if minf.Data != nil {
		cut.Data = minf.Data.Clone()
	}
	return cut
}
