package mp4io

const (
	IODS = Tag(0x696f6473)
	UDTA = Tag(0x75647461)
	META = Tag(0x6d657461)
	TREF = Tag(0x74726566)
	GMHD = Tag(0x676d6864)
	HMHD = Tag(0x686d6864)
	NMHD = Tag(0x6e6d6864)
	SGPD = Tag(0x73677064)
)

// The atoms below are copied verbatim: nothing in them depends on the cut point.

type ObjectDesc struct {
	leaf
}

func (o *ObjectDesc) Clone() *ObjectDesc {
	return &ObjectDesc{leaf: o.clone()}
}

type UserData struct {
	leaf
}

func (u *UserData) Clone() *UserData {
	return &UserData{leaf: u.clone()}
}

type Meta struct {
	leaf
}

func (m *Meta) Clone() *Meta {
	return &Meta{leaf: m.clone()}
}

type TrackRefer struct {
	leaf
}

func (t *TrackRefer) Clone() *TrackRefer {
	return &TrackRefer{leaf: t.clone()}
}

type GenericMediaInfo struct {
	leaf
}

func (g *GenericMediaInfo) Clone() *GenericMediaInfo {
	return &GenericMediaInfo{leaf: g.clone()}
}

type HintMediaInfo struct {
	leaf
}

func (h *HintMediaInfo) Clone() *HintMediaInfo {
	return &HintMediaInfo{leaf: h.clone()}
}

type NullMediaInfo struct {
	leaf
}

func (n *NullMediaInfo) Clone() *NullMediaInfo {
	return &NullMediaInfo{leaf: n.clone()}
}

type SampleGroupDesc struct {
	leaf
}

func (s *SampleGroupDesc) Clone() *SampleGroupDesc {
	return &SampleGroupDesc{leaf: s.clone()}
}
