package mp4io

import "fmt"

const (
	TKHD       = Tag(0x746b6864)
	tkhdSize   = 84
	tkhdSizeV1 = 96

	TrackEnabled = 0x000001
)

// TrackHeader carries the track id and the track duration in the movie timescale.
type TrackHeader struct {
	leaf
}

func (tkhd *TrackHeader) Unmarshal(payload []byte) error {
	if err := requireLen(TKHD, payload, 1); err != nil {
		return err
	}
	size := tkhdSize
	if payload[0] == 1 {
		size = tkhdSizeV1
	}
	if err := requireLen(TKHD, payload, size); err != nil {
		return err
	}
	return tkhd.leaf.Unmarshal(payload)
}

func (tkhd *TrackHeader) wide() bool {
	return tkhd.version() == 1
}

// shift is the extra width of the version 1 time fields.
func (tkhd *TrackHeader) shift() int {
	if tkhd.wide() {
		return 12
	}
	return 0
}

func (tkhd *TrackHeader) Enabled() bool {
	return tkhd.flags()&TrackEnabled != 0
}

func (tkhd *TrackHeader) TrackID() uint32 {
	if tkhd.wide() {
		return tkhd.data.U32(20)
	}
	return tkhd.data.U32(12)
}

func (tkhd *TrackHeader) Duration() uint64 {
	if tkhd.wide() {
		return tkhd.data.U64(28)
	}
	return uint64(tkhd.data.U32(20))
}

func (tkhd *TrackHeader) SetDuration(d uint64) error {
	if tkhd.wide() {
		tkhd.data.PutU64(28, d)
		return nil
	}
	return putDuration32(TKHD, tkhd.data, 20, d)
}

func (tkhd *TrackHeader) Volume() float64 {
	return tkhd.data.Fixed16(36 + tkhd.shift())
}

func (tkhd *TrackHeader) Width() float64 {
	return tkhd.data.Fixed32(76 + tkhd.shift())
}

func (tkhd *TrackHeader) Height() float64 {
	return tkhd.data.Fixed32(80 + tkhd.shift())
}

func (tkhd *TrackHeader) Clone() *TrackHeader {
	return &TrackHeader{leaf: tkhd.clone()}
}

func (tkhd *TrackHeader) String() string {
	return fmt.Sprintf("id=%d duration=%d", tkhd.TrackID(), tkhd.Duration())
}
