package mp4io

import (
	"fmt"
	"time"
)

const (
	MDHD       = Tag(0x6d646864)
	mdhdSize   = 24
	mdhdSizeV1 = 36
)

// MediaHeader carries the media timescale of a track and its duration in that timescale.
type MediaHeader struct {
	leaf
}

func (mdhd *MediaHeader) Unmarshal(payload []byte) error {
	if err := requireLen(MDHD, payload, 1); err != nil {
		return err
	}
	size := mdhdSize
	if payload[0] == 1 {
		size = mdhdSizeV1
	}
	if err := requireLen(MDHD, payload, size); err != nil {
		return err
	}
	return mdhd.leaf.Unmarshal(payload)
}

func (mdhd *MediaHeader) wide() bool {
	return mdhd.version() == 1
}

func (mdhd *MediaHeader) CreateTime() time.Time {
	return getTime(mdhd.data, 4, mdhd.wide())
}

func (mdhd *MediaHeader) TimeScale() uint32 {
	if mdhd.wide() {
		return mdhd.data.U32(20)
	}
	return mdhd.data.U32(12)
}

func (mdhd *MediaHeader) Duration() uint64 {
	if mdhd.wide() {
		return mdhd.data.U64(24)
	}
	return uint64(mdhd.data.U32(16))
}

func (mdhd *MediaHeader) SetDuration(d uint64) error {
	if mdhd.wide() {
		mdhd.data.PutU64(24, d)
		return nil
	}
	return putDuration32(MDHD, mdhd.data, 16, d)
}

// Language decodes the packed ISO-639-2/T code.
func (mdhd *MediaHeader) Language() string {
	off := 20
	if mdhd.wide() {
		off = 32
	}
	v := mdhd.data.U16(off)
	return string([]byte{
		byte(v>>10&0x1f) + 0x60,
		byte(v>>5&0x1f) + 0x60,
		byte(v&0x1f) + 0x60,
	})
}

func (mdhd *MediaHeader) Clone() *MediaHeader {
	return &MediaHeader{leaf: mdhd.clone()}
}

func (mdhd *MediaHeader) String() string {
	return fmt.Sprintf("timescale=%d duration=%d lang=%s created=%s",
		mdhd.TimeScale(), mdhd.Duration(), mdhd.Language(), mdhd.CreateTime().Format(time.DateOnly))
}
