package mp4io

import (
	"fmt"
	"time"

	"github.com/ugparu/mp4split/utils/bits/field"
)

const (
	MVHD       = Tag(0x6d766864)
	mvhdSize   = 100
	mvhdSizeV1 = 112
)

// MovieHeader carries the movie timescale and the presentation duration.
//
//	version 0: creation(4) modification(4) timescale(4) duration(4) rate(4) volume(2) ...
//	version 1: creation(8) modification(8) timescale(4) duration(8) rate(4) volume(2) ...
type MovieHeader struct {
	leaf
}

func (mvhd *MovieHeader) Unmarshal(payload []byte) error {
	if err := requireLen(MVHD, payload, 1); err != nil {
		return err
	}
	size := mvhdSize
	if payload[0] == 1 {
		size = mvhdSizeV1
	}
	if err := requireLen(MVHD, payload, size); err != nil {
		return err
	}
	return mvhd.leaf.Unmarshal(payload)
}

func (mvhd *MovieHeader) wide() bool {
	return mvhd.version() == 1
}

func (mvhd *MovieHeader) CreateTime() time.Time {
	return getTime(mvhd.data, 4, mvhd.wide())
}

func (mvhd *MovieHeader) TimeScale() uint32 {
	if mvhd.wide() {
		return mvhd.data.U32(20)
	}
	return mvhd.data.U32(12)
}

func (mvhd *MovieHeader) Duration() uint64 {
	if mvhd.wide() {
		return mvhd.data.U64(24)
	}
	return uint64(mvhd.data.U32(16))
}

func (mvhd *MovieHeader) SetDuration(d uint64) error {
	if mvhd.wide() {
		mvhd.data.PutU64(24, d)
		return nil
	}
	return putDuration32(MVHD, mvhd.data, 16, d)
}

func (mvhd *MovieHeader) PreferredRate() float64 {
	if mvhd.wide() {
		return mvhd.data.Fixed32(32)
	}
	return mvhd.data.Fixed32(20)
}

func (mvhd *MovieHeader) PreferredVolume() float64 {
	if mvhd.wide() {
		return mvhd.data.Fixed16(36)
	}
	return mvhd.data.Fixed16(24)
}

func (mvhd *MovieHeader) NextTrackID() uint32 {
	return mvhd.data.U32(mvhd.data.Len() - 4)
}

// Seconds is the duration in seconds.
func (mvhd *MovieHeader) Seconds() float64 {
	if mvhd.TimeScale() == 0 {
		return 0
	}
	return float64(mvhd.Duration()) / float64(mvhd.TimeScale())
}

func (mvhd *MovieHeader) Clone() *MovieHeader {
	return &MovieHeader{leaf: mvhd.clone()}
}

func (mvhd *MovieHeader) String() string {
	return fmt.Sprintf("timescale=%d duration=%d rate=%.2f volume=%.2f created=%s next_track_id=%d",
		mvhd.TimeScale(), mvhd.Duration(), mvhd.PreferredRate(), mvhd.PreferredVolume(),
		mvhd.CreateTime().Format(time.DateOnly), mvhd.NextTrackID())
}

var epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

func getTime(buf *field.Buffer, off int, wide bool) time.Time {
	var sec uint64
	if wide {
		sec = buf.U64(off)
	} else {
		sec = uint64(buf.U32(off))
	}
	return epoch1904.Add(time.Second * time.Duration(sec))
}

func putDuration32(tag Tag, buf *field.Buffer, off int, d uint64) error {
	if d > maxU32 {
		return fmt.Errorf("%w: '%s' version 0 duration %d", ErrOutOfRange, tag, d)
	}
	buf.PutU32(off, uint32(d))
	return nil
}
