package mp4io

import (
	"fmt"
	"math"
)

const (
	CSLG       = Tag(0x63736c67)
	cslgSize   = 24
	cslgSizeV1 = 44
)

// CompositionShift ('cslg') summarizes the composition offsets of a track:
//
//	shift, least delta, greatest delta, composition start, composition end
//
// stored as int32 in version 0 and int64 in version 1.
type CompositionShift struct {
	leaf
}

func (cslg *CompositionShift) Unmarshal(payload []byte) error {
	if err := requireLen(CSLG, payload, 1); err != nil {
		return err
	}
	size := cslgSize
	if payload[0] == 1 {
		size = cslgSizeV1
	}
	if err := requireLen(CSLG, payload, size); err != nil {
		return err
	}
	return cslg.leaf.Unmarshal(payload)
}

func (cslg *CompositionShift) get(i int) int64 {
	if cslg.version() == 1 {
		return cslg.data.I64(4 + 8*i)
	}
	return int64(cslg.data.I32(4 + 4*i))
}

func (cslg *CompositionShift) put(i int, v int64) error {
	if cslg.version() == 1 {
		cslg.data.PutI64(4+8*i, v)
		return nil
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return fmt.Errorf("%w: '%s' version 0 value %d", ErrOutOfRange, CSLG, v)
	}
	cslg.data.PutI32(4+4*i, int32(v))
	return nil
}

func (cslg *CompositionShift) CompositionToDTSShift() int64 {
	return cslg.get(0)
}

func (cslg *CompositionShift) LeastDecodeToDisplayDelta() int64 {
	return cslg.get(1)
}

func (cslg *CompositionShift) GreatestDecodeToDisplayDelta() int64 {
	return cslg.get(2)
}

func (cslg *CompositionShift) CompositionStartTime() int64 {
	return cslg.get(3)
}

func (cslg *CompositionShift) CompositionEndTime() int64 {
	return cslg.get(4)
}

// Recompute returns a copy of cslg holding the bounds of the samples described by stts
// and ctts. Version and flags are kept.
func (cslg *CompositionShift) Recompute(stts *TimeToSample, ctts *CompositionOffset) (*CompositionShift, error) {
	b := compositionBoundsOf(stts, ctts)
	out := &CompositionShift{leaf: cslg.clone()}
	for i, v := range []int64{max(0, -b.least), b.least, b.greatest, b.start, b.end} {
		if err := out.put(i, v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (cslg *CompositionShift) Clone() *CompositionShift {
	return &CompositionShift{leaf: cslg.clone()}
}

func (cslg *CompositionShift) String() string {
	return fmt.Sprintf("shift=%d least=%d greatest=%d start=%d end=%d",
		cslg.CompositionToDTSShift(), cslg.LeastDecodeToDisplayDelta(), cslg.GreatestDecodeToDisplayDelta(),
		cslg.CompositionStartTime(), cslg.CompositionEndTime())
}

type compositionBounds struct {
	least, greatest int64
	start, end      int64
}

// compositionBoundsOf walks the decoding and composition runs together. Samples past the
// last ctts entry have no offset.
func compositionBoundsOf(stts *TimeToSample, ctts *CompositionOffset) (b compositionBounds) {
	signed := ctts.version() == 1
	var (
		dts, off int64
		pending  uint64
		next     int
		seen     bool
	)
	for i := 0; i < stts.EntryCount(); i++ {
		count, duration := stts.entry(i)
		for left := uint64(count); left > 0; {
			if pending == 0 {
				if next >= ctts.EntryCount() {
					pending, off = left, 0
				} else {
					c, o := ctts.entry(next)
					next++
					if pending, off = uint64(c), int64(o); signed {
						off = int64(int32(o))
					}
					continue
				}
			}
			k := min(left, pending)
			span := int64(k) * int64(duration)
			lo, hi := dts+off, dts+span+off
			if !seen {
				b, seen = compositionBounds{least: off, greatest: off, start: lo, end: hi}, true
			} else {
				b.least, b.greatest = min(b.least, off), max(b.greatest, off)
				b.start, b.end = min(b.start, lo), max(b.end, hi)
			}
			dts += span
			left -= k
			pending -= k
		}
	}
	return b
}
