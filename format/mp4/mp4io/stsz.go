package mp4io

import (
	"fmt"

	"github.com/ugparu/mp4split/utils/bits/field"
)

const (
	STSZ          = Tag(0x7374737a)
	LenSampleSize = 4
	stszTableOff  = 12
)

// SampleSize ('stsz') holds either one size for every sample or one entry per sample.
type SampleSize struct {
	leaf
}

func NewSampleSize(uniform uint32, sizes []uint32) *SampleSize {
	buf := field.New(stszTableOff + len(sizes)*LenSampleSize)
	buf.PutU32(4, uniform)
	buf.PutU32(8, uint32(len(sizes)))
	for i, s := range sizes {
		buf.PutU32(stszTableOff+i*LenSampleSize, s)
	}
	return &SampleSize{leaf: leaf{tag: STSZ, data: buf}}
}

func (stsz *SampleSize) Unmarshal(payload []byte) error {
	if err := requireLen(STSZ, payload, stszTableOff); err != nil {
		return err
	}
	buf := field.Wrap(payload)
	var entries uint32
	if buf.U32(4) == 0 {
		entries = buf.U32(8)
	}
	if err := checkTable(STSZ, payload, stszTableOff, entries, LenSampleSize); err != nil {
		return err
	}
	return stsz.leaf.Unmarshal(payload)
}

// SampleSize is the common size of all samples, 0 when sizes are listed per sample.
func (stsz *SampleSize) SampleSize() uint32 {
	return stsz.data.U32(4)
}

func (stsz *SampleSize) SampleCount() uint64 {
	return uint64(stsz.data.U32(8))
}

// SizeOf returns the size of sample n (1-based).
func (stsz *SampleSize) SizeOf(n uint64) uint32 {
	if s := stsz.SampleSize(); s != 0 {
		return s
	}
	return stsz.data.U32(stszTableOff + int(n-1)*LenSampleSize)
}

// BytesBetween is the total size of samples from (inclusive) to to (exclusive).
func (stsz *SampleSize) BytesBetween(from, to uint64) (n uint64) {
	if to > stsz.SampleCount()+1 {
		to = stsz.SampleCount() + 1
	}
	if s := stsz.SampleSize(); s != 0 {
		if to <= from {
			return 0
		}
		return uint64(s) * (to - from)
	}
	for i := from; i < to; i++ {
		n += uint64(stsz.SizeOf(i))
	}
	return
}

// Cut drops the samples before n (1-based).
func (stsz *SampleSize) Cut(n uint64) *SampleSize {
	if n < 1 {
		n = 1
	}
	total := stsz.SampleCount()
	kept := uint64(0)
	if n <= total {
		kept = total - n + 1
	}
	var out *field.Buffer
	if stsz.SampleSize() != 0 {
		out = field.New(stszTableOff)
	} else {
		out = field.New(stszTableOff + int(kept)*LenSampleSize)
		if kept > 0 {
			out.PutBytes(stszTableOff, stsz.data.Bytes(stszTableOff+int(n-1)*LenSampleSize, int(kept)*LenSampleSize))
		}
	}
	out.PutBytes(0, stsz.data.Bytes(0, 8))
	out.PutU32(8, uint32(kept))
	return &SampleSize{leaf: leaf{tag: STSZ, data: out}}
}

func (stsz *SampleSize) Clone() *SampleSize {
	return &SampleSize{leaf: stsz.clone()}
}

func (stsz *SampleSize) String() string {
	return fmt.Sprintf("size=%d samples=%d", stsz.SampleSize(), stsz.SampleCount())
}
