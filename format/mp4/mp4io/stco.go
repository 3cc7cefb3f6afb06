package mp4io

import (
	"fmt"
	"math"

	"github.com/ugparu/mp4split/utils/bits/field"
)

const (
	STCO = Tag(0x7374636f)
	CO64 = Tag(0x636f3634)
)

// ChunkOffsets is implemented by both chunk offset tables. Offsets are absolute file
// positions and chunk numbers are 1-based.
type ChunkOffsets interface {
	Atom
	ChunkCount() uint32
	ChunkOffsetAt(chunk uint32) uint64
	MinOffset() (uint64, bool)
	FixupOffsets(reduction int64) error
	fixedOffsets(reduction int64) ([]uint64, error)
	setOffsets(offsets []uint64)
}

// offsetTable is the layout shared by 'stco' (32-bit entries) and 'co64' (64-bit entries).
type offsetTable struct {
	leaf
}

func (t *offsetTable) width() int {
	if t.tag == CO64 {
		return 8
	}
	return 4
}

func (t *offsetTable) Unmarshal(payload []byte) error {
	if err := requireLen(t.tag, payload, listTableOff); err != nil {
		return err
	}
	count := field.Wrap(payload).U32(listCountOff)
	if err := checkTable(t.tag, payload, listTableOff, count, t.width()); err != nil {
		return err
	}
	return t.leaf.Unmarshal(payload)
}

func (t *offsetTable) ChunkCount() uint32 {
	return t.data.U32(listCountOff)
}

func (t *offsetTable) ChunkOffsetAt(chunk uint32) uint64 {
	off := listTableOff + int(chunk-1)*t.width()
	if t.width() == 8 {
		return t.data.U64(off)
	}
	return uint64(t.data.U32(off))
}

func (t *offsetTable) put(chunk uint32, v uint64) {
	off := listTableOff + int(chunk-1)*t.width()
	if t.width() == 8 {
		t.data.PutU64(off, v)
		return
	}
	t.data.PutU32(off, uint32(v))
}

func (t *offsetTable) Offsets() []uint64 {
	offsets := make([]uint64, t.ChunkCount())
	for i := range offsets {
		offsets[i] = t.ChunkOffsetAt(uint32(i + 1))
	}
	return offsets
}

// MinOffset returns the smallest chunk offset. ok is false for an empty table.
func (t *offsetTable) MinOffset() (lo uint64, ok bool) {
	for chunk := uint32(1); chunk <= t.ChunkCount(); chunk++ {
		if v := t.ChunkOffsetAt(chunk); !ok || v < lo {
			lo, ok = v, true
		}
	}
	return
}

// FixupOffsets subtracts reduction from every offset. A negative reduction moves the
// chunks forward. Offsets that would leave the range of the entry width are rejected
// and the table is left unchanged.
func (t *offsetTable) FixupOffsets(reduction int64) error {
	fixed, err := t.fixedOffsets(reduction)
	if err != nil {
		return err
	}
	t.setOffsets(fixed)
	return nil
}

// fixedOffsets returns the offsets FixupOffsets would write without changing the table.
func (t *offsetTable) fixedOffsets(reduction int64) ([]uint64, error) {
	limit := uint64(math.MaxUint32)
	if t.width() == 8 {
		limit = math.MaxUint64
	}
	fixed := make([]uint64, t.ChunkCount())
	for i := range fixed {
		v := t.ChunkOffsetAt(uint32(i + 1))
		switch {
		case reduction >= 0 && v < uint64(reduction):
			return nil, fmt.Errorf("%w: '%s' chunk %d offset %d is below the reduction %d", ErrOutOfRange, t.tag, i+1, v, reduction)
		case reduction < 0 && limit-v < uint64(-reduction):
			return nil, fmt.Errorf("%w: '%s' chunk %d offset %d overflows after moving by %d", ErrOutOfRange, t.tag, i+1, v, -reduction)
		case reduction >= 0:
			fixed[i] = v - uint64(reduction)
		default:
			fixed[i] = v + uint64(-reduction)
		}
	}
	return fixed, nil
}

func (t *offsetTable) setOffsets(offsets []uint64) {
	for i, v := range offsets {
		t.put(uint32(i+1), v)
	}
}

// cut drops the chunks before chunk and sets the offset of the new first chunk.
func (t *offsetTable) cut(chunk uint32, first uint64) (leaf, error) {
	count := t.ChunkCount()
	w := t.width()
	kept := 0
	if chunk >= 1 && chunk <= count {
		kept = int(count - chunk + 1)
	}
	buf := field.New(listTableOff + kept*w)
	buf.PutBytes(0, t.data.Bytes(0, 4))
	buf.PutU32(listCountOff, uint32(kept))
	cut := offsetTable{leaf: leaf{tag: t.tag, data: buf}}
	if kept == 0 {
		return cut.leaf, nil
	}
	buf.PutBytes(listTableOff, t.data.Bytes(listTableOff+int(chunk-1)*w, kept*w))
	if w == 4 && first > math.MaxUint32 {
		return leaf{}, fmt.Errorf("%w: '%s' offset %d needs 64-bit entries", ErrOutOfRange, t.tag, first)
	}
	cut.put(1, first)
	return cut.leaf, nil
}

func (t *offsetTable) String() string {
	lo, _ := t.MinOffset()
	return fmt.Sprintf("chunks=%d first=%d", t.ChunkCount(), lo)
}

func newOffsetTable(tag Tag, offsets []uint64) offsetTable {
	t := offsetTable{leaf: leaf{tag: tag}}
	t.data = field.New(listTableOff + len(offsets)*t.width())
	t.data.PutU32(listCountOff, uint32(len(offsets)))
	for i, v := range offsets {
		t.put(uint32(i+1), v)
	}
	return t
}

// ChunkOffset ('stco') holds 32-bit chunk offsets.
type ChunkOffset struct {
	offsetTable
}

func NewChunkOffset(offsets []uint32) *ChunkOffset {
	wide := make([]uint64, len(offsets))
	for i, v := range offsets {
		wide[i] = uint64(v)
	}
	return &ChunkOffset{newOffsetTable(STCO, wide)}
}

// Cut returns a table starting at chunk whose first entry is set to first.
func (stco *ChunkOffset) Cut(chunk uint32, first uint64) (*ChunkOffset, error) {
	l, err := stco.cut(chunk, first)
	if err != nil {
		return nil, err
	}
	return &ChunkOffset{offsetTable{leaf: l}}, nil
}

func (stco *ChunkOffset) Clone() *ChunkOffset {
	return &ChunkOffset{offsetTable{leaf: stco.clone()}}
}

// ChunkOffset64 ('co64') holds 64-bit chunk offsets.
type ChunkOffset64 struct {
	offsetTable
}

func NewChunkOffset64(offsets []uint64) *ChunkOffset64 {
	return &ChunkOffset64{newOffsetTable(CO64, offsets)}
}

func (co64 *ChunkOffset64) Cut(chunk uint32, first uint64) (*ChunkOffset64, error) {
	l, err := co64.cut(chunk, first)
	if err != nil {
		return nil, err
	}
	return &ChunkOffset64{offsetTable{leaf: l}}, nil
}

func (co64 *ChunkOffset64) Clone() *ChunkOffset64 {
	return &ChunkOffset64{offsetTable{leaf: co64.clone()}}
}
