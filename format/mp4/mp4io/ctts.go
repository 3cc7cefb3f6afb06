package mp4io

const CTTS = Tag(0x63747473)

type CompositionOffsetEntry struct {
	Count  uint32
	Offset uint32
}

// CompositionOffset ('ctts') maps samples to composition offsets. It is cut with the
// same rule as the decoding table so both stay aligned on the same first sample.
type CompositionOffset struct {
	runTable
}

func NewCompositionOffset(entries []CompositionOffsetEntry) *CompositionOffset {
	counts := make([]uint32, len(entries))
	offsets := make([]uint32, len(entries))
	for i, e := range entries {
		counts[i], offsets[i] = e.Count, e.Offset
	}
	return &CompositionOffset{newRunTable(CTTS, counts, offsets)}
}

func (ctts *CompositionOffset) Entries() []CompositionOffsetEntry {
	entries := make([]CompositionOffsetEntry, ctts.EntryCount())
	for i := range entries {
		entries[i].Count, entries[i].Offset = ctts.entry(i)
	}
	return entries
}

func (ctts *CompositionOffset) Cut(n uint64) *CompositionOffset {
	return &CompositionOffset{runTable{leaf: ctts.cut(n)}}
}

func (ctts *CompositionOffset) Clone() *CompositionOffset {
	return &CompositionOffset{runTable{leaf: ctts.clone()}}
}
