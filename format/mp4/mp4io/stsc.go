package mp4io

import (
	"fmt"

	"github.com/ugparu/mp4split/utils/bits/field"
)

const (
	STSC                  = Tag(0x73747363)
	LenSampleToChunkEntry = 12
)

type SampleToChunkEntry struct {
	FirstChunk      uint32
	SamplesPerChunk uint32
	SampleDescId    uint32
}

// SampleToChunk ('stsc') maps runs of chunks to their sample count. Chunk and sample
// numbers are 1-based.
type SampleToChunk struct {
	leaf
}

func NewSampleToChunk(entries []SampleToChunkEntry) *SampleToChunk {
	buf := field.New(listTableOff + len(entries)*LenSampleToChunkEntry)
	buf.PutU32(listCountOff, uint32(len(entries)))
	for i, e := range entries {
		off := listTableOff + i*LenSampleToChunkEntry
		buf.PutU32(off, e.FirstChunk)
		buf.PutU32(off+4, e.SamplesPerChunk)
		buf.PutU32(off+8, e.SampleDescId)
	}
	return &SampleToChunk{leaf: leaf{tag: STSC, data: buf}}
}

func (stsc *SampleToChunk) Unmarshal(payload []byte) error {
	if err := requireLen(STSC, payload, listTableOff); err != nil {
		return err
	}
	count := field.Wrap(payload).U32(listCountOff)
	if err := checkTable(STSC, payload, listTableOff, count, LenSampleToChunkEntry); err != nil {
		return err
	}
	return stsc.leaf.Unmarshal(payload)
}

func (stsc *SampleToChunk) EntryCount() int {
	return int(stsc.data.U32(listCountOff))
}

func (stsc *SampleToChunk) Entry(i int) (e SampleToChunkEntry) {
	off := listTableOff + i*LenSampleToChunkEntry
	e.FirstChunk = stsc.data.U32(off)
	e.SamplesPerChunk = stsc.data.U32(off + 4)
	e.SampleDescId = stsc.data.U32(off + 8)
	return
}

func (stsc *SampleToChunk) Entries() []SampleToChunkEntry {
	entries := make([]SampleToChunkEntry, stsc.EntryCount())
	for i := range entries {
		entries[i] = stsc.Entry(i)
	}
	return entries
}

// lastChunk is the last chunk covered by entry i of a table describing chunks chunks.
func lastChunk(entries []SampleToChunkEntry, i int, chunks uint32) uint64 {
	if i+1 < len(entries) {
		return uint64(entries[i+1].FirstChunk) - 1
	}
	return uint64(chunks)
}

// Locate returns the chunk holding sample n and the number of the first sample of that
// chunk. chunks is the number of entries of the chunk offset table.
func (stsc *SampleToChunk) Locate(n uint64, chunks uint32) (chunk uint32, first uint64, err error) {
	entries := stsc.Entries()
	var before uint64
	for i, e := range entries {
		last := lastChunk(entries, i, chunks)
		if e.SamplesPerChunk == 0 || e.FirstChunk == 0 || last < uint64(e.FirstChunk) {
			continue
		}
		spc := uint64(e.SamplesPerChunk)
		run := (last - uint64(e.FirstChunk) + 1) * spc
		if n >= 1 && n <= before+run {
			idx := (n - before - 1) / spc
			return e.FirstChunk + uint32(idx), before + idx*spc + 1, nil
		}
		before += run
	}
	return 0, 0, fmt.Errorf("%w: sample %d is past the last chunk (%d samples)", ErrOutOfRange, n, before)
}

// Cut renumbers the table so that chunk becomes chunk 1. skipped samples are removed
// from the front of that chunk.
func (stsc *SampleToChunk) Cut(chunk, skipped, chunks uint32) *SampleToChunk {
	entries := stsc.Entries()
	var out []SampleToChunkEntry
	for i, e := range entries {
		last := lastChunk(entries, i, chunks)
		if last < uint64(chunk) || last < uint64(e.FirstChunk) {
			continue
		}
		first := max(e.FirstChunk, chunk)
		out = append(out, SampleToChunkEntry{
			FirstChunk:      first - chunk + 1,
			SamplesPerChunk: e.SamplesPerChunk,
			SampleDescId:    e.SampleDescId,
		})
	}

	if skipped > 0 && len(out) > 0 {
		head := out[0]
		head.SamplesPerChunk -= skipped
		// the partial chunk needs its own run unless it is the only chunk of the run
		shared := (len(out) > 1 && out[1].FirstChunk > 2) || (len(out) == 1 && chunks-chunk > 0)
		if shared {
			out[0].FirstChunk = 2
			out = append([]SampleToChunkEntry{head}, out...)
		} else {
			out[0] = head
		}
	}

	cut := NewSampleToChunk(out)
	cut.data.PutBytes(0, stsc.data.Bytes(0, 4))
	return cut
}

func (stsc *SampleToChunk) Clone() *SampleToChunk {
	return &SampleToChunk{leaf: stsc.clone()}
}

func (stsc *SampleToChunk) String() string {
	return fmt.Sprintf("entries=%d", stsc.EntryCount())
}
