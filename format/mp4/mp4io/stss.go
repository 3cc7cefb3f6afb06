package mp4io

import (
	"fmt"

	"github.com/ugparu/mp4split/utils/bits/field"
)

const (
	STSS          = Tag(0x73747373)
	LenSyncSample = 4
	listCountOff  = 4
	listTableOff  = 8
)

// SyncSample ('stss') lists the 1-based numbers of the random access samples.
type SyncSample struct {
	leaf
}

func NewSyncSample(samples []uint32) *SyncSample {
	buf := field.New(listTableOff + len(samples)*LenSyncSample)
	buf.PutU32(listCountOff, uint32(len(samples)))
	for i, n := range samples {
		buf.PutU32(listTableOff+i*LenSyncSample, n)
	}
	return &SyncSample{leaf: leaf{tag: STSS, data: buf}}
}

func (stss *SyncSample) Unmarshal(payload []byte) error {
	if err := requireLen(STSS, payload, listTableOff); err != nil {
		return err
	}
	count := field.Wrap(payload).U32(listCountOff)
	if err := checkTable(STSS, payload, listTableOff, count, LenSyncSample); err != nil {
		return err
	}
	return stss.leaf.Unmarshal(payload)
}

func (stss *SyncSample) EntryCount() int {
	return int(stss.data.U32(listCountOff))
}

func (stss *SyncSample) Sample(i int) uint32 {
	return stss.data.U32(listTableOff + i*LenSyncSample)
}

func (stss *SyncSample) Entries() []uint32 {
	entries := make([]uint32, stss.EntryCount())
	for i := range entries {
		entries[i] = stss.Sample(i)
	}
	return entries
}

// SyncBefore returns the last sync sample at or before n. When n precedes every sync
// sample the first one is returned, an empty table returns n.
func (stss *SyncSample) SyncBefore(n uint64) uint64 {
	count := stss.EntryCount()
	if count == 0 {
		return n
	}
	best := uint64(stss.Sample(0))
	for i := 0; i < count; i++ {
		s := uint64(stss.Sample(i))
		if s > n {
			break
		}
		best = s
	}
	return best
}

// Cut drops sync samples before n and renumbers the rest so that n becomes sample 1.
func (stss *SyncSample) Cut(n uint64) *SyncSample {
	if n < 1 {
		n = 1
	}
	var kept []uint32
	for i := 0; i < stss.EntryCount(); i++ {
		if s := uint64(stss.Sample(i)); s >= n {
			kept = append(kept, uint32(s-n+1))
		}
	}
	cut := NewSyncSample(kept)
	cut.data.PutBytes(0, stss.data.Bytes(0, 4))
	return cut
}

func (stss *SyncSample) Clone() *SyncSample {
	return &SyncSample{leaf: stss.clone()}
}

func (stss *SyncSample) String() string {
	return fmt.Sprintf("entries=%d", stss.EntryCount())
}
