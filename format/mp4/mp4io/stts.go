package mp4io

import (
	"fmt"

	"github.com/ugparu/mp4split/utils/bits/field"
)

const (
	STTS = Tag(0x73747473)

	runCountOff          = 4
	runTableOff          = 8
	LenTimeToSampleEntry = 8
)

type TimeToSampleEntry struct {
	Count    uint32
	Duration uint32
}

// runTable is the layout shared by the decoding and composition time-to-sample tables:
// version/flags, entry count, then (sample count, value) pairs.
type runTable struct {
	leaf
}

func (t *runTable) Unmarshal(payload []byte) error {
	if err := requireLen(t.tag, payload, runTableOff); err != nil {
		return err
	}
	count := field.Wrap(payload).U32(runCountOff)
	if err := checkTable(t.tag, payload, runTableOff, count, LenTimeToSampleEntry); err != nil {
		return err
	}
	return t.leaf.Unmarshal(payload)
}

func (t *runTable) EntryCount() int {
	return int(t.data.U32(runCountOff))
}

func (t *runTable) entry(i int) (count, value uint32) {
	off := runTableOff + i*LenTimeToSampleEntry
	return t.data.U32(off), t.data.U32(off + 4)
}

func (t *runTable) SampleCount() uint64 {
	return runSamples(t.data, runCountOff, runTableOff, LenTimeToSampleEntry)
}

// TimeToSample returns the 0-based index of the sample whose duration interval contains
// media time tm. A time at or past the end of the table fails with ErrOutOfRange.
func (t *runTable) TimeToSample(tm uint64) (uint64, error) {
	var lowerTime, lowerSample uint64
	for i := 0; i < t.EntryCount(); i++ {
		count, duration := t.entry(i)
		span := uint64(count) * uint64(duration)
		if tm-lowerTime < span {
			return (tm-lowerTime)/uint64(duration) + lowerSample, nil
		}
		lowerTime += span
		lowerSample += uint64(count)
	}
	return 0, fmt.Errorf("%w: media time %d is past the end of '%s' (%d)", ErrOutOfRange, tm, t.tag, lowerTime)
}

// SampleTime is the decode time of sample n (1-based), the total duration of the samples
// before it.
func (t *runTable) SampleTime(n uint64) (tm uint64) {
	before := uint64(0)
	for i := 0; i < t.EntryCount() && before+1 < n; i++ {
		count, duration := t.entry(i)
		k := min(uint64(count), n-1-before)
		tm += k * uint64(duration)
		before += k
	}
	return
}

// ComputeDuration is the sum of count*duration over all entries.
func (t *runTable) ComputeDuration() (d uint64) {
	for i := 0; i < t.EntryCount(); i++ {
		count, duration := t.entry(i)
		d += uint64(count) * uint64(duration)
	}
	return
}

func (t *runTable) cut(n uint64) leaf {
	return leaf{tag: t.tag, data: cutRuns(t.data, runCountOff, runTableOff, LenTimeToSampleEntry, n)}
}

func newRunTable(tag Tag, counts, values []uint32) runTable {
	buf := field.New(runTableOff + len(counts)*LenTimeToSampleEntry)
	buf.PutU32(runCountOff, uint32(len(counts)))
	for i := range counts {
		off := runTableOff + i*LenTimeToSampleEntry
		buf.PutU32(off, counts[i])
		buf.PutU32(off+4, values[i])
	}
	return runTable{leaf: leaf{tag: tag, data: buf}}
}

func (t *runTable) String() string {
	return fmt.Sprintf("entries=%d samples=%d", t.EntryCount(), t.SampleCount())
}

// TimeToSample ('stts') maps decoding time to samples.
type TimeToSample struct {
	runTable
}

func NewTimeToSample(entries []TimeToSampleEntry) *TimeToSample {
	counts := make([]uint32, len(entries))
	durations := make([]uint32, len(entries))
	for i, e := range entries {
		counts[i], durations[i] = e.Count, e.Duration
	}
	return &TimeToSample{newRunTable(STTS, counts, durations)}
}

func (stts *TimeToSample) Entries() []TimeToSampleEntry {
	entries := make([]TimeToSampleEntry, stts.EntryCount())
	for i := range entries {
		entries[i].Count, entries[i].Duration = stts.entry(i)
	}
	return entries
}

// Cut returns a new table starting at sample n (1-based).
func (stts *TimeToSample) Cut(n uint64) *TimeToSample {
	return &TimeToSample{runTable{leaf: stts.cut(n)}}
}

func (stts *TimeToSample) Clone() *TimeToSample {
	return &TimeToSample{runTable{leaf: stts.clone()}}
}
