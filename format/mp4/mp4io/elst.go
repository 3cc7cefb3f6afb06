package mp4io

import (
	"fmt"

	"github.com/ugparu/mp4split/utils/bits/field"
)

const ELST = Tag(0x656c7374)

type EditListEntry struct {
	SegmentDuration uint64
	MediaTime       int64
	MediaRate       float64
}

// EditList ('elst') maps the presentation timeline onto media time. An entry with a
// media time of -1 is an empty edit.
type EditList struct {
	leaf
}

func NewEditList(version uint8, entries []EditListEntry) *EditList {
	el := &EditList{leaf: leaf{tag: ELST}}
	el.data = field.New(listTableOff)
	el.data.PutU8(0, version)
	el.setEntries(entries)
	return el
}

func (el *EditList) stride() int {
	if el.version() == 1 {
		return 20
	}
	return 12
}

func (el *EditList) Unmarshal(payload []byte) error {
	if err := requireLen(ELST, payload, listTableOff); err != nil {
		return err
	}
	buf := field.Wrap(payload)
	stride := 12
	if buf.U8(0) == 1 {
		stride = 20
	}
	if err := checkTable(ELST, payload, listTableOff, buf.U32(listCountOff), stride); err != nil {
		return err
	}
	return el.leaf.Unmarshal(payload)
}

func (el *EditList) EntryCount() int {
	return int(el.data.U32(listCountOff))
}

func (el *EditList) Entry(i int) (e EditListEntry) {
	off := listTableOff + i*el.stride()
	if el.version() == 1 {
		e.SegmentDuration = el.data.U64(off)
		e.MediaTime = el.data.I64(off + 8)
		e.MediaRate = el.data.Fixed32(off + 16)
		return
	}
	e.SegmentDuration = uint64(el.data.U32(off))
	e.MediaTime = int64(el.data.I32(off + 4))
	e.MediaRate = el.data.Fixed32(off + 8)
	return
}

func (el *EditList) Entries() []EditListEntry {
	entries := make([]EditListEntry, el.EntryCount())
	for i := range entries {
		entries[i] = el.Entry(i)
	}
	return entries
}

func (el *EditList) setEntries(entries []EditListEntry) {
	head := el.data.Bytes(0, 4)
	stride := el.stride()
	el.data = field.New(listTableOff + len(entries)*stride)
	el.data.PutBytes(0, head)
	el.data.PutU32(listCountOff, uint32(len(entries)))
	for i, e := range entries {
		off := listTableOff + i*stride
		if el.version() == 1 {
			el.data.PutU64(off, e.SegmentDuration)
			el.data.PutI64(off+8, e.MediaTime)
			el.data.PutFixed32(off+16, e.MediaRate)
			continue
		}
		el.data.PutU32(off, uint32(e.SegmentDuration))
		el.data.PutI32(off+4, int32(e.MediaTime))
		el.data.PutFixed32(off+8, e.MediaRate)
	}
}

// Duration is the sum of the segment durations, in movie timescale units.
func (el *EditList) Duration() (d uint64) {
	for i := 0; i < el.EntryCount(); i++ {
		d += el.Entry(i).SegmentDuration
	}
	return
}

// SetDuration makes the list describe a single segment of d movie units.
func (el *EditList) SetDuration(d uint64) error {
	if el.version() == 0 && d > maxU32 {
		return fmt.Errorf("%w: '%s' duration %d does not fit a version 0 entry", ErrOutOfRange, ELST, d)
	}
	entries := el.Entries()
	switch len(entries) {
	case 0:
		entries = []EditListEntry{{MediaRate: 1}}
	case 1:
	default:
		entries = entries[:1]
	}
	entries[0].SegmentDuration = d
	el.setEntries(entries)
	return nil
}

// Cut collapses the list to a single edit. The media time and rate of the first non-empty
// edit are kept, so a composition offset shift survives the cut. The segment duration is
// set by SetDuration once the media duration is known.
func (el *EditList) Cut() *EditList {
	edit := EditListEntry{MediaRate: 1}
	for i := 0; i < el.EntryCount(); i++ {
		if e := el.Entry(i); e.MediaTime != -1 {
			edit.MediaTime, edit.MediaRate = e.MediaTime, e.MediaRate
			break
		}
	}
	cut := &EditList{leaf: el.clone()}
	cut.setEntries([]EditListEntry{edit})
	return cut
}

func (el *EditList) Clone() *EditList {
	return &EditList{leaf: el.clone()}
}

func (el *EditList) String() string {
	return fmt.Sprintf("entries=%d duration=%d", el.EntryCount(), el.Duration())
}
