package mp4io

import (
	"errors"
	"io"
)

const STBL = Tag(0x7374626c)

type SampleTable struct {
	SampleDesc        *SampleDesc
	TimeToSample      *TimeToSample
	CompositionOffset *CompositionOffset
	CompositionShift  *CompositionShift
	SyncSample        *SyncSample
	SampleDependency  *SampleDependency
	SampleToGroup     *SampleToGroup
	SampleGroupDesc   *SampleGroupDesc
	SampleToChunk     *SampleToChunk
	SampleSize        *SampleSize
	ChunkOffset       *ChunkOffset
	ChunkOffset64     *ChunkOffset64
	container
}

func (stbl *SampleTable) Tag() Tag {
	return STBL
}

func (stbl *SampleTable) AddChild(atom Atom) error {
	switch a := atom.(type) {
	case *SampleDesc:
		if stbl.SampleDesc != nil {
			return duplicateChild(STBL, atom)
		}
		stbl.SampleDesc = a
	case *TimeToSample:
		if stbl.TimeToSample != nil {
			return duplicateChild(STBL, atom)
		}
		stbl.TimeToSample = a
	case *CompositionOffset:
		if stbl.CompositionOffset != nil {
			return duplicateChild(STBL, atom)
		}
		stbl.CompositionOffset = a
	case *CompositionShift:
		if stbl.CompositionShift != nil {
			return duplicateChild(STBL, atom)
		}
		stbl.CompositionShift = a
	case *SyncSample:
		if stbl.SyncSample != nil {
			return duplicateChild(STBL, atom)
		}
		stbl.SyncSample = a
	case *SampleDependency:
		if stbl.SampleDependency != nil {
			return duplicateChild(STBL, atom)
		}
		stbl.SampleDependency = a
	case *SampleToGroup:
		if stbl.SampleToGroup != nil {
			return duplicateChild(STBL, atom)
		}
		stbl.SampleToGroup = a
	case *SampleGroupDesc:
		if stbl.SampleGroupDesc != nil {
			return duplicateChild(STBL, atom)
		}
		stbl.SampleGroupDesc = a
	case *SampleToChunk:
		if stbl.SampleToChunk != nil {
			return duplicateChild(STBL, atom)
		}
		stbl.SampleToChunk = a
	case *SampleSize:
		if stbl.SampleSize != nil {
			return duplicateChild(STBL, atom)
		}
		stbl.SampleSize = a
	case *ChunkOffset:
		if stbl.ChunkOffset != nil || stbl.ChunkOffset64 != nil {
			return duplicateChild(STBL, atom)
		}
		stbl.ChunkOffset = a
	case *ChunkOffset64:
		if stbl.ChunkOffset != nil || stbl.ChunkOffset64 != nil {
			return duplicateChild(STBL, atom)
		}
		stbl.ChunkOffset64 = a
	default:
		return invalidChild(STBL, atom)
	}
	stbl.push(atom.Tag())
	return nil
}

func (stbl *SampleTable) Children() []Atom {
	var r []Atom
	if stbl.SampleDesc != nil {
		r = append(r, stbl.SampleDesc)
	}
	if stbl.TimeToSample != nil {
		r = append(r, stbl.TimeToSample)
	}
	if stbl.CompositionOffset != nil {
		r = append(r, stbl.CompositionOffset)
	}
	if stbl.CompositionShift != nil {
		r = append(r, stbl.CompositionShift)
	}
	if stbl.SyncSample != nil {
		r = append(r, stbl.SyncSample)
	}
	if stbl.SampleDependency != nil {
		r = append(r, stbl.SampleDependency)
	}
	if stbl.SampleToGroup != nil {
		r = append(r, stbl.SampleToGroup)
	}
	if stbl.SampleGroupDesc != nil {
		r = append(r, stbl.SampleGroupDesc)
	}
	if stbl.SampleToChunk != nil {
		r = append(r, stbl.SampleToChunk)
	}
	if stbl.SampleSize != nil {
		r = append(r, stbl.SampleSize)
	}
	if stbl.ChunkOffset != nil {
		r = append(r, stbl.ChunkOffset)
	}
	if stbl.ChunkOffset64 != nil {
		r = append(r, stbl.ChunkOffset64)
	}
	return stbl.arrange(r)
}

func (stbl *SampleTable) Len() uint64 {
	return childrenLen(stbl.Children())
}

func (stbl *SampleTable) Marshal(w io.Writer) error {
	return marshalChildren(w, STBL, stbl.Children())
}

func (stbl *SampleTable) verify() error {
	switch {
	case stbl.SampleDesc == nil:
		return missingChild(STBL, STSD)
	case stbl.TimeToSample == nil:
		return missingChild(STBL, STTS)
	case stbl.SampleToChunk == nil:
		return missingChild(STBL, STSC)
	case stbl.SampleSize == nil:
		return missingChild(STBL, STSZ)
	case stbl.ChunkOffsets() == nil:
		return missingChild(STBL, STCO)
	}
	return nil
}

// ChunkOffsets returns whichever chunk offset table is present, or nil.
func (stbl *SampleTable) ChunkOffsets() ChunkOffsets {
	if stbl.ChunkOffset != nil {
		return stbl.ChunkOffset
	}
	if stbl.ChunkOffset64 != nil {
		return stbl.ChunkOffset64
	}
	return nil
}

// Cut returns a table that starts at the sample playing at media time t. A time past
// the last sample yields a table without samples.
func (stbl *SampleTable) Cut(t uint64) (*SampleTable, error) {
	idx, err := stbl.TimeToSample.TimeToSample(t)
	if errors.Is(err, ErrOutOfRange) {
		return stbl.CutAtSample(stbl.TimeToSample.SampleCount() + 1)
	}
	if err != nil {
		return nil, err
	}
	return stbl.CutAtSample(idx + 1)
}

// SyncTime returns the decode time of the last sync sample at or before media time t.
// ok is false when the table has no sync sample list or t is past the last sample.
func (stbl *SampleTable) SyncTime(t uint64) (sync uint64, ok bool) {
	if stbl.SyncSample == nil || stbl.SyncSample.EntryCount() == 0 {
		return 0, false
	}
	idx, err := stbl.TimeToSample.TimeToSample(t)
	if err != nil {
		return 0, false
	}
	return stbl.TimeToSample.SampleTime(stbl.SyncSample.SyncBefore(idx + 1)), true
}

// CutAtSample returns a table whose first sample is sample n (1-based) of stbl. Every
// per-sample table is cut at the same sample and the chunk tables are cut at the chunk
// holding it, with the samples of that chunk before n skipped.
func (stbl *SampleTable) CutAtSample(n uint64) (*SampleTable, error) {
	if n < 1 {
		n = 1
	}
	offsets := stbl.ChunkOffsets()
	chunks := offsets.ChunkCount()

	cut := &SampleTable{container: stbl.cloneOrder()}
	cut.SampleDesc = stbl.SampleDesc.Clone()
	cut.TimeToSample = stbl.TimeToSample.Cut(n)
	if stbl.CompositionOffset != nil {
		cut.CompositionOffset = stbl.CompositionOffset.Cut(n)
	}
	// cslg bounds follow the kept samples, with no samples left there is nothing to bound
	if stbl.CompositionShift != nil && cut.CompositionOffset != nil && cut.TimeToSample.SampleCount() > 0 {
		var err error
		if cut.CompositionShift, err = stbl.CompositionShift.Recompute(cut.TimeToSample, cut.CompositionOffset); err != nil {
			return nil, err
		}
	}
	if stbl.SyncSample != nil {
		cut.SyncSample = stbl.SyncSample.Cut(n)
	}
	if stbl.SampleDependency != nil {
		cut.SampleDependency = stbl.SampleDependency.Cut(n)
	}
	if stbl.SampleToGroup != nil {
		cut.SampleToGroup = stbl.SampleToGroup.Cut(n)
	}
	if stbl.SampleGroupDesc != nil {
		cut.SampleGroupDesc = stbl.SampleGroupDesc.Clone()
	}
	cut.SampleSize = stbl.SampleSize.Cut(n)

	// past the last sample every chunk goes
	chunk, firstOffset, skipped := chunks+1, uint64(0), uint32(0)
	if n <= stbl.TimeToSample.SampleCount() {
		var first uint64
		var err error
		if chunk, first, err = stbl.SampleToChunk.Locate(n, chunks); err != nil {
			return nil, err
		}
		skipped = uint32(n - first)
		firstOffset = offsets.ChunkOffsetAt(chunk) + stbl.SampleSize.BytesBetween(first, n)
	}
	cut.SampleToChunk = stbl.SampleToChunk.Cut(chunk, skipped, chunks)

	var err error
	if stbl.ChunkOffset != nil {
		cut.ChunkOffset, err = stbl.ChunkOffset.Cut(chunk, firstOffset)
	} else {
		cut.ChunkOffset64, err = stbl.ChunkOffset64.Cut(chunk, firstOffset)
	}
	if err != nil {
		return nil, err
	}
	return cut, nil
}

func (stbl *SampleTable) Clone() *SampleTable {
	cut := &SampleTable{container: stbl.cloneOrder()}
	cut.SampleDesc = stbl.SampleDesc.Clone()
	cut.TimeToSample = stbl.TimeToSample.Clone()
	if stbl.CompositionOffset != nil {
		cut.CompositionOffset = stbl.CompositionOffset.Clone()
	}
	if stbl.CompositionShift != nil {
		cut.CompositionShift = stbl.CompositionShift.Clone()
	}
	if stbl.SyncSample != nil {
		cut.SyncSample = stbl.SyncSample.Clone()
	}
	if stbl.SampleDependency != nil {
		cut.SampleDependency = stbl.SampleDependency.Clone()
	}
	if stbl.SampleToGroup != nil {
		cut.SampleToGroup = stbl.SampleToGroup.Clone()
	}
	if stbl.SampleGroupDesc != nil {
		cut.SampleGroupDesc = stbl.SampleGroupDesc.Clone()
	}
	cut.SampleToChunk = stbl.SampleToChunk.Clone()
	cut.SampleSize = stbl.SampleSize.Clone()
	if stbl.ChunkOffset != nil {
		cut.ChunkOffset = stbl.ChunkOffset.Clone()
	}
	if stbl.ChunkOffset64 != nil {
		cut.ChunkOffset64 = stbl.ChunkOffset64.Clone()
	}
	return cut
}
