package mp4io

import (
	"fmt"

	"github.com/ugparu/mp4split/utils/bits/field"
)

const (
	SBGP                  = Tag(0x73626770)
	LenSampleToGroupEntry = 8
)

// SampleToGroup ('sbgp') assigns runs of samples to sample group descriptions.
type SampleToGroup struct {
	leaf
}

func (sbgp *SampleToGroup) countOff() int {
	if sbgp.version() == 1 {
		return 12
	}
	return 8
}

func (sbgp *SampleToGroup) Unmarshal(payload []byte) error {
	if err := requireLen(SBGP, payload, 12); err != nil {
		return err
	}
	countOff := 8
	if payload[0] == 1 {
		countOff = 12
		if err := requireLen(SBGP, payload, 16); err != nil {
			return err
		}
	}
	count := field.Wrap(payload).U32(countOff)
	if err := checkTable(SBGP, payload, countOff+4, count, LenSampleToGroupEntry); err != nil {
		return err
	}
	return sbgp.leaf.Unmarshal(payload)
}

func (sbgp *SampleToGroup) GroupingType() Tag {
	return Tag(sbgp.data.U32(4))
}

func (sbgp *SampleToGroup) EntryCount() int {
	return int(sbgp.data.U32(sbgp.countOff()))
}

func (sbgp *SampleToGroup) SampleCount() uint64 {
	return runSamples(sbgp.data, sbgp.countOff(), sbgp.countOff()+4, LenSampleToGroupEntry)
}

// Cut returns a new table starting at sample n (1-based).
func (sbgp *SampleToGroup) Cut(n uint64) *SampleToGroup {
	off := sbgp.countOff()
	return &SampleToGroup{leaf: leaf{tag: SBGP, data: cutRuns(sbgp.data, off, off+4, LenSampleToGroupEntry, n)}}
}

func (sbgp *SampleToGroup) Clone() *SampleToGroup {
	return &SampleToGroup{leaf: sbgp.clone()}
}

func (sbgp *SampleToGroup) String() string {
	return fmt.Sprintf("grouping=%s entries=%d", sbgp.GroupingType(), sbgp.EntryCount())
}
