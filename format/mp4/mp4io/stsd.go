package mp4io

import "fmt"

const (
	STSD     = Tag(0x73747364)
	stsdSize = 8
)

// SampleDesc is copied verbatim beyond its entry count. A cut never changes the
// descriptions, only which samples refer to them.
type SampleDesc struct {
	leaf
}

func (stsd *SampleDesc) Unmarshal(payload []byte) error {
	if err := requireLen(STSD, payload, stsdSize); err != nil {
		return err
	}
	return stsd.leaf.Unmarshal(payload)
}

func (stsd *SampleDesc) EntryCount() uint32 {
	return stsd.data.U32(4)
}

// Formats lists the format code of every sample entry ('avc1', 'mp4a', ...).
func (stsd *SampleDesc) Formats() (formats []Tag) {
	for _, e := range stsd.Entries() {
		formats = append(formats, e.Format)
	}
	return
}

func (stsd *SampleDesc) Clone() *SampleDesc {
	return &SampleDesc{leaf: stsd.clone()}
}

func (stsd *SampleDesc) String() string {
	return fmt.Sprintf("entries=%d formats=%v", stsd.EntryCount(), stsd.Formats())
}
