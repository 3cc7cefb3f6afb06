package mp4io

import (
	"fmt"

	"github.com/ugparu/mp4split/utils/bits/field"
)

const (
	SDTP         = Tag(0x73647470)
	sdtpTableOff = 4
)

// SampleDependency ('sdtp') holds one dependency byte per sample. Its sample count is
// implied by the atom size.
type SampleDependency struct {
	leaf
}

func (sdtp *SampleDependency) Unmarshal(payload []byte) error {
	if err := requireLen(SDTP, payload, sdtpTableOff); err != nil {
		return err
	}
	return sdtp.leaf.Unmarshal(payload)
}

func (sdtp *SampleDependency) SampleCount() uint64 {
	return uint64(sdtp.data.Len() - sdtpTableOff)
}

// Flags returns the dependency byte of sample n (1-based).
func (sdtp *SampleDependency) Flags(n uint64) uint8 {
	return sdtp.data.U8(sdtpTableOff + int(n-1))
}

// Cut drops the samples before n (1-based).
func (sdtp *SampleDependency) Cut(n uint64) *SampleDependency {
	if n < 1 {
		n = 1
	}
	kept := 0
	if total := sdtp.SampleCount(); n <= total {
		kept = int(total - n + 1)
	}
	out := field.New(sdtpTableOff + kept)
	out.PutBytes(0, sdtp.data.Bytes(0, sdtpTableOff))
	if kept > 0 {
		out.PutBytes(sdtpTableOff, sdtp.data.Bytes(sdtpTableOff+int(n-1), kept))
	}
	return &SampleDependency{leaf: leaf{tag: SDTP, data: out}}
}

func (sdtp *SampleDependency) Clone() *SampleDependency {
	return &SampleDependency{leaf: sdtp.clone()}
}

func (sdtp *SampleDependency) String() string {
	return fmt.Sprintf("samples=%d", sdtp.SampleCount())
}
