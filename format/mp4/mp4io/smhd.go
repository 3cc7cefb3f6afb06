package mp4io

import "fmt"

const (
	SMHD     = Tag(0x736d6864)
	smhdSize = 8
)

type SoundMediaInfo struct {
	leaf
}

func (smhd *SoundMediaInfo) Unmarshal(payload []byte) error {
	if err := requireLen(SMHD, payload, smhdSize); err != nil {
		return err
	}
	return smhd.leaf.Unmarshal(payload)
}

// Balance is the stereo balance, -1.0 is full left, 1.0 full right.
func (smhd *SoundMediaInfo) Balance() float64 {
	return smhd.data.Fixed16(4)
}

func (smhd *SoundMediaInfo) Clone() *SoundMediaInfo {
	return &SoundMediaInfo{leaf: smhd.clone()}
}

func (smhd *SoundMediaInfo) String() string {
	return fmt.Sprintf("balance=%.2f", smhd.Balance())
}
