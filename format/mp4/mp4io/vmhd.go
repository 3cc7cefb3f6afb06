package mp4io

const (
	VMHD     = Tag(0x766d6864)
	vmhdSize = 12
)

type VideoMediaInfo struct {
	leaf
}

func (vmhd *VideoMediaInfo) Unmarshal(payload []byte) error {
	if err := requireLen(VMHD, payload, vmhdSize); err != nil {
		return err
	}
	return vmhd.leaf.Unmarshal(payload)
}

func (vmhd *VideoMediaInfo) GraphicsMode() uint16 {
	return vmhd.data.U16(4)
}

func (vmhd *VideoMediaInfo) Opcolor() [3]uint16 {
	return [3]uint16{vmhd.data.U16(6), vmhd.data.U16(8), vmhd.data.U16(10)}
}

func (vmhd *VideoMediaInfo) Clone() *VideoMediaInfo {
	return &VideoMediaInfo{leaf: vmhd.clone()}
}
