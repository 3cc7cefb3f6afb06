package mp4io

const DINF = Tag(0x64696e66)

// DataInfo is kept verbatim, data references do not change when a file is cut.
type DataInfo struct {
	leaf
}

func (d *DataInfo) Clone() *DataInfo {
	return &DataInfo{leaf: d.clone()}
}
