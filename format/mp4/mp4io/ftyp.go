package mp4io

import "fmt"

const (
	FTYP          = Tag(0x66747970)
	baseFtypSize  = 8
	bytesPerBrand = 4
)

// FileType is the first atom of the stream.
type FileType struct {
	leaf
}

func (f *FileType) Unmarshal(payload []byte) error {
	if err := requireLen(FTYP, payload, baseFtypSize); err != nil {
		return err
	}
	if (len(payload)-baseFtypSize)%bytesPerBrand != 0 {
		return fmt.Errorf("%w: 'ftyp' brand list of %d bytes", ErrBoxSizeMismatch, len(payload)-baseFtypSize)
	}
	return f.leaf.Unmarshal(payload)
}

func (f *FileType) MajorBrand() Tag {
	return Tag(f.data.U32(0))
}

func (f *FileType) MinorVersion() uint32 {
	return f.data.U32(4)
}

func (f *FileType) CompatibleBrands() (brands []Tag) {
	for off := baseFtypSize; off+bytesPerBrand <= f.data.Len(); off += bytesPerBrand {
		brands = append(brands, Tag(f.data.U32(off)))
	}
	return
}

func (f *FileType) Clone() *FileType {
	return &FileType{leaf: f.clone()}
}

func (f *FileType) String() string {
	return fmt.Sprintf("brand=%s minor=%d compatible=%v", f.MajorBrand(), f.MinorVersion(), f.CompatibleBrands())
}
