package mp4io

const (
	FREE = Tag(0x66726565)
	SKIP = Tag(0x736b6970)
	WIDE = Tag(0x77696465)
)

// FreeType is top-level padding ('free', 'skip' or the QuickTime 'wide'). It is never
// written by WriteFile.
type FreeType struct {
	leaf
}
