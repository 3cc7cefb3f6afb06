package mp4io

import "io"

// WriteFile writes the file type, the movie and then the media data. Free atoms are
// dropped. Chunk offsets must already match this layout.
func WriteFile(w io.Writer, f *File) error {
	for _, atom := range f.Atoms() {
		if err := atom.Marshal(w); err != nil {
			return err
		}
	}
	return nil
}
