package mp4io

import (
	"errors"
	"fmt"
	"io"

	"github.com/deepch/vdk/utils/bits/pio"
)

// parser reads atoms front to back. The media data payload is skipped with a seek and
// never read.
type parser struct {
	r    io.ReadSeeker
	pos  int64
	size int64
}

// newParser measures the source up front, the one seek that goes back. Every declared
// atom size, mdat included, is checked against it while parsing.
func newParser(r io.ReadSeeker) (*parser, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err = r.Seek(pos, io.SeekStart); err != nil {
		return nil, err
	}
	return &parser{r: r, pos: pos, size: size}, nil
}

func (p *parser) read(b []byte) error {
	n, err := io.ReadFull(p.r, b)
	p.pos += int64(n)
	switch {
	case err == nil:
		return nil
	case n == 0 && errors.Is(err, io.EOF):
		return io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: need %d bytes, got %d", ErrTruncatedInput, len(b), n)
	default:
		return err
	}
}

// readHeader returns io.EOF only when the source ends exactly at a header boundary.
func (p *parser) readHeader() (tag Tag, size, hdr uint64, err error) {
	b := make([]byte, HeaderSize)
	if err = p.read(b); err != nil {
		return
	}
	size = uint64(pio.U32BE(b[0:]))
	tag = Tag(pio.U32BE(b[4:]))
	hdr = HeaderSize

	switch size {
	case 0:
		err = fmt.Errorf("%w: '%s' extends to the end of the file", ErrUnsupportedBoxSize, tag)
		return
	case 1:
		if tag != MDAT {
			err = fmt.Errorf("%w: 64-bit size on '%s'", ErrUnsupportedBoxSize, tag)
			return
		}
		if err = p.read(b); err != nil {
			if errors.Is(err, io.EOF) {
				err = fmt.Errorf("%w: '%s' 64-bit size missing", ErrTruncatedInput, tag)
			}
			return
		}
		size = pio.U64BE(b)
		hdr = LargeHeaderSize
	}
	if size < hdr {
		err = fmt.Errorf("%w: '%s' size %d is smaller than its header", ErrBoxSizeMismatch, tag, size)
	}
	return
}

// readAtom reads one atom of at most limit bytes. A larger declared size fails with
// overflow: a container reports a size mismatch, the top level reports truncated input.
func (p *parser) readAtom(limit uint64, overflow error) (Atom, error) {
	offset := p.pos
	tag, size, hdr, err := p.readHeader()
	if err == io.EOF { //nolint:errorlint
		return nil, err
	}
	if err != nil {
		return nil, parseErr(tag.String(), offset, err)
	}
	if size > limit {
		return nil, parseErr(tag.String(), offset,
			fmt.Errorf("%w: '%s' declares %d bytes, %d available", overflow, tag, size, limit))
	}

	atom, err := Resolve(tag)
	if err != nil {
		return nil, parseErr(tag.String(), offset, err)
	}
	payload := size - hdr

	switch a := atom.(type) {
	case *MediaData:
		a.attach(p.r, p.pos, payload, hdr == LargeHeaderSize)
		if _, err = p.r.Seek(int64(payload), io.SeekCurrent); err != nil {
			return nil, parseErr(tag.String(), offset, err)
		}
		p.pos += int64(payload)
	case Container:
		if err = p.readChildren(a, payload); err != nil {
			return nil, parseErr(tag.String(), offset, err)
		}
		if v, ok := a.(interface{ verify() error }); ok {
			if err = v.verify(); err != nil {
				return nil, parseErr(tag.String(), offset, err)
			}
		}
	case Leaf:
		b := make([]byte, payload)
		if err = p.read(b); err != nil {
			if errors.Is(err, io.EOF) {
				err = fmt.Errorf("%w: '%s' payload missing", ErrTruncatedInput, tag)
			}
			return nil, parseErr(tag.String(), offset, err)
		}
		if err = a.Unmarshal(b); err != nil {
			return nil, parseErr(tag.String(), offset, err)
		}
	}

	if pos, ok := atom.(positioner); ok {
		pos.setPos(offset, size)
	}
	return atom, nil
}

// readChildren reads atoms until they tile exactly payload bytes.
func (p *parser) readChildren(c Container, payload uint64) error {
	for remaining := payload; remaining > 0; {
		if remaining < HeaderSize {
			return fmt.Errorf("%w: %d trailing bytes in '%s'", ErrBoxSizeMismatch, remaining, c.Tag())
		}
		child, err := p.readAtom(remaining, ErrBoxSizeMismatch)
		if err == io.EOF { //nolint:errorlint
			return fmt.Errorf("%w: '%s' ends %d bytes early", ErrBoxSizeMismatch, c.Tag(), remaining)
		}
		if err != nil {
			return err
		}
		if err = c.AddChild(child); err != nil {
			return err
		}
		_, size := child.Pos()
		remaining -= size
	}
	return nil
}

// ReadFileAtoms parses every top-level atom of r.
func ReadFileAtoms(r io.ReadSeeker) (atoms []Atom, err error) {
	p, err := newParser(r)
	if err != nil {
		return nil, err
	}
	for {
		var atom Atom
		atom, err = p.readAtom(uint64(p.size-p.pos), ErrTruncatedInput)
		if err == io.EOF { //nolint:errorlint
			return atoms, nil
		}
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, atom)
	}
}

// File is a parsed presentation. FileType is optional, Movie and MediaData are required.
type File struct {
	FileType  *FileType
	Movie     *Movie
	MediaData *MediaData
	Free      []*FreeType
}

func (f *File) AddChild(atom Atom) error {
	switch a := atom.(type) {
	case *FileType:
		if f.FileType != nil {
			return errDuplicateTop(atom)
		}
		f.FileType = a
	case *Movie:
		if f.Movie != nil {
			return errDuplicateTop(atom)
		}
		f.Movie = a
	case *MediaData:
		if f.MediaData != nil {
			return errDuplicateTop(atom)
		}
		f.MediaData = a
	case *FreeType:
		f.Free = append(f.Free, a)
	default:
		return fmt.Errorf("%w: '%s' at the top level", ErrInvalidChildType, atom.Tag())
	}
	return nil
}

func errDuplicateTop(atom Atom) error {
	return fmt.Errorf("%w: duplicate top level '%s'", ErrInvalidChildType, atom.Tag())
}

// Atoms lists the atoms WriteFile writes, in output order.
func (f *File) Atoms() []Atom {
	var r []Atom
	if f.FileType != nil {
		r = append(r, f.FileType)
	}
	if f.Movie != nil {
		r = append(r, f.Movie)
	}
	if f.MediaData != nil {
		r = append(r, f.MediaData)
	}
	return r
}

// DataOffset is the output position of the first media data byte when f is written by
// WriteFile.
func (f *File) DataOffset() uint64 {
	var n uint64
	if f.FileType != nil {
		n += f.FileType.Len()
	}
	return n + f.Movie.Len() + f.MediaData.HeaderLen()
}

// ReadFile parses r into a File. The media data stays in r, which must remain readable
// until the file is written.
func ReadFile(r io.ReadSeeker) (*File, error) {
	atoms, err := ReadFileAtoms(r)
	if err != nil {
		return nil, err
	}
	f := new(File)
	for _, atom := range atoms {
		if err = f.AddChild(atom); err != nil {
			offset, _ := atom.Pos()
			return nil, parseErr(atom.Tag().String(), offset, err)
		}
	}
	if f.Movie == nil {
		return nil, fmt.Errorf("%w: no '%s'", ErrMissingBox, MOOV)
	}
	if f.MediaData == nil {
		return nil, fmt.Errorf("%w: no '%s'", ErrMissingBox, MDAT)
	}
	return f, nil
}
