// Package mp4io implements the MP4/QuickTime atom tree used by the splitter: parsing, size
// bookkeeping, serialization and the per-atom cut operations.
package mp4io

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/deepch/vdk/utils/bits/pio"
)

const (
	HeaderSize      = 8
	LargeHeaderSize = 16
)

type Tag uint32

func (t Tag) String() string {
	var b [4]byte
	pio.PutU32BE(b[:], uint32(t))
	for i := 0; i < 4; i++ {
		if b[i] == 0 {
			b[i] = ' '
		}
	}
	return string(b[:])
}

func StringToTag(tag string) Tag {
	var b [4]byte
	copy(b[:], []byte(tag))
	return Tag(pio.U32BE(b[:]))
}

// Atom is implemented by every box of the tree.
//
// Len is derived from the current contents and always equals the number of bytes Marshal
// writes: the header plus the payload or the children.
type Atom interface {
	Pos() (int64, uint64)
	Tag() Tag
	Len() uint64
	Marshal(w io.Writer) error
	Children() []Atom
}

// Container is an atom whose payload is a sequence of atoms. AddChild rejects any
// atom that is not part of the container's legal child set.
type Container interface {
	Atom
	AddChild(Atom) error
}

// Leaf is an atom whose payload is field data.
type Leaf interface {
	Atom
	Unmarshal(payload []byte) error
}

// AtomPos is the position of a parsed atom in its source. Atoms created by a cut have a
// zero position.
type AtomPos struct {
	Offset int64
	Size   uint64
}

func (p AtomPos) Pos() (int64, uint64) {
	return p.Offset, p.Size
}

func (p *AtomPos) setPos(offset int64, size uint64) {
	p.Offset, p.Size = offset, size
}

type positioner interface {
	setPos(offset int64, size uint64)
}

var registry = map[Tag]func() Atom{
	FTYP: func() Atom { return &FileType{leaf: leaf{tag: FTYP}} },
	FREE: func() Atom { return &FreeType{leaf: leaf{tag: FREE}} },
	SKIP: func() Atom { return &FreeType{leaf: leaf{tag: SKIP}} },
	WIDE: func() Atom { return &FreeType{leaf: leaf{tag: WIDE}} },
	MDAT: func() Atom { return new(MediaData) },
	MOOV: func() Atom { return new(Movie) },
	MVHD: func() Atom { return &MovieHeader{leaf: leaf{tag: MVHD}} },
	IODS: func() Atom { return &ObjectDesc{leaf: leaf{tag: IODS}} },
	UDTA: func() Atom { return &UserData{leaf: leaf{tag: UDTA}} },
	META: func() Atom { return &Meta{leaf: leaf{tag: META}} },
	TRAK: func() Atom { return new(Track) },
	TKHD: func() Atom { return &TrackHeader{leaf: leaf{tag: TKHD}} },
	TREF: func() Atom { return &TrackRefer{leaf: leaf{tag: TREF}} },
	EDTS: func() Atom { return new(Edit) },
	ELST: func() Atom { return &EditList{leaf: leaf{tag: ELST}} },
	MDIA: func() Atom { return new(Media) },
	MDHD: func() Atom { return &MediaHeader{leaf: leaf{tag: MDHD}} },
	HDLR: func() Atom { return &HandlerRefer{leaf: leaf{tag: HDLR}} },
	MINF: func() Atom { return new(MediaInfo) },
	VMHD: func() Atom { return &VideoMediaInfo{leaf: leaf{tag: VMHD}} },
	SMHD: func() Atom { return &SoundMediaInfo{leaf: leaf{tag: SMHD}} },
	GMHD: func() Atom { return &GenericMediaInfo{leaf: leaf{tag: GMHD}} },
	HMHD: func() Atom { return &HintMediaInfo{leaf: leaf{tag: HMHD}} },
	NMHD: func() Atom { return &NullMediaInfo{leaf: leaf{tag: NMHD}} },
	DINF: func() Atom { return &DataInfo{leaf: leaf{tag: DINF}} },
	STBL: func() Atom { return new(SampleTable) },
	STSD: func() Atom { return &SampleDesc{leaf: leaf{tag: STSD}} },
	STTS: func() Atom { return &TimeToSample{runTable{leaf: leaf{tag: STTS}}} },
	CTTS: func() Atom { return &CompositionOffset{runTable{leaf: leaf{tag: CTTS}}} },
	CSLG: func() Atom { return &CompositionShift{leaf: leaf{tag: CSLG}} },
	STSS: func() Atom { return &SyncSample{leaf: leaf{tag: STSS}} },
	SDTP: func() Atom { return &SampleDependency{leaf: leaf{tag: SDTP}} },
	SBGP: func() Atom { return &SampleToGroup{leaf: leaf{tag: SBGP}} },
	SGPD: func() Atom { return &SampleGroupDesc{leaf: leaf{tag: SGPD}} },
	STSC: func() Atom { return &SampleToChunk{leaf: leaf{tag: STSC}} },
	STSZ: func() Atom { return &SampleSize{leaf: leaf{tag: STSZ}} },
	STCO: func() Atom { return &ChunkOffset{offsetTable{leaf: leaf{tag: STCO}}} },
	CO64: func() Atom { return &ChunkOffset64{offsetTable{leaf: leaf{tag: CO64}}} },
}

// Resolve returns an empty atom for tag.
func Resolve(tag Tag) (Atom, error) {
	newAtom, ok := registry[tag]
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownBoxType, tag)
	}
	return newAtom(), nil
}

func FindChildrenByName(root Atom, tag string) Atom {
	return FindChildren(root, StringToTag(tag))
}

func FindChildren(root Atom, tag Tag) Atom {
	if root.Tag() == tag {
		return root
	}
	for _, child := range root.Children() {
		if r := FindChildren(child, tag); r != nil {
			return r
		}
	}
	return nil
}

// Walk calls fn for root and every descendant, parents before children.
func Walk(root Atom, fn func(atom Atom, depth int) error) error {
	return walk(root, 0, fn)
}

func walk(atom Atom, depth int, fn func(Atom, int) error) error {
	if err := fn(atom, depth); err != nil {
		return err
	}
	for _, child := range atom.Children() {
		if err := walk(child, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

func FprintAtom(out io.Writer, root Atom) {
	type stringintf interface {
		String() string
	}

	_ = Walk(root, func(atom Atom, depth int) error {
		offset, _ := atom.Pos()
		fmt.Fprintf(out,
			"%s%s offset=%d size=%d",
			strings.Repeat(" ", depth*2), atom.Tag(), offset, atom.Len(),
		)
		if str, ok := atom.(stringintf); ok {
			fmt.Fprint(out, " ", str.String())
		}
		fmt.Fprintln(out)
		return nil
	})
}

func PrintAtom(root Atom) {
	FprintAtom(os.Stdout, root)
}

func writeHeader(w io.Writer, size uint64, tag Tag) error {
	if size > maxU32 {
		return fmt.Errorf("%w: '%s' size %d needs a 64-bit header", ErrOutOfRange, tag, size)
	}
	var b [HeaderSize]byte
	pio.PutU32BE(b[0:], uint32(size))
	pio.PutU32BE(b[4:], uint32(tag))
	return write(w, b[:])
}

func writeLargeHeader(w io.Writer, size uint64, tag Tag) error {
	var b [LargeHeaderSize]byte
	pio.PutU32BE(b[0:], 1)
	pio.PutU32BE(b[4:], uint32(tag))
	pio.PutU64BE(b[8:], size)
	return write(w, b[:])
}

func write(w io.Writer, b []byte) error {
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteIO, err)
	}
	return nil
}

const maxU32 = 1<<32 - 1
