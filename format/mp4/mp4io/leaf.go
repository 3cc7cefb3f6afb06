package mp4io

import (
	"fmt"
	"io"

	"github.com/ugparu/mp4split/utils/bits/field"
)

// leaf keeps the payload of a field-data atom. Typed accessors of the embedding atom
// are the only way the payload is read or changed.
type leaf struct {
	tag  Tag
	data *field.Buffer
	AtomPos
}

func (l *leaf) Tag() Tag {
	return l.tag
}

func (l *leaf) Len() uint64 {
	return HeaderSize + uint64(l.data.Len())
}

func (l *leaf) Marshal(w io.Writer) error {
	if err := writeHeader(w, l.Len(), l.tag); err != nil {
		return err
	}
	return write(w, l.data.Raw())
}

func (l *leaf) Unmarshal(payload []byte) error {
	l.data = field.Wrap(payload)
	return nil
}

func (l *leaf) Children() []Atom {
	return nil
}

func (l *leaf) clone() leaf {
	return leaf{tag: l.tag, data: l.data.Clone()}
}

// version and flags of a full box.
func (l *leaf) version() uint8 {
	return l.data.U8(0)
}

func (l *leaf) flags() uint32 {
	return l.data.U24(1)
}

func requireLen(tag Tag, payload []byte, n int) error {
	if len(payload) < n {
		return fmt.Errorf("%w: '%s' payload has %d bytes, need %d", ErrTruncatedInput, tag, len(payload), n)
	}
	return nil
}

// checkTable validates that a table payload holds exactly count entries of stride bytes
// after tableOff.
func checkTable(tag Tag, payload []byte, tableOff int, count uint32, stride int) error {
	need := uint64(tableOff) + uint64(count)*uint64(stride)
	if uint64(len(payload)) < need {
		return fmt.Errorf("%w: '%s' declares %d entries, payload has %d bytes", ErrTruncatedInput, tag, count, len(payload))
	}
	if uint64(len(payload)) > need {
		return fmt.Errorf("%w: '%s' has %d bytes after %d entries", ErrBoxSizeMismatch, tag, uint64(len(payload))-need, count)
	}
	return nil
}
