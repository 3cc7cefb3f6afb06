package mp4io

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTruncatedInput means the source ended before a declared size was satisfied.
	ErrTruncatedInput = errors.New("mp4io: truncated input")

	// ErrBoxSizeMismatch means the children of a container do not tile its declared size.
	ErrBoxSizeMismatch = errors.New("mp4io: box size mismatch")

	// ErrInvalidChildType means a container received a child outside its legal set.
	ErrInvalidChildType = errors.New("mp4io: invalid child type")

	// ErrUnsupportedBoxSize covers the "extends to end of file" size and 64-bit sizes
	// on anything but the media data.
	ErrUnsupportedBoxSize = errors.New("mp4io: unsupported box size")

	ErrUnknownBoxType = errors.New("mp4io: unknown box type")
	ErrWriteIO        = errors.New("mp4io: write failed")
	ErrMissingBox     = errors.New("mp4io: missing box")
	ErrOutOfRange     = errors.New("mp4io: value out of range")
)

// ParseError records the path of atoms that were being parsed when an error occurred,
// outermost first.
type ParseError struct {
	Debug  string
	Offset int64
	Err    error
}

func (p *ParseError) Error() string {
	s := []string{}
	var err error = p
	for {
		pe, ok := err.(*ParseError) //nolint:errorlint
		if !ok {
			break
		}
		s = append(s, fmt.Sprintf("%s:%d", pe.Debug, pe.Offset))
		err = pe.Err
	}
	return "mp4io: parse error: " + strings.Join(s, ",") + ": " + err.Error()
}

func (p *ParseError) Unwrap() error {
	return p.Err
}

func parseErr(debug string, offset int64, err error) error {
	return &ParseError{Debug: debug, Offset: offset, Err: err}
}

func invalidChild(parent Tag, child Atom) error {
	return fmt.Errorf("%w: can't add '%s' to '%s'", ErrInvalidChildType, child.Tag(), parent)
}

func duplicateChild(parent Tag, child Atom) error {
	return fmt.Errorf("%w: duplicate '%s' in '%s'", ErrInvalidChildType, child.Tag(), parent)
}

func missingChild(parent Tag, child Tag) error {
	return fmt.Errorf("%w: '%s' has no '%s'", ErrMissingBox, parent, child)
}
