package mp4io

import "io"

// container is embedded by every container atom. It records the order in which children
// were added so that a parsed tree is written back byte for byte.
type container struct {
	order []Tag
	AtomPos
}

func (c *container) push(tag Tag) {
	c.order = append(c.order, tag)
}

func (c *container) cloneOrder() container {
	return container{order: append([]Tag(nil), c.order...)}
}

// arrange lists the children in the recorded order. Children the order does not mention
// follow in the order given.
func (c *container) arrange(present []Atom) []Atom {
	used := make([]bool, len(present))
	out := make([]Atom, 0, len(present))
	for _, tag := range c.order {
		for i, atom := range present {
			if !used[i] && atom.Tag() == tag {
				used[i] = true
				out = append(out, atom)
				break
			}
		}
	}
	for i, atom := range present {
		if !used[i] {
			out = append(out, atom)
		}
	}
	return out
}

func childrenLen(children []Atom) uint64 {
	n := uint64(HeaderSize)
	for _, child := range children {
		n += child.Len()
	}
	return n
}

func marshalChildren(w io.Writer, tag Tag, children []Atom) error {
	if err := writeHeader(w, childrenLen(children), tag); err != nil {
		return err
	}
	for _, child := range children {
		if err := child.Marshal(w); err != nil {
			return err
		}
	}
	return nil
}
