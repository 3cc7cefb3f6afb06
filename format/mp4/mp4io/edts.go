package mp4io

import "io"

const EDTS = Tag(0x65647473)

type Edit struct {
	List *EditList
	container
}

func (edts *Edit) Tag() Tag {
	return EDTS
}

func (edts *Edit) AddChild(atom Atom) error {
	list, ok := atom.(*EditList)
	if !ok {
		return invalidChild(EDTS, atom)
	}
	if edts.List != nil {
		return duplicateChild(EDTS, atom)
	}
	edts.List = list
	edts.push(ELST)
	return nil
}

func (edts *Edit) Children() []Atom {
	if edts.List == nil {
		return nil
	}
	return []Atom{edts.List}
}

func (edts *Edit) Len() uint64 {
	return childrenLen(edts.Children())
}

func (edts *Edit) Marshal(w io.Writer) error {
	return marshalChildren(w, EDTS, edts.Children())
}

func (edts *Edit) verify() error {
	if edts.List == nil {
		return missingChild(EDTS, ELST)
	}
	return nil
}

// Cut collapses the edit list to a single edit of d movie timescale units.
func (edts *Edit) Cut(d uint64) (*Edit, error) {
	list := edts.List.Cut()
	if err := list.SetDuration(d); err != nil {
		return nil, err
	}
	return &Edit{List: list, container: edts.cloneOrder()}, nil
}

func (edts *Edit) Clone() *Edit {
	return &Edit{List: edts.List.Clone(), container: edts.cloneOrder()}
}
