package bptree

import (
	"fmt"
	"io"
)

// Print writes a bracketed dump of the subtree rooted at page to w: Leaf
// pages print their (key, value) pairs, Internal pages print each
// separator key followed by a recursive dump of its child. This mirrors
// the original source's diagnostic print routine, made to write to an
// io.Writer instead of stdout so callers can capture or suppress it.
func (t *Tree) Print(w io.Writer, page uint32) {
	p := t.pager.getReadPage(page)
	defer t.pager.releaseRead(p)

	fmt.Fprint(w, "[ ")
	for i := uint16(0); i < p.NSlots; i++ {
		key, value := p.readCellAtSlot(i)
		if p.Kind == KindLeaf {
			fmt.Fprintf(w, "(%d, %d) ", key, value)
		} else {
			fmt.Fprintf(w, "%d ", key)
			t.Print(w, uint32(value))
			fmt.Fprint(w, " ")
		}
	}
	fmt.Fprint(w, "]")
}
