package bptree

import (
	"sync"

	"github.com/flurrydb/bptree/internal/varint"
)

// Page is a slotted page: a small header, a growing array of 16-bit cell
// offsets (Slots), and a growing region of variable-width cells (Cells).
// Cells is backed by the interfaces.PageStore buffer the pager extended for
// this page index, so the cell bytes are the store's bytes, not a separate
// copy; Slots is kept as its own Go slice at worst-case capacity so a page
// never reallocates it — see DESIGN.md for why that half of the split was
// chosen over byte-exact packing. The logical PageSize budget is enforced by
// bookkeeping (relevantSize/totalSize below), not by the length of Slots.
type Page struct {
	Kind           PageKind
	NSlots         uint16
	CellsHighWater uint16
	FreeHead       uint16 // index+1 into Cells; 0 means the free list is empty
	FreeBytes      uint16
	Slots          []uint16
	Cells          []byte
	PageIndex      uint32

	lock sync.RWMutex
}

// newPage wraps backing — the byte buffer a PageStore handed out for
// index — as a Page's cell region.
func newPage(kind PageKind, index uint32, backing []byte) *Page {
	return &Page{
		Kind:      kind,
		Slots:     make([]uint16, slotCapacity),
		Cells:     backing[:cellCapacity],
		PageIndex: index,
	}
}

// reset clears a page back to empty-of-kind, as happens both for a freshly
// allocated page and for a page recycled off the pager freelist.
func (p *Page) reset(kind PageKind) {
	p.Kind = kind
	p.NSlots = 0
	p.CellsHighWater = 0
	p.FreeHead = 0
	p.FreeBytes = 0
}

// cellSize reports a cell's physical size from its first byte.
func (p *Page) cellSize(offset uint16) uint8 {
	return p.Cells[offset]
}

// requiredCellSize computes the physical size a (key, value) cell needs,
// clamped up to MinCellSize. Per spec.md §9's resolution of the source's
// ambiguous zero-width convention, a key of 0 still occupies one byte (so
// the free-list's reused "next" field, which lives in the key slot, is
// never width 0 — width 0 would make the free-chain walk underflow when
// reading a successor's width byte).
func requiredCellSize(key, value uint64) uint8 {
	keyWidth := varint.Width(key, 1)
	valueWidth := varint.Width(value, 0)
	size := 3 + keyWidth + valueWidth
	if size < MinCellSize {
		size = MinCellSize
	}
	return size
}

// readCell decodes the (key, value) pair stored in the cell at the given
// byte offset into Cells.
func (p *Page) readCell(offset uint16) (key, value uint64) {
	keyWidth := p.Cells[offset+1]
	valueWidth := p.Cells[offset+2]
	key = varint.Decode[uint64](p.Cells[offset+3 : offset+3+uint16(keyWidth)])
	value = varint.Decode[uint64](p.Cells[offset+3+uint16(keyWidth) : offset+3+uint16(keyWidth)+uint16(valueWidth)])
	return key, value
}

// writeCell writes (key, value) at offset. If forcedSize is 0, the cell is
// sized to exactly what (key, value) need; otherwise forcedSize is used
// as-is (the caller must have already checked it is large enough), so an
// in-place overwrite or a salvaged free cell keeps its physical size. It
// returns the size actually written.
func (p *Page) writeCell(offset uint16, key, value uint64, forcedSize uint8) uint8 {
	keyWidth := varint.Width(key, 1)
	valueWidth := varint.Width(value, 0)

	size := forcedSize
	if size == 0 {
		size = 3 + keyWidth + valueWidth
		if size < MinCellSize {
			size = MinCellSize
		}
	}

	p.Cells[offset] = size
	p.Cells[offset+1] = keyWidth
	p.Cells[offset+2] = valueWidth
	varint.Encode(key, p.Cells[offset+3:offset+3+uint16(keyWidth)])
	varint.Encode(value, p.Cells[offset+3+uint16(keyWidth):offset+3+uint16(keyWidth)+uint16(valueWidth)])
	return size
}

// readCellAtSlot dereferences Slots[slot] and decodes it.
func (p *Page) readCellAtSlot(slot uint16) (key, value uint64) {
	return p.readCell(p.Slots[slot])
}

// relevantSize is header + slot-array bytes + live-cell bytes, i.e. the
// minimum size the page would need after a vacuum.
func (p *Page) relevantSize(includeHeader bool) uint32 {
	size := uint32(p.NSlots)*2 + uint32(p.CellsHighWater-p.FreeBytes)
	if includeHeader {
		size += HeaderSize
	}
	return size
}

// totalSize is relevantSize plus whatever is currently tied up in the free
// list — the size before a vacuum would reclaim it.
func (p *Page) totalSize(includeHeader bool) uint32 {
	size := uint32(p.NSlots)*2 + uint32(p.CellsHighWater)
	if includeHeader {
		size += HeaderSize
	}
	return size
}

// maxKey returns the key of the page's last slot — its separator key if
// Internal, its maximum live key if Leaf. The page must have at least one
// slot.
func (p *Page) maxKey() uint64 {
	k, _ := p.readCellAtSlot(p.NSlots - 1)
	return k
}

// binarySearch finds the first slot whose key is >= target. found is true
// only on an exact match. When every slot's key is below target, slot ==
// p.NSlots and value is 0 (callers that care about an insertion point past
// the end should treat slot==NSlots as "append").
func (p *Page) binarySearch(target uint64) (found bool, slot uint16, value uint64) {
	left, right := uint16(0), p.NSlots
	for left < right {
		mid := left + (right-left)/2
		k, v := p.readCellAtSlot(mid)
		switch {
		case k == target:
			return true, mid, v
		case k < target:
			left = mid + 1
		default:
			right = mid
		}
	}
	if left < p.NSlots {
		_, value = p.readCellAtSlot(left)
	}
	return false, left, value
}

// cleanCell removes the cell at the given slot's cell storage: if it is the
// last cell in the bump region, the high water mark recedes past it;
// otherwise it becomes a free-list node. If shiftSlots, Slots[slot] itself
// is also removed, shifting later entries left.
func (p *Page) cleanCell(slot uint16, shiftSlots bool) {
	offset := p.Slots[slot]
	size := p.cellSize(offset)
	isLast := offset+uint16(size) == p.CellsHighWater

	if isLast {
		p.CellsHighWater -= uint16(size)
	} else {
		p.Cells[offset] = size // preserve physical size
		p.writeCell(offset, uint64(p.FreeHead), 0, size)
		p.FreeHead = offset + 1
		p.FreeBytes += uint16(size)
	}

	if shiftSlots {
		copy(p.Slots[slot:p.NSlots-1], p.Slots[slot+1:p.NSlots])
		p.NSlots--
	}
}

// vacuum compacts Cells by copying every live cell, in slot order, into a
// fresh contiguous region starting at offset 0, and rewrites Slots to match.
// It touches no other page and is O(page size).
func (p *Page) vacuum() {
	var packed [cellCapacity]byte
	cursor := uint16(0)
	for i := uint16(0); i < p.NSlots; i++ {
		offset := p.Slots[i]
		size := p.cellSize(offset)
		copy(packed[cursor:cursor+uint16(size)], p.Cells[offset:offset+uint16(size)])
		p.Slots[i] = cursor
		cursor += uint16(size)
	}
	copy(p.Cells[:cursor], packed[:cursor])
	p.CellsHighWater = cursor
	p.FreeHead = 0
	p.FreeBytes = 0
}

// salvageFreeCell walks the free list looking for a node at least minSize
// bytes, unlinks it if found, and returns its offset and physical size.
// ok is false if no free cell was big enough.
func (p *Page) salvageFreeCell(minSize uint8) (offset uint16, size uint8, ok bool) {
	prevOffset := uint16(0)
	havePrev := false
	cur := p.FreeHead

	for cur != 0 {
		idx := cur - 1
		curSize := p.cellSize(idx)
		next, _ := p.readCell(idx)

		if curSize >= minSize {
			if havePrev {
				p.writeCell(prevOffset, next, 0, p.cellSize(prevOffset))
			} else {
				p.FreeHead = uint16(next)
			}
			p.FreeBytes -= uint16(curSize)
			return idx, curSize, true
		}

		prevOffset = idx
		havePrev = true
		cur = uint16(next)
	}
	return 0, 0, false
}

// insertSlotAt makes room for a new slot pointer at index slot (shifting
// later slots right) and points it at offset.
func (p *Page) insertSlotAt(slot uint16, offset uint16) {
	copy(p.Slots[slot+1:p.NSlots+1], p.Slots[slot:p.NSlots])
	p.Slots[slot] = offset
	p.NSlots++
}
