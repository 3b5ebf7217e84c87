package bptree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageWriteReadCellRoundTrip(t *testing.T) {
	p := newPage(KindLeaf, 0, make([]byte, cellCapacity))
	size := p.writeCell(0, 42, 1337, 0)
	p.Slots[0] = 0
	p.NSlots = 1
	p.CellsHighWater = uint16(size)

	key, value := p.readCellAtSlot(0)
	require.Equal(t, uint64(42), key)
	require.Equal(t, uint64(1337), value)
}

func TestPageZeroKeyStillOccupiesSpace(t *testing.T) {
	size := requiredCellSize(0, 0)
	require.GreaterOrEqual(t, size, uint8(MinCellSize))

	p := newPage(KindLeaf, 0, make([]byte, cellCapacity))
	p.writeCell(0, 0, 0, 0)
	require.Equal(t, uint8(1), p.Cells[1], "key width for value 0 must be 1, not 0")
}

func TestPageBinarySearch(t *testing.T) {
	p := newPage(KindLeaf, 0, make([]byte, cellCapacity))
	offset := uint16(0)
	for i, k := range []uint64{10, 20, 30, 40} {
		size := p.writeCell(offset, k, uint64(i), 0)
		p.Slots[i] = offset
		offset += uint16(size)
	}
	p.NSlots = 4
	p.CellsHighWater = offset

	found, slot, value := p.binarySearch(30)
	require.True(t, found)
	require.Equal(t, uint16(2), slot)
	require.Equal(t, uint64(2), value)

	found, slot, _ = p.binarySearch(25)
	require.False(t, found)
	require.Equal(t, uint16(2), slot)

	found, slot, _ = p.binarySearch(100)
	require.False(t, found)
	require.Equal(t, uint16(4), slot)
}

func TestPageCleanCellAndSalvage(t *testing.T) {
	p := newPage(KindLeaf, 0, make([]byte, cellCapacity))
	offA := uint16(0)
	sizeA := p.writeCell(offA, 1, 1, 0)
	offB := offA + uint16(sizeA)
	sizeB := p.writeCell(offB, 2, 2, 0)
	p.Slots[0], p.Slots[1] = offA, offB
	p.NSlots = 2
	p.CellsHighWater = offB + uint16(sizeB)

	p.cleanCell(0, true)
	require.Equal(t, uint16(1), p.NSlots)
	require.EqualValues(t, offB, p.Slots[0])

	offset, size, ok := p.salvageFreeCell(sizeA)
	require.True(t, ok)
	require.Equal(t, offA, offset)
	require.Equal(t, sizeA, size)

	_, _, ok = p.salvageFreeCell(sizeA)
	require.False(t, ok)
}

func TestPageVacuumCompactsAroundFreedCell(t *testing.T) {
	p := newPage(KindLeaf, 0, make([]byte, cellCapacity))
	offsets := make([]uint16, 3)
	cursor := uint16(0)
	for i, k := range []uint64{1, 2, 3} {
		size := p.writeCell(cursor, k, uint64(i), 0)
		offsets[i] = cursor
		p.Slots[i] = cursor
		cursor += uint16(size)
	}
	p.NSlots = 3
	p.CellsHighWater = cursor

	p.cleanCell(0, false) // leaves a hole, does not remove the slot pointer
	p.Slots[0] = p.Slots[1]
	p.Slots[1] = p.Slots[2]
	p.NSlots = 2

	p.vacuum()
	require.Equal(t, uint16(0), p.FreeHead)
	require.Equal(t, uint16(0), p.FreeBytes)

	k0, v0 := p.readCellAtSlot(0)
	k1, v1 := p.readCellAtSlot(1)
	require.Equal(t, uint64(2), k0)
	require.Equal(t, uint64(1), v0)
	require.Equal(t, uint64(3), k1)
	require.Equal(t, uint64(2), v1)
}
