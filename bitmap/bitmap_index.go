package bitmap

import (
	"fmt"
	"math/bits"
)

const (
	CAPACITY = 256
	RAW_SIZE = CAPACITY / 8
)

// FromRaw wraps a 32 byte region as a bitmap index. The caller keeps
// ownership of the bytes and every mutation writes straight through.
func FromRaw(raw []byte) (*BitmapIndex, error) {
	if len(raw) != RAW_SIZE {
		return nil, fmt.Errorf("bitmap index needs exactly %d bytes, got %d", RAW_SIZE, len(raw))
	}

	return &BitmapIndex{raw: raw}, nil
}

// Consume finds the first free flag, sets it and returns its index.
// The second return value is false when every flag is taken.
func (b *BitmapIndex) Consume() (uint8, bool) {
	for i, byt := range b.raw {
		if byt == 0xFF {
			continue
		}

		free := uint8(bits.TrailingZeros8(^byt))
		index := uint8(i)*8 + free
		b.Set(index)
		return index, true
	}

	return 0, false
}

func (b *BitmapIndex) Set(index uint8) {
	b.raw[index/8] |= 1 << (index % 8)
}

func (b *BitmapIndex) Unset(index uint8) {
	b.raw[index/8] &^= 1 << (index % 8)
}

func (b *BitmapIndex) IsSet(index uint8) bool {
	return b.raw[index/8]&(1<<(index%8)) != 0
}

func (b *BitmapIndex) IsFull() bool {
	return b.Available() == 0
}

// Available returns the number of unset flags.
func (b *BitmapIndex) Available() int {
	return CAPACITY - b.Count()
}

// Count returns the number of set flags.
func (b *BitmapIndex) Count() int {
	count := 0
	for _, byt := range b.raw {
		count += bits.OnesCount8(byt)
	}

	return count
}

// Indices returns the positions of all set flags in ascending order.
func (b *BitmapIndex) Indices() []uint8 {
	indices := []uint8{}
	for i, byt := range b.raw {
		for j := 0; j < 8; j++ {
			if byt&(1<<j) != 0 {
				indices = append(indices, uint8(i)*8+uint8(j))
			}
		}
	}

	return indices
}

// BitmapIndex is a view over a fixed 32 byte region encoding 256 flags.
// Allocation always picks the lowest free position, so the result is
// deterministic for the same underlying bytes.
type BitmapIndex struct {
	raw []byte
}
