package mmapfile

import (
	"math/bits"
	"os"

	"github.com/iamNilotpal/payloadindex/pkg/errors"
)

// bitsetWordBytes is the machine-word width a bitset file is rounded up to.
const bitsetWordBytes = 8

// Bitset is a packed bit array backed by a memory-mapped file, one bit per
// PointId in little-endian bit order within each word. It backs both the
// deletion bitset's underlying store and can represent any other dense
// boolean array an index needs.
type Bitset struct {
	mm   *File
	bits int // total addressable bit count (file size in bits)
}

// BuildBitset writes a packed bitset of the given bit length to path, with
// bit i set iff set(i) is true. The file is sized up to the next machine
// word.
func BuildBitset(path string, length int, set func(i int) bool) error {
	nWords := (length + 63) / 64
	buf := make([]byte, nWords*bitsetWordBytes)
	for i := 0; i < length; i++ {
		if !set(i) {
			continue
		}
		buf[i/8] |= 1 << uint(i%8)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to write bitset").WithPath(path)
	}
	return nil
}

// OpenBitset memory-maps an existing bitset file, writable so the buffered
// overlay can flush tombstones into it in place.
func OpenBitset(path string, populate bool) (*Bitset, error) {
	mm, err := OpenWritable(path, populate)
	if err != nil {
		return nil, err
	}
	return &Bitset{mm: mm, bits: mm.Len() * 8}, nil
}

// Len returns the number of addressable bits.
func (b *Bitset) Len() int {
	if b == nil {
		return 0
	}
	return b.bits
}

// Get returns the value of bit i and whether i was in range.
func (b *Bitset) Get(i int) (bool, bool) {
	if b == nil || i < 0 || i >= b.bits {
		return false, false
	}
	byteIdx := i / 8
	bitIdx := uint(i % 8)
	return b.mm.data[byteIdx]&(1<<bitIdx) != 0, true
}

// Set sets bit i to true in place. Returns whether i was in range.
func (b *Bitset) Set(i int) bool {
	if b == nil || i < 0 || i >= b.bits {
		return false
	}
	byteIdx := i / 8
	bitIdx := uint(i % 8)
	b.mm.data[byteIdx] |= 1 << bitIdx
	return true
}

// CountOnes computes the population count in O(words). Intended to be
// called once, at open.
func (b *Bitset) CountOnes() int {
	if b == nil {
		return 0
	}
	total := 0
	data := b.mm.data
	i := 0
	for ; i+8 <= len(data); i += 8 {
		v := uint64(data[i]) | uint64(data[i+1])<<8 | uint64(data[i+2])<<16 | uint64(data[i+3])<<24 |
			uint64(data[i+4])<<32 | uint64(data[i+5])<<40 | uint64(data[i+6])<<48 | uint64(data[i+7])<<56
		total += bits.OnesCount64(v)
	}
	for ; i < len(data); i++ {
		total += bits.OnesCount8(data[i])
	}
	return total
}

// Sync durably flushes any in-place Set calls to the backing file.
func (b *Bitset) Sync() error {
	if b == nil {
		return nil
	}
	return b.mm.Sync()
}

// Populate eagerly faults in every page of the backing mapping.
func (b *Bitset) Populate() error {
	if b == nil {
		return nil
	}
	return b.mm.Populate()
}

// ClearCache advises the kernel to evict the backing mapping's pages.
func (b *Bitset) ClearCache() error {
	if b == nil {
		return nil
	}
	return b.mm.ClearCache()
}

// Close unmaps the backing file.
func (b *Bitset) Close() error {
	if b == nil {
		return nil
	}
	return b.mm.Close()
}
