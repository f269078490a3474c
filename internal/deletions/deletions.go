// Package deletions implements the buffered deletion bitset: the single
// mutable piece of state an otherwise-immutable index core carries. It
// wraps an mmap-backed bitset view with a write-through in-memory overlay
// so tombstones set by remove are visible to readers immediately, and are
// only materialized into the backing file on an explicit flush.
package deletions

import (
	"sync"

	"github.com/iamNilotpal/payloadindex/pkg/mmapfile"
)

// Bitset is the buffered deletion bitset. The zero value is not usable;
// construct with Open or Build.
type Bitset struct {
	mu      sync.Mutex
	base    *mmapfile.Bitset
	overlay map[int]struct{}
}

// Open memory-maps an existing deletion bitset file.
func Open(path string, populate bool) (*Bitset, error) {
	base, err := mmapfile.OpenBitset(path, populate)
	if err != nil {
		return nil, err
	}
	return &Bitset{base: base, overlay: make(map[int]struct{})}, nil
}

// Build writes a new deletion bitset file of the given length, with bit i
// set iff set(i) returns true, then opens it.
func Build(path string, length int, set func(i int) bool) (*Bitset, error) {
	if err := mmapfile.BuildBitset(path, length, set); err != nil {
		return nil, err
	}
	return Open(path, false)
}

// Len returns the number of addressable bits.
func (b *Bitset) Len() int {
	if b == nil {
		return 0
	}
	return b.base.Len()
}

// Get returns the most recent value for bit i: the overlay wins over the
// mmap base. Out-of-range returns (false, false); callers apply their own
// policy for what "missing" means (tombstoned for the inverted index,
// non-existent for the geo index).
func (b *Bitset) Get(i int) (bool, bool) {
	if b == nil {
		return false, false
	}

	b.mu.Lock()
	_, buffered := b.overlay[i]
	b.mu.Unlock()
	if buffered {
		return true, true
	}

	return b.base.Get(i)
}

// Set records bit i as tombstoned in the overlay and returns immediately;
// it does not touch the backing file. Returns whether i was in range and
// whether this call actually transitioned the bit from 0 to 1 (the bit was
// not already set in either the overlay or the base).
func (b *Bitset) Set(i int) (inRange bool, transitioned bool) {
	if b == nil {
		return false, false
	}

	prev, inRange := b.Get(i)
	if !inRange {
		return false, false
	}
	if prev {
		return true, false
	}

	b.mu.Lock()
	b.overlay[i] = struct{}{}
	b.mu.Unlock()
	return true, true
}

// Flush materializes every overlaid bit into the underlying mmap and
// requests a durable sync. Idempotent: safe to call repeatedly, including
// with no pending overlay entries.
func (b *Bitset) Flush() error {
	if b == nil {
		return nil
	}

	b.mu.Lock()
	pending := b.overlay
	b.overlay = make(map[int]struct{})
	b.mu.Unlock()

	for i := range pending {
		b.base.Set(i)
	}
	return b.base.Sync()
}

// CountOnes computes the current population count across base and overlay.
// Intended to be called once at open (before any Set), matching the
// "called once" contract of the underlying bitset view; afterwards callers
// should track the count themselves (see the active-points counters).
func (b *Bitset) CountOnes() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	pending := len(b.overlay)
	b.mu.Unlock()
	// Overlay entries are only ever bits that were clear in the base.
	return b.base.CountOnes() + pending
}

// Populate eagerly faults in every page of the backing mapping.
func (b *Bitset) Populate() error {
	if b == nil {
		return nil
	}
	return b.base.Populate()
}

// ClearCache advises the kernel to evict the backing mapping's pages.
func (b *Bitset) ClearCache() error {
	if b == nil {
		return nil
	}
	return b.base.ClearCache()
}

// Close unmaps the backing file without flushing; callers must Flush
// explicitly first if pending tombstones should be persisted.
func (b *Bitset) Close() error {
	if b == nil {
		return nil
	}
	return b.base.Close()
}
