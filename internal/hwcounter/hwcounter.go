// Package hwcounter implements the side channel through which index read
// paths report I/O-equivalent byte counts for host-level resource
// governance. A Counter is a small, owned-by-the-caller cell holding a
// single atomic.Uint64, rather than a shared, lock-protected ledger.
package hwcounter

import "sync/atomic"

// READEntryOverhead is the constant per-lookup cost charged against a
// string-keyed multi-map read on an on-disk index, in addition to the
// sizeof(value) bytes the read itself transfers.
const READEntryOverhead uint64 = 32

// Counter accumulates I/O-equivalent bytes across one logical read
// operation. The zero value is ready to use.
type Counter struct {
	cpu atomic.Uint64
}

// New returns a ready-to-use Counter.
func New() *Counter {
	return &Counter{}
}

// Consume adds n bytes to the accumulated cost. Safe for concurrent use,
// matching the concurrent-reader model read paths operate under.
func (c *Counter) Consume(n uint64) {
	if c == nil {
		return
	}
	c.cpu.Add(n)
}

// Measurements returns the total bytes accumulated so far.
func (c *Counter) Measurements() uint64 {
	if c == nil {
		return 0
	}
	return c.cpu.Load()
}

// Disposable returns a Counter-shaped sink that discards every increment.
// It is handed to inner loops — e.g. per-point posting membership scans, or
// any read path over data already known to be memory-resident — where real
// accounting would double-count or dominate the call's own cost.
func Disposable() *Counter {
	return nil
}

// Conditioned returns counter if onDisk is true, or a disposable sink
// otherwise. This is the is_on_disk / populate duality from the build
// options: a populated (memory-resident) index charges nothing for reads
// that would otherwise model page-fault cost, because the pages are
// already resident.
func Conditioned(counter *Counter, onDisk bool) *Counter {
	if onDisk {
		return counter
	}
	return Disposable()
}
