package mmapfile

import (
	"encoding/binary"
	"os"

	"github.com/iamNilotpal/payloadindex/internal/hwcounter"
	"github.com/iamNilotpal/payloadindex/pkg/errors"
)

// HashMap is a read-only, string-keyed multi-map backing vocab.dat: every
// key maps to a short list of uint32 values (for the token vocabulary,
// always exactly one — the token id).
//
// On-disk format: a sorted table of (keyLen uint32, valueCount uint32, key
// []byte, values []uint32) records, serialized once at build time and never
// mutated. Lookup is binary search over key bytes.
type HashMap struct {
	mm      *File
	offsets []int // byte offset of each record, sorted by key
}

type hashMapEntry struct {
	keyOff   int
	keyLen   int
	valOff   int
	valCount int
}

// BuildHashMap serializes pairs (already sorted ascending by key, unique
// keys) to path.
func BuildHashMap(path string, pairs []HashMapPair) error {
	var buf []byte
	for _, p := range pairs {
		var hdr [8]byte
		binary.LittleEndian.PutUint32(hdr[0:4], uint32(len(p.Key)))
		binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(p.Values)))
		buf = append(buf, hdr[:]...)
		buf = append(buf, p.Key...)
		for _, v := range p.Values {
			var vb [4]byte
			binary.LittleEndian.PutUint32(vb[:], v)
			buf = append(buf, vb[:]...)
		}
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to write hash map").WithPath(path)
	}
	return nil
}

// HashMapPair is one (key, values) record passed to BuildHashMap.
type HashMapPair struct {
	Key    string
	Values []uint32
}

// OpenHashMap memory-maps an existing hash map file and indexes record
// offsets for binary search. The input is assumed already sorted by key
// (BuildHashMap's contract); corruption is detected defensively by bounds
// checks while scanning.
func OpenHashMap(path string, populate bool) (*HashMap, error) {
	mm, err := Open(path, populate)
	if err != nil {
		return nil, err
	}

	var offsets []int
	data := mm.Bytes()
	pos := 0
	for pos < len(data) {
		if pos+8 > len(data) {
			mm.Close()
			return nil, errors.NewIndexCorruptionError(path, pos+8, len(data), nil)
		}
		offsets = append(offsets, pos)
		keyLen := int(binary.LittleEndian.Uint32(data[pos : pos+4]))
		valCount := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		pos += 8 + keyLen + valCount*4
	}
	if pos != len(data) {
		mm.Close()
		return nil, errors.NewIndexCorruptionError(path, pos, len(data), nil)
	}

	return &HashMap{mm: mm, offsets: offsets}, nil
}

func (h *HashMap) entryAt(off int) hashMapEntry {
	data := h.mm.Bytes()
	keyLen := int(binary.LittleEndian.Uint32(data[off : off+4]))
	valCount := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
	keyOff := off + 8
	return hashMapEntry{
		keyOff:   keyOff,
		keyLen:   keyLen,
		valOff:   keyOff + keyLen,
		valCount: valCount,
	}
}

func (h *HashMap) keyAt(e hashMapEntry) string {
	return string(h.mm.Bytes()[e.keyOff : e.keyOff+e.keyLen])
}

// Len returns the number of keys stored.
func (h *HashMap) Len() int {
	if h == nil {
		return 0
	}
	return len(h.offsets)
}

// Get looks up key and returns its value list, or (nil, false) if absent.
// Every lookup charges counter READEntryOverhead plus sizeof(value) per
// value read, per the I/O accounting contract for on-disk vocabulary
// lookups; a miss is charged as a single uint32 value read.
func (h *HashMap) Get(key string, counter *hwcounter.Counter) ([]uint32, bool) {
	if h == nil {
		return nil, false
	}

	lo, hi := 0, len(h.offsets)
	for lo < hi {
		mid := (lo + hi) / 2
		e := h.entryAt(h.offsets[mid])
		k := h.keyAt(e)
		switch {
		case k == key:
			counter.Consume(hwcounter.READEntryOverhead + uint64(e.valCount*4))
			return h.valuesOf(e), true
		case k < key:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	counter.Consume(hwcounter.READEntryOverhead + 4)
	return nil, false
}

func (h *HashMap) valuesOf(e hashMapEntry) []uint32 {
	data := h.mm.Bytes()
	out := make([]uint32, e.valCount)
	for i := 0; i < e.valCount; i++ {
		off := e.valOff + i*4
		out[i] = binary.LittleEndian.Uint32(data[off : off+4])
	}
	return out
}

// Iter enumerates every (key, values) pair in on-disk order via yield,
// stopping early if yield returns false. Used by iter_vocab /
// vocab_with_postings_len_iter style enumeration; it takes no counter and
// charges no I/O accounting.
func (h *HashMap) Iter(yield func(key string, values []uint32) bool) {
	if h == nil {
		return
	}
	for _, off := range h.offsets {
		e := h.entryAt(off)
		if !yield(h.keyAt(e), h.valuesOf(e)) {
			return
		}
	}
}

// Populate eagerly faults in every page of the backing mapping.
func (h *HashMap) Populate() error {
	if h == nil {
		return nil
	}
	return h.mm.Populate()
}

// ClearCache advises the kernel to evict the backing mapping's pages.
func (h *HashMap) ClearCache() error {
	if h == nil {
		return nil
	}
	return h.mm.ClearCache()
}

// Close unmaps the backing file.
func (h *HashMap) Close() error {
	if h == nil {
		return nil
	}
	return h.mm.Close()
}
