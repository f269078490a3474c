// Package postings implements the posting list store: an opaque on-disk
// container indexed by token id (point ids and positions are stored as
// plain little-endian uint32 values, without compression), in two variants
// sharing one interface — ids-only and positional (which additionally
// carries per-document position arrays for phrase queries).
//
// Modeled as a tagged union with two arms (Kind IDsOnly / Positional)
// rather than dynamic dispatch, so the hot leap-frog intersection loop
// never pays an interface-call indirection per cursor advance.
package postings

import (
	"encoding/binary"
	"os"
	"sort"

	"github.com/iamNilotpal/payloadindex/internal/hwcounter"
	"github.com/iamNilotpal/payloadindex/pkg/errors"
	"github.com/iamNilotpal/payloadindex/pkg/mmapfile"
)

// Kind distinguishes the two posting store variants.
type Kind uint8

const (
	// IDsOnly stores, per token, a sorted unique list of point ids.
	IDsOnly Kind = iota
	// Positional additionally stores, per (token, doc), a sorted list of
	// in-document token positions, enabling phrase queries.
	Positional
)

// postingHeaderOverhead is the decompression cost charged to the hardware
// counter for reading a single posting list's header on Get.
const postingHeaderOverhead uint64 = 16

// Store is a read-only, memory-mapped posting list store.
type Store struct {
	kind    Kind
	mm      *mmapfile.File
	offsets []int // byte offset of the i-th token's record; len == vocab size
}

// Doc is one (point id, optional positions) entry in an in-memory snapshot
// fed to Build.
type Doc struct {
	PointID   uint32
	Positions []uint32 // empty/nil for the ids-only variant
}

// Build serializes postings for tokens 0..len(lists)-1 to path. Each list
// must be sorted ascending by PointID with no duplicates; in the positional
// variant each Doc's Positions must be sorted ascending.
//
// On-disk format per token record: docCount uint32, then docCount point ids
// (uint32 each); in the positional variant, followed by docCount
// (posCount uint32, posCount positions uint32) groups.
func Build(path string, kind Kind, lists [][]Doc) error {
	var buf []byte
	for _, docs := range lists {
		var hdr [4]byte
		binary.LittleEndian.PutUint32(hdr[:], uint32(len(docs)))
		buf = append(buf, hdr[:]...)
		for _, d := range docs {
			var idb [4]byte
			binary.LittleEndian.PutUint32(idb[:], d.PointID)
			buf = append(buf, idb[:]...)
		}
		if kind == Positional {
			for _, d := range docs {
				var cb [4]byte
				binary.LittleEndian.PutUint32(cb[:], uint32(len(d.Positions)))
				buf = append(buf, cb[:]...)
				for _, p := range d.Positions {
					var pb [4]byte
					binary.LittleEndian.PutUint32(pb[:], p)
					buf = append(buf, pb[:]...)
				}
			}
		}
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to write posting store").WithPath(path)
	}
	return nil
}

// Open memory-maps an existing posting store file. vocabSize is the number
// of token records expected (the vocabulary's size); it is used to index
// records by token id without re-scanning the file on every Get.
func Open(path string, kind Kind, vocabSize int, populate bool) (*Store, error) {
	mm, err := mmapfile.Open(path, populate)
	if err != nil {
		return nil, err
	}

	offsets := make([]int, 0, vocabSize)
	data := mm.Bytes()
	pos := 0
	for len(offsets) < vocabSize {
		if pos+4 > len(data) {
			mm.Close()
			return nil, errors.NewIndexCorruptionError(path, vocabSize, len(offsets), nil)
		}
		offsets = append(offsets, pos)
		docCount := int(binary.LittleEndian.Uint32(data[pos : pos+4]))
		pos += 4 + docCount*4
		if kind == Positional {
			for d := 0; d < docCount; d++ {
				if pos+4 > len(data) {
					mm.Close()
					return nil, errors.NewIndexCorruptionError(path, vocabSize, len(offsets), nil)
				}
				posCount := int(binary.LittleEndian.Uint32(data[pos : pos+4]))
				pos += 4 + posCount*4
			}
		}
	}
	if pos != len(data) {
		mm.Close()
		return nil, errors.NewIndexCorruptionError(path, len(data), pos, nil)
	}

	return &Store{kind: kind, mm: mm, offsets: offsets}, nil
}

// Kind reports whether this store carries positional data.
func (s *Store) Kind() Kind {
	if s == nil {
		return IDsOnly
	}
	return s.kind
}

// VocabSize returns the number of token records.
func (s *Store) VocabSize() int {
	if s == nil {
		return 0
	}
	return len(s.offsets)
}

// Reader is a handle onto one token's posting list.
type Reader struct {
	s        *Store
	docCount int
	idsOff   int       // byte offset of the point-id array
	posOff   []int     // per-doc byte offset of its position array (positional only)
	posLen   []int     // per-doc position count (positional only)
}

// Get returns a reader for tokenID, charging counter the fixed
// per-lookup decompression overhead for reading the posting header.
// Returns (nil, false) if tokenID is out of range.
func (s *Store) Get(tokenID uint32, counter *hwcounter.Counter) (*Reader, bool) {
	if s == nil || int(tokenID) >= len(s.offsets) {
		return nil, false
	}
	counter.Consume(postingHeaderOverhead)

	data := s.mm.Bytes()
	off := s.offsets[tokenID]
	docCount := int(binary.LittleEndian.Uint32(data[off : off+4]))
	idsOff := off + 4

	r := &Reader{s: s, docCount: docCount, idsOff: idsOff}

	if s.kind == Positional {
		pos := idsOff + docCount*4
		r.posOff = make([]int, docCount)
		r.posLen = make([]int, docCount)
		for d := 0; d < docCount; d++ {
			posCount := int(binary.LittleEndian.Uint32(data[pos : pos+4]))
			r.posOff[d] = pos + 4
			r.posLen[d] = posCount
			pos += 4 + posCount*4
		}
	}

	return r, true
}

// Len returns the number of documents containing this token.
func (r *Reader) Len() int {
	if r == nil {
		return 0
	}
	return r.docCount
}

// PointIDAt returns the point id at position i in ascending order.
func (r *Reader) PointIDAt(i int) uint32 {
	data := r.s.mm.Bytes()
	off := r.idsOff + i*4
	return binary.LittleEndian.Uint32(data[off : off+4])
}

// Contains reports whether point_id is a member of this posting list,
// via inner binary search within the point-id array. Inner per-point scans
// are cost-dominated by mmap-resident reuse, so this charges a disposable
// counter regardless of what the caller passed to Get.
func (r *Reader) Contains(pointID uint32) bool {
	if r == nil {
		return false
	}
	lo, hi := 0, r.docCount
	for lo < hi {
		mid := (lo + hi) / 2
		v := r.PointIDAt(mid)
		switch {
		case v == pointID:
			return true
		case v < pointID:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return false
}

// Positions returns the sorted positions of this token within pointID, or
// nil if pointID does not contain the token or this is not a positional
// reader.
func (r *Reader) Positions(pointID uint32) []uint32 {
	if r == nil || r.posOff == nil {
		return nil
	}
	lo, hi := 0, r.docCount
	idx := -1
	for lo < hi {
		mid := (lo + hi) / 2
		v := r.PointIDAt(mid)
		switch {
		case v == pointID:
			idx = mid
			lo = hi
		case v < pointID:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	if idx < 0 {
		return nil
	}

	data := r.s.mm.Bytes()
	n := r.posLen[idx]
	out := make([]uint32, n)
	off := r.posOff[idx]
	for i := 0; i < n; i++ {
		out[i] = binary.LittleEndian.Uint32(data[off : off+4])
		off += 4
	}
	return out
}

// Intersect performs a leap-frog multi-way intersection across readers,
// producing point ids present in every reader, in ascending order, filtered
// through filter (used for the deletion overlay). An empty reader set or
// any nil reader yields an empty result.
func Intersect(readers []*Reader, filter func(pointID uint32) bool) []uint32 {
	if len(readers) == 0 {
		return nil
	}
	for _, r := range readers {
		if r == nil || r.docCount == 0 {
			return nil
		}
	}

	cursors := make([]int, len(readers))
	var out []uint32

	for {
		maxVal := uint32(0)
		for i, r := range readers {
			if cursors[i] >= r.docCount {
				return out
			}
			v := r.PointIDAt(cursors[i])
			if v > maxVal {
				maxVal = v
			}
		}

		agree := true
		for i, r := range readers {
			for cursors[i] < r.docCount && r.PointIDAt(cursors[i]) < maxVal {
				cursors[i]++
			}
			if cursors[i] >= r.docCount {
				return out
			}
			if r.PointIDAt(cursors[i]) != maxVal {
				agree = false
			}
		}

		if agree {
			if filter == nil || filter(maxVal) {
				out = append(out, maxVal)
			}
			for i := range readers {
				cursors[i]++
			}
		}
	}
}

// Phrase tests whether a candidate document's positions for each query
// token, shifted left by the token's index in the phrase, have a non-empty
// intersection — i.e. the tokens occur consecutively in phrase order
// starting at some offset. readers must be the positional readers for each
// query token in phrase order (duplicates allowed, one reader per
// occurrence).
func Phrase(readers []*Reader, pointID uint32) bool {
	if len(readers) == 0 {
		return false
	}

	var shifted [][]uint32
	for i, r := range readers {
		if r == nil {
			return false
		}
		positions := r.Positions(pointID)
		if len(positions) == 0 {
			return false
		}
		s := make([]uint32, 0, len(positions))
		for _, p := range positions {
			if p < uint32(i) {
				continue
			}
			s = append(s, p-uint32(i))
		}
		shifted = append(shifted, s)
	}

	common := shifted[0]
	for _, next := range shifted[1:] {
		common = sortedIntersect(common, next)
		if len(common) == 0 {
			return false
		}
	}
	return len(common) > 0
}

func sortedIntersect(a, b []uint32) []uint32 {
	sort.Slice(a, func(i, j int) bool { return a[i] < a[j] })
	sort.Slice(b, func(i, j int) bool { return b[i] < b[j] })

	var out []uint32
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// Populate eagerly faults in every page of the backing mapping.
func (s *Store) Populate() error {
	if s == nil {
		return nil
	}
	return s.mm.Populate()
}

// ClearCache advises the kernel to evict the backing mapping's pages.
func (s *Store) ClearCache() error {
	if s == nil {
		return nil
	}
	return s.mm.ClearCache()
}

// Close unmaps the backing file.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.mm.Close()
}
