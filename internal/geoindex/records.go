package geoindex

import (
	"encoding/binary"
	"os"

	"github.com/iamNilotpal/payloadindex/internal/geohash"
	"github.com/iamNilotpal/payloadindex/pkg/errors"
	"github.com/iamNilotpal/payloadindex/pkg/mmapfile"
	"github.com/iamNilotpal/payloadindex/pkg/payloadoptions"
)

// hashWidth is the fixed byte width a GeoHash is padded/truncated to on
// disk, sized to payloadoptions.MaxGeohashPrecisionLimit so any configured
// precision fits.
const hashWidth = int(payloadoptions.MaxGeohashPrecisionLimit)

// countsRecordSize is a (hash, points uint32, values uint32) record.
const countsRecordSize = hashWidth + 4 + 4

// pointKeyRecordSize is a (hash, ids_start uint32, ids_end uint32) record.
const pointKeyRecordSize = hashWidth + 4 + 4

// Counts is one counts_per_hash entry.
type Counts struct {
	Hash   geohash.Hash
	Points uint32
	Values uint32
}

// PointKeyValue is one points_map entry: hash plus the [IdsStart, IdsEnd)
// range it owns in points_map_ids.
type PointKeyValue struct {
	Hash     geohash.Hash
	IdsStart uint32
	IdsEnd   uint32
}

func encodeHash(h geohash.Hash) [hashWidth]byte {
	var buf [hashWidth]byte
	copy(buf[:], h)
	return buf
}

func decodeHash(buf []byte) geohash.Hash {
	end := 0
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	return geohash.Hash(buf[:end])
}

// countsTable is a sorted, binary-searchable array of Counts records.
type countsTable struct {
	mm *mmapfile.File
}

func buildCountsTable(path string, records []Counts) error {
	buf := make([]byte, len(records)*countsRecordSize)
	for i, r := range records {
		off := i * countsRecordSize
		h := encodeHash(r.Hash)
		copy(buf[off:off+hashWidth], h[:])
		binary.LittleEndian.PutUint32(buf[off+hashWidth:off+hashWidth+4], r.Points)
		binary.LittleEndian.PutUint32(buf[off+hashWidth+4:off+hashWidth+8], r.Values)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to write counts_per_hash").WithPath(path)
	}
	return nil
}

func openCountsTable(path string, populate bool) (*countsTable, error) {
	mm, err := mmapfile.Open(path, populate)
	if err != nil {
		return nil, err
	}
	if mm.Len()%countsRecordSize != 0 {
		mm.Close()
		return nil, errors.NewIndexCorruptionError(path, 0, mm.Len(), nil)
	}
	return &countsTable{mm: mm}, nil
}

func (t *countsTable) Len() int {
	if t == nil {
		return 0
	}
	return t.mm.Len() / countsRecordSize
}

func (t *countsTable) At(i int) Counts {
	data := t.mm.Bytes()
	off := i * countsRecordSize
	return Counts{
		Hash:   decodeHash(data[off : off+hashWidth]),
		Points: binary.LittleEndian.Uint32(data[off+hashWidth : off+hashWidth+4]),
		Values: binary.LittleEndian.Uint32(data[off+hashWidth+4 : off+hashWidth+8]),
	}
}

// Find binary-searches for hash and returns its record, or (Counts{}, false).
// Charges counter ceil(log2(len)) * sizeof(Counts) bytes to approximate the
// random-access I/O cost of binary search under demand paging.
func (t *countsTable) Find(hash geohash.Hash, charge func(n uint64)) (Counts, bool) {
	n := t.Len()
	charge(binarySearchCost(n, countsRecordSize))

	lo, hi := 0, n
	for lo < hi {
		mid := (lo + hi) / 2
		r := t.At(mid)
		switch {
		case r.Hash == hash:
			return r, true
		case r.Hash < hash:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return Counts{}, false
}

func (t *countsTable) Populate() error {
	if t == nil {
		return nil
	}
	return t.mm.Populate()
}

func (t *countsTable) ClearCache() error {
	if t == nil {
		return nil
	}
	return t.mm.ClearCache()
}

func (t *countsTable) Close() error {
	if t == nil {
		return nil
	}
	return t.mm.Close()
}

// pointsMapTable is a sorted, binary-searchable array of PointKeyValue
// records referencing ranges in a separate points_map_ids arena.
type pointsMapTable struct {
	mm *mmapfile.File
}

func buildPointsMapTable(path string, records []PointKeyValue) error {
	buf := make([]byte, len(records)*pointKeyRecordSize)
	for i, r := range records {
		off := i * pointKeyRecordSize
		h := encodeHash(r.Hash)
		copy(buf[off:off+hashWidth], h[:])
		binary.LittleEndian.PutUint32(buf[off+hashWidth:off+hashWidth+4], r.IdsStart)
		binary.LittleEndian.PutUint32(buf[off+hashWidth+4:off+hashWidth+8], r.IdsEnd)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to write points_map").WithPath(path)
	}
	return nil
}

func openPointsMapTable(path string, populate bool) (*pointsMapTable, error) {
	mm, err := mmapfile.Open(path, populate)
	if err != nil {
		return nil, err
	}
	if mm.Len()%pointKeyRecordSize != 0 {
		mm.Close()
		return nil, errors.NewIndexCorruptionError(path, 0, mm.Len(), nil)
	}
	return &pointsMapTable{mm: mm}, nil
}

func (t *pointsMapTable) Len() int {
	if t == nil {
		return 0
	}
	return t.mm.Len() / pointKeyRecordSize
}

func (t *pointsMapTable) At(i int) PointKeyValue {
	data := t.mm.Bytes()
	off := i * pointKeyRecordSize
	return PointKeyValue{
		Hash:     decodeHash(data[off : off+hashWidth]),
		IdsStart: binary.LittleEndian.Uint32(data[off+hashWidth : off+hashWidth+4]),
		IdsEnd:   binary.LittleEndian.Uint32(data[off+hashWidth+4 : off+hashWidth+8]),
	}
}

// LowerBound returns the index of the first record whose hash is >= prefix.
func (t *pointsMapTable) LowerBound(prefix geohash.Hash) int {
	lo, hi := 0, t.Len()
	for lo < hi {
		mid := (lo + hi) / 2
		if t.At(mid).Hash < prefix {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func (t *pointsMapTable) Populate() error {
	if t == nil {
		return nil
	}
	return t.mm.Populate()
}

func (t *pointsMapTable) ClearCache() error {
	if t == nil {
		return nil
	}
	return t.mm.ClearCache()
}

func (t *pointsMapTable) Close() error {
	if t == nil {
		return nil
	}
	return t.mm.Close()
}

// idsArena is the flat points_map_ids.bin array of PointIds referenced by
// pointsMapTable ranges.
type idsArena struct {
	a *mmapfile.Uint32Array
}

func buildIdsArena(path string, ids []uint32) error {
	return mmapfile.BuildUint32Array(path, ids)
}

func openIdsArena(path string, populate bool) (*idsArena, error) {
	a, err := mmapfile.OpenUint32Array(path, populate)
	if err != nil {
		return nil, err
	}
	return &idsArena{a: a}, nil
}

func (a *idsArena) Len() int {
	if a == nil {
		return 0
	}
	return a.a.Len()
}

func (a *idsArena) At(i int) uint32 {
	v, _ := a.a.Get(i)
	return v
}

func (a *idsArena) Populate() error {
	if a == nil {
		return nil
	}
	return a.a.Populate()
}

func (a *idsArena) ClearCache() error {
	if a == nil {
		return nil
	}
	return a.a.ClearCache()
}

func (a *idsArena) Close() error {
	if a == nil {
		return nil
	}
	return a.a.Close()
}

// binarySearchCost approximates ceil(log2(n)) * recordSize bytes of
// random-access I/O under binary search, per the spec's hardware counter
// model for counts_per_hash / points_map lookups.
func binarySearchCost(n, recordSize int) uint64 {
	if n <= 1 {
		return 0
	}
	steps := 0
	for v := n; v > 1; v = (v + 1) / 2 {
		steps++
	}
	return uint64(steps * recordSize)
}
