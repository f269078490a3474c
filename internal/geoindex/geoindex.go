// Package geoindex implements the geo-index core: three sorted arrays
// (counts_per_hash, points_map, points_map_ids) plus a point-to-values
// mapping and the buffered deletion bitset, answering geohash-prefix scans
// and per-prefix statistics over an immutable, memory-mapped corpus.
package geoindex

import (
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/iamNilotpal/payloadindex/internal/deletions"
	"github.com/iamNilotpal/payloadindex/internal/geohash"
	"github.com/iamNilotpal/payloadindex/internal/hwcounter"
	"github.com/iamNilotpal/payloadindex/internal/snapshot"
	"github.com/iamNilotpal/payloadindex/pkg/filesys"
	"github.com/iamNilotpal/payloadindex/pkg/indexlayout"
	"github.com/iamNilotpal/payloadindex/pkg/mmapfile"
	"github.com/iamNilotpal/payloadindex/pkg/payloadoptions"
	"go.uber.org/zap"
)

// storage bundles the open files that back a Ready index. A nil *storage
// on Index means Absent (not yet built).
type storage struct {
	counts  *countsTable
	points  *pointsMapTable
	ids     *idsArena
	values  *pointToValues
	deleted *deletions.Bitset
	stats   fieldStats
}

// Index is the geo-index core.
type Index struct {
	dir     string
	opts    *payloadoptions.Options
	log     *zap.SugaredLogger
	counter *hwcounter.Counter

	st *storage

	deletedCount atomic.Int64
}

// Open opens an existing geo index directory. Absence of the stats sidecar
// yields an Absent index (not an error).
func Open(dir string, opts *payloadoptions.Options, log *zap.SugaredLogger) (*Index, error) {
	idx := &Index{dir: dir, opts: opts, log: log, counter: hwcounter.New()}

	has, err := indexlayout.HasGeoStats(dir)
	if err != nil {
		return nil, err
	}
	if !has {
		return idx, nil
	}

	stats, err := readStats(filepath.Join(dir, indexlayout.GeoStatsFile))
	if err != nil {
		return nil, err
	}

	counts, err := openCountsTable(filepath.Join(dir, indexlayout.CountsPerHashFile), opts.Populate())
	if err != nil {
		return nil, err
	}
	points, err := openPointsMapTable(filepath.Join(dir, indexlayout.PointsMapFile), opts.Populate())
	if err != nil {
		counts.Close()
		return nil, err
	}
	ids, err := openIdsArena(filepath.Join(dir, indexlayout.PointsMapIdsFile), opts.Populate())
	if err != nil {
		counts.Close()
		points.Close()
		return nil, err
	}
	values, err := openPointToValues(
		filepath.Join(dir, indexlayout.PointToValuesFile),
		filepath.Join(dir, indexlayout.PointToValuesIndex),
		opts.Populate(),
	)
	if err != nil {
		counts.Close()
		points.Close()
		ids.Close()
		return nil, err
	}
	deleted, err := deletions.Open(filepath.Join(dir, indexlayout.GeoDeletedFile), opts.Populate())
	if err != nil {
		counts.Close()
		points.Close()
		ids.Close()
		values.Close()
		return nil, err
	}

	idx.st = &storage{counts: counts, points: points, ids: ids, values: values, deleted: deleted, stats: stats}
	idx.deletedCount.Store(int64(deleted.CountOnes()))

	return idx, nil
}

// Build serializes an in-memory geo snapshot to dir and opens it as a
// Ready index.
func Build(dir string, snap *snapshot.Geo, opts *payloadoptions.Options, log *zap.SugaredLogger) (*Index, error) {
	if err := filesys.CreateDir(dir, 0755, true); err != nil {
		return nil, err
	}

	if err := buildPointToValues(
		filepath.Join(dir, indexlayout.PointToValuesFile),
		filepath.Join(dir, indexlayout.PointToValuesIndex),
		snap.PointToValues,
	); err != nil {
		return nil, err
	}

	hashes := make([]geohash.Hash, 0, len(snap.PointsMap))
	for h := range snap.PointsMap {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	var pointsRecords []PointKeyValue
	var idsArenaValues []uint32
	for _, h := range hashes {
		ids := snap.PointsMap[h]
		if len(ids) == 0 {
			continue
		}
		start := uint32(len(idsArenaValues))
		idsArenaValues = append(idsArenaValues, ids...)
		pointsRecords = append(pointsRecords, PointKeyValue{Hash: h, IdsStart: start, IdsEnd: uint32(len(idsArenaValues))})
	}
	if err := buildPointsMapTable(filepath.Join(dir, indexlayout.PointsMapFile), pointsRecords); err != nil {
		return nil, err
	}
	if err := buildIdsArena(filepath.Join(dir, indexlayout.PointsMapIdsFile), idsArenaValues); err != nil {
		return nil, err
	}

	var countsRecords []Counts
	for h, points := range snap.PointsPerHash {
		values, hasValues := snap.ValuesPerHash[h]
		if !hasValues {
			continue
		}
		countsRecords = append(countsRecords, Counts{Hash: h, Points: points, Values: values})
	}
	sort.Slice(countsRecords, func(i, j int) bool { return countsRecords[i].Hash < countsRecords[j].Hash })
	if err := buildCountsTable(filepath.Join(dir, indexlayout.CountsPerHashFile), countsRecords); err != nil {
		return nil, err
	}

	if err := mmapfile.BuildBitset(filepath.Join(dir, indexlayout.GeoDeletedFile), len(snap.PointToValues), func(i int) bool {
		return len(snap.PointToValues[i]) == 0
	}); err != nil {
		return nil, err
	}

	if err := writeStats(filepath.Join(dir, indexlayout.GeoStatsFile), fieldStats{
		PointsValuesCount: snap.PointsValuesCount,
		MaxValuesPerPoint: snap.MaxValuesPerPoint,
	}); err != nil {
		return nil, err
	}

	return Open(dir, opts, log)
}

// PointsOfHash returns the stored points count for hash, or 0 if absent.
func (idx *Index) PointsOfHash(h geohash.Hash) uint32 {
	if idx.st == nil {
		return 0
	}
	r, ok := idx.st.counts.Find(h, idx.chargeCounter)
	if !ok {
		return 0
	}
	return r.Points
}

// ValuesOfHash returns the stored values count for hash, or 0 if absent.
func (idx *Index) ValuesOfHash(h geohash.Hash) uint32 {
	if idx.st == nil {
		return 0
	}
	r, ok := idx.st.counts.Find(h, idx.chargeCounter)
	if !ok {
		return 0
	}
	return r.Values
}

func (idx *Index) chargeCounter(n uint64) {
	hwcounter.Conditioned(idx.counter, idx.opts.OnDisk).Consume(n)
}

// PointsPerHash enumerates every counts_per_hash entry as (hash, points).
func (idx *Index) PointsPerHash(yield func(h geohash.Hash, points uint32) bool) {
	if idx.st == nil {
		return
	}
	for i := 0; i < idx.st.counts.Len(); i++ {
		r := idx.st.counts.At(i)
		if !yield(r.Hash, r.Points) {
			return
		}
	}
}

// StoredSubRegions returns every PointId filed under prefix or one of its
// refinements, skipping tombstoned ids. A point may be yielded more than
// once if its hash has multiple ancestor entries in points_map;
// de-duplication is the caller's responsibility.
func (idx *Index) StoredSubRegions(prefix geohash.Hash) []snapshot.PointID {
	if idx.st == nil {
		return nil
	}

	var out []snapshot.PointID
	start := idx.st.points.LowerBound(prefix)
	for i := start; i < idx.st.points.Len(); i++ {
		entry := idx.st.points.At(i)
		if !geohash.HasPrefix(entry.Hash, prefix) {
			break
		}
		for j := entry.IdsStart; j < entry.IdsEnd; j++ {
			pid := idx.st.ids.At(int(j))
			if idx.isActive(pid) {
				out = append(out, pid)
			}
		}
	}
	return out
}

func (idx *Index) isActive(pointID snapshot.PointID) bool {
	if idx.st == nil {
		return false
	}
	deleted, inRange := idx.st.deleted.Get(int(pointID))
	return inRange && !deleted
}

// CheckValuesAny reports false if pointID is tombstoned; otherwise it runs
// predicate across every geo value of pointID, short-circuiting on the
// first match.
func (idx *Index) CheckValuesAny(pointID snapshot.PointID, predicate func(snapshot.GeoPoint) bool) bool {
	if idx.st == nil || !idx.isActive(pointID) {
		return false
	}
	values, ok := idx.st.values.Get(pointID)
	if !ok {
		return false
	}
	for _, v := range values {
		if predicate(v) {
			return true
		}
	}
	return false
}

// GetValues returns pointID's geo values, or (nil, false) if not present.
func (idx *Index) GetValues(pointID snapshot.PointID) ([]snapshot.GeoPoint, bool) {
	if idx.st == nil {
		return nil, false
	}
	return idx.st.values.Get(pointID)
}

// ValuesCount returns 0 if pointID is tombstoned, otherwise the count from
// point_to_values.
func (idx *Index) ValuesCount(pointID snapshot.PointID) int {
	if idx.st == nil || !idx.isActive(pointID) {
		return 0
	}
	return idx.st.values.Count(pointID)
}

// RemovePoint sets the tombstone bit and increments deleted_count iff the
// bit transitioned from 0 to 1.
func (idx *Index) RemovePoint(pointID snapshot.PointID) {
	if idx.st == nil {
		return
	}
	_, transitioned := idx.st.deleted.Set(int(pointID))
	if transitioned {
		idx.deletedCount.Add(1)
	}
}

// PointsCount returns the number of non-tombstoned points.
func (idx *Index) PointsCount() int {
	if idx.st == nil {
		return 0
	}
	return idx.st.values.Len() - int(idx.deletedCount.Load())
}

// PointsValuesCount returns the total geo values count recorded at build
// time.
func (idx *Index) PointsValuesCount() int {
	if idx.st == nil {
		return 0
	}
	return idx.st.stats.PointsValuesCount
}

// MaxValuesPerPoint returns the maximum per-point geo value count recorded
// at build time.
func (idx *Index) MaxValuesPerPoint() int {
	if idx.st == nil {
		return 0
	}
	return idx.st.stats.MaxValuesPerPoint
}

// Flusher returns a function that flushes only the buffered deletion
// bitset.
func (idx *Index) Flusher() func() error {
	return func() error {
		if idx.st == nil {
			return nil
		}
		return idx.st.deleted.Flush()
	}
}

// Files lists every file this index's directory may contain.
func (idx *Index) Files() []string {
	return indexlayout.GeoFiles(idx.dir)
}

// ImmutableFiles lists every geo file except the deletion bitset.
func (idx *Index) ImmutableFiles() []string {
	return indexlayout.GeoImmutableFiles(idx.dir)
}

// Wipe consumes the index, removing every file and attempting to remove
// the directory (best-effort: a non-empty or already-gone directory is not
// an error).
func (idx *Index) Wipe() error {
	if idx.st != nil {
		idx.st.counts.Close()
		idx.st.points.Close()
		idx.st.ids.Close()
		idx.st.values.Close()
		idx.st.deleted.Close()
		idx.st = nil
	}
	for _, f := range idx.Files() {
		if err := filesys.DeleteFile(f); err != nil {
			return err
		}
	}
	_ = filesys.DeleteDir(idx.dir)
	return nil
}

// Close releases every open mapping without deleting any file.
func (idx *Index) Close() error {
	if idx.st == nil {
		return nil
	}
	var firstErr error
	for _, closeFn := range []func() error{idx.st.counts.Close, idx.st.points.Close, idx.st.ids.Close, idx.st.values.Close, idx.st.deleted.Close} {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
