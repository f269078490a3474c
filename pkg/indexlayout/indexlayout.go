// Package indexlayout names and discovers the fixed set of files that make
// up an on-disk payload index directory. Unlike the segment files a Bitcask
// store rotates through, a payload index directory holds a small, constant
// set of well-known filenames; this package is the single place that knows
// those names, so the full-text and geo cores never hard-code a path.
package indexlayout

import (
	"os"
	"path/filepath"

	"github.com/iamNilotpal/payloadindex/pkg/filesys"
)

// Full-text index filenames, relative to an index directory.
const (
	PostingsFile         = "postings.dat"
	VocabFile            = "vocab.dat"
	PointTokenCountsFile = "point_to_tokens_count.dat"
	DeletedPointsFile    = "deleted_points.dat"
)

// Geo index filenames, relative to an index directory.
const (
	CountsPerHashFile  = "counts_per_hash.bin"
	PointsMapFile      = "points_map.bin"
	PointsMapIdsFile   = "points_map_ids.bin"
	GeoDeletedFile     = "deleted.bin"
	GeoStatsFile       = "mmap_field_index_stats.json"
	PointToValuesFile  = "point_to_values.dat"
	PointToValuesIndex = "point_to_values_offsets.dat"
)

// FullTextFiles lists every file a full-text index directory may contain.
func FullTextFiles(dir string) []string {
	return []string{
		filepath.Join(dir, PostingsFile),
		filepath.Join(dir, VocabFile),
		filepath.Join(dir, PointTokenCountsFile),
		filepath.Join(dir, DeletedPointsFile),
	}
}

// FullTextImmutableFiles lists the full-text files that are never rewritten
// after build (everything except the buffered deletion bitset).
func FullTextImmutableFiles(dir string) []string {
	return []string{
		filepath.Join(dir, PostingsFile),
		filepath.Join(dir, VocabFile),
		filepath.Join(dir, PointTokenCountsFile),
	}
}

// GeoFiles lists every file a geo index directory may contain, including the
// PointToValues sub-store's files.
func GeoFiles(dir string) []string {
	return []string{
		filepath.Join(dir, CountsPerHashFile),
		filepath.Join(dir, PointsMapFile),
		filepath.Join(dir, PointsMapIdsFile),
		filepath.Join(dir, GeoDeletedFile),
		filepath.Join(dir, GeoStatsFile),
		filepath.Join(dir, PointToValuesFile),
		filepath.Join(dir, PointToValuesIndex),
	}
}

// GeoImmutableFiles lists the geo files that are never rewritten after
// build (everything except the buffered deletion bitset).
func GeoImmutableFiles(dir string) []string {
	return []string{
		filepath.Join(dir, CountsPerHashFile),
		filepath.Join(dir, PointsMapFile),
		filepath.Join(dir, PointsMapIdsFile),
		filepath.Join(dir, GeoStatsFile),
		filepath.Join(dir, PointToValuesFile),
		filepath.Join(dir, PointToValuesIndex),
	}
}

// HasPostings reports whether a full-text index directory has already been
// built: the sole condition the core uses to distinguish the empty (None)
// state from a built one.
func HasPostings(dir string) (bool, error) {
	return filesys.Exists(filepath.Join(dir, PostingsFile))
}

// HasGeoStats reports whether a geo index directory has already been built.
func HasGeoStats(dir string) (bool, error) {
	return filesys.Exists(filepath.Join(dir, GeoStatsFile))
}

// Sibling directories of a field index are discovered with filesys.ReadDir's
// glob support, mirroring the segment-discovery idiom this package
// replaces: a data directory holding one subdirectory per indexed field.
func SiblingFieldDirs(dataDir string) ([]string, error) {
	entries, err := filesys.ReadDir(filepath.Join(dataDir, "*"))
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if info, err := os.Stat(e); err == nil && info.IsDir() {
			dirs = append(dirs, e)
		}
	}
	return dirs, nil
}
