// Package snapshot defines the in-memory build inputs consumed by the
// full-text and geo index cores' Build functions. These are not persisted
// structures: they are handed in once, by the mutable ("in-memory") sibling
// index this module does not implement, and are fully consumed during a
// single Build call.
package snapshot

import "github.com/iamNilotpal/payloadindex/internal/geohash"

// TokenID identifies a vocabulary entry, bijective with the entries of one
// inverted index's Vocabulary.
type TokenID = uint32

// PointID identifies a point (document) within a segment. The namespace is
// dense, 0..N, and stable across a segment's lifetime.
type PointID = uint32

// Vocabulary maps token text to its assigned TokenID. Ids must be dense in
// [0, len(Vocabulary)) for a valid snapshot: Build writes posting records
// in TokenID order (the index into FullText.Postings), so each id must
// name a posting entry. The vocabulary file itself is written sorted by
// token text.
type Vocabulary map[string]TokenID

// PostingEntry is one token's posting list in an in-memory snapshot, keyed
// implicitly by its position in FullText.Postings (index == TokenID).
type PostingEntry struct {
	// PointIDs is sorted ascending, unique.
	PointIDs []PointID
	// Positions holds, for positional snapshots only, one sorted position
	// list per entry in PointIDs (same length, same order). Nil for an
	// ids-only snapshot.
	Positions [][]uint32
}

// FullText is the in-memory snapshot consumed by the full-text index
// core's Build: a vocabulary, one posting entry per token id, and a dense
// per-point token count used to derive both the initial deletion bitset
// and the point_to_tokens_count.dat file.
type FullText struct {
	Vocab              Vocabulary
	Postings           []PostingEntry // index == TokenID
	PointTokenCount    []uint64       // dense by PointID
	Positional         bool
}

// GeoPoint is one payload value of the geo field type: a single lat/lon
// pair. A point may carry several (PointToValues<GeoPoint> is one-to-many).
type GeoPoint struct {
	Lat, Lon float64
}

// Geo is the in-memory snapshot consumed by the geo index core's Build.
type Geo struct {
	// PointToValues maps PointID to its geo values, dense from 0.
	PointToValues [][]GeoPoint

	// PointsMap maps a geohash to the set of point ids filed under it
	// (including ancestor hashes, per the spec's "a point may appear under
	// multiple ancestor hashes" rule). Build sorts the keys into ascending
	// lexicographic order before writing points_map.bin /
	// points_map_ids.bin, since that on-disk order is what makes binary
	// search valid; entries with no point ids are skipped.
	PointsMap map[geohash.Hash][]PointID

	// PointsPerHash and ValuesPerHash are joined on key to produce
	// counts_per_hash.bin; only keys present in both maps are emitted.
	PointsPerHash map[geohash.Hash]uint32
	ValuesPerHash map[geohash.Hash]uint32

	// PointsValuesCount and MaxValuesPerPoint feed the JSON stats sidecar.
	PointsValuesCount int
	MaxValuesPerPoint int
}

// Backend is the out-of-scope PayloadStorage dispatcher's contract with the
// index cores this module implements: a segment-level multiplexer across
// storage backends selects and opens one of these per field, but never
// mutates it beyond what this module's Build/Open/Wipe already expose.
// No implementation lives in this module; it exists only so a future
// dispatcher has a named interface to satisfy.
type Backend interface {
	// Name identifies which on-disk index shape backs this field (e.g.
	// "full_text_mmap", "geo_mmap").
	Name() string
	// Files lists every file this backend's directory may contain.
	Files() []string
}
