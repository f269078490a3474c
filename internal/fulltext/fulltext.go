// Package fulltext implements the inverted-index core: a vocabulary, a
// posting store, a per-point token-count slice, and the buffered deletion
// bitset, combined to answer token-set and phrase subset queries over an
// immutable, memory-mapped corpus.
//
// State is represented as a tagged variant rather than a nullable pointer:
// an Index is either Absent (no postings.dat on disk — a legitimate empty
// index) or Ready (all four files open). Every reader method is total: it
// returns an empty answer in the Absent state rather than erroring.
package fulltext

import (
	"path/filepath"
	"sync/atomic"

	"github.com/iamNilotpal/payloadindex/internal/deletions"
	"github.com/iamNilotpal/payloadindex/internal/hwcounter"
	"github.com/iamNilotpal/payloadindex/internal/postings"
	"github.com/iamNilotpal/payloadindex/internal/snapshot"
	"github.com/iamNilotpal/payloadindex/pkg/errors"
	"github.com/iamNilotpal/payloadindex/pkg/filesys"
	"github.com/iamNilotpal/payloadindex/pkg/indexlayout"
	"github.com/iamNilotpal/payloadindex/pkg/mmapfile"
	"github.com/iamNilotpal/payloadindex/pkg/payloadoptions"
	"go.uber.org/zap"
)

// storage bundles the four open files that back a Ready index. A nil
// *storage on Index means Absent.
type storage struct {
	postings    *postings.Store
	vocab       *mmapfile.HashMap
	tokenCounts *mmapfile.Uint64Array
	deleted     *deletions.Bitset
}

// Index is the full-text inverted-index core.
type Index struct {
	dir     string
	opts    *payloadoptions.Options
	log     *zap.SugaredLogger
	counter *hwcounter.Counter

	st *storage // nil => Absent

	// activePointsCount mirrors len(point_to_tokens_count) minus tombstones,
	// adjusted per the "decrement only within physical range" quirk in
	// Remove. Mutated only by Remove, which the host serializes per index
	// instance; kept atomic defensively since Flush and readers run
	// concurrently with it.
	activePointsCount atomic.Int64
}

// Query is a filter/check_match request: either a token-set match (all
// tokens must co-occur) or a phrase match (tokens must occur consecutively
// in the given order).
type Query struct {
	Tokens []string
	Phrase bool
}

// Open opens an existing index directory. Absence of postings.dat yields
// an Absent index (not an error) — a legitimate, not-yet-built state.
func Open(dir string, opts *payloadoptions.Options, log *zap.SugaredLogger) (*Index, error) {
	idx := &Index{dir: dir, opts: opts, log: log, counter: hwcounter.New()}

	has, err := indexlayout.HasPostings(dir)
	if err != nil {
		return nil, err
	}
	if !has {
		return idx, nil
	}

	vocab, err := mmapfile.OpenHashMap(filepath.Join(dir, indexlayout.VocabFile), opts.Populate())
	if err != nil {
		return nil, err
	}

	tokenCounts, err := mmapfile.OpenUint64Array(filepath.Join(dir, indexlayout.PointTokenCountsFile), opts.Populate())
	if err != nil {
		vocab.Close()
		return nil, err
	}

	deleted, err := deletions.Open(filepath.Join(dir, indexlayout.DeletedPointsFile), opts.Populate())
	if err != nil {
		vocab.Close()
		tokenCounts.Close()
		return nil, err
	}

	// The posting file does not record its kind: a file that does not parse
	// as ids-only is opened as positional.
	postingsPath := filepath.Join(dir, indexlayout.PostingsFile)
	store, err := postings.Open(postingsPath, postings.IDsOnly, vocab.Len(), opts.Populate())
	if err != nil {
		store, err = postings.Open(postingsPath, postings.Positional, vocab.Len(), opts.Populate())
	}
	if err != nil {
		vocab.Close()
		tokenCounts.Close()
		deleted.Close()
		return nil, err
	}

	idx.st = &storage{postings: store, vocab: vocab, tokenCounts: tokenCounts, deleted: deleted}
	idx.activePointsCount.Store(int64(tokenCounts.Len() - deleted.CountOnes()))

	return idx, nil
}

// Build serializes an in-memory snapshot to dir and opens it as a Ready
// index.
func Build(dir string, snap *snapshot.FullText, opts *payloadoptions.Options, log *zap.SugaredLogger) (*Index, error) {
	if err := filesys.CreateDir(dir, 0755, true); err != nil {
		return nil, err
	}

	kind := postings.IDsOnly
	if snap.Positional {
		kind = postings.Positional
	}

	lists := make([][]postings.Doc, len(snap.Postings))
	for tokenID, entry := range snap.Postings {
		docs := make([]postings.Doc, len(entry.PointIDs))
		for i, pid := range entry.PointIDs {
			d := postings.Doc{PointID: pid}
			if snap.Positional && i < len(entry.Positions) {
				d.Positions = entry.Positions[i]
			}
			docs[i] = d
		}
		lists[tokenID] = docs
	}
	if err := postings.Build(filepath.Join(dir, indexlayout.PostingsFile), kind, lists); err != nil {
		return nil, err
	}

	pairs := make([]mmapfile.HashMapPair, 0, len(snap.Vocab))
	for token, id := range snap.Vocab {
		pairs = append(pairs, mmapfile.HashMapPair{Key: token, Values: []uint32{id}})
	}
	sortHashMapPairs(pairs)
	if err := mmapfile.BuildHashMap(filepath.Join(dir, indexlayout.VocabFile), pairs); err != nil {
		return nil, err
	}

	if err := mmapfile.BuildUint64Array(filepath.Join(dir, indexlayout.PointTokenCountsFile), snap.PointTokenCount); err != nil {
		return nil, err
	}

	if err := mmapfile.BuildBitset(filepath.Join(dir, indexlayout.DeletedPointsFile), len(snap.PointTokenCount), func(i int) bool {
		return snap.PointTokenCount[i] == 0
	}); err != nil {
		return nil, err
	}

	return Open(dir, opts, log)
}

func sortHashMapPairs(pairs []mmapfile.HashMapPair) {
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j-1].Key > pairs[j].Key; j-- {
			pairs[j-1], pairs[j] = pairs[j], pairs[j-1]
		}
	}
}

// isActive reports whether pointID is neither tombstoned nor out of the
// physical bounds of the deletion bitset.
func (idx *Index) isActive(pointID uint32) bool {
	if idx.st == nil {
		return false
	}
	deleted, inRange := idx.st.deleted.Get(int(pointID))
	return inRange && !deleted
}

// GetTokenID looks up a token in the vocabulary, charging the read-accounted
// hash map lookup cost.
func (idx *Index) GetTokenID(token string) (snapshot.TokenID, bool) {
	if idx.st == nil {
		return 0, false
	}
	values, ok := idx.st.vocab.Get(token, hwcounter.Conditioned(idx.counter, idx.opts.OnDisk))
	if !ok || len(values) == 0 {
		return 0, false
	}
	return values[0], true
}

// PostingLen returns the raw posting list length for tokenID, for planner
// statistics.
func (idx *Index) PostingLen(tokenID snapshot.TokenID) (int, bool) {
	if idx.st == nil {
		return 0, false
	}
	r, ok := idx.st.postings.Get(tokenID, hwcounter.Disposable())
	if !ok {
		return 0, false
	}
	return r.Len(), true
}

// IterVocab enumerates every (token, TokenID) pair. Used by secondary index
// builds; it charges no hardware counter, since no on-disk I/O is being
// metered for governance here (a full scan has its own cost model).
func (idx *Index) IterVocab(yield func(token string, id snapshot.TokenID) bool) {
	if idx.st == nil {
		return
	}
	idx.st.vocab.Iter(func(key string, values []uint32) bool {
		if len(values) == 0 {
			return true
		}
		return yield(key, values[0])
	})
}

// VocabWithPostingsLenIter enumerates every (token, posting length) pair.
func (idx *Index) VocabWithPostingsLenIter(yield func(token string, postingLen int) bool) {
	if idx.st == nil {
		return
	}
	idx.st.vocab.Iter(func(key string, values []uint32) bool {
		if len(values) == 0 {
			return true
		}
		r, ok := idx.st.postings.Get(values[0], hwcounter.Disposable())
		if !ok {
			return true
		}
		return yield(key, r.Len())
	})
}

// resolveReaders resolves every distinct query token to a posting reader.
// Returns (nil, false) if any token is unknown to the vocabulary.
func (idx *Index) resolveReaders(tokens []string) ([]*postings.Reader, bool) {
	readers := make([]*postings.Reader, 0, len(tokens))
	for _, t := range tokens {
		id, ok := idx.GetTokenID(t)
		if !ok {
			return nil, false
		}
		r, ok := idx.st.postings.Get(id, hwcounter.Disposable())
		if !ok {
			return nil, false
		}
		readers = append(readers, r)
	}
	return readers, true
}

// Filter dispatches on query shape and returns matching point ids in
// ascending order with tombstoned points removed.
func (idx *Index) Filter(q Query) []snapshot.PointID {
	if idx.st == nil || len(q.Tokens) == 0 {
		return nil
	}

	if q.Phrase {
		if idx.st.postings.Kind() != postings.Positional {
			return nil
		}
		readers, ok := idx.resolveReaders(q.Tokens)
		if !ok {
			return nil
		}
		candidates := postings.Intersect(readers, idx.isActive)
		out := candidates[:0]
		for _, c := range candidates {
			if postings.Phrase(readers, c) {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}

	readers, ok := idx.resolveReaders(q.Tokens)
	if !ok {
		return nil
	}
	return postings.Intersect(readers, idx.isActive)
}

// CheckMatch is the point-wise verification used by re-scoring filters.
func (idx *Index) CheckMatch(q Query, pointID snapshot.PointID) bool {
	if idx.st == nil || len(q.Tokens) == 0 {
		return false
	}
	if !idx.isActive(pointID) || idx.ValuesIsEmpty(pointID) {
		return false
	}

	readers, ok := idx.resolveReaders(q.Tokens)
	if !ok {
		return false
	}

	if q.Phrase {
		if idx.st.postings.Kind() != postings.Positional {
			return false
		}
		return postings.Phrase(readers, pointID)
	}

	for _, r := range readers {
		if !r.Contains(pointID) {
			return false
		}
	}
	return true
}

// ValuesIsEmpty reports whether pointID is tombstoned, out of range, or has
// a zero token count.
func (idx *Index) ValuesIsEmpty(pointID snapshot.PointID) bool {
	return idx.ValuesCount(pointID) == 0
}

// ValuesCount returns the token count for pointID, or 0 when tombstoned or
// out of range.
func (idx *Index) ValuesCount(pointID snapshot.PointID) int {
	if idx.st == nil || !idx.isActive(pointID) {
		return 0
	}
	v, ok := idx.st.tokenCounts.Get(int(pointID))
	if !ok {
		return 0
	}
	return int(v)
}

// PointsCount returns the maintained active-points counter.
func (idx *Index) PointsCount() int {
	if idx.st == nil {
		return 0
	}
	return int(idx.activePointsCount.Load())
}

// Remove tombstones pointID. Returns false if storage is absent, the bit
// was already set, or the bit was out of range of the deletion bitset.
//
// If pointID falls within the physical range of the token-count slice, the
// slot is zeroed and the active-points counter is decremented; otherwise
// only the tombstone bit is set. Whether that asymmetry is an intentional
// allowance for a bitset sized ahead of the token-count slice, or a latent
// bug, is unclear upstream; this preserves the observed behavior rather
// than guessing.
func (idx *Index) Remove(pointID snapshot.PointID) bool {
	if idx.st == nil {
		return false
	}

	_, transitioned := idx.st.deleted.Set(int(pointID))
	if !transitioned {
		return false
	}

	if int(pointID) < idx.st.tokenCounts.Len() {
		idx.st.tokenCounts.Set(int(pointID), 0)
		idx.activePointsCount.Add(-1)
	}

	return true
}

// IndexTokens is not supported: the immutable mmap core rejects mutation
// beyond tombstoning.
func (idx *Index) IndexTokens(snapshot.PointID, []string) error {
	return errors.NewNotSupportedError("IndexTokens")
}

// IndexDocument is not supported for the same reason as IndexTokens.
func (idx *Index) IndexDocument(snapshot.PointID, []string) error {
	return errors.NewNotSupportedError("IndexDocument")
}

// GetVocabMut is not supported: there is no mutable vocabulary view over an
// immutable mmap index.
func (idx *Index) GetVocabMut() error {
	return errors.NewNotSupportedError("GetVocabMut")
}

// Flusher returns a function that flushes only the buffered deletion
// bitset — the one piece of mutable state this core carries.
func (idx *Index) Flusher() func() error {
	return func() error {
		if idx.st == nil {
			return nil
		}
		return idx.st.deleted.Flush()
	}
}

// Files lists all four on-disk files.
func (idx *Index) Files() []string {
	return indexlayout.FullTextFiles(idx.dir)
}

// ImmutableFiles lists every file except the deletion bitset.
func (idx *Index) ImmutableFiles() []string {
	return indexlayout.FullTextImmutableFiles(idx.dir)
}

// Close releases every open mapping.
func (idx *Index) Close() error {
	if idx.st == nil {
		return nil
	}
	var firstErr error
	for _, closeFn := range []func() error{idx.st.postings.Close, idx.st.vocab.Close, idx.st.tokenCounts.Close, idx.st.deleted.Close} {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
