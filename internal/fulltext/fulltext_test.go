package fulltext

import (
	"path/filepath"
	"testing"

	"github.com/iamNilotpal/payloadindex/internal/snapshot"
	"github.com/iamNilotpal/payloadindex/pkg/logger"
	"github.com/iamNilotpal/payloadindex/pkg/payloadoptions"
)

func testOptions() *payloadoptions.Options {
	opts := payloadoptions.NewDefaultOptions()
	return &opts
}

// buildIdsOnly constructs a three-point, three-token ids-only snapshot:
//
//	point 0: "red", "car"
//	point 1: "red"
//	point 2: "blue", "car"
func buildIdsOnly(t *testing.T) *Index {
	t.Helper()
	snap := &snapshot.FullText{
		Vocab: snapshot.Vocabulary{"red": 0, "car": 1, "blue": 2},
		Postings: []snapshot.PostingEntry{
			{PointIDs: []snapshot.PointID{0, 1}}, // red
			{PointIDs: []snapshot.PointID{0, 2}}, // car
			{PointIDs: []snapshot.PointID{2}},    // blue
		},
		PointTokenCount: []uint64{2, 1, 2},
	}
	idx, err := Build(filepath.Join(t.TempDir(), "field"), snap, testOptions(), logger.Nop())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestFilterTokenSetIntersection(t *testing.T) {
	idx := buildIdsOnly(t)

	got := idx.Filter(Query{Tokens: []string{"red", "car"}})
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("Filter(red & car) = %v, want [0]", got)
	}

	got = idx.Filter(Query{Tokens: []string{"red"}})
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("Filter(red) = %v, want [0 1]", got)
	}

	got = idx.Filter(Query{Tokens: []string{"nonexistent"}})
	if got != nil {
		t.Fatalf("Filter(unknown token) = %v, want nil", got)
	}
}

func TestCheckMatch(t *testing.T) {
	idx := buildIdsOnly(t)

	if !idx.CheckMatch(Query{Tokens: []string{"red", "car"}}, 0) {
		t.Fatal("CheckMatch(red & car, point 0) = false, want true")
	}
	if idx.CheckMatch(Query{Tokens: []string{"red", "car"}}, 1) {
		t.Fatal("CheckMatch(red & car, point 1) = true, want false (point 1 has no car)")
	}
	if idx.CheckMatch(Query{Tokens: []string{"green"}}, 0) {
		t.Fatal("CheckMatch(unknown token) = true, want false")
	}
}

func TestRemoveTombstonesPoint(t *testing.T) {
	idx := buildIdsOnly(t)

	before := idx.PointsCount()
	if ok := idx.Remove(0); !ok {
		t.Fatal("Remove(0) = false, want true")
	}
	if got := idx.PointsCount(); got != before-1 {
		t.Fatalf("PointsCount() after Remove = %d, want %d", got, before-1)
	}

	got := idx.Filter(Query{Tokens: []string{"red"}})
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("Filter(red) after removing point 0 = %v, want [1]", got)
	}

	// Removing an already-removed point is a no-op transition.
	if ok := idx.Remove(0); ok {
		t.Fatal("Remove(0) a second time = true, want false")
	}
	if idx.ValuesIsEmpty(0) != true {
		t.Fatal("ValuesIsEmpty(0) after removal = false, want true")
	}
}

func TestPhraseMatchRequiresPositionalIndex(t *testing.T) {
	idx := buildIdsOnly(t)
	got := idx.Filter(Query{Tokens: []string{"red", "car"}, Phrase: true})
	if got != nil {
		t.Fatalf("Filter(phrase) on an ids-only index = %v, want nil (phrase requires positional postings)", got)
	}
}

func TestPhraseMatchPositional(t *testing.T) {
	snap := &snapshot.FullText{
		Vocab: snapshot.Vocabulary{"quick": 0, "brown": 1, "fox": 2},
		Postings: []snapshot.PostingEntry{
			{PointIDs: []snapshot.PointID{0}, Positions: [][]uint32{{0}}}, // quick at 0
			{PointIDs: []snapshot.PointID{0}, Positions: [][]uint32{{1}}}, // brown at 1
			{PointIDs: []snapshot.PointID{0, 1}, Positions: [][]uint32{{2}, {5}}},
		},
		PointTokenCount: []uint64{3, 1},
		Positional:      true,
	}
	idx, err := Build(filepath.Join(t.TempDir(), "field"), snap, testOptions(), logger.Nop())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer idx.Close()

	got := idx.Filter(Query{Tokens: []string{"quick", "brown", "fox"}, Phrase: true})
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("Filter(phrase quick-brown-fox) = %v, want [0] (consecutive positions 0,1,2)", got)
	}

	got = idx.Filter(Query{Tokens: []string{"fox", "quick"}, Phrase: true})
	if got != nil {
		t.Fatalf("Filter(phrase fox-quick) = %v, want nil (not consecutive in that order)", got)
	}
}

func TestOpenAbsentIndexIsEmptyNotError(t *testing.T) {
	dir := t.TempDir()
	idx, err := Open(dir, testOptions(), logger.Nop())
	if err != nil {
		t.Fatalf("Open(empty dir) error = %v, want nil (Absent is a legitimate state)", err)
	}
	defer idx.Close()

	if got := idx.Filter(Query{Tokens: []string{"anything"}}); got != nil {
		t.Fatalf("Filter() on Absent index = %v, want nil", got)
	}
	if idx.PointsCount() != 0 {
		t.Fatal("PointsCount() on Absent index != 0")
	}
	if idx.Remove(0) {
		t.Fatal("Remove() on Absent index = true, want false")
	}
	if _, ok := idx.GetTokenID("x"); ok {
		t.Fatal("GetTokenID() on Absent index ok = true, want false")
	}
}

func TestReopenAfterBuildPreservesState(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "field")
	snap := &snapshot.FullText{
		Vocab:           snapshot.Vocabulary{"a": 0},
		Postings:        []snapshot.PostingEntry{{PointIDs: []snapshot.PointID{0, 1}}},
		PointTokenCount: []uint64{1, 1},
	}
	idx, err := Build(dir, snap, testOptions(), logger.Nop())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	idx.Close()

	reopened, err := Open(dir, testOptions(), logger.Nop())
	if err != nil {
		t.Fatalf("Open() after Build error = %v", err)
	}
	defer reopened.Close()

	got := reopened.Filter(Query{Tokens: []string{"a"}})
	if len(got) != 2 {
		t.Fatalf("Filter(a) after reopen = %v, want 2 points", got)
	}
}

func TestUnsupportedMutationsReturnError(t *testing.T) {
	idx := buildIdsOnly(t)
	if err := idx.IndexTokens(0, []string{"x"}); err == nil {
		t.Fatal("IndexTokens() error = nil, want NotSupported")
	}
	if err := idx.IndexDocument(0, []string{"x"}); err == nil {
		t.Fatal("IndexDocument() error = nil, want NotSupported")
	}
	if err := idx.GetVocabMut(); err == nil {
		t.Fatal("GetVocabMut() error = nil, want NotSupported")
	}
}
