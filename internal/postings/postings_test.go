package postings

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/iamNilotpal/payloadindex/internal/hwcounter"
)

func buildAndOpen(t *testing.T, kind Kind, lists [][]Doc) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "postings.dat")
	if err := Build(path, kind, lists); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	s, err := Open(path, kind, len(lists), false)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIDsOnlyRoundTrip(t *testing.T) {
	lists := [][]Doc{
		{{PointID: 1}, {PointID: 3}, {PointID: 7}},
		{{PointID: 2}},
	}
	s := buildAndOpen(t, IDsOnly, lists)

	r, ok := s.Get(0, hwcounter.Disposable())
	if !ok {
		t.Fatal("Get(0) ok = false")
	}
	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}
	if !r.Contains(7) {
		t.Fatal("Contains(7) = false, want true")
	}
	if r.Contains(4) {
		t.Fatal("Contains(4) = true, want false")
	}

	if _, ok := s.Get(uint32(len(lists)), hwcounter.Disposable()); ok {
		t.Fatal("Get(out of range) ok = true, want false")
	}
}

func TestIntersectAgreement(t *testing.T) {
	lists := [][]Doc{
		{{PointID: 1}, {PointID: 2}, {PointID: 3}, {PointID: 4}},
		{{PointID: 2}, {PointID: 3}, {PointID: 5}},
	}
	s := buildAndOpen(t, IDsOnly, lists)

	r0, _ := s.Get(0, hwcounter.Disposable())
	r1, _ := s.Get(1, hwcounter.Disposable())

	got := Intersect([]*Reader{r0, r1}, nil)
	want := []uint32{2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Intersect() = %v, want %v", got, want)
	}
}

func TestIntersectFilterExcludesTombstoned(t *testing.T) {
	lists := [][]Doc{
		{{PointID: 1}, {PointID: 2}},
		{{PointID: 1}, {PointID: 2}},
	}
	s := buildAndOpen(t, IDsOnly, lists)

	r0, _ := s.Get(0, hwcounter.Disposable())
	r1, _ := s.Get(1, hwcounter.Disposable())

	got := Intersect([]*Reader{r0, r1}, func(id uint32) bool { return id != 1 })
	want := []uint32{2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Intersect() with filter = %v, want %v", got, want)
	}
}

func TestIntersectEmptyWhenAnyListEmpty(t *testing.T) {
	lists := [][]Doc{
		{{PointID: 1}},
		{},
	}
	s := buildAndOpen(t, IDsOnly, lists)

	r0, _ := s.Get(0, hwcounter.Disposable())
	r1, _ := s.Get(1, hwcounter.Disposable())

	if got := Intersect([]*Reader{r0, r1}, nil); got != nil {
		t.Fatalf("Intersect() = %v, want nil", got)
	}
}

func TestPositionalPhraseMatch(t *testing.T) {
	// doc 1: token "a" at positions [0, 5], token "b" at positions [1, 9].
	// "a b" consecutively matches at offset 0 (a@0, b@1).
	lists := [][]Doc{
		{{PointID: 1, Positions: []uint32{0, 5}}},
		{{PointID: 1, Positions: []uint32{1, 9}}},
	}
	s := buildAndOpen(t, Positional, lists)

	ra, _ := s.Get(0, hwcounter.Disposable())
	rb, _ := s.Get(1, hwcounter.Disposable())

	if !Phrase([]*Reader{ra, rb}, 1) {
		t.Fatal("Phrase() = false, want true for consecutive a@0,b@1")
	}
}

func TestPositionalPhraseNonConsecutiveFails(t *testing.T) {
	// token "a" at [0], token "b" at [5]: never consecutive.
	lists := [][]Doc{
		{{PointID: 1, Positions: []uint32{0}}},
		{{PointID: 1, Positions: []uint32{5}}},
	}
	s := buildAndOpen(t, Positional, lists)

	ra, _ := s.Get(0, hwcounter.Disposable())
	rb, _ := s.Get(1, hwcounter.Disposable())

	if Phrase([]*Reader{ra, rb}, 1) {
		t.Fatal("Phrase() = true, want false for non-consecutive positions")
	}
}

func TestReaderPositions(t *testing.T) {
	lists := [][]Doc{
		{{PointID: 1, Positions: []uint32{2, 4, 6}}},
	}
	s := buildAndOpen(t, Positional, lists)

	r, _ := s.Get(0, hwcounter.Disposable())
	got := r.Positions(1)
	want := []uint32{2, 4, 6}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Positions(1) = %v, want %v", got, want)
	}
	if got := r.Positions(99); got != nil {
		t.Fatalf("Positions(99) = %v, want nil", got)
	}
}
