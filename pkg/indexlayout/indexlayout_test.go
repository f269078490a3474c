package indexlayout

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHasPostingsAndHasGeoStats(t *testing.T) {
	dir := t.TempDir()

	has, err := HasPostings(dir)
	if err != nil {
		t.Fatalf("HasPostings() error = %v", err)
	}
	if has {
		t.Fatal("HasPostings(empty dir) = true, want false")
	}

	if err := os.WriteFile(filepath.Join(dir, PostingsFile), nil, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	has, err = HasPostings(dir)
	if err != nil {
		t.Fatalf("HasPostings() error = %v", err)
	}
	if !has {
		t.Fatal("HasPostings(dir with postings.dat) = false, want true")
	}

	has, err = HasGeoStats(dir)
	if err != nil {
		t.Fatalf("HasGeoStats() error = %v", err)
	}
	if has {
		t.Fatal("HasGeoStats(dir without stats file) = true, want false")
	}
}

func TestFullTextFilesAndImmutableSubset(t *testing.T) {
	dir := "/data/myfield"
	all := FullTextFiles(dir)
	immutable := FullTextImmutableFiles(dir)

	if len(all) != len(immutable)+1 {
		t.Fatalf("FullTextFiles has %d entries, FullTextImmutableFiles has %d, want exactly one more (the deletion bitset)", len(all), len(immutable))
	}

	deletedPath := filepath.Join(dir, DeletedPointsFile)
	for _, f := range immutable {
		if f == deletedPath {
			t.Fatalf("FullTextImmutableFiles includes %q, want it excluded", deletedPath)
		}
	}
}

func TestGeoFilesAndImmutableSubset(t *testing.T) {
	dir := "/data/myfield"
	all := GeoFiles(dir)
	immutable := GeoImmutableFiles(dir)

	if len(all) != len(immutable)+1 {
		t.Fatalf("GeoFiles has %d entries, GeoImmutableFiles has %d, want exactly one more (the deletion bitset)", len(all), len(immutable))
	}

	deletedPath := filepath.Join(dir, GeoDeletedFile)
	for _, f := range immutable {
		if f == deletedPath {
			t.Fatalf("GeoImmutableFiles includes %q, want it excluded", deletedPath)
		}
	}
}

func TestSiblingFieldDirs(t *testing.T) {
	dataDir := t.TempDir()
	for _, name := range []string{"title", "description"} {
		if err := os.MkdirAll(filepath.Join(dataDir, name), 0755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dataDir, "not_a_dir.txt"), nil, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	dirs, err := SiblingFieldDirs(dataDir)
	if err != nil {
		t.Fatalf("SiblingFieldDirs() error = %v", err)
	}

	names := map[string]bool{}
	for _, d := range dirs {
		names[filepath.Base(d)] = true
	}
	if !names["title"] || !names["description"] {
		t.Fatalf("SiblingFieldDirs() = %v, want to include title and description", dirs)
	}
}
