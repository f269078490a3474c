package mmapfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	want := []byte{1, 2, 3, 4, 5}
	if err := os.WriteFile(path, want, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	f, err := Open(path, false)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()

	if got := f.Bytes(); string(got) != string(want) {
		t.Fatalf("Bytes() = %v, want %v", got, want)
	}
	if f.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", f.Len(), len(want))
	}
	if f.Path() != path {
		t.Fatalf("Path() = %q, want %q", f.Path(), path)
	}
}

func TestOpenZeroLengthFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	f, err := Open(path, false)
	if err != nil {
		t.Fatalf("Open(zero-length file) error = %v, want nil", err)
	}
	defer f.Close()

	if f.Bytes() != nil {
		t.Fatalf("Bytes() on zero-length file = %v, want nil", f.Bytes())
	}
	if f.Len() != 0 {
		t.Fatalf("Len() on zero-length file = %d, want 0", f.Len())
	}
}

func TestOpenWritableMutatesInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(path, []byte{0, 0, 0}, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	f, err := OpenWritable(path, false)
	if err != nil {
		t.Fatalf("OpenWritable() error = %v", err)
	}
	f.Bytes()[1] = 42
	if err := f.Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got[1] != 42 {
		t.Fatalf("file byte[1] after Sync/Close = %d, want 42", got[1])
	}
}

func TestNilFileIsSafe(t *testing.T) {
	var f *File
	if f.Bytes() != nil || f.Len() != 0 || f.Path() != "" {
		t.Fatal("nil File accessors should return zero values")
	}
	if err := f.Sync(); err != nil {
		t.Fatalf("nil File.Sync() error = %v, want nil", err)
	}
	if err := f.Populate(); err != nil {
		t.Fatalf("nil File.Populate() error = %v, want nil", err)
	}
	if err := f.ClearCache(); err != nil {
		t.Fatalf("nil File.ClearCache() error = %v, want nil", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("nil File.Close() error = %v, want nil", err)
	}
}
