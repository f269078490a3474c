package deletions

import (
	"path/filepath"
	"testing"
)

func TestBuildAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deleted.bin")
	b, err := Build(path, 10, func(i int) bool { return i == 3 })
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(func() { b.Close() })

	if deleted, inRange := b.Get(3); !inRange || !deleted {
		t.Fatalf("Get(3) = (%v, %v), want (true, true)", deleted, inRange)
	}
	if deleted, inRange := b.Get(0); !inRange || deleted {
		t.Fatalf("Get(0) = (%v, %v), want (false, true)", deleted, inRange)
	}
	if _, inRange := b.Get(100); inRange {
		t.Fatal("Get(100) inRange = true, want false (out of range)")
	}
}

func TestSetOverlayVisibleBeforeFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deleted.bin")
	b, err := Build(path, 10, func(i int) bool { return false })
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(func() { b.Close() })

	inRange, transitioned := b.Set(5)
	if !inRange || !transitioned {
		t.Fatalf("Set(5) = (%v, %v), want (true, true)", inRange, transitioned)
	}
	if deleted, _ := b.Get(5); !deleted {
		t.Fatal("Get(5) after Set = false, want true (overlay must be visible before flush)")
	}

	// Setting an already-set bit does not transition again.
	if _, transitioned := b.Set(5); transitioned {
		t.Fatal("Set(5) a second time transitioned = true, want false")
	}
}

func TestSetOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deleted.bin")
	b, err := Build(path, 4, func(i int) bool { return false })
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(func() { b.Close() })

	if inRange, transitioned := b.Set(100); inRange || transitioned {
		t.Fatalf("Set(100) = (%v, %v), want (false, false)", inRange, transitioned)
	}
}

func TestFlushPersistsAndIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deleted.bin")
	b, err := Build(path, 10, func(i int) bool { return false })
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(func() { b.Close() })

	b.Set(2)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("second Flush() error = %v", err)
	}
	if deleted, _ := b.Get(2); !deleted {
		t.Fatal("Get(2) after Flush = false, want true")
	}
}

func TestCountOnes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deleted.bin")
	b, err := Build(path, 10, func(i int) bool { return i == 1 || i == 4 })
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(func() { b.Close() })

	if got := b.CountOnes(); got != 2 {
		t.Fatalf("CountOnes() = %d, want 2", got)
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var b *Bitset
	if got, inRange := b.Get(0); got || inRange {
		t.Fatal("nil Bitset.Get() should return (false, false)")
	}
	if inRange, transitioned := b.Set(0); inRange || transitioned {
		t.Fatal("nil Bitset.Set() should return (false, false)")
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("nil Bitset.Flush() error = %v, want nil", err)
	}
	if b.Len() != 0 || b.CountOnes() != 0 {
		t.Fatal("nil Bitset.Len()/CountOnes() should be 0")
	}
}
