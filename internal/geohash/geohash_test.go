package geohash

import "testing"

func TestEncodeRefinementIsPrefixStable(t *testing.T) {
	// A longer-precision encoding of the same point must extend the
	// shorter-precision encoding as a byte prefix: refining precision can
	// only subdivide the cell the shorter hash already identified.
	short := Encode(57.64911, 10.40744, 5)
	long := Encode(57.64911, 10.40744, 10)
	if !HasPrefix(long, short) {
		t.Fatalf("Encode(precision=10) = %q is not a refinement of Encode(precision=5) = %q", long, short)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	a := Encode(12.34, 56.78, 8)
	b := Encode(12.34, 56.78, 8)
	if a != b {
		t.Fatalf("Encode() is not deterministic: %q != %q", a, b)
	}
}

func TestEncodeLength(t *testing.T) {
	for _, precision := range []int{1, 5, 12} {
		h := Encode(12.34, 56.78, precision)
		if len(h) != precision {
			t.Fatalf("Encode(precision=%d) length = %d, want %d", precision, len(h), precision)
		}
	}
}

func TestHasPrefix(t *testing.T) {
	h := Hash("u4pruydqqvj")
	if !HasPrefix(h, "u4pru") {
		t.Fatalf("HasPrefix(%q, %q) = false, want true", h, "u4pru")
	}
	if HasPrefix(h, "u4prz") {
		t.Fatalf("HasPrefix(%q, %q) = true, want false", h, "u4prz")
	}
	if !HasPrefix(h, h) {
		t.Fatal("HasPrefix(h, h) = false, want true (a hash is its own prefix)")
	}
}

func TestLess(t *testing.T) {
	if !Less("u4p", "u4q") {
		t.Fatal("Less(\"u4p\", \"u4q\") = false, want true")
	}
	if Less("u4q", "u4p") {
		t.Fatal("Less(\"u4q\", \"u4p\") = true, want false")
	}
}

func TestTruncate(t *testing.T) {
	h := Hash("u4pruydqqvj")
	if got := Truncate(h, 5); got != "u4pru" {
		t.Fatalf("Truncate(h, 5) = %q, want %q", got, "u4pru")
	}
	if got := Truncate(h, 50); got != h {
		t.Fatalf("Truncate(h, 50) = %q, want unchanged %q", got, h)
	}
}
