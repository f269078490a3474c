package validation

import (
	"testing"

	"go.uber.org/multierr"
)

func TestCollectionName(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "my_collection", false},
		{"empty", "", true},
		{"too long", string(make([]byte, 256)), true},
		{"forbidden slash", "a/b", true},
		{"forbidden backslash", "a\\b", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := CollectionName(c.input)
			if (err != nil) != c.wantErr {
				t.Fatalf("CollectionName(%q) error = %v, wantErr %v", c.input, err, c.wantErr)
			}
		})
	}
}

func TestShardTransfer(t *testing.T) {
	if err := ShardTransfer(1, 2, 5, 5); err != nil {
		t.Fatalf("ShardTransfer(different peers, same shard) error = %v, want nil", err)
	}
	if err := ShardTransfer(1, 1, 5, 5); err == nil {
		t.Fatal("ShardTransfer(same peer, same shard) error = nil, want error (self transfer)")
	}
	if err := ShardTransfer(1, 1, 5, 6); err != nil {
		t.Fatalf("ShardTransfer(same peer, different shard) error = %v, want nil", err)
	}
}

func TestCreateShardKey(t *testing.T) {
	if err := CreateShardKey(1, 1); err != nil {
		t.Fatalf("CreateShardKey(1, 1) error = %v, want nil", err)
	}
	if err := CreateShardKey(0, 1); err == nil {
		t.Fatal("CreateShardKey(0, 1) error = nil, want error")
	}
	if err := CreateShardKey(1, 0); err == nil {
		t.Fatal("CreateShardKey(1, 0) error = nil, want error")
	}
}

func TestFieldCondition(t *testing.T) {
	if err := FieldCondition(map[string]bool{"match": true, "range": false}); err != nil {
		t.Fatalf("FieldCondition with one predicate set error = %v, want nil", err)
	}
	if err := FieldCondition(map[string]bool{"match": false, "range": false}); err == nil {
		t.Fatal("FieldCondition with no predicates set error = nil, want error")
	}
	if err := FieldCondition(map[string]bool{}); err == nil {
		t.Fatal("FieldCondition(empty) error = nil, want error")
	}
}

func TestVectorPayload(t *testing.T) {
	if err := VectorPayload(true, true, nil); err == nil {
		t.Fatal("VectorPayload(indices && vectors_count) error = nil, want error (mutually exclusive)")
	}
	if err := VectorPayload(true, false, nil); err != nil {
		t.Fatalf("VectorPayload(indices only) error = %v, want nil", err)
	}
	if err := VectorPayload(false, false, [][]float32{{1, 2}, {3, 4, 5}}); err == nil {
		t.Fatal("VectorPayload with non-uniform multi-dense lengths error = nil, want error")
	}
	if err := VectorPayload(false, false, [][]float32{{1, 2}, {3, 4}}); err != nil {
		t.Fatalf("VectorPayload with uniform multi-dense lengths error = %v, want nil", err)
	}
}

func TestGeoPolygonRing(t *testing.T) {
	closed := []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	if err := GeoPolygonRing(closed); err != nil {
		t.Fatalf("GeoPolygonRing(closed, >= 4 points) error = %v, want nil", err)
	}
	if err := GeoPolygonRing(nil); err == nil {
		t.Fatal("GeoPolygonRing(nil) error = nil, want error (non-empty)")
	}
	tooFew := []Point{{0, 0}, {1, 1}, {0, 0}}
	if err := GeoPolygonRing(tooFew); err == nil {
		t.Fatal("GeoPolygonRing(< 4 points) error = nil, want error")
	}
	unclosed := []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	if err := GeoPolygonRing(unclosed); err == nil {
		t.Fatal("GeoPolygonRing(unclosed) error = nil, want error")
	}
}

func TestTimestamp(t *testing.T) {
	if err := Timestamp(0, 0); err != nil {
		t.Fatalf("Timestamp(0, 0) error = %v, want nil", err)
	}
	if err := Timestamp(minTimestampSeconds, 0); err != nil {
		t.Fatalf("Timestamp(min, 0) error = %v, want nil", err)
	}
	if err := Timestamp(maxTimestampSeconds, maxTimestampNanos); err != nil {
		t.Fatalf("Timestamp(max, max) error = %v, want nil", err)
	}
	if err := Timestamp(minTimestampSeconds-1, 0); err == nil {
		t.Fatal("Timestamp(min-1, 0) error = nil, want error")
	}
	if err := Timestamp(maxTimestampSeconds+1, 0); err == nil {
		t.Fatal("Timestamp(max+1, 0) error = nil, want error")
	}
	if err := Timestamp(0, -1); err == nil {
		t.Fatal("Timestamp(0, -1) error = nil, want error")
	}
	if err := Timestamp(0, maxTimestampNanos+1); err == nil {
		t.Fatal("Timestamp(0, max+1) error = nil, want error")
	}
}

func TestTimestampAccumulatesBothErrors(t *testing.T) {
	err := Timestamp(maxTimestampSeconds+1, -1)
	if err == nil {
		t.Fatal("Timestamp(invalid seconds, invalid nanos) error = nil, want error")
	}
	// multierr.Errors extracts the accumulated list; both the seconds-range
	// and nanos-range failures must survive, not just the first.
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("accumulated error count = %d, want 2 (both seconds and nanos should fail independently)", got)
	}
}

func TestIntegerIndexParams(t *testing.T) {
	if err := IntegerIndexParams(true, false); err != nil {
		t.Fatalf("IntegerIndexParams(lookup) error = %v, want nil", err)
	}
	if err := IntegerIndexParams(false, true); err != nil {
		t.Fatalf("IntegerIndexParams(range) error = %v, want nil", err)
	}
	if err := IntegerIndexParams(false, false); err == nil {
		t.Fatal("IntegerIndexParams(neither) error = nil, want error")
	}
}
