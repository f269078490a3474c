// Package validation implements the request-boundary validation
// collaborator: field-keyed checks that accumulate every failure within a
// request rather than short-circuiting on the first one. It sits outside
// the index cores and defines their input contracts (collection names,
// shard transfer requests, geo polygons, protobuf timestamps, ...).
package validation

import (
	"go.uber.org/multierr"

	"github.com/iamNilotpal/payloadindex/pkg/errors"
)

// minTimestampSeconds and maxTimestampSeconds bound a protobuf Timestamp's
// seconds field to the documented range.
const (
	minTimestampSeconds int64 = -62135596800
	maxTimestampSeconds int64 = 253402300799
	maxTimestampNanos    int32 = 999_999_999
)

// Point is a 2D coordinate used by polygon validation.
type Point struct {
	X, Y float64
}

// CollectionName validates a collection name on create: length- and
// character-restricted. Update paths are relaxed and do not call this.
func CollectionName(name string) error {
	var errs error
	if len(name) == 0 {
		errs = multierr.Append(errs, errors.NewFieldRuleError("name", "required", name, "non-empty"))
	}
	if len(name) > 255 {
		errs = multierr.Append(errs, errors.NewFieldRuleError("name", "max_length", name, "<= 255"))
	}
	for _, r := range name {
		if r == '/' || r == '\\' || r == '\x00' {
			errs = multierr.Append(errs, errors.NewFieldRuleError("name", "forbidden_character", string(r), "not / \\ or NUL"))
			break
		}
	}
	return errs
}

// ShardTransfer validates that a shard transfer request does not move a
// shard to itself: from_peer must differ from to_peer when from_shard ==
// to_shard; any other distinct tuple is legal.
func ShardTransfer(fromPeer, toPeer, fromShard, toShard uint64) error {
	if fromShard == toShard && fromPeer == toPeer {
		return errors.NewFieldRuleError("to_peer", "self_transfer", toPeer, "!= from_peer when shards match")
	}
	return nil
}

// CreateShardKey validates replication_factor and shards_number are both
// non-zero.
func CreateShardKey(replicationFactor, shardsNumber uint32) error {
	var errs error
	if replicationFactor == 0 {
		errs = multierr.Append(errs, errors.NewFieldRuleError("replication_factor", "non_zero", replicationFactor, "!= 0"))
	}
	if shardsNumber == 0 {
		errs = multierr.Append(errs, errors.NewFieldRuleError("shards_number", "non_zero", shardsNumber, "!= 0"))
	}
	return errs
}

// FieldCondition validates that at least one predicate field of a field
// condition is non-empty. present lists which predicate fields were set.
func FieldCondition(present map[string]bool) error {
	for _, ok := range present {
		if ok {
			return nil
		}
	}
	return errors.NewFieldRuleError("field_condition", "at_least_one_predicate", present, "non-empty predicate field")
}

// VectorPayload validates the mutually exclusive {indices, vectors_count}
// rule and, when multi-dense, uniform sub-vector length.
func VectorPayload(hasIndices, hasVectorsCount bool, multiDense [][]float32) error {
	var errs error
	if hasIndices && hasVectorsCount {
		errs = multierr.Append(errs, errors.NewFieldRuleError("vectors_count", "mutually_exclusive", hasVectorsCount, "not set together with indices"))
	}
	if len(multiDense) > 0 {
		want := len(multiDense[0])
		for i, sub := range multiDense {
			if len(sub) != want {
				errs = multierr.Append(errs, errors.NewFieldRuleError("vectors", "uniform_length", i, want))
				break
			}
		}
	}
	return errs
}

// GeoPolygonRing validates one polygon ring: non-empty, at least 4 points,
// and closed (first == last).
func GeoPolygonRing(points []Point) error {
	var errs error
	if len(points) == 0 {
		errs = multierr.Append(errs, errors.NewFieldRuleError("ring", "non_empty", 0, "> 0"))
		return errs
	}
	if len(points) < 4 {
		errs = multierr.Append(errs, errors.NewFieldRuleError("ring", "min_points", len(points), ">= 4"))
	}
	if points[0] != points[len(points)-1] {
		errs = multierr.Append(errs, errors.NewFieldRuleError("ring", "closed", points[len(points)-1], points[0]))
	}
	return errs
}

// Timestamp validates a protobuf Timestamp's seconds/nanos pair.
func Timestamp(seconds int64, nanos int32) error {
	var errs error
	if seconds < minTimestampSeconds || seconds > maxTimestampSeconds {
		errs = multierr.Append(errs, errors.NewFieldRuleError("seconds", "range", seconds, [2]int64{minTimestampSeconds, maxTimestampSeconds}))
	}
	if nanos < 0 || nanos > maxTimestampNanos {
		errs = multierr.Append(errs, errors.NewFieldRuleError("nanos", "range", nanos, [2]int32{0, maxTimestampNanos}))
	}
	return errs
}

// IntegerIndexParams validates that at least one of lookup or rangeIndex is
// requested.
func IntegerIndexParams(lookup, rangeIndex bool) error {
	if !lookup && !rangeIndex {
		return errors.NewFieldRuleError("lookup", "at_least_one", false, "lookup or range")
	}
	return nil
}
