// Package pointvalues implements PointToValues<T>: a dense mapping from a
// PointID to its slice of associated values, backed by a prefix-sum offsets
// array plus a flat fixed-width values blob, so a point's value slice is a
// single zero-copy read. It is generic over the value type so the same
// on-disk shape can back geo points today and other fixed-width payload
// kinds later; this module only ever instantiates it with snapshot.GeoPoint.
package pointvalues

import (
	"os"

	"github.com/iamNilotpal/payloadindex/pkg/errors"
	"github.com/iamNilotpal/payloadindex/pkg/mmapfile"
)

// Codec describes how to encode/decode one fixed-width T to/from bytes.
type Codec[T any] struct {
	Size   int
	Encode func(T, []byte)
	Decode func([]byte) T
}

// Store is a PointToValues<T> sub-store.
type Store[T any] struct {
	offsets *mmapfile.Uint64Array // len() == point count + 1
	blob    *mmapfile.File        // flat, fixed-width T records
	codec   Codec[T]
}

// Build serializes items (one slice of T per PointID) to valuesPath and
// offsetsPath.
func Build[T any](valuesPath, offsetsPath string, items [][]T, codec Codec[T]) error {
	offsets := make([]uint64, len(items)+1)
	var blob []byte
	var off uint64
	for i, vs := range items {
		offsets[i] = off
		for _, v := range vs {
			buf := make([]byte, codec.Size)
			codec.Encode(v, buf)
			blob = append(blob, buf...)
		}
		off += uint64(len(vs)) * uint64(codec.Size)
	}
	offsets[len(items)] = off

	if err := mmapfile.BuildUint64Array(offsetsPath, offsets); err != nil {
		return err
	}
	if err := os.WriteFile(valuesPath, blob, 0644); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to write point-to-values blob").WithPath(valuesPath)
	}
	return nil
}

// Open opens an existing PointToValues<T> store.
func Open[T any](valuesPath, offsetsPath string, populate bool, codec Codec[T]) (*Store[T], error) {
	offsets, err := mmapfile.OpenUint64Array(offsetsPath, populate)
	if err != nil {
		return nil, err
	}
	blob, err := mmapfile.Open(valuesPath, populate)
	if err != nil {
		offsets.Close()
		return nil, err
	}
	return &Store[T]{offsets: offsets, blob: blob, codec: codec}, nil
}

// Len returns the maximum point id this store was built with, plus one.
func (s *Store[T]) Len() int {
	if s == nil || s.offsets.Len() == 0 {
		return 0
	}
	return s.offsets.Len() - 1
}

// Get returns pointID's values, or (nil, false) if pointID is out of range.
// A present-but-empty entry returns (nil, true).
func (s *Store[T]) Get(pointID uint32) ([]T, bool) {
	if s == nil || int(pointID) >= s.Len() {
		return nil, false
	}
	start, _ := s.offsets.Get(int(pointID))
	end, _ := s.offsets.Get(int(pointID) + 1)

	data := s.blob.Bytes()
	n := int(end-start) / s.codec.Size
	out := make([]T, n)
	for i := 0; i < n; i++ {
		off := int(start) + i*s.codec.Size
		out[i] = s.codec.Decode(data[off : off+s.codec.Size])
	}
	return out, true
}

// Count returns the number of values pointID has, or 0 if out of range.
func (s *Store[T]) Count(pointID uint32) int {
	if s == nil || int(pointID) >= s.Len() {
		return 0
	}
	start, _ := s.offsets.Get(int(pointID))
	end, _ := s.offsets.Get(int(pointID) + 1)
	return int(end-start) / s.codec.Size
}

func (s *Store[T]) Populate() error {
	if s == nil {
		return nil
	}
	if err := s.offsets.Populate(); err != nil {
		return err
	}
	return s.blob.Populate()
}

func (s *Store[T]) ClearCache() error {
	if s == nil {
		return nil
	}
	if err := s.offsets.ClearCache(); err != nil {
		return err
	}
	return s.blob.ClearCache()
}

func (s *Store[T]) Close() error {
	if s == nil {
		return nil
	}
	var firstErr error
	if err := s.offsets.Close(); err != nil {
		firstErr = err
	}
	if err := s.blob.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
