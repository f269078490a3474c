package mmapfile

import (
	"encoding/binary"
	"os"

	"github.com/iamNilotpal/payloadindex/pkg/errors"
)

// wordSize is the native width used for PointTokenCount and similar
// fixed-stride unsigned slices: a little-endian uint64 per element,
// matching "native-width unsigned counts" on every platform this module
// targets.
const wordSize = 8

// Uint64Array is a typed, zero-copy read view over a file holding a
// contiguous array of little-endian uint64 values — the mmap primitive
// behind PointTokenCount.
type Uint64Array struct {
	mm  *File
	len int
}

// BuildUint64Array writes values contiguously at native width to path,
// creating it if necessary. This is the one-shot build step; the result is
// never mutated again in place (rewritten, if at all, only by a fresh
// build).
func BuildUint64Array(path string, values []uint64) error {
	buf := make([]byte, len(values)*wordSize)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*wordSize:], v)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to write uint64 array").
			WithPath(path)
	}
	return nil
}

// OpenUint64Array memory-maps an existing array file for reading and the
// one in-place mutation PointTokenCount needs: zeroing a slot on remove.
// len is recomputed as filesize / sizeof(uint64).
func OpenUint64Array(path string, populate bool) (*Uint64Array, error) {
	mm, err := OpenWritable(path, populate)
	if err != nil {
		return nil, err
	}
	if mm.Len()%wordSize != 0 {
		mm.Close()
		return nil, errors.NewIndexCorruptionError(path, 0, mm.Len(), nil)
	}
	return &Uint64Array{mm: mm, len: mm.Len() / wordSize}, nil
}

// Len returns the number of elements.
func (a *Uint64Array) Len() int {
	if a == nil {
		return 0
	}
	return a.len
}

// Get returns the value at i and whether i was in range.
func (a *Uint64Array) Get(i int) (uint64, bool) {
	if a == nil || i < 0 || i >= a.len {
		return 0, false
	}
	off := i * wordSize
	return binary.LittleEndian.Uint64(a.mm.data[off : off+wordSize]), true
}

// Set overwrites the value at i in place and returns whether i was in
// range. Used to zero a point's token count when it is tombstoned.
func (a *Uint64Array) Set(i int, v uint64) bool {
	if a == nil || i < 0 || i >= a.len {
		return false
	}
	off := i * wordSize
	binary.LittleEndian.PutUint64(a.mm.data[off:off+wordSize], v)
	return true
}

// Populate eagerly faults in every page of the backing mapping.
func (a *Uint64Array) Populate() error {
	if a == nil {
		return nil
	}
	return a.mm.Populate()
}

// ClearCache advises the kernel to evict the backing mapping's pages.
func (a *Uint64Array) ClearCache() error {
	if a == nil {
		return nil
	}
	return a.mm.ClearCache()
}

// Close unmaps the backing file.
func (a *Uint64Array) Close() error {
	if a == nil {
		return nil
	}
	return a.mm.Close()
}

// word32Size is the stride of a Uint32Array element.
const word32Size = 4

// Uint32Array is a typed, zero-copy read view over a flat little-endian
// uint32 array — the mmap primitive behind points_map_ids.bin.
type Uint32Array struct {
	mm  *File
	len int
}

// BuildUint32Array writes values contiguously to path.
func BuildUint32Array(path string, values []uint32) error {
	buf := make([]byte, len(values)*word32Size)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*word32Size:], v)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to write uint32 array").
			WithPath(path)
	}
	return nil
}

// OpenUint32Array memory-maps an existing array file read-only.
func OpenUint32Array(path string, populate bool) (*Uint32Array, error) {
	mm, err := Open(path, populate)
	if err != nil {
		return nil, err
	}
	if mm.Len()%word32Size != 0 {
		mm.Close()
		return nil, errors.NewIndexCorruptionError(path, 0, mm.Len(), nil)
	}
	return &Uint32Array{mm: mm, len: mm.Len() / word32Size}, nil
}

// Len returns the number of elements.
func (a *Uint32Array) Len() int {
	if a == nil {
		return 0
	}
	return a.len
}

// Get returns the value at i and whether i was in range.
func (a *Uint32Array) Get(i int) (uint32, bool) {
	if a == nil || i < 0 || i >= a.len {
		return 0, false
	}
	off := i * word32Size
	return binary.LittleEndian.Uint32(a.mm.data[off : off+word32Size]), true
}

// Populate eagerly faults in every page of the backing mapping.
func (a *Uint32Array) Populate() error {
	if a == nil {
		return nil
	}
	return a.mm.Populate()
}

// ClearCache advises the kernel to evict the backing mapping's pages.
func (a *Uint32Array) ClearCache() error {
	if a == nil {
		return nil
	}
	return a.mm.ClearCache()
}

// Close unmaps the backing file.
func (a *Uint32Array) Close() error {
	if a == nil {
		return nil
	}
	return a.mm.Close()
}
