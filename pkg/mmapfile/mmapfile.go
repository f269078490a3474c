// Package mmapfile provides the raw memory-mapped file primitives every
// payload index core is built from: opening a file into a read-only (or,
// via OpenWritable, writable) mmap region, advising the kernel to populate
// or evict its pages, and the typed views built on top — fixed-stride
// arrays, a packed bitset and a string-keyed hash map.
//
// Grounded on the unix.Mmap/unix.Munmap usage pattern used elsewhere in
// this ecosystem for read-only memory-mapped storage files.
package mmapfile

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/iamNilotpal/payloadindex/pkg/errors"
)

// File is a read-only or writable memory-mapped view over a file on disk. It is the
// leaf building block every typed view (Array, Bitset, HashMap) wraps.
type File struct {
	path string
	file *os.File
	data []byte
}

// Open memory-maps the file at path for reading. If populate is true, the
// kernel is asked to fault in every page synchronously (MAP_POPULATE);
// otherwise pages are left demand-paged.
//
// Opening a zero-length file returns a File with a nil data slice and no
// error; callers treat that as an empty view rather than a failure, since
// mmap(2) rejects zero-length mappings.
func Open(path string, populate bool) (*File, error) {
	return open(path, populate, false)
}

// OpenWritable memory-maps the file at path for both reading and in-place
// mutation. It backs the two pieces of state a built index is ever allowed
// to change after the fact: the point-token-count slot zeroed by remove,
// and the deletion bitset materialized by flush.
func OpenWritable(path string, populate bool) (*File, error) {
	return open(path, populate, true)
}

func open(path string, populate, writable bool) (*File, error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}

	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to open mmap file").
			WithPath(path)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to stat mmap file").
			WithPath(path)
	}

	if stat.Size() == 0 {
		return &File{path: path, file: f, data: nil}, nil
	}

	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}

	mapFlags := unix.MAP_SHARED
	if populate {
		mapFlags |= unix.MAP_POPULATE
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(stat.Size()), prot, mapFlags)
	if err != nil {
		f.Close()
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to mmap file").
			WithPath(path)
	}

	return &File{path: path, file: f, data: data}, nil
}

// Sync requests that in-place writes to the mapping be flushed durably to
// the backing file. Used by the buffered deletion bitset's flush.
func (f *File) Sync() error {
	if f == nil || len(f.data) == 0 {
		return nil
	}
	if err := unix.Msync(f.data, unix.MS_SYNC); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to msync mmap file").
			WithPath(f.path)
	}
	return nil
}

// Bytes returns the raw mapped region. Empty (nil) for a zero-length file.
func (f *File) Bytes() []byte {
	if f == nil {
		return nil
	}
	return f.data
}

// Len returns the size in bytes of the mapped region.
func (f *File) Len() int {
	if f == nil {
		return 0
	}
	return len(f.data)
}

// Populate forces every page of the mapping to be resident, equivalent to
// requesting MAP_POPULATE after the fact. It is a no-op on an empty file.
func (f *File) Populate() error {
	if f == nil || len(f.data) == 0 {
		return nil
	}
	return unix.Madvise(f.data, unix.MADV_WILLNEED)
}

// ClearCache advises the kernel that the mapping's pages are not needed
// soon, allowing them to be evicted from the page cache without unmapping.
func (f *File) ClearCache() error {
	if f == nil || len(f.data) == 0 {
		return nil
	}
	return unix.Madvise(f.data, unix.MADV_DONTNEED)
}

// Close unmaps the region and closes the backing file descriptor.
func (f *File) Close() error {
	if f == nil {
		return nil
	}
	var mmapErr error
	if f.data != nil {
		mmapErr = unix.Munmap(f.data)
		f.data = nil
	}
	closeErr := f.file.Close()
	if mmapErr != nil {
		return errors.NewStorageError(mmapErr, errors.ErrorCodeIO, "failed to munmap file").
			WithPath(f.path)
	}
	if closeErr != nil {
		return errors.NewStorageError(closeErr, errors.ErrorCodeIO, "failed to close mmap file").
			WithPath(f.path)
	}
	return nil
}

// Path returns the file path backing this mapping.
func (f *File) Path() string {
	if f == nil {
		return ""
	}
	return f.path
}
