// Package payloadindex is the public entry point for the on-disk payload
// index core. It coordinates one pair of indexes per payload field — a
// full-text inverted index and a geo index, each independently optional —
// discovering them as sibling subdirectories of a single data directory, the
// way the teacher's storage layer discovers sibling segment files.
package payloadindex

import (
	"context"
	stdErrors "errors"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/iamNilotpal/payloadindex/internal/fulltext"
	"github.com/iamNilotpal/payloadindex/internal/geoindex"
	"github.com/iamNilotpal/payloadindex/internal/geohash"
	"github.com/iamNilotpal/payloadindex/internal/snapshot"
	"github.com/iamNilotpal/payloadindex/pkg/errors"
	"github.com/iamNilotpal/payloadindex/pkg/filesys"
	"github.com/iamNilotpal/payloadindex/pkg/indexlayout"
	"github.com/iamNilotpal/payloadindex/pkg/logger"
	"github.com/iamNilotpal/payloadindex/pkg/payloadoptions"
	"go.uber.org/zap"
)

// ErrClosed is returned when attempting to use a closed Instance.
var ErrClosed = stdErrors.New("operation failed: cannot access closed payload index instance")

// field bundles a field's two independently optional indexes. Either may be
// nil when only one kind was built through this Instance; the Instance
// checks for nil before every call into them. Indexes opened at discovery
// may instead be Absent (not yet built), which each core handles itself.
type field struct {
	fullText *fulltext.Index
	geo      *geoindex.Index
}

// Instance is the primary entry point for building, opening, querying and
// tearing down payload indexes across every field of a collection.
type Instance struct {
	log    *zap.SugaredLogger
	opts   *payloadoptions.Options
	closed atomic.Bool

	mu     sync.RWMutex
	fields map[string]*field
}

// NewInstance creates a new payload index Instance rooted at opts.DataDir,
// discovering and opening any field subdirectories already present.
func NewInstance(ctx context.Context, service string, opts ...payloadoptions.OptionFunc) (*Instance, error) {
	log := logger.New(service)

	defaultOpts := payloadoptions.NewDefaultOptions()
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	log.Infow("Initializing payload index instance", "dataDir", defaultOpts.DataDir, "onDisk", defaultOpts.OnDisk)

	if err := filesys.CreateDir(defaultOpts.DataDir, 0755, true); err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to create payload index data directory").
			WithPath(defaultOpts.DataDir)
	}

	inst := &Instance{log: log, opts: &defaultOpts, fields: make(map[string]*field)}

	dirs, err := indexlayout.SiblingFieldDirs(defaultOpts.DataDir)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to discover field directories").
			WithPath(defaultOpts.DataDir)
	}
	for _, dir := range dirs {
		name := filepath.Base(dir)
		f, err := inst.openField(dir)
		if err != nil {
			inst.closeFields()
			return nil, err
		}
		inst.fields[name] = f
		log.Infow("Opened field index", "field", name, "dir", dir)
	}

	return inst, nil
}

func (i *Instance) openField(dir string) (*field, error) {
	ft, err := fulltext.Open(dir, i.opts, i.log)
	if err != nil {
		return nil, err
	}
	geo, err := geoindex.Open(dir, i.opts, i.log)
	if err != nil {
		ft.Close()
		return nil, err
	}
	return &field{fullText: ft, geo: geo}, nil
}

func (i *Instance) fieldDir(name string) string {
	return filepath.Join(i.opts.DataDir, name)
}

// BuildFullText (re)builds the full-text index of field from snap, replacing
// any previously built full-text index for that field.
func (i *Instance) BuildFullText(field string, snap *snapshot.FullText) error {
	if i.closed.Load() {
		return ErrClosed
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	idx, err := fulltext.Build(i.fieldDir(field), snap, i.opts, i.log)
	if err != nil {
		return err
	}
	i.getOrCreateField(field).fullText = idx
	i.log.Infow("Built full-text index", "field", field, "tokens", len(snap.Vocab))
	return nil
}

// BuildGeo (re)builds the geo index of field from snap, replacing any
// previously built geo index for that field.
func (i *Instance) BuildGeo(field string, snap *snapshot.Geo) error {
	if i.closed.Load() {
		return ErrClosed
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	idx, err := geoindex.Build(i.fieldDir(field), snap, i.opts, i.log)
	if err != nil {
		return err
	}
	i.getOrCreateField(field).geo = idx
	i.log.Infow("Built geo index", "field", field, "points", snap.PointsValuesCount)
	return nil
}

// getOrCreateField must be called with i.mu held.
func (i *Instance) getOrCreateField(name string) *field {
	f, ok := i.fields[name]
	if !ok {
		f = &field{}
		i.fields[name] = f
	}
	return f
}

func (i *Instance) getField(name string) *field {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.fields[name]
}

// Filter evaluates a full-text query against field, returning matching point
// ids. Returns nil if the field or its full-text index does not exist.
func (i *Instance) Filter(field string, q fulltext.Query) []snapshot.PointID {
	f := i.getField(field)
	if f == nil || f.fullText == nil {
		return nil
	}
	return f.fullText.Filter(q)
}

// CheckMatch point-wise verifies a full-text query against one point.
func (i *Instance) CheckMatch(field string, q fulltext.Query, pointID snapshot.PointID) bool {
	f := i.getField(field)
	if f == nil || f.fullText == nil {
		return false
	}
	return f.fullText.CheckMatch(q, pointID)
}

// PointsOfHash returns field's geo index count of points stored under h.
func (i *Instance) PointsOfHash(field string, h geohash.Hash) uint32 {
	f := i.getField(field)
	if f == nil || f.geo == nil {
		return 0
	}
	return f.geo.PointsOfHash(h)
}

// StoredSubRegions returns every point id field's geo index files under
// prefix or one of its refinements.
func (i *Instance) StoredSubRegions(field string, prefix geohash.Hash) []snapshot.PointID {
	f := i.getField(field)
	if f == nil || f.geo == nil {
		return nil
	}
	return f.geo.StoredSubRegions(prefix)
}

// RemovePoint tombstones pointID in both the full-text and geo index of
// field, wherever each is Ready.
func (i *Instance) RemovePoint(field string, pointID snapshot.PointID) {
	f := i.getField(field)
	if f == nil {
		return
	}
	if f.fullText != nil {
		f.fullText.Remove(pointID)
	}
	if f.geo != nil {
		f.geo.RemovePoint(pointID)
	}
}

// Flush drains and persists every field's buffered deletion bitsets.
func (i *Instance) Flush() error {
	i.mu.RLock()
	defer i.mu.RUnlock()

	for name, f := range i.fields {
		if f.fullText != nil {
			if err := f.fullText.Flusher()(); err != nil {
				return errors.NewIndexError(err, errors.ErrorCodeInternal, "failed to flush full-text deletions").
					WithField(name)
			}
		}
		if f.geo != nil {
			if err := f.geo.Flusher()(); err != nil {
				return errors.NewIndexError(err, errors.ErrorCodeInternal, "failed to flush geo deletions").
					WithField(name)
			}
		}
	}
	return nil
}

// WipeField destructively removes every file belonging to field's indexes
// and evicts it from the instance.
func (i *Instance) WipeField(field string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	f, ok := i.fields[field]
	if !ok {
		return nil
	}
	if f.geo != nil {
		if err := f.geo.Wipe(); err != nil {
			return err
		}
	}
	if f.fullText != nil {
		for _, path := range f.fullText.Files() {
			if err := filesys.DeleteFile(path); err != nil {
				return err
			}
		}
	}
	delete(i.fields, field)
	_ = filesys.DeleteDir(i.fieldDir(field))
	i.log.Infow("Wiped field index", "field", field)
	return nil
}

func (i *Instance) closeFields() {
	for _, f := range i.fields {
		if f.fullText != nil {
			f.fullText.Close()
		}
		if f.geo != nil {
			f.geo.Close()
		}
	}
}

// Close gracefully shuts down the instance, releasing every open mapping
// across every field. It does not delete any file.
func (i *Instance) Close() error {
	if !i.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	var firstErr error
	for name, f := range i.fields {
		if f.fullText != nil {
			if err := f.fullText.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if f.geo != nil {
			if err := f.geo.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		delete(i.fields, name)
	}
	return firstErr
}
