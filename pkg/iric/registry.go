package iric

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/segmentio/ksuid"
	"github.com/ssargent/gridstore/pkg/logger"
	"github.com/ssargent/gridstore/pkg/mesh"
	"github.com/ssargent/gridstore/pkg/metrics"
)

// FileID identifies an open file in a Registry. Ids are never reused.
type FileID string

// Registry maps file ids to open files. Opening inserts an entry, closing
// removes it, and calls with an unknown or closed id fail with InvalidFile.
// Calls on one file are serialized; calls on different files are not.
type Registry struct {
	mu      sync.RWMutex
	files   map[FileID]*entry
	opts    mesh.Options
	metrics *metrics.Metrics
}

type entry struct {
	mu   sync.Mutex
	file *mesh.File
	// pending particle group per zone id
	writers map[int]*mesh.ParticleGroupImageWriter
}

// Option configures a Registry
type Option func(*Registry)

// WithStoreOptions sets the options every file is opened with
func WithStoreOptions(opts mesh.Options) Option {
	return func(r *Registry) { r.opts = opts }
}

// WithMetrics records API calls and backend operations in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{files: make(map[FileID]*entry)}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics != nil {
		r.opts.Backend = r.metrics.InstrumentFactory(r.opts.Backend)
	}
	return r
}

// Create creates a new file at path, replacing any existing one
func (r *Registry) Create(ctx context.Context, path string) (FileID, error) {
	return r.Open(ctx, path, mesh.ModeCreate)
}

// Open opens the file at path and registers it
func (r *Registry) Open(ctx context.Context, path string, mode mesh.Mode) (FileID, error) {
	return call(r, "open", func() (FileID, error) {
		f, err := mesh.Open(ctx, path, mode, r.opts)
		if err != nil {
			return "", err
		}

		fid := FileID(ksuid.New().String())
		r.mu.Lock()
		r.files[fid] = &entry{file: f, writers: make(map[int]*mesh.ParticleGroupImageWriter)}
		r.mu.Unlock()

		if r.metrics != nil {
			r.metrics.FileOpened()
		}
		logger.Debug("file opened", "fid", fid, "path", path, "mode", mode)
		return fid, nil
	})
}

// Close closes a file and forgets its id. Buffered particle groups that were
// never ended are dropped.
func (r *Registry) Close(fid FileID) error {
	return r.do("close", func() error {
		r.mu.Lock()
		e, ok := r.files[fid]
		delete(r.files, fid)
		r.mu.Unlock()
		if !ok {
			return invalidFile("close", fid)
		}
		if r.metrics != nil {
			r.metrics.FileClosed()
		}

		e.mu.Lock()
		defer e.mu.Unlock()
		for zid, w := range e.writers {
			if w.Pending() > 0 {
				logger.Warn("dropping unfinished particle group", "fid", fid, "zone", zid, "points", w.Pending())
			}
		}
		e.writers = nil
		return e.file.Close()
	})
}

// CloseAll closes every open file and returns the first error
func (r *Registry) CloseAll() error {
	var first error
	for _, fid := range r.IDs() {
		if err := r.Close(fid); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// IDs returns the open file ids, sorted
func (r *Registry) IDs() []FileID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]FileID, 0, len(r.files))
	for fid := range r.files {
		ids = append(ids, fid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of open files
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.files)
}

// With runs fn with exclusive use of the file behind fid
func (r *Registry) With(fid FileID, fn func(*mesh.File) error) error {
	return r.withEntry(fid, func(e *entry) error { return fn(e.file) })
}

func (r *Registry) lookup(fid FileID) (*entry, error) {
	r.mu.RLock()
	e, ok := r.files[fid]
	r.mu.RUnlock()
	if !ok {
		return nil, invalidFile("lookup", fid)
	}
	return e, nil
}

func (r *Registry) withEntry(fid FileID, fn func(*entry) error) error {
	e, err := r.lookup(fid)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.writers == nil {
		// closed while we waited
		return invalidFile("lookup", fid)
	}
	return fn(e)
}

// withPair locks two distinct files in id order
func (r *Registry) withPair(a, b FileID, fn func(fa, fb *mesh.File) error) error {
	ea, err := r.lookup(a)
	if err != nil {
		return err
	}
	eb, err := r.lookup(b)
	if err != nil {
		return err
	}
	first, second := ea, eb
	if b < a {
		first, second = eb, ea
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()
	if ea.writers == nil {
		return invalidFile("lookup", a)
	}
	if eb.writers == nil {
		return invalidFile("lookup", b)
	}
	return fn(ea.file, eb.file)
}

func invalidFile(op string, fid FileID) error {
	return &mesh.Error{Code: mesh.InvalidFile, Op: op, Msg: fmt.Sprintf("no open file with id %q", fid)}
}

// do traces a call and records its outcome
func (r *Registry) do(op string, fn func() error) error {
	logger.Enter(op)
	err := fn()
	logger.Leave(op, err)
	if r.metrics != nil {
		r.metrics.RecordAPICall(op, err == nil)
	}
	return err
}

func call[T any](r *Registry, op string, fn func() (T, error)) (T, error) {
	var out T
	err := r.do(op, func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}

// zone resolves fid and zid and runs fn on the zone under the file lock
func zone[T any](r *Registry, op string, fid FileID, zid int, fn func(*mesh.Zone) (T, error)) (T, error) {
	return call(r, op, func() (T, error) {
		var out T
		err := r.With(fid, func(f *mesh.File) error {
			z, err := f.Zone(zid)
			if err != nil {
				return err
			}
			out, err = fn(z)
			return err
		})
		return out, err
	})
}

func (r *Registry) zoneDo(op string, fid FileID, zid int, fn func(*mesh.Zone) error) error {
	_, err := zone(r, op, fid, zid, func(z *mesh.Zone) (struct{}, error) {
		return struct{}{}, fn(z)
	})
	return err
}
