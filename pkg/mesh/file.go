package mesh

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/ssargent/gridstore/pkg/codec"
	"github.com/ssargent/gridstore/pkg/logger"
	"github.com/ssargent/gridstore/pkg/store"
)

// Mode selects how a file is opened
type Mode = store.Mode

const (
	ModeRead   = store.ModeRead
	ModeModify = store.ModeModify
	ModeCreate = store.ModeCreate
)

// Options are passed through to the storage container
type Options = store.Options

// File is an open case file: bases by dimensionality, zones by id and the
// solution step times. A File is not safe for concurrent use.
type File struct {
	c      *store.Container
	bases  map[int]*Base
	zones  map[int]*Zone
	nextID int
	times  []float64
}

// Create creates a new file, replacing any file at path
func Create(ctx context.Context, path string, opts Options) (*File, error) {
	return Open(ctx, path, ModeCreate, opts)
}

// Open opens a file and loads its bases, zones and step times
func Open(ctx context.Context, path string, mode Mode, opts Options) (*File, error) {
	const op = "open file"
	c, err := store.Open(ctx, path, mode, opts)
	if err != nil {
		return nil, storageError(op, err)
	}

	f := &File{
		c:      c,
		bases:  make(map[int]*Base),
		zones:  make(map[int]*Zone),
		nextID: 1,
	}
	if err := f.load(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return f, nil
}

func (f *File) load() error {
	const op = "load file"
	root, err := f.openGroup(op, "/")
	if err != nil {
		return err
	}
	names, err := root.Children()
	_ = root.Close()
	if err != nil {
		return storageError(op, err)
	}

	// bases in dimension order so zone ids are stable across opens
	var dims []int
	for _, name := range names {
		if dim, ok := ParseBaseGroupName(name); ok {
			dims = append(dims, dim)
		}
	}
	sort.Ints(dims)
	for _, dim := range dims {
		b := newBase(f, dim)
		if err := b.load(); err != nil {
			return err
		}
		f.bases[dim] = b
	}

	times, err := f.readFloat64s(op, "/"+iterativeGroup, timeValuesName)
	if err != nil && CodeOf(err) != NotFound {
		return err
	}
	f.times = times
	return nil
}

// Path returns the path the file was opened with
func (f *File) Path() string { return f.c.Path() }

// ReadOnly reports whether the file was opened with ModeRead
func (f *File) ReadOnly() bool { return f.c.ReadOnly() }

// Flush makes everything written so far durable
func (f *File) Flush() error {
	return storageError("flush", f.c.Flush())
}

// Close releases the tree, flushes the container and drops the file lock.
// Teardown always completes; a failure is logged and returned.
func (f *File) Close() error {
	if n := f.c.OpenHandles(); n > 0 {
		logger.Warn("closing file with open group handles", "path", f.Path(), "handles", n)
	}
	err := f.c.Close()
	f.bases = map[int]*Base{}
	f.zones = map[int]*Zone{}
	if err != nil {
		logger.Error("close file", "path", f.Path(), "error", err)
		return storageError("close file", err)
	}
	return nil
}

// Base returns the base for dim, creating it if needed
func (f *File) Base(dim int) (*Base, error) {
	const op = "base"
	if dim < 1 || dim > 3 {
		return nil, newError(InvalidDimension, op, fmt.Sprintf("dimension %d not in 1..3", dim))
	}
	if b, ok := f.bases[dim]; ok {
		return b, nil
	}
	b := newBase(f, dim)
	g, err := f.requireGroup(op, b.path)
	if err != nil {
		return nil, err
	}
	_ = g.Close()
	f.bases[dim] = b
	return b, nil
}

// LookupBase returns an existing base without creating one
func (f *File) LookupBase(dim int) (*Base, bool) {
	b, ok := f.bases[dim]
	return b, ok
}

// Bases returns the bases in dimension order
func (f *File) Bases() []*Base {
	out := make([]*Base, 0, len(f.bases))
	for dim := 1; dim <= 3; dim++ {
		if b, ok := f.bases[dim]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Zone resolves a file-wide zone id
func (f *File) Zone(id int) (*Zone, error) {
	z, ok := f.zones[id]
	if !ok {
		return nil, newError(InvalidZone, "zone", fmt.Sprintf("no zone with id %d", id))
	}
	return z, nil
}

// Zones returns every zone in id order
func (f *File) Zones() []*Zone {
	out := make([]*Zone, 0, len(f.zones))
	for _, z := range f.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (f *File) register(z *Zone) {
	z.id = f.nextID
	f.nextID++
	f.zones[z.id] = z
}

// StepCount returns the number of solution steps
func (f *File) StepCount() int { return len(f.times) }

// Times returns a copy of every step time
func (f *File) Times() []float64 {
	return append([]float64(nil), f.times...)
}

// Time returns the time of a 1-based step
func (f *File) Time(step int) (float64, error) {
	if err := f.checkStep("solution time", step); err != nil {
		return 0, err
	}
	return f.times[step-1], nil
}

// WriteSolTime starts a new solution step at time t and returns its number
func (f *File) WriteSolTime(t float64) (int, error) {
	const op = "write solution time"
	times := append(f.Times(), t)
	if err := f.writeFloat64s(op, "/"+iterativeGroup, timeValuesName, times); err != nil {
		return 0, err
	}
	f.times = times
	return len(times), nil
}

func (f *File) checkStep(op string, step int) error {
	if step < 1 || step > len(f.times) {
		return newError(StepOutOfRange, op, fmt.Sprintf("step %d not in 1..%d", step, len(f.times)))
	}
	return nil
}

// group helpers; every returned group must be closed by the caller

func (f *File) openGroup(op, p string) (*store.Group, error) {
	g, err := f.c.OpenGroup(p)
	if err != nil {
		return nil, storageError(op, err)
	}
	return g, nil
}

func (f *File) requireGroup(op, p string) (*store.Group, error) {
	g, err := f.c.Root()
	if err != nil {
		return nil, storageError(op, err)
	}
	for _, name := range strings.Split(strings.Trim(path.Clean(p), "/"), "/") {
		if name == "" {
			continue
		}
		next, err := g.RequireGroup(name)
		_ = g.Close()
		if err != nil {
			return nil, storageError(op, err)
		}
		g = next
	}
	return g, nil
}

func (f *File) children(op, dir string) ([]string, error) {
	g, err := f.openGroup(op, dir)
	if err != nil {
		return nil, err
	}
	defer g.Close()
	names, err := g.Children()
	return names, storageError(op, err)
}

// childInfos describes the children of dir in name order
func (f *File) childInfos(op, dir string) ([]store.NodeInfo, error) {
	g, err := f.openGroup(op, dir)
	if err != nil {
		return nil, err
	}
	defer g.Close()
	names, err := g.Children()
	if err != nil {
		return nil, storageError(op, err)
	}
	infos := make([]store.NodeInfo, 0, len(names))
	for _, name := range names {
		info, err := g.Stat(name)
		if err != nil {
			return nil, storageError(op, err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (f *File) writeFloat64s(op, dir, name string, values []float64) error {
	return f.writeTaggedFloat64s(op, dir, name, rolePlain, values)
}

func (f *File) writeTaggedFloat64s(op, dir, name string, role codec.Tag, values []float64) error {
	g, err := f.requireGroup(op, dir)
	if err != nil {
		return err
	}
	defer g.Close()
	return storageError(op, g.WriteTaggedFloat64s(name, role, values))
}

func (f *File) writeInt32s(op, dir, name string, values []int32) error {
	return f.writeTaggedInt32s(op, dir, name, rolePlain, values)
}

func (f *File) writeTaggedInt32s(op, dir, name string, role codec.Tag, values []int32) error {
	g, err := f.requireGroup(op, dir)
	if err != nil {
		return err
	}
	defer g.Close()
	return storageError(op, g.WriteTaggedInt32s(name, role, values))
}

func (f *File) readFloat64s(op, dir, name string) ([]float64, error) {
	g, err := f.openGroup(op, dir)
	if err != nil {
		return nil, err
	}
	defer g.Close()
	values, err := g.ReadFloat64s(name)
	if err != nil {
		return nil, storageError(op, err)
	}
	return values, nil
}

func (f *File) readInt32s(op, dir, name string) ([]int32, error) {
	g, err := f.openGroup(op, dir)
	if err != nil {
		return nil, err
	}
	defer g.Close()
	values, err := g.ReadInt32s(name)
	if err != nil {
		return nil, storageError(op, err)
	}
	return values, nil
}

func (f *File) stat(op, dir, name string) (store.NodeInfo, error) {
	g, err := f.openGroup(op, dir)
	if err != nil {
		return store.NodeInfo{}, err
	}
	defer g.Close()
	info, err := g.Stat(name)
	if err != nil {
		return store.NodeInfo{}, storageError(op, err)
	}
	return info, nil
}

func (f *File) arrayLength(op, dir, name string) (int, error) {
	g, err := f.openGroup(op, dir)
	if err != nil {
		return 0, err
	}
	defer g.Close()
	n, err := g.ArrayLength(name)
	if err != nil {
		return 0, storageError(op, err)
	}
	return n, nil
}
