package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ssargent/gridstore/pkg/codec"
)

// Mode selects how a container file is opened
type Mode int

const (
	ModeRead   Mode = iota // existing file, shared lock, no writes
	ModeModify             // existing file, exclusive lock
	ModeCreate             // new file replacing any existing one, exclusive lock
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeModify:
		return "modify"
	case ModeCreate:
		return "create"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Options tune how a container is opened
type Options struct {
	Backend       BackendFactory // nil selects OpenLogBackend
	FsyncInterval time.Duration
	LockTimeout   time.Duration
	CompressMin   int // zstd threshold for array payloads in bytes, 0 disables
}

// Container errors
var (
	ErrNotFound    = &KVError{"no such group or array"}
	ErrNotGroup    = &KVError{"not a group"}
	ErrNotArray    = &KVError{"not an array"}
	ErrExists      = &KVError{"group or array already exists"}
	ErrClosed      = &KVError{"container or group is closed"}
	ErrInvalidName = &KVError{"invalid group or array name"}
)

var groupMarker = []byte("group")

// Container is a tree of groups and typed arrays stored in one Backend.
// Every group or array is a key holding its absolute path; groups hold a
// marker value and arrays hold a codec array payload.
type Container struct {
	path    string
	mode    Mode
	backend Backend
	arrays  *codec.ArrayCodec
	lock    FileLock

	mu      sync.Mutex
	handles int
	closed  bool
}

// Create opens a new, empty container at path
func Create(ctx context.Context, path string, opts Options) (*Container, error) {
	return Open(ctx, path, ModeCreate, opts)
}

// Open opens the container at path. The lock is taken before anything on
// disk is touched, so a second writer fails with ErrLocked.
func Open(ctx context.Context, path string, mode Mode, opts Options) (*Container, error) {
	lock, err := acquireLock(ctx, path, mode == ModeRead, opts.LockTimeout)
	if err != nil {
		return nil, err
	}

	fail := func(err error) (*Container, error) {
		_ = lock.Unlock()
		return nil, err
	}

	switch mode {
	case ModeCreate:
		if err := os.RemoveAll(path); err != nil {
			return fail(fmt.Errorf("replace container: %w", err))
		}
	case ModeRead, ModeModify:
		if _, err := os.Stat(path); err != nil {
			return fail(fmt.Errorf("open container: %w", err))
		}
	default:
		return fail(fmt.Errorf("open container: unknown %s", mode))
	}

	factory := opts.Backend
	if factory == nil {
		factory = OpenLogBackend
	}
	backend, err := factory(BackendConfig{
		Path:          path,
		ReadOnly:      mode == ModeRead,
		FsyncInterval: opts.FsyncInterval,
	})
	if err != nil {
		return fail(fmt.Errorf("open backend: %w", err))
	}

	return &Container{
		path:    path,
		mode:    mode,
		backend: backend,
		arrays:  codec.NewArrayCodec(codec.WithCompression(opts.CompressMin)),
		lock:    lock,
	}, nil
}

// Path returns the container path
func (c *Container) Path() string { return c.path }

// Mode returns the mode the container was opened with
func (c *Container) Mode() Mode { return c.mode }

// ReadOnly reports whether writes are rejected
func (c *Container) ReadOnly() bool { return c.mode == ModeRead }

// OpenHandles returns how many group handles are currently open
func (c *Container) OpenHandles() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handles
}

// Flush makes every write so far durable
func (c *Container) Flush() error {
	if err := c.check(); err != nil {
		return err
	}
	if c.ReadOnly() {
		return nil
	}
	return c.backend.Sync()
}

// Close flushes and closes the backend and releases the lock. Every step
// runs even if an earlier one fails; the errors are joined.
func (c *Container) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	var errs []error
	if !c.ReadOnly() {
		if err := c.backend.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("flush: %w", err))
		}
	}
	if err := c.backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close backend: %w", err))
	}
	if err := c.lock.Unlock(); err != nil {
		errs = append(errs, fmt.Errorf("unlock: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Container) check() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

func (c *Container) checkWritable() error {
	if err := c.check(); err != nil {
		return err
	}
	if c.ReadOnly() {
		return ErrReadOnly
	}
	return nil
}

// Root opens the root group
func (c *Container) Root() (*Group, error) {
	return c.OpenGroup("/")
}

// OpenGroup opens an existing group by absolute path
func (c *Container) OpenGroup(p string) (*Group, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	p = path.Clean("/" + p)
	if p != "/" {
		value, err := c.get(p)
		if err != nil {
			return nil, err
		}
		if !isGroupValue(value) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotGroup)
		}
	}
	return c.newHandle(p), nil
}

func (c *Container) newHandle(p string) *Group {
	c.mu.Lock()
	c.handles++
	c.mu.Unlock()
	return &Group{c: c, path: p}
}

func (c *Container) get(p string) ([]byte, error) {
	value, err := c.backend.Get([]byte(p))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return value, nil
}

func isGroupValue(value []byte) bool {
	return bytes.Equal(value, groupMarker)
}

// NodeInfo describes one group or array
type NodeInfo struct {
	Path       string
	Name       string
	IsGroup    bool
	DType      codec.DType
	Len        int
	Compressed bool
	Tag        codec.Tag
}

func (c *Container) stat(p string) (NodeInfo, error) {
	info := NodeInfo{Path: p, Name: path.Base(p)}
	if p == "/" {
		info.IsGroup = true
		return info, nil
	}
	value, err := c.get(p)
	if err != nil {
		return info, err
	}
	if isGroupValue(value) {
		info.IsGroup = true
		return info, nil
	}
	hdr, err := codec.PeekHeader(value)
	if err != nil {
		return info, fmt.Errorf("%s: %w", p, err)
	}
	info.DType = hdr.DType
	info.Len = hdr.Count
	info.Compressed = hdr.Compressed
	info.Tag = hdr.Tag
	return info, nil
}

// Walk visits every node below root (root excluded) depth first, children
// in name order
func (c *Container) Walk(root string, fn func(NodeInfo) error) error {
	if err := c.check(); err != nil {
		return err
	}
	root = path.Clean("/" + root)
	keys, err := c.backend.ListKeys([]byte(childPrefix(root)))
	if err != nil {
		return err
	}
	sort.Slice(keys, func(i, j int) bool {
		return lessPath(keys[i], keys[j])
	})
	for _, key := range keys {
		info, err := c.stat(key)
		if err != nil {
			return err
		}
		if err := fn(info); err != nil {
			return err
		}
	}
	return nil
}

// lessPath orders paths segment by segment so a group sorts directly
// before its own children
func lessPath(a, b string) bool {
	as := strings.Split(strings.TrimPrefix(a, "/"), "/")
	bs := strings.Split(strings.TrimPrefix(b, "/"), "/")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}

func childPrefix(p string) string {
	if p == "/" {
		return "/"
	}
	return p + "/"
}

// Group is an open handle on one group. Handles are cheap but counted; close
// them on every path.
type Group struct {
	c      *Container
	path   string
	closed bool
}

// Path returns the absolute path of the group
func (g *Group) Path() string { return g.path }

// Name returns the last path element
func (g *Group) Name() string { return path.Base(g.path) }

// Close releases the handle. Closing twice is a no-op.
func (g *Group) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	g.c.mu.Lock()
	g.c.handles--
	g.c.mu.Unlock()
	return nil
}

func (g *Group) child(name string) (string, error) {
	if g.closed {
		return "", ErrClosed
	}
	if name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return path.Join(g.path, name), nil
}

// OpenGroup opens an existing child group
func (g *Group) OpenGroup(name string) (*Group, error) {
	p, err := g.child(name)
	if err != nil {
		return nil, err
	}
	return g.c.OpenGroup(p)
}

// CreateGroup creates a child group; ErrExists if the name is taken
func (g *Group) CreateGroup(name string) (*Group, error) {
	p, err := g.child(name)
	if err != nil {
		return nil, err
	}
	if err := g.c.checkWritable(); err != nil {
		return nil, err
	}
	if _, err := g.c.get(p); err == nil {
		return nil, fmt.Errorf("%s: %w", p, ErrExists)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err := g.c.backend.Put([]byte(p), groupMarker); err != nil {
		return nil, fmt.Errorf("create group %s: %w", p, err)
	}
	return g.c.newHandle(p), nil
}

// RequireGroup opens the child group, creating it when missing
func (g *Group) RequireGroup(name string) (*Group, error) {
	sub, err := g.OpenGroup(name)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return sub, err
	}
	return g.CreateGroup(name)
}

// Exists reports whether a child of any kind exists
func (g *Group) Exists(name string) (bool, error) {
	p, err := g.child(name)
	if err != nil {
		return false, err
	}
	if _, err := g.c.get(p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Children lists the names of the immediate children in byte order
func (g *Group) Children() ([]string, error) {
	if g.closed {
		return nil, ErrClosed
	}
	if err := g.c.check(); err != nil {
		return nil, err
	}
	prefix := childPrefix(g.path)
	keys, err := g.c.backend.ListKeys([]byte(prefix))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", g.path, err)
	}
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		rest := strings.TrimPrefix(key, prefix)
		if rest == "" || strings.Contains(rest, "/") {
			continue
		}
		names = append(names, rest)
	}
	sort.Strings(names)
	return names, nil
}

// Stat describes a child
func (g *Group) Stat(name string) (NodeInfo, error) {
	p, err := g.child(name)
	if err != nil {
		return NodeInfo{}, err
	}
	return g.c.stat(p)
}

// Delete removes a child array, or a child group with everything below it
func (g *Group) Delete(name string) error {
	p, err := g.child(name)
	if err != nil {
		return err
	}
	if err := g.c.checkWritable(); err != nil {
		return err
	}
	if _, err := g.c.get(p); err != nil {
		return err
	}
	keys, err := g.c.backend.ListKeys([]byte(p + "/"))
	if err != nil {
		return err
	}
	keys = append(keys, p)
	for _, key := range keys {
		if err := g.c.backend.Delete([]byte(key)); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

func (g *Group) writeArray(name string, encode func() ([]byte, error)) error {
	p, err := g.child(name)
	if err != nil {
		return err
	}
	if err := g.c.checkWritable(); err != nil {
		return err
	}
	if existing, err := g.c.get(p); err == nil && isGroupValue(existing) {
		return fmt.Errorf("%s: %w", p, ErrNotArray)
	}
	payload, err := encode()
	if err != nil {
		return fmt.Errorf("encode %s: %w", p, err)
	}
	if err := g.c.backend.Put([]byte(p), payload); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

// WriteFloat64s creates or replaces a real-valued array
func (g *Group) WriteFloat64s(name string, values []float64) error {
	return g.WriteTaggedFloat64s(name, 0, values)
}

// WriteTaggedFloat64s is WriteFloat64s with a tag kept in the array header
// and reported by Stat
func (g *Group) WriteTaggedFloat64s(name string, tag codec.Tag, values []float64) error {
	return g.writeArray(name, func() ([]byte, error) {
		return g.c.arrays.EncodeTaggedFloat64s(tag, values)
	})
}

// WriteInt32s creates or replaces an integer array
func (g *Group) WriteInt32s(name string, values []int32) error {
	return g.WriteTaggedInt32s(name, 0, values)
}

// WriteTaggedInt32s is WriteInt32s with a tag
func (g *Group) WriteTaggedInt32s(name string, tag codec.Tag, values []int32) error {
	return g.writeArray(name, func() ([]byte, error) {
		return g.c.arrays.EncodeTaggedInt32s(tag, values)
	})
}

func (g *Group) readArray(name string) (*codec.Array, error) {
	p, err := g.child(name)
	if err != nil {
		return nil, err
	}
	if err := g.c.check(); err != nil {
		return nil, err
	}
	value, err := g.c.get(p)
	if err != nil {
		return nil, err
	}
	if isGroupValue(value) {
		return nil, fmt.Errorf("%s: %w", p, ErrNotArray)
	}
	arr, err := g.c.arrays.Decode(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return arr, nil
}

// ReadFloat64s reads a real-valued array
func (g *Group) ReadFloat64s(name string) ([]float64, error) {
	arr, err := g.readArray(name)
	if err != nil {
		return nil, err
	}
	values, err := arr.Float64s()
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", g.path, name, err)
	}
	return values, nil
}

// ReadInt32s reads an integer array
func (g *Group) ReadInt32s(name string) ([]int32, error) {
	arr, err := g.readArray(name)
	if err != nil {
		return nil, err
	}
	values, err := arr.Int32s()
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", g.path, name, err)
	}
	return values, nil
}

// ArrayLength returns the element count of an array without decoding it
func (g *Group) ArrayLength(name string) (int, error) {
	info, err := g.Stat(name)
	if err != nil {
		return 0, err
	}
	if info.IsGroup {
		return 0, fmt.Errorf("%s: %w", info.Path, ErrNotArray)
	}
	return info.Len, nil
}
