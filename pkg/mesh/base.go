package mesh

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/ssargent/gridstore/pkg/logger"
	"github.com/ssargent/gridstore/pkg/store"
)

// Base holds the zones of one spatial dimensionality
type Base struct {
	file   *File
	dim    int
	path   string
	zones  []*Zone
	byName map[string]*Zone
	// next default-name counter value; never decreases
	counter int
}

func newBase(f *File, dim int) *Base {
	return &Base{
		file:    f,
		dim:     dim,
		path:    "/" + BaseGroupName(dim),
		byName:  make(map[string]*Zone),
		counter: 1,
	}
}

// load reads every zone group below the base. Groups that do not describe a
// zone are skipped with a warning.
func (b *Base) load() error {
	const op = "load base"
	names, err := b.file.children(op, b.path)
	if err != nil {
		return err
	}
	for _, name := range names {
		z, err := b.loadZone(name)
		if err != nil {
			if CodeOf(err) == StorageFailure && !errors.Is(err, store.ErrNotGroup) {
				return err
			}
			logger.Warn("skipping group that is not a zone", "base", b.path, "group", name, "error", err)
			continue
		}
		b.add(z)
	}
	if n := len(b.zones) + 1; n > b.counter {
		b.counter = n
	}
	return nil
}

func (b *Base) loadZone(name string) (*Zone, error) {
	const op = "load zone"
	zpath := path.Join(b.path, name)

	typ, err := b.file.readInt32s(op, zpath, zoneTypeName)
	if err != nil {
		return nil, err
	}
	if len(typ) != 1 {
		return nil, newError(SizeMismatch, op, fmt.Sprintf("%s/%s holds %d values", zpath, zoneTypeName, len(typ)))
	}
	raw, err := b.file.readInt32s(op, zpath, zoneSizeName)
	if err != nil {
		return nil, err
	}
	size := make([]int, len(raw))
	for i, v := range raw {
		size[i] = int(v)
	}
	topo, err := NewTopology(b.dim, ZoneType(typ[0]), size)
	if err != nil {
		return nil, err
	}
	return &Zone{base: b, name: name, path: zpath, topo: topo}, nil
}

func (b *Base) add(z *Zone) {
	b.zones = append(b.zones, z)
	b.byName[z.name] = z
	b.file.register(z)
	if n, ok := ParseDefaultZoneName(z.name); ok && n >= b.counter {
		b.counter = n + 1
	}
}

// Dim returns the spatial dimensionality
func (b *Base) Dim() int { return b.dim }

// Path returns the base group path
func (b *Base) Path() string { return b.path }

// File returns the owning file
func (b *Base) File() *File { return b.file }

// Zones returns the zones in creation (or load) order
func (b *Base) Zones() []*Zone {
	return append([]*Zone(nil), b.zones...)
}

// ZoneCount returns the number of zones
func (b *Base) ZoneCount() int { return len(b.zones) }

// Zone looks a zone up by name
func (b *Base) Zone(name string) (*Zone, error) {
	z, ok := b.byName[name]
	if !ok {
		return nil, newError(NotFound, "zone", fmt.Sprintf("%s has no zone %q", b.path, name))
	}
	return z, nil
}

// NextDefaultName consumes counter values until it finds a free Grid_NNN
// name. Consumed values are never handed out again.
func (b *Base) NextDefaultName() string {
	for {
		name := DefaultZoneName(b.counter)
		b.counter++
		if _, taken := b.byName[name]; !taken {
			return name
		}
	}
}

// CreateZone creates a named zone and persists its type and size
func (b *Base) CreateZone(name string, typ ZoneType, size []int) (*Zone, error) {
	const op = "create zone"
	if name == "" || strings.Contains(name, "/") {
		return nil, newError(InvalidZone, op, fmt.Sprintf("invalid zone name %q", name))
	}
	if _, exists := b.byName[name]; exists {
		return nil, newError(DuplicateName, op, fmt.Sprintf("%s already has zone %q", b.path, name))
	}
	topo, err := NewTopology(b.dim, typ, size)
	if err != nil {
		return nil, err
	}

	parent, err := b.file.requireGroup(op, b.path)
	if err != nil {
		return nil, err
	}
	g, err := parent.CreateGroup(name)
	_ = parent.Close()
	if err != nil {
		if errors.Is(err, store.ErrExists) {
			return nil, &Error{Code: DuplicateName, Op: op, Msg: name, Err: err}
		}
		return nil, storageError(op, err)
	}
	defer g.Close()

	raw := make([]int32, len(topo.Size))
	for i, v := range topo.Size {
		raw[i] = int32(v)
	}
	if err := g.WriteInt32s(zoneTypeName, []int32{int32(typ)}); err != nil {
		return nil, storageError(op, err)
	}
	if err := g.WriteInt32s(zoneSizeName, raw); err != nil {
		return nil, storageError(op, err)
	}

	z := &Zone{base: b, name: name, path: path.Join(b.path, name), topo: topo}
	b.add(z)
	return z, nil
}

// CreateDefaultZone creates a zone named by NextDefaultName. The counter
// advances even when creation fails.
func (b *Base) CreateDefaultZone(typ ZoneType, size []int) (*Zone, error) {
	return b.CreateZone(b.NextDefaultName(), typ, size)
}

// RemoveZone deletes a zone and everything below it. Its id is retired and
// the default-name counter is left alone.
func (b *Base) RemoveZone(name string) error {
	const op = "remove zone"
	z, err := b.Zone(name)
	if err != nil {
		return err
	}
	g, err := b.file.openGroup(op, b.path)
	if err != nil {
		return err
	}
	defer g.Close()
	if err := g.Delete(name); err != nil {
		return storageError(op, err)
	}

	delete(b.byName, name)
	for i, other := range b.zones {
		if other == z {
			b.zones = append(b.zones[:i], b.zones[i+1:]...)
			break
		}
	}
	delete(b.file.zones, z.id)
	return nil
}
