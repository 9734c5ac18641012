package mesh

import (
	"fmt"
	"path"
)

// Zone is one mesh partition. It holds a back-pointer to its Base and owns
// the coordinate, attribute, element and solution records below its group.
type Zone struct {
	base *Base
	id   int
	name string
	path string
	topo Topology
}

// ID is the file-wide zone id, 1-based
func (z *Zone) ID() int { return z.id }

func (z *Zone) Name() string { return z.name }
func (z *Zone) Path() string { return z.path }
func (z *Zone) Base() *Base  { return z.base }
func (z *Zone) File() *File  { return z.base.file }
func (z *Zone) Dim() int     { return z.base.dim }

// Type returns Structured or Unstructured
func (z *Zone) Type() ZoneType { return z.topo.Type }

// Size returns a copy of the size vector
func (z *Zone) Size() []int { return append([]int(nil), z.topo.Size...) }

// Topology returns the zone's topology
func (z *Zone) Topology() Topology { return z.topo }

func (z *Zone) NodeCount() int                      { return z.topo.NodeCount() }
func (z *Zone) CellCount() int                      { return z.topo.CellCount() }
func (z *Zone) IFaceCount() (int, error)            { return z.topo.IFaceCount() }
func (z *Zone) JFaceCount() (int, error)            { return z.topo.JFaceCount() }
func (z *Zone) KFaceCount() (int, error)            { return z.topo.KFaceCount() }
func (z *Zone) StructuredSize2D() (int, int, error) { return z.topo.StructuredSize2D() }

func (z *Zone) StructuredSize1D() (int, error) { return z.topo.StructuredSize1D() }

func (z *Zone) StructuredSize3D() (int, int, int, error) { return z.topo.StructuredSize3D() }

func (z *Zone) sub(names ...string) string {
	return path.Join(append([]string{z.path}, names...)...)
}

// WriteTriangleElements stores the triangle connectivity of a 2D
// unstructured zone, three node indices per element
func (z *Zone) WriteTriangleElements(indices []int32) error {
	return z.writeElements("write triangle elements", Triangle, indices)
}

// WriteLineElements stores line connectivity, two node indices per element
func (z *Zone) WriteLineElements(indices []int32) error {
	return z.writeElements("write line elements", Line, indices)
}

func (z *Zone) writeElements(op string, ct CellType, indices []int32) error {
	n, err := z.topo.ElementCount()
	if err != nil {
		return &Error{Code: InvalidGridType, Op: op, Msg: "zone is structured"}
	}
	if ct == Triangle && z.Dim() != 2 {
		return newError(InvalidDimension, op, fmt.Sprintf("triangles need a 2D zone, zone is %dD", z.Dim()))
	}
	if err := ValidateElements(ct, n, indices); err != nil {
		return err
	}

	g, err := z.File().requireGroup(op, z.sub(elementsGroup))
	if err != nil {
		return err
	}
	defer g.Close()
	if err := g.WriteInt32s(cellTypeName, []int32{int32(ct)}); err != nil {
		return storageError(op, err)
	}
	return storageError(op, g.WriteInt32s(connectivityName, indices))
}

// ReadUnstructuredGridCellType returns the element kind written for the zone
func (z *Zone) ReadUnstructuredGridCellType() (CellType, error) {
	const op = "read cell type"
	if z.topo.Type != Unstructured {
		return 0, newError(InvalidGridType, op, "zone is structured")
	}
	v, err := z.File().readInt32s(op, z.sub(elementsGroup), cellTypeName)
	if err != nil {
		return 0, err
	}
	if len(v) != 1 {
		return 0, newError(SizeMismatch, op, fmt.Sprintf("cell type holds %d values", len(v)))
	}
	return CellType(v[0]), nil
}

func (z *Zone) checkCellType(op string, ct CellType) error {
	got, err := z.ReadUnstructuredGridCellType()
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.Op = op
		}
		return err
	}
	if got != ct {
		return newError(NotFound, op, fmt.Sprintf("zone has %s elements, not %s", got, ct))
	}
	return nil
}

func (z *Zone) elementsSize(op string, ct CellType) (int, error) {
	if err := z.checkCellType(op, ct); err != nil {
		return 0, err
	}
	return z.topo.Size[1], nil
}

func (z *Zone) readElements(op string, ct CellType) ([]int32, error) {
	if err := z.checkCellType(op, ct); err != nil {
		return nil, err
	}
	return z.File().readInt32s(op, z.sub(elementsGroup), connectivityName)
}

// ReadTriangleElementsSize returns the triangle count
func (z *Zone) ReadTriangleElementsSize() (int, error) {
	return z.elementsSize("read triangle elements size", Triangle)
}

// ReadTriangleElementsValueCount returns the length of the flat triangle table
func (z *Zone) ReadTriangleElementsValueCount() (int, error) {
	n, err := z.elementsSize("read triangle elements value count", Triangle)
	return ElementValueCount(Triangle, n), err
}

// ReadTriangleElements returns the triangle table exactly as written
func (z *Zone) ReadTriangleElements() ([]int32, error) {
	return z.readElements("read triangle elements", Triangle)
}

func (z *Zone) ReadLineElementsSize() (int, error) {
	return z.elementsSize("read line elements size", Line)
}

func (z *Zone) ReadLineElementsValueCount() (int, error) {
	n, err := z.elementsSize("read line elements value count", Line)
	return ElementValueCount(Line, n), err
}

func (z *Zone) ReadLineElements() ([]int32, error) {
	return z.readElements("read line elements", Line)
}

// CopyGridTo creates a zone with the same name, type and size under target
// and copies its coordinates and element connectivity. Attributes and
// solutions stay behind.
func (z *Zone) CopyGridTo(target *Base) (*Zone, error) {
	const op = "copy grid"
	if target.dim != z.Dim() {
		return nil, newError(InvalidDimension, op, fmt.Sprintf("cannot copy a %dD zone into a %dD base", z.Dim(), target.dim))
	}
	if _, exists := target.byName[z.name]; exists {
		return nil, newError(DuplicateName, op, fmt.Sprintf("%s already has zone %q", target.path, z.name))
	}

	copied, err := target.CreateZone(z.name, z.topo.Type, z.topo.Size)
	if err != nil {
		return nil, err
	}

	src, dst := z.GridCoordinates(), copied.GridCoordinates()
	for axis := AxisX; int(axis) < z.Dim(); axis++ {
		values, err := src.Read(axis)
		if CodeOf(err) == NotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := dst.Write(axis, values); err != nil {
			return nil, err
		}
	}

	if z.topo.Type == Unstructured {
		ct, err := z.ReadUnstructuredGridCellType()
		if CodeOf(err) == NotFound {
			return copied, nil
		}
		if err != nil {
			return nil, err
		}
		indices, err := z.readElements(op, ct)
		if err != nil {
			return nil, err
		}
		if err := copied.writeElements(op, ct, indices); err != nil {
			return nil, err
		}
	}
	return copied, nil
}
