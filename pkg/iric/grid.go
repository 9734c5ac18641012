package iric

import (
	"fmt"

	"github.com/ssargent/gridstore/pkg/mesh"
)

// ZoneOption adjusts how a grid write creates its zone
type ZoneOption func(*zoneOptions)

type zoneOptions struct {
	name string
}

// Named creates the zone under name instead of the next default name
func Named(name string) ZoneOption {
	return func(o *zoneOptions) { o.name = name }
}

// ZoneInfo summarizes one zone
type ZoneInfo struct {
	ID        int    `json:"id"`
	Dim       int    `json:"dim"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Size      []int  `json:"size"`
	NodeCount int    `json:"node_count"`
	CellCount int    `json:"cell_count"`
}

func zoneInfo(z *mesh.Zone) ZoneInfo {
	return ZoneInfo{
		ID:        z.ID(),
		Dim:       z.Dim(),
		Name:      z.Name(),
		Type:      z.Type().String(),
		Size:      z.Size(),
		NodeCount: z.NodeCount(),
		CellCount: z.CellCount(),
	}
}

// newZone creates a zone and runs fill on it. A fill failure leaves the zone
// in place, partially written.
func (r *Registry) newZone(op string, fid FileID, dim int, typ mesh.ZoneType, size []int,
	opts []ZoneOption, fill func(*mesh.Zone) error) (int, error) {
	var o zoneOptions
	for _, opt := range opts {
		opt(&o)
	}
	return call(r, op, func() (int, error) {
		var zid int
		err := r.With(fid, func(f *mesh.File) error {
			base, err := f.Base(dim)
			if err != nil {
				return err
			}
			var z *mesh.Zone
			if o.name != "" {
				z, err = base.CreateZone(o.name, typ, size)
			} else {
				z, err = base.CreateDefaultZone(typ, size)
			}
			if err != nil {
				return err
			}
			zid = z.ID()
			return fill(z)
		})
		return zid, err
	})
}

// WriteGrid1dCoords creates a 1D structured zone of isize nodes
func (r *Registry) WriteGrid1dCoords(fid FileID, isize int, x []float64, opts ...ZoneOption) (int, error) {
	return r.newZone("write grid 1d coords", fid, 1, mesh.Structured, mesh.StructuredSize(isize), opts,
		func(z *mesh.Zone) error {
			return z.GridCoordinates().WriteAll(x)
		})
}

// WriteGrid2dCoords creates a 2D structured zone of isize by jsize nodes
func (r *Registry) WriteGrid2dCoords(fid FileID, isize, jsize int, x, y []float64, opts ...ZoneOption) (int, error) {
	return r.newZone("write grid 2d coords", fid, 2, mesh.Structured, mesh.StructuredSize(isize, jsize), opts,
		func(z *mesh.Zone) error {
			return z.GridCoordinates().WriteAll(x, y)
		})
}

// WriteGrid3dCoords creates a 3D structured zone
func (r *Registry) WriteGrid3dCoords(fid FileID, isize, jsize, ksize int, x, y, z []float64, opts ...ZoneOption) (int, error) {
	return r.newZone("write grid 3d coords", fid, 3, mesh.Structured, mesh.StructuredSize(isize, jsize, ksize), opts,
		func(zone *mesh.Zone) error {
			return zone.GridCoordinates().WriteAll(x, y, z)
		})
}

func elementCount(op string, ct mesh.CellType, indices []int32) (int, error) {
	per := ct.VerticesPerElement()
	if len(indices)%per != 0 {
		return 0, &mesh.Error{Code: mesh.SizeMismatch, Op: op,
			Msg: fmt.Sprintf("%d indices is not a whole number of %s elements", len(indices), ct)}
	}
	return len(indices) / per, nil
}

func (r *Registry) unstructured(op string, fid FileID, dim int, ct mesh.CellType, axes [][]float64,
	indices []int32, opts []ZoneOption) (int, error) {
	n, err := elementCount(op, ct, indices)
	if err != nil {
		return 0, r.do(op, func() error { return err })
	}
	return r.newZone(op, fid, dim, mesh.Unstructured, []int{len(axes[0]), n}, opts,
		func(z *mesh.Zone) error {
			if err := z.GridCoordinates().WriteAll(axes...); err != nil {
				return err
			}
			if ct == mesh.Triangle {
				return z.WriteTriangleElements(indices)
			}
			return z.WriteLineElements(indices)
		})
}

// WriteGrid2dTriangles creates a 2D unstructured zone of triangles, three
// node indices per element
func (r *Registry) WriteGrid2dTriangles(fid FileID, x, y []float64, indices []int32, opts ...ZoneOption) (int, error) {
	return r.unstructured("write grid 2d triangles", fid, 2, mesh.Triangle, [][]float64{x, y}, indices, opts)
}

// WriteGrid2dLines creates a 2D unstructured zone of line elements
func (r *Registry) WriteGrid2dLines(fid FileID, x, y []float64, indices []int32, opts ...ZoneOption) (int, error) {
	return r.unstructured("write grid 2d lines", fid, 2, mesh.Line, [][]float64{x, y}, indices, opts)
}

// WriteGrid3dLines creates a 3D unstructured zone of line elements
func (r *Registry) WriteGrid3dLines(fid FileID, x, y, z []float64, indices []int32, opts ...ZoneOption) (int, error) {
	return r.unstructured("write grid 3d lines", fid, 3, mesh.Line, [][]float64{x, y, z}, indices, opts)
}

// CopyGrid copies the grid of a zone into another open file and returns the
// new zone id there
func (r *Registry) CopyGrid(from, to FileID, zid int) (int, error) {
	return call(r, "copy grid", func() (int, error) {
		if from == to {
			return 0, &mesh.Error{Code: mesh.DuplicateName, Op: "copy grid", Msg: "source and target are the same file"}
		}
		var newID int
		err := r.withPair(from, to, func(src, dst *mesh.File) error {
			z, err := src.Zone(zid)
			if err != nil {
				return err
			}
			base, err := dst.Base(z.Dim())
			if err != nil {
				return err
			}
			copied, err := z.CopyGridTo(base)
			if err != nil {
				return err
			}
			newID = copied.ID()
			return nil
		})
		return newID, err
	})
}

// ReadZoneIDs lists the zone ids of a file
func (r *Registry) ReadZoneIDs(fid FileID) ([]int, error) {
	return call(r, "read zone ids", func() ([]int, error) {
		var ids []int
		err := r.With(fid, func(f *mesh.File) error {
			ids = make([]int, 0)
			for _, z := range f.Zones() {
				ids = append(ids, z.ID())
			}
			return nil
		})
		return ids, err
	})
}

// ReadZoneInfos summarizes every zone of a file in id order
func (r *Registry) ReadZoneInfos(fid FileID) ([]ZoneInfo, error) {
	return call(r, "read zone infos", func() ([]ZoneInfo, error) {
		var infos []ZoneInfo
		err := r.With(fid, func(f *mesh.File) error {
			infos = make([]ZoneInfo, 0)
			for _, z := range f.Zones() {
				infos = append(infos, zoneInfo(z))
			}
			return nil
		})
		return infos, err
	})
}

// ReadZoneInfo summarizes one zone
func (r *Registry) ReadZoneInfo(fid FileID, zid int) (ZoneInfo, error) {
	return zone(r, "read zone info", fid, zid, func(z *mesh.Zone) (ZoneInfo, error) {
		return zoneInfo(z), nil
	})
}

// ReadGrid2dStrSize returns the node extents of a 2D structured zone
func (r *Registry) ReadGrid2dStrSize(fid FileID, zid int) (isize, jsize int, err error) {
	s, err := zone(r, "read grid 2d str size", fid, zid, func(z *mesh.Zone) ([2]int, error) {
		i, j, err := z.StructuredSize2D()
		return [2]int{i, j}, err
	})
	return s[0], s[1], err
}

// ReadGrid3dStrSize returns the node extents of a 3D structured zone
func (r *Registry) ReadGrid3dStrSize(fid FileID, zid int) (isize, jsize, ksize int, err error) {
	s, err := zone(r, "read grid 3d str size", fid, zid, func(z *mesh.Zone) ([3]int, error) {
		i, j, k, err := z.StructuredSize3D()
		return [3]int{i, j, k}, err
	})
	return s[0], s[1], s[2], err
}

// ReadGridCoords reads one coordinate axis
func (r *Registry) ReadGridCoords(fid FileID, zid int, axis mesh.Axis) ([]float64, error) {
	return zone(r, "read grid coords", fid, zid, func(z *mesh.Zone) ([]float64, error) {
		return z.GridCoordinates().Read(axis)
	})
}

func readAxes(z *mesh.Zone, n int) ([][]float64, error) {
	if z.Dim() != n {
		return nil, &mesh.Error{Code: mesh.InvalidDimension, Op: "read coords", Msg: fmt.Sprintf("zone is %dD", z.Dim())}
	}
	axes := make([][]float64, n)
	for i := range axes {
		values, err := z.GridCoordinates().Read(mesh.Axis(i))
		if err != nil {
			return nil, err
		}
		axes[i] = values
	}
	return axes, nil
}

// ReadGrid2dCoords reads the X and Y coordinates of a 2D zone
func (r *Registry) ReadGrid2dCoords(fid FileID, zid int) (x, y []float64, err error) {
	axes, err := zone(r, "read grid 2d coords", fid, zid, func(z *mesh.Zone) ([][]float64, error) {
		return readAxes(z, 2)
	})
	if err != nil {
		return nil, nil, err
	}
	return axes[0], axes[1], nil
}

// ReadGrid3dCoords reads the X, Y and Z coordinates of a 3D zone
func (r *Registry) ReadGrid3dCoords(fid FileID, zid int) (x, y, z []float64, err error) {
	axes, err := zone(r, "read grid 3d coords", fid, zid, func(zone *mesh.Zone) ([][]float64, error) {
		return readAxes(zone, 3)
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return axes[0], axes[1], axes[2], nil
}

// ReadGridCellType returns the element kind of an unstructured zone
func (r *Registry) ReadGridCellType(fid FileID, zid int) (mesh.CellType, error) {
	return zone(r, "read grid cell type", fid, zid, func(z *mesh.Zone) (mesh.CellType, error) {
		return z.ReadUnstructuredGridCellType()
	})
}

func (r *Registry) ReadTriangleElementsSize(fid FileID, zid int) (int, error) {
	return zone(r, "read triangle elements size", fid, zid, func(z *mesh.Zone) (int, error) {
		return z.ReadTriangleElementsSize()
	})
}

func (r *Registry) ReadTriangleElements(fid FileID, zid int) ([]int32, error) {
	return zone(r, "read triangle elements", fid, zid, func(z *mesh.Zone) ([]int32, error) {
		return z.ReadTriangleElements()
	})
}

func (r *Registry) ReadLineElementsSize(fid FileID, zid int) (int, error) {
	return zone(r, "read line elements size", fid, zid, func(z *mesh.Zone) (int, error) {
		return z.ReadLineElementsSize()
	})
}

func (r *Registry) ReadLineElements(fid FileID, zid int) ([]int32, error) {
	return zone(r, "read line elements", fid, zid, func(z *mesh.Zone) ([]int32, error) {
		return z.ReadLineElements()
	})
}

// ReadCount returns the number of entities in a domain of the zone
func (r *Registry) ReadCount(fid FileID, zid int, d mesh.Domain) (int, error) {
	return zone(r, "read "+d.String()+" count", fid, zid, func(z *mesh.Zone) (int, error) {
		return z.Topology().Count(d)
	})
}
