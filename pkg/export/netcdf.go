// Package export writes zones out in formats other tools read
package export

import (
	"fmt"
	"os"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ssargent/gridstore/pkg/mesh"
)

// Dimension names used in exported files
const (
	DimNode   = "node"
	DimCell   = "cell"
	DimIFace  = "iface"
	DimJFace  = "jface"
	DimKFace  = "kface"
	DimVertex = "vertex"
)

var domainDims = map[mesh.Domain]string{
	mesh.Node:  DimNode,
	mesh.Cell:  DimCell,
	mesh.IFace: DimIFace,
	mesh.JFace: DimJFace,
	mesh.KFace: DimKFace,
}

// Options selects what goes into an export
type Options struct {
	// Step exports the fields of a solution step instead of the grid
	// attributes. Zero exports grid attributes only.
	Step int
}

// VariableName is the name a field is exported under
func VariableName(d mesh.Domain, field string) string {
	return domainDims[d] + "_" + field
}

type variable struct {
	name   string
	dims   []string
	real   []float64
	ints   []int32
	domain mesh.Domain
	field  string
}

// WriteNetCDF writes the coordinates, element connectivity and fields of a
// zone to w as a classic NetCDF file. w is written from offset zero.
func WriteNetCDF(w *os.File, z *mesh.Zone, opts Options) error {
	attrs := z.GridAttributes()
	var t float64
	if opts.Step > 0 {
		s, err := z.Solution(opts.Step)
		if err != nil {
			return err
		}
		attrs = s.Attributes()
		t = s.Time()
	}

	lengths := map[string]int{}
	for d, name := range domainDims {
		if n, err := z.Topology().Count(d); err == nil && n > 0 {
			lengths[name] = n
		}
	}

	var vars []variable
	for axis := mesh.AxisX; int(axis) < z.Dim(); axis++ {
		values, err := z.GridCoordinates().Read(axis)
		if mesh.CodeOf(err) == mesh.NotFound {
			continue
		}
		if err != nil {
			return fmt.Errorf("export: read %s coordinates: %w", axis, err)
		}
		vars = append(vars, variable{name: "coordinate" + axis.String(), dims: []string{DimNode}, real: values})
	}

	if z.Type() == mesh.Unstructured {
		elems, err := connectivity(z)
		if err != nil {
			return err
		}
		if elems != nil {
			lengths[DimVertex] = len(elems.ints) / lengths[DimCell]
			vars = append(vars, *elems)
		}
	}

	for _, d := range mesh.Domains {
		dim, ok := lengths[domainDims[d]]
		if !ok || dim == 0 {
			continue
		}
		fields, err := readFields(attrs, d)
		if err != nil {
			return err
		}
		vars = append(vars, fields...)
	}

	// zero length dimensions would turn into the record dimension
	dimNames := make([]string, 0, len(lengths))
	for name, n := range lengths {
		if n > 0 {
			dimNames = append(dimNames, name)
		}
	}
	sort.Strings(dimNames)
	dimLengths := make([]int, len(dimNames))
	for i, name := range dimNames {
		dimLengths[i] = lengths[name]
	}

	h := cdf.NewHeader(dimNames, dimLengths)
	h.AddAttribute("", "zone_name", z.Name())
	h.AddAttribute("", "zone_type", z.Type().String())
	h.AddAttribute("", "dimension", []int32{int32(z.Dim())})
	h.AddAttribute("", "step", []int32{int32(opts.Step)})
	h.AddAttribute("", "time", []float64{t})

	for _, v := range vars {
		if v.ints != nil {
			h.AddVariable(v.name, v.dims, []int32{0})
		} else {
			h.AddVariable(v.name, v.dims, []float64{0})
		}
		if v.field != "" {
			h.AddAttribute(v.name, "field", v.field)
			h.AddAttribute(v.name, "domain", v.domain.String())
		}
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("export: create netcdf: %w", err)
	}
	for _, v := range vars {
		if err := writeVariable(f, v); err != nil {
			return fmt.Errorf("export: writing variable %s: %w", v.name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

func connectivity(z *mesh.Zone) (*variable, error) {
	ct, err := z.ReadUnstructuredGridCellType()
	if mesh.CodeOf(err) == mesh.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var indices []int32
	switch ct {
	case mesh.Triangle:
		indices, err = z.ReadTriangleElements()
	case mesh.Line:
		indices, err = z.ReadLineElements()
	default:
		return nil, fmt.Errorf("export: unknown cell type %s", ct)
	}
	if err != nil {
		return nil, err
	}
	if z.CellCount() == 0 {
		return nil, nil
	}
	return &variable{name: "connectivity", dims: []string{DimCell, DimVertex}, ints: indices}, nil
}

// readFields reads every plain field of a domain, real or integer
func readFields(attrs *mesh.GridAttributes, d mesh.Domain) ([]variable, error) {
	names, err := attrs.Names(d)
	if err != nil {
		return nil, err
	}
	vars := make([]variable, 0, len(names))
	for _, name := range names {
		v := variable{name: VariableName(d, name), dims: []string{domainDims[d]}, domain: d, field: name}
		v.real, err = attrs.ReadReal(d, name)
		if mesh.CodeOf(err) == mesh.SizeMismatch {
			v.ints, err = attrs.ReadInteger(d, name)
		}
		if err != nil {
			return nil, fmt.Errorf("export: read %s field %s: %w", d, name, err)
		}
		vars = append(vars, v)
	}
	return vars, nil
}

func writeVariable(f *cdf.File, v variable) error {
	end := f.Header.Lengths(v.name)
	start := make([]int, len(end))
	w := f.Writer(v.name, start, end)
	var err error
	if v.ints != nil {
		_, err = w.Write(v.ints)
	} else {
		_, err = w.Write(v.real)
	}
	return err
}

// ReadVariable reads a whole float64 variable back from an exported file
func ReadVariable(f *cdf.File, name string) ([]float64, error) {
	n := 1
	for _, l := range f.Header.Lengths(name) {
		n *= l
	}
	values := make([]float64, n)
	if _, err := f.Reader(name, nil, nil).Read(values); err != nil {
		return nil, fmt.Errorf("export: read %s: %w", name, err)
	}
	return values, nil
}
