package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/ssargent/gridstore/pkg/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newZone(t *testing.T, typ mesh.ZoneType, size []int) (*mesh.File, *mesh.Zone) {
	t.Helper()
	f, err := mesh.Create(context.Background(), filepath.Join(t.TempDir(), "case.gs"), mesh.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	base, err := f.Base(2)
	require.NoError(t, err)
	z, err := base.CreateZone("River", typ, size)
	require.NoError(t, err)
	return f, z
}

func exportTo(t *testing.T, z *mesh.Zone, opts Options) *cdf.File {
	t.Helper()
	out, err := os.Create(filepath.Join(t.TempDir(), "zone.nc"))
	require.NoError(t, err)
	t.Cleanup(func() { out.Close() })

	require.NoError(t, WriteNetCDF(out, z, opts))
	nc, err := cdf.Open(out)
	require.NoError(t, err)
	return nc
}

func TestWriteNetCDF_Structured(t *testing.T) {
	_, z := newZone(t, mesh.Structured, mesh.StructuredSize(3, 2))
	x := []float64{0, 1, 2, 0, 1, 2}
	y := []float64{0, 0, 0, 1, 1, 1}
	require.NoError(t, z.GridCoordinates().WriteAll(x, y))
	require.NoError(t, z.GridAttributes().WriteReal(mesh.Node, "Elevation", []float64{5, 4, 3, 2, 1, 0}))
	require.NoError(t, z.GridAttributes().WriteInteger(mesh.Cell, "Material", []int32{1, 2}))

	nc := exportTo(t, z, Options{})

	assert.Equal(t, "River", nc.Header.GetAttribute("", "zone_name"))
	assert.Equal(t, []int32{2}, nc.Header.GetAttribute("", "dimension"))
	assert.Equal(t, []int{6}, nc.Header.Lengths("coordinateX"))

	gotX, err := ReadVariable(nc, "coordinateX")
	require.NoError(t, err)
	assert.Equal(t, x, gotX)
	gotY, err := ReadVariable(nc, "coordinateY")
	require.NoError(t, err)
	assert.Equal(t, y, gotY)

	elev, err := ReadVariable(nc, "node_Elevation")
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 4, 3, 2, 1, 0}, elev)
	assert.Equal(t, "Elevation", nc.Header.GetAttribute("node_Elevation", "field"))

	material := make([]int32, 2)
	_, err = nc.Reader("cell_Material", nil, nil).Read(material)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, material)
}

func TestWriteNetCDF_Triangles(t *testing.T) {
	_, z := newZone(t, mesh.Unstructured, []int{4, 2})
	require.NoError(t, z.GridCoordinates().WriteAll([]float64{0, 1, 0, 1}, []float64{0, 0, 1, 1}))
	require.NoError(t, z.WriteTriangleElements([]int32{0, 1, 2, 1, 2, 3}))

	nc := exportTo(t, z, Options{})
	assert.Equal(t, []int{2, 3}, nc.Header.Lengths("connectivity"))

	conn := make([]int32, 6)
	_, err := nc.Reader("connectivity", nil, nil).Read(conn)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 2, 1, 2, 3}, conn)
}

func TestWriteNetCDF_SolutionStep(t *testing.T) {
	f, z := newZone(t, mesh.Structured, mesh.StructuredSize(2, 2))

	assert.ErrorIs(t, exportStep(t, z, 1), mesh.ErrStepOutOfRange)

	_, err := f.WriteSolTime(0)
	require.NoError(t, err)
	_, err = f.WriteSolTime(120)
	require.NoError(t, err)
	s, err := z.CurrentSolution()
	require.NoError(t, err)
	require.NoError(t, s.Attributes().WriteReal(mesh.Node, "Depth", []float64{0.1, 0.2, 0.3, 0.4}))

	nc := exportTo(t, z, Options{Step: 2})
	assert.Equal(t, []float64{120}, nc.Header.GetAttribute("", "time"))
	depth, err := ReadVariable(nc, "node_Depth")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4}, depth)
}

func TestWriteNetCDF_SkipsFunctionalRecords(t *testing.T) {
	_, z := newZone(t, mesh.Structured, mesh.StructuredSize(2, 2))
	a := z.GridAttributes()
	require.NoError(t, a.WriteReal(mesh.Node, "Layer", []float64{1, 1, 1, 1}))
	require.NoError(t, a.WriteReal(mesh.Node, "Layer_7", []float64{7, 7, 7, 7}))
	require.NoError(t, a.WriteFunctionalDimensionReal(mesh.Node, "Depth", mesh.TimeDimension, []float64{0, 100, 200, 300, 400, 500}))
	require.NoError(t, a.WriteFunctionalReal(mesh.Node, "Depth", mesh.TimeDimension, 1, []float64{1, 2, 3, 4}))

	nc := exportTo(t, z, Options{})
	vars := nc.Header.Variables()
	assert.Contains(t, vars, "node_Layer")
	assert.Contains(t, vars, "node_Layer_7")
	assert.NotContains(t, vars, "node_Depth_Time")
	assert.NotContains(t, vars, "node_Depth_Time_1")

	layer7, err := ReadVariable(nc, "node_Layer_7")
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 7, 7, 7}, layer7)

	s, err := Summarize(z)
	require.NoError(t, err)
	fields := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		fields = append(fields, f.Name)
	}
	assert.Equal(t, []string{"Layer", "Layer_7"}, fields)
}

func exportStep(t *testing.T, z *mesh.Zone, step int) error {
	t.Helper()
	out, err := os.Create(filepath.Join(t.TempDir(), "step.nc"))
	require.NoError(t, err)
	defer out.Close()
	return WriteNetCDF(out, z, Options{Step: step})
}

func TestSummarize(t *testing.T) {
	_, z := newZone(t, mesh.Structured, mesh.StructuredSize(3, 2))
	require.NoError(t, z.GridCoordinates().WriteX([]float64{10, 11, 12, 10, 11, 12}))
	require.NoError(t, z.GridAttributes().WriteReal(mesh.Node, "Elevation", []float64{1, 2, 3, 4, 5, 6}))
	require.NoError(t, z.GridAttributes().WriteInteger(mesh.Cell, "Material", []int32{1, 2}))

	s, err := Summarize(z)
	require.NoError(t, err)
	assert.Equal(t, "River", s.Zone)
	assert.Equal(t, []Bounds{{Axis: "X", Min: 10, Max: 12}}, s.Bounds)
	require.Len(t, s.Fields, 1)
	assert.Equal(t, FieldStats{Domain: "Node", Name: "Elevation", Min: 1, Max: 6, Mean: 3.5, Sum: 21}, s.Fields[0])
}
