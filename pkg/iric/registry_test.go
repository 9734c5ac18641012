package iric

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ssargent/gridstore/pkg/logger"
	"github.com/ssargent/gridstore/pkg/mesh"
	"github.com/ssargent/gridstore/pkg/metrics"
	"github.com/ssargent/gridstore/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func createFile(t *testing.T, r *Registry) (FileID, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "case.gs")
	fid, err := r.Create(context.Background(), path)
	require.NoError(t, err)
	return fid, path
}

func TestRegistry_OpenClose(t *testing.T) {
	r := NewRegistry()
	fid, _ := createFile(t, r)
	other, _ := createFile(t, r)

	assert.NotEqual(t, fid, other)
	assert.Equal(t, 2, r.Len())
	assert.Len(t, r.IDs(), 2)

	require.NoError(t, r.Close(fid))
	assert.Equal(t, 1, r.Len())

	// stale ids fail cleanly
	err := r.Close(fid)
	assert.ErrorIs(t, err, mesh.ErrInvalidFile)
	_, err = r.ReadSolCount(fid)
	assert.ErrorIs(t, err, mesh.ErrInvalidFile)
	assert.Equal(t, -1, ErrorCode(err))

	_, err = r.ReadZoneIDs(FileID("nope"))
	assert.ErrorIs(t, err, mesh.ErrInvalidFile)

	require.NoError(t, r.CloseAll())
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_OpenMissing(t *testing.T) {
	r := NewRegistry()
	_, err := r.Open(context.Background(), filepath.Join(t.TempDir(), "missing.gs"), mesh.ModeRead)
	assert.ErrorIs(t, err, mesh.ErrNotFound)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_Structured2D(t *testing.T) {
	r := NewRegistry()
	fid, path := createFile(t, r)

	zid, err := r.WriteGrid2dCoords(fid, 3, 2, []float64{0, 1, 2, 0, 1, 2}, []float64{0, 0, 0, 1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 1, zid)

	require.NoError(t, r.WriteGridReal(fid, zid, mesh.Node, "Elevation", []float64{1, 2, 3, 4, 5, 6}))
	require.NoError(t, r.WriteGridInteger(fid, zid, mesh.Cell, "Roughness", []int32{1, 2}))
	err = r.WriteGridReal(fid, zid, mesh.Node, "Elevation", []float64{1, 2, 3})
	assert.ErrorIs(t, err, mesh.ErrSizeMismatch)
	assert.Equal(t, -5, ErrorCode(err))
	require.NoError(t, r.Close(fid))

	fid, err = r.Open(context.Background(), path, mesh.ModeRead)
	require.NoError(t, err)
	defer r.Close(fid)

	isize, jsize, err := r.ReadGrid2dStrSize(fid, zid)
	require.NoError(t, err)
	assert.Equal(t, 3, isize)
	assert.Equal(t, 2, jsize)

	x, y, err := r.ReadGrid2dCoords(fid, zid)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 0, 1, 2}, x)
	assert.Equal(t, []float64{0, 0, 0, 1, 1, 1}, y)

	_, _, _, err = r.ReadGrid3dCoords(fid, zid)
	assert.ErrorIs(t, err, mesh.ErrInvalidDimension)
	_, _, _, err = r.ReadGrid3dStrSize(fid, zid)
	assert.ErrorIs(t, err, mesh.ErrInvalidDimension)

	n, err := r.ReadCount(fid, zid, mesh.IFace)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	names, err := r.ReadGridAttributeNames(fid, zid, mesh.Node)
	require.NoError(t, err)
	assert.Equal(t, []string{"Elevation"}, names)

	rough, err := r.ReadGridInteger(fid, zid, mesh.Cell, "Roughness")
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, rough)

	_, err = r.ReadZoneInfo(fid, 9)
	assert.ErrorIs(t, err, mesh.ErrInvalidZone)

	err = r.WriteGridReal(fid, zid, mesh.Cell, "Depth", []float64{0, 0})
	assert.ErrorIs(t, err, mesh.ErrStorageFailure)
	assert.ErrorIs(t, err, store.ErrReadOnly)
	assert.Equal(t, -8, ErrorCode(err))
}

func TestRegistry_NamedZones(t *testing.T) {
	r := NewRegistry()
	fid, _ := createFile(t, r)
	defer r.Close(fid)

	x := []float64{0, 1, 2}
	zid, err := r.WriteGrid1dCoords(fid, 3, x, Named("Channel"))
	require.NoError(t, err)
	_, err = r.WriteGrid1dCoords(fid, 3, x, Named("Channel"))
	assert.ErrorIs(t, err, mesh.ErrDuplicateName)

	other, err := r.WriteGrid1dCoords(fid, 3, x)
	require.NoError(t, err)

	infos, err := r.ReadZoneInfos(fid)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, ZoneInfo{ID: zid, Dim: 1, Name: "Channel", Type: "Structured", Size: []int{3, 2}, NodeCount: 3, CellCount: 2}, infos[0])
	assert.Equal(t, other, infos[1].ID)
	assert.Equal(t, "Grid_001", infos[1].Name)
}

func TestRegistry_Unstructured(t *testing.T) {
	r := NewRegistry()
	fid, _ := createFile(t, r)
	defer r.Close(fid)

	x := []float64{0, 1, 0, 1}
	y := []float64{0, 0, 1, 1}

	_, err := r.WriteGrid2dTriangles(fid, x, y, []int32{0, 1, 2, 1, 2})
	assert.ErrorIs(t, err, mesh.ErrSizeMismatch)
	ids, err := r.ReadZoneIDs(fid)
	require.NoError(t, err)
	assert.Empty(t, ids)

	tri, err := r.WriteGrid2dTriangles(fid, x, y, []int32{0, 1, 2, 1, 2, 3})
	require.NoError(t, err)

	ct, err := r.ReadGridCellType(fid, tri)
	require.NoError(t, err)
	assert.Equal(t, mesh.Triangle, ct)
	n, err := r.ReadTriangleElementsSize(fid, tri)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	idx, err := r.ReadTriangleElements(fid, tri)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 2, 1, 2, 3}, idx)

	_, err = r.ReadCount(fid, tri, mesh.JFace)
	assert.ErrorIs(t, err, mesh.ErrInvalidGridType)
	_, _, err = r.ReadGrid2dStrSize(fid, tri)
	assert.ErrorIs(t, err, mesh.ErrInvalidGridType)

	lines, err := r.WriteGrid2dLines(fid, x, y, []int32{0, 1, 1, 3})
	require.NoError(t, err)
	ln, err := r.ReadLineElementsSize(fid, lines)
	require.NoError(t, err)
	assert.Equal(t, 2, ln)

	l3, err := r.WriteGrid3dLines(fid, []float64{0, 1}, []float64{0, 0}, []float64{0, 5}, []int32{0, 1})
	require.NoError(t, err)
	seg, err := r.ReadLineElements(fid, l3)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1}, seg)
	z, err := r.ReadGridCoords(fid, l3, mesh.AxisZ)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 5}, z)
}

func TestRegistry_CopyGrid(t *testing.T) {
	r := NewRegistry()
	src, _ := createFile(t, r)
	defer r.Close(src)
	dst, _ := createFile(t, r)
	defer r.Close(dst)

	zid, err := r.WriteGrid2dCoords(src, 2, 2, []float64{0, 1, 0, 1}, []float64{0, 0, 1, 1}, Named("Lake"))
	require.NoError(t, err)

	copied, err := r.CopyGrid(src, dst, zid)
	require.NoError(t, err)
	info, err := r.ReadZoneInfo(dst, copied)
	require.NoError(t, err)
	assert.Equal(t, "Lake", info.Name)

	_, err = r.CopyGrid(src, dst, zid)
	assert.ErrorIs(t, err, mesh.ErrDuplicateName)
	_, err = r.CopyGrid(src, src, zid)
	assert.ErrorIs(t, err, mesh.ErrDuplicateName)
	_, err = r.CopyGrid(src, dst, 42)
	assert.ErrorIs(t, err, mesh.ErrInvalidZone)
}

func TestRegistry_Functional(t *testing.T) {
	r := NewRegistry()
	fid, _ := createFile(t, r)
	defer r.Close(fid)

	zid, err := r.WriteGrid1dCoords(fid, 2, []float64{0, 1})
	require.NoError(t, err)

	require.NoError(t, r.WriteGridFunctionalDimensionReal(fid, zid, mesh.Node, "Inflow", mesh.TimeDimension, []float64{0, 3600}))
	require.NoError(t, r.WriteGridFunctionalReal(fid, zid, mesh.Node, "Inflow", mesh.TimeDimension, 2, []float64{5, 6}))
	require.NoError(t, r.WriteGridFunctionalDimensionInteger(fid, zid, mesh.Cell, "Gate", "Level", []int32{1, 2, 3}))
	require.NoError(t, r.WriteGridFunctionalInteger(fid, zid, mesh.Cell, "Gate", "Level", 1, []int32{7}))

	n, err := r.ReadGridFunctionalTimeSize(fid, zid, mesh.Node, "Inflow")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	times, err := r.ReadGridFunctionalTime(fid, zid, mesh.Node, "Inflow")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 3600}, times)
	dim, err := r.ReadGridFunctionalDimensionReal(fid, zid, mesh.Node, "Inflow", mesh.TimeDimension)
	require.NoError(t, err)
	assert.Equal(t, times, dim)
	v, err := r.ReadGridFunctionalReal(fid, zid, mesh.Node, "Inflow", 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6}, v)

	size, err := r.ReadGridFunctionalDimensionSize(fid, zid, mesh.Cell, "Gate", "Level")
	require.NoError(t, err)
	assert.Equal(t, 3, size)
	levels, err := r.ReadGridFunctionalDimensionInteger(fid, zid, mesh.Cell, "Gate", "Level")
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, levels)
	gate, err := r.ReadGridFunctionalInteger(fid, zid, mesh.Cell, "Gate", 1)
	require.NoError(t, err)
	assert.Equal(t, []int32{7}, gate)

	_, err = r.ReadGridFunctionalReal(fid, zid, mesh.Node, "Inflow", 1)
	assert.ErrorIs(t, err, mesh.ErrNotFound)
}

func TestRegistry_ConcurrentReaders(t *testing.T) {
	r := NewRegistry()
	fid, _ := createFile(t, r)
	defer r.Close(fid)

	zid, err := r.WriteGrid2dCoords(fid, 2, 2, []float64{0, 1, 0, 1}, []float64{0, 0, 1, 1})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := r.ReadGrid2dCoords(fid, zid); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestRegistry_Metrics(t *testing.T) {
	m := metrics.NewMetrics()
	r := NewRegistry(WithMetrics(m))
	fid, _ := createFile(t, r)

	_, err := r.WriteGrid1dCoords(fid, 2, []float64{0, 1})
	require.NoError(t, err)
	_, err = r.ReadZoneInfo(fid, 7)
	require.Error(t, err)

	assert.Equal(t, 1.0, gauge(t, m, "gridstore_files_open"))
	require.NoError(t, r.Close(fid))
	assert.Equal(t, 0.0, gauge(t, m, "gridstore_files_open"))

	assert.Equal(t, 1.0, counter(t, m, "gridstore_api_calls_total", map[string]string{"op": "read zone info", "status": "error"}))
	assert.Equal(t, 1.0, counter(t, m, "gridstore_api_calls_total", map[string]string{"op": "write grid 1d coords", "status": "success"}))
	assert.Greater(t, counter(t, m, "gridstore_backend_operations_total", map[string]string{"operation": "put", "status": "success"}), 0.0)
}

func gauge(t *testing.T, m *metrics.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func counter(t *testing.T, m *metrics.Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	next:
		for _, metric := range f.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, 0, ErrorCode(nil))
	assert.Equal(t, -6, ErrorCode(mesh.ErrNotFound))
	assert.Equal(t, -7, ErrorCode(mesh.ErrStepOutOfRange))
	assert.Equal(t, -9, ErrorCode(mesh.ErrDuplicateName))
	assert.Equal(t, -8, ErrorCode(io.ErrUnexpectedEOF))
}
