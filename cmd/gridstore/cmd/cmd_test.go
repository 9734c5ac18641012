package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/ssargent/gridstore/pkg/config"
	"github.com/ssargent/gridstore/pkg/di"
	"github.com/ssargent/gridstore/pkg/export"
	"github.com/ssargent/gridstore/pkg/iric"
	"github.com/ssargent/gridstore/pkg/logger"
	"github.com/ssargent/gridstore/pkg/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// writeCase builds a case file with a 3x2 structured zone carrying an
// Elevation field and one solution step, then closes it
func writeCase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "river.gs")
	reg := iric.NewRegistry()
	fid, err := reg.Create(context.Background(), path)
	require.NoError(t, err)

	zid, err := reg.WriteGrid2dCoords(fid, 3, 2,
		[]float64{0, 1, 2, 0, 1, 2}, []float64{0, 0, 0, 1, 1, 1})
	require.NoError(t, err)
	require.NoError(t, reg.WriteGridReal(fid, zid, mesh.Node, "Elevation", []float64{5, 4, 3, 6, 5, 4}))
	require.NoError(t, reg.WriteGridInteger(fid, zid, mesh.Cell, "Material", []int32{1, 2}))
	_, err = reg.WriteSolTime(fid, 30)
	require.NoError(t, err)
	require.NoError(t, reg.WriteSolReal(fid, zid, mesh.Node, "Depth", []float64{1, 1, 1, 2, 2, 2}))
	require.NoError(t, reg.Close(fid))
	return path
}

func withContainer(t *testing.T) {
	t.Helper()
	container = di.NewContainer(nil)
	t.Cleanup(func() {
		_ = container.Registry().CloseAll()
		container = nil
	})
}

func TestZones(t *testing.T) {
	withContainer(t)
	path := writeCase(t)

	var out bytes.Buffer
	require.NoError(t, runZones(context.Background(), &out, path))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "BOUNDS")
	assert.Contains(t, lines[1], "Base2D")
	assert.Contains(t, lines[1], "Grid_001")
	assert.Contains(t, lines[1], "Structured")
	assert.Contains(t, lines[1], "[3 2 2 1]")
	assert.Contains(t, lines[1], "x[0,2] y[0,1]")
	assert.Equal(t, 0, container.Registry().Len())
}

func TestZones_MissingFile(t *testing.T) {
	withContainer(t)
	err := runZones(context.Background(), io.Discard, filepath.Join(t.TempDir(), "nope.gs"))
	require.Error(t, err)
	assert.ErrorIs(t, err, mesh.ErrNotFound)
}

func TestLs(t *testing.T) {
	withContainer(t)
	path := writeCase(t)

	var out bytes.Buffer
	require.NoError(t, runLs(context.Background(), &out, path, "/"))
	listing := out.String()
	assert.Contains(t, listing, "Base2D/\n")
	assert.Contains(t, listing, "    GridCoordinates/\n")
	assert.Contains(t, listing, "CoordinateX  float64[6]")
	assert.Contains(t, listing, "Material  int32[2]")
	assert.Contains(t, listing, "Solution1/")

	out.Reset()
	require.NoError(t, runLs(context.Background(), &out, path, "/Base2D/Grid_001/GridCoordinates"))
	assert.NotContains(t, out.String(), "Material")
	assert.Contains(t, out.String(), "CoordinateY")
}

func TestDump(t *testing.T) {
	withContainer(t)
	path := writeCase(t)

	var out bytes.Buffer
	require.NoError(t, runDump(context.Background(), &out, path, "/Base2D/Grid_001/GridCoordinates/CoordinateX"))
	assert.Equal(t, "0\n1\n2\n0\n1\n2\n", out.String())

	out.Reset()
	require.NoError(t, runDump(context.Background(), &out, path, "Base2D/Grid_001/CellAttributes/Material"))
	assert.Equal(t, "1\n2\n", out.String())

	assert.Error(t, runDump(context.Background(), io.Discard, path, "/Base2D/Grid_001"))
	assert.Error(t, runDump(context.Background(), io.Discard, path, "/Base2D/Grid_001/Missing"))
}

func TestExport(t *testing.T) {
	withContainer(t)
	path := writeCase(t)
	out := filepath.Join(t.TempDir(), "river.nc")

	require.NoError(t, runExport(context.Background(), path, 1, out, 1))

	fh, err := os.Open(out)
	require.NoError(t, err)
	defer fh.Close()
	nc, err := cdf.Open(fh)
	require.NoError(t, err)

	depth, err := export.ReadVariable(nc, export.VariableName(mesh.Node, "Depth"))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 2, 2, 2}, depth)
	assert.Equal(t, []float64{30}, nc.Header.GetAttribute("", "time"))
}

func TestExport_BadZoneRemovesOutput(t *testing.T) {
	withContainer(t)
	path := writeCase(t)
	out := filepath.Join(t.TempDir(), "river.nc")

	err := runExport(context.Background(), path, 5, out, 0)
	assert.ErrorIs(t, err, mesh.ErrInvalidZone)
	assert.NoFileExists(t, out)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "gridstore.yaml")

	require.NoError(t, initConfig(path, false))
	assert.FileExists(t, path)
	assert.Error(t, initConfig(path, false))
	require.NoError(t, initConfig(path, true))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridstore.yaml")
	require.NoError(t, config.SaveConfig(config.DefaultConfig(), path))

	t.Setenv("GRIDSTORE_STORAGE_BACKEND", "pebble")
	t.Setenv("GRIDSTORE_SERVER_PORT", "9100")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.BackendPebble, cfg.Storage.Backend)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Bind)

	t.Setenv("GRIDSTORE_STORAGE_BACKEND", "tape")
	_, err = loadConfig(path)
	assert.Error(t, err)
}

func TestRootCommand_Zones(t *testing.T) {
	path := writeCase(t)
	conf := filepath.Join(t.TempDir(), "gridstore.yaml")
	require.NoError(t, config.SaveConfig(config.DefaultConfig(), conf))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"zones", path, "--config", conf, "--log-level", "error"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		container = nil
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Grid_001")
}
