package mesh

import (
	"sort"
	"testing"

	"github.com/ssargent/gridstore/pkg/store"
	"github.com/stretchr/testify/assert"
)

func TestBaseGroupName(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		got, ok := ParseBaseGroupName(BaseGroupName(dim))
		assert.True(t, ok)
		assert.Equal(t, dim, got)
	}
	assert.Equal(t, "Base2D", BaseGroupName(2))

	for _, bad := range []string{"Base4D", "Base2", "BaseXD", "Iterative", "Base22D"} {
		_, ok := ParseBaseGroupName(bad)
		assert.False(t, ok, bad)
	}
}

func TestDefaultZoneName(t *testing.T) {
	assert.Equal(t, "Grid_001", DefaultZoneName(1))
	assert.Equal(t, "Grid_1234", DefaultZoneName(1234))

	n, ok := ParseDefaultZoneName("Grid_042")
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	for _, bad := range []string{"Grid_", "Grid_1", "grid_001", "Grid_abc", "River"} {
		_, ok := ParseDefaultZoneName(bad)
		assert.False(t, ok, bad)
	}
}

func TestSolutionGroupName(t *testing.T) {
	assert.Equal(t, "Solution3", SolutionGroupName(3))
	step, ok := ParseSolutionGroupName("Solution12")
	assert.True(t, ok)
	assert.Equal(t, 12, step)
	_, ok = ParseSolutionGroupName("Solution0")
	assert.False(t, ok)
}

func TestFunctionalNames(t *testing.T) {
	assert.Equal(t, "Depth_Time", FunctionalDimensionName("Depth", "Time"))
	assert.Equal(t, "Depth_Time_3", FunctionalValueName("Depth", "Time", 3))
	assert.Equal(t, "CoordinateY", CoordinateName(AxisY))
	assert.Equal(t, "IFaceAttributes", DomainGroupName(IFace))
}

func TestParticleGroupNames(t *testing.T) {
	records := []string{
		"tracers_angle", "tracers_coordinateX", "tracers_coordinateY", "tracers_size",
		"markers_coordinateX", "markers_size",
		"_coordinateX",
	}
	assert.Equal(t, []string{"markers", "tracers"}, ParticleGroupNames(records))
	assert.Empty(t, ParticleGroupNames(nil))
}

func roles(plain []string, dims []string, values []string) []store.NodeInfo {
	var infos []store.NodeInfo
	for _, n := range plain {
		infos = append(infos, store.NodeInfo{Name: n, Tag: rolePlain})
	}
	for _, n := range dims {
		infos = append(infos, store.NodeInfo{Name: n, Tag: roleFunctionalDimension})
	}
	for _, n := range values {
		infos = append(infos, store.NodeInfo{Name: n, Tag: roleFunctionalValue})
	}
	return infos
}

func TestPlainFieldNames(t *testing.T) {
	records := roles(
		[]string{"Layer_7", "Depth", "Elevation_max", "Layer"},
		[]string{"Rain_Time", "Snow_Time"},
		[]string{"Rain_Time_1", "Rain_Time_2"},
	)
	records = append(records, store.NodeInfo{Name: "Nested", IsGroup: true})
	assert.Equal(t, []string{"Depth", "Elevation_max", "Layer", "Layer_7"}, plainFieldNames(records))
	assert.Empty(t, plainFieldNames(nil))
}

func TestFunctionalDimensions(t *testing.T) {
	records := roles(
		[]string{"Rain_Wind", "Rain_Wind_1"},
		[]string{"Rain_Time", "Rain_Depth"},
		[]string{"Rain_Time_1", "Rain_Time_2", "Rain_Depth_1"},
	)
	assert.Equal(t, []string{"Rain_Depth", "Rain_Time"}, sorted(functionalDimensions(records, "Rain", 1)))
	assert.Equal(t, []string{"Rain_Time"}, functionalDimensions(records, "Rain", 2))
	assert.Empty(t, functionalDimensions(records, "Rain", 3))
	assert.Empty(t, functionalDimensions(records, "Snow", 1))
}

func sorted(v []string) []string {
	out := append([]string(nil), v...)
	sort.Strings(out)
	return out
}
