package mesh

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ssargent/gridstore/pkg/codec"
	"github.com/ssargent/gridstore/pkg/store"
)

// Record and group names of the persisted layout
const (
	zoneTypeName       = "ZoneType"
	zoneSizeName       = "ZoneSize"
	coordinatesGroup   = "GridCoordinates"
	elementsGroup      = "Elements"
	cellTypeName       = "CellType"
	connectivityName   = "Connectivity"
	iterativeGroup     = "Iterative"
	timeValuesName     = "TimeValues"
	particleImageGroup = "ParticleGroupImage"

	basePrefix     = "Base"
	solutionPrefix = "Solution"
	defaultPrefix  = "Grid_"
)

// Particle group record suffixes, written in this order
const (
	SuffixCoordinateX = "_coordinateX"
	SuffixCoordinateY = "_coordinateY"
	SuffixSize        = "_size"
	SuffixAngle       = "_angle"
)

// TimeDimension is the conventional functional dimension for time series
const TimeDimension = "Time"

// BaseGroupName returns the group holding zones of one dimensionality
func BaseGroupName(dim int) string {
	return fmt.Sprintf("%s%dD", basePrefix, dim)
}

// ParseBaseGroupName is the inverse of BaseGroupName
func ParseBaseGroupName(name string) (int, bool) {
	if len(name) != len(basePrefix)+2 || !strings.HasPrefix(name, basePrefix) || !strings.HasSuffix(name, "D") {
		return 0, false
	}
	dim := int(name[len(basePrefix)] - '0')
	if dim < 1 || dim > 3 {
		return 0, false
	}
	return dim, true
}

// DefaultZoneName formats the default name for counter value n
func DefaultZoneName(n int) string {
	return fmt.Sprintf("%s%03d", defaultPrefix, n)
}

// ParseDefaultZoneName returns the counter value encoded in a default name
func ParseDefaultZoneName(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, defaultPrefix)
	if !ok || len(rest) < 3 {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// SolutionGroupName returns the per-zone group of a 1-based step
func SolutionGroupName(step int) string {
	return solutionPrefix + strconv.Itoa(step)
}

// ParseSolutionGroupName is the inverse of SolutionGroupName
func ParseSolutionGroupName(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, solutionPrefix)
	if !ok {
		return 0, false
	}
	step, err := strconv.Atoi(rest)
	if err != nil || step < 1 {
		return 0, false
	}
	return step, true
}

// CoordinateName returns the coordinate array of an axis
func CoordinateName(axis Axis) string {
	return "Coordinate" + axis.String()
}

// DomainGroupName returns the attribute group of a domain
func DomainGroupName(d Domain) string {
	return d.String() + "Attributes"
}

// FunctionalDimensionName is the record holding the values of a field's
// auxiliary dimension
func FunctionalDimensionName(field, dimName string) string {
	return field + "_" + dimName
}

// FunctionalValueName is the record holding a field's data at one 1-based
// dimension index
func FunctionalValueName(field, dimName string, index int) string {
	return FunctionalDimensionName(field, dimName) + "_" + strconv.Itoa(index)
}

// ParticleRecordName joins a group name and a particle suffix
func ParticleRecordName(group, suffix string) string {
	return group + suffix
}

// ParticleGroupNames recovers group names from the records of one particle
// image by stripping the coordinateX suffix. The result is sorted. A bare
// suffix record is skipped since the writer never produces an unnamed group.
func ParticleGroupNames(records []string) []string {
	names := make([]string, 0)
	for _, r := range records {
		if g, ok := strings.CutSuffix(r, SuffixCoordinateX); ok && g != "" {
			names = append(names, g)
		}
	}
	sort.Strings(names)
	return names
}

// Roles of attribute records, kept in the array header tag. Records
// written by the plain field calls carry rolePlain.
const (
	rolePlain codec.Tag = iota
	roleFunctionalDimension
	roleFunctionalValue
)

// functionalDimensions returns the dimension records of field that carry a
// value record for index
func functionalDimensions(records []store.NodeInfo, field string, index int) []string {
	values := make(map[string]bool)
	for _, r := range records {
		if !r.IsGroup && r.Tag == roleFunctionalValue {
			values[r.Name] = true
		}
	}
	suffix := "_" + strconv.Itoa(index)
	prefix := field + "_"

	var dims []string
	for _, r := range records {
		if r.IsGroup || r.Tag != roleFunctionalDimension {
			continue
		}
		if !strings.HasPrefix(r.Name, prefix) || len(r.Name) == len(prefix) {
			continue
		}
		if values[r.Name+suffix] {
			dims = append(dims, r.Name)
		}
	}
	return dims
}

// plainFieldNames keeps the arrays written as plain fields, sorted
func plainFieldNames(records []store.NodeInfo) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		if !r.IsGroup && r.Tag == rolePlain {
			names = append(names, r.Name)
		}
	}
	sort.Strings(names)
	return names
}
