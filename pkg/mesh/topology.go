package mesh

import (
	"fmt"
	"strings"
)

// ZoneType is the topology kind of a zone, persisted as int32
type ZoneType int32

const (
	Structured   ZoneType = 0
	Unstructured ZoneType = 1
)

func (t ZoneType) String() string {
	switch t {
	case Structured:
		return "Structured"
	case Unstructured:
		return "Unstructured"
	default:
		return fmt.Sprintf("ZoneType(%d)", int32(t))
	}
}

// Domain is the entity an attribute array is associated with
type Domain int

const (
	Node Domain = iota
	Cell
	IFace
	JFace
	KFace
)

// Domains lists every domain in layout order
var Domains = []Domain{Node, Cell, IFace, JFace, KFace}

func (d Domain) String() string {
	switch d {
	case Node:
		return "Node"
	case Cell:
		return "Cell"
	case IFace:
		return "IFace"
	case JFace:
		return "JFace"
	case KFace:
		return "KFace"
	default:
		return fmt.Sprintf("Domain(%d)", int(d))
	}
}

// ParseDomain accepts a domain name in any case
func ParseDomain(s string) (Domain, error) {
	for _, d := range Domains {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, newError(InvalidDimension, "parse domain", fmt.Sprintf("unknown domain %q", s))
}

// Axis is a coordinate axis
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis accepts x, y or z in any case
func ParseAxis(s string) (Axis, error) {
	switch strings.ToUpper(s) {
	case "X":
		return AxisX, nil
	case "Y":
		return AxisY, nil
	case "Z":
		return AxisZ, nil
	}
	return 0, newError(InvalidDimension, "parse axis", fmt.Sprintf("unknown axis %q", s))
}

// CellType is the element kind of an unstructured zone, persisted as int32
type CellType int32

const (
	Triangle CellType = 1
	Line     CellType = 2
)

func (c CellType) String() string {
	switch c {
	case Triangle:
		return "Triangle"
	case Line:
		return "Line"
	default:
		return fmt.Sprintf("CellType(%d)", int32(c))
	}
}

// VerticesPerElement is 3 for triangles and 2 for lines
func (c CellType) VerticesPerElement() int {
	switch c {
	case Triangle:
		return 3
	case Line:
		return 2
	default:
		return 0
	}
}

// Topology resolves a zone's size vector into counts. For structured zones
// Size holds the node extents followed by the cell extents, one per axis.
// For unstructured zones it holds the node count and the element count.
type Topology struct {
	Dim  int
	Type ZoneType
	Size []int
}

// NewTopology validates and copies a size vector
func NewTopology(dim int, typ ZoneType, size []int) (Topology, error) {
	t := Topology{Dim: dim, Type: typ, Size: append([]int(nil), size...)}
	if err := t.Validate(); err != nil {
		return Topology{}, err
	}
	return t, nil
}

// Validate checks the size vector length and signs
func (t Topology) Validate() error {
	const op = "validate size"
	if t.Dim < 1 || t.Dim > 3 {
		return newError(InvalidDimension, op, fmt.Sprintf("dimension %d not in 1..3", t.Dim))
	}

	var want int
	switch t.Type {
	case Structured:
		want = 2 * t.Dim
	case Unstructured:
		want = 2
	default:
		return newError(InvalidGridType, op, t.Type.String())
	}
	if len(t.Size) != want {
		return newError(InvalidDimension, op,
			fmt.Sprintf("%s %dD zone needs %d size values, got %d", t.Type, t.Dim, want, len(t.Size)))
	}
	for i, v := range t.Size {
		if v < 0 {
			return newError(SizeMismatch, op, fmt.Sprintf("size[%d] is negative (%d)", i, v))
		}
	}
	return nil
}

// NodeCount is the product of the node extents, or the point count of an
// unstructured zone
func (t Topology) NodeCount() int {
	if t.Type == Unstructured {
		return t.Size[0]
	}
	return product(t.Size[:t.Dim])
}

// CellCount is the product of the cell extents, or the element count of an
// unstructured zone
func (t Topology) CellCount() int {
	if t.Type == Unstructured {
		return t.Size[1]
	}
	return product(t.Size[t.Dim : 2*t.Dim])
}

// ElementCount is the element count of an unstructured zone
func (t Topology) ElementCount() (int, error) {
	if t.Type != Unstructured {
		return 0, newError(InvalidGridType, "element count", "zone is structured")
	}
	return t.Size[1], nil
}

// faceCount counts faces normal to axis: the node extent along axis times the
// cell extents along every other axis
func (t Topology) faceCount(op string, axis int) (int, error) {
	if t.Type != Structured {
		return 0, newError(InvalidGridType, op, "zone is unstructured")
	}
	if axis >= t.Dim {
		return 0, newError(InvalidDimension, op, fmt.Sprintf("%dD zone has no axis %d", t.Dim, axis+1))
	}
	n := t.Size[axis]
	for other := 0; other < t.Dim; other++ {
		if other != axis {
			n *= t.Size[t.Dim+other]
		}
	}
	return n, nil
}

func (t Topology) IFaceCount() (int, error) { return t.faceCount("iface count", 0) }
func (t Topology) JFaceCount() (int, error) { return t.faceCount("jface count", 1) }
func (t Topology) KFaceCount() (int, error) { return t.faceCount("kface count", 2) }

// Count returns the number of entities in a domain
func (t Topology) Count(d Domain) (int, error) {
	switch d {
	case Node:
		return t.NodeCount(), nil
	case Cell:
		return t.CellCount(), nil
	case IFace:
		return t.IFaceCount()
	case JFace:
		return t.JFaceCount()
	case KFace:
		return t.KFaceCount()
	default:
		return 0, newError(InvalidDimension, "count", d.String())
	}
}

// structuredSize returns the node extents of a structured zone of the
// expected dimensionality. The grid type is checked before the dimension.
func (t Topology) structuredSize(op string, dim int) ([]int, error) {
	if t.Type != Structured {
		return nil, newError(InvalidGridType, op, "zone is unstructured")
	}
	if t.Dim != dim {
		return nil, newError(InvalidDimension, op, fmt.Sprintf("zone is %dD", t.Dim))
	}
	return t.Size[:dim], nil
}

func (t Topology) StructuredSize1D() (int, error) {
	s, err := t.structuredSize("structured size 1d", 1)
	if err != nil {
		return 0, err
	}
	return s[0], nil
}

func (t Topology) StructuredSize2D() (int, int, error) {
	s, err := t.structuredSize("structured size 2d", 2)
	if err != nil {
		return 0, 0, err
	}
	return s[0], s[1], nil
}

func (t Topology) StructuredSize3D() (int, int, int, error) {
	s, err := t.structuredSize("structured size 3d", 3)
	if err != nil {
		return 0, 0, 0, err
	}
	return s[0], s[1], s[2], nil
}

// ElementValueCount is the length of a flat connectivity table
func ElementValueCount(ct CellType, elementCount int) int {
	return ct.VerticesPerElement() * elementCount
}

// ValidateElements checks a connectivity table length. Index values are not
// range checked.
func ValidateElements(ct CellType, elementCount int, indices []int32) error {
	if ct.VerticesPerElement() == 0 {
		return newError(InvalidGridType, "validate elements", ct.String())
	}
	want := ElementValueCount(ct, elementCount)
	if len(indices) != want {
		return newError(SizeMismatch, "validate elements",
			fmt.Sprintf("%d %s elements need %d indices, got %d", elementCount, ct, want, len(indices)))
	}
	return nil
}

// StructuredSize builds the size vector of a structured zone from its node
// extents, with one cell fewer than nodes per axis
func StructuredSize(nodes ...int) []int {
	size := make([]int, 2*len(nodes))
	for i, n := range nodes {
		size[i] = n
		if n > 0 {
			size[len(nodes)+i] = n - 1
		}
	}
	return size
}

func product(v []int) int {
	p := 1
	for _, x := range v {
		p *= x
	}
	return p
}
