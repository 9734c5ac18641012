package mesh

import "fmt"

// GridCoordinates reads and writes the per-axis node coordinates of a zone
type GridCoordinates struct {
	zone *Zone
}

// GridCoordinates returns the coordinate accessor of the zone
func (z *Zone) GridCoordinates() *GridCoordinates {
	return &GridCoordinates{zone: z}
}

// Count returns how many values each axis holds
func (c *GridCoordinates) Count() int {
	return c.zone.NodeCount()
}

func (c *GridCoordinates) checkAxis(op string, axis Axis) error {
	if axis < AxisX || int(axis) >= c.zone.Dim() {
		return newError(InvalidDimension, op, fmt.Sprintf("%dD zone has no %s axis", c.zone.Dim(), axis))
	}
	return nil
}

// Write stores the coordinates of one axis. The length must equal the node
// count.
func (c *GridCoordinates) Write(axis Axis, values []float64) error {
	op := "write coordinates " + axis.String()
	if err := c.checkAxis(op, axis); err != nil {
		return err
	}
	if want := c.Count(); len(values) != want {
		return newError(SizeMismatch, op, fmt.Sprintf("got %d values, want %d", len(values), want))
	}
	return c.zone.File().writeFloat64s(op, c.zone.sub(coordinatesGroup), CoordinateName(axis), values)
}

// Read returns the coordinates of one axis
func (c *GridCoordinates) Read(axis Axis) ([]float64, error) {
	op := "read coordinates " + axis.String()
	if err := c.checkAxis(op, axis); err != nil {
		return nil, err
	}
	return c.zone.File().readFloat64s(op, c.zone.sub(coordinatesGroup), CoordinateName(axis))
}

func (c *GridCoordinates) WriteX(values []float64) error { return c.Write(AxisX, values) }
func (c *GridCoordinates) WriteY(values []float64) error { return c.Write(AxisY, values) }
func (c *GridCoordinates) WriteZ(values []float64) error { return c.Write(AxisZ, values) }

func (c *GridCoordinates) ReadX() ([]float64, error) { return c.Read(AxisX) }
func (c *GridCoordinates) ReadY() ([]float64, error) { return c.Read(AxisY) }
func (c *GridCoordinates) ReadZ() ([]float64, error) { return c.Read(AxisZ) }

// WriteAll writes x, then y, then z, one slice per axis of the zone. The
// first failure stops the sequence; axes already written stay written.
func (c *GridCoordinates) WriteAll(axes ...[]float64) error {
	if len(axes) != c.zone.Dim() {
		return newError(InvalidDimension, "write coordinates",
			fmt.Sprintf("%dD zone needs %d axes, got %d", c.zone.Dim(), c.zone.Dim(), len(axes)))
	}
	for i, values := range axes {
		if err := c.Write(Axis(i), values); err != nil {
			return err
		}
	}
	return nil
}
