package mesh

import "fmt"

// ParticleGroupImageSolution reads the particle groups recorded for one zone
// at one step. Groups are found by scanning for the coordinateX suffix; no
// list of group names is stored.
type ParticleGroupImageSolution struct {
	zone *Zone
	step int
	path string
}

// Step returns the solution step the image belongs to
func (p *ParticleGroupImageSolution) Step() int { return p.step }

// GroupNames returns the recorded group names, sorted
func (p *ParticleGroupImageSolution) GroupNames() ([]string, error) {
	records, err := p.zone.File().children("read particle group names", p.path)
	if CodeOf(err) == NotFound {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return ParticleGroupNames(records), nil
}

// Count returns the number of points in a group
func (p *ParticleGroupImageSolution) Count(group string) (int, error) {
	return p.zone.File().arrayLength("read particle group count "+group, p.path, ParticleRecordName(group, SuffixCoordinateX))
}

func (p *ParticleGroupImageSolution) read(group, suffix string) ([]float64, error) {
	return p.zone.File().readFloat64s("read particle group "+group+suffix, p.path, ParticleRecordName(group, suffix))
}

func (p *ParticleGroupImageSolution) ReadCoordinatesX(group string) ([]float64, error) {
	return p.read(group, SuffixCoordinateX)
}

func (p *ParticleGroupImageSolution) ReadCoordinatesY(group string) ([]float64, error) {
	return p.read(group, SuffixCoordinateY)
}

func (p *ParticleGroupImageSolution) ReadSize(group string) ([]float64, error) {
	return p.read(group, SuffixSize)
}

func (p *ParticleGroupImageSolution) ReadAngle(group string) ([]float64, error) {
	return p.read(group, SuffixAngle)
}

// ReadPos2d reads all four arrays of a group and checks they agree in length
func (p *ParticleGroupImageSolution) ReadPos2d(group string) (x, y, size, angle []float64, err error) {
	if x, err = p.ReadCoordinatesX(group); err != nil {
		return nil, nil, nil, nil, err
	}
	if y, err = p.ReadCoordinatesY(group); err != nil {
		return nil, nil, nil, nil, err
	}
	if size, err = p.ReadSize(group); err != nil {
		return nil, nil, nil, nil, err
	}
	if angle, err = p.ReadAngle(group); err != nil {
		return nil, nil, nil, nil, err
	}
	if len(y) != len(x) || len(size) != len(x) || len(angle) != len(x) {
		return nil, nil, nil, nil, newError(SizeMismatch, "read particle group "+group,
			fmt.Sprintf("array lengths differ: %d %d %d %d", len(x), len(y), len(size), len(angle)))
	}
	return x, y, size, angle, nil
}

// ParticleGroupImageWriter buffers the points of one group in memory and
// writes them on WriteEnd to whatever step is latest at that time
type ParticleGroupImageWriter struct {
	zone  *Zone
	group string
	x     []float64
	y     []float64
	size  []float64
	angle []float64
}

// ParticleGroupImageSolution returns a particle writer for the zone. At
// least one solution step must exist.
func (z *Zone) ParticleGroupImageSolution() (*ParticleGroupImageWriter, error) {
	if _, err := z.CurrentSolution(); err != nil {
		return nil, err
	}
	return &ParticleGroupImageWriter{zone: z}, nil
}

// Step returns the solution step WriteEnd would write to now
func (w *ParticleGroupImageWriter) Step() int { return w.zone.File().StepCount() }

// WriteBegin drops any uncommitted points and starts a new group
func (w *ParticleGroupImageWriter) WriteBegin(group string) {
	w.group = group
	w.x = w.x[:0]
	w.y = w.y[:0]
	w.size = w.size[:0]
	w.angle = w.angle[:0]
}

// WritePos2d appends one point
func (w *ParticleGroupImageWriter) WritePos2d(x, y, size, angle float64) {
	w.x = append(w.x, x)
	w.y = append(w.y, y)
	w.size = append(w.size, size)
	w.angle = append(w.angle, angle)
}

// Pending returns the number of buffered points
func (w *ParticleGroupImageWriter) Pending() int { return len(w.x) }

// WriteEnd writes coordinateX, coordinateY, size and angle in that order.
// The first failure is returned and the remaining arrays are not written;
// nothing already written is rolled back. On success the writer is reset.
func (w *ParticleGroupImageWriter) WriteEnd() error {
	const op = "write particle group"
	if w.group == "" {
		return newError(NotFound, op, "no group started")
	}

	s, err := w.zone.CurrentSolution()
	if err != nil {
		return err
	}
	image := s.ParticleGroupImage()
	g, err := w.zone.File().requireGroup(op, image.path)
	if err != nil {
		return err
	}
	defer g.Close()

	records := []struct {
		suffix string
		values []float64
	}{
		{SuffixCoordinateX, w.x},
		{SuffixCoordinateY, w.y},
		{SuffixSize, w.size},
		{SuffixAngle, w.angle},
	}
	for _, r := range records {
		if err := g.WriteFloat64s(ParticleRecordName(w.group, r.suffix), r.values); err != nil {
			return storageError(op+" "+w.group, err)
		}
	}

	w.WriteBegin("")
	return nil
}
