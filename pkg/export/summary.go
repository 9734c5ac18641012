package export

import (
	"github.com/ssargent/gridstore/pkg/mesh"
	"gonum.org/v1/gonum/floats"
)

// Bounds is the extent of a zone along one axis
type Bounds struct {
	Axis string  `json:"axis"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// FieldStats summarizes one real field
type FieldStats struct {
	Domain string  `json:"domain"`
	Name   string  `json:"name"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Sum    float64 `json:"sum"`
}

// Summary describes a zone's extent and the range of its real grid fields
type Summary struct {
	Zone   string       `json:"zone"`
	Bounds []Bounds     `json:"bounds"`
	Fields []FieldStats `json:"fields"`
}

// Summarize computes the coordinate bounds and the statistics of every real
// grid field of z. Axes without coordinates and integer fields are skipped.
func Summarize(z *mesh.Zone) (Summary, error) {
	s := Summary{Zone: z.Name(), Bounds: []Bounds{}, Fields: []FieldStats{}}

	for axis := mesh.AxisX; int(axis) < z.Dim(); axis++ {
		values, err := z.GridCoordinates().Read(axis)
		if mesh.CodeOf(err) == mesh.NotFound {
			continue
		}
		if err != nil {
			return Summary{}, err
		}
		if len(values) == 0 {
			continue
		}
		s.Bounds = append(s.Bounds, Bounds{Axis: axis.String(), Min: floats.Min(values), Max: floats.Max(values)})
	}

	attrs := z.GridAttributes()
	for _, d := range mesh.Domains {
		if _, err := attrs.Count(d); err != nil {
			continue
		}
		names, err := attrs.Names(d)
		if err != nil {
			return Summary{}, err
		}
		for _, name := range names {
			values, err := attrs.ReadReal(d, name)
			if mesh.CodeOf(err) == mesh.SizeMismatch {
				continue
			}
			if err != nil {
				return Summary{}, err
			}
			if len(values) == 0 {
				continue
			}
			s.Fields = append(s.Fields, Stats(d, name, values))
		}
	}
	return s, nil
}

// Stats computes the statistics of a non-empty field
func Stats(d mesh.Domain, name string, values []float64) FieldStats {
	sum := floats.Sum(values)
	return FieldStats{
		Domain: d.String(),
		Name:   name,
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Mean:   sum / float64(len(values)),
		Sum:    sum,
	}
}
