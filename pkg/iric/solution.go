package iric

import (
	"github.com/ssargent/gridstore/pkg/mesh"
)

// Grid attributes

func (r *Registry) WriteGridReal(fid FileID, zid int, d mesh.Domain, name string, values []float64) error {
	return r.zoneDo("write grid real", fid, zid, func(z *mesh.Zone) error {
		return z.GridAttributes().WriteReal(d, name, values)
	})
}

func (r *Registry) WriteGridInteger(fid FileID, zid int, d mesh.Domain, name string, values []int32) error {
	return r.zoneDo("write grid integer", fid, zid, func(z *mesh.Zone) error {
		return z.GridAttributes().WriteInteger(d, name, values)
	})
}

func (r *Registry) ReadGridReal(fid FileID, zid int, d mesh.Domain, name string) ([]float64, error) {
	return zone(r, "read grid real", fid, zid, func(z *mesh.Zone) ([]float64, error) {
		return z.GridAttributes().ReadReal(d, name)
	})
}

func (r *Registry) ReadGridInteger(fid FileID, zid int, d mesh.Domain, name string) ([]int32, error) {
	return zone(r, "read grid integer", fid, zid, func(z *mesh.Zone) ([]int32, error) {
		return z.GridAttributes().ReadInteger(d, name)
	})
}

// ReadGridAttributeNames lists the plain fields of a domain
func (r *Registry) ReadGridAttributeNames(fid FileID, zid int, d mesh.Domain) ([]string, error) {
	return zone(r, "read grid attribute names", fid, zid, func(z *mesh.Zone) ([]string, error) {
		return z.GridAttributes().Names(d)
	})
}

// Functional grid attributes

func (r *Registry) WriteGridFunctionalDimensionReal(fid FileID, zid int, d mesh.Domain, field, dim string, values []float64) error {
	return r.zoneDo("write grid functional dimension real", fid, zid, func(z *mesh.Zone) error {
		return z.GridAttributes().WriteFunctionalDimensionReal(d, field, dim, values)
	})
}

func (r *Registry) WriteGridFunctionalDimensionInteger(fid FileID, zid int, d mesh.Domain, field, dim string, values []int32) error {
	return r.zoneDo("write grid functional dimension integer", fid, zid, func(z *mesh.Zone) error {
		return z.GridAttributes().WriteFunctionalDimensionInteger(d, field, dim, values)
	})
}

func (r *Registry) WriteGridFunctionalReal(fid FileID, zid int, d mesh.Domain, field, dim string, index int, values []float64) error {
	return r.zoneDo("write grid functional real", fid, zid, func(z *mesh.Zone) error {
		return z.GridAttributes().WriteFunctionalReal(d, field, dim, index, values)
	})
}

func (r *Registry) WriteGridFunctionalInteger(fid FileID, zid int, d mesh.Domain, field, dim string, index int, values []int32) error {
	return r.zoneDo("write grid functional integer", fid, zid, func(z *mesh.Zone) error {
		return z.GridAttributes().WriteFunctionalInteger(d, field, dim, index, values)
	})
}

func (r *Registry) ReadGridFunctionalDimensionSize(fid FileID, zid int, d mesh.Domain, field, dim string) (int, error) {
	return zone(r, "read grid functional dimension size", fid, zid, func(z *mesh.Zone) (int, error) {
		return z.GridAttributes().ReadFunctionalDimensionSize(d, field, dim)
	})
}

func (r *Registry) ReadGridFunctionalDimensionReal(fid FileID, zid int, d mesh.Domain, field, dim string) ([]float64, error) {
	return zone(r, "read grid functional dimension real", fid, zid, func(z *mesh.Zone) ([]float64, error) {
		return z.GridAttributes().ReadFunctionalDimensionReal(d, field, dim)
	})
}

func (r *Registry) ReadGridFunctionalDimensionInteger(fid FileID, zid int, d mesh.Domain, field, dim string) ([]int32, error) {
	return zone(r, "read grid functional dimension integer", fid, zid, func(z *mesh.Zone) ([]int32, error) {
		return z.GridAttributes().ReadFunctionalDimensionInteger(d, field, dim)
	})
}

func (r *Registry) ReadGridFunctionalTimeSize(fid FileID, zid int, d mesh.Domain, field string) (int, error) {
	return zone(r, "read grid functional time size", fid, zid, func(z *mesh.Zone) (int, error) {
		return z.GridAttributes().ReadFunctionalTimeSize(d, field)
	})
}

func (r *Registry) ReadGridFunctionalTime(fid FileID, zid int, d mesh.Domain, field string) ([]float64, error) {
	return zone(r, "read grid functional time", fid, zid, func(z *mesh.Zone) ([]float64, error) {
		return z.GridAttributes().ReadFunctionalTime(d, field)
	})
}

// ReadGridFunctionalReal reads a functional field at a 1-based index
func (r *Registry) ReadGridFunctionalReal(fid FileID, zid int, d mesh.Domain, field string, index int) ([]float64, error) {
	return zone(r, "read grid functional real", fid, zid, func(z *mesh.Zone) ([]float64, error) {
		return z.GridAttributes().ReadFunctionalReal(d, field, index)
	})
}

func (r *Registry) ReadGridFunctionalInteger(fid FileID, zid int, d mesh.Domain, field string, index int) ([]int32, error) {
	return zone(r, "read grid functional integer", fid, zid, func(z *mesh.Zone) ([]int32, error) {
		return z.GridAttributes().ReadFunctionalInteger(d, field, index)
	})
}

// Solution steps

// WriteSolTime starts a new solution step and returns its number
func (r *Registry) WriteSolTime(fid FileID, t float64) (int, error) {
	return call(r, "write sol time", func() (int, error) {
		var step int
		err := r.With(fid, func(f *mesh.File) error {
			var err error
			step, err = f.WriteSolTime(t)
			return err
		})
		return step, err
	})
}

// ReadSolCount returns the number of solution steps
func (r *Registry) ReadSolCount(fid FileID) (int, error) {
	return call(r, "read sol count", func() (int, error) {
		var n int
		err := r.With(fid, func(f *mesh.File) error {
			n = f.StepCount()
			return nil
		})
		return n, err
	})
}

// ReadSolTime returns the time of a 1-based step
func (r *Registry) ReadSolTime(fid FileID, step int) (float64, error) {
	return call(r, "read sol time", func() (float64, error) {
		var t float64
		err := r.With(fid, func(f *mesh.File) error {
			var err error
			t, err = f.Time(step)
			return err
		})
		return t, err
	})
}

// ReadSolTimes returns every step time
func (r *Registry) ReadSolTimes(fid FileID) ([]float64, error) {
	return call(r, "read sol times", func() ([]float64, error) {
		var times []float64
		err := r.With(fid, func(f *mesh.File) error {
			times = f.Times()
			return nil
		})
		return times, err
	})
}

func (r *Registry) WriteSolReal(fid FileID, zid int, d mesh.Domain, name string, values []float64) error {
	return r.zoneDo("write sol real", fid, zid, func(z *mesh.Zone) error {
		s, err := z.CurrentSolution()
		if err != nil {
			return err
		}
		return s.Attributes().WriteReal(d, name, values)
	})
}

func (r *Registry) WriteSolInteger(fid FileID, zid int, d mesh.Domain, name string, values []int32) error {
	return r.zoneDo("write sol integer", fid, zid, func(z *mesh.Zone) error {
		s, err := z.CurrentSolution()
		if err != nil {
			return err
		}
		return s.Attributes().WriteInteger(d, name, values)
	})
}

func (r *Registry) ReadSolReal(fid FileID, zid, step int, d mesh.Domain, name string) ([]float64, error) {
	return zone(r, "read sol real", fid, zid, func(z *mesh.Zone) ([]float64, error) {
		s, err := z.Solution(step)
		if err != nil {
			return nil, err
		}
		return s.Attributes().ReadReal(d, name)
	})
}

func (r *Registry) ReadSolInteger(fid FileID, zid, step int, d mesh.Domain, name string) ([]int32, error) {
	return zone(r, "read sol integer", fid, zid, func(z *mesh.Zone) ([]int32, error) {
		s, err := z.Solution(step)
		if err != nil {
			return nil, err
		}
		return s.Attributes().ReadInteger(d, name)
	})
}

// ReadSolAttributeNames lists the fields of a domain at one step
func (r *Registry) ReadSolAttributeNames(fid FileID, zid, step int, d mesh.Domain) ([]string, error) {
	return zone(r, "read sol attribute names", fid, zid, func(z *mesh.Zone) ([]string, error) {
		s, err := z.Solution(step)
		if err != nil {
			return nil, err
		}
		return s.Attributes().Names(d)
	})
}

// CheckUpdate makes everything written so far durable. Solvers call it
// after each step.
func (r *Registry) CheckUpdate(fid FileID) error {
	return r.do("check update", func() error {
		return r.With(fid, func(f *mesh.File) error {
			return f.Flush()
		})
	})
}
