package iric

import (
	"github.com/ssargent/gridstore/pkg/mesh"
)

// WriteSolParticleGroupImageGroupBegin starts buffering a particle group for
// a zone. The group lands in the step that is latest when it is ended.
// Points buffered by an earlier Begin that was never ended are dropped.
func (r *Registry) WriteSolParticleGroupImageGroupBegin(fid FileID, zid int, group string) error {
	return r.do("write sol particle group image group begin", func() error {
		return r.withEntry(fid, func(e *entry) error {
			z, err := e.file.Zone(zid)
			if err != nil {
				return err
			}
			w, err := z.ParticleGroupImageSolution()
			if err != nil {
				return err
			}
			w.WriteBegin(group)
			e.writers[zid] = w
			return nil
		})
	})
}

// WriteSolParticleGroupImagePos2d appends one point to the group in progress
func (r *Registry) WriteSolParticleGroupImagePos2d(fid FileID, zid int, x, y, size, angle float64) error {
	return r.do("write sol particle group image pos2d", func() error {
		return r.withWriter(fid, zid, "write sol particle group image pos2d", func(w *mesh.ParticleGroupImageWriter) error {
			w.WritePos2d(x, y, size, angle)
			return nil
		})
	})
}

// WriteSolParticleGroupImageGroupEnd writes the buffered group. On failure
// the buffer is kept and End may be retried.
func (r *Registry) WriteSolParticleGroupImageGroupEnd(fid FileID, zid int) error {
	const op = "write sol particle group image group end"
	return r.do(op, func() error {
		return r.withEntry(fid, func(e *entry) error {
			w, ok := e.writers[zid]
			if !ok {
				return &mesh.Error{Code: mesh.NotFound, Op: op, Msg: "no particle group started"}
			}
			if err := w.WriteEnd(); err != nil {
				return err
			}
			delete(e.writers, zid)
			return nil
		})
	})
}

func (r *Registry) withWriter(fid FileID, zid int, op string, fn func(*mesh.ParticleGroupImageWriter) error) error {
	return r.withEntry(fid, func(e *entry) error {
		if _, err := e.file.Zone(zid); err != nil {
			return err
		}
		w, ok := e.writers[zid]
		if !ok {
			return &mesh.Error{Code: mesh.NotFound, Op: op, Msg: "no particle group started"}
		}
		return fn(w)
	})
}

func (r *Registry) withImage(op string, fid FileID, zid, step int, fn func(*mesh.ParticleGroupImageSolution) error) error {
	return r.zoneDo(op, fid, zid, func(z *mesh.Zone) error {
		s, err := z.Solution(step)
		if err != nil {
			return err
		}
		return fn(s.ParticleGroupImage())
	})
}

// ReadSolParticleGroupImageGroupNames lists the particle groups recorded for
// a zone at a step, sorted
func (r *Registry) ReadSolParticleGroupImageGroupNames(fid FileID, zid, step int) ([]string, error) {
	var names []string
	err := r.withImage("read sol particle group image group names", fid, zid, step, func(img *mesh.ParticleGroupImageSolution) error {
		var err error
		names, err = img.GroupNames()
		return err
	})
	return names, err
}

// ReadSolParticleGroupImageCount returns the number of points in a group
func (r *Registry) ReadSolParticleGroupImageCount(fid FileID, zid, step int, group string) (int, error) {
	var n int
	err := r.withImage("read sol particle group image count", fid, zid, step, func(img *mesh.ParticleGroupImageSolution) error {
		var err error
		n, err = img.Count(group)
		return err
	})
	return n, err
}

// ParticleGroup holds the four arrays of one particle group
type ParticleGroup struct {
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
	Size  []float64 `json:"size"`
	Angle []float64 `json:"angle"`
}

// ReadSolParticleGroupImagePos2d reads all points of a group
func (r *Registry) ReadSolParticleGroupImagePos2d(fid FileID, zid, step int, group string) (ParticleGroup, error) {
	var g ParticleGroup
	err := r.withImage("read sol particle group image pos2d", fid, zid, step, func(img *mesh.ParticleGroupImageSolution) error {
		var err error
		g.X, g.Y, g.Size, g.Angle, err = img.ReadPos2d(group)
		return err
	})
	return g, err
}
