package mesh

import (
	"path"
	"sort"
)

// SolutionStep is one zone's snapshot at a solution step
type SolutionStep struct {
	zone *Zone
	step int
	path string
}

// Solution returns the snapshot of a 1-based step
func (z *Zone) Solution(step int) (*SolutionStep, error) {
	if err := z.File().checkStep("solution", step); err != nil {
		return nil, err
	}
	return &SolutionStep{zone: z, step: step, path: z.sub(SolutionGroupName(step))}, nil
}

// CurrentSolution returns the snapshot of the latest step. Writers use it;
// with no step started it fails with StepOutOfRange.
func (z *Zone) CurrentSolution() (*SolutionStep, error) {
	return z.Solution(z.File().StepCount())
}

// Steps lists the steps that hold data for the zone, ascending
func (z *Zone) Steps() ([]int, error) {
	names, err := z.File().children("list solution steps", z.path)
	if err != nil {
		return nil, err
	}
	steps := make([]int, 0)
	for _, name := range names {
		if step, ok := ParseSolutionGroupName(name); ok {
			steps = append(steps, step)
		}
	}
	sort.Ints(steps)
	return steps, nil
}

func (s *SolutionStep) Step() int { return s.step }

// Time returns the time value of the step
func (s *SolutionStep) Time() float64 {
	t, _ := s.zone.File().Time(s.step)
	return t
}

// Attributes returns the field set of the snapshot
func (s *SolutionStep) Attributes() *GridAttributes {
	return &GridAttributes{zone: s.zone, root: s.path}
}

// ParticleGroupImage returns the particle image reader of the snapshot
func (s *SolutionStep) ParticleGroupImage() *ParticleGroupImageSolution {
	return &ParticleGroupImageSolution{zone: s.zone, step: s.step, path: path.Join(s.path, particleImageGroup)}
}
