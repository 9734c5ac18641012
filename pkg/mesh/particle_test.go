package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticleWriter_NeedsStep(t *testing.T) {
	f, _ := newTestFile(t)
	defer f.Close()
	z := newStructured2D(t, f, 2, 2)

	_, err := z.ParticleGroupImageSolution()
	assert.ErrorIs(t, err, ErrStepOutOfRange)
}

func TestParticleWriter_Markers(t *testing.T) {
	f, path := newTestFile(t)
	z := newStructured2D(t, f, 2, 2)

	_, err := f.WriteSolTime(0)
	require.NoError(t, err)
	_, err = f.WriteSolTime(10)
	require.NoError(t, err)

	w, err := z.ParticleGroupImageSolution()
	require.NoError(t, err)
	assert.Equal(t, 2, w.Step())

	assert.ErrorIs(t, w.WriteEnd(), ErrNotFound)

	w.WriteBegin("markers")
	w.WritePos2d(1, 2, 0.5, 0)
	w.WritePos2d(3, 4, 0.25, 90)
	assert.Equal(t, 2, w.Pending())
	require.NoError(t, w.WriteEnd())
	assert.Equal(t, 0, w.Pending())

	// points buffered before a new WriteBegin are dropped
	w.WriteBegin("debris")
	w.WritePos2d(9, 9, 9, 9)
	w.WriteBegin("debris")
	w.WritePos2d(5, 6, 1, 45)
	require.NoError(t, w.WriteEnd())
	require.NoError(t, f.Close())

	f = reopen(t, path, ModeRead)
	defer f.Close()
	z, err = f.Zone(1)
	require.NoError(t, err)

	steps, err := z.Steps()
	require.NoError(t, err)
	assert.Equal(t, []int{2}, steps)

	s, err := z.Solution(2)
	require.NoError(t, err)
	assert.Equal(t, 10.0, s.Time())
	img := s.ParticleGroupImage()

	for i := 0; i < 2; i++ {
		names, err := img.GroupNames()
		require.NoError(t, err)
		assert.Equal(t, []string{"debris", "markers"}, names)
	}

	n, err := img.Count("markers")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	x, y, size, angle, err := img.ReadPos2d("markers")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, x)
	assert.Equal(t, []float64{2, 4}, y)
	assert.Equal(t, []float64{0.5, 0.25}, size)
	assert.Equal(t, []float64{0, 90}, angle)

	debris, err := img.ReadCoordinatesX("debris")
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, debris)

	_, err = img.ReadAngle("sand")
	assert.ErrorIs(t, err, ErrNotFound)

	s1, err := z.Solution(1)
	require.NoError(t, err)
	names, err := s1.ParticleGroupImage().GroupNames()
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = z.Solution(3)
	assert.ErrorIs(t, err, ErrStepOutOfRange)
}

func TestParticleWriter_ReadOnlyFailsOnFirstArray(t *testing.T) {
	f, path := newTestFile(t)
	newStructured2D(t, f, 2, 2)
	_, err := f.WriteSolTime(0)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f = reopen(t, path, ModeRead)
	defer f.Close()
	z, err := f.Zone(1)
	require.NoError(t, err)

	w, err := z.ParticleGroupImageSolution()
	require.NoError(t, err)
	w.WriteBegin("markers")
	w.WritePos2d(1, 1, 1, 1)
	assert.ErrorIs(t, w.WriteEnd(), ErrStorageFailure)
	assert.Equal(t, 1, w.Pending())
	assert.Equal(t, 0, f.c.OpenHandles())
}

func TestSolution_Attributes(t *testing.T) {
	f, _ := newTestFile(t)
	defer f.Close()
	z := newStructured2D(t, f, 2, 2)

	_, err := z.CurrentSolution()
	assert.ErrorIs(t, err, ErrStepOutOfRange)

	for _, tv := range []float64{0, 30} {
		_, err := f.WriteSolTime(tv)
		require.NoError(t, err)
		s, err := z.CurrentSolution()
		require.NoError(t, err)
		require.NoError(t, s.Attributes().WriteReal(Node, "Depth", []float64{tv, tv, tv, tv}))
	}

	s1, err := z.Solution(1)
	require.NoError(t, err)
	d, err := s1.Attributes().ReadReal(Node, "Depth")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, d)

	// solution fields do not leak into grid attributes
	_, err = z.GridAttributes().ReadReal(Node, "Depth")
	assert.ErrorIs(t, err, ErrNotFound)

	steps, err := z.Steps()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, steps)
}
