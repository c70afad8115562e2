package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func TestCircleCircleTwoRoots(t *testing.T) {
	tests := []struct {
		name string
		c0   Point
		r0   float64
		c1   Point
		r1   float64
	}{
		{"unit circles", Pt(0, 0), 1, Pt(1, 0), 1},
		{"offset", Pt(-2, 3), 2.5, Pt(1, 1), 2},
		{"vertical baseline", Pt(0, 0), 3, Pt(0, 4), 2},
		{"one inside other", Pt(0, 0), 5, Pt(1, 0), 4.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CircleCircle(tt.c0, tt.r0, tt.c1, tt.r1, tol)
			require.NoError(t, err)
			require.Equal(t, Two, got.Kind)
			for _, p := range got.Points {
				assert.InDelta(t, tt.r0, p.Dist(tt.c0), 1e-9)
				assert.InDelta(t, tt.r1, p.Dist(tt.c1), 1e-9)
			}
			assert.False(t, got.Points[0].ApproxEqual(got.Points[1], 1e-6))
		})
	}
}

func TestCircleCircleKnownRoots(t *testing.T) {
	got, err := CircleCircle(Pt(0, 0), 1, Pt(1, 0), 1, tol)
	require.NoError(t, err)

	h := math.Sqrt(0.75)
	assert.InDelta(t, 0.5, got.Points[0].X, 1e-12)
	assert.InDelta(t, h, got.Points[0].Y, 1e-12)
	assert.InDelta(t, -h, got.Points[1].Y, 1e-12)

	assert.Equal(t, got.Points[0], got.Closest(Pt(0, 3)))
	assert.Equal(t, got.Points[1], got.Closest(Pt(0, -3)))
}

func TestCircleCircleTangent(t *testing.T) {
	tests := []struct {
		name string
		c0   Point
		r0   float64
		c1   Point
		r1   float64
		want Point
	}{
		{"external", Pt(0, 0), 1, Pt(2, 0), 1, Pt(1, 0)},
		{"internal", Pt(0, 0), 3, Pt(1, 0), 2, Pt(3, 0)},
		{"internal smaller first", Pt(0, 0), 2, Pt(0, 1), 3, Pt(0, -2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CircleCircle(tt.c0, tt.r0, tt.c1, tt.r1, tol)
			require.NoError(t, err)
			require.Equal(t, One, got.Kind)
			assert.InDelta(t, tt.want.X, got.Points[0].X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Points[0].Y, 1e-9)
			assert.InDelta(t, tt.r0, got.Points[0].Dist(tt.c0), 1e-9)
			assert.InDelta(t, tt.r1, got.Points[0].Dist(tt.c1), 1e-9)
		})
	}
}

func TestCircleCircleNone(t *testing.T) {
	tests := []struct {
		name string
		c0   Point
		r0   float64
		c1   Point
		r1   float64
	}{
		{"too far", Pt(0, 0), 1, Pt(10, 0), 1},
		{"nested", Pt(0, 0), 5, Pt(1, 0), 1},
		{"concentric different radii", Pt(2, 2), 1, Pt(2, 2), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CircleCircle(tt.c0, tt.r0, tt.c1, tt.r1, tol)
			assert.ErrorIs(t, err, ErrNoIntersection)
		})
	}
}

func TestCircleCircleCoincident(t *testing.T) {
	got, err := CircleCircle(Pt(1, 1), 2, Pt(1, 1), 2, tol)
	require.NoError(t, err)
	assert.True(t, got.Degenerate())
}

func TestCircleLine(t *testing.T) {
	got, err := CircleLine(Pt(0, 0), 1, Pt(-5, 0), Pt(2, 0), tol)
	require.NoError(t, err)
	require.Equal(t, Two, got.Kind)
	assert.InDelta(t, 1, got.Points[0].X, 1e-12)
	assert.InDelta(t, -1, got.Points[1].X, 1e-12)

	got, err = CircleLine(Pt(0, 0), 1, Pt(0, 1), Pt(1, 0), tol)
	require.NoError(t, err)
	assert.Equal(t, One, got.Kind)
	assert.InDelta(t, 1, got.Points[0].Y, 1e-12)

	_, err = CircleLine(Pt(0, 0), 1, Pt(0, 2), Pt(1, 0), tol)
	assert.ErrorIs(t, err, ErrNoIntersection)

	got, err = CircleLine(Pt(0, 0), 1, Pt(0, 0), Pt(0, 0), tol)
	require.NoError(t, err)
	assert.True(t, got.Degenerate())
}

func TestCircleLineDiagonal(t *testing.T) {
	c := Pt(1, 2)
	got, err := CircleLine(c, 1.5, Pt(0, 0), Pt(1, 1), tol)
	require.NoError(t, err)
	require.Equal(t, Two, got.Kind)
	for _, p := range got.Points {
		assert.InDelta(t, 1.5, p.Dist(c), 1e-9)
		assert.InDelta(t, p.X, p.Y, 1e-9)
	}
}

func TestNegativeRadius(t *testing.T) {
	_, err := CircleCircle(Pt(0, 0), -1, Pt(1, 0), 1, tol)
	assert.ErrorIs(t, err, ErrNegativeRadius)
	_, err = CircleLine(Pt(0, 0), -1, Pt(0, 0), Pt(1, 0), tol)
	assert.ErrorIs(t, err, ErrNegativeRadius)
}
