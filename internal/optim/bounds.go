package optim

import "fmt"

type Bounds struct {
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
}

// GenerateBounds spans each dimension from center/minRatio to
// center*maxFactor. Negative centers, such as fixed-joint angles, get their
// ends swapped so Lower never exceeds Upper.
func GenerateBounds(center []float64, minRatio, maxFactor float64) (Bounds, error) {
	if len(center) == 0 {
		return Bounds{}, ErrNoDimensions
	}
	if minRatio <= 0 || maxFactor <= 0 {
		return Bounds{}, fmt.Errorf("%w: ratio %g, factor %g", ErrBadBounds, minRatio, maxFactor)
	}
	b := Bounds{
		Lower: make([]float64, len(center)),
		Upper: make([]float64, len(center)),
	}
	for i, c := range center {
		lo, hi := c/minRatio, c*maxFactor
		if lo > hi {
			lo, hi = hi, lo
		}
		b.Lower[i], b.Upper[i] = lo, hi
	}
	return b, nil
}

func (b Bounds) Dimensions() int { return len(b.Lower) }

func (b Bounds) Validate() error {
	if len(b.Lower) == 0 {
		return ErrNoDimensions
	}
	if len(b.Lower) != len(b.Upper) {
		return fmt.Errorf("%w: %d lower vs %d upper", ErrBadBounds, len(b.Lower), len(b.Upper))
	}
	for i := range b.Lower {
		if b.Lower[i] > b.Upper[i] {
			return fmt.Errorf("%w: dimension %d has lower %g above upper %g", ErrBadBounds, i, b.Lower[i], b.Upper[i])
		}
	}
	return nil
}

// Clamp moves x into the box in place.
func (b Bounds) Clamp(x []float64) {
	for i := range x {
		x[i] = min(max(x[i], b.Lower[i]), b.Upper[i])
	}
}

// linspace returns n evenly spaced values from a to b inclusive.
func linspace(a, b float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{a}
	}
	out := make([]float64, n)
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + step*float64(i)
	}
	out[n-1] = b
	return out
}
