package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/linksim/internal/geom"
)

var ErrShortSeries = errors.New("analysis: series needs at least two samples")

// Spectrum returns the magnitudes of the first half of the discrete Fourier
// transform of data. Any length is accepted.
func Spectrum(data []float64) ([]float64, error) {
	if len(data) < 2 {
		return nil, ErrShortSeries
	}
	out := fft.FFTReal(data)
	ps := make([]float64, len(out)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(out[i])
	}
	return ps, nil
}

// Coordinates splits a locus into its x and y series.
func Coordinates(locus []geom.Point) (xs, ys []float64) {
	xs = make([]float64, len(locus))
	ys = make([]float64, len(locus))
	for i, p := range locus {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

func LocusSpectrum(locus []geom.Point) (xs, ys []float64, err error) {
	x, y := Coordinates(locus)
	if xs, err = Spectrum(x); err != nil {
		return nil, nil, err
	}
	if ys, err = Spectrum(y); err != nil {
		return nil, nil, err
	}
	return xs, ys, nil
}

// DominantHarmonic returns the index of the largest magnitude, ignoring the
// constant term. It returns 0 when ps has no harmonics.
func DominantHarmonic(ps []float64) int {
	best := 0
	for i := 1; i < len(ps); i++ {
		if best == 0 || ps[i] > ps[best] {
			best = i
		}
	}
	return best
}
