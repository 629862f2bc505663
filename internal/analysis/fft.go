package analysis

import (
	"math"
	"math/cmplx"

	"github.com/juju/errors"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the one-sided amplitude spectrum of data with its
// mean removed. Bin k corresponds to k/(n dt) Hz.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return nil
	}

	mean := stat.Mean(data, nil)
	centered := make([]float64, n)
	for i, x := range data {
		centered[i] = x - mean
	}

	coeffs := fourier.NewFFT(n).Coefficients(nil, centered)
	ps := make([]float64, len(coeffs))
	for i, c := range coeffs {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantPeriod returns the period in seconds of the strongest non-zero
// frequency in data sampled every dt seconds.
func DominantPeriod(data []float64, dt float64) (float64, error) {
	if dt <= 0 {
		return 0, errors.NotValidf("sample interval %g", dt)
	}
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0, errors.NotValidf("series of %d samples", len(data))
	}

	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	if ps[best] == 0 || math.IsNaN(ps[best]) {
		return 0, errors.NotFoundf("periodic component")
	}
	return float64(len(data)) * dt / float64(best), nil
}
