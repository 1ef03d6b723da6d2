package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// Bin is one frequency bin of a power spectrum.
type Bin struct {
	Freq  float64 // Hz
	Power float64
}

// Spectrum returns the one-sided amplitude spectrum of samples taken every
// dt seconds. The mean is removed first so the DC bin reflects only drift.
func Spectrum(samples []float64, dt float64) []Bin {
	n := len(samples)
	if n < 2 || dt <= 0 {
		return nil
	}
	mean := stat.Mean(samples, nil)
	centered := make([]float64, n)
	for i, v := range samples {
		centered[i] = v - mean
	}

	coeff := fft.FFTReal(centered)
	bins := make([]Bin, n/2+1)
	for i := range bins {
		bins[i] = Bin{Freq: float64(i) / (float64(n) * dt), Power: cmplx.Abs(coeff[i])}
	}
	return bins
}

// DominantFrequency is the strongest non-zero frequency in samples. It
// reports false for series that are too short or flat.
func DominantFrequency(samples []float64, dt float64) (float64, bool) {
	bins := Spectrum(samples, dt)
	if len(bins) < 2 {
		return 0, false
	}
	best := 1
	for i := 2; i < len(bins); i++ {
		if bins[i].Power > bins[best].Power {
			best = i
		}
	}
	if bins[best].Power < 1e-12 {
		return 0, false
	}
	return bins[best].Freq, true
}
