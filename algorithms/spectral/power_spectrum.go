package spectral

import (
	"math"
	"math/cmplx"
)

// DefaultEpsilon is added to magnitudes before taking logarithms so empty
// bins stay finite
const DefaultEpsilon = 1e-10

// PowerSpectrum converts complex bins into power and decibel series
type PowerSpectrum struct {
	epsilon float64
}

// NewPowerSpectrum creates a converter using DefaultEpsilon
func NewPowerSpectrum() *PowerSpectrum {
	return &PowerSpectrum{epsilon: DefaultEpsilon}
}

// NewPowerSpectrumWithEpsilon creates a converter with a custom log guard
func NewPowerSpectrumWithEpsilon(epsilon float64) *PowerSpectrum {
	return &PowerSpectrum{epsilon: epsilon}
}

// Compute returns |X[k]|^2 for every bin
func (ps *PowerSpectrum) Compute(bins []complex128) []float64 {
	power := make([]float64, len(bins))
	for i, x := range bins {
		re, im := real(x), imag(x)
		power[i] = re*re + im*im
	}
	return power
}

// Magnitude returns |X[k]| for every bin
func (ps *PowerSpectrum) Magnitude(bins []complex128) []float64 {
	mag := make([]float64, len(bins))
	for i, x := range bins {
		mag[i] = cmplx.Abs(x)
	}
	return mag
}

// MagnitudeDB returns 20*log10(|X[k]| + epsilon)
func (ps *PowerSpectrum) MagnitudeDB(bins []complex128) []float64 {
	db := make([]float64, len(bins))
	for i, x := range bins {
		db[i] = 20 * math.Log10(cmplx.Abs(x)+ps.epsilon)
	}
	return db
}

// ComputeLog returns 10*log10(power) with power floored at epsilon^2, which
// puts empty bins on the same floor as MagnitudeDB.
func (ps *PowerSpectrum) ComputeLog(power []float64) []float64 {
	floor := ps.epsilon * ps.epsilon
	logPower := make([]float64, len(power))
	for i, p := range power {
		if p < floor {
			p = floor
		}
		logPower[i] = 10 * math.Log10(p)
	}
	return logPower
}
