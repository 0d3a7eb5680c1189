package spectral

import (
	"math"
)

// SpectralCrest computes the peak-to-average ratio of a power spectrum. A
// single strong carrier gives a large crest, a filled band a small one.
type SpectralCrest struct{}

// NewSpectralCrest creates a new spectral crest calculator
func NewSpectralCrest() *SpectralCrest {
	return &SpectralCrest{}
}

// Compute returns max(power)/mean(power), or 0 for an empty or silent
// spectrum
func (sc *SpectralCrest) Compute(power []float64) float64 {
	if len(power) == 0 {
		return 0
	}

	maxVal := 0.0
	sum := 0.0

	for _, p := range power {
		if p > maxVal {
			maxVal = p
		}
		sum += p
	}

	mean := sum / float64(len(power))
	if mean == 0 {
		return 0
	}

	return maxVal / mean
}

// ComputeDB is Compute in decibels; a silent spectrum gives 0 dB
func (sc *SpectralCrest) ComputeDB(power []float64) float64 {
	crest := sc.Compute(power)
	if crest == 0 {
		return 0
	}
	return 10 * math.Log10(crest)
}

// ComputeFrames processes multiple frames efficiently
func (sc *SpectralCrest) ComputeFrames(spectrogram [][]float64) []float64 {
	if len(spectrogram) == 0 {
		return []float64{}
	}

	crests := make([]float64, len(spectrogram))

	for t, power := range spectrogram {
		crests[t] = sc.Compute(power)
	}

	return crests
}
