package spectral

import (
	"math"
)

// SpectralBandwidth computes the RMS spread of a spectrum around its centroid
type SpectralBandwidth struct{}

// NewSpectralBandwidth creates a new spectral bandwidth calculator
func NewSpectralBandwidth() *SpectralBandwidth {
	return &SpectralBandwidth{}
}

// Compute returns sqrt(sum((f-centroid)^2*P)/sum(P))
func (sb *SpectralBandwidth) Compute(power, freqs []float64, centroid float64) float64 {
	n := min(len(power), len(freqs))
	if n == 0 {
		return 0.0
	}

	numerator := 0.0
	denominator := 0.0

	for i := range n {
		diff := freqs[i] - centroid
		numerator += diff * diff * power[i]
		denominator += power[i]
	}

	if denominator == 0 {
		return 0
	}

	return math.Sqrt(numerator / denominator)
}

// ComputeFrames processes multiple frames with their corresponding centroids
func (sb *SpectralBandwidth) ComputeFrames(spectrogram [][]float64, freqs, centroids []float64) []float64 {
	if len(spectrogram) == 0 || len(centroids) != len(spectrogram) {
		return []float64{}
	}

	bandwidths := make([]float64, len(spectrogram))

	for t, power := range spectrogram {
		bandwidths[t] = sb.Compute(power, freqs, centroids[t])
	}

	return bandwidths
}
