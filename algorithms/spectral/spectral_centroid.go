package spectral

// SpectralCentroid computes the power-weighted mean frequency of a spectrum
type SpectralCentroid struct{}

// NewSpectralCentroid creates a new spectral centroid calculator
func NewSpectralCentroid() *SpectralCentroid {
	return &SpectralCentroid{}
}

// Compute returns sum(f*P)/sum(P) over bins paired index-for-index with
// freqs. Zero total power gives 0.
func (sc *SpectralCentroid) Compute(power, freqs []float64) float64 {
	n := min(len(power), len(freqs))
	if n == 0 {
		return 0.0
	}

	numerator := 0.0
	denominator := 0.0

	for i := range n {
		numerator += freqs[i] * power[i]
		denominator += power[i]
	}

	if denominator == 0 {
		return 0
	}

	return numerator / denominator
}

// ComputeFrames processes multiple frames sharing one frequency axis
func (sc *SpectralCentroid) ComputeFrames(spectrogram [][]float64, freqs []float64) []float64 {
	if len(spectrogram) == 0 {
		return []float64{}
	}

	centroids := make([]float64, len(spectrogram))

	for t, power := range spectrogram {
		centroids[t] = sc.Compute(power, freqs)
	}

	return centroids
}
