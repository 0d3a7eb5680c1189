package spectral

import (
	"math"
)

// SpectralFlux measures how much a spectrum changes from one frame to the
// next. A jammer switching on shows up as a spike.
type SpectralFlux struct{}

// NewSpectralFlux creates a new spectral flux calculator
func NewSpectralFlux() *SpectralFlux {
	return &SpectralFlux{}
}

// Compute returns, for each frame after the first, the L2 norm of the bin
// increases over the previous frame. Decreases are ignored, so a signal
// switching off does not count. Frames are compared up to the shorter length.
func (sf *SpectralFlux) Compute(spectrogram [][]float64) []float64 {
	return sf.compute(spectrogram, false)
}

// ComputeAllChanges is Compute counting decreases as well
func (sf *SpectralFlux) ComputeAllChanges(spectrogram [][]float64) []float64 {
	return sf.compute(spectrogram, true)
}

func (sf *SpectralFlux) compute(spectrogram [][]float64, both bool) []float64 {
	if len(spectrogram) < 2 {
		return []float64{}
	}

	flux := make([]float64, len(spectrogram)-1)

	for t := 1; t < len(spectrogram); t++ {
		cur, prev := spectrogram[t], spectrogram[t-1]
		sum := 0.0
		for f := range min(len(cur), len(prev)) {
			diff := cur[f] - prev[f]
			if both || diff > 0 {
				sum += diff * diff
			}
		}
		flux[t-1] = math.Sqrt(sum)
	}

	return flux
}
