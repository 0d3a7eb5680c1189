package spectral

import (
	"math"
)

// SpectralFlatness computes spectral flatness (Wiener entropy) of a power
// spectrum. Barrage noise jamming fills the band and scores near 1; a
// narrowband carrier or spot jammer scores near 0.
type SpectralFlatness struct {
	minThreshold float64 // floor for the geometric mean, avoids log(0)
}

// NewSpectralFlatness creates a new spectral flatness calculator
func NewSpectralFlatness() *SpectralFlatness {
	return &SpectralFlatness{
		minThreshold: DefaultEpsilon * DefaultEpsilon,
	}
}

// NewSpectralFlatnessWithThreshold creates calculator with custom threshold
func NewSpectralFlatnessWithThreshold(threshold float64) *SpectralFlatness {
	return &SpectralFlatness{
		minThreshold: threshold,
	}
}

// Compute returns the ratio of the geometric mean to the arithmetic mean of
// power, in [0, 1]
func (sf *SpectralFlatness) Compute(power []float64) float64 {
	if len(power) == 0 {
		return 0.0
	}

	// Geometric mean in the log domain, empty bins floored at minThreshold
	logSum := 0.0
	for _, p := range power {
		logSum += math.Log(math.Max(p, sf.minThreshold))
	}

	geometricMean := math.Exp(logSum / float64(len(power)))

	arithmeticMean := 0.0
	for _, p := range power {
		arithmeticMean += p
	}
	arithmeticMean /= float64(len(power))

	if arithmeticMean <= sf.minThreshold {
		return 0.0
	}

	flatness := geometricMean / arithmeticMean
	if flatness > 1.0 {
		flatness = 1.0
	}

	return flatness
}

// ComputeFrames processes multiple frames efficiently
func (sf *SpectralFlatness) ComputeFrames(spectrogram [][]float64) []float64 {
	if len(spectrogram) == 0 {
		return []float64{}
	}

	flatness := make([]float64, len(spectrogram))

	for t, power := range spectrogram {
		flatness[t] = sf.Compute(power)
	}

	return flatness
}

// ComputeInDB calculates spectral flatness in decibels. White noise sits
// close to 0 dB, a lone carrier far below -20 dB.
func (sf *SpectralFlatness) ComputeInDB(power []float64) float64 {
	flatness := sf.Compute(power)

	if flatness <= 0 {
		return -100.0
	}

	return 10.0 * math.Log10(flatness)
}

// ComputeBandLimited calculates spectral flatness over bins
// [startBin, endBin] inclusive
func (sf *SpectralFlatness) ComputeBandLimited(power []float64, startBin, endBin int) float64 {
	if startBin < 0 || endBin >= len(power) || startBin >= endBin {
		return 0.0
	}

	return sf.Compute(power[startBin : endBin+1])
}

// IsNoiseLike reports whether flatness is at or above threshold
func (sf *SpectralFlatness) IsNoiseLike(flatness float64, threshold float64) bool {
	return flatness >= threshold
}
