package filters

import (
	"math"
)

// DCRemoval is a one-pole DC blocker for complex baseband. Receivers with
// direct-conversion front ends leave a carrier-leak spike at 0 Hz; running
// the blocker over I and Q together removes it without touching the rest of
// the band.
//
// References:
//   - Julius O. Smith III, "Introduction to Digital Filters with Audio Applications"
//     https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
//
// Difference equation: y[n] = x[n] - x[n-1] + R*y[n-1]
type DCRemoval struct {
	poleLocation float64 // R parameter (0 < R < 1)

	x1 complex128 // previous input x[n-1]
	y1 complex128 // previous output y[n-1]
}

// DefaultPoleLocation gives a cutoff near 0.08% of the sample rate
const DefaultPoleLocation = 0.995

// NewDCRemoval creates a DC blocker with the default pole location
func NewDCRemoval() *DCRemoval {
	return &DCRemoval{poleLocation: DefaultPoleLocation}
}

// NewDCRemovalWithCutoff creates a DC blocker with an approximate -3 dB
// cutoff in Hz. R = 1 - 2*pi*fc/fs, clamped to (0, 1).
func NewDCRemovalWithCutoff(sampleRate, cutoffFreq float64) *DCRemoval {
	dc := NewDCRemoval()
	if sampleRate > 0 && cutoffFreq > 0 {
		dc.SetPoleLocation(poleFromCutoff(sampleRate, cutoffFreq))
	}
	return dc
}

func poleFromCutoff(sampleRate, cutoffFreq float64) float64 {
	r := 1.0 - (2.0 * math.Pi * cutoffFreq / sampleRate)
	switch {
	case r >= 1.0:
		return 0.999
	case r <= 0.0:
		return 0.001
	}
	return r
}

// Process filters a single sample
func (dc *DCRemoval) Process(input complex128) complex128 {
	output := input - dc.x1 + complex(dc.poleLocation, 0)*dc.y1

	dc.x1 = input
	dc.y1 = output

	return output
}

// ProcessBuffer filters a whole buffer into a new slice. State carries over
// between calls; Reset first when the buffers are unrelated captures.
func (dc *DCRemoval) ProcessBuffer(input []complex128) []complex128 {
	output := make([]complex128, len(input))
	for i, sample := range input {
		output[i] = dc.Process(sample)
	}
	return output
}

// Reset clears the filter state
func (dc *DCRemoval) Reset() {
	dc.x1 = 0
	dc.y1 = 0
}

// SetPoleLocation sets R; values outside (0, 1) are ignored
func (dc *DCRemoval) SetPoleLocation(poleLocation float64) {
	if poleLocation > 0 && poleLocation < 1 {
		dc.poleLocation = poleLocation
	}
}

// GetPoleLocation returns R
func (dc *DCRemoval) GetPoleLocation() float64 {
	return dc.poleLocation
}

// GetCutoffFrequency inverts the design formula: fc ≈ (1-R)*fs/(2*pi)
func (dc *DCRemoval) GetCutoffFrequency(sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0.0
	}
	return (1.0 - dc.poleLocation) * sampleRate / (2.0 * math.Pi)
}

// GetMagnitudeResponse returns |H(e^jw)| at frequency (Hz), where
// H(e^jw) = (1 - e^-jw) / (1 - R*e^-jw). Negative frequencies mirror the
// positive ones.
func (dc *DCRemoval) GetMagnitudeResponse(frequency, sampleRate float64) float64 {
	w := 2.0 * math.Pi * frequency / sampleRate

	numReal := 1.0 - math.Cos(w)
	numImag := math.Sin(w)
	denReal := 1.0 - dc.poleLocation*math.Cos(w)
	denImag := dc.poleLocation * math.Sin(w)

	return math.Sqrt((numReal*numReal + numImag*numImag) / (denReal*denReal + denImag*denImag))
}

// SubtractMean removes the average I/Q offset from a whole capture. Unlike
// the recursive blocker it has no start-up transient.
func SubtractMean(input []complex128) []complex128 {
	out := make([]complex128, len(input))
	if len(input) == 0 {
		return out
	}

	var sum complex128
	for _, s := range input {
		sum += s
	}
	mean := sum / complex(float64(len(input)), 0)

	for i, s := range input {
		out[i] = s - mean
	}
	return out
}
