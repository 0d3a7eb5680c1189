package radar

import (
	"github.com/RyanBlaney/sonido-rf/algorithms/spectral"
	"github.com/RyanBlaney/sonido-rf/iq"
)

// GenerateChirp returns one linear ramp per offset. Each ramp has samples
// points from fStart toward fStop with the endpoint excluded, shifted by
// its offset.
func GenerateChirp(fStart, fStop float64, offsets []float64, samples int) [][]float64 {
	if samples < 0 {
		samples = 0
	}
	step := 0.0
	if samples > 0 {
		step = (fStop - fStart) / float64(samples)
	}

	chirps := make([][]float64, len(offsets))
	for p, off := range offsets {
		chirps[p] = make([]float64, samples)
		for i := range samples {
			chirps[p][i] = fStart + step*float64(i) + off
		}
	}
	return chirps
}

// RangeProfile is the per-pulse range FFT, positive beat frequencies only
type RangeProfile struct {
	Frequencies []float64   `json:"frequencies"`
	MagnitudeDB [][]float64 `json:"magnitude_db"` // pulse x bin
}

// RangeFloor is added to |X| before the range FFT goes to dB
const RangeFloor = 1e-10

// ComputeRangeFFT transforms each pulse and keeps the first N/2 bins as
// 20*log10(|X| + RangeFloor)
func ComputeRangeFFT(baseband [][]complex128, sampleRate float64) *RangeProfile {
	fft := spectral.NewFFT()
	ps := spectral.NewPowerSpectrumWithEpsilon(RangeFloor)

	profile := &RangeProfile{MagnitudeDB: make([][]float64, len(baseband))}
	for p, pulse := range baseband {
		half := len(pulse) / 2
		if profile.Frequencies == nil {
			profile.Frequencies = spectral.Frequencies(len(pulse), sampleRate)[:half]
		}
		profile.MagnitudeDB[p] = ps.MagnitudeDB(fft.Compute(pulse))[:half]
	}
	if profile.Frequencies == nil {
		profile.Frequencies = []float64{}
	}
	return profile
}

// Ranges converts the beat frequency axis to metres for radar r
func (rp *RangeProfile) Ranges(r *Radar) []float64 {
	out := make([]float64, len(rp.Frequencies))
	for i, f := range rp.Frequencies {
		out[i] = r.BeatToRange(f)
	}
	return out
}

// PeakBin returns the strongest bin of pulse p, skipping the first skip
// bins (the DC region); -1 when the pulse has no bins left
func (rp *RangeProfile) PeakBin(p, skip int) int {
	best, idx := 0.0, -1
	for i := skip; i < len(rp.MagnitudeDB[p]); i++ {
		if idx < 0 || rp.MagnitudeDB[p][i] > best {
			best, idx = rp.MagnitudeDB[p][i], i
		}
	}
	return idx
}

// Combine adds the interference to the victim baseband pulse by pulse. A
// result without interference yields a copy of the baseband.
func Combine(result *SimulationResult) [][]complex128 {
	out := make([][]complex128, len(result.Baseband))
	for p, pulse := range result.Baseband {
		if p < len(result.Interference) {
			out[p] = iq.Combine(pulse, result.Interference[p], 1)
		} else {
			out[p] = iq.Buffer(pulse).Clone()
		}
	}
	return out
}
