package spectral

// SpectralRolloff finds the frequency below which a given fraction of the
// total power lies
type SpectralRolloff struct{}

// NewSpectralRolloff creates a new spectral rolloff calculator
func NewSpectralRolloff() *SpectralRolloff {
	return &SpectralRolloff{}
}

// Compute returns the first frequency at which the cumulative power reaches
// fraction of the total. freqs must be ascending. Zero total power gives 0.
func (sr *SpectralRolloff) Compute(power, freqs []float64, fraction float64) float64 {
	idx := sr.Index(power, freqs, fraction)
	if idx < 0 {
		return 0
	}
	return freqs[idx]
}

// Index is Compute returning the bin index, or -1 when there is no power
func (sr *SpectralRolloff) Index(power, freqs []float64, fraction float64) int {
	n := min(len(power), len(freqs))
	if n == 0 {
		return -1
	}

	total := 0.0
	for _, p := range power[:n] {
		total += p
	}
	if total == 0 {
		return -1
	}

	target := fraction * total
	cumulative := 0.0

	for i := range n {
		cumulative += power[i]
		if cumulative >= target {
			return i
		}
	}
	return n - 1
}

// OccupiedBandwidth returns the band edges holding fraction of the power,
// with the remainder split evenly between the two tails (0.99 gives the
// usual 99% occupied bandwidth)
func (sr *SpectralRolloff) OccupiedBandwidth(power, freqs []float64, fraction float64) (low, high float64) {
	tail := (1 - fraction) / 2
	return sr.Compute(power, freqs, tail), sr.Compute(power, freqs, 1-tail)
}

// ComputeFrames processes multiple frames sharing one frequency axis
func (sr *SpectralRolloff) ComputeFrames(spectrogram [][]float64, freqs []float64, fraction float64) []float64 {
	if len(spectrogram) == 0 {
		return []float64{}
	}

	rolloffs := make([]float64, len(spectrogram))

	for t, power := range spectrogram {
		rolloffs[t] = sr.Compute(power, freqs, fraction)
	}

	return rolloffs
}
