package spectral

// Shift reorders a transform so the zero-frequency bin sits in the middle:
// out[(i + n/2) % n] = x[i]. For odd lengths the extra bin stays on the
// negative side, as with the usual fftshift.
func Shift[T any](x []T) []T {
	n := len(x)
	out := make([]T, n)
	if n == 0 {
		return out
	}

	half := n / 2
	for i, v := range x {
		out[(i+half)%n] = v
	}
	return out
}

// Frequencies returns the DFT bin frequencies in natural (unshifted) order:
// 0, df, 2df, ..., then the negative half, with df = sampleRate/n.
func Frequencies(n int, sampleRate float64) []float64 {
	freqs := make([]float64, n)
	if n == 0 {
		return freqs
	}

	df := sampleRate / float64(n)
	positive := (n-1)/2 + 1
	for k := range positive {
		freqs[k] = float64(k) * df
	}
	for k := positive; k < n; k++ {
		freqs[k] = float64(k-n) * df
	}
	return freqs
}

// CenteredFrequencies returns the shifted frequency axis offset by
// centerFreq, aligned index-for-index with Shift of an n-point transform.
func CenteredFrequencies(n int, sampleRate, centerFreq float64) []float64 {
	freqs := Shift(Frequencies(n, sampleRate))
	for i := range freqs {
		freqs[i] += centerFreq
	}
	return freqs
}
