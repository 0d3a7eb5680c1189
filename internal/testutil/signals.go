package testutil

import (
	"math"
	"math/cmplx"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Tone returns a complex exponential that lands exactly on FFT bin `bin` of
// an n-point transform. Negative bins rotate clockwise.
func Tone(n, bin int, amplitude float64) []complex128 {
	out := make([]complex128, n)
	step := 2 * math.Pi * float64(bin) / float64(n)
	for i := range out {
		out[i] = cmplx.Rect(amplitude, step*float64(i))
	}
	return out
}

// GaussianNoise returns complex white noise with standard deviation sigma on
// each of I and Q, seeded for reproducibility.
func GaussianNoise(seed uint64, sigma float64, n int) []complex128 {
	dist := distuv.Normal{Mu: 0, Sigma: sigma, Src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(dist.Rand(), dist.Rand())
	}
	return out
}

// NoiseFloor returns constant-amplitude samples with uniformly random phase,
// i.e. a flat noise floor of the given amplitude.
func NoiseFloor(seed uint64, amplitude float64, n int) []complex128 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	out := make([]complex128, n)
	for i := range out {
		out[i] = cmplx.Rect(amplitude, 2*math.Pi*rng.Float64())
	}
	return out
}

// Add returns the elementwise sum of equal-length complex slices.
func Add(a, b []complex128) []complex128 {
	out := make([]complex128, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

// Interleave flattens complex samples into [I0, Q0, I1, Q1, ...] float32s,
// the on-disk cf32 layout.
func Interleave(samples []complex128) []float32 {
	out := make([]float32, 2*len(samples))
	for i, s := range samples {
		out[2*i] = float32(real(s))
		out[2*i+1] = float32(imag(s))
	}
	return out
}
