// Package iq holds complex baseband sample buffers and the elementwise
// transforms applied to them before spectral analysis.
package iq

import (
	"math/cmplx"
)

// Buffer is an ordered sequence of complex I/Q samples.
type Buffer []complex128

// Decode rebuilds complex samples from an interleaved real sequence where
// even indices carry I and odd indices carry Q. A trailing unpaired value is
// dropped. Empty input yields an empty buffer.
func Decode[T float32 | float64](raw []T) Buffer {
	n := len(raw) / 2
	out := make(Buffer, n)
	for i := range n {
		out[i] = complex(float64(raw[2*i]), float64(raw[2*i+1]))
	}
	return out
}

// Interleave is the inverse of Decode.
func (b Buffer) Interleave() []float64 {
	out := make([]float64, 2*len(b))
	for i, s := range b {
		out[2*i] = real(s)
		out[2*i+1] = imag(s)
	}
	return out
}

// Len returns the number of complex samples.
func (b Buffer) Len() int { return len(b) }

// Head returns the first n samples, or the whole buffer when n <= 0 or the
// buffer is shorter. The result aliases b.
func (b Buffer) Head(n int) Buffer {
	if n <= 0 || n >= len(b) {
		return b
	}
	return b[:n]
}

// Clone returns an independent copy.
func (b Buffer) Clone() Buffer {
	out := make(Buffer, len(b))
	copy(out, b)
	return out
}

// MaxAbs returns max |x| over the buffer, 0 for an empty buffer.
func (b Buffer) MaxAbs() float64 {
	peak := 0.0
	for _, s := range b {
		if a := cmplx.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// Normalize scales the signal so its largest magnitude is 1. An all-zero or
// empty signal is returned unchanged (as a copy).
func Normalize(signal Buffer) Buffer {
	peak := signal.MaxAbs()
	if peak == 0 {
		return signal.Clone()
	}
	return Scale(signal, 1/peak)
}

// Scale multiplies every sample by a real factor.
func Scale(signal Buffer, factor float64) Buffer {
	out := make(Buffer, len(signal))
	f := complex(factor, 0)
	for i, s := range signal {
		out[i] = s * f
	}
	return out
}

// MatchLengths truncates both buffers to the shorter length. No padding.
func MatchLengths(a, b Buffer) (Buffer, Buffer) {
	n := min(len(a), len(b))
	return a[:n], b[:n]
}

// Combine overlays b, scaled by scaleB, onto a: out[i] = a[i] + scaleB*b[i]
// for i < min(len(a), len(b)). Mismatched lengths are truncated, not an error.
func Combine(a, b Buffer, scaleB float64) Buffer {
	a, b = MatchLengths(a, b)
	out := make(Buffer, len(a))
	s := complex(scaleB, 0)
	for i := range a {
		out[i] = a[i] + s*b[i]
	}
	return out
}
