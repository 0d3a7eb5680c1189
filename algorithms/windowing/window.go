package windowing

import (
	"fmt"
	"strings"
)

// Type names a window function
type Type string

const (
	TypeHann        Type = "hann"
	TypeHamming     Type = "hamming"
	TypeBlackman    Type = "blackman"
	TypeRectangular Type = "rectangular"
)

// Window is a tapering function applied to a frame before the FFT
type Window interface {
	Apply(signal []float64) []float64
	ApplyInPlace(signal []float64) error
	ApplyComplex(signal []complex128) ([]complex128, error)
	GetCoefficients() []float64
	GetSize() int
	GetType() string
	CoherentGain() float64
}

// ParseType validates a window name. The empty string selects Hann.
func ParseType(name string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(name))); t {
	case "":
		return TypeHann, nil
	case TypeHann, TypeHamming, TypeBlackman, TypeRectangular:
		return t, nil
	case "hanning":
		return TypeHann, nil
	case "boxcar", "none":
		return TypeRectangular, nil
	default:
		return "", fmt.Errorf("unsupported window type %q", name)
	}
}

// New builds a symmetric window of the given type and size. Symmetric
// windows end on the same value they start with, which is what a one-shot
// spectrum of a finite capture wants.
func New(t Type, size int) (Window, error) {
	if size < 0 {
		return nil, fmt.Errorf("window size must be non-negative: %d", size)
	}

	switch t {
	case TypeHann, "":
		return NewHann(size, true), nil
	case TypeHamming:
		return NewHamming(size, true), nil
	case TypeBlackman:
		return NewBlackman(size, true), nil
	case TypeRectangular:
		return NewRectangular(size), nil
	default:
		return nil, fmt.Errorf("unsupported window type %q", t)
	}
}

// taper holds precomputed coefficients and the apply logic shared by all
// window types
type taper struct {
	kind         Type
	coefficients []float64
}

// denominator returns the cosine-term period for a window of the given size.
// Sizes of 0 and 1 return 1 so the single coefficient evaluates at phase 0.
func denominator(size int, symmetric bool) float64 {
	if size <= 1 {
		return 1
	}
	if symmetric {
		return float64(size - 1)
	}
	return float64(size)
}

// Apply applies the window to a signal (creates new array). Returns nil on
// a length mismatch.
func (w *taper) Apply(signal []float64) []float64 {
	if len(signal) != len(w.coefficients) {
		return nil
	}

	windowed := make([]float64, len(signal))
	for i, c := range w.coefficients {
		windowed[i] = signal[i] * c
	}

	return windowed
}

// ApplyInPlace applies the window to a signal in-place
func (w *taper) ApplyInPlace(signal []float64) error {
	if len(signal) != len(w.coefficients) {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), len(w.coefficients))
	}

	for i, c := range w.coefficients {
		signal[i] *= c
	}

	return nil
}

// ApplyComplex multiplies I and Q by the same coefficient and returns a new
// slice.
func (w *taper) ApplyComplex(signal []complex128) ([]complex128, error) {
	if len(signal) != len(w.coefficients) {
		return nil, fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), len(w.coefficients))
	}

	windowed := make([]complex128, len(signal))
	for i, c := range w.coefficients {
		windowed[i] = signal[i] * complex(c, 0)
	}

	return windowed, nil
}

// GetCoefficients returns a copy of the window coefficients
func (w *taper) GetCoefficients() []float64 {
	coeffs := make([]float64, len(w.coefficients))
	copy(coeffs, w.coefficients)
	return coeffs
}

// GetSize returns the window size
func (w *taper) GetSize() int {
	return len(w.coefficients)
}

// GetType returns the window type
func (w *taper) GetType() string {
	return string(w.kind)
}

// CoherentGain is the mean coefficient; a tone of amplitude A lands in its
// FFT bin with magnitude A*N*CoherentGain.
func (w *taper) CoherentGain() float64 {
	if len(w.coefficients) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range w.coefficients {
		sum += c
	}
	return sum / float64(len(w.coefficients))
}
