package spectral

import (
	"fmt"
	"strings"

	dspfft "github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Backend names an FFT implementation
type Backend string

const (
	// BackendGoDSP uses mjibson/go-dsp, which handles any length
	// (Bluestein for non powers of two)
	BackendGoDSP Backend = "godsp"

	// BackendGonum uses gonum's dsp/fourier (FFTPACK port)
	BackendGonum Backend = "gonum"
)

// ParseBackend validates a backend name. The empty string selects go-dsp.
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case "":
		return BackendGoDSP, nil
	case BackendGoDSP, BackendGonum:
		return b, nil
	default:
		return "", fmt.Errorf("unsupported fft backend %q", name)
	}
}

// FFT computes forward discrete Fourier transforms of complex I/Q frames.
// The unnormalized convention X[k] = sum x[n] e^{-j2pi kn/N} is used by both
// backends.
type FFT struct {
	backend Backend
}

// NewFFT creates an FFT calculator on the default go-dsp backend
func NewFFT() *FFT {
	return &FFT{backend: BackendGoDSP}
}

// NewFFTWithBackend creates an FFT calculator on the given backend
func NewFFTWithBackend(backend Backend) (*FFT, error) {
	b, err := ParseBackend(string(backend))
	if err != nil {
		return nil, err
	}
	return &FFT{backend: b}, nil
}

// Backend returns the backend in use
func (f *FFT) Backend() Backend {
	return f.backend
}

// Compute returns the DFT of x as a new slice; x is not modified
func (f *FFT) Compute(x []complex128) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	switch f.backend {
	case BackendGonum:
		return fourier.NewCmplxFFT(len(x)).Coefficients(nil, x)
	default:
		return dspfft.FFT(x)
	}
}
