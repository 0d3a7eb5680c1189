// Package analyzer turns I/Q buffers into centered magnitude spectra and
// flags bins whose power stands out from the rest of the band, which is how
// wideband jamming and narrowband interferers show up in a capture.
package analyzer

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-rf/algorithms/common"
	"github.com/RyanBlaney/sonido-rf/algorithms/filters"
	"github.com/RyanBlaney/sonido-rf/algorithms/spectral"
	"github.com/RyanBlaney/sonido-rf/algorithms/windowing"
	"github.com/RyanBlaney/sonido-rf/iq"
	"github.com/RyanBlaney/sonido-rf/logging"
)

// DefaultThresholdMultiplier is the number of standard deviations above the
// mean power a bin must exceed to be flagged
const DefaultThresholdMultiplier = 8.0

// ErrInvalidSampleRate is returned for non-positive sample rates
var ErrInvalidSampleRate = errors.New("sample rate must be positive")

// Config selects the pre-processing around the FFT. The zero value is the
// plain pipeline: Hann window, go-dsp FFT, no DC handling.
type Config struct {
	Window  windowing.Type   `json:"window"`
	Backend spectral.Backend `json:"fft_backend"`

	// RemoveDC strips the I/Q offset before windowing. With DCCutoffHz > 0 a
	// recursive DC blocker with that cutoff is used, otherwise the capture
	// mean is subtracted.
	RemoveDC   bool    `json:"remove_dc"`
	DCCutoffHz float64 `json:"dc_cutoff_hz"`

	Logger logging.Logger `json:"-"`
}

// DefaultConfig returns the plain pipeline configuration
func DefaultConfig() *Config {
	return &Config{
		Window:  windowing.TypeHann,
		Backend: spectral.BackendGoDSP,
	}
}

// SpectralAnalyzer computes spectra and threshold detections. It holds no
// per-call state, so every method is a pure function of its arguments.
type SpectralAnalyzer struct {
	config *Config
	fft    *spectral.FFT
	power  *spectral.PowerSpectrum
	logger logging.Logger
}

// NewSpectralAnalyzer validates cfg (nil means DefaultConfig) and builds an
// analyzer
func NewSpectralAnalyzer(cfg *Config) (*SpectralAnalyzer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	window, err := windowing.ParseType(string(cfg.Window))
	if err != nil {
		return nil, err
	}
	fft, err := spectral.NewFFTWithBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}

	resolved := *cfg
	resolved.Window = window
	resolved.Backend = fft.Backend()

	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return &SpectralAnalyzer{
		config: &resolved,
		fft:    fft,
		power:  spectral.NewPowerSpectrum(),
		logger: logger.WithFields(logging.Fields{
			"component": "spectral_analyzer",
		}),
	}, nil
}

// Config returns a copy of the resolved configuration
func (a *SpectralAnalyzer) Config() Config {
	return *a.config
}

// removeDC applies the configured DC handling, if any
func (a *SpectralAnalyzer) removeDC(signal iq.Buffer, sampleRate float64) []complex128 {
	frame := []complex128(signal)
	if !a.config.RemoveDC {
		return frame
	}
	if a.config.DCCutoffHz > 0 {
		return filters.NewDCRemovalWithCutoff(sampleRate, a.config.DCCutoffHz).ProcessBuffer(frame)
	}
	return filters.SubtractMean(frame)
}

// transform runs truncate -> (DC removal) -> window -> FFT -> shift. fftSize
// <= 0 uses the whole signal; a shorter signal is used as-is, never padded.
func (a *SpectralAnalyzer) transform(signal iq.Buffer, sampleRate float64, fftSize int) ([]complex128, error) {
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	frame := a.removeDC(signal.Head(fftSize), sampleRate)

	window, err := windowing.New(a.config.Window, len(frame))
	if err != nil {
		return nil, err
	}
	windowed, err := window.ApplyComplex(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to apply %s window: %w", window.GetType(), err)
	}

	return spectral.Shift(a.fft.Compute(windowed)), nil
}

// ComputeSpectrum returns the centered dB magnitude spectrum of the first
// fftSize samples (all samples when fftSize <= 0), with the frequency axis
// offset by centerFreq.
func (a *SpectralAnalyzer) ComputeSpectrum(signal iq.Buffer, sampleRate, centerFreq float64, fftSize int) (*Spectrum, error) {
	bins, err := a.transform(signal, sampleRate, fftSize)
	if err != nil {
		return nil, err
	}

	spectrum := &Spectrum{
		Frequencies: spectral.CenteredFrequencies(len(bins), sampleRate, centerFreq),
		MagnitudeDB: a.power.MagnitudeDB(bins),
		SampleRate:  sampleRate,
		CenterFreq:  centerFreq,
		FFTSize:     len(bins),
	}

	a.logger.Debug("Spectrum computed", logging.Fields{
		"bins":        len(bins),
		"sample_rate": sampleRate,
		"center_freq": centerFreq,
		"window":      a.config.Window,
		"backend":     a.config.Backend,
	})

	return spectrum, nil
}

// DetectAnomalies flags every bin whose power |X|^2 is strictly greater than
// mean(power) + k*std(power), std being the population standard deviation.
// A flat power spectrum gives threshold == mean and therefore no detections.
func (a *SpectralAnalyzer) DetectAnomalies(signal iq.Buffer, sampleRate, centerFreq float64, fftSize int, k float64) (*DetectionResult, error) {
	bins, err := a.transform(signal, sampleRate, fftSize)
	if err != nil {
		return nil, err
	}

	power := a.power.Compute(bins)
	freqs := spectral.CenteredFrequencies(len(bins), sampleRate, centerFreq)
	result := threshold(power, freqs, k)

	a.logger.Debug("Anomaly detection completed", logging.Fields{
		"bins":      len(bins),
		"mean":      result.MeanPower,
		"std_dev":   result.StdDevPower,
		"k":         k,
		"threshold": result.Threshold,
		"flagged":   len(result.Anomalies),
	})

	return result, nil
}

// threshold applies the mean + k*std rule to one power series
func threshold(power, freqs []float64, k float64) *DetectionResult {
	mean, std := common.PopMeanStdDev(power)
	limit := mean + k*std

	anomalies := make([]Anomaly, 0)
	for i, p := range power {
		if p > limit {
			anomalies = append(anomalies, Anomaly{Index: i, Frequency: freqs[i], Power: p})
		}
	}

	return &DetectionResult{
		Anomalies:   anomalies,
		Threshold:   limit,
		MeanPower:   mean,
		StdDevPower: std,
		K:           k,
		Frequencies: freqs,
		Power:       power,
	}
}
