// Package config loads sonido-rf settings from YAML. Load starts from
// Default, so a file only needs the keys it changes.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-rf/algorithms/spectral"
	"github.com/RyanBlaney/sonido-rf/algorithms/windowing"
	"github.com/RyanBlaney/sonido-rf/logging"
	"github.com/RyanBlaney/sonido-rf/radar"
	"github.com/RyanBlaney/sonido-rf/transcode"
)

// ErrInvalidConfig is wrapped by every Validate failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the application configuration
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
	Radar    RadarConfig    `yaml:"radar"`
}

// AnalysisConfig drives the spectrum and detection pipeline
type AnalysisConfig struct {
	SampleRate float64 `yaml:"sample_rate"`
	CenterFreq float64 `yaml:"center_freq"`
	FFTSize    int     `yaml:"fft_size"` // <= 0 uses the whole capture
	ThresholdK float64 `yaml:"threshold_k"`
	Window     string  `yaml:"window"`
	FFTBackend string  `yaml:"fft_backend"`
	RemoveDC   bool    `yaml:"remove_dc"`
	DCCutoffHz float64 `yaml:"dc_cutoff_hz"`
	NoiseScale float64 `yaml:"noise_scale"` // weight of the noise capture when combining

	// Frames scans the whole capture in FFTSize frames, Hop samples apart
	// (0 = back to back), instead of only its first FFTSize samples
	Frames bool `yaml:"frames"`
	Hop    int  `yaml:"hop"`
}

// InputConfig describes capture files
type InputConfig struct {
	Format     string `yaml:"format"` // empty infers from the extension
	MaxSamples int    `yaml:"max_samples"`
}

// OutputConfig controls rendered figures
type OutputConfig struct {
	Plot   string  `yaml:"plot"`   // empty disables plotting for detect
	Width  float64 `yaml:"width"`  // cm
	Height float64 `yaml:"height"` // cm, per panel
}

// LoggingConfig selects the log level and coloring
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Colors string `yaml:"colors"` // auto, always, never
}

// RadarConfig is the simulation scenario
type RadarConfig struct {
	Victim       radar.Radar    `yaml:"victim"`
	Interferer   radar.Radar    `yaml:"interferer"`
	Targets      []radar.Target `yaml:"targets"`
	Seed         uint64         `yaml:"seed"`
	DisableNoise bool           `yaml:"disable_noise"`
}

// Default returns the built-in configuration: a 1 MS/s capture centered on
// 2.45 GHz, a 4096-point Hann FFT, k = 8, and the stock radar scenario.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			SampleRate: 1e6,
			CenterFreq: 2.45e9,
			FFTSize:    4096,
			ThresholdK: 8,
			Window:     string(windowing.TypeHann),
			FFTBackend: string(spectral.BackendGoDSP),
			NoiseScale: 0.2,
		},
		Input: InputConfig{
			Format: "",
		},
		Output: OutputConfig{
			Width:  35,
			Height: 15,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Colors: "auto",
		},
		Radar: RadarConfig{
			Victim:     *radar.VictimRadar(),
			Interferer: *radar.InterfererRadar(),
			Targets:    radar.DefaultTargets(),
			Seed:       1,
		},
	}
}

// Load reads filename over the defaults and validates the result
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, err
	}

	logging.Debug("Configuration loaded", logging.Fields{
		"component": "config",
		"file":      filename,
	})
	return config, nil
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks every section
func (c *Config) Validate() error {
	a := c.Analysis
	if !(a.SampleRate > 0) {
		return fmt.Errorf("%w: analysis.sample_rate must be positive: %v", ErrInvalidConfig, a.SampleRate)
	}
	if a.NoiseScale < 0 {
		return fmt.Errorf("%w: analysis.noise_scale must be non-negative: %v", ErrInvalidConfig, a.NoiseScale)
	}
	if a.Frames && a.FFTSize <= 0 {
		return fmt.Errorf("%w: analysis.frames requires a positive fft_size", ErrInvalidConfig)
	}
	if a.Hop < 0 {
		return fmt.Errorf("%w: analysis.hop must be non-negative: %d", ErrInvalidConfig, a.Hop)
	}
	if a.DCCutoffHz < 0 || a.DCCutoffHz >= a.SampleRate/2 {
		return fmt.Errorf("%w: analysis.dc_cutoff_hz out of range: %v", ErrInvalidConfig, a.DCCutoffHz)
	}
	if _, err := windowing.ParseType(a.Window); err != nil {
		return fmt.Errorf("%w: analysis.window: %v", ErrInvalidConfig, err)
	}
	if _, err := spectral.ParseBackend(a.FFTBackend); err != nil {
		return fmt.Errorf("%w: analysis.fft_backend: %v", ErrInvalidConfig, err)
	}

	if c.Input.Format != "" {
		if _, err := transcode.ParseFormat(c.Input.Format); err != nil {
			return fmt.Errorf("%w: input.format: %v", ErrInvalidConfig, err)
		}
	}
	if c.Input.MaxSamples < 0 {
		return fmt.Errorf("%w: input.max_samples must be non-negative: %d", ErrInvalidConfig, c.Input.MaxSamples)
	}

	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return fmt.Errorf("%w: output width and height must be positive", ErrInvalidConfig)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalidConfig, err)
	}
	switch c.Logging.Colors {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("%w: logging.colors must be auto, always or never: %q", ErrInvalidConfig, c.Logging.Colors)
	}

	if err := c.Radar.Victim.Validate(); err != nil {
		return fmt.Errorf("%w: radar.victim: %v", ErrInvalidConfig, err)
	}
	if err := c.Radar.Interferer.Validate(); err != nil {
		return fmt.Errorf("%w: radar.interferer: %v", ErrInvalidConfig, err)
	}

	return nil
}
