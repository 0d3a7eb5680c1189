package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default().Validate(): %v", err)
	}
	if c.Analysis.SampleRate != 1e6 || c.Analysis.CenterFreq != 2.45e9 || c.Analysis.FFTSize != 4096 || c.Analysis.ThresholdK != 8 {
		t.Fatalf("unexpected analysis defaults: %+v", c.Analysis)
	}
	if c.Analysis.NoiseScale != 0.2 {
		t.Fatalf("noise scale=%v", c.Analysis.NoiseScale)
	}
	if c.Radar.Victim.Transmitter.Pulses != 4 || len(c.Radar.Targets) != 2 {
		t.Fatalf("unexpected radar defaults: %+v", c.Radar)
	}
}

func TestParseOverridesOnlyGivenKeys(t *testing.T) {
	c, err := Parse([]byte(`
analysis:
  sample_rate: 2.4e6
  threshold_k: 5
  window: blackman
input:
  format: cs16
radar:
  seed: 42
  targets:
    - location: {x: 12, y: 0, z: 0}
      rcs: 3
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Analysis.SampleRate != 2.4e6 || c.Analysis.ThresholdK != 5 || c.Analysis.Window != "blackman" {
		t.Fatalf("overrides not applied: %+v", c.Analysis)
	}
	if c.Analysis.FFTSize != 4096 || c.Analysis.CenterFreq != 2.45e9 {
		t.Fatalf("defaults lost: %+v", c.Analysis)
	}
	if c.Input.Format != "cs16" || c.Radar.Seed != 42 {
		t.Fatalf("input/radar overrides: %+v %+v", c.Input, c.Radar.Seed)
	}
	if len(c.Radar.Targets) != 1 || c.Radar.Targets[0].Location.X != 12 || c.Radar.Targets[0].RCS != 3 {
		t.Fatalf("targets=%+v", c.Radar.Targets)
	}
	if c.Radar.Victim.Receiver.SampleRate != 40e6 {
		t.Fatal("victim defaults lost")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"sample rate": "analysis: {sample_rate: 0}",
		"window":      "analysis: {window: triangle}",
		"backend":     "analysis: {fft_backend: fftw}",
		"noise scale": "analysis: {noise_scale: -1}",
		"format":      "input: {format: wav}",
		"level":       "logging: {level: loud}",
		"colors":      "logging: {colors: sometimes}",
		"victim":      "radar: {victim: {transmitter: {pulses: 0}}}",
		"size":        "output: {width: 0}",
		"hop":         "analysis: {hop: -1}",
		"frames":      "analysis: {frames: true, fft_size: 0}",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err=%v want ErrInvalidConfig", err)
			}
		})
	}
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("analysis: [not, a, map"))
	if err == nil || errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sonido.yaml")
	if err := os.WriteFile(path, []byte("analysis:\n  center_freq: 2.4e9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Analysis.CenterFreq != 2.4e9 {
		t.Fatalf("center=%v", c.Analysis.CenterFreq)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file err=%v", err)
	}
}
