package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-rf/analyzer"
	"github.com/RyanBlaney/sonido-rf/config"
	"github.com/RyanBlaney/sonido-rf/internal/testutil"
	"github.com/RyanBlaney/sonido-rf/iq"
	"github.com/RyanBlaney/sonido-rf/logging"
	"github.com/RyanBlaney/sonido-rf/transcode"
)

func TestMain(m *testing.M) {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
	os.Exit(m.Run())
}

func writeCapture(t *testing.T, name string, samples []complex128) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	enc, err := transcode.NewEncoder(transcode.FormatCF32, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.EncodeFile(path, iq.Buffer(samples)); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetectReportsTone(t *testing.T) {
	scan := writeCapture(t, "scan.cf32", testutil.Tone(4096, 300, 1))

	var out bytes.Buffer
	result, err := runDetect(config.Default(), scan, "", &out, false)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := result.Indices(), []int{2347, 2348, 2349}; !slices.Equal(got, want) {
		t.Fatalf("flagged bins=%v want=%v", got, want)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 detections, got %q", out.String())
	}
	if lines[0] != analyzer.WarningHeader {
		t.Fatalf("header=%q", lines[0])
	}
	if lines[2] != "2450073242.19 Hz (Power: 4.19e+06)" {
		t.Fatalf("peak line=%q", lines[2])
	}
	if strings.Contains(out.String(), "\033[") {
		t.Fatal("colors disabled but escape codes written")
	}
}

func TestDetectWithNoiseOverlay(t *testing.T) {
	scan := writeCapture(t, "scan.cf32", testutil.Tone(4096, 300, 3))
	noise := writeCapture(t, "noise.cf32", testutil.GaussianNoise(7, 1, 4096))

	var out bytes.Buffer
	result, err := runDetect(config.Default(), scan, noise, &out, false)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := result.Indices(), []int{2347, 2348, 2349}; !slices.Equal(got, want) {
		t.Fatalf("flagged bins=%v want=%v", got, want)
	}
	if !strings.HasPrefix(out.String(), analyzer.WarningHeader) {
		t.Fatalf("unexpected report %q", out.String())
	}
}

func TestDetectNoiseOverlayNormalizesTruncatedScan(t *testing.T) {
	// The spike lies past the noise length, so it must not set the scan's peak.
	samples := make([]complex128, 8192)
	copy(samples, testutil.Tone(4096, 300, 1))
	samples[6000] = 100
	scan := writeCapture(t, "scan.cf32", samples)
	noise := writeCapture(t, "noise.cf32", testutil.GaussianNoise(7, 1, 4096))

	result, err := runDetect(config.Default(), scan, noise, &bytes.Buffer{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := result.Indices(), []int{2347, 2348, 2349}; !slices.Equal(got, want) {
		t.Fatalf("flagged bins=%v want=%v", got, want)
	}

	peak := 0.0
	for _, a := range result.Anomalies {
		peak = max(peak, a.Power)
	}
	// unit-peak tone under a symmetric Hann window: (sum w)^2 ~ 4.19e6
	if peak < 3e6 {
		t.Fatalf("peak power=%.3e, scan was not normalized over the analyzed span", peak)
	}
}

func TestDetectCleanCapture(t *testing.T) {
	scan := writeCapture(t, "silence.cf32", make([]complex128, 4096))

	var out bytes.Buffer
	result, err := runDetect(config.Default(), scan, "", &out, true)
	if err != nil {
		t.Fatal(err)
	}
	if result.Detected() {
		t.Fatalf("silence flagged %d bins", len(result.Anomalies))
	}
	if out.String() != analyzer.NoJamming+"\n" {
		t.Fatalf("report=%q", out.String())
	}
}

func TestDetectWritesPlot(t *testing.T) {
	scan := writeCapture(t, "scan.cf32", testutil.Tone(4096, 300, 1))
	cfg := config.Default()
	cfg.Output.Plot = filepath.Join(t.TempDir(), "detect.png")

	if _, err := runDetect(cfg, scan, "", &bytes.Buffer{}, false); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(cfg.Output.Plot)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatal("plot is not a PNG")
	}
}

func TestDetectFrames(t *testing.T) {
	signal := make([]complex128, 4096)
	copy(signal[2048:], testutil.Tone(1024, 64, 1))
	scan := writeCapture(t, "burst.cf32", signal)

	cfg := config.Default()
	cfg.Analysis.Frames = true
	cfg.Analysis.FFTSize = 1024
	cfg.Output.Plot = filepath.Join(t.TempDir(), "waterfall.png")

	var out bytes.Buffer
	if _, err := runDetect(cfg, scan, "", &out, false); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(out.String(), "\n")
	if lines[0] != "Frame 2 at 0.002048 s:" || lines[1] != analyzer.WarningHeader {
		t.Fatalf("unexpected report %q", out.String())
	}
	if strings.Count(out.String(), "Frame ") != 1 {
		t.Fatalf("only the burst frame should be reported: %q", out.String())
	}
	if _, err := os.Stat(cfg.Output.Plot); err != nil {
		t.Fatal(err)
	}
}

func TestDetectMissingFile(t *testing.T) {
	_, err := runDetect(config.Default(), filepath.Join(t.TempDir(), "absent.dat"), "", &bytes.Buffer{}, false)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestCombineTruncatesAndPlots(t *testing.T) {
	scan := writeCapture(t, "scan.cf32", testutil.Tone(2048, 40, 5))
	noise := writeCapture(t, "noise.cf32", testutil.GaussianNoise(3, 1, 1024))

	cfg := config.Default()
	cfg.Analysis.CenterFreq = defaultCombineCenterFreq
	cfg.Output.Plot = filepath.Join(t.TempDir(), "combined.svg")

	var out bytes.Buffer
	spectrum, err := runCombine(cfg, scan, noise, &out)
	if err != nil {
		t.Fatal(err)
	}

	if spectrum.Len() != 1024 {
		t.Fatalf("spectrum length=%d want=1024", spectrum.Len())
	}
	if spectrum.CenterFreq != 2.4e9 {
		t.Fatalf("center=%v", spectrum.CenterFreq)
	}
	if _, err := os.Stat(cfg.Output.Plot); err != nil {
		t.Fatal(err)
	}
	if want := "Visualization saved as '" + cfg.Output.Plot + "'\n"; out.String() != want {
		t.Fatalf("output=%q want=%q", out.String(), want)
	}
}

func TestRadarVictimHTML(t *testing.T) {
	cfg := config.Default()
	cfg.Radar.DisableNoise = true
	cfg.Output.Plot = filepath.Join(t.TempDir(), "victim.html")

	var out bytes.Buffer
	if err := runRadar(context.Background(), cfg, false, "", &out); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(cfg.Output.Plot)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Fatal("page has no figure")
	}
	if !strings.Contains(out.String(), "Visualization saved as '") {
		t.Fatalf("output=%q", out.String())
	}
}

func TestRadarJammedExportsCapture(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Radar.DisableNoise = true
	cfg.Output.Plot = filepath.Join(dir, "jammed.png")
	export := filepath.Join(dir, "jammed.cf32")

	if err := runRadar(context.Background(), cfg, true, export, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	data, err := transcode.NewDecoder(nil).DecodeFile(export)
	if err != nil {
		t.Fatal(err)
	}
	v := cfg.Radar.Victim
	if want := v.Transmitter.Pulses * v.SamplesPerPulse(); data.SampleCount != want {
		t.Fatalf("exported %d samples want=%d", data.SampleCount, want)
	}
	if data.Samples.MaxAbs() == 0 {
		t.Fatal("exported capture is silent")
	}
}

func TestRadarCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.Default()
	cfg.Output.Plot = filepath.Join(t.TempDir(), "never.html")
	err := runRadar(ctx, cfg, false, "", &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, statErr := os.Stat(cfg.Output.Plot); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("plot written for a canceled run")
	}
}

func TestParseSampleRate(t *testing.T) {
	if sr, err := parseSampleRate("2e6"); err != nil || sr != 2e6 {
		t.Fatalf("parseSampleRate(2e6)=%v, %v", sr, err)
	}
	for _, bad := range []string{"abc", "0", "-1", "NaN"} {
		if _, err := parseSampleRate(bad); err == nil {
			t.Fatalf("parseSampleRate(%q) should fail", bad)
		}
	}
}

func TestCommandArgs(t *testing.T) {
	tests := [][]string{
		{"detect"},
		{"detect", "a.dat", "1e6", "extra"},
		{"combine", "scan.dat", "noise.dat"},
		{"radar", "victim", "unexpected"},
	}

	for _, args := range tests {
		var buf bytes.Buffer
		rootCmd.SetOut(&buf)
		rootCmd.SetErr(&buf)
		rootCmd.SetArgs(args)
		if err := rootCmd.Execute(); err == nil {
			t.Fatalf("%v: expected an argument error", args)
		}
		if !strings.Contains(buf.String(), "Usage:") {
			t.Fatalf("%v: usage not printed: %q", args, buf.String())
		}
	}
}
