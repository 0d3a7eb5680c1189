package analyzer

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-rf/algorithms/spectral"
	"github.com/RyanBlaney/sonido-rf/algorithms/windowing"
	"github.com/RyanBlaney/sonido-rf/internal/testutil"
	"github.com/RyanBlaney/sonido-rf/iq"
	"github.com/RyanBlaney/sonido-rf/logging"
)

const (
	testRate   = 1e6
	testCenter = 2.45e9
	testN      = 4096
)

func newTestAnalyzer(t *testing.T, cfg *Config) *SpectralAnalyzer {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.Logger = &logging.NoOpLogger{}
	a, err := NewSpectralAnalyzer(cfg)
	if err != nil {
		t.Fatalf("NewSpectralAnalyzer: %v", err)
	}
	return a
}

func toneWithFloor(bin int) iq.Buffer {
	return iq.Buffer(testutil.Add(
		testutil.Tone(testN, bin, 1),
		testutil.NoiseFloor(7, 0.01, testN),
	))
}

func TestNewSpectralAnalyzerDefaults(t *testing.T) {
	a, err := NewSpectralAnalyzer(nil)
	if err != nil {
		t.Fatalf("NewSpectralAnalyzer(nil): %v", err)
	}
	cfg := a.Config()
	if cfg.Window != windowing.TypeHann || cfg.Backend != spectral.BackendGoDSP || cfg.RemoveDC {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	// zero value resolves to the same pipeline
	a, err = NewSpectralAnalyzer(&Config{})
	if err != nil {
		t.Fatalf("NewSpectralAnalyzer(&Config{}): %v", err)
	}
	if cfg := a.Config(); cfg.Window != windowing.TypeHann || cfg.Backend != spectral.BackendGoDSP {
		t.Fatalf("zero config not resolved: %+v", cfg)
	}
}

func TestNewSpectralAnalyzerRejectsUnknownOptions(t *testing.T) {
	if _, err := NewSpectralAnalyzer(&Config{Window: "triangle"}); err == nil {
		t.Fatal("expected error for unknown window")
	}
	if _, err := NewSpectralAnalyzer(&Config{Backend: "fftw"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestInvalidSampleRate(t *testing.T) {
	a := newTestAnalyzer(t, nil)
	signal := iq.Buffer(testutil.Tone(64, 3, 1))

	for _, fs := range []float64{0, -1, math.NaN()} {
		if _, err := a.ComputeSpectrum(signal, fs, 0, 64); !errors.Is(err, ErrInvalidSampleRate) {
			t.Fatalf("ComputeSpectrum(fs=%v) err=%v, want ErrInvalidSampleRate", fs, err)
		}
		if _, err := a.DetectAnomalies(signal, fs, 0, 64, 8); !errors.Is(err, ErrInvalidSampleRate) {
			t.Fatalf("DetectAnomalies(fs=%v) err=%v, want ErrInvalidSampleRate", fs, err)
		}
	}
}

func TestSpectrumLength(t *testing.T) {
	a := newTestAnalyzer(t, nil)
	long := iq.Buffer(testutil.Tone(2*testN, 10, 1))

	tests := []struct {
		name    string
		signal  iq.Buffer
		fftSize int
		want    int
	}{
		{"truncated", long, testN, testN},
		{"whole signal", long, 0, 2 * testN},
		{"negative size is whole signal", long, -5, 2 * testN},
		{"short signal is not padded", long[:1000], testN, 1000},
		{"odd length", long[:17], 0, 17},
		{"single sample", long[:1], 8, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := a.ComputeSpectrum(tt.signal, testRate, testCenter, tt.fftSize)
			if err != nil {
				t.Fatalf("ComputeSpectrum: %v", err)
			}
			if s.Len() != tt.want || len(s.Frequencies) != tt.want || s.FFTSize != tt.want {
				t.Fatalf("len=%d freqs=%d fftSize=%d want %d", s.Len(), len(s.Frequencies), s.FFTSize, tt.want)
			}
			testutil.RequireFinite(t, s.MagnitudeDB)
		})
	}
}

func TestEmptySignal(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	s, err := a.ComputeSpectrum(iq.Buffer{}, testRate, testCenter, testN)
	if err != nil {
		t.Fatalf("ComputeSpectrum: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty spectrum, got %d bins", s.Len())
	}
	if _, _, ok := s.Peak(); ok {
		t.Fatal("empty spectrum should have no peak")
	}

	r, err := a.DetectAnomalies(nil, testRate, testCenter, testN, 8)
	if err != nil {
		t.Fatalf("DetectAnomalies: %v", err)
	}
	if r.Detected() {
		t.Fatalf("empty signal flagged %v", r.Anomalies)
	}
}

func TestFrequencyAxis(t *testing.T) {
	a := newTestAnalyzer(t, nil)
	s, err := a.ComputeSpectrum(toneWithFloor(0), testRate, testCenter, testN)
	if err != nil {
		t.Fatalf("ComputeSpectrum: %v", err)
	}

	df := testRate / testN
	if got := s.Frequencies[0]; got != testCenter-testRate/2 {
		t.Fatalf("first frequency=%v want %v", got, testCenter-testRate/2)
	}
	if got := s.Frequencies[testN/2]; got != testCenter {
		t.Fatalf("middle frequency=%v want %v", got, testCenter)
	}
	if got, want := s.Frequencies[testN-1], testCenter+testRate/2-df; math.Abs(got-want) > 1e-6 {
		t.Fatalf("last frequency=%v want %v", got, want)
	}
	for i := 1; i < testN; i++ {
		if d := s.Frequencies[i] - s.Frequencies[i-1]; math.Abs(d-df) > 1e-3 {
			t.Fatalf("step %d = %v want %v", i, d, df)
		}
	}
}

func TestSpectrumBins(t *testing.T) {
	a := newTestAnalyzer(t, nil)
	s, err := a.ComputeSpectrum(toneWithFloor(123), testRate, testCenter, testN)
	if err != nil {
		t.Fatalf("ComputeSpectrum: %v", err)
	}

	bins := s.Bins()
	if len(bins) != s.Len() || len(bins) != testN {
		t.Fatalf("len(Bins())=%d, Len()=%d, want %d", len(bins), s.Len(), testN)
	}
	for i, b := range bins {
		if b.Frequency != s.Frequencies[i] || b.MagnitudeDB != s.MagnitudeDB[i] {
			t.Fatalf("bin %d = %+v, want {%v %v}", i, b, s.Frequencies[i], s.MagnitudeDB[i])
		}
	}

	peak, idx, _ := s.Peak()
	if bins[idx] != peak {
		t.Fatalf("Bins()[%d]=%+v, Peak()=%+v", idx, bins[idx], peak)
	}

	if got := (&Spectrum{}).Bins(); len(got) != 0 {
		t.Fatalf("empty spectrum bins=%v", got)
	}
}

func TestTonePeakLandsOnShiftedBin(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	for _, bin := range []int{-700, -1, 0, 123, 1500} {
		s, err := a.ComputeSpectrum(toneWithFloor(bin), testRate, testCenter, testN)
		if err != nil {
			t.Fatalf("ComputeSpectrum: %v", err)
		}

		peak, idx, ok := s.Peak()
		if !ok {
			t.Fatal("no peak")
		}
		if idx != testN/2+bin {
			t.Fatalf("bin %d: peak at index %d, want %d", bin, idx, testN/2+bin)
		}
		wantFreq := testCenter + float64(bin)*testRate/testN
		if math.Abs(peak.Frequency-wantFreq) > 1e-3 {
			t.Fatalf("bin %d: peak frequency %v want %v", bin, peak.Frequency, wantFreq)
		}
		// unit tone through a symmetric Hann window: |X| is close to N/2
		if want := 20 * math.Log10(testN/2); math.Abs(peak.MagnitudeDB-want) > 0.1 {
			t.Fatalf("bin %d: peak %.3f dB want about %.3f dB", bin, peak.MagnitudeDB, want)
		}
	}
}

func TestDetectToneAboveFloor(t *testing.T) {
	a := newTestAnalyzer(t, nil)
	const bin = 300

	r, err := a.DetectAnomalies(toneWithFloor(bin), testRate, testCenter, testN, DefaultThresholdMultiplier)
	if err != nil {
		t.Fatalf("DetectAnomalies: %v", err)
	}
	if !r.Detected() {
		t.Fatal("tone was not detected")
	}

	target := testN/2 + bin
	found := false
	for _, an := range r.Anomalies {
		if an.Index == target {
			found = true
		}
		if an.Index < target-1 || an.Index > target+1 {
			t.Fatalf("flagged bin %d outside the tone main lobe", an.Index)
		}
		if !(an.Power > r.Threshold) {
			t.Fatalf("flagged bin %d has power %v <= threshold %v", an.Index, an.Power, r.Threshold)
		}
		if an.Frequency != r.Frequencies[an.Index] || an.Power != r.Power[an.Index] {
			t.Fatalf("anomaly %+v disagrees with the power series", an)
		}
	}
	if !found {
		t.Fatalf("tone bin %d not flagged: %v", target, r.Indices())
	}

	low, high, ok := r.Span()
	if !ok || low > high {
		t.Fatalf("span=(%v,%v,%v)", low, high, ok)
	}
	if r.K != DefaultThresholdMultiplier {
		t.Fatalf("k=%v", r.K)
	}
}

func TestDetectThresholdArithmetic(t *testing.T) {
	a := newTestAnalyzer(t, nil)
	r, err := a.DetectAnomalies(toneWithFloor(-42), testRate, testCenter, testN, 3)
	if err != nil {
		t.Fatalf("DetectAnomalies: %v", err)
	}

	var sum float64
	for _, p := range r.Power {
		sum += p
	}
	mean := sum / float64(len(r.Power))
	var ss float64
	for _, p := range r.Power {
		ss += (p - mean) * (p - mean)
	}
	std := math.Sqrt(ss / float64(len(r.Power)))

	if math.Abs(r.MeanPower-mean) > 1e-9*mean {
		t.Fatalf("mean=%v want %v", r.MeanPower, mean)
	}
	if math.Abs(r.StdDevPower-std) > 1e-9*std {
		t.Fatalf("std=%v want %v", r.StdDevPower, std)
	}
	if want := r.MeanPower + 3*r.StdDevPower; r.Threshold != want {
		t.Fatalf("threshold=%v want %v", r.Threshold, want)
	}

	flagged := 0
	for i, p := range r.Power {
		if p > r.Threshold {
			if flagged >= len(r.Anomalies) || r.Anomalies[flagged].Index != i {
				t.Fatalf("bin %d above threshold missing or out of order", i)
			}
			flagged++
		}
	}
	if flagged != len(r.Anomalies) {
		t.Fatalf("flagged %d bins, result has %d", flagged, len(r.Anomalies))
	}
}

func TestDetectZerosFlagsNothing(t *testing.T) {
	a := newTestAnalyzer(t, nil)
	r, err := a.DetectAnomalies(make(iq.Buffer, testN), testRate, testCenter, testN, 8)
	if err != nil {
		t.Fatalf("DetectAnomalies: %v", err)
	}
	if r.Detected() {
		t.Fatalf("zeros flagged %v", r.Indices())
	}
	if r.Threshold != 0 || r.StdDevPower != 0 {
		t.Fatalf("threshold=%v std=%v, want 0", r.Threshold, r.StdDevPower)
	}
}

func TestDetectFlatSpectrum(t *testing.T) {
	// An impulse through a rectangular window has |X|^2 == 1 everywhere, so
	// std is zero and no bin is strictly above the mean
	a := newTestAnalyzer(t, &Config{Window: windowing.TypeRectangular})
	impulse := make(iq.Buffer, 64)
	impulse[0] = 1

	r, err := a.DetectAnomalies(impulse, testRate, 0, 0, 8)
	if err != nil {
		t.Fatalf("DetectAnomalies: %v", err)
	}
	if r.Detected() {
		t.Fatalf("flat spectrum flagged %v", r.Indices())
	}
	if r.Threshold != r.MeanPower || r.MeanPower != 1 {
		t.Fatalf("threshold=%v mean=%v, want both 1", r.Threshold, r.MeanPower)
	}
}

func TestDetectDCOffsetAtCenter(t *testing.T) {
	a := newTestAnalyzer(t, nil)
	signal := make(iq.Buffer, testN)
	for i := range signal {
		signal[i] = 0.5 + 0.5i
	}

	r, err := a.DetectAnomalies(signal, testRate, testCenter, testN, 8)
	if err != nil {
		t.Fatalf("DetectAnomalies: %v", err)
	}
	idx := r.Indices()
	if len(idx) == 0 {
		t.Fatal("DC offset not flagged")
	}
	for _, i := range idx {
		if i < testN/2-1 || i > testN/2+1 {
			t.Fatalf("flagged %v, expected only the center bins", idx)
		}
	}

	// removing the offset leaves nothing to find
	a = newTestAnalyzer(t, &Config{RemoveDC: true})
	r, err = a.DetectAnomalies(signal, testRate, testCenter, testN, 8)
	if err != nil {
		t.Fatalf("DetectAnomalies: %v", err)
	}
	if r.Detected() {
		t.Fatalf("flagged %v after mean removal", r.Indices())
	}
}

func TestDCBlockerKeepsTone(t *testing.T) {
	a := newTestAnalyzer(t, &Config{RemoveDC: true, DCCutoffHz: 1000})
	signal := toneWithFloor(500)
	for i := range signal {
		signal[i] += 2
	}

	s, err := a.ComputeSpectrum(signal, testRate, testCenter, testN)
	if err != nil {
		t.Fatalf("ComputeSpectrum: %v", err)
	}
	if _, idx, _ := s.Peak(); idx != testN/2+500 {
		t.Fatalf("peak at %d, want tone bin %d", idx, testN/2+500)
	}
}

func TestAnalyzerIsPure(t *testing.T) {
	a := newTestAnalyzer(t, nil)
	signal := toneWithFloor(77)
	before := signal.Clone()

	r1, err := a.DetectAnomalies(signal, testRate, testCenter, testN, 8)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := a.DetectAnomalies(signal, testRate, testCenter, testN, 8)
	if err != nil {
		t.Fatal(err)
	}

	if len(r1.Power) != len(r2.Power) || r1.Threshold != r2.Threshold {
		t.Fatal("repeated detections differ")
	}
	for i := range r1.Power {
		if r1.Power[i] != r2.Power[i] {
			t.Fatalf("power[%d] differs between calls", i)
		}
	}
	for i := range signal {
		if signal[i] != before[i] {
			t.Fatalf("input modified at %d", i)
		}
	}
}

func TestBackendsAgree(t *testing.T) {
	godsp := newTestAnalyzer(t, &Config{Backend: spectral.BackendGoDSP})
	gonum := newTestAnalyzer(t, &Config{Backend: spectral.BackendGonum})
	signal := iq.Buffer(testutil.Add(testutil.Tone(1000, 40, 1), testutil.GaussianNoise(3, 0.1, 1000)))

	a, err := godsp.ComputeSpectrum(signal, testRate, testCenter, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := gonum.ComputeSpectrum(signal, testRate, testCenter, 0)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, a.MagnitudeDB, b.MagnitudeDB, 1e-6)
}
