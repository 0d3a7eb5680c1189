package radar

import (
	"context"
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

func TestSimulateShape(t *testing.T) {
	sim := NewFMCWSimulator(nil)
	res, err := sim.Simulate(context.Background(), VictimRadar(), DefaultTargets(), nil)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if res.Pulses() != 4 || len(res.Baseband[0]) != 640 || len(res.Timestamps[3]) != 640 {
		t.Fatalf("shape %dx%d", res.Pulses(), len(res.Baseband[0]))
	}
	if res.Interference != nil {
		t.Fatal("no interferer should leave Interference nil")
	}
	if res.SampleRate != 40e6 {
		t.Fatalf("sample rate=%v", res.SampleRate)
	}
}

func TestSimulateTargetsInRangeFFT(t *testing.T) {
	sim := NewFMCWSimulator(&SimulatorConfig{DisableNoise: true})
	victim := VictimRadar()
	res, err := sim.Simulate(context.Background(), victim, DefaultTargets(), nil)
	if err != nil {
		t.Fatal(err)
	}

	rp := ComputeRangeFFT(res.Baseband, res.SampleRate)
	ranges := rp.Ranges(victim)

	// the closer target is the strongest return, around 20 m
	peak := rp.PeakBin(0, 2)
	if math.Abs(ranges[peak]-20) > 1 {
		t.Fatalf("strongest return at %.2f m, want about 20 m", ranges[peak])
	}

	// the 30 m target sits on bin 40 and clearly above its neighbourhood
	if math.Abs(ranges[40]-30) > 0.5 {
		t.Fatalf("bin 40 is %.2f m", ranges[40])
	}
	mag := rp.MagnitudeDB[0]
	if mag[40] < mag[35]+10 || mag[40] < mag[45]+10 {
		t.Fatalf("30 m target not resolved: %.1f vs %.1f / %.1f dB", mag[40], mag[35], mag[45])
	}
}

func TestSimulatePulsePhaseCode(t *testing.T) {
	sim := NewFMCWSimulator(&SimulatorConfig{DisableNoise: true})
	victim := VictimRadar()
	victim.Transmitter.FrequencyOffsets = nil
	targets := []Target{{Location: Vec3{X: 25}, RCS: 0}}

	res, err := sim.Simulate(context.Background(), victim, targets, nil)
	if err != nil {
		t.Fatal(err)
	}
	// pulse 0 carries a 180 degree code, pulse 1 none; with equal sweeps
	// the first samples are opposite
	a, b := res.Baseband[0][0], res.Baseband[1][0]
	if cmplx.Abs(a+b) > 1e-9*cmplx.Abs(a) {
		t.Fatalf("pulse 0 %v not the negation of pulse 1 %v", a, b)
	}
}

func TestSimulateNoiseIsSeeded(t *testing.T) {
	run := func(seed uint64) [][]complex128 {
		res, err := NewFMCWSimulator(&SimulatorConfig{Seed: seed}).Simulate(context.Background(), VictimRadar(), nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		return res.Baseband
	}

	a, b, c := run(7), run(7), run(8)
	same, diff := true, false
	var power float64
	for p := range a {
		for i := range a[p] {
			if a[p][i] != b[p][i] {
				same = false
			}
			if a[p][i] != c[p][i] {
				diff = true
			}
			power += real(a[p][i] * cmplx.Conj(a[p][i]))
		}
	}
	if !same || !diff {
		t.Fatalf("seeding broken: same=%v diff=%v", same, diff)
	}

	// kTB*F over 40 MHz at 500 ohm with 80 dB of gain, about 0.11 V rms
	v := VictimRadar()
	want := Boltzmann * ReferenceTempK * v.Receiver.SampleRate * math.Pow(10, 0.2) * v.Receiver.LoadResistor * 1e8
	got := power / float64(len(a)*len(a[0]))
	if math.Abs(got-want)/want > 0.1 {
		t.Fatalf("noise power %v want about %v", got, want)
	}
}

func TestSimulateSilentWithoutTargetsOrNoise(t *testing.T) {
	res, err := NewFMCWSimulator(&SimulatorConfig{DisableNoise: true}).Simulate(context.Background(), VictimRadar(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, pulse := range res.Baseband {
		for _, s := range pulse {
			if s != 0 {
				t.Fatalf("expected silence, got %v", s)
			}
		}
	}
}

func TestSimulateInterference(t *testing.T) {
	sim := NewFMCWSimulator(&SimulatorConfig{DisableNoise: true})
	res, err := sim.Simulate(context.Background(), VictimRadar(), DefaultTargets(), InterfererRadar())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Interference) != 4 {
		t.Fatalf("interference pulses=%d", len(res.Interference))
	}

	var amp float64
	for p, pulse := range res.Interference {
		if len(pulse) != 640 {
			t.Fatalf("pulse %d has %d samples", p, len(pulse))
		}
		hits := 0
		for _, s := range pulse {
			if s == 0 {
				continue
			}
			hits++
			if amp == 0 {
				amp = cmplx.Abs(s)
			}
			if math.Abs(cmplx.Abs(s)-amp) > 1e-9*amp {
				t.Fatalf("interference amplitude varies: %v vs %v", cmplx.Abs(s), amp)
			}
		}
		// the sweeps cross inside the band once or twice per victim pulse
		if hits == 0 || hits == len(pulse) {
			t.Fatalf("pulse %d: %d interfered samples", p, hits)
		}
	}

	combined := Combine(res)
	if combined[0][0] != res.Baseband[0][0]+res.Interference[0][0] {
		t.Fatal("Combine mismatch")
	}
}

func TestSimulateErrors(t *testing.T) {
	sim := NewFMCWSimulator(nil)

	if _, err := sim.Simulate(context.Background(), nil, nil, nil); !errors.Is(err, ErrInvalidRadar) {
		t.Fatalf("nil victim err=%v", err)
	}

	bad := InterfererRadar()
	bad.Transmitter.Pulses = 0
	if _, err := sim.Simulate(context.Background(), VictimRadar(), nil, bad); !errors.Is(err, ErrInvalidRadar) {
		t.Fatalf("bad interferer err=%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sim.Simulate(ctx, VictimRadar(), DefaultTargets(), nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled err=%v", err)
	}
}
