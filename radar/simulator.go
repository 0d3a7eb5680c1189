package radar

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/RyanBlaney/sonido-rf/logging"
)

// Boltzmann constant (J/K) and the reference noise temperature (K)
const (
	Boltzmann        = 1.380649e-23
	ReferenceTempK   = 290.0
	defaultNoiseSeed = 1
)

// SimulationResult is the victim's view of one frame, pulse x sample.
// Interference is nil when no interferer was simulated.
type SimulationResult struct {
	Timestamps   [][]float64    `json:"timestamps"`
	Baseband     [][]complex128 `json:"-"`
	Interference [][]complex128 `json:"-"`
	SampleRate   float64        `json:"sample_rate"`
}

// Pulses returns the number of pulses in the frame
func (r *SimulationResult) Pulses() int {
	return len(r.Baseband)
}

// Simulator produces victim baseband for a set of targets and an optional
// interferer (nil for none)
type Simulator interface {
	Simulate(ctx context.Context, victim *Radar, targets []Target, interferer *Radar) (*SimulationResult, error)
}

// SimulatorConfig holds FMCW simulator configuration
type SimulatorConfig struct {
	// Seed for the receiver noise; equal seeds give identical frames
	Seed uint64 `json:"seed"`

	// DisableNoise leaves thermal noise out of the baseband
	DisableNoise bool `json:"disable_noise"`
}

// DefaultSimulatorConfig returns default simulator configuration
func DefaultSimulatorConfig() *SimulatorConfig {
	return &SimulatorConfig{Seed: defaultNoiseSeed}
}

// FMCWSimulator is a de-chirped point-target model of a linear FMCW radar.
// Each target contributes a tone at its beat frequency with radar-equation
// amplitude; an interferer leaks into the receiver whenever its chirp is
// within the victim's sampled band.
type FMCWSimulator struct {
	config *SimulatorConfig
}

// NewFMCWSimulator creates a simulator; nil config means defaults
func NewFMCWSimulator(config *SimulatorConfig) *FMCWSimulator {
	if config == nil {
		config = DefaultSimulatorConfig()
	}
	return &FMCWSimulator{config: config}
}

// Simulate runs one frame. ctx is checked between pulses.
func (s *FMCWSimulator) Simulate(ctx context.Context, victim *Radar, targets []Target, interferer *Radar) (*SimulationResult, error) {
	logger := logging.WithContext(ctx).WithFields(logging.Fields{
		"component": "fmcw_simulator",
		"function":  "Simulate",
		"targets":   len(targets),
	})

	if victim == nil {
		return nil, fmt.Errorf("%w: victim radar is required", ErrInvalidRadar)
	}
	if err := victim.Validate(); err != nil {
		return nil, fmt.Errorf("victim: %w", err)
	}
	if interferer != nil {
		if err := interferer.Validate(); err != nil {
			return nil, fmt.Errorf("interferer: %w", err)
		}
	}

	pulses := victim.Transmitter.Pulses
	n := victim.SamplesPerPulse()
	fs := victim.Receiver.SampleRate

	result := &SimulationResult{
		Timestamps: victim.Timestamps(),
		Baseband:   make([][]complex128, pulses),
		SampleRate: fs,
	}
	if interferer != nil {
		result.Interference = make([][]complex128, pulses)
	}

	noise := s.noiseSource(victim)

	for p := range pulses {
		if err := ctx.Err(); err != nil {
			logger.Warn("Simulation cancelled", logging.Fields{"pulse": p})
			return nil, err
		}

		pulse := make([]complex128, n)
		for _, tgt := range targets {
			addTargetEcho(pulse, victim, tgt, p, result.Timestamps[p])
		}
		if noise != nil {
			for i := range pulse {
				pulse[i] += complex(noise.Rand(), noise.Rand())
			}
		}
		result.Baseband[p] = pulse

		if interferer != nil {
			result.Interference[p] = interferencePulse(victim, interferer, p, result.Timestamps[p])
		}
	}

	logger.Debug("Simulation completed", logging.Fields{
		"pulses":            pulses,
		"samples_per_pulse": n,
		"sample_rate":       fs,
		"interference":      interferer != nil,
		"noise":             noise != nil,
	})

	return result, nil
}

// receiverGain is the voltage gain of the RF and baseband stages
func receiverGain(r *Radar) float64 {
	return math.Pow(10, (r.Receiver.RFGain+r.Receiver.BasebandGain)/20)
}

// dBmToWatts converts transmit power
func dBmToWatts(dbm float64) float64 {
	return math.Pow(10, (dbm-30)/10)
}

// noiseSource returns a per-component Gaussian for the receiver thermal
// noise kTB*F over the sampled bandwidth, or nil when noise is disabled
func (s *FMCWSimulator) noiseSource(r *Radar) *distuv.Normal {
	if s.config.DisableNoise {
		return nil
	}

	f := math.Pow(10, r.Receiver.NoiseFigure/10)
	power := Boltzmann * ReferenceTempK * r.Receiver.SampleRate * f
	vrms := math.Sqrt(power*r.Receiver.LoadResistor) * receiverGain(r)

	return &distuv.Normal{
		Mu:    0,
		Sigma: vrms / math.Sqrt2,
		Src:   rand.NewPCG(s.config.Seed, s.config.Seed^0x5851f42d4c957f2d),
	}
}

// addTargetEcho accumulates one target's de-chirped echo into pulse.
// The beat phase is 2*pi*(f_p*tau + k*tau*t - k*tau^2/2) with tau the
// two-way delay at the absolute sample time, so range migration and Doppler
// both come out of the moving target position.
func addTargetEcho(pulse []complex128, r *Radar, tgt Target, p int, timestamps []float64) {
	lambda := r.Wavelength()
	pt := dBmToWatts(r.Transmitter.Power)
	sigma := math.Pow(10, tgt.RCS/10)
	gain := receiverGain(r)
	k := r.Slope()
	f0 := r.Transmitter.FStart + r.Offset(p)
	phase0 := r.Phase(p) + tgt.Phase*math.Pi/180

	start := timestamps[0]
	for i := range pulse {
		abs := timestamps[i]
		t := abs - start

		rng := tgt.PositionAt(abs).Distance(r.Location)
		if rng <= 0 {
			continue
		}
		tau := 2 * rng / SpeedOfLight

		// radar equation with isotropic antennas
		pr := pt * lambda * lambda * sigma / (math.Pow(4*math.Pi, 3) * math.Pow(rng, 4))
		amp := math.Sqrt(pr*r.Receiver.LoadResistor) * gain

		phase := -2*math.Pi*(f0*tau+k*tau*t-k*tau*tau/2) + phase0
		pulse[i] += cmplx.Rect(amp, phase)
	}
}

// interferencePulse returns what the interferer injects during victim pulse
// p. A sample is non-zero only while the instantaneous frequency difference
// between the two chirps is inside the victim's +/- fs/2 band; its phase is
// the running integral of that difference.
func interferencePulse(victim, interferer *Radar, p int, timestamps []float64) []complex128 {
	out := make([]complex128, len(timestamps))

	d := victim.Location.Distance(interferer.Location)
	if d <= 0 {
		return out
	}
	delay := d / SpeedOfLight

	// one-way Friis loss with isotropic antennas
	lambda := victim.Wavelength()
	pr := dBmToWatts(interferer.Transmitter.Power) * math.Pow(lambda/(4*math.Pi*d), 2)
	amp := math.Sqrt(pr*victim.Receiver.LoadResistor) * receiverGain(victim)

	fs := victim.Receiver.SampleRate
	start := timestamps[0]
	phase := 0.0
	for i, abs := range timestamps {
		fv, ok := victim.InstantFrequency(p, abs-start)
		if !ok {
			continue
		}
		q, into, ok := interferer.ActivePulse(abs - delay)
		if !ok {
			continue
		}
		fi, _ := interferer.InstantFrequency(q, into)

		diff := fi - fv
		if math.Abs(diff) >= fs/2 {
			continue
		}
		phase += 2 * math.Pi * diff / fs
		out[i] = cmplx.Rect(amp, phase+interferer.Phase(q)-victim.Phase(p))
	}
	return out
}
