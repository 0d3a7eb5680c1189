// Package radar describes FMCW radars and targets and synthesizes the
// de-chirped baseband a victim radar sees, optionally with a second radar
// interfering with it.
package radar

import (
	"errors"
	"fmt"
	"math"
)

// SpeedOfLight in m/s
const SpeedOfLight = 299792458.0

// ErrInvalidRadar is wrapped by every Validate failure
var ErrInvalidRadar = errors.New("invalid radar configuration")

// Vec3 is a position (m), velocity (m/s) or rotation (deg) triple
type Vec3 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3         { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3         { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3    { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Norm() float64           { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) Distance(o Vec3) float64 { return v.Sub(o).Norm() }

// Transmitter describes a linear FMCW pulse train. Each pulse sweeps from
// FStart to FStop over PulseWidth seconds, shifted by FrequencyOffsets[p]
// and rotated by PulsePhases[p] degrees. Missing offsets or phases are 0.
type Transmitter struct {
	FStart           float64   `yaml:"f_start" json:"f_start"`
	FStop            float64   `yaml:"f_stop" json:"f_stop"`
	PulseWidth       float64   `yaml:"pulse_width" json:"pulse_width"`
	Power            float64   `yaml:"tx_power" json:"tx_power"` // dBm
	PRP              float64   `yaml:"prp" json:"prp"`
	Pulses           int       `yaml:"pulses" json:"pulses"`
	FrequencyOffsets []float64 `yaml:"f_offsets" json:"f_offsets"`
	PulsePhases      []float64 `yaml:"pulse_phases" json:"pulse_phases"`
}

// Receiver describes the sampling and gain chain
type Receiver struct {
	SampleRate   float64 `yaml:"fs" json:"fs"`
	NoiseFigure  float64 `yaml:"noise_figure" json:"noise_figure"`   // dB
	RFGain       float64 `yaml:"rf_gain" json:"rf_gain"`             // dB
	BasebandGain float64 `yaml:"baseband_gain" json:"baseband_gain"` // dB
	LoadResistor float64 `yaml:"load_resistor" json:"load_resistor"` // ohm
}

// Radar is one transmitter/receiver pair at a location. Rotation is kept
// as yaw/pitch/roll degrees; the simulator models isotropic antennas.
type Radar struct {
	Name        string      `yaml:"name" json:"name"`
	Transmitter Transmitter `yaml:"transmitter" json:"transmitter"`
	Receiver    Receiver    `yaml:"receiver" json:"receiver"`
	Location    Vec3        `yaml:"location" json:"location"`
	Rotation    Vec3        `yaml:"rotation" json:"rotation"`
}

// Target is a point scatterer. RCS is in dBsm, Phase in degrees.
type Target struct {
	Location Vec3    `yaml:"location" json:"location"`
	Speed    Vec3    `yaml:"speed" json:"speed"`
	RCS      float64 `yaml:"rcs" json:"rcs"`
	Phase    float64 `yaml:"phase" json:"phase"`
}

// PositionAt returns the target location t seconds into the frame
func (t Target) PositionAt(sec float64) Vec3 {
	return t.Location.Add(t.Speed.Scale(sec))
}

// SamplesPerPulse is the number of receiver samples in one chirp
func (r *Radar) SamplesPerPulse() int {
	return int(math.Round(r.Transmitter.PulseWidth * r.Receiver.SampleRate))
}

// Bandwidth is the signed sweep FStop - FStart
func (r *Radar) Bandwidth() float64 {
	return r.Transmitter.FStop - r.Transmitter.FStart
}

// Slope is the sweep rate in Hz/s, negative for down-chirps
func (r *Radar) Slope() float64 {
	return r.Bandwidth() / r.Transmitter.PulseWidth
}

// CenterFrequency is the middle of the base sweep
func (r *Radar) CenterFrequency() float64 {
	return (r.Transmitter.FStart + r.Transmitter.FStop) / 2
}

// Wavelength at the center frequency
func (r *Radar) Wavelength() float64 {
	return SpeedOfLight / r.CenterFrequency()
}

// Offset returns the frequency offset of pulse p
func (r *Radar) Offset(p int) float64 {
	if p < len(r.Transmitter.FrequencyOffsets) {
		return r.Transmitter.FrequencyOffsets[p]
	}
	return 0
}

// Phase returns the phase code of pulse p in radians
func (r *Radar) Phase(p int) float64 {
	if p < len(r.Transmitter.PulsePhases) {
		return r.Transmitter.PulsePhases[p] * math.Pi / 180
	}
	return 0
}

// InstantFrequency is the transmitted frequency at time t after the start
// of pulse p. ok is false outside the pulse.
func (r *Radar) InstantFrequency(p int, t float64) (f float64, ok bool) {
	if p < 0 || p >= r.Transmitter.Pulses || t < 0 || t >= r.Transmitter.PulseWidth {
		return 0, false
	}
	return r.Transmitter.FStart + r.Offset(p) + r.Slope()*t, true
}

// ActivePulse returns the pulse transmitting at absolute time t and the
// time into that pulse
func (r *Radar) ActivePulse(t float64) (p int, into float64, ok bool) {
	if t < 0 || r.Transmitter.PRP <= 0 {
		return 0, 0, false
	}
	p = int(math.Floor(t / r.Transmitter.PRP))
	into = t - float64(p)*r.Transmitter.PRP
	if p >= r.Transmitter.Pulses || into >= r.Transmitter.PulseWidth {
		return 0, 0, false
	}
	return p, into, true
}

// Timestamps returns the absolute sample times, pulse x sample
func (r *Radar) Timestamps() [][]float64 {
	n := r.SamplesPerPulse()
	ts := make([][]float64, r.Transmitter.Pulses)
	for p := range ts {
		ts[p] = make([]float64, n)
		start := float64(p) * r.Transmitter.PRP
		for i := range n {
			ts[p][i] = start + float64(i)/r.Receiver.SampleRate
		}
	}
	return ts
}

// Chirps returns the swept frequency of every sample, pulse x sample
func (r *Radar) Chirps() [][]float64 {
	offsets := make([]float64, r.Transmitter.Pulses)
	for p := range offsets {
		offsets[p] = r.Offset(p)
	}
	return GenerateChirp(r.Transmitter.FStart, r.Transmitter.FStop, offsets, r.SamplesPerPulse())
}

// BeatToRange converts a de-chirped beat frequency to target range
func (r *Radar) BeatToRange(beat float64) float64 {
	return SpeedOfLight * beat / (2 * math.Abs(r.Slope()))
}

// Validate checks the parameters the simulator divides by or loops over
func (r *Radar) Validate() error {
	tx, rx := r.Transmitter, r.Receiver
	switch {
	case tx.PulseWidth <= 0:
		return fmt.Errorf("%w: pulse width must be positive: %v", ErrInvalidRadar, tx.PulseWidth)
	case tx.Pulses <= 0:
		return fmt.Errorf("%w: pulse count must be positive: %d", ErrInvalidRadar, tx.Pulses)
	case tx.PRP < tx.PulseWidth:
		return fmt.Errorf("%w: prp %v shorter than pulse width %v", ErrInvalidRadar, tx.PRP, tx.PulseWidth)
	case tx.FStart <= 0 || tx.FStop <= 0:
		return fmt.Errorf("%w: sweep frequencies must be positive", ErrInvalidRadar)
	case tx.FStart == tx.FStop:
		return fmt.Errorf("%w: sweep has zero bandwidth", ErrInvalidRadar)
	case rx.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate must be positive: %v", ErrInvalidRadar, rx.SampleRate)
	case rx.LoadResistor <= 0:
		return fmt.Errorf("%w: load resistor must be positive: %v", ErrInvalidRadar, rx.LoadResistor)
	case r.SamplesPerPulse() == 0:
		return fmt.Errorf("%w: pulse shorter than one sample", ErrInvalidRadar)
	}
	return nil
}
