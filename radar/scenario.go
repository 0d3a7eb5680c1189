package radar

// The stock 60 GHz scenario: a down-chirping victim, an up-chirping
// interferer 30 m away facing it, and two targets in front of the victim.

// VictimRadar returns the stock victim radar
func VictimRadar() *Radar {
	return &Radar{
		Name: "victim",
		Transmitter: Transmitter{
			FStart:           60.6e9,
			FStop:            60.4e9,
			PulseWidth:       16e-6,
			Power:            25,
			PRP:              20e-6,
			Pulses:           4,
			FrequencyOffsets: steppedOffsets(4, 90e6),
			PulsePhases:      []float64{180, 0, 0, 0},
		},
		Receiver: Receiver{
			SampleRate:   40e6,
			NoiseFigure:  2,
			RFGain:       20,
			BasebandGain: 60,
			LoadResistor: 500,
		},
	}
}

// InterfererRadar returns the stock interfering radar
func InterfererRadar() *Radar {
	return &Radar{
		Name: "interferer",
		Transmitter: Transmitter{
			FStart:           60.4e9,
			FStop:            60.6e9,
			PulseWidth:       8e-6,
			Power:            15,
			PRP:              11e-6,
			Pulses:           8,
			FrequencyOffsets: steppedOffsets(8, 70e6),
			PulsePhases:      []float64{0, 0, 180, 0, 0, 0, 0, 0},
		},
		Receiver: Receiver{
			SampleRate:   20e6,
			NoiseFigure:  8,
			RFGain:       20,
			BasebandGain: 30,
			LoadResistor: 500,
		},
		Location: Vec3{X: 30},
		Rotation: Vec3{X: 180},
	}
}

// DefaultTargets returns a static target at 30 m and one at about 20 m
// closing at 10 m/s
func DefaultTargets() []Target {
	return []Target{
		{Location: Vec3{X: 30}, RCS: 10},
		{Location: Vec3{X: 20, Y: 1}, Speed: Vec3{X: -10}, RCS: 10},
	}
}

func steppedOffsets(n int, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * step
	}
	return out
}
