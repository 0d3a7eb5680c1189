package analyzer

import (
	"github.com/RyanBlaney/sonido-rf/algorithms/common"
	"github.com/RyanBlaney/sonido-rf/algorithms/spectral"
)

// Bin pairs one frequency with its magnitude
type Bin struct {
	Frequency   float64 `json:"frequency"`
	MagnitudeDB float64 `json:"magnitude_db"`
}

// Spectrum is a centered magnitude spectrum. Frequencies and MagnitudeDB are
// aligned index-for-index and have the length of the transformed buffer.
type Spectrum struct {
	Frequencies []float64 `json:"frequencies"`
	MagnitudeDB []float64 `json:"magnitude_db"`
	SampleRate  float64   `json:"sample_rate"`
	CenterFreq  float64   `json:"center_freq"`
	FFTSize     int       `json:"fft_size"`
}

// Len returns the number of bins
func (s *Spectrum) Len() int {
	return len(s.MagnitudeDB)
}

// Bins returns the spectrum as ordered (frequency, magnitude) pairs
func (s *Spectrum) Bins() []Bin {
	bins := make([]Bin, len(s.MagnitudeDB))
	for i := range bins {
		bins[i] = Bin{Frequency: s.Frequencies[i], MagnitudeDB: s.MagnitudeDB[i]}
	}
	return bins
}

// Peak returns the strongest bin; ok is false for an empty spectrum
func (s *Spectrum) Peak() (bin Bin, index int, ok bool) {
	v, idx := common.Max(s.MagnitudeDB)
	if idx < 0 {
		return Bin{}, -1, false
	}
	return Bin{Frequency: s.Frequencies[idx], MagnitudeDB: v}, idx, true
}

// Anomaly is one flagged frequency bin
type Anomaly struct {
	Index     int     `json:"index"`
	Frequency float64 `json:"frequency"`
	Power     float64 `json:"power"`
}

// DetectionResult holds the bins whose power exceeded the threshold, in
// ascending index order, along with the statistics that produced the
// threshold and the full power series for plotting.
type DetectionResult struct {
	Anomalies   []Anomaly `json:"anomalies"`
	Threshold   float64   `json:"threshold"`
	MeanPower   float64   `json:"mean_power"`
	StdDevPower float64   `json:"std_dev_power"`
	K           float64   `json:"k"`

	Frequencies []float64 `json:"frequencies"`
	Power       []float64 `json:"power"`
}

// Detected reports whether any bin was flagged
func (r *DetectionResult) Detected() bool {
	return len(r.Anomalies) > 0
}

// Indices returns the flagged bin indices
func (r *DetectionResult) Indices() []int {
	idx := make([]int, len(r.Anomalies))
	for i, a := range r.Anomalies {
		idx[i] = a.Index
	}
	return idx
}

// Span returns the lowest and highest flagged frequency; ok is false when
// nothing was flagged
func (r *DetectionResult) Span() (low, high float64, ok bool) {
	if len(r.Anomalies) == 0 {
		return 0, 0, false
	}
	// anomalies are index-ordered and the axis is increasing
	return r.Anomalies[0].Frequency, r.Anomalies[len(r.Anomalies)-1].Frequency, true
}

// PowerDB returns 10*log10(power) for every bin
func (r *DetectionResult) PowerDB() []float64 {
	return spectral.NewPowerSpectrum().ComputeLog(r.Power)
}
