package analyzer

import (
	"math"

	"github.com/RyanBlaney/sonido-rf/algorithms/common"
	"github.com/RyanBlaney/sonido-rf/algorithms/spectral"
)

const (
	// OccupiedFraction is the share of power inside the occupied band
	OccupiedFraction = 0.99

	// NoiseLikeFlatness is the flatness at or above which a spectrum is
	// treated as noise-like. A white-noise periodogram scores about 0.56.
	NoiseLikeFlatness = 0.4
)

// Occupancy summarizes how the power of a spectrum is spread over the band
type Occupancy struct {
	Centroid     float64 `json:"centroid"`      // power-weighted mean frequency, Hz
	RMSBandwidth float64 `json:"rms_bandwidth"` // spread around the centroid, Hz
	OccupiedLow  float64 `json:"occupied_low"`  // lower edge of the 99% band, Hz
	OccupiedHigh float64 `json:"occupied_high"` // upper edge of the 99% band, Hz
	Flatness     float64 `json:"flatness"`
	FlatnessDB   float64 `json:"flatness_db"`
	NoiseLike    bool    `json:"noise_like"`
	CrestDB      float64 `json:"crest_db"`       // peak-to-mean power
	NoiseFloorDB float64 `json:"noise_floor_db"` // median bin power
}

// OccupiedBandwidth is OccupiedHigh - OccupiedLow
func (o Occupancy) OccupiedBandwidth() float64 {
	return o.OccupiedHigh - o.OccupiedLow
}

// Occupancy computes band-usage statistics from the result's power series
func (r *DetectionResult) Occupancy() Occupancy {
	flatness := spectral.NewSpectralFlatness()
	centroid := spectral.NewSpectralCentroid().Compute(r.Power, r.Frequencies)
	low, high := spectral.NewSpectralRolloff().OccupiedBandwidth(r.Power, r.Frequencies, OccupiedFraction)

	f := flatness.Compute(r.Power)
	return Occupancy{
		Centroid:     centroid,
		RMSBandwidth: spectral.NewSpectralBandwidth().Compute(r.Power, r.Frequencies, centroid),
		OccupiedLow:  low,
		OccupiedHigh: high,
		Flatness:     f,
		FlatnessDB:   flatness.ComputeInDB(r.Power),
		NoiseLike:    flatness.IsNoiseLike(f, NoiseLikeFlatness),
		CrestDB:      spectral.NewSpectralCrest().ComputeDB(r.Power),
		NoiseFloorDB: 10 * math.Log10(math.Max(common.Percentile(r.Power, 0.5), spectral.DefaultEpsilon*spectral.DefaultEpsilon)),
	}
}
