package common

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Statistics shared by the detectors, backed by gonum

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// PopStdDev is the population (divide-by-N) standard deviation, the
// estimator used for the detection threshold
func PopStdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.PopStdDev(data, nil)
}

// PopMeanStdDev returns the mean and population standard deviation in one
// pass over the data
func PopMeanStdDev(data []float64) (mean, std float64) {
	if len(data) == 0 {
		return 0.0, 0.0
	}
	return stat.PopMeanStdDev(data, nil)
}

// Percentile calculates the p-th percentile (p between 0 and 1)
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 || p < 0 || p > 1 {
		return 0.0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// Max returns the largest value and its index, (NaN, -1) for empty input
func Max(data []float64) (float64, int) {
	if len(data) == 0 {
		return math.NaN(), -1
	}
	idx := floats.MaxIdx(data)
	return data[idx], idx
}

// Min returns the smallest value, NaN for empty input
func Min(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	return floats.Min(data)
}
