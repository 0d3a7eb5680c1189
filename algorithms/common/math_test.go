package common

import (
	"math"
	"testing"
)

func TestPopMeanStdDev(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	mean, std := PopMeanStdDev(data)
	if mean != 5 {
		t.Fatalf("mean=%v want=5", mean)
	}
	if math.Abs(std-2) > 1e-12 {
		t.Fatalf("pop std=%v want=2", std)
	}
	if math.Abs(PopStdDev(data)-2) > 1e-12 {
		t.Fatalf("PopStdDev=%v want=2", PopStdDev(data))
	}
}

func TestConstantDataHasZeroSpread(t *testing.T) {
	mean, std := PopMeanStdDev([]float64{3, 3, 3, 3})
	if mean != 3 || std != 0 {
		t.Fatalf("mean=%v std=%v, want 3 and 0", mean, std)
	}
}

func TestEmptyInputs(t *testing.T) {
	if Mean(nil) != 0 || PopStdDev(nil) != 0 {
		t.Fatalf("empty mean/std should be zero")
	}
	if v, idx := Max(nil); !math.IsNaN(v) || idx != -1 {
		t.Fatalf("Max(nil)=%v,%d", v, idx)
	}
}

func TestPercentileAndMax(t *testing.T) {
	data := []float64{5, 1, 4, 2, 3}
	if got := Percentile(data, 0.5); got != 3 {
		t.Fatalf("median=%v want=3", got)
	}
	if v, idx := Max(data); v != 5 || idx != 0 {
		t.Fatalf("Max=%v@%d", v, idx)
	}
	if Min(data) != 1 {
		t.Fatalf("Min=%v", Min(data))
	}
}
