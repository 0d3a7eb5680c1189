package windowing

import (
	"math"
)

// Hamming represents a Hamming window function
type Hamming struct {
	taper
	symmetric bool
}

// NewHamming creates a new Hamming window
func NewHamming(size int, symmetric bool) *Hamming {
	h := &Hamming{
		taper:     taper{kind: TypeHamming},
		symmetric: symmetric,
	}
	h.generate(size)
	return h
}

func (h *Hamming) generate(size int) {
	h.coefficients = make([]float64, size)
	if size == 1 {
		h.coefficients[0] = 1
		return
	}

	d := denominator(size, h.symmetric)
	for i := range size {
		h.coefficients[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/d)
	}
}
