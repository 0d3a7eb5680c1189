package windowing

import (
	"math"
)

// Hann represents a Hann window function
type Hann struct {
	taper
	symmetric bool
}

// NewHann creates a new Hann window. With symmetric set the coefficients are
// 0.5 - 0.5*cos(2*pi*n/(N-1)), matching the classic "hanning" definition; a
// length-1 window is [1].
func NewHann(size int, symmetric bool) *Hann {
	h := &Hann{
		taper:     taper{kind: TypeHann},
		symmetric: symmetric,
	}
	h.generate(size)
	return h
}

func (h *Hann) generate(size int) {
	h.coefficients = make([]float64, size)
	if size == 1 {
		h.coefficients[0] = 1
		return
	}

	d := denominator(size, h.symmetric)
	for i := range size {
		h.coefficients[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/d))
	}
}
