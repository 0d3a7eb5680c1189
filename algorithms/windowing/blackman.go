package windowing

import (
	"math"
)

// Blackman represents a Blackman window function
type Blackman struct {
	taper
	symmetric bool
}

// NewBlackman creates a new Blackman window
func NewBlackman(size int, symmetric bool) *Blackman {
	b := &Blackman{
		taper:     taper{kind: TypeBlackman},
		symmetric: symmetric,
	}
	b.generate(size)
	return b
}

func (b *Blackman) generate(size int) {
	b.coefficients = make([]float64, size)
	if size == 1 {
		b.coefficients[0] = 1
		return
	}

	d := denominator(size, b.symmetric)
	a0, a1, a2 := 0.42, 0.5, 0.08

	for i := range size {
		arg := 2 * math.Pi * float64(i) / d
		b.coefficients[i] = a0 - a1*math.Cos(arg) + a2*math.Cos(2*arg)
	}
}
