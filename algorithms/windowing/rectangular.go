package windowing

// Rectangular represents a rectangular (boxcar) window function; applying it
// leaves the signal untouched
type Rectangular struct {
	taper
}

// NewRectangular creates a new rectangular window
func NewRectangular(size int) *Rectangular {
	r := &Rectangular{taper: taper{kind: TypeRectangular}}
	r.coefficients = make([]float64, size)
	for i := range r.coefficients {
		r.coefficients[i] = 1.0
	}
	return r
}
