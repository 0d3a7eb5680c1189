// Package render draws spectra and radar frames with gonum/plot and writes
// them as images or as a self-contained HTML page.
package render

import (
	"errors"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/RyanBlaney/sonido-rf/algorithms/common"
	"github.com/RyanBlaney/sonido-rf/analyzer"
)

// ErrNoData is returned when a figure has nothing to draw
var ErrNoData = errors.New("figure has no data")

// JammingLabel marks the shaded detection region
const JammingLabel = "Jamming Identified"

var (
	colorRed    = color.NRGBA{R: 255, A: 255}
	colorShade  = color.NRGBA{R: 255, A: 51}
	colorBlue   = color.NRGBA{B: 255, A: 255}
	colorGreen  = color.NRGBA{G: 128, A: 255}
	colorPurple = color.NRGBA{R: 128, B: 128, A: 255}
)

// Figure is one or more plot panels stacked top to bottom
type Figure interface {
	Name() string
	Panels() ([]*plot.Plot, error)
}

// SpectrumFigure is a line spectrum with optional highlighted bins.
// Frequencies are in Hz and drawn in MHz.
type SpectrumFigure struct {
	Title       string
	XLabel      string
	YLabel      string
	Frequencies []float64
	Values      []float64

	// Highlight lists bin indices drawn as red points
	Highlight []int

	// ShadeHighlight shades the span of highlighted frequencies and puts
	// Annotation above it
	ShadeHighlight bool
	Annotation     string
}

// DetectionFigure plots 10*log10(power) with the flagged bins highlighted
func DetectionFigure(result *analyzer.DetectionResult) *SpectrumFigure {
	return &SpectrumFigure{
		Title:          "Noise Spectrum with Jamming Detection",
		XLabel:         "Frequency (MHz)",
		YLabel:         "Power (dB)",
		Frequencies:    result.Frequencies,
		Values:         result.PowerDB(),
		Highlight:      result.Indices(),
		ShadeHighlight: true,
		Annotation:     JammingLabel,
	}
}

// SpectrumPlot plots a magnitude spectrum as is
func SpectrumPlot(spectrum *analyzer.Spectrum, title string) *SpectrumFigure {
	return &SpectrumFigure{
		Title:       title,
		XLabel:      "Frequency (MHz)",
		YLabel:      "Magnitude (dB)",
		Frequencies: spectrum.Frequencies,
		Values:      spectrum.MagnitudeDB,
	}
}

func (f *SpectrumFigure) Name() string { return f.Title }

// Panels builds the single spectrum panel
func (f *SpectrumFigure) Panels() ([]*plot.Plot, error) {
	if len(f.Values) == 0 || len(f.Values) != len(f.Frequencies) {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = f.XLabel
	p.Y.Label.Text = f.YLabel
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(f.Values))
	for i := range xys {
		xys[i].X = f.Frequencies[i] / 1e6
		xys[i].Y = f.Values[i]
	}

	var label *plotter.Labels
	if f.ShadeHighlight && len(f.Highlight) > 0 {
		shade, l, err := f.region(xys)
		if err != nil {
			return nil, err
		}
		p.Add(shade)
		p.Legend.Add("Jamming Region", shade)
		label = l
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	p.Add(line)
	p.Legend.Add("Spectrum (dB)", line)

	if len(f.Highlight) > 0 {
		pts := make(plotter.XYs, 0, len(f.Highlight))
		for _, idx := range f.Highlight {
			if idx >= 0 && idx < len(xys) {
				pts = append(pts, xys[idx])
			}
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		scatter.Color = colorRed
		scatter.Shape = draw.CircleGlyph{}
		scatter.Radius = vg.Points(3)
		p.Add(scatter)
		p.Legend.Add("Potential Jamming", scatter)
	}

	// label last so it sits on top of the trace
	if label != nil {
		p.Add(label)
	}

	p.Legend.Top = true
	return []*plot.Plot{p}, nil
}

// region returns the shaded band over the highlighted frequencies and its
// label, placed 5 dB under the spectrum maximum
func (f *SpectrumFigure) region(xys plotter.XYs) (*plotter.Polygon, *plotter.Labels, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, idx := range f.Highlight {
		if idx < 0 || idx >= len(xys) {
			continue
		}
		lo = math.Min(lo, xys[idx].X)
		hi = math.Max(hi, xys[idx].X)
	}
	if math.IsInf(lo, 0) {
		return nil, nil, ErrNoData
	}

	top, _ := common.Max(f.Values)
	bottom := common.Min(f.Values)
	if lo == hi {
		// a single bin still gets a visible band
		half := math.Abs(xys[len(xys)-1].X-xys[0].X) / float64(2*len(xys))
		lo, hi = lo-half, hi+half
	}

	shade, err := plotter.NewPolygon(plotter.XYs{
		{X: lo, Y: bottom}, {X: hi, Y: bottom}, {X: hi, Y: top}, {X: lo, Y: top},
	})
	if err != nil {
		return nil, nil, err
	}
	shade.Color = colorShade
	shade.LineStyle.Width = 0

	label, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: (lo + hi) / 2, Y: top - 5}},
		Labels: []string{f.Annotation},
	})
	if err != nil {
		return nil, nil, err
	}
	label.TextStyle[0].Color = colorRed
	label.TextStyle[0].XAlign = text.XCenter

	return shade, label, nil
}
