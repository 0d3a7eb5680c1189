package render

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/RyanBlaney/sonido-rf/analyzer"
)

// WaterfallFigure is a frequency x time heat map of a frame scan, with the
// flagged bins of every frame marked
type WaterfallFigure struct {
	Title string
	Scan  *analyzer.FrameScan
}

// NewWaterfallFigure creates the figure for scan
func NewWaterfallFigure(scan *analyzer.FrameScan) *WaterfallFigure {
	return &WaterfallFigure{Title: "Spectrogram with Jamming Detection", Scan: scan}
}

func (f *WaterfallFigure) Name() string { return f.Title }

// waterfallGrid adapts frame rows to plotter.GridXYZ: columns are frequency
// bins in MHz, rows are frame start times
type waterfallGrid struct {
	freqs []float64
	times []float64
	rows  [][]float64
}

func (g waterfallGrid) Dims() (c, r int)   { return len(g.freqs), len(g.times) }
func (g waterfallGrid) Z(c, r int) float64 { return g.rows[r][c] }
func (g waterfallGrid) X(c int) float64    { return g.freqs[c] / 1e6 }
func (g waterfallGrid) Y(r int) float64    { return g.times[r] }

// Panels builds the heat map panel. The heat map needs at least two frames
// and two bins to size its cells.
func (f *WaterfallFigure) Panels() ([]*plot.Plot, error) {
	if f.Scan == nil || len(f.Scan.Frames) == 0 {
		return nil, ErrNoData
	}
	if len(f.Scan.Frames) < 2 || len(f.Scan.Frequencies) < 2 {
		return nil, fmt.Errorf("%w: waterfall needs at least 2 frames and 2 bins", ErrNoData)
	}

	grid := waterfallGrid{
		freqs: f.Scan.Frequencies,
		times: make([]float64, len(f.Scan.Frames)),
		rows:  f.Scan.PowerDB(),
	}
	for i, fr := range f.Scan.Frames {
		grid.times[i] = fr.Time
	}

	p := plot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = "Frequency (MHz)"
	p.Y.Label.Text = "Time (s)"

	heat := plotter.NewHeatMap(grid, palette.Heat(64, 1))
	heat.Rasterized = true
	if heat.Min == heat.Max {
		heat.Max = heat.Min + 1
	}
	p.Add(heat)

	var pts plotter.XYs
	for _, fr := range f.Scan.Frames {
		for _, a := range fr.Anomalies {
			pts = append(pts, plotter.XY{X: a.Frequency / 1e6, Y: fr.Time})
		}
	}
	if len(pts) > 0 {
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		scatter.Color = colorRed
		scatter.Shape = draw.CrossGlyph{}
		scatter.Radius = vg.Points(2)
		p.Add(scatter)
		p.Legend.Add("Potential Jamming", scatter)
		p.Legend.Top = true
	}

	return []*plot.Plot{p}, nil
}
