package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/RyanBlaney/sonido-rf/radar"
)

// RadarFigure shows one simulated frame: the transmitted chirps, the
// received baseband and optionally its range FFT
type RadarFigure struct {
	Title      string
	Victim     *radar.Radar
	Interferer *radar.Radar // nil for a clean frame
	Result     *radar.SimulationResult

	// CombineInterference plots baseband + interference
	CombineInterference bool
	ShowRangeFFT        bool
}

// VictimFigure is the clean-frame view with the range FFT
func VictimFigure(victim *radar.Radar, result *radar.SimulationResult) *RadarFigure {
	return &RadarFigure{
		Title:        "Radar Visualization (Targets Only with Range FFT)",
		Victim:       victim,
		Result:       result,
		ShowRangeFFT: true,
	}
}

// JammedFigure overlays both radars' chirps and plots the combined signal
func JammedFigure(victim, interferer *radar.Radar, result *radar.SimulationResult) *RadarFigure {
	return &RadarFigure{
		Title:               "Radar Interference Visualization",
		Victim:              victim,
		Interferer:          interferer,
		Result:              result,
		CombineInterference: true,
	}
}

func (f *RadarFigure) Name() string { return f.Title }

// Panels builds the chirp, baseband and range FFT panels
func (f *RadarFigure) Panels() ([]*plot.Plot, error) {
	if f.Victim == nil || f.Result == nil || f.Result.Pulses() == 0 {
		return nil, ErrNoData
	}

	chirps, err := f.chirpPanel()
	if err != nil {
		return nil, err
	}
	baseband, err := f.basebandPanel()
	if err != nil {
		return nil, err
	}
	panels := []*plot.Plot{chirps, baseband}

	if f.ShowRangeFFT {
		rng, err := f.rangePanel()
		if err != nil {
			return nil, err
		}
		panels = append(panels, rng)
	}
	return panels, nil
}

func (f *RadarFigure) chirpPanel() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Victim Radar Chirps (Targets Only)"
	if f.Interferer != nil {
		p.Title.Text = "Victim vs Interference Chirps"
	}
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Frequency (GHz)"
	p.Add(plotter.NewGrid())

	if err := addChirps(p, "Victim Chirp", f.Victim.Chirps(), f.Result.Timestamps, colorBlue, nil); err != nil {
		return nil, err
	}
	if f.Interferer != nil {
		dashes := []vg.Length{vg.Points(6), vg.Points(3)}
		if err := addChirps(p, "Interference Chirp", f.Interferer.Chirps(), f.Interferer.Timestamps(), colorRed, dashes); err != nil {
			return nil, err
		}
	}
	p.Legend.Top = true
	return p, nil
}

func addChirps(p *plot.Plot, name string, chirps, timestamps [][]float64, c color.Color, dashes []vg.Length) error {
	for idx, chirp := range chirps {
		if idx >= len(timestamps) {
			break
		}
		n := min(len(chirp), len(timestamps[idx]))
		xys := make(plotter.XYs, n)
		for i := range n {
			xys[i].X = timestamps[idx][i]
			xys[i].Y = chirp[i] / 1e9
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		line.Color = c
		line.Dashes = dashes
		p.Add(line)
		if idx == 0 {
			p.Legend.Add(name, line)
		}
	}
	return nil
}

func (f *RadarFigure) basebandPanel() (*plot.Plot, error) {
	signal := f.Result.Baseband
	p := plot.New()
	p.Title.Text = "Radar Signal (Complex Baseband)"
	if f.CombineInterference {
		signal = radar.Combine(f.Result)
		p.Title.Text = "Combined Radar Signal (Complex Baseband)"
	}
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Amplitude (V)"
	p.Add(plotter.NewGrid())

	dots := []vg.Length{vg.Points(1), vg.Points(2)}
	for idx, pulse := range signal {
		ts := f.Result.Timestamps[idx]
		re := make(plotter.XYs, len(pulse))
		im := make(plotter.XYs, len(pulse))
		for i, s := range pulse {
			re[i] = plotter.XY{X: ts[i], Y: real(s)}
			im[i] = plotter.XY{X: ts[i], Y: imag(s)}
		}

		reLine, err := plotter.NewLine(re)
		if err != nil {
			return nil, err
		}
		reLine.Color = colorGreen
		imLine, err := plotter.NewLine(im)
		if err != nil {
			return nil, err
		}
		imLine.Color = colorPurple
		imLine.Dashes = dots

		p.Add(reLine, imLine)
		if idx == 0 {
			p.Legend.Add("Real Part", reLine)
			p.Legend.Add("Imag Part", imLine)
		}
	}
	p.Legend.Top = true
	return p, nil
}

func (f *RadarFigure) rangePanel() (*plot.Plot, error) {
	profile := radar.ComputeRangeFFT(f.Result.Baseband, f.Result.SampleRate)

	p := plot.New()
	p.Title.Text = "Range FFT - Target Position Visualization"
	p.X.Label.Text = "Frequency (MHz)"
	p.Y.Label.Text = "Magnitude (dB)"
	p.Add(plotter.NewGrid())

	for idx, mag := range profile.MagnitudeDB {
		xys := make(plotter.XYs, len(mag))
		for i, v := range mag {
			xys[i] = plotter.XY{X: profile.Frequencies[i] / 1e6, Y: v}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(idx)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("Pulse %d", idx+1), line)
	}
	p.Legend.Top = true
	return p, nil
}
