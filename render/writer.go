package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgpdf"
	_ "gonum.org/v1/plot/vg/vgsvg"

	"github.com/RyanBlaney/sonido-rf/logging"
)

// Default figure size; Height applies to each stacked panel
const (
	DefaultWidth  = 35 * vg.Centimeter
	DefaultHeight = 15 * vg.Centimeter
)

// Writer persists figures to path
type Writer interface {
	Write(path string, figs ...Figure) error
}

// ImageWriter renders all panels of all figures into one image whose format
// follows the file extension (png, jpg, tif, svg, pdf)
type ImageWriter struct {
	Width  vg.Length
	Height vg.Length
}

// NewImageWriter creates a writer; zero sizes take the defaults
func NewImageWriter(width, height vg.Length) *ImageWriter {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &ImageWriter{Width: width, Height: height}
}

// FormatFromPath returns the lower-case extension without the dot
func FormatFromPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func (w *ImageWriter) Write(path string, figs ...Figure) error {
	logger := logging.WithFields(logging.Fields{
		"component": "image_writer",
		"function":  "Write",
		"path":      path,
	})

	panels, err := collectPanels(figs)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := renderStack(&buf, panels, w.Width, w.Height, FormatFromPath(path)); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		logger.Error(err, "Failed to write plot file")
		return fmt.Errorf("failed to write plot file: %w", err)
	}

	logger.Debug("Plot written", logging.Fields{
		"panels": len(panels),
		"bytes":  buf.Len(),
	})
	return nil
}

func collectPanels(figs []Figure) ([]*plot.Plot, error) {
	var panels []*plot.Plot
	for _, fig := range figs {
		ps, err := fig.Panels()
		if err != nil {
			return nil, fmt.Errorf("figure %q: %w", fig.Name(), err)
		}
		panels = append(panels, ps...)
	}
	if len(panels) == 0 {
		return nil, ErrNoData
	}
	return panels, nil
}

// renderStack draws panels in one column, each panelHeight tall
func renderStack(out io.Writer, panels []*plot.Plot, width, panelHeight vg.Length, format string) error {
	canvas, err := draw.NewFormattedCanvas(width, panelHeight*vg.Length(len(panels)), format)
	if err != nil {
		return err
	}

	grid := make([][]*plot.Plot, len(panels))
	for i, p := range panels {
		grid[i] = []*plot.Plot{p}
	}
	tiles := draw.Tiles{
		Rows:      len(panels),
		Cols:      1,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 4,
		PadY:      vg.Millimeter * 6,
	}

	canvases := plot.Align(grid, tiles, draw.New(canvas))
	for i, p := range panels {
		p.Draw(canvases[i][0])
	}

	if _, err := canvas.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write %s plot: %w", format, err)
	}
	return nil
}
