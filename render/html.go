package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"

	"gonum.org/v1/plot/vg"

	"github.com/RyanBlaney/sonido-rf/analyzer"
	"github.com/RyanBlaney/sonido-rf/logging"
)

// HTMLWriter writes a standalone page with every figure embedded as inline
// SVG and, when Detections is set, a table of the flagged bins
type HTMLWriter struct {
	Title      string
	Width      vg.Length
	Height     vg.Length
	Detections *analyzer.DetectionResult
}

// NewHTMLWriter creates a writer with the default figure size
func NewHTMLWriter(title string) *HTMLWriter {
	return &HTMLWriter{Title: title, Width: DefaultWidth, Height: DefaultHeight}
}

type htmlFigure struct {
	Name string
	SVG  template.HTML
}

type htmlPage struct {
	Title      string
	Figures    []htmlFigure
	Detections *analyzer.DetectionResult
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"hz":    func(f float64) string { return fmt.Sprintf("%.2f", f) },
	"power": func(p float64) string { return fmt.Sprintf("%.2e", p) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 0.3em 0.8em; text-align: right; }
.figure svg { max-width: 100%; height: auto; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Figures}}<div class="figure">
{{if .Name}}<h2>{{.Name}}</h2>
{{end}}{{.SVG}}
</div>
{{end}}{{with .Detections}}<h2>Detections</h2>
<p>Threshold {{power .Threshold}} (mean {{power .MeanPower}} + {{.K}} &times; std {{power .StdDevPower}})</p>
{{if .Anomalies}}<table>
<tr><th>Bin</th><th>Frequency (Hz)</th><th>Power</th></tr>
{{range .Anomalies}}<tr><td>{{.Index}}</td><td>{{hz .Frequency}}</td><td>{{power .Power}}</td></tr>
{{end}}</table>
{{else}}<p>No jamming detected.</p>
{{end}}{{end}}</body>
</html>
`))

func (w *HTMLWriter) Write(path string, figs ...Figure) error {
	logger := logging.WithFields(logging.Fields{
		"component": "html_writer",
		"function":  "Write",
		"path":      path,
	})

	width, height := w.Width, w.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	page := htmlPage{Title: w.Title, Detections: w.Detections}
	for _, fig := range figs {
		panels, err := collectPanels([]Figure{fig})
		if err != nil {
			return err
		}
		var svg bytes.Buffer
		if err := renderStack(&svg, panels, width, height, "svg"); err != nil {
			return err
		}
		// drop the XML prolog; the svg element is embedded as is
		markup := svg.Bytes()
		if i := bytes.Index(markup, []byte("<svg")); i > 0 {
			markup = markup[i:]
		}
		page.Figures = append(page.Figures, htmlFigure{Name: fig.Name(), SVG: template.HTML(markup)})
	}
	if len(page.Figures) == 0 {
		return ErrNoData
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		logger.Error(err, "Failed to write html file")
		return fmt.Errorf("failed to write html file: %w", err)
	}

	logger.Debug("HTML written", logging.Fields{
		"figures": len(page.Figures),
		"bytes":   buf.Len(),
	})
	return nil
}
