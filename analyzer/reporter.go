package analyzer

import (
	"fmt"
	"io"

	"github.com/RyanBlaney/sonido-rf/logging"
)

// Reporter presents a detection result. Keeping presentation behind this
// interface leaves DetectAnomalies free of I/O.
type Reporter interface {
	Report(result *DetectionResult) error
}

// Console output strings
const (
	WarningHeader = "WARNING: Potential jamming detected at the following frequencies (Hz):"
	NoJamming     = "No jamming detected."
)

// ConsoleReporter prints detections as plain lines, red when colors are on
type ConsoleReporter struct {
	w         io.Writer
	useColors bool
}

// NewConsoleReporter writes to w
func NewConsoleReporter(w io.Writer, useColors bool) *ConsoleReporter {
	return &ConsoleReporter{w: w, useColors: useColors}
}

// FormatAnomaly renders one detection as "<frequency> Hz (Power: <power>)"
func FormatAnomaly(a Anomaly) string {
	return fmt.Sprintf("%.2f Hz (Power: %.2e)", a.Frequency, a.Power)
}

func (c *ConsoleReporter) Report(result *DetectionResult) error {
	if result == nil || !result.Detected() {
		_, err := fmt.Fprintln(c.w, NoJamming)
		return err
	}

	if err := c.line(WarningHeader); err != nil {
		return err
	}
	for _, a := range result.Anomalies {
		if err := c.line(FormatAnomaly(a)); err != nil {
			return err
		}
	}
	return nil
}

func (c *ConsoleReporter) line(s string) error {
	if c.useColors {
		s = logging.ColorBrightRed + s + logging.ColorReset
	}
	_, err := fmt.Fprintln(c.w, s)
	return err
}

// LogReporter sends detections to a structured logger: one warning per
// flagged bin, or a single info line when the band is clean
type LogReporter struct {
	logger logging.Logger
}

// NewLogReporter uses logger, or the global logger when nil
func NewLogReporter(logger logging.Logger) *LogReporter {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &LogReporter{logger: logger.WithFields(logging.Fields{"component": "jamming_reporter"})}
}

func (l *LogReporter) Report(result *DetectionResult) error {
	if result == nil || !result.Detected() {
		l.logger.Info(NoJamming)
		return nil
	}

	for _, a := range result.Anomalies {
		l.logger.Warn("Potential jamming", logging.Fields{
			"index":     a.Index,
			"frequency": a.Frequency,
			"power":     a.Power,
			"threshold": result.Threshold,
		})
	}
	return nil
}

// MultiReporter fans a result out to several reporters, stopping at the
// first error
type MultiReporter []Reporter

func (m MultiReporter) Report(result *DetectionResult) error {
	for _, r := range m {
		if err := r.Report(result); err != nil {
			return err
		}
	}
	return nil
}

// ReportFrames prints a "Frame N at T s:" heading on w and hands each
// flagged frame to reporter. A scan with no flagged frame prints NoJamming.
func ReportFrames(w io.Writer, reporter Reporter, scan *FrameScan) error {
	var flagged []FrameDetection
	if scan != nil {
		flagged = scan.Flagged()
	}
	if len(flagged) == 0 {
		_, err := fmt.Fprintln(w, NoJamming)
		return err
	}

	for _, f := range flagged {
		if _, err := fmt.Fprintf(w, "Frame %d at %.6f s:\n", f.Frame, f.Time); err != nil {
			return err
		}
		if err := reporter.Report(f.DetectionResult); err != nil {
			return err
		}
	}
	return nil
}
