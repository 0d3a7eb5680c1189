// Command sonido-rf inspects I/Q captures for noise jamming and renders the
// FMCW radar interference scenario.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/RyanBlaney/sonido-rf/algorithms/spectral"
	"github.com/RyanBlaney/sonido-rf/algorithms/windowing"
	"github.com/RyanBlaney/sonido-rf/analyzer"
	"github.com/RyanBlaney/sonido-rf/config"
	"github.com/RyanBlaney/sonido-rf/logging"
	"github.com/RyanBlaney/sonido-rf/render"
	"github.com/RyanBlaney/sonido-rf/transcode"
)

var (
	configPath  string
	logLevel    string
	inputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "sonido-rf",
	Short: "RF spectrum analysis and jamming detection for I/Q captures",
	Long: `sonido-rf reads interleaved I/Q captures, computes their spectrum and
flags bins whose power stands out from the rest.

Commands:
  detect    Flag potential jamming in a capture
  combine   Overlay a noise capture on a scan and plot the spectrum
  radar     Simulate the 60 GHz FMCW victim/interferer scenario`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&inputFormat, "format", "f", "", "capture format ("+strings.Join(transcode.NewDecoder(nil).GetSupportedFormats(), ", ")+"); empty infers from the extension")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(combineCmd)
	rootCmd.AddCommand(radarCmd)
}

// loadConfig reads --config (or the defaults) and applies the global flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("format") {
		cfg.Input.Format = inputFormat
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) error {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}

	logger := logging.NewDefaultLogger()
	switch cfg.Logging.Colors {
	case "always":
		logger.SetColors(true)
	case "never":
		logger.SetColors(false)
	}
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)
	return nil
}

// prepare finishes configuration for a subcommand: overrides are applied by
// the caller through apply, then the result is validated
func prepare(cmd *cobra.Command, apply func(*config.Config) error) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if apply != nil {
		if err := apply(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := setupLogging(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func consoleColors(cfg *config.Config) bool {
	switch cfg.Logging.Colors {
	case "always":
		return true
	case "never":
		return false
	default:
		return logging.IsTerminal(os.Stdout)
	}
}

func parseSampleRate(arg string) (float64, error) {
	sr, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid sample rate %q: %w", arg, err)
	}
	if !(sr > 0) {
		return 0, fmt.Errorf("%w: %v", analyzer.ErrInvalidSampleRate, sr)
	}
	return sr, nil
}

func newDecoder(cfg *config.Config) (*transcode.Decoder, error) {
	d := transcode.NewDecoder(&transcode.DecoderConfig{
		Format:     transcode.Format(cfg.Input.Format),
		MaxSamples: cfg.Input.MaxSamples,
		SampleRate: cfg.Analysis.SampleRate,
	})
	if err := d.ValidateConfig(); err != nil {
		return nil, err
	}
	logging.Debug("Decoder ready", logging.Fields(d.GetConfig()))
	return d, nil
}

func newAnalyzer(cfg *config.Config) (*analyzer.SpectralAnalyzer, error) {
	return analyzer.NewSpectralAnalyzer(&analyzer.Config{
		Window:     windowing.Type(cfg.Analysis.Window),
		Backend:    spectral.Backend(cfg.Analysis.FFTBackend),
		RemoveDC:   cfg.Analysis.RemoveDC,
		DCCutoffHz: cfg.Analysis.DCCutoffHz,
	})
}

// newWriter picks the output by extension: .html gets an HTML page, anything
// else goes through the image writer
func newWriter(cfg *config.Config, path, title string, detections *analyzer.DetectionResult) render.Writer {
	width := vg.Length(cfg.Output.Width) * vg.Centimeter
	height := vg.Length(cfg.Output.Height) * vg.Centimeter

	if render.FormatFromPath(path) == "html" {
		w := render.NewHTMLWriter(title)
		w.Width = width
		w.Height = height
		w.Detections = detections
		return w
	}
	return render.NewImageWriter(width, height)
}

// exit reports err on stderr and terminates
func exit(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
