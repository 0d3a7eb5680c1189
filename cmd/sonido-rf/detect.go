package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-rf/algorithms/common"
	"github.com/RyanBlaney/sonido-rf/analyzer"
	"github.com/RyanBlaney/sonido-rf/config"
	"github.com/RyanBlaney/sonido-rf/iq"
	"github.com/RyanBlaney/sonido-rf/logging"
	"github.com/RyanBlaney/sonido-rf/render"
)

var (
	detectNoise      string
	detectNoiseScale float64
	detectCenterFreq float64
	detectFFTSize    int
	detectThreshold  float64
	detectPlot       string
	detectFrames     bool
	detectHop        int
)

var detectCmd = &cobra.Command{
	Use:   "detect <scan_file> [sample_rate]",
	Short: "Flag potential jamming in an I/Q capture",
	Long: `Detect computes a windowed FFT over the first --fft-size samples of the
capture and reports every bin whose power exceeds mean + k*std.

With --noise the scan and the noise capture are both normalized to unit peak
and the noise, scaled by --noise-scale, is added before analysis.

With --frames the whole capture is cut into --fft-size frames (--hop samples
apart) and every frame is tested against its own threshold.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := prepare(cmd, func(cfg *config.Config) error {
			return applyDetectFlags(cmd, cfg, args)
		})
		if err != nil {
			exit(err)
		}

		if _, err := runDetect(cfg, args[0], detectNoise, os.Stdout, consoleColors(cfg)); err != nil {
			exit(err)
		}
	},
}

func init() {
	d := config.Default().Analysis
	detectCmd.Flags().StringVarP(&detectNoise, "noise", "n", "", "noise capture to overlay on the scan")
	detectCmd.Flags().Float64Var(&detectNoiseScale, "noise-scale", d.NoiseScale, "weight of the normalized noise capture")
	detectCmd.Flags().Float64Var(&detectCenterFreq, "center-freq", d.CenterFreq, "center frequency in Hz")
	detectCmd.Flags().IntVar(&detectFFTSize, "fft-size", d.FFTSize, "number of samples transformed (0 = whole capture)")
	detectCmd.Flags().Float64VarP(&detectThreshold, "threshold", "k", d.ThresholdK, "threshold multiplier on the power standard deviation")
	detectCmd.Flags().StringVarP(&detectPlot, "plot", "p", "", "write the detection plot (png, svg, pdf, jpg or html)")
	detectCmd.Flags().BoolVar(&detectFrames, "frames", false, "scan the whole capture frame by frame")
	detectCmd.Flags().IntVar(&detectHop, "hop", 0, "samples between frame starts with --frames (0 = fft size)")
}

func applyDetectFlags(cmd *cobra.Command, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		sr, err := parseSampleRate(args[1])
		if err != nil {
			return err
		}
		cfg.Analysis.SampleRate = sr
	}

	flags := cmd.Flags()
	if flags.Changed("noise-scale") {
		cfg.Analysis.NoiseScale = detectNoiseScale
	}
	if flags.Changed("center-freq") {
		cfg.Analysis.CenterFreq = detectCenterFreq
	}
	if flags.Changed("fft-size") {
		cfg.Analysis.FFTSize = detectFFTSize
	}
	if flags.Changed("threshold") {
		cfg.Analysis.ThresholdK = detectThreshold
	}
	if flags.Changed("plot") {
		cfg.Output.Plot = detectPlot
	}
	if flags.Changed("frames") {
		cfg.Analysis.Frames = detectFrames
	}
	if flags.Changed("hop") {
		cfg.Analysis.Hop = detectHop
	}
	return nil
}

// runDetect loads the scan (and optional noise capture), runs the detector,
// prints the report to out and writes the plot when one is configured. In
// frame mode the per-frame results are only reported, and the returned
// result is nil.
func runDetect(cfg *config.Config, scanFile, noiseFile string, out io.Writer, useColors bool) (*analyzer.DetectionResult, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "cli",
		"function":  "detect",
		"scan":      scanFile,
	})

	decoder, err := newDecoder(cfg)
	if err != nil {
		return nil, err
	}
	scan, err := decoder.DecodeFile(scanFile)
	if err != nil {
		return nil, err
	}

	signal := scan.Samples
	if noiseFile != "" {
		noise, err := decoder.DecodeFile(noiseFile)
		if err != nil {
			return nil, err
		}
		// Normalize after truncation so the analyzed scan has unit peak.
		a, b := iq.MatchLengths(scan.Samples, noise.Samples)
		signal = iq.Combine(iq.Normalize(a), iq.Normalize(b), cfg.Analysis.NoiseScale)
		logger.Debug("Overlaid noise capture", logging.Fields{
			"noise":       noiseFile,
			"noise_scale": cfg.Analysis.NoiseScale,
			"samples":     len(signal),
		})
	}

	sa, err := newAnalyzer(cfg)
	if err != nil {
		return nil, err
	}

	reporter := analyzer.Reporter(analyzer.NewConsoleReporter(out, useColors))
	if level, _ := logging.ParseLevel(cfg.Logging.Level); level == logging.DebugLevel {
		reporter = analyzer.MultiReporter{reporter, analyzer.NewLogReporter(logger)}
	}

	if cfg.Analysis.Frames {
		return nil, runDetectFrames(cfg, sa, signal, reporter, out)
	}

	a := cfg.Analysis
	result, err := sa.DetectAnomalies(signal, a.SampleRate, a.CenterFreq, a.FFTSize, a.ThresholdK)
	if err != nil {
		return nil, err
	}

	occupancy := result.Occupancy()
	logger.Debug("Band occupancy", logging.Fields{
		"centroid":      occupancy.Centroid,
		"rms_bandwidth": occupancy.RMSBandwidth,
		"occupied_bw":   occupancy.OccupiedBandwidth(),
		"flatness_db":   occupancy.FlatnessDB,
		"noise_like":    occupancy.NoiseLike,
		"noise_floor":   occupancy.NoiseFloorDB,
	})

	if err := reporter.Report(result); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	if path := cfg.Output.Plot; path != "" {
		fig := render.DetectionFigure(result)
		if err := newWriter(cfg, path, fig.Title, result).Write(path, fig); err != nil {
			return nil, err
		}
		logger.Info("Detection plot written", logging.Fields{"path": path})
	}

	return result, nil
}

// runDetectFrames is the --frames variant of runDetect: every frame gets its
// own threshold and the plot is a waterfall
func runDetectFrames(cfg *config.Config, sa *analyzer.SpectralAnalyzer, signal iq.Buffer, reporter analyzer.Reporter, out io.Writer) error {
	a := cfg.Analysis
	scan, err := sa.DetectFrames(context.Background(), signal, a.SampleRate, a.CenterFreq, a.FFTSize, a.Hop, a.ThresholdK)
	if err != nil {
		return err
	}

	if flux := scan.Flux(); len(flux) > 0 {
		peak, idx := common.Max(flux)
		logging.Debug("Largest spectral change", logging.Fields{
			"component": "cli",
			"frame":     idx + 1,
			"flux_db":   peak,
		})
	}

	if err := analyzer.ReportFrames(out, reporter, scan); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if path := cfg.Output.Plot; path != "" {
		fig := render.NewWaterfallFigure(scan)
		if err := newWriter(cfg, path, fig.Title, nil).Write(path, fig); err != nil {
			return err
		}
	}
	return nil
}
