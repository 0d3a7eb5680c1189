package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-rf/analyzer"
	"github.com/RyanBlaney/sonido-rf/config"
	"github.com/RyanBlaney/sonido-rf/iq"
	"github.com/RyanBlaney/sonido-rf/render"
)

const (
	defaultCombineCenterFreq = 2.4e9
	defaultCombinePlot       = "combined_spectrum.png"
	combineTitle             = "Combined Signal Frequency Spectrum"
)

var (
	combineCenterFreq float64
	combinePlot       string
)

var combineCmd = &cobra.Command{
	Use:   "combine <scan_file> <noise_file> <sample_rate> [noise_scale]",
	Short: "Overlay a noise capture on a scan and plot the full spectrum",
	Long: `Combine truncates both captures to the shorter one, normalizes each to unit
peak, adds the noise scaled by noise_scale (default 0.2) and plots the
spectrum of the whole combined capture.`,
	Args: cobra.RangeArgs(3, 4),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := prepare(cmd, func(cfg *config.Config) error {
			sr, err := parseSampleRate(args[2])
			if err != nil {
				return err
			}
			cfg.Analysis.SampleRate = sr
			cfg.Analysis.CenterFreq = combineCenterFreq
			cfg.Output.Plot = combinePlot

			if len(args) > 3 {
				scale, err := strconv.ParseFloat(args[3], 64)
				if err != nil {
					return fmt.Errorf("invalid noise scale %q: %w", args[3], err)
				}
				cfg.Analysis.NoiseScale = scale
			}
			return nil
		})
		if err != nil {
			exit(err)
		}

		if _, err := runCombine(cfg, args[0], args[1], os.Stdout); err != nil {
			exit(err)
		}
	},
}

func init() {
	combineCmd.Flags().Float64Var(&combineCenterFreq, "center-freq", defaultCombineCenterFreq, "center frequency in Hz")
	combineCmd.Flags().StringVarP(&combinePlot, "plot", "p", defaultCombinePlot, "output plot (png, svg, pdf, jpg or html)")
}

// runCombine builds the combined capture and plots its spectrum to
// cfg.Output.Plot
func runCombine(cfg *config.Config, scanFile, noiseFile string, out io.Writer) (*analyzer.Spectrum, error) {
	decoder, err := newDecoder(cfg)
	if err != nil {
		return nil, err
	}
	scan, err := decoder.DecodeFile(scanFile)
	if err != nil {
		return nil, err
	}
	noise, err := decoder.DecodeFile(noiseFile)
	if err != nil {
		return nil, err
	}

	a, b := iq.MatchLengths(scan.Samples, noise.Samples)
	combined := iq.Combine(iq.Normalize(a), iq.Normalize(b), cfg.Analysis.NoiseScale)

	sa, err := newAnalyzer(cfg)
	if err != nil {
		return nil, err
	}
	spectrum, err := sa.ComputeSpectrum(combined, cfg.Analysis.SampleRate, cfg.Analysis.CenterFreq, 0)
	if err != nil {
		return nil, err
	}

	path := cfg.Output.Plot
	fig := render.SpectrumPlot(spectrum, combineTitle)
	if err := newWriter(cfg, path, combineTitle, nil).Write(path, fig); err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Visualization saved as '%s'\n", path)

	return spectrum, nil
}
