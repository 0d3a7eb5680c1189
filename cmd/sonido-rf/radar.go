package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-rf/config"
	"github.com/RyanBlaney/sonido-rf/iq"
	"github.com/RyanBlaney/sonido-rf/logging"
	"github.com/RyanBlaney/sonido-rf/radar"
	"github.com/RyanBlaney/sonido-rf/render"
	"github.com/RyanBlaney/sonido-rf/transcode"
)

var (
	radarExportIQ string
	radarSeed     uint64
	radarNoNoise  bool
	victimPlot    string
	jammedPlot    string
)

var radarCmd = &cobra.Command{
	Use:   "radar",
	Short: "Simulate the 60 GHz FMCW victim/interferer scenario",
}

var victimCmd = &cobra.Command{
	Use:   "victim",
	Short: "Render the victim radar's chirps, baseband and range FFT",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runRadarCommand(cmd, false, victimPlot)
	},
}

var jammedCmd = &cobra.Command{
	Use:   "jammed",
	Short: "Render the victim radar with the interferer's leakage added",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runRadarCommand(cmd, true, jammedPlot)
	},
}

func init() {
	radarCmd.PersistentFlags().StringVar(&radarExportIQ, "export-iq", "", "also write the simulated baseband as an I/Q capture")
	radarCmd.PersistentFlags().Uint64Var(&radarSeed, "seed", 1, "receiver noise seed")
	radarCmd.PersistentFlags().BoolVar(&radarNoNoise, "no-noise", false, "leave thermal noise out of the baseband")

	victimCmd.Flags().StringVarP(&victimPlot, "plot", "p", "radar_targets_range_fft.html", "output file (html, png, svg, pdf or jpg)")
	jammedCmd.Flags().StringVarP(&jammedPlot, "plot", "p", "jammed_radar.html", "output file (html, png, svg, pdf or jpg)")

	radarCmd.AddCommand(victimCmd)
	radarCmd.AddCommand(jammedCmd)
}

func runRadarCommand(cmd *cobra.Command, jammed bool, plotPath string) {
	cfg, err := prepare(cmd, func(cfg *config.Config) error {
		flags := cmd.Flags()
		if flags.Changed("seed") {
			cfg.Radar.Seed = radarSeed
		}
		if flags.Changed("no-noise") {
			cfg.Radar.DisableNoise = radarNoNoise
		}
		cfg.Output.Plot = plotPath
		return nil
	})
	if err != nil {
		exit(err)
	}

	if err := runRadar(cmd.Context(), cfg, jammed, radarExportIQ, os.Stdout); err != nil {
		exit(err)
	}
}

// runRadar simulates one frame of the configured scenario, renders it to
// cfg.Output.Plot and optionally exports the received samples
func runRadar(ctx context.Context, cfg *config.Config, jammed bool, exportPath string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithFields(logging.Fields{
		"component": "cli",
		"function":  "radar",
		"jammed":    jammed,
	})

	victim := &cfg.Radar.Victim
	var interferer *radar.Radar
	if jammed {
		interferer = &cfg.Radar.Interferer
	}

	sim := radar.NewFMCWSimulator(&radar.SimulatorConfig{
		Seed:         cfg.Radar.Seed,
		DisableNoise: cfg.Radar.DisableNoise,
	})
	result, err := sim.Simulate(ctx, victim, cfg.Radar.Targets, interferer)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	logger.Debug("Simulated frame", logging.Fields{
		"pulses":  result.Pulses(),
		"targets": len(cfg.Radar.Targets),
	})

	var fig *render.RadarFigure
	if jammed {
		fig = render.JammedFigure(victim, interferer, result)
	} else {
		fig = render.VictimFigure(victim, result)
	}

	path := cfg.Output.Plot
	if err := newWriter(cfg, path, fig.Title, nil).Write(path, fig); err != nil {
		return err
	}
	fmt.Fprintf(out, "Visualization saved as '%s'\n", path)

	if exportPath != "" {
		pulses := result.Baseband
		if jammed {
			pulses = radar.Combine(result)
		}
		if err := exportCapture(exportPath, cfg.Input.Format, pulses); err != nil {
			return err
		}
		logger.Info("Baseband exported", logging.Fields{"path": exportPath})
	}

	return nil
}

// exportCapture writes the pulses back to back as one capture. The format
// comes from format, then the file extension, then cf32.
func exportCapture(path, format string, pulses [][]complex128) error {
	f := transcode.Format(format)
	if f == "" {
		if inferred, ok := transcode.FormatFromFilename(path); ok {
			f = inferred
		}
	}

	enc, err := transcode.NewEncoder(f, false)
	if err != nil {
		return err
	}

	var samples iq.Buffer
	for _, p := range pulses {
		samples = append(samples, p...)
	}
	return enc.EncodeFile(path, samples)
}
