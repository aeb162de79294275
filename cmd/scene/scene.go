// Package scene wires the scenario harness into the pcmctl CLI.
package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/morpheus-tts/pcmorchestrator/internal/conf"
	"github.com/morpheus-tts/pcmorchestrator/internal/logging"
	"github.com/morpheus-tts/pcmorchestrator/internal/orchestrator"
	"github.com/morpheus-tts/pcmorchestrator/internal/scenes"
)

// Command builds the "scene" command tree.
func Command(settings *conf.Settings) *cobra.Command {
	sceneCmd := &cobra.Command{
		Use:   "scene",
		Short: "Run scenario adapters against the orchestrator and capture artifacts",
	}
	sceneCmd.AddCommand(runCommand(settings))
	return sceneCmd
}

func runCommand(settings *conf.Settings) *cobra.Command {
	var outDir string
	var all bool

	cmd := &cobra.Command{
		Use:   "run [name]",
		Short: "Run one named scenario, or every scenario with --all",
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.ExactArgs(0)(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				outDir = settings.Artifacts.Dir
			}

			log := logging.ForService("orchestrator")
			reg := prometheus.NewRegistry()
			metrics := orchestrator.NewMetrics(reg, nil)

			h := scenes.NewHarness(outDir, 5*time.Minute, settings, log, metrics)

			if all {
				results, err := h.RunAll(cmd.Context())
				if err != nil {
					return fmt.Errorf("running scenarios: %w", err)
				}
				for _, r := range results {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, %s\n", r.Name, r.TimelinePath, r.WavPath)
				}
			} else {
				r, err := h.Run(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("running scenario %q: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, %s\n", r.Name, r.TimelinePath, r.WavPath)
			}

			if err := dumpMetrics(reg, outDir); err != nil {
				return fmt.Errorf("dumping metrics: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "directory to write artifacts into (defaults to artifacts.dir)")
	cmd.Flags().BoolVar(&all, "all", false, "run every registered scenario")

	return cmd
}

// dumpMetrics gathers everything registered against reg and writes it in
// Prometheus text exposition format to <outDir>/metrics.prom. pcmctl scene
// run is a one-shot CLI, not a long-running server, so a scrape endpoint
// has nowhere to live; a file next to the other scenario artifacts is the
// diagnostic-CLI equivalent of exposing the registry.
func dumpMetrics(reg *prometheus.Registry, outDir string) error {
	mfs, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(outDir, "metrics.prom"))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := expfmt.NewEncoder(f, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encoding metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
