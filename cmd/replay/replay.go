// Package replay wires the timeline-to-WAV replay tool into the pcmctl CLI.
package replay

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/morpheus-tts/pcmorchestrator/internal/conf"
	"github.com/morpheus-tts/pcmorchestrator/internal/replay"
)

// Command builds the "replay" command.
func Command(settings *conf.Settings) *cobra.Command {
	var outPath string
	var sampleRate int

	cmd := &cobra.Command{
		Use:   "replay <log>",
		Short: "Reconstruct a WAV file from a recorded timeline log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sampleRate <= 0 {
				sampleRate = settings.Audio.SampleRateHz
			}
			if outPath == "" {
				outPath = "replay.wav"
			}

			in, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening timeline log: %w", err)
			}
			defer in.Close()

			out, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating output WAV: %w", err)
			}
			defer out.Close()

			if err := replay.WriteWAV(in, out, sampleRate); err != nil {
				return fmt.Errorf("%s", replay.FormatEncodingError(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output WAV path (default replay.wav)")
	cmd.Flags().IntVar(&sampleRate, "sample-rate", 0, "sample rate in Hz (defaults to configured audio.sampleratehz)")

	return cmd
}
