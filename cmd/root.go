// Package cmd wires the pcmctl command tree: scenario harness, timeline
// replay, and the global flags shared across both.
package cmd

import (
	"fmt"
	"log"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/morpheus-tts/pcmorchestrator/cmd/replay"
	"github.com/morpheus-tts/pcmorchestrator/cmd/scene"
	"github.com/morpheus-tts/pcmorchestrator/internal/conf"
	"github.com/morpheus-tts/pcmorchestrator/internal/errors"
	"github.com/morpheus-tts/pcmorchestrator/internal/hostinfo"
	"github.com/morpheus-tts/pcmorchestrator/internal/logging"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pcmctl",
		Short: "Streaming PCM orchestrator diagnostic CLI",
	}

	loadConfigFile, err := setupFlags(rootCmd, settings)
	if err != nil {
		log.Printf("error setting up flags: %v\n", err)
		loadConfigFile = func(*cobra.Command, []string) error { return nil }
	}

	sceneCmd := scene.Command(settings)
	replayCmd := replay.Command(settings)

	rootCmd.AddCommand(sceneCmd, replayCmd)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := loadConfigFile(cmd, args); err != nil {
			return err
		}
		if err := initialize(settings); err != nil {
			return fmt.Errorf("error initializing: %w", err)
		}
		return nil
	}

	return rootCmd
}

// initialize is called before any subcommand runs, once global flags and
// config have been loaded into settings.
func initialize(settings *conf.Settings) error {
	logging.Init()
	if settings.Debug {
		logging.SetLevel(logging.LevelTrace)
	}
	hostinfo.LogCPUInfo(logging.ForService("hostinfo"))

	if settings.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{Dsn: settings.Sentry.DSN}); err != nil {
			return fmt.Errorf("initializing sentry: %w", err)
		}
		errors.SetReporter(errors.NewSentryReporter())
	}

	return nil
}

// setupFlags defines flags global to the command line interface, binds
// them through viper so a config file and flags can both set them, and
// returns a PersistentPreRunE step that loads --config if one was given.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) (func(*cobra.Command, []string) error, error) {
	var configFile string
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a pcmorchestrator.yaml config file")
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&settings.Audio.SampleRateHz, "sample-rate", viper.GetInt("audio.sampleratehz"), "PCM sample rate in Hz")
	rootCmd.PersistentFlags().IntVar(&settings.Audio.Comfort.MinMs, "comfort-low-ms", viper.GetInt("audio.comfort.minms"), "lower bound of the comfortable playback buffer depth, in ms")
	rootCmd.PersistentFlags().IntVar(&settings.Audio.Comfort.MaxMs, "comfort-high-ms", viper.GetInt("audio.comfort.maxms"), "upper bound of the comfortable playback buffer depth, in ms")
	rootCmd.PersistentFlags().StringVar(&settings.Artifacts.Dir, "artifacts-dir", viper.GetString("artifacts.dir"), "directory scenario artifacts are written to")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return nil, fmt.Errorf("error binding flags: %w", err)
	}

	loadConfigFile := func(cmd *cobra.Command, args []string) error {
		if configFile == "" {
			return nil
		}
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading --config file: %w", err)
		}
		return nil
	}

	return loadConfigFile, nil
}
