// Package conf loads orchestrator configuration from an optional YAML file
// overlaid on built-in defaults, via viper.
package conf

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

// Settings holds every tunable the orchestrator needs at construction time.
type Settings struct {
	Debug bool

	Audio struct {
		SampleRateHz int
		Comfort      struct {
			MinMs int
			MaxMs int
		}
		Overlap struct {
			Ms int
		}
	}

	Ladder struct {
		Steps []int
	}

	Artifacts struct {
		Dir string
	}

	Log LogConfig

	Sentry struct {
		Enabled bool
		DSN     string
	}
}

// LogConfig configures the orchestrator's log files. Path names the
// application log that logging.Init opens without rotation; the rotation,
// size, backup and age fields are read only by logging.NewFileLogger.
type LogConfig struct {
	Enabled     bool
	Path        string
	Rotation    RotationType
	MaxSize     int64
	MaxBackups  int
	MaxAgeDays  int
}

// RotationType selects how the application log file is rotated.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads configuration from the default search paths (and any explicit
// path added via viper.SetConfigFile by the caller before calling Load),
// falling back to built-in defaults when no config file is found.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	validate(settings)

	settingsInstance = settings
	return settings, nil
}

func initViper() error {
	viper.SetConfigName("pcmorchestrator")
	viper.SetConfigType("yaml")

	paths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, p := range paths {
		viper.AddConfigPath(p)
	}

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file on disk is fine; defaults carry the process.
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

func validate(s *Settings) {
	if s.Audio.SampleRateHz <= 0 {
		s.Audio.SampleRateHz = 16000
	}
	if s.Audio.Comfort.MinMs <= 0 {
		s.Audio.Comfort.MinMs = 200
	}
	if s.Audio.Comfort.MaxMs <= s.Audio.Comfort.MinMs {
		s.Audio.Comfort.MaxMs = s.Audio.Comfort.MinMs * 3
	}
	if len(s.Ladder.Steps) == 0 {
		s.Ladder.Steps = []int{8, 12, 16, 24, 32, 48, 64}
	}
	if s.Artifacts.Dir == "" {
		s.Artifacts.Dir = "artifacts"
	}
}

// Setting returns the most recently loaded Settings, or built-in defaults
// if Load has never been called.
func Setting() *Settings {
	settingsMutex.RLock()
	s := settingsInstance
	settingsMutex.RUnlock()
	if s != nil {
		return s
	}
	s = &Settings{}
	validate(s)
	return s
}
