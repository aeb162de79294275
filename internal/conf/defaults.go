package conf

import "github.com/spf13/viper"

// setDefaults registers every configuration key's default value with viper,
// mirroring the per-key viper.SetDefault style the rest of the pack uses
// instead of an embedded YAML file.
func setDefaults() {
	viper.SetDefault("debug", false)

	viper.SetDefault("audio.sampleratehz", 16000)
	viper.SetDefault("audio.comfort.minms", 200)
	viper.SetDefault("audio.comfort.maxms", 600)
	viper.SetDefault("audio.overlap.ms", 5)

	viper.SetDefault("ladder.steps", []int{8, 12, 16, 24, 32, 48, 64})

	viper.SetDefault("artifacts.dir", "artifacts")

	viper.SetDefault("log.enabled", true)
	viper.SetDefault("log.path", "logs/orchestrator.log")
	viper.SetDefault("log.rotation", string(RotationSize))
	viper.SetDefault("log.maxsize", int64(10*1024*1024))
	viper.SetDefault("log.maxbackups", 3)
	viper.SetDefault("log.maxagedays", 28)

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")
}
