package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFillsDefaultsForZeroValue(t *testing.T) {
	s := &Settings{}
	validate(s)

	assert.Equal(t, 16000, s.Audio.SampleRateHz)
	assert.Equal(t, 200, s.Audio.Comfort.MinMs)
	assert.Equal(t, 600, s.Audio.Comfort.MaxMs)
	assert.Equal(t, []int{8, 12, 16, 24, 32, 48, 64}, s.Ladder.Steps)
	assert.Equal(t, "artifacts", s.Artifacts.Dir)
}

func TestValidateClampsInvertedComfortBand(t *testing.T) {
	s := &Settings{}
	s.Audio.Comfort.MinMs = 300
	s.Audio.Comfort.MaxMs = 100

	validate(s)

	assert.Greater(t, s.Audio.Comfort.MaxMs, s.Audio.Comfort.MinMs)
}

func TestSettingReturnsDefaultsWithoutLoad(t *testing.T) {
	settingsMutex.Lock()
	settingsInstance = nil
	settingsMutex.Unlock()

	s := Setting()

	assert.Equal(t, 16000, s.Audio.SampleRateHz)
}
