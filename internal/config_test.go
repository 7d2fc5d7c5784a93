package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())

	config, err := LoadConfig()

	req.NoError(err)
	req.Equal("INFO", config.LogLevel)
	req.True(config.SimulatorEnabled)
	req.Equal(10*time.Second, config.SimulatorTick)
	req.Equal(0.5, config.SimulatorProbability)
	req.Equal(3*time.Second, config.NotificationDuration)
	req.Equal("bell", config.ToneDevice)
	req.Equal(64, config.BufferSize)
	req.Equal(500*time.Millisecond, config.SinkTimeout)
	req.Equal(0, config.DebugPort)
}

func TestLoadConfig_Overrides(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())
	t.Setenv("SIMULATOR_TICK", "250ms")
	t.Setenv("SIMULATOR_PROBABILITY", "1")
	t.Setenv("TONE_DEVICE", "none")

	config, err := LoadConfig()

	req.NoError(err)
	req.Equal(250*time.Millisecond, config.SimulatorTick)
	req.Equal(1.0, config.SimulatorProbability)
	req.Equal("none", config.ToneDevice)
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"probability above one", "SIMULATOR_PROBABILITY", "1.5"},
		{"unknown tone device", "TONE_DEVICE", "speaker"},
		{"zero tick", "SIMULATOR_TICK", "0s"},
		{"unknown log level", "LOG_LEVEL", "LOUD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}
