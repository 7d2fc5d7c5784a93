package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel             string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	LogFile              string        `env:"LOG_FILE,default=chat-sim.log" validate:"required"`
	SeedFile             string        `env:"SEED_FILE"`
	SimulatorEnabled     bool          `env:"SIMULATOR_ENABLED,default=true"`
	SimulatorTick        time.Duration `env:"SIMULATOR_TICK,default=10s" validate:"gt=0"`
	SimulatorProbability float64       `env:"SIMULATOR_PROBABILITY,default=0.5" validate:"gte=0,lte=1"`
	SimulatorSeed        int64         `env:"SIMULATOR_SEED,default=0"`
	NotificationDuration time.Duration `env:"NOTIFICATION_DURATION,default=3s" validate:"gt=0"`
	ToneDevice           string        `env:"TONE_DEVICE,default=bell" validate:"oneof=bell wav none"`
	ToneDir              string        `env:"TONE_DIR"`
	BufferSize           int           `env:"BUFFER_SIZE,default=64" validate:"gt=0"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=500ms" validate:"gt=0"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s" validate:"gt=0"`
	DebugPort            int           `env:"DEBUG_PORT,default=0" validate:"gte=0,lte=65535"`
}

// LoadConfig reads an optional .env file, then the environment, then
// validates the result.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("dotenv error: %w", err)
	}
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
