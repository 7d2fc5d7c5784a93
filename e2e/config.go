package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_TICK is the simulator period used by the scenarios
	Tick time.Duration `envconfig:"E2E_TICK" default:"20ms"`
	// E2E_TIMEOUT bounds every wait on background work
	Timeout time.Duration `envconfig:"E2E_TIMEOUT" default:"5s"`
	// E2E_DUMP_JOURNAL prints the journal table at the end of a suite
	DumpJournal bool `envconfig:"E2E_DUMP_JOURNAL" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours  bool   `envconfig:"E2E_COLOURS" default:"true"`
	SeedFile string `envconfig:"E2E_SEED_FILE"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
