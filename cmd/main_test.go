package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_InvalidConfigExitsWithConfigCode(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())
	t.Setenv("SIMULATOR_PROBABILITY", "1.5")
	rootCmd.SetArgs([]string{"headless"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	code, err := run()

	req.Error(err)
	req.Equal(exitConfig, code)
}

func TestRun_UnknownCommandIsRuntimeError(t *testing.T) {
	req := require.New(t)
	rootCmd.SetArgs([]string{"fly"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	code, err := run()

	req.Error(err)
	req.Equal(exitRuntime, code)
}

func TestNewRandom_FixedSeedIsDeterministic(t *testing.T) {
	req := require.New(t)

	a, b := newRandom(42), newRandom(42)

	for range 10 {
		req.Equal(a.IntN(1000), b.IntN(1000))
	}
}
