package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes reported to the shell.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

var dump bool

var rootCmd = &cobra.Command{
	Use:   "chat-sim",
	Short: "Terminal messaging client with simulated incoming messages",
	Long: `chat-sim renders a messaging client in the terminal: a section sidebar,
a chat list, the open conversation and placeholder panels.

Every few seconds a simulated contact may write to one of the chats you
are not looking at, which raises a toast and plays a short tone.

  chat-sim              # interactive client
  chat-sim headless     # simulator only, notifications on stdout`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(modeTUI)
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the interactive client (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(modeTUI)
	},
}

var headlessCmd = &cobra.Command{
	Use:   "headless",
	Short: "Run the simulator without a screen, printing notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(modeHeadless)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dump, "dump", false, "Print the message journal as a table on exit")
	rootCmd.AddCommand(tuiCmd, headlessCmd)
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chat-sim terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run executes the selected command and maps its failure to an exit code,
// so deferred cleanup inside the command always happens before os.Exit.
func run() (int, error) {
	err := rootCmd.Execute()
	if err == nil {
		return exitOK, nil
	}
	var cfgErr *configError
	if errors.As(err, &cfgErr) {
		return exitConfig, err
	}
	return exitRuntime, err
}

type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }
