// spacedodge is a terminal arcade game: dodge the falling enemies, score for
// every one that gets past you.
//
// Usage:
//
//	spacedodge play          - Play in this terminal
//	spacedodge serve         - Serve the game over SSH (and optionally the API)
//	spacedodge api           - Run the score backend
//	spacedodge scores        - Show the tiered leaderboard
//	spacedodge simulate      - Run a deterministic headless game
//	spacedodge account       - Register, log in, log out, show coins
//	spacedodge config        - Print the default configuration
//
// Global flags:
//
//	--config <path>     - Config file (.yaml or .toml)
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/space-dodge/internal/config"
)

var (
	// Global flags
	flagConfig   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "spacedodge",
	Short: "Space Dodge - dodge falling enemies in your terminal",
	Long: `Space Dodge is a terminal arcade game. Enemies fall from the top of the
field; move your ship left and right to avoid them. Every enemy that gets
past you scores points, every hit costs a life.

Available commands:
  play      - Play in this terminal
  serve     - Serve the game over SSH
  api       - Run the score backend
  scores    - Show the tiered leaderboard
  simulate  - Run a deterministic headless game
  account   - Manage your backend account
  config    - Print the default configuration

Examples:
  spacedodge play
  spacedodge play --offline --seed 42
  spacedodge api --addr :8080
  spacedodge serve --ssh :2222 --api
  spacedodge scores --tui`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (.yaml or .toml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the default configuration",
	Long: `Print the built-in configuration as YAML.

Save it to ~/.spacedodge/configs/dodge.yaml (or pass it with --config) and
edit the values you want to change.

Example:
  spacedodge config > ~/.spacedodge/configs/dodge.yaml`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		os.Stdout.Write(config.DefaultYAML())
	},
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// loadConfig loads the configuration selected by --config.
func loadConfig() config.DodgeConfig {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fail("%v", err)
	}
	return cfg
}

// newLogger returns a stderr logger for server commands.
func newLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	logger.SetLevel(parseLevel())
	return logger
}

// newFileLogger returns a logger writing to ~/.spacedodge/spacedodge.log so
// log lines never draw over the game. The returned func closes the file.
func newFileLogger(prefix string) (*log.Logger, func()) {
	path, err := config.ExpandHome("~/.spacedodge/spacedodge.log")
	if err == nil {
		err = os.MkdirAll(filepath.Dir(path), 0o755)
	}
	var f *os.File
	if err == nil {
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot open log file: %v\n", err)
		logger := log.New(io.Discard)
		return logger, func() {}
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	logger.SetLevel(parseLevel())
	return logger, func() { f.Close() }
}

func parseLevel() log.Level {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		fail("invalid --log-level %q", flagLogLevel)
	}
	return level
}
