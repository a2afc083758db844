// Package commands provides CLI commands for askchat.
package commands

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo/askchat/internal/config"
	"github.com/diogo/askchat/internal/logging"
	"github.com/diogo/askchat/internal/models"
	"github.com/diogo/askchat/internal/tui"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = NewRootCmd(nil)

// NewRootCmd creates the askchat command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	deps = deps.orDefault()

	cmd := &cobra.Command{
		Use:   "askchat",
		Short: "Chat with the store assistant from your terminal",
		Long: `askchat is a terminal chat client for the store assistant service.
Questions go to the service and the reply is shown as it arrives.

Examples:
  askchat chat                          Start interactive chat
  askchat chat --mode simulate          Chat offline with a canned reply
  askchat ask "Any mango slushies?"     Ask a single question
  cat question.txt | askchat ask        Read the question from stdin
  askchat ping                          Check the service is up
  askchat config show                   Print the effective settings`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "askchat %s (built %s)\n", Version, BuildTime)
				return nil
			}
			return cmd.Help()
		},
	}

	// Global flags
	cmd.PersistentFlags().String("url", "", "Assistant service URL (default from config, "+config.EnvBaseURL+" or "+models.DefaultBaseURL+")")
	cmd.PersistentFlags().String("mode", "", "Response channel: stream, ask or simulate")
	cmd.PersistentFlags().Duration("timeout", 0, "Per-request timeout, e.g. 30s")
	cmd.PersistentFlags().BoolP("verbose", "V", false, "Log at debug level")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	// Add subcommands
	cmd.AddCommand(NewChatCmd(deps))
	cmd.AddCommand(NewAskCmd(deps))
	cmd.AddCommand(NewPingCmd(deps))
	cmd.AddCommand(NewConfigCmd(deps))

	return cmd
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context so open channels are released before exit.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		tui.PrintError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// settings are the effective configuration of one command run
type settings struct {
	cfg config.Config
	log *logging.Logger
}

// resolveConfig merges the config file, the environment and the global
// flags, in increasing order of precedence.
func resolveConfig(cmd *cobra.Command, deps *Dependencies) (config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return cfg, err
	}
	cfg = cfg.ApplyEnv(deps.Getenv)

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.BaseURL, _ = flags.GetString("url")
	}
	if flags.Changed("mode") {
		cfg.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("timeout") {
		timeout, _ := flags.GetDuration("timeout")
		cfg.TimeoutSeconds = durationSeconds(timeout)
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadSettings resolves the configuration and opens the log file. With
// console set, verbose runs also log there.
func loadSettings(cmd *cobra.Command, deps *Dependencies, console io.Writer) (*settings, error) {
	cfg, err := resolveConfig(cmd, deps)
	if err != nil {
		return nil, err
	}

	logDir, err := config.EnsureConfigDir()
	if err != nil {
		return nil, err
	}
	opts := logging.Options{Dir: logDir, Verbose: cfg.Verbose}
	if cfg.Verbose {
		opts.Console = console
	}
	log, err := logging.New(opts)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("command", cmd.Name()).
		Str("url", cfg.BaseURL).
		Str("mode", cfg.Mode).
		Dur("timeout", cfg.Timeout()).
		Msg("settings resolved")

	return &settings{cfg: cfg, log: log}, nil
}

// durationSeconds rounds d up to whole seconds. Non-positive input stays
// non-positive so validation can reject it.
func durationSeconds(d time.Duration) int {
	if d <= 0 {
		return int(d / time.Second)
	}
	return int(math.Ceil(d.Seconds()))
}
