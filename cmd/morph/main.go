package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vango-dev/morph/internal/config"
	"github.com/vango-dev/morph/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "morph",
		Short: "Reconcile live HTML trees against new markup",
		Long: `Morph updates a live HTML tree in place so it matches a target tree.

Matching elements are kept and updated, keyed elements keep their
identity across reorders, and form controls keep the state a user
gave them unless the target says otherwise.

  morph apply live.html target.html   Reconcile two files
  morph serve                         Run the tree server
  morph policy                        List control-state handlers`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "Config file (default: morph.toml or morph.json in the working directory)")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&g.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		applyCmd(g),
		serveCmd(g),
		policyCmd(),
		versionCmd(),
	)
	return rootCmd
}

// load reads the config file, applies flag overrides and validates the
// result.
func (g *globalFlags) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.Load(g.configPath)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, err
	}

	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", yellow("⚠"), fmt.Sprintf(format, args...))
}
