// Command noisegraph evaluates noise graph scripts: it checks them, prints
// the canonical script of every previewed node and reports value readouts
// and preview sampling plans as JSON.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/chazu/noisegraph/pkg/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags and what PersistentPreRunE builds
// from them.
type rootOptions struct {
	configPath string
	verbosity  int
	timeout    time.Duration

	cfg config.Config
	log logr.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{log: logr.Discard()}

	cmd := &cobra.Command{
		Use:           "noisegraph",
		Short:         "Build, check and export procedural noise graphs",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("verbosity") {
				cfg.Verbosity = opts.verbosity
			}
			if cmd.Flags().Changed("timeout") {
				cfg.EvalTimeout = opts.timeout
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			opts.cfg = cfg
			opts.log = newLogger(cmd.ErrOrStderr(), cfg.Verbosity)
			opts.log.V(1).Info("configuration loaded", "path", opts.configPath,
				"timeout", cfg.EvalTimeout, "resolution", cfg.Preview.Resolution)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	flags.IntVarP(&opts.verbosity, "verbosity", "v", 0, "log verbosity (0-4)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "evaluation timeout (overrides config)")

	cmd.AddCommand(
		newCheckCmd(opts),
		newCompileCmd(opts),
		newEvalCmd(opts),
	)
	return cmd
}

// newLogger builds a console logger on w. Verbosity 0 shows info and
// errors; each step above enables one more V level.
func newLogger(w io.Writer, verbosity int) logr.Logger {
	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"
	zerologr.SetMaxV(verbosity)

	output := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	zl := zerolog.New(output).With().Timestamp().Logger()
	return zerologr.New(&zl).WithName("noisegraph")
}

func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(data), nil
}
