package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// errNoPreview is returned by compile when the script previews nothing.
var errNoPreview = errors.New("script has no preview roots; wrap a node in (preview ...)")

func (e EvalErrorData) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Err combines the report's errors, or returns nil.
func (r Report) Err() error {
	return multierr.Combine(lo.Map(r.Errors, func(e EvalErrorData, _ int) error { return e })...)
}

func evaluateFile(opts *rootOptions, path string) (Report, error) {
	source, err := readSource(path)
	if err != nil {
		return Report{}, err
	}
	log := opts.log.WithValues("script", path)
	return NewApp(opts.cfg, log).Evaluate(source), nil
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check SCRIPT",
		Short: "Evaluate a script and report errors and warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := evaluateFile(opts, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, w := range report.Warnings {
				fmt.Fprintf(out, "warning: node %d: %s\n", w.Node, w.Message)
			}
			for _, e := range report.Errors {
				fmt.Fprintf(out, "error: %s\n", e)
			}
			if len(report.Errors) > 0 {
				return fmt.Errorf("%s: %d error(s)", args[0], len(report.Errors))
			}
			fmt.Fprintf(out, "ok: %d nodes, %d preview(s)\n", report.graph.NodeCount(), len(report.Previews))
			return nil
		},
	}
}

func newCompileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compile SCRIPT",
		Short: "Print the canonical script of every previewed node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := evaluateFile(opts, args[0])
			if err != nil {
				return err
			}
			if err := report.Err(); err != nil {
				return err
			}
			if len(report.Previews) == 0 {
				return errNoPreview
			}
			out := cmd.OutOrStdout()
			for i, p := range report.Previews {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, ";; node %d (%s)\n%s", p.Node, p.Kind, p.Script)
			}
			return nil
		},
	}
}

func newEvalCmd(opts *rootOptions) *cobra.Command {
	var resolution int
	cmd := &cobra.Command{
		Use:   "eval SCRIPT",
		Short: "Print value readouts and preview sampling plans as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("resolution") {
				opts.cfg.Preview.Resolution = resolution
				if err := opts.cfg.Validate(); err != nil {
					return err
				}
			}
			report, err := evaluateFile(opts, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			return report.Err()
		},
	}
	cmd.Flags().IntVarP(&resolution, "resolution", "r", 0, "preview grid size (overrides config)")
	return cmd
}
