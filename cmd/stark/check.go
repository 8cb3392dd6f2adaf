package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"stark/internal/diag"
	"stark/internal/diagfmt"
	"stark/internal/project"
	"stark/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [stark.toml|directory]",
	Short: "Bind a package and report diagnostics",
	Long: `Load the package manifest and every package it references, complete all
types, bind method bodies and report what was found`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

// init registers the output flags shared by check and emit.
func init() {
	addReportFlags(checkCmd)
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Int8("context", 0, "source lines to show around each diagnostic")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	cmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	cmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	cmd.Flags().Bool("no-cache", false, "do not read or write the name index cache")
}

type reportOptions struct {
	format           string
	withNotes        bool
	context          int8
	fullPath         bool
	noWarnings       bool
	warningsAsErrors bool
	noCache          bool
}

func readReportOptions(cmd *cobra.Command) (reportOptions, error) {
	var opts reportOptions
	var err error
	if opts.format, err = cmd.Flags().GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	if opts.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return opts, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if opts.context, err = cmd.Flags().GetInt8("context"); err != nil {
		return opts, fmt.Errorf("failed to get context flag: %w", err)
	}
	if opts.fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return opts, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if opts.noWarnings, err = cmd.Flags().GetBool("no-warnings"); err != nil {
		return opts, fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	if opts.warningsAsErrors, err = cmd.Flags().GetBool("warnings-as-errors"); err != nil {
		return opts, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if opts.noCache, err = cmd.Flags().GetBool("no-cache"); err != nil {
		return opts, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	switch opts.format {
	case "pretty", "json":
	default:
		return opts, fmt.Errorf("unknown format: %s", opts.format)
	}
	return opts, nil
}

// runCheck exits non-zero when errors were reported, or warnings under
// --warnings-as-errors.
func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	opts, err := readReportOptions(cmd)
	if err != nil {
		return err
	}
	ws, comp, bag, err := compile(cmd, args, buildFlags{noCache: opts.noCache})
	if err != nil && !errors.Is(err, project.ErrInvalidManifest) {
		return err
	}
	failed, printErr := report(cmd, bag, ws, opts)
	if printErr != nil {
		return printErr
	}
	if err := printTimings(cmd, comp); err != nil {
		return err
	}
	if err != nil || failed {
		return diagnosticsFailed(cmd)
	}
	return nil
}

// report prints bag and tells whether it fails the build.
func report(cmd *cobra.Command, bag *diag.Bag, ws *project.Workspace, opts reportOptions) (bool, error) {
	var fs *source.FileSet
	baseDir := ""
	if ws != nil {
		fs = ws.Files
		if ws.Root != nil {
			baseDir = ws.Root.Root
		}
	}
	out := bag.Filter(func(d diag.Diagnostic) (diag.Diagnostic, bool) {
		if opts.warningsAsErrors {
			return d.Promoted(), true
		}
		return d, !opts.noWarnings || d.Severity != diag.SevWarning
	})
	out.Sort()
	out.Dedup()
	failed := out.HasErrors()

	mode := diagfmt.PathModeAuto
	if opts.fullPath {
		mode = diagfmt.PathModeAbsolute
	}
	w := cmd.OutOrStdout()
	if opts.format == "json" {
		return failed, diagfmt.JSON(w, out, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         mode,
			BaseDir:          baseDir,
			IncludeNotes:     opts.withNotes,
		})
	}
	colored, err := useColor(cmd)
	if err != nil {
		return failed, err
	}
	if err := diagfmt.Pretty(w, out, fs, diagfmt.PrettyOpts{
		Color:     colored,
		Context:   opts.context,
		PathMode:  mode,
		BaseDir:   baseDir,
		ShowNotes: opts.withNotes,
	}); err != nil {
		return failed, err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return failed, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if !quiet && out.Len() > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), summarize(out))
	}
	return failed, nil
}

func summarize(bag *diag.Bag) string {
	errs, warns := bag.Counts()
	return fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)
}

// diagnosticsFailed ends a command whose diagnostics are already printed.
func diagnosticsFailed(cmd *cobra.Command) error {
	// PersistentPostRun не вызывается при ошибке
	flushTracing()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return errDiagnostics
}
