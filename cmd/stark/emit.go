package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"stark/internal/compilation"
	"stark/internal/diag"
	"stark/internal/project"
)

var emitCmd = &cobra.Command{
	Use:   "emit [flags] [stark.toml|directory]",
	Short: "Bind a package and write its metadata image",
	Long: `Run check and, when no errors were reported, write the metadata image of
the root package. Interop types of referenced packages are embedded when
[build] embed_interop_types is set`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEmit,
}

func init() {
	addReportFlags(emitCmd)
	emitCmd.Flags().StringP("output", "o", "", "image path (default: [build] output or <name>.smd)")
	emitCmd.Flags().Bool("embed-interop", false, "embed interop types regardless of the manifest")
}

func runEmit(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	opts, err := readReportOptions(cmd)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	embed, err := cmd.Flags().GetBool("embed-interop")
	if err != nil {
		return fmt.Errorf("failed to get embed-interop flag: %w", err)
	}

	ws, comp, bag, err := compile(cmd, args, buildFlags{noCache: opts.noCache, embedInterop: embed})
	if err != nil && !errors.Is(err, project.ErrInvalidManifest) {
		return err
	}
	failed, printErr := report(cmd, bag, ws, opts)
	if printErr != nil {
		return printErr
	}
	if err != nil || failed {
		return diagnosticsFailed(cmd)
	}
	path := outputPath(ws.Root, output)
	n, err := writeImage(cmd, comp, path)
	if err != nil {
		// ошибки эмиссии приходят и диагностиками
		if _, printErr := report(cmd, emitDiagnostics(comp.Diagnostics()), ws, opts); printErr != nil {
			return printErr
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "emit failed: %v\n", err)
		return diagnosticsFailed(cmd)
	}
	if err := printTimings(cmd, comp); err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, n)
	}
	return nil
}

// emitDiagnostics keeps what emission reported; the rest was printed by
// the check before it.
func emitDiagnostics(all *diag.Bag) *diag.Bag {
	out := diag.NewBag(all.Len())
	for _, d := range all.Items() {
		if strings.HasPrefix(d.Code.ID(), "EMT") {
			out.Add(d)
		}
	}
	return out
}

// outputPath picks -o, then [build] output relative to the manifest, then
// <package>.smd next to it.
func outputPath(m *project.Manifest, flag string) string {
	if flag != "" {
		return flag
	}
	if out := m.Config.Build.Output; out != "" {
		if filepath.IsAbs(out) {
			return out
		}
		return filepath.Join(m.Root, out)
	}
	return filepath.Join(m.Root, m.Name()+".smd")
}

// writeImage writes through a temporary file so a failed emission never
// leaves a truncated image behind.
func writeImage(cmd *cobra.Command, comp *compilation.Compilation, path string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".stark-emit-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmp.Name())
		}
	}()
	w := bufio.NewWriter(tmp)
	n, err := comp.Emit(cmd.Context(), w)
	if err == nil {
		err = w.Flush()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return n, fmt.Errorf("failed to move image into place: %w", err)
	}
	committed = true
	return n, nil
}
