package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"stark/internal/compilation"
	"stark/internal/project"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [flags] <name>",
	Short: "List type names close to a misspelled one",
	Long: `Look a name up in the spelling index of every type in scope: the core
library and, with --project, the package and its references. Matching
ignores case`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().String("project", "", "include the types of this package (stark.toml or directory)")
	suggestCmd.Flags().Int("threshold", 2, "maximum edit distance")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	projectArg, err := cmd.Flags().GetString("project")
	if err != nil {
		return fmt.Errorf("failed to get project flag: %w", err)
	}
	threshold, err := cmd.Flags().GetInt("threshold")
	if err != nil {
		return fmt.Errorf("failed to get threshold flag: %w", err)
	}
	if threshold < 0 {
		return fmt.Errorf("threshold must not be negative")
	}

	var comp *compilation.Compilation
	if projectArg != "" {
		ws, bag, err := loadProject(cmd, []string{projectArg})
		if err != nil {
			if errors.Is(err, project.ErrInvalidManifest) {
				if _, printErr := report(cmd, bag, ws, reportOptions{format: "pretty"}); printErr != nil {
					return printErr
				}
				return diagnosticsFailed(cmd)
			}
			return err
		}
		opts, err := compileOptions(cmd, ws, buildFlags{})
		if err != nil {
			return err
		}
		// binding is not needed, declared names are enough
		if comp, err = compilation.FromWorkspace(cmd.Context(), ws, opts); err != nil {
			return err
		}
	} else {
		opts, err := flagOptions(cmd)
		if err != nil {
			return err
		}
		comp = compilation.New(opts)
	}

	matches := comp.NameIndex().Find(args[0], threshold)
	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintf(out, "no type names within %d edits of %q\n", threshold, args[0])
		return nil
	}
	for _, m := range matches {
		fmt.Fprintln(out, m)
	}
	return nil
}
