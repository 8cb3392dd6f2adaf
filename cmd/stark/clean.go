package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"stark/internal/compilation"
	"stark/internal/diag"
	"stark/internal/project"
	"stark/internal/source"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [stark.toml|directory]",
	Short: "Remove the name index cache",
	Long: `Remove every cached name index from the cache directory of the package,
or from the user cache directory when no package is found`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	cache, err := cleanTarget(arg)
	if err != nil {
		return err
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to clean %q: %w", cache.Dir(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed name index cache in %s\n", cache.Dir())
	return nil
}

// cleanTarget opens the cache the package at arg would use. Only the
// [cache] section matters, so a manifest with broken types still works.
func cleanTarget(arg string) (*compilation.IndexCache, error) {
	path, err := manifestPathFor(arg)
	if errors.Is(err, project.ErrManifestNotFound) && arg == "" {
		return compilation.OpenIndexCache("")
	}
	if err != nil {
		return nil, err
	}
	m, err := project.Load(source.NewFileSet(), path, diag.NopReporter{})
	if err != nil {
		return nil, err
	}
	return openCache(m)
}
