package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"stark/internal/compilation"
	"stark/internal/diag"
	"stark/internal/project"
	"stark/internal/trace"
)

// errDiagnostics is returned after diagnostics were printed; main only
// needs the exit status.
var errDiagnostics = errors.New("compilation failed")

// manifestPathFor maps a command argument to a manifest path: a manifest
// file is used as is, a directory must contain one, and no argument
// searches upward from the working directory.
func manifestPathFor(arg string) (string, error) {
	if arg == "" {
		path, ok, err := project.FindManifest(".")
		if err != nil {
			return "", err
		}
		if !ok {
			return "", project.ErrManifestNotFound
		}
		return path, nil
	}
	info, err := os.Stat(arg)
	if err != nil {
		return "", fmt.Errorf("failed to stat %q: %w", arg, err)
	}
	if !info.IsDir() {
		return arg, nil
	}
	path := filepath.Join(arg, project.ManifestName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", arg, project.ErrManifestNotFound)
		}
		return "", fmt.Errorf("failed to stat %q: %w", path, err)
	}
	return path, nil
}

// loadProject loads the workspace named by args. Manifest problems land in
// the returned bag. An unusable root manifest still returns the workspace
// files so the bag can be printed.
func loadProject(cmd *cobra.Command, args []string) (*project.Workspace, *diag.Bag, error) {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	path, err := manifestPathFor(arg)
	if err != nil {
		return nil, nil, err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	bag := diag.NewBag(maxDiagnostics)
	ws, err := project.LoadWorkspace(path, diag.BagReporter{Bag: bag})
	if err != nil {
		return ws, bag, err
	}
	if err := tracingFromManifest(cmd, ws.Root); err != nil {
		return nil, bag, err
	}
	return ws, bag, nil
}

// buildFlags are the command flags that change how a workspace compiles.
type buildFlags struct {
	noCache      bool
	embedInterop bool
}

// flagOptions turns the global flags into compilation options. Values left
// at zero are filled from the root manifest by FromWorkspace.
func flagOptions(cmd *cobra.Command) (compilation.Options, error) {
	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return compilation.Options{}, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return compilation.Options{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return compilation.Options{
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
		Tracer:         trace.FromContext(cmd.Context()),
	}, nil
}

// compileOptions adds the build flags and the name index cache of the
// root manifest to the flag options.
func compileOptions(cmd *cobra.Command, ws *project.Workspace, bf buildFlags) (compilation.Options, error) {
	opts, err := flagOptions(cmd)
	if err != nil {
		return opts, err
	}
	opts.Emit.EmbedInteropTypes = bf.embedInterop
	if !bf.noCache && ws.Root.CacheEnabled() {
		cache, err := openCache(ws.Root)
		if err != nil {
			// без кэша индекс просто строится заново
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: name index cache disabled: %v\n", err)
		} else {
			opts.Cache = cache
		}
	}
	return opts, nil
}

// openCache opens the cache directory named by [cache] dir, relative to the
// manifest, or the user cache directory.
func openCache(m *project.Manifest) (*compilation.IndexCache, error) {
	dir := m.Config.Cache.Dir
	if dir != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(m.Root, dir)
	}
	return compilation.OpenIndexCache(dir)
}

// compile loads, binds and returns the compilation together with every
// diagnostic reported on the way. A nil compilation means the workspace
// could not be declared.
func compile(cmd *cobra.Command, args []string, bf buildFlags) (*project.Workspace, *compilation.Compilation, *diag.Bag, error) {
	ws, bag, err := loadProject(cmd, args)
	if err != nil {
		return ws, nil, bag, err
	}
	opts, err := compileOptions(cmd, ws, bf)
	if err != nil {
		return ws, nil, bag, err
	}
	comp, err := compilation.FromWorkspace(cmd.Context(), ws, opts)
	if err != nil {
		return ws, nil, bag, err
	}
	err = comp.BindAll(cmd.Context())
	bag.Merge(comp.Diagnostics())
	return ws, comp, bag, err
}

func printTimings(cmd *cobra.Command, comp *compilation.Compilation) error {
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if timings && comp != nil {
		fmt.Fprint(cmd.ErrOrStderr(), comp.Timer().Summary())
	}
	return nil
}
