package diagfmt

import (
	"path/filepath"
	"strings"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses relative or absolute path automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color    bool
	Context  int8 // строк контекста до и после основной
	PathMode PathMode
	// BaseDir is what PathModeRelative and PathModeAuto are relative to.
	BaseDir   string
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	BaseDir          string
	Max              int // обрезка вывода, не Bag
	IncludeNotes     bool
}

// autoPathLimit is the longest path PathModeAuto prints in full.
const autoPathLimit = 48

func formatPath(path string, mode PathMode, base string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(filepath.FromSlash(path)); err == nil {
			return filepath.ToSlash(abs)
		}
		return path
	case PathModeRelative:
		return relativePath(path, base)
	case PathModeBasename:
		return filepath.Base(path)
	}
	rel := relativePath(path, base)
	if len(rel) > autoPathLimit || strings.HasPrefix(rel, "../../") {
		return filepath.Base(path)
	}
	return rel
}

func relativePath(path, base string) string {
	if base == "" {
		return path
	}
	rel, err := filepath.Rel(filepath.FromSlash(base), filepath.FromSlash(path))
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
