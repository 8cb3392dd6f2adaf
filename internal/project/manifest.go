package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"stark/internal/diag"
	"stark/internal/source"
	"stark/internal/syntax"
)

// ManifestName is the file a package is described by.
const ManifestName = "stark.toml"

var (
	ErrManifestNotFound = errors.New("project: no " + ManifestName + " found")
	ErrInvalidManifest  = errors.New("project: invalid manifest")
)

// Config mirrors stark.toml.
type Config struct {
	Package    PackageConfig              `toml:"package"`
	Build      BuildConfig                `toml:"build"`
	Cache      CacheConfig                `toml:"cache"`
	References map[string]ReferenceConfig `toml:"references"`
	Types      []TypeConfig               `toml:"type"`
}

type PackageConfig struct {
	Name string `toml:"name"`
	// Interop marks every type of the package as embeddable into the
	// modules that reference it.
	Interop bool `toml:"interop"`
}

type BuildConfig struct {
	Jobs              int    `toml:"jobs"`
	MaxDiagnostics    int    `toml:"max_diagnostics"`
	EmbedInteropTypes bool   `toml:"embed_interop_types"`
	Output            string `toml:"output"`
	TraceLevel        string `toml:"trace_level"`
	TraceOutput       string `toml:"trace_output"`
}

type CacheConfig struct {
	Dir     string `toml:"dir"`
	Enabled *bool  `toml:"enabled"`
}

// ReferenceConfig names another package directory, relative to the
// referencing manifest.
type ReferenceConfig struct {
	Path string `toml:"path"`
}

type TypeConfig struct {
	Name          string            `toml:"name"`
	Kind          string            `toml:"kind"`
	Namespace     string            `toml:"namespace"`
	Base          string            `toml:"base"`
	Interfaces    []string          `toml:"interfaces"`
	Accessibility string            `toml:"accessibility"`
	TypeParams    []string          `toml:"type_params"`
	Guid          string            `toml:"guid"`
	Members       []MemberConfig    `toml:"member"`
	Fields        []FieldConfig     `toml:"field"`
	Methods       []MethodConfig    `toml:"method"`
	Attributes    []AttributeConfig `toml:"attribute"`
}

type MemberConfig struct {
	Name  string `toml:"name"`
	Value *int64 `toml:"value"`
}

type FieldConfig struct {
	Name          string   `toml:"name"`
	Type          string   `toml:"type"`
	Modifiers     []string `toml:"modifiers"`
	Accessibility string   `toml:"accessibility"`
}

type MethodConfig struct {
	Name            string            `toml:"name"`
	Kind            string            `toml:"kind"`
	Modifiers       []string          `toml:"modifiers"`
	Accessibility   string            `toml:"accessibility"`
	TypeParams      []string          `toml:"type_params"`
	Returns         string            `toml:"returns"`
	ReturnModifiers []ModifierConfig  `toml:"return_modifiers"`
	Params          []ParamConfig     `toml:"params"`
	Attributes      []AttributeConfig `toml:"attribute"`
	Body            string            `toml:"body"`
}

type ParamConfig struct {
	Name       string            `toml:"name"`
	Type       string            `toml:"type"`
	Ref        string            `toml:"ref"`
	Optional   bool              `toml:"optional"`
	Default    any               `toml:"default"`
	Params     bool              `toml:"params"`
	Modifiers  []ModifierConfig  `toml:"modifiers"`
	Attributes []AttributeConfig `toml:"attributes"`
}

type ModifierConfig struct {
	Type     string `toml:"type"`
	Optional bool   `toml:"optional"`
}

type AttributeConfig struct {
	Name string `toml:"name"`
	Args []any  `toml:"args"`
}

// Manifest is one loaded package.
type Manifest struct {
	Path   string
	Root   string
	File   source.FileID
	Digest Digest
	Config Config
	// Decls are the declarations that converted without errors.
	Decls []*syntax.TypeDecl
}

// Name is the package name, which is also its assembly name.
func (m *Manifest) Name() string { return strings.TrimSpace(m.Config.Package.Name) }

// CacheEnabled defaults to true.
func (m *Manifest) CacheEnabled() bool {
	return m.Config.Cache.Enabled == nil || *m.Config.Cache.Enabled
}

// FindManifest walks up from startDir to locate stark.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads and validates one manifest. Problems with its contents are
// reported to r; the returned error is ErrInvalidManifest when the file
// could not be used at all.
func Load(fs *source.FileSet, path string, r diag.Reporter) (*Manifest, error) {
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Parse(fs, id, r)
}

// Parse decodes a manifest already loaded into fs.
func Parse(fs *source.FileSet, id source.FileID, r diag.Reporter) (*Manifest, error) {
	file := fs.Get(id)
	var cfg Config
	meta, err := toml.Decode(string(file.Content), &cfg)
	if err != nil {
		at := source.Span{File: id}
		var perr toml.ParseError
		if errors.As(err, &perr) {
			at = spanAt(id, perr.Position.Start, perr.Position.Len)
		}
		diag.ReportError(r, diag.PrjManifestSyntax, at, err.Error()).Emit()
		return nil, fmt.Errorf("%s: %w: %w", file.Path, ErrInvalidManifest, err)
	}
	m := &Manifest{
		Path:   file.Path,
		Root:   filepath.Dir(file.Path),
		File:   id,
		Digest: Digest(file.Hash),
		Config: cfg,
	}
	loc := &locator{file: file}
	if !meta.IsDefined("package", "name") || m.Name() == "" {
		diag.ReportError(r, diag.PrjMissingField, loc.find("[package]"), "missing [package].name").Emit()
		return nil, fmt.Errorf("%s: %w: missing [package].name", file.Path, ErrInvalidManifest)
	}
	for _, key := range meta.Undecoded() {
		diag.ReportWarning(r, diag.PrjInvalidValue, loc.find(key[len(key)-1]),
			fmt.Sprintf("unknown manifest key %q", key.String())).Emit()
	}
	if cfg.Build.Jobs < 0 {
		diag.ReportError(r, diag.PrjInvalidValue, loc.find("jobs"), "[build].jobs must not be negative").Emit()
		m.Config.Build.Jobs = 0
	}
	if cfg.Build.MaxDiagnostics < 0 {
		diag.ReportError(r, diag.PrjInvalidValue, loc.find("max_diagnostics"), "[build].max_diagnostics must not be negative").Emit()
		m.Config.Build.MaxDiagnostics = 0
	}
	loc.reset()
	m.Decls = convertTypes(cfg.Types, loc, r)
	return m, nil
}

func spanAt(id source.FileID, start, n int) source.Span {
	if start < 0 {
		start = 0
	}
	if n < 1 {
		n = 1
	}
	return source.Span{File: id, Start: uint32(start), End: uint32(start + n)} //nolint:gosec // offsets come from a loaded file
}

// locator finds spans for manifest values by scanning forward, so the
// n-th declaration of a name maps to its n-th occurrence.
type locator struct {
	file *source.File
	pos  uint32
}

func (l *locator) reset() { l.pos = 0 }

// find returns the span of needle at or after the cursor without moving it.
func (l *locator) find(needle string) source.Span {
	return l.file.SpanOf(needle, l.pos)
}

// advance moves the cursor to the quoted value and returns its span.
func (l *locator) advance(value string) source.Span {
	sp := l.file.SpanOf(`"`+value+`"`, l.pos)
	if sp.Empty() {
		return sp
	}
	l.pos = sp.Start
	return source.Span{File: sp.File, Start: sp.Start + 1, End: sp.End - 1}
}
