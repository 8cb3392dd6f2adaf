package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"stark/internal/diag"
	"stark/internal/source"
	"stark/internal/syntax"
	"stark/internal/testkit"
)

const geoManifest = `
[package]
name = "geo"

[build]
jobs = 4
embed_interop_types = true

[[type]]
name = "Color"
kind = "enum"
namespace = "geo"
base = "u8"
member = [{ name = "Red" }, { name = "Green", value = 5 }]

[[type]]
name = "Vector"
kind = "struct"
namespace = "geo"
accessibility = "public"
field = [{ name = "X", type = "f64" }, { name = "Y", type = "f64" }]

[[type.method]]
name = "Scale"
modifiers = ["static"]
returns = "Vector"
params = [
  { name = "v", type = "Vector" },
  { name = "k", type = "f64", default = 1, modifiers = [{ type = "IsConst", optional = true }] },
]
body = "v:Vector"
`

func parse(t *testing.T, text string) (*Manifest, *source.File, []diag.Diagnostic, error) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.Add("stark.toml", []byte(text), 0)
	bag := diag.NewBag(0)
	m, err := Parse(fs, id, diag.BagReporter{Bag: bag})
	return m, fs.Get(id), bag.Items(), err
}

func text(f *source.File, sp source.Span) string {
	return string(f.Content[sp.Start:sp.End])
}

func TestParseManifest(t *testing.T) {
	m, f, ds, err := parse(t, geoManifest)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ds) != 0 {
		t.Fatalf("diagnostics = %+v", ds)
	}
	if m.Name() != "geo" || m.Config.Build.Jobs != 4 || !m.Config.Build.EmbedInteropTypes || !m.CacheEnabled() {
		t.Fatalf("config = %+v", m.Config)
	}
	if len(m.Decls) != 2 {
		t.Fatalf("decls = %d", len(m.Decls))
	}
	color, vec := m.Decls[0], m.Decls[1]
	if color.Kind != syntax.DeclEnum || len(color.Bases) != 1 || color.Bases[0].Name != "u8" {
		t.Fatalf("color = %+v", color)
	}
	if len(color.Members) != 2 || color.Members[0].Value != nil || *color.Members[1].Value != 5 {
		t.Fatalf("members = %+v", color.Members)
	}
	if got := text(f, vec.NameSpan); got != "Vector" {
		t.Fatalf("name span covers %q", got)
	}
	if len(vec.Fields) != 2 || vec.Fields[1].Type.Name != "f64" {
		t.Fatalf("fields = %+v", vec.Fields)
	}
	scale := vec.Methods[0]
	if scale.Modifiers != syntax.ModStatic || scale.Returns.Name != "Vector" || len(scale.Params) != 2 {
		t.Fatalf("method = %+v", scale)
	}
	k := scale.Params[1]
	if k.Default == nil || k.Default.Kind != syntax.LitInt || k.Default.Int != 1 {
		t.Fatalf("default = %+v", k.Default)
	}
	if len(k.Modifiers) != 1 || !k.Modifiers[0].Optional || k.Modifiers[0].Type.Name != "IsConst" {
		t.Fatalf("modifiers = %+v", k.Modifiers)
	}
	if got := text(f, k.Span); got != "k" {
		t.Fatalf("param span covers %q", got)
	}
	if _, ok := scale.Body.(*syntax.TypedExpr); !ok {
		t.Fatalf("body = %T", scale.Body)
	}
}

func TestManifestDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		text string
		code diag.Code
		want string
	}{
		{"unknown kind", "[package]\nname = \"p\"\n[[type]]\nname = \"A\"\nkind = \"union\"\n", diag.PrjUnknownKind, "union"},
		{"bad type", "[package]\nname = \"p\"\n[[type]]\nname = \"A\"\nfield = [{ name = \"f\", type = \"List<\" }]\n", diag.PrjInvalidValue, "List<"},
		{"bad modifier", "[package]\nname = \"p\"\n[[type]]\nname = \"A\"\n[[type.method]]\nname = \"M\"\nmodifiers = [\"frozen\"]\n", diag.PrjInvalidValue, "frozen"},
		{"members on class", "[package]\nname = \"p\"\n[[type]]\nname = \"A\"\nmember = [{ name = \"X\" }]\n", diag.PrjInvalidValue, "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, f, ds, err := parse(t, tt.text)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(ds) != 1 || ds[0].Code != tt.code {
				t.Fatalf("diagnostics = %+v", ds)
			}
			if got := text(f, ds[0].Primary); got != tt.want {
				t.Fatalf("reported at %q, want %q", got, tt.want)
			}
			if len(m.Decls) != 0 {
				t.Fatalf("broken declaration kept: %+v", m.Decls)
			}
		})
	}
}

func TestManifestUnknownKeyWarns(t *testing.T) {
	m, _, ds, err := parse(t, "[package]\nname = \"p\"\nflavour = \"x\"\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ds) != 1 || ds[0].Code != diag.PrjInvalidValue || ds[0].Severity != diag.SevWarning {
		t.Fatalf("diagnostics = %+v", ds)
	}
	if m.Name() != "p" {
		t.Fatalf("name = %q", m.Name())
	}
}

func TestManifestRejected(t *testing.T) {
	tests := []struct {
		name string
		text string
		code diag.Code
	}{
		{"syntax", "[package\nname = 1", diag.PrjManifestSyntax},
		{"no name", "[package]\n", diag.PrjMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, ds, err := parse(t, tt.text)
			if !errors.Is(err, ErrInvalidManifest) || m != nil {
				t.Fatalf("err = %v, manifest = %v", err, m)
			}
			if len(ds) != 1 || ds[0].Code != tt.code {
				t.Fatalf("diagnostics = %+v", ds)
			}
		})
	}
}

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func names(ms []*Manifest) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name()
	}
	return out
}

func TestWorkspaceReferenceOrder(t *testing.T) {
	base := t.TempDir()
	root := writeManifest(t, filepath.Join(base, "app"),
		"[package]\nname = \"app\"\n[references]\noffice = { path = \"../office\" }\nbase = { path = \"../base\" }\n")
	writeManifest(t, filepath.Join(base, "office"),
		"[package]\nname = \"office\"\ninterop = true\n[references]\nbase = { path = \"../base\" }\n")
	writeManifest(t, filepath.Join(base, "base"), "[package]\nname = \"base\"\n")

	bag := diag.NewBag(0)
	ws, err := LoadWorkspace(root, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if bag.Len() != 0 {
		t.Fatalf("diagnostics = %+v", bag.Items())
	}
	got := names(ws.Packages)
	if len(got) != 2 || got[0] != "base" || got[1] != "office" {
		t.Fatalf("packages = %v", got)
	}
	if !ws.Packages[1].Config.Package.Interop {
		t.Fatal("office is not interop")
	}
	if ws.Digest.IsZero() || ws.Digest == ws.Root.Digest {
		t.Fatalf("digest %s does not cover references", ws.Digest)
	}
}

func TestWorkspaceReferenceProblems(t *testing.T) {
	base := t.TempDir()
	root := writeManifest(t, filepath.Join(base, "app"),
		"[package]\nname = \"app\"\n[references]\na = { path = \"../a\" }\ngone = { path = \"../gone\" }\n")
	writeManifest(t, filepath.Join(base, "a"), "[package]\nname = \"a\"\n[references]\nb = { path = \"../b\" }\n")
	writeManifest(t, filepath.Join(base, "b"), "[package]\nname = \"b\"\n[references]\na = { path = \"../a\" }\n")

	bag := diag.NewBag(0)
	ws, err := LoadWorkspace(root, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var missing, cycles int
	for _, d := range bag.Items() {
		switch d.Code {
		case diag.PrjMissingReference:
			missing++
		case diag.PrjReferenceCycle:
			cycles++
		default:
			t.Fatalf("unexpected %+v", d)
		}
	}
	if missing != 1 || cycles != 2 {
		t.Fatalf("missing = %d, cycles = %d", missing, cycles)
	}
	if got := names(ws.Packages); len(got) != 2 {
		t.Fatalf("packages = %v, want both cycle members", got)
	}
}

func TestFindManifest(t *testing.T) {
	base := t.TempDir()
	want := writeManifest(t, base, "[package]\nname = \"p\"\n")
	nested := filepath.Join(base, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok, err := FindManifest(nested)
	if err != nil || !ok {
		t.Fatalf("find: %v, %v", ok, err)
	}
	if got != want {
		t.Fatalf("found %s, want %s", got, want)
	}
}

func TestTestdataWorkspace(t *testing.T) {
	bag := diag.NewBag(0)
	ws, err := LoadWorkspace(filepath.Join("..", "..", "testdata", "app", ManifestName), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %+v", bag.Items())
	}
	if got := names(ws.Packages); len(got) != 2 || got[0] != "geo" || got[1] != "office" {
		t.Fatalf("packages = %v", got)
	}
	for _, m := range append([]*Manifest{ws.Root}, ws.Packages...) {
		if len(m.Decls) == 0 {
			t.Fatalf("%s: no declarations", m.Name())
		}
		if err := testkit.CheckDeclSpans(m.Decls, ws.Files.Get(m.File)); err != nil {
			t.Fatalf("%s: %v", m.Name(), err)
		}
	}
}
