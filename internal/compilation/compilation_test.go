package compilation

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"stark/internal/binder"
	"stark/internal/diag"
	"stark/internal/metadata"
	"stark/internal/project"
	"stark/internal/trace"
)

const appManifest = `
[package]
name = "app"

[build]
jobs = 2
embed_interop_types = true

[references]
office = { path = "../office" }

[[type]]
name = "Vector"
kind = "struct"
namespace = "geo"
accessibility = "public"
field = [{ name = "X", type = "f64", accessibility = "public" }]

[[type.method]]
name = "+"
kind = "operator"
modifiers = ["static"]
accessibility = "public"
returns = "Vector"
params = [{ name = "a", type = "Vector" }, { name = "b", type = "Vector" }]

[[type.method]]
name = "Sum"
modifiers = ["static"]
accessibility = "public"
returns = "Vector"
params = [{ name = "a", type = "Vector" }, { name = "b", type = "Vector" }]
body = "a:Vector + b:Vector"

[[type.method]]
name = "Open"
modifiers = ["static"]
accessibility = "public"
params = [{ name = "w", type = "office.IWindow" }]
`

const officeManifest = `
[package]
name = "office"
interop = true

[[type]]
name = "IWindow"
kind = "interface"
namespace = "office"
accessibility = "public"
guid = "8f2c1a4e-0d3b-4c55-9e61-7a0b2c3d4e5f"

[[type.method]]
name = "Show"
accessibility = "public"
params = [{ name = "modal", type = "bool" }]
`

func loadWorkspace(t *testing.T, manifests map[string]string) *project.Workspace {
	t.Helper()
	base := t.TempDir()
	for name, body := range manifests {
		dir := filepath.Join(base, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, project.ManifestName), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	bag := diag.NewBag(0)
	ws, err := project.LoadWorkspace(filepath.Join(base, "app", project.ManifestName), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if bag.Len() != 0 {
		t.Fatalf("manifest diagnostics: %+v", bag.Items())
	}
	return ws
}

func errorsOf(c *Compilation) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range c.Diagnostics().Items() {
		if d.Severity >= diag.SevError {
			out = append(out, d)
		}
	}
	return out
}

func TestBindAllAndEmit(t *testing.T) {
	ws := loadWorkspace(t, map[string]string{"app": appManifest, "office": officeManifest})
	c, err := FromWorkspace(context.Background(), ws, Options{})
	if err != nil {
		t.Fatalf("compilation: %v", err)
	}
	if c.Name() != "app" || !c.EmitOptions().EmbedInteropTypes || len(c.References()) != 1 || !c.References()[0].IsInterop() {
		t.Fatalf("compilation options not taken from the workspace: %+v", c.Options())
	}
	if err := c.BindAll(context.Background()); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if errs := errorsOf(c); len(errs) != 0 {
		t.Fatalf("errors: %+v", errs)
	}

	vec := c.LookupType("geo.Vector", 0)
	if vec == nil {
		t.Fatal("geo.Vector not declared")
	}
	sum := vec.Methods("Sum")[0]
	body, ok := c.Body(sum)
	if !ok {
		t.Fatal("Sum has no bound body")
	}
	bin, ok := body.(*binder.Binary)
	if !ok || bin.Method == nil || bin.Method.Name() != "op_Addition" {
		t.Fatalf("body = %#v", body)
	}
	if _, ok := c.Body(vec.Methods("Open")[0]); ok {
		t.Fatal("Open has no body in the manifest")
	}

	var buf bytes.Buffer
	n, err := c.Emit(context.Background(), &buf)
	if err != nil {
		t.Fatalf("emit: %v (%+v)", err, c.Diagnostics().Items())
	}
	if n != int64(buf.Len()) {
		t.Fatalf("reported %d bytes, wrote %d", n, buf.Len())
	}
	img, err := metadata.ReadImage(buf.Bytes())
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var defs []string
	for _, e := range img.Entries() {
		if e.Token.Table() == metadata.TableTypeDef {
			defs = append(defs, e.Name)
		}
	}
	if !slices.Contains(defs, "geo.Vector") || !slices.Contains(defs, "office.IWindow") {
		t.Fatalf("type defs = %v", defs)
	}

	var phases []string
	for _, p := range c.Timer().Report().Phases {
		phases = append(phases, p.Name)
	}
	for _, want := range []string{"declare", "bind", "emit", "write"} {
		if !slices.Contains(phases, want) {
			t.Fatalf("phases = %v, missing %s", phases, want)
		}
	}
}

func TestBindAllCancelled(t *testing.T) {
	ws := loadWorkspace(t, map[string]string{"app": appManifest, "office": officeManifest})
	c, err := FromWorkspace(context.Background(), ws, Options{})
	if err != nil {
		t.Fatalf("compilation: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.BindAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestUnresolvedTypeSuggestsFromIndex(t *testing.T) {
	ws := loadWorkspace(t, map[string]string{
		"app": "[package]\nname = \"app\"\n[[type]]\nname = \"Vector\"\nkind = \"struct\"\n" +
			"[[type]]\nname = \"Line\"\nfield = [{ name = \"a\", type = \"Vectr\" }]\n",
	})
	c, err := FromWorkspace(context.Background(), ws, Options{})
	if err != nil {
		t.Fatalf("compilation: %v", err)
	}
	if err := c.BindAll(context.Background()); err != nil {
		t.Fatalf("bind: %v", err)
	}
	errs := errorsOf(c)
	if len(errs) != 1 || errs[0].Code != diag.DclTypeNotFound {
		t.Fatalf("errors = %+v", errs)
	}
	if len(errs[0].Notes) != 1 || !strings.Contains(errs[0].Notes[0].Msg, "Vector") {
		t.Fatalf("notes = %+v", errs[0].Notes)
	}
	if got := c.NameIndex().Find("STRNG", 1); !slices.Contains(got, "String") {
		t.Fatalf("index lookup = %v", got)
	}
}

func newCached(t *testing.T, cache *IndexCache, tracer trace.Tracer) *Compilation {
	t.Helper()
	c := New(Options{Name: "app", Cache: cache, Digest: project.Digest{1, 2, 3}, Tracer: tracer})
	c.AddSource(nil)
	if err := c.Seal(context.Background()); err != nil {
		t.Fatal(err)
	}
	return c
}

func hasEvent(ring *trace.RingTracer, name string) bool {
	for _, ev := range ring.Snapshot() {
		if ev.Name == name {
			return true
		}
	}
	return false
}

func cacheWarnings(c *Compilation) int {
	n := 0
	for _, d := range c.Diagnostics().Items() {
		if d.Code == diag.PrjCacheUnavailable {
			n++
		}
	}
	return n
}

func TestNameIndexCache(t *testing.T) {
	cache, err := OpenIndexCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := project.Digest{1, 2, 3}
	path := cache.pathFor(key)

	first := newCached(t, cache, nil)
	want := first.NameIndex().Len()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("index not written: %v", err)
	}

	ring := trace.NewRingTracer(64, trace.LevelDebug)
	second := newCached(t, cache, ring)
	if got := second.NameIndex().Len(); got != want || !hasEvent(ring, "name_index.cache_hit") {
		t.Fatalf("cached index: %d names (want %d), events %+v", got, want, ring.Snapshot())
	}

	// broken envelope: reported, rebuilt and rewritten
	if err := os.WriteFile(path, []byte("not msgpack"), 0o600); err != nil {
		t.Fatal(err)
	}
	third := newCached(t, cache, nil)
	if got := third.NameIndex().Len(); got != want || cacheWarnings(third) != 1 {
		t.Fatalf("after corruption: %d names, %d warnings", got, cacheWarnings(third))
	}

	// broken tree inside a valid envelope: traced only
	data, err := msgpack.Marshal(&indexPayload{Schema: indexSchemaVersion, Digest: key, Names: []string{"x"}, Tree: []byte{1, 2, 3}})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	ring = trace.NewRingTracer(64, trace.LevelDebug)
	fourth := newCached(t, cache, ring)
	if got := fourth.NameIndex().Len(); got != want || cacheWarnings(fourth) != 0 {
		t.Fatalf("after bad tree: %d names, %d warnings", got, cacheWarnings(fourth))
	}
	if !hasEvent(ring, "bktree.cache_read_failed") || hasEvent(ring, "name_index.cache_hit") {
		t.Fatalf("events = %+v", ring.Snapshot())
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("entry survived DropAll: %v", err)
	}
}
