package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stark/internal/project"
	"stark/internal/wellknown"
)

const geoManifest = `
[package]
name = "geo"

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
`

func writePackage(t *testing.T, manifest string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, project.ManifestName), []byte(manifest), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return dir
}

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestManifestPathFor(t *testing.T) {
	dir := writePackage(t, geoManifest)
	manifest := filepath.Join(dir, project.ManifestName)

	if got, err := manifestPathFor(dir); err != nil || got != manifest {
		t.Fatalf("directory: got %q, %v", got, err)
	}
	if got, err := manifestPathFor(manifest); err != nil || got != manifest {
		t.Fatalf("file: got %q, %v", got, err)
	}
	if _, err := manifestPathFor(t.TempDir()); !errors.Is(err, project.ErrManifestNotFound) {
		t.Fatalf("empty directory: err = %v", err)
	}
	if _, err := manifestPathFor(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("missing path: want error")
	}
}

func TestCheckEmitDump(t *testing.T) {
	dir := writePackage(t, geoManifest)
	out, _, err := runCLI(t, "check", "--no-cache", dir)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if out != "" {
		t.Fatalf("clean package printed diagnostics:\n%s", out)
	}

	image := filepath.Join(t.TempDir(), "geo.smd")
	out, _, err = runCLI(t, "emit", "--no-cache", "-o", image, dir)
	if err != nil {
		t.Fatalf("emit: %v\n%s", err, out)
	}
	if !strings.Contains(out, "wrote "+image) {
		t.Fatalf("emit output %q", out)
	}

	out, _, err = runCLI(t, "dump", "--format", "pretty", "--table", "typedef", image)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "module geo" || !strings.HasPrefix(lines[1], "TOKEN") {
		t.Fatalf("dump header:\n%s", out)
	}
	for _, l := range lines[2:] {
		if !strings.Contains(l, "TypeDef") {
			t.Fatalf("row from another table: %q", l)
		}
	}
	if !strings.Contains(out, "geo.Vector") {
		t.Fatalf("geo.Vector missing:\n%s", out)
	}
}

func TestCheckReportsErrors(t *testing.T) {
	broken := strings.Replace(geoManifest, `type = "f64"`, `type = "Vectr"`, 1)
	dir := writePackage(t, broken)

	out, stderr, err := runCLI(t, "check", "--no-cache", "--format", "pretty", dir)
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("err = %v, want errDiagnostics", err)
	}
	if !strings.Contains(out, "DCL1002") || !strings.Contains(out, "stark.toml:") {
		t.Fatalf("diagnostic not printed:\n%s", out)
	}
	if !strings.Contains(stderr, "1 error(s)") {
		t.Fatalf("summary %q", stderr)
	}

	image := filepath.Join(t.TempDir(), "geo.smd")
	if _, _, err := runCLI(t, "emit", "--no-cache", "-o", image, dir); !errors.Is(err, errDiagnostics) {
		t.Fatalf("emit err = %v", err)
	}
	if _, err := os.Stat(image); !os.IsNotExist(err) {
		t.Fatalf("image written despite errors: %v", err)
	}
}

func TestCheckInvalidManifest(t *testing.T) {
	dir := writePackage(t, "[package\nname = 1\n")
	out, _, err := runCLI(t, "check", "--no-cache", "--format", "json", dir)
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("err = %v, want errDiagnostics", err)
	}
	if !strings.Contains(out, `"code": "PRJ`) {
		t.Fatalf("json output:\n%s", out)
	}
	// --format stays json from the previous run otherwise
	if _, _, err := runCLI(t, "check", "--format", "pretty", "--no-cache", writePackage(t, geoManifest)); err != nil {
		t.Fatalf("reset format: %v", err)
	}
}

func TestEval(t *testing.T) {
	out, _, err := runCLI(t, "eval", "--project", "", "a:i32 + b:i64")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got:\n%s", out)
	}
	if !strings.HasPrefix(lines[0], "binary Addition[i64]") || !strings.HasSuffix(lines[0], ": i64") {
		t.Fatalf("root %q", lines[0])
	}
	if lines[1] != "  value a : i32" || lines[2] != "  value b : i64" {
		t.Fatalf("operands:\n%s", out)
	}

	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir := writePackage(t, geoManifest)
	out, _, err = runCLI(t, "eval", "--project", dir, "--in", "geo.Vector", "a:Vector + b:Vector")
	if err != nil {
		t.Fatalf("eval with project: %v", err)
	}
	if !strings.Contains(out, "via geo.Vector.op_Addition") {
		t.Fatalf("user-defined operator not shown:\n%s", out)
	}
}

func TestSuggest(t *testing.T) {
	out, _, err := runCLI(t, "suggest", "--project", "", "--threshold", "1", "STRNG")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if !strings.Contains(out, "String") {
		t.Fatalf("got %q", out)
	}
}

func TestMembersBlobRoundTrip(t *testing.T) {
	blob := filepath.Join(t.TempDir(), "members.bin")
	if _, _, err := runCLI(t, "members", "--export-blob", blob); err != nil {
		t.Fatalf("export: %v", err)
	}
	fromBlob, _, err := runCLI(t, "members", "--export-blob", "", "--from-blob", blob, "--type", "string")
	if err != nil {
		t.Fatalf("from blob: %v", err)
	}
	builtin, _, err := runCLI(t, "members", "--from-blob", "", "--type", "string")
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	if fromBlob != builtin {
		t.Fatalf("blob table differs:\n%s\nvs\n%s", fromBlob, builtin)
	}
	if !strings.Contains(builtin, "Concat") {
		t.Fatalf("string members:\n%s", builtin)
	}
}

func TestMemberKind(t *testing.T) {
	tests := []struct {
		flags wellknown.MemberFlags
		want  string
	}{
		{wellknown.MemberMethod | wellknown.MemberStatic, "static method"},
		{wellknown.MemberConstructor, "ctor"},
		{wellknown.MemberField, "field"},
		{wellknown.MemberPropertyGet | wellknown.MemberVirtual, "virtual getter"},
	}
	for _, tt := range tests {
		if got := memberKind(tt.flags); got != tt.want {
			t.Errorf("memberKind(%#x) = %q, want %q", tt.flags, got, tt.want)
		}
	}
}

func TestAttributeLookup(t *testing.T) {
	out, _, err := runCLI(t, "attributes", "--lookup", "core.runtime.OutAttribute")
	if err != nil {
		t.Fatalf("attributes: %v", err)
	}
	if strings.TrimSpace(out) != "core.runtime.OutAttribute()" {
		t.Fatalf("got %q", out)
	}
	desc, _ := wellknown.Attribute(wellknown.AttrAssemblyAlgorithmId)
	sigs := attributeSignatures(desc)
	if len(sigs) != 2 || sigs[1] != "(u32)" {
		t.Fatalf("signatures %v", sigs)
	}
	if sigs[0] != "(core.configuration.assemblies.AssemblyHashAlgorithm)" {
		t.Fatalf("type handle parameter %q", sigs[0])
	}
}

func TestOutputPath(t *testing.T) {
	m := &project.Manifest{Root: "/work/geo"}
	m.Config.Package.Name = "geo"
	if got := outputPath(m, ""); got != filepath.Join("/work/geo", "geo.smd") {
		t.Fatalf("default %q", got)
	}
	m.Config.Build.Output = "out/lib.smd"
	if got := outputPath(m, ""); got != filepath.Join("/work/geo", "out/lib.smd") {
		t.Fatalf("manifest %q", got)
	}
	if got := outputPath(m, "x.smd"); got != "x.smd" {
		t.Fatalf("flag %q", got)
	}
}

func TestEmitTestdataWithProfiles(t *testing.T) {
	tmp := t.TempDir()
	cpu := filepath.Join(tmp, "cpu.out")
	mem := filepath.Join(tmp, "mem.out")
	image := filepath.Join(tmp, "app.smd")
	defer func() {
		_ = rootCmd.PersistentFlags().Set("cpu-profile", "")
		_ = rootCmd.PersistentFlags().Set("mem-profile", "")
	}()

	app := filepath.Join("..", "..", "testdata", "app")
	out, _, err := runCLI(t, "emit", "--no-cache", "--cpu-profile", cpu, "--mem-profile", mem, "-o", image, app)
	if err != nil {
		t.Fatalf("emit: %v\n%s", err, out)
	}
	for _, p := range []string{cpu, mem, image} {
		if st, err := os.Stat(p); err != nil || st.Size() == 0 {
			t.Fatalf("%s not written: %v", p, err)
		}
	}

	out, _, err = runCLI(t, "dump", "--table", "typedef", image)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(out, "module app") || !strings.Contains(out, "app.Shapes") {
		t.Fatalf("dump:\n%s", out)
	}
}
