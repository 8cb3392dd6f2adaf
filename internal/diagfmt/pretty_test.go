package diagfmt

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"stark/internal/diag"
	"stark/internal/source"
)

const manifest = "[[type]]\nname = \"Line\"\nfield = [{ name = \"a\", type = \"Vectr\" }]\n"

func spanOf(t *testing.T, fs *source.FileSet, id source.FileID, needle string) source.Span {
	t.Helper()
	sp := fs.Get(id).SpanOf(needle, 0)
	if sp.Empty() {
		t.Fatalf("%q not in file", needle)
	}
	return sp
}

func render(t *testing.T, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, opts); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	return buf.String()
}

func TestPrettySnippet(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("/work/app/stark.toml", []byte(manifest))
	sp := spanOf(t, fs, id, "Vectr")

	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.DclTypeNotFound, sp, "type Vectr not found").
		WithNote(spanOf(t, fs, id, "Line"), "declared in Line"))

	got := render(t, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true})
	col := strings.Index(strings.Split(manifest, "\n")[2], "Vectr")
	want := "stark.toml:3:" + strconv.Itoa(col+1) + ": ERROR DCL1002: type Vectr not found\n" +
		"3 | field = [{ name = \"a\", type = \"Vectr\" }]\n" +
		"  | " + strings.Repeat(" ", col) + "^~~~~\n" +
		"  note: stark.toml:2:9: declared in Line\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyContextLines(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("stark.toml", []byte(manifest))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.PrjInvalidValue, spanOf(t, fs, id, "Line"), "bad"))

	got := render(t, bag, fs, PrettyOpts{Context: 1})
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines:\n%s", len(lines), got)
	}
	if !strings.HasPrefix(lines[1], "1 | [[type]]") || !strings.HasPrefix(lines[2], "2 | name") ||
		!strings.HasPrefix(lines[4], "3 | field") {
		t.Fatalf("context lines:\n%s", got)
	}
	if !strings.HasSuffix(lines[3], "^~~~") {
		t.Fatalf("underline %q", lines[3])
	}
}

func TestPrettyDisplayColumns(t *testing.T) {
	tests := []struct {
		name string
		line string
		pad  int
	}{
		{"wide runes", "name = \"日本\" x", 14},
		{"tab", "\tx", tabWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			id := fs.AddVirtual("f.toml", []byte(tt.line+"\n"))
			sp := spanOf(t, fs, id, "x")
			bag := diag.NewBag(1)
			bag.Add(diag.NewError(diag.PrjInvalidValue, sp, "x"))
			lines := strings.Split(render(t, bag, fs, PrettyOpts{}), "\n")
			if want := "  | " + strings.Repeat(" ", tt.pad) + "^"; lines[2] != want {
				t.Fatalf("underline %q, want %q", lines[2], want)
			}
		})
	}
}

func TestPrettyWithoutLocation(t *testing.T) {
	fs := source.NewFileSet()
	fs.AddVirtual("stark.toml", []byte(manifest))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.EmtRowLimitExceeded, source.NoSpan, "too many rows"))

	got := render(t, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	if !strings.HasPrefix(got, "ERROR EMT") || strings.Contains(got, "stark.toml") || strings.Count(got, "\n") != 1 {
		t.Fatalf("got %q", got)
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("stark.toml", []byte(manifest))
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevWarning, diag.PrjInvalidValue, spanOf(t, fs, id, "Line"), "odd"))

	if got := render(t, bag, fs, PrettyOpts{}); strings.Contains(got, "\x1b[") {
		t.Fatalf("escape codes without color: %q", got)
	}
	if got := render(t, bag, fs, PrettyOpts{Color: true}); !strings.Contains(got, "\x1b[") {
		t.Fatalf("no escape codes with color: %q", got)
	}
}

func TestPathModes(t *testing.T) {
	tests := []struct {
		name string
		path string
		mode PathMode
		base string
		want string
	}{
		{"absolute", "/home/user/project/src/stark.toml", PathModeAbsolute, "", "/home/user/project/src/stark.toml"},
		{"relative", "/home/user/project/src/stark.toml", PathModeRelative, "/home/user/project", "src/stark.toml"},
		{"basename", "/home/user/project/src/stark.toml", PathModeBasename, "", "stark.toml"},
		{"auto short", "stark.toml", PathModeAuto, "", "stark.toml"},
		{"auto long", "/very/long/absolute/path/to/some/nested/directory/stark.toml", PathModeAuto, "", "stark.toml"},
		{"auto relative", "/home/user/project/lib/stark.toml", PathModeAuto, "/home/user/project", "lib/stark.toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatPath(tt.path, tt.mode, tt.base); got != tt.want {
				t.Fatalf("formatPath = %q, want %q", got, tt.want)
			}
		})
	}
}
