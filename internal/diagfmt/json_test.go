package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"stark/internal/diag"
	"stark/internal/source"
)

func TestJSONOutput(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("/work/app/stark.toml", []byte(manifest))
	sp := spanOf(t, fs, id, "Vectr")

	bag := diag.NewBag(8)
	bag.Add(diag.NewError(diag.DclTypeNotFound, sp, "type Vectr not found").
		WithNote(source.NoSpan, "did you mean Vector?"))
	bag.Add(diag.NewError(diag.EmtWriteFailed, source.NoSpan, "disk full"))

	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true})
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d", out.Count)
	}

	first := out.Diagnostics[0]
	if first.Severity != "ERROR" || first.Code != "DCL1002" || first.Title != diag.DclTypeNotFound.Title() {
		t.Fatalf("first = %+v", first)
	}
	loc := first.Location
	if loc == nil || loc.File != "stark.toml" || loc.StartByte != sp.Start || loc.EndByte != sp.End {
		t.Fatalf("location = %+v", loc)
	}
	if loc.StartLine != 3 || loc.EndLine != 3 || loc.EndCol-loc.StartCol != 5 {
		t.Fatalf("positions = %+v", loc)
	}
	if len(first.Notes) != 1 || first.Notes[0].Location != nil || first.Notes[0].Message != "did you mean Vector?" {
		t.Fatalf("notes = %+v", first.Notes)
	}
	if out.Diagnostics[1].Location != nil {
		t.Fatalf("unlocated diagnostic has location %+v", out.Diagnostics[1].Location)
	}
}

func TestJSONMaxAndNotes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("stark.toml", []byte(manifest))
	bag := diag.NewBag(8)
	for _, needle := range []string{"type", "Line", "field"} {
		bag.Add(diag.NewError(diag.PrjInvalidValue, spanOf(t, fs, id, needle), needle).WithNote(source.NoSpan, "n"))
	}
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if out.Count != 2 {
		t.Fatalf("count = %d, want 2", out.Count)
	}
	for _, d := range out.Diagnostics {
		if d.Notes != nil {
			t.Fatalf("notes included without IncludeNotes: %+v", d)
		}
		if d.Location == nil || d.Location.StartLine != 0 {
			t.Fatalf("positions included without IncludePositions: %+v", d.Location)
		}
	}
}
