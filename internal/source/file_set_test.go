package source

import "testing"

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.toml", []byte("ab\ncd\n\nef"))
	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{1, LineCol{1, 2}},
		{2, LineCol{1, 3}},
		{3, LineCol{2, 1}},
		{7, LineCol{4, 1}},
		{8, LineCol{4, 2}},
	}
	for _, tc := range cases {
		start, _ := fs.Resolve(Span{File: id, Start: tc.off, End: tc.off})
		if start != tc.want {
			t.Fatalf("offset %d: got %+v, want %+v", tc.off, start, tc.want)
		}
	}
}

func TestLineAndSpanOf(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("m.toml", []byte("name = \"Color\"\nbase = \"i8\"\n")))
	if got := f.Line(2); got != "base = \"i8\"" {
		t.Fatalf("line 2 = %q", got)
	}
	sp := f.SpanOf("\"i8\"", 0)
	if sp.Start != 22 || sp.Len() != 4 {
		t.Fatalf("unexpected span %v", sp)
	}
	if miss := f.SpanOf("nothing", 3); !miss.Empty() || miss.Start != 3 {
		t.Fatalf("missing needle should yield empty span at from, got %v", miss)
	}
}
