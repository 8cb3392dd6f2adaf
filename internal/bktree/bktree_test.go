package bktree

import (
	"bytes"
	"encoding/binary"
	"slices"
	"testing"
	"unicode/utf16"

	"stark/internal/trace"
)

var names = []string{"Vector", "Matrix", "Vectors", "vector", "Box", "Bag", "Quaternion", "Écran", "ÉCRAN", "Vecteur"}

func TestBuildNormalizesAndDedups(t *testing.T) {
	tree := Build(names)
	want := []string{"vector", "matrix", "vectors", "box", "bag", "quaternion", "écran", "vecteur"}
	if got := tree.Words(); !slices.Equal(got, want) {
		t.Fatalf("Words = %v, want %v", got, want)
	}
	// decomposed e + combining acute composes to the same word
	decomposed := Build([]string{"E\u0301cran"})
	if got := decomposed.Words(); !slices.Equal(got, []string{"écran"}) {
		t.Fatalf("NFC words = %q", got)
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "acb", 1},
		{"kitten", "sitting", 3},
		{"vector", "vectors", 1},
		{"ca", "abc", 2},
	}
	for _, tt := range tests {
		a, b := utf16.Encode([]rune(tt.a)), utf16.Encode([]rune(tt.b))
		if got := editDistance(a, b); got != tt.want {
			t.Fatalf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFindMatchesBruteForce(t *testing.T) {
	tree := Build(names)
	words := tree.Words()
	for _, q := range []string{"vectr", "VECTOR", "bax", "matrx", "quaternoin", "ecran", "zzz", "b"} {
		for threshold := 0; threshold <= 3; threshold++ {
			var want []string
			nq := utf16.Encode([]rune(Normalize(q)))
			for _, w := range words {
				if editDistance(nq, utf16.Encode([]rune(w))) <= threshold {
					want = append(want, w)
				}
			}
			got := tree.Find(q, threshold)
			slices.Sort(got)
			slices.Sort(want)
			if !slices.Equal(got, want) {
				t.Fatalf("Find(%q, %d) = %v, want %v", q, threshold, got, want)
			}
		}
	}
}

func TestFindDefaultThreshold(t *testing.T) {
	tree := Build(names)
	got := tree.Find("vectr", -1)
	slices.Sort(got)
	// vecteur is two deletions away
	if !slices.Equal(got, []string{"vecteur", "vector", "vectors"}) {
		t.Fatalf("Find(vectr) = %v", got)
	}
	got = tree.Find("bax", -1)
	slices.Sort(got)
	if !slices.Equal(got, []string{"bag", "box"}) {
		t.Fatalf("Find(bax) = %v", got)
	}
	if DefaultThreshold("abcd") != 1 || DefaultThreshold("abcde") != 2 {
		t.Fatal("DefaultThreshold boundaries")
	}
	if Empty.Find("x", 3) != nil {
		t.Fatal("empty tree found something")
	}
}

func encode(t *testing.T, tree *Tree) []byte {
	t.Helper()
	var buf bytes.Buffer
	if _, err := tree.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	for _, words := range [][]string{nil, {"a"}, names} {
		tree := Build(words)
		back := ReadFrom(bytes.NewReader(encode(t, tree)), nil)
		if back == nil {
			t.Fatalf("ReadFrom(%v) = nil", words)
		}
		if !slices.Equal(back.chars, tree.chars) || !slices.Equal(back.nodes, tree.nodes) || !slices.Equal(back.edges, tree.edges) {
			t.Fatalf("round trip of %v differs", words)
		}
	}
}

func TestStreamLayout(t *testing.T) {
	data := encode(t, Build([]string{"ab", "ac"}))
	le := binary.LittleEndian
	if n := le.Uint32(data[0:]); n != 4 {
		t.Fatalf("char count = %d", n)
	}
	if c := le.Uint16(data[4:]); c != 'a' {
		t.Fatalf("first char = %q", rune(c))
	}
	off := 4 + 4*2
	if n := le.Uint32(data[off:]); n != 2 {
		t.Fatalf("node count = %d", n)
	}
	off += 4 + 2*16
	if n := le.Uint32(data[off:]); n != 1 {
		t.Fatalf("edge count = %d", n)
	}
	if d, c := le.Uint32(data[off+4:]), le.Uint32(data[off+8:]); d != 1 || c != 1 {
		t.Fatalf("edge = (%d, %d)", d, c)
	}
	if len(data) != off+12 {
		t.Fatalf("len = %d", len(data))
	}
}

func TestReadFromTruncated(t *testing.T) {
	data := encode(t, Build(names))
	ring := trace.NewRingTracer(len(data)+1, trace.LevelPhase)
	for n := range len(data) {
		if got := ReadFrom(bytes.NewReader(data[:n]), ring); got != nil {
			t.Fatalf("ReadFrom(prefix %d) = %v", n, got.Words())
		}
	}
	events := ring.Snapshot()
	if len(events) != len(data) || events[0].Name != "bktree.cache_read_failed" {
		t.Fatalf("recorded %d events", len(events))
	}
}

func TestReadFromCorrupt(t *testing.T) {
	good := encode(t, Build([]string{"ab", "ac"}))
	nodeOff := 4 + 4*2 + 4
	edgeOff := nodeOff + 2*16 + 4
	tests := []struct {
		name string
		off  int
		val  uint32
	}{
		{"word past buffer", nodeOff + 4, 99},
		{"negative start", nodeOff, 0xffffffff},
		{"edges past array", nodeOff + 8, 5},
		{"edge to root", edgeOff + 4, 0},
		{"edge to missing node", edgeOff + 4, 7},
		{"zero distance", edgeOff, 0},
		{"negative char count", 0, 0x80000000},
	}
	for _, tt := range tests {
		data := slices.Clone(good)
		binary.LittleEndian.PutUint32(data[tt.off:], tt.val)
		if got := ReadFrom(bytes.NewReader(data), nil); got != nil {
			t.Fatalf("%s: ReadFrom accepted corrupt stream", tt.name)
		}
	}
}
