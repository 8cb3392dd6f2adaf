// Package bktree implements a Burkhard-Keller tree over lower-cased words,
// used for "did you mean" lookups on type and member names.
//
// Words are stored once in a concatenated UTF-16 buffer. Each node names a
// span of that buffer and a contiguous run of outgoing edges; an edge is
// labelled with the edit distance between parent and child.
package bktree

import (
	"slices"
	"strings"
	"unicode/utf16"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"stark/internal/fault"
)

// Node is one word of the tree.
type Node struct {
	WordStart      int32
	WordLength     int32
	EdgeCount      int32
	FirstEdgeIndex int32
}

// Edge links a node to a child at the given edit distance.
type Edge struct {
	EditDistance   int32
	ChildNodeIndex int32
}

// Tree is immutable once built. The zero value is an empty tree.
type Tree struct {
	chars []uint16
	nodes []Node
	edges []Edge
}

// Empty is the tree with no words.
var Empty = &Tree{}

// Normalize maps a word to the form stored in the tree: NFC, lower case.
func Normalize(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

type buildNode struct {
	start, length int
	children      map[int]int // distance -> node
}

// Build constructs a tree from words. Duplicates after normalisation are
// dropped; insertion follows the first occurrence order.
func Build(words []string) *Tree {
	var (
		chars []uint16
		nodes []buildNode
		seen  = make(map[string]struct{}, len(words))
	)
	word := func(i int) []uint16 {
		return chars[nodes[i].start : nodes[i].start+nodes[i].length]
	}
	for _, w := range words {
		w = Normalize(w)
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}

		units := utf16.Encode([]rune(w))
		idx := len(nodes)
		nodes = append(nodes, buildNode{start: len(chars), length: len(units)})
		chars = append(chars, units...)
		if idx == 0 {
			continue
		}
		cur := 0
		for {
			d := editDistance(units, word(cur))
			if nodes[cur].children == nil {
				nodes[cur].children = make(map[int]int)
			}
			next, ok := nodes[cur].children[d]
			if !ok {
				nodes[cur].children[d] = idx
				break
			}
			cur = next
		}
	}

	t := &Tree{chars: chars, nodes: make([]Node, len(nodes))}
	for i, bn := range nodes {
		dists := make([]int, 0, len(bn.children))
		for d := range bn.children {
			dists = append(dists, d)
		}
		slices.Sort(dists)
		t.nodes[i] = Node{
			WordStart:      toInt32(bn.start),
			WordLength:     toInt32(bn.length),
			EdgeCount:      toInt32(len(dists)),
			FirstEdgeIndex: toInt32(len(t.edges)),
		}
		for _, d := range dists {
			t.edges = append(t.edges, Edge{EditDistance: toInt32(d), ChildNodeIndex: toInt32(bn.children[d])})
		}
	}
	return t
}

// Len reports the number of words.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Words returns the stored words in node order.
func (t *Tree) Words() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.nodes))
	for i := range t.nodes {
		out[i] = t.word(i)
	}
	return out
}

func (t *Tree) wordUnits(i int) []uint16 {
	n := t.nodes[i]
	return t.chars[n.WordStart : n.WordStart+n.WordLength]
}

func (t *Tree) word(i int) string {
	return string(utf16.Decode(t.wordUnits(i)))
}

// DefaultThreshold is the edit distance tolerated for a query of this length.
func DefaultThreshold(value string) int {
	if len([]rune(value)) <= 4 {
		return 1
	}
	return 2
}

// Find returns the stored words within threshold edits of value, in tree
// order. A negative threshold selects DefaultThreshold.
func (t *Tree) Find(value string, threshold int) []string {
	if t.Len() == 0 {
		return nil
	}
	value = Normalize(value)
	if threshold < 0 {
		threshold = DefaultThreshold(value)
	}
	query := utf16.Encode([]rune(value))

	var out []string
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		d := editDistance(query, t.wordUnits(i))
		if d <= threshold {
			out = append(out, t.word(i))
		}
		n := t.nodes[i]
		lo, hi := d-threshold, d+threshold
		// обходим в обратном порядке, чтобы ближние рёбра снимались со стека первыми
		for e := n.FirstEdgeIndex + n.EdgeCount - 1; e >= n.FirstEdgeIndex; e-- {
			edge := t.edges[e]
			if int(edge.EditDistance) >= lo && int(edge.EditDistance) <= hi {
				stack = append(stack, int(edge.ChildNodeIndex))
			}
		}
	}
	return out
}

// editDistance is the Damerau-Levenshtein distance: insertions, deletions,
// substitutions and transpositions of adjacent units each cost one. The
// unrestricted form is a metric, which the tree search relies on.
func editDistance(a, b []uint16) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	inf := len(a) + len(b)
	d := make([][]int, len(a)+2)
	for i := range d {
		d[i] = make([]int, len(b)+2)
	}
	d[0][0] = inf
	for i := 0; i <= len(a); i++ {
		d[i+1][0], d[i+1][1] = inf, i
	}
	for j := 0; j <= len(b); j++ {
		d[0][j+1], d[1][j+1] = inf, j
	}
	last := make(map[uint16]int) // последняя строка, где встречался символ
	for i := 1; i <= len(a); i++ {
		lastCol := 0
		for j := 1; j <= len(b); j++ {
			k, l := last[b[j-1]], lastCol
			cost := 1
			if a[i-1] == b[j-1] {
				cost, lastCol = 0, j
			}
			d[i+1][j+1] = min(
				d[i][j]+cost,
				d[i+1][j]+1,
				d[i][j+1]+1,
				d[k][l]+(i-k-1)+1+(j-l-1),
			)
		}
		last[a[i-1]] = i
	}
	return d[len(a)+1][len(b)+1]
}

func toInt32(n int) int32 {
	v, err := safecast.Conv[int32](n)
	fault.Invariant(err == nil, "bktree: %d does not fit int32", n)
	return v
}
