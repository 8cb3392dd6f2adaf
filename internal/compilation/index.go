package compilation

import (
	"fmt"
	"slices"

	"stark/internal/bktree"
	"stark/internal/diag"
	"stark/internal/source"
	"stark/internal/symbols"
	"stark/internal/trace"
)

// NameIndex answers "did you mean" lookups over the names of every type
// the compilation can see. Matching is done on normalised names; results
// are reported in their declared spelling.
type NameIndex struct {
	tree      *bktree.Tree
	originals map[string][]string
}

func newNameIndex(names []string, tree *bktree.Tree) *NameIndex {
	idx := &NameIndex{originals: make(map[string][]string, len(names))}
	for _, n := range names {
		key := bktree.Normalize(n)
		if !slices.Contains(idx.originals[key], n) {
			idx.originals[key] = append(idx.originals[key], n)
		}
	}
	if tree == nil {
		tree = bktree.Build(names)
	}
	idx.tree = tree
	return idx
}

// Find returns the declared names within threshold edits of name, closest
// words first. A negative threshold picks one from the length of name.
func (x *NameIndex) Find(name string, threshold int) []string {
	var out []string
	for _, w := range x.tree.Find(name, threshold) {
		out = append(out, x.originals[w]...)
	}
	return out
}

// Len is the number of distinct normalised names.
func (x *NameIndex) Len() int { return x.tree.Len() }

// NameIndex builds the index on first use. With a cache configured the
// index is read from it when the digest matches and written back after a
// rebuild; a cache that cannot be used only costs the rebuild.
func (c *Compilation) NameIndex() *NameIndex {
	c.indexOnce.Do(func() {
		idx := c.timer.Begin("name_index")
		names := c.typeNames()
		c.index = c.loadIndex(names)
		c.timer.End(idx, fmt.Sprintf("%d names", c.index.Len()))
	})
	return c.index
}

func (c *Compilation) loadIndex(names []string) *NameIndex {
	cache := c.opts.Cache
	if cache == nil {
		return newNameIndex(names, nil)
	}
	key := c.opts.Digest
	cached, tree, err := cache.Get(key, c.tracer)
	if err != nil {
		c.cacheUnavailable(err)
	}
	if tree != nil && sameStrings(cached, names) {
		trace.Point(c.tracer, trace.ScopePass, "name_index.cache_hit", key.String())
		return newNameIndex(names, tree)
	}
	index := newNameIndex(names, nil)
	if err := cache.Put(key, names, index.tree); err != nil {
		c.cacheUnavailable(err)
	}
	return index
}

func (c *Compilation) cacheUnavailable(err error) {
	diag.ReportWarning(c.Reporter(), diag.PrjCacheUnavailable, source.NoSpan, err.Error()).Emit()
}

// typeNames lists type names in lookup order: source, references, corlib.
func (c *Compilation) typeNames() []string {
	asms := append([]*symbols.Assembly{c.Source()}, c.refs...)
	asms = append(asms, c.lib.Assembly())
	var names []string
	for _, asm := range asms {
		for _, t := range asm.Types() {
			names = append(names, t.Name())
		}
	}
	return names
}

func sameStrings(a, b []string) bool {
	return slices.Equal(slices.Sorted(slices.Values(a)), slices.Sorted(slices.Values(b)))
}
