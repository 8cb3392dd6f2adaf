package bktree

import (
	"errors"
	"fmt"
	"io"

	"stark/internal/objio"
	"stark/internal/trace"
)

// WriteTo persists t as three int32-counted sections: characters, nodes
// (four int32 each) and edges (two int32 each).
func (t *Tree) WriteTo(w io.Writer) (int64, error) {
	if t == nil {
		t = Empty
	}
	ow := objio.NewWriter(w)
	if err := ow.WriteChars(t.chars); err != nil {
		return ow.Written(), fmt.Errorf("bktree: write chars: %w", err)
	}
	if err := ow.WriteInt32(toInt32(len(t.nodes))); err != nil {
		return ow.Written(), fmt.Errorf("bktree: write nodes: %w", err)
	}
	for _, n := range t.nodes {
		for _, v := range [...]int32{n.WordStart, n.WordLength, n.EdgeCount, n.FirstEdgeIndex} {
			if err := ow.WriteInt32(v); err != nil {
				return ow.Written(), fmt.Errorf("bktree: write nodes: %w", err)
			}
		}
	}
	if err := ow.WriteInt32(toInt32(len(t.edges))); err != nil {
		return ow.Written(), fmt.Errorf("bktree: write edges: %w", err)
	}
	for _, e := range t.edges {
		if err := ow.WriteInt32(e.EditDistance); err != nil {
			return ow.Written(), fmt.Errorf("bktree: write edges: %w", err)
		}
		if err := ow.WriteInt32(e.ChildNodeIndex); err != nil {
			return ow.Written(), fmt.Errorf("bktree: write edges: %w", err)
		}
	}
	return ow.Written(), nil
}

// ReadFrom decodes a tree written by WriteTo. Any failure, including a
// structurally inconsistent tree, yields nil; the cause goes to tracer.
func ReadFrom(r io.Reader, tracer trace.Tracer) *Tree {
	t, err := readTree(objio.NewReader(r))
	if err != nil {
		trace.Point(tracer, trace.ScopePass, "bktree.cache_read_failed", err.Error())
		return nil
	}
	return t
}

var errCorrupt = errors.New("bktree: corrupt index")

func readTree(r *objio.Reader) (*Tree, error) {
	chars, err := r.ReadChars()
	if err != nil {
		return nil, err
	}
	nodeCount, err := r.ReadCount()
	if err != nil {
		return nil, err
	}
	t := &Tree{chars: chars, nodes: make([]Node, 0, min(nodeCount, 1<<12))}
	for range nodeCount {
		var v [4]int32
		for i := range v {
			if v[i], err = r.ReadInt32(); err != nil {
				return nil, err
			}
		}
		t.nodes = append(t.nodes, Node{WordStart: v[0], WordLength: v[1], EdgeCount: v[2], FirstEdgeIndex: v[3]})
	}
	edgeCount, err := r.ReadCount()
	if err != nil {
		return nil, err
	}
	t.edges = make([]Edge, 0, min(edgeCount, 1<<12))
	for range edgeCount {
		d, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		c, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		t.edges = append(t.edges, Edge{EditDistance: d, ChildNodeIndex: c})
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// validate checks every index so Find cannot step outside the arrays.
func (t *Tree) validate() error {
	chars, nodes, edges := int64(len(t.chars)), int64(len(t.nodes)), int64(len(t.edges))
	for i, n := range t.nodes {
		if n.WordStart < 0 || n.WordLength <= 0 || int64(n.WordStart)+int64(n.WordLength) > chars {
			return fmt.Errorf("%w: node %d word out of range", errCorrupt, i)
		}
		if n.EdgeCount < 0 || n.FirstEdgeIndex < 0 || int64(n.FirstEdgeIndex)+int64(n.EdgeCount) > edges {
			return fmt.Errorf("%w: node %d edges out of range", errCorrupt, i)
		}
		// дети всегда добавляются позже родителя, так что обход не зациклится
		for _, e := range t.edges[n.FirstEdgeIndex : n.FirstEdgeIndex+n.EdgeCount] {
			if int64(e.ChildNodeIndex) <= int64(i) || int64(e.ChildNodeIndex) >= nodes || e.EditDistance <= 0 {
				return fmt.Errorf("%w: node %d has a bad edge", errCorrupt, i)
			}
		}
	}
	return nil
}
