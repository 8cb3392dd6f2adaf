package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"stark/internal/diag"
	"stark/internal/source"
)

// Workspace is a root package and every package it references,
// directly or not.
type Workspace struct {
	Files *source.FileSet
	Root  *Manifest
	// Packages holds the referenced packages, each after the packages it
	// references itself. Root is not included.
	Packages []*Manifest
	// Digest covers the contents of every manifest in load order.
	Digest Digest
}

// LoadWorkspace loads the manifest at path and follows [references].
// Missing packages and reference cycles are reported to r; the packages
// that could be loaded are still returned. When the root manifest itself
// is unusable the error is returned with a workspace holding only Files,
// so the diagnostics can still be printed.
func LoadWorkspace(path string, r diag.Reporter) (*Workspace, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	fs := source.NewFileSet()
	root, err := Load(fs, abs, r)
	if err != nil {
		return &Workspace{Files: fs}, err
	}
	ws := &Workspace{Files: fs, Root: root}
	byPath := map[string]*Manifest{filepath.Clean(root.Path): root}
	queue := []*Manifest{root}
	edges := make(map[*Manifest][]*Manifest)
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		loc := &locator{file: fs.Get(m.File)}
		for _, alias := range sortedKeys(m.Config.References) {
			ref := m.Config.References[alias]
			at := loc.find(alias)
			target, err := resolveReference(m.Root, alias, ref)
			if err != nil {
				diag.ReportError(r, diag.PrjMissingReference, at, err.Error()).Emit()
				continue
			}
			dep, seen := byPath[target]
			if !seen {
				dep, err = Load(fs, target, r)
				if err != nil {
					diag.ReportError(r, diag.PrjMissingReference, at,
						fmt.Sprintf("reference %q: %v", alias, err)).Emit()
					continue
				}
				byPath[target] = dep
				queue = append(queue, dep)
			}
			if dep == m {
				diag.ReportError(r, diag.PrjReferenceCycle, at,
					fmt.Sprintf("package %q references itself", m.Name())).Emit()
				continue
			}
			edges[m] = append(edges[m], dep)
		}
	}

	order, cycle := referenceOrder(root, edges)
	if len(cycle) > 0 {
		names := make([]string, len(cycle))
		for i, m := range cycle {
			names[i] = m.Name()
		}
		summary := strings.Join(names, " -> ")
		for _, m := range cycle {
			diag.ReportError(r, diag.PrjReferenceCycle, source.Span{File: m.File},
				fmt.Sprintf("package %q participates in a reference cycle: %s", m.Name(), summary)).Emit()
		}
	}
	parts := make([]Digest, 0, len(order))
	for _, m := range order {
		if m != root {
			ws.Packages = append(ws.Packages, m)
			parts = append(parts, m.Digest)
		}
	}
	ws.Digest = Combine(root.Digest, parts...)
	return ws, nil
}

// resolveReference returns the manifest path of a referenced package.
func resolveReference(from, alias string, ref ReferenceConfig) (string, error) {
	rel := strings.TrimSpace(ref.Path)
	if rel == "" {
		return "", fmt.Errorf("reference %q has no path", alias)
	}
	dir := filepath.FromSlash(rel)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(from, dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("reference %q: %w", alias, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("reference %q: %s is not a directory", alias, dir)
	}
	manifest := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(manifest); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("reference %q: %s has no %s", alias, dir, ManifestName)
		}
		return "", fmt.Errorf("reference %q: %w", alias, err)
	}
	return filepath.Clean(manifest), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
