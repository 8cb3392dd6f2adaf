package project

import (
	"strings"
	"testing"
)

func pkg(name string) *Manifest {
	return &Manifest{Config: Config{Package: PackageConfig{Name: name}}}
}

func joined(ms []*Manifest) string {
	return strings.Join(names(ms), ",")
}

func TestReferenceOrder(t *testing.T) {
	root, a, b, c, d := pkg("root"), pkg("a"), pkg("b"), pkg("c"), pkg("d")
	tests := []struct {
		name      string
		edges     map[*Manifest][]*Manifest
		wantOrder string
		wantCycle string
	}{
		{
			name:      "alone",
			wantOrder: "root",
		},
		{
			name: "diamond",
			edges: map[*Manifest][]*Manifest{
				root: {c, b},
				b:    {a},
				c:    {a},
			},
			wantOrder: "a,b,c,root",
		},
		{
			name: "duplicate edge",
			edges: map[*Manifest][]*Manifest{
				root: {a, a},
			},
			wantOrder: "a,root",
		},
		{
			name: "cycle below root",
			edges: map[*Manifest][]*Manifest{
				root: {b, d},
				b:    {c},
				c:    {b},
				d:    {a},
			},
			wantOrder: "a,d,b,c,root",
			wantCycle: "b,c",
		},
		{
			name: "user of a cycle user",
			edges: map[*Manifest][]*Manifest{
				root: {d},
				d:    {a, a},
				a:    {b},
				b:    {a},
			},
			wantOrder: "a,b,d,root",
			wantCycle: "a,b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, cycle := referenceOrder(root, tt.edges)
			if got := joined(order); got != tt.wantOrder {
				t.Fatalf("order = %s, want %s", got, tt.wantOrder)
			}
			if got := joined(cycle); got != tt.wantCycle {
				t.Fatalf("cycle = %s, want %s", got, tt.wantCycle)
			}
		})
	}
}
