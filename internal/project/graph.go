package project

import (
	"slices"
)

// referenceOrder sorts the packages reachable from root so every package
// follows the packages it references (Kahn, smallest name first in each
// wave). Packages on a cycle are returned separately and appended to the
// order, followed by the packages that depend on them, so their types still
// load.
func referenceOrder(root *Manifest, edges map[*Manifest][]*Manifest) (order, cycle []*Manifest) {
	nodes := []*Manifest{root}
	index := map[*Manifest]int{root: 0}
	for i := 0; i < len(nodes); i++ {
		for _, dep := range edges[nodes[i]] {
			if _, ok := index[dep]; !ok {
				index[dep] = len(nodes)
				nodes = append(nodes, dep)
			}
		}
	}

	// pending[i] counts the references of node i not yet placed
	pending := make([]int, len(nodes))
	users := make([][]int, len(nodes))
	deps := make([][]int, len(nodes))
	for i, n := range nodes {
		seen := make(map[int]struct{}, len(edges[n]))
		for _, dep := range edges[n] {
			d := index[dep]
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			pending[i]++
			users[d] = append(users[d], i)
			deps[i] = append(deps[i], d)
		}
	}

	byName := func(a, b int) int {
		if c := compareNames(nodes[a], nodes[b]); c != 0 {
			return c
		}
		return a - b
	}
	var current []int
	for i := range nodes {
		if pending[i] == 0 {
			current = append(current, i)
		}
	}
	slices.SortFunc(current, byName)

	placed := make([]bool, len(nodes))
	for len(current) > 0 {
		var next []int
		for _, i := range current {
			order = append(order, nodes[i])
			placed[i] = true
			for _, u := range users[i] {
				pending[u]--
				if pending[u] == 0 {
					next = append(next, u)
				}
			}
		}
		slices.SortFunc(next, byName)
		current = next
	}

	if len(order) == len(nodes) {
		return order, nil
	}
	var left []int
	for i := range nodes {
		if !placed[i] {
			left = append(left, i)
		}
	}
	slices.SortFunc(left, byName)

	// Unplaced packages that merely depend on a cycle are peeled off from the
	// top; what stays has a user that is unplaced too.
	userCount := make([]int, len(nodes))
	for _, i := range left {
		for _, u := range users[i] {
			if !placed[u] {
				userCount[i]++
			}
		}
	}
	peeled := make([]bool, len(nodes))
	var top []int
	for changed := true; changed; {
		changed = false
		for _, i := range left {
			if peeled[i] || userCount[i] > 0 {
				continue
			}
			peeled[i], changed = true, true
			top = append(top, i)
			for _, d := range deps[i] {
				if !placed[d] {
					userCount[d]--
				}
			}
		}
	}
	for _, i := range left {
		if !peeled[i] {
			cycle = append(cycle, nodes[i])
			order = append(order, nodes[i])
		}
	}
	for i := len(top) - 1; i >= 0; i-- {
		order = append(order, nodes[top[i]])
	}
	return order, cycle
}

func compareNames(a, b *Manifest) int {
	switch an, bn := a.Name(), b.Name(); {
	case an < bn:
		return -1
	case an > bn:
		return 1
	}
	return 0
}
