// Package hierarchy turns the CMS's flat menu list into a navigation tree.
package hierarchy

import "github.com/recipespark/content-core/internal/domain"

type entry struct {
	node     domain.MenuNode
	children []int
}

// Build arranges flat into a forest.
//
// A node is attached under ParentID when that parent exists in flat and the
// attachment would not make the node its own ancestor; otherwise it becomes a
// root. Siblings and roots keep their input order. When an id repeats, the
// first occurrence wins and the rest are dropped.
func Build(flat []domain.MenuNode) []domain.MenuNode {
	entries := make(map[int]*entry, len(flat))
	order := make([]int, 0, len(flat))

	for i := range flat {
		id := flat[i].ID
		if _, dup := entries[id]; dup {
			continue
		}
		n := flat[i].Clone()
		n.Children = nil
		entries[id] = &entry{node: n}
		order = append(order, id)
	}

	parentOf := make(map[int]int, len(order))
	roots := make([]int, 0, len(order))

	for _, id := range order {
		e := entries[id]
		if e.node.IsRoot() {
			roots = append(roots, id)
			continue
		}
		pid := *e.node.ParentID
		parent, ok := entries[pid]
		if !ok || createsCycle(parentOf, id, pid) {
			roots = append(roots, id)
			continue
		}
		parentOf[id] = pid
		parent.children = append(parent.children, id)
	}

	out := make([]domain.MenuNode, 0, len(roots))
	for _, id := range roots {
		out = append(out, materialize(entries, id))
	}
	return out
}

// createsCycle reports whether hanging id under pid would make id its own ancestor.
func createsCycle(parentOf map[int]int, id, pid int) bool {
	for cur := pid; ; {
		if cur == id {
			return true
		}
		next, ok := parentOf[cur]
		if !ok {
			return false
		}
		cur = next
	}
}

func materialize(entries map[int]*entry, id int) domain.MenuNode {
	e := entries[id]
	n := e.node.Clone()
	if len(e.children) > 0 {
		n.Children = make([]domain.MenuNode, 0, len(e.children))
		for _, cid := range e.children {
			n.Children = append(n.Children, materialize(entries, cid))
		}
	}
	return n
}

// Flatten walks tree in pre-order. Returned nodes carry no children.
func Flatten(tree []domain.MenuNode) []domain.MenuNode {
	var out []domain.MenuNode
	var walk func(nodes []domain.MenuNode)
	walk = func(nodes []domain.MenuNode) {
		for i := range nodes {
			n := nodes[i].Clone()
			n.Children = nil
			out = append(out, n)
			walk(nodes[i].Children)
		}
	}
	walk(tree)
	return out
}

// Find returns the first node in tree, searched in pre-order, for which match is true.
func Find(tree []domain.MenuNode, match func(*domain.MenuNode) bool) (domain.MenuNode, bool) {
	for i := range tree {
		if match(&tree[i]) {
			return tree[i].Clone(), true
		}
		if n, ok := Find(tree[i].Children, match); ok {
			return n, true
		}
	}
	return domain.MenuNode{}, false
}
