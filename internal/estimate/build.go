package estimate

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/estimator/internal/domain"
)

// Warning describes a data-integrity problem found while building a tree.
// The affected node is still placed in the tree, at root level.
type Warning struct {
	Ref     domain.NodeRef
	Missing string // id of the unresolved parent group, "" when none was set
	Message string
}

// BuildTree nests flat group and item records into an estimate tree.
func BuildTree(groups []domain.GroupRecord, items []domain.ItemRecord) domain.Tree {
	tree, _ := BuildTreeWithWarnings(groups, items)
	return tree
}

// BuildTreeWithWarnings nests flat records and reports every orphan it had
// to promote to the root list. Items without a group and nodes whose parent
// group is not among groups are kept at root rather than dropped.
//
// Sibling lists are sorted by order index; records without one sort last
// in input order and are numbered after the highest index in their list.
func BuildTreeWithWarnings(groups []domain.GroupRecord, items []domain.ItemRecord) (domain.Tree, []Warning) {
	type slot struct {
		node     *domain.GroupNode
		children []entry
	}

	var warnings []Warning
	byID := make(map[string]*slot, len(groups))
	for _, rec := range groups {
		byID[rec.ID] = &slot{node: rec.Node()}
	}

	var roots []entry
	for i, rec := range items {
		e := entry{node: rec.Node(), order: rec.OrderIndex, seq: i}
		if rec.GroupID != nil && *rec.GroupID != "" {
			if parent, ok := byID[*rec.GroupID]; ok {
				parent.children = append(parent.children, e)
				continue
			}
			warnings = append(warnings, Warning{
				Ref:     domain.ItemRef(rec.ID),
				Missing: *rec.GroupID,
				Message: fmt.Sprintf("item %s references missing group %s", rec.ID, *rec.GroupID),
			})
		} else {
			warnings = append(warnings, Warning{
				Ref:     domain.ItemRef(rec.ID),
				Message: fmt.Sprintf("item %s has no group", rec.ID),
			})
		}
		e.node = e.node.WithParent(nil)
		roots = append(roots, e)
	}

	for i, rec := range groups {
		e := entry{node: byID[rec.ID].node, order: rec.OrderIndex, seq: len(items) + i}
		if rec.ParentGroupID != nil && *rec.ParentGroupID != "" {
			if parent, ok := byID[*rec.ParentGroupID]; ok && *rec.ParentGroupID != rec.ID {
				parent.children = append(parent.children, e)
				continue
			}
			warnings = append(warnings, Warning{
				Ref:     domain.GroupRef(rec.ID),
				Missing: *rec.ParentGroupID,
				Message: fmt.Sprintf("group %s references missing parent group %s", rec.ID, *rec.ParentGroupID),
			})
		}
		roots = append(roots, e)
	}

	// Groups are linked by pointer above; assemble bottom-up so each group's
	// children are final before the group value is captured.
	var assemble func(entries []entry, visiting map[string]bool) []domain.Node
	assemble = func(entries []entry, visiting map[string]bool) []domain.Node {
		sortEntries(entries)
		out := make([]domain.Node, 0, len(entries))
		for _, e := range entries {
			n := e.node
			if g, ok := n.(*domain.GroupNode); ok {
				if visiting[g.ID] {
					continue
				}
				visiting[g.ID] = true
				n = g.WithChildren(assemble(byID[g.ID].children, visiting))
			}
			out = append(out, n)
		}
		return assignMissingOrder(out, entries)
	}

	visiting := make(map[string]bool, len(groups))
	tree := domain.Tree(assemble(roots, visiting))

	// Groups never reached from the root sit on a parent cycle. Surface them
	// at root so no data disappears.
	for _, rec := range groups {
		if visiting[rec.ID] {
			continue
		}
		warnings = append(warnings, Warning{
			Ref:     domain.GroupRef(rec.ID),
			Missing: domain.StrFromPtrWithDefault("", rec.ParentGroupID),
			Message: fmt.Sprintf("group %s is part of a parent cycle", rec.ID),
		})
		visiting[rec.ID] = true
		g := byID[rec.ID].node
		tree = append(tree, g.WithChildren(assemble(byID[rec.ID].children, visiting)).WithParent(nil))
	}
	return tree, warnings
}

type entry struct {
	node  domain.Node
	order *int
	seq   int
}

func sortEntries(entries []entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].order, entries[j].order
		switch {
		case a == nil && b == nil:
			return entries[i].seq < entries[j].seq
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return *a < *b
	})
}

// assignMissingOrder numbers nodes that had no order index after the
// highest explicit one. entries and nodes share positions except where a
// cyclic group was skipped, so lookups go by ref.
func assignMissingOrder(nodes []domain.Node, entries []entry) []domain.Node {
	missing := make(map[domain.NodeRef]bool)
	highest := -1
	for _, e := range entries {
		if e.order == nil {
			missing[e.node.Ref()] = true
			continue
		}
		if *e.order > highest {
			highest = *e.order
		}
	}
	if len(missing) == 0 {
		return nodes
	}
	next := highest + 1
	for i, n := range nodes {
		if missing[n.Ref()] {
			nodes[i] = n.WithOrder(next)
			next++
		}
	}
	return nodes
}
