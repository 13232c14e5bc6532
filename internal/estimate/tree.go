// Package estimate implements the estimate tree engine: building a tree from
// flat rows, the structural mutations on it, and the totals rollup.
//
// Every operation treats its input tree as immutable. Mutations copy the
// nodes on the path from the root to the change and share everything else,
// so a tree value handed out earlier stays valid.
package estimate

import (
	"strings"

	"github.com/alexanderramin/estimator/internal/domain"
)

// path addresses a node by its index at each level, starting at the root.
type path []int

// locate finds ref and returns its path.
func locate(list []domain.Node, ref domain.NodeRef) (path, bool) {
	for i, n := range list {
		if n.Kind() == ref.Kind && n.NodeID() == ref.ID {
			return path{i}, true
		}
		if g, ok := n.(*domain.GroupNode); ok {
			if sub, found := locate(g.Children, ref); found {
				return append(path{i}, sub...), true
			}
		}
	}
	return nil, false
}

// locateGroup returns the path of group id, or the empty path for the root
// when id is nil.
func locateGroup(tree domain.Tree, id *string) (path, bool) {
	if id == nil {
		return path{}, true
	}
	return locate(tree, domain.GroupRef(*id))
}

// listAt returns the children list addressed by a group path.
func listAt(tree domain.Tree, groupPath path) []domain.Node {
	list := []domain.Node(tree)
	for _, i := range groupPath {
		list = list[i].(*domain.GroupNode).Children
	}
	return list
}

// nodeAt returns the node at p.
func nodeAt(tree domain.Tree, p path) domain.Node {
	return listAt(tree, p[:len(p)-1])[p[len(p)-1]]
}

// parentGroupID returns the id of the group owning the list at groupPath.
func parentGroupID(tree domain.Tree, groupPath path) *string {
	if len(groupPath) == 0 {
		return nil
	}
	id := nodeAt(tree, groupPath).NodeID()
	return &id
}

// rewriteList replaces the children list at groupPath with fn's result,
// copying every group on the way down. fn must not modify its argument.
func rewriteList(list []domain.Node, groupPath path, fn func([]domain.Node) []domain.Node) []domain.Node {
	if len(groupPath) == 0 {
		return fn(list)
	}
	out := make([]domain.Node, len(list))
	copy(out, list)
	g := out[groupPath[0]].(*domain.GroupNode)
	out[groupPath[0]] = g.WithChildren(rewriteList(g.Children, groupPath[1:], fn))
	return out
}

// Walk visits every node depth-first in sibling order. depth is 0 for root
// nodes. Returning false from fn skips the node's children.
func Walk(tree domain.Tree, fn func(n domain.Node, depth int) bool) {
	walk(tree, 0, fn)
}

func walk(list []domain.Node, depth int, fn func(domain.Node, int) bool) {
	for _, n := range list {
		if !fn(n, depth) {
			continue
		}
		if g, ok := n.(*domain.GroupNode); ok {
			walk(g.Children, depth+1, fn)
		}
	}
}

// Find returns the node addressed by ref.
func Find(tree domain.Tree, ref domain.NodeRef) (domain.Node, bool) {
	p, ok := locate(tree, ref)
	if !ok {
		return nil, false
	}
	return nodeAt(tree, p), true
}

// FindGroup returns the group with the given id.
func FindGroup(tree domain.Tree, id string) (*domain.GroupNode, bool) {
	n, ok := Find(tree, domain.GroupRef(id))
	if !ok {
		return nil, false
	}
	return n.(*domain.GroupNode), true
}

// FindItem returns the item with the given id.
func FindItem(tree domain.Tree, id string) (*domain.ItemNode, bool) {
	n, ok := Find(tree, domain.ItemRef(id))
	if !ok {
		return nil, false
	}
	return n.(*domain.ItemNode), true
}

// FindByPrefix resolves a (possibly truncated) id of the given kind. It
// returns false when nothing or more than one node matches.
func FindByPrefix(tree domain.Tree, kind domain.NodeKind, prefix string) (domain.Node, bool) {
	var match domain.Node
	count := 0
	Walk(tree, func(n domain.Node, _ int) bool {
		if n.Kind() != kind {
			return true
		}
		if n.NodeID() == prefix {
			match, count = n, 1
			return false
		}
		if strings.HasPrefix(n.NodeID(), prefix) {
			match = n
			count++
		}
		return true
	})
	if count != 1 {
		return nil, false
	}
	return match, true
}

// IsDescendant reports whether candidate is ancestor itself or lies in the
// subtree below group ancestor.
func IsDescendant(tree domain.Tree, ancestor, candidate string) bool {
	g, ok := FindGroup(tree, ancestor)
	if !ok {
		return false
	}
	if ancestor == candidate {
		return true
	}
	_, found := locate(g.Children, domain.GroupRef(candidate))
	return found
}

// Flatten converts a tree back into flat group and item records. Parent
// references are taken from the tree's actual structure.
func Flatten(tree domain.Tree) ([]domain.GroupRecord, []domain.ItemRecord) {
	var groups []domain.GroupRecord
	var items []domain.ItemRecord
	var visit func(list []domain.Node, parent *string)
	visit = func(list []domain.Node, parent *string) {
		for _, n := range list {
			switch v := n.(type) {
			case *domain.GroupNode:
				rec := v.Record()
				rec.ParentGroupID = domain.CopyStr(parent)
				groups = append(groups, rec)
				id := v.ID
				visit(v.Children, &id)
			case *domain.ItemNode:
				rec := v.Record()
				rec.GroupID = domain.CopyStr(parent)
				items = append(items, rec)
			}
		}
	}
	visit(tree, nil)
	return groups, items
}

// Count returns the number of groups and items in the tree.
func Count(tree domain.Tree) (groups, items int) {
	Walk(tree, func(n domain.Node, _ int) bool {
		if n.Kind() == domain.NodeGroup {
			groups++
		} else {
			items++
		}
		return true
	})
	return groups, items
}
