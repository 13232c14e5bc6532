package estimate

import (
	"testing"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/stretchr/testify/assert"
)

func group(id, name string, order int, children ...domain.Node) *domain.GroupNode {
	g := &domain.GroupNode{ID: id, Name: name, OrderIndex: order, Children: []domain.Node{}}
	for _, c := range children {
		g.Children = append(g.Children, c.WithParent(&g.ID))
	}
	return g
}

func item(id string, order int, qty float64, material, labor float64) *domain.ItemNode {
	return (&domain.ItemNode{
		ID:           id,
		Description:  "item " + id,
		Quantity:     qty,
		Unit:         "ea",
		MaterialCost: domain.FloatPtr(material),
		LaborCost:    domain.FloatPtr(labor),
		OrderIndex:   order,
	}).Annotate()
}

// requireDense fails when any sibling list is not numbered 0..n-1 in order.
func requireDense(t *testing.T, tree domain.Tree) {
	t.Helper()
	var check func(list []domain.Node, where string)
	check = func(list []domain.Node, where string) {
		for i, n := range list {
			assert.Equal(t, i, n.Order(), "%s: %s has order %d at position %d", where, n.Ref(), n.Order(), i)
			if g, ok := n.(*domain.GroupNode); ok {
				check(g.Children, g.ID)
			}
		}
	}
	check(tree, "root")
}

// requireParentsConsistent fails when a node's parent reference disagrees
// with where it sits in the tree.
func requireParentsConsistent(t *testing.T, tree domain.Tree) {
	t.Helper()
	var check func(list []domain.Node, parent *string)
	check = func(list []domain.Node, parent *string) {
		for _, n := range list {
			assert.True(t, domain.SameStr(parent, n.ParentID()), "%s has stale parent ref", n.Ref())
			if g, ok := n.(*domain.GroupNode); ok {
				id := g.ID
				check(g.Children, &id)
			}
		}
	}
	check(tree, nil)
}

func ids(list []domain.Node) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.NodeID()
	}
	return out
}
