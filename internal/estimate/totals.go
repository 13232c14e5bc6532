package estimate

import "github.com/alexanderramin/estimator/internal/domain"

// ComputeTotals rolls every item in the tree, at any depth, into the
// estimate totals. Groups contribute nothing themselves. Items are summed in
// tree order, so equal trees give bit-identical results.
func ComputeTotals(tree domain.Tree) domain.Totals {
	return domain.TotalsFromSubtotal(Subtotal(tree))
}

// Subtotal sums the line totals of all items in list and below.
func Subtotal(list []domain.Node) float64 {
	sum := 0.0
	walk(list, 0, func(n domain.Node, _ int) bool {
		if it, ok := n.(*domain.ItemNode); ok {
			sum += domain.ComputeItemCosts(it).LineCostTotal
		}
		return true
	})
	return sum
}

// GroupSubtotal sums the items inside g.
func GroupSubtotal(g *domain.GroupNode) float64 {
	if g == nil {
		return 0
	}
	return Subtotal(g.Children)
}
