package estimate

import (
	"testing"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestComputeTotals_NestedItems(t *testing.T) {
	tree := domain.Tree{
		group("g1", "Kitchen", 0,
			item("i1", 0, 2, 10, 5),
			group("g2", "Cabinets", 1, item("i2", 0, 1, 100, 0)),
		),
		item("i3", 1, 4, 0, 2.5),
	}
	totals := ComputeTotals(tree)

	assert.InDelta(t, 140.0, totals.Subtotal, 1e-9)
	assert.Equal(t, 0.0, totals.DiscountAmount)
	assert.InDelta(t, 140.0, totals.TotalAfterDiscount, 1e-9)
	assert.InDelta(t, 18.2, totals.TaxAmount, 1e-9)
	assert.InDelta(t, 158.2, totals.FinalTotal, 1e-9)

	g1, _ := FindGroup(tree, "g1")
	assert.InDelta(t, 130.0, GroupSubtotal(g1), 1e-9)
	assert.Equal(t, 0.0, GroupSubtotal(nil))
}

func TestComputeTotals_EmptyTree(t *testing.T) {
	assert.Equal(t, domain.Totals{}, ComputeTotals(nil))
}

func TestComputeTotals_IgnoresStaleAnnotations(t *testing.T) {
	stale := item("i1", 0, 2, 10, 0)
	stale.LineCostTotal = 999
	assert.InDelta(t, 20.0, ComputeTotals(domain.Tree{stale}).Subtotal, 1e-9)
}

func TestComputeTotals_Deterministic(t *testing.T) {
	tree := domain.Tree{item("a", 0, 3, 0.1, 0.2), item("b", 1, 7, 0.3, 0.7)}
	assert.Equal(t, ComputeTotals(tree), ComputeTotals(tree))
}
