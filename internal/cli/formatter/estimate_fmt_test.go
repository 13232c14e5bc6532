package formatter

import (
	"testing"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/stretchr/testify/assert"
)

func TestFormatEstimate_ShowsTreeAndTotals(t *testing.T) {
	tree := kitchenTree()
	out := stripANSI(FormatEstimate(EstimateView{
		Estimate: &domain.Estimate{ID: "abcdef1234", Title: "Kitchen remodel", Status: domain.EstimateSent, Notes: "Call before 9"},
		Customer: &domain.Customer{FirstName: "Dana", LastName: "Scully"},
		Tree:     tree,
		Totals:   estimate.ComputeTotals(tree),
		Currency: "$",
	}))

	assert.Contains(t, out, "Kitchen remodel")
	assert.Contains(t, out, "● Sent")
	assert.Contains(t, out, "abcdef12")
	assert.Contains(t, out, "Dana Scully")
	assert.Contains(t, out, "Call before 9")
	assert.Contains(t, out, "SCOPE · 2 GROUPS · 3 ITEMS")
	assert.Contains(t, out, "└─ Electrical")
	assert.Contains(t, out, "$180.00")
	assert.Contains(t, out, "$203.40")
	assert.NotContains(t, out, "g-kitchen", "ids hidden unless requested")
}

func TestFormatEstimate_Empty(t *testing.T) {
	out := stripANSI(FormatEstimate(EstimateView{
		Estimate: &domain.Estimate{ID: "e1", Title: "Blank", Status: domain.EstimateDraft},
		Currency: "$",
	}))
	assert.Contains(t, out, "No groups or items yet.")
	assert.Contains(t, out, "○ Draft")
	assert.NotContains(t, out, "CUSTOMER")
	assert.Contains(t, out, "$0.00")
}

func TestEstimateTreeItems_ShowIDs(t *testing.T) {
	items := EstimateTreeItems(kitchenTree(), TreeOptions{Currency: "$", ShowIDs: true})
	assert.Len(t, items, 5)
	assert.Equal(t, "g-kitche", ShortID(items[0].ID))
	assert.True(t, items[0].Group)
	assert.Equal(t, "$80.00", items[0].Detail)
	assert.Equal(t, 2, items[3].Level)
	assert.Equal(t, []bool{false}, items[3].Guides)

	out := stripANSI(RenderTree(items))
	assert.Contains(t, out, "g-kitche Kitchen")
}

func TestItemNote_Catalog(t *testing.T) {
	it := &domain.ItemNode{Quantity: 1.5, Unit: "sqft", MaterialCost: domain.FloatPtr(4), CostbookItemID: domain.StrPtr("cb-1")}
	assert.Equal(t, "1.5 sqft × $4.00 · catalog", ItemNote(it, "$"))

	custom := &domain.ItemNode{Quantity: 0, Unit: "ea"}
	assert.Equal(t, "1 ea × $0.00", ItemNote(custom, "$"))
}

func TestRenderTree_Empty(t *testing.T) {
	assert.Equal(t, "", RenderTree(nil))
}

func TestRenderTable_RightAligned(t *testing.T) {
	out := stripANSI(RenderTable([]string{"NAME", "AMT"}, [][]string{{"a", "$1.00"}, {"bb", "$10.00"}}, 1))
	assert.Equal(t, "NAME     AMT\n────  ──────\na      $1.00\nbb    $10.00\n", out)
}

func TestFormatCustomerList(t *testing.T) {
	out := stripANSI(FormatCustomerList([]*domain.Customer{
		{ID: "c0ffee00-1", FirstName: "Fox", LastName: "Mulder", Email: "fox@fbi.gov", City: "Washington"},
	}))
	assert.Contains(t, out, "c0ffee00")
	assert.Contains(t, out, "Fox Mulder")
	assert.Contains(t, out, "fox@fbi.gov")

	assert.Equal(t, "No customers.\n", stripANSI(FormatCustomerList(nil)))
}

func TestFormatWarnings(t *testing.T) {
	assert.Equal(t, "", FormatWarnings(nil))
	out := stripANSI(FormatWarnings([]estimate.Warning{{Message: "item i-1 references missing group g-9"}}))
	assert.Equal(t, "! item i-1 references missing group g-9\n", out)
}
