package formatter

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ansiPattern matches ANSI escape sequences for stripping before golden comparison.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// stripANSI removes ANSI escape codes from a string so golden files
// are terminal-independent.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// goldenTest compares got against a golden file in testdata/<name>.golden.
// Set GOLDEN_UPDATE=1 to regenerate golden files.
func goldenTest(t *testing.T, name, got string) {
	t.Helper()

	goldenDir := filepath.Join("testdata")
	goldenPath := filepath.Join(goldenDir, name+".golden")

	stripped := stripANSI(got)

	if os.Getenv("GOLDEN_UPDATE") == "1" {
		require.NoError(t, os.MkdirAll(goldenDir, 0755))
		require.NoError(t, os.WriteFile(goldenPath, []byte(stripped), 0644))
		t.Logf("updated golden file: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if os.IsNotExist(err) {
		t.Fatalf("golden file %s does not exist; run with GOLDEN_UPDATE=1 to create it", goldenPath)
	}
	require.NoError(t, err)

	assert.Equal(t, string(expected), stripped,
		"output does not match golden file %s; run with GOLDEN_UPDATE=1 to update", goldenPath)
}

// kitchenTree is a two-level estimate: Kitchen holds one item and the
// Electrical sub-group, and a permit line sits at root.
func kitchenTree() domain.Tree {
	kitchen := "g-kitchen"
	electrical := "g-electrical"
	return domain.Tree{
		&domain.GroupNode{
			ID:   kitchen,
			Name: "Kitchen",
			Children: []domain.Node{
				&domain.ItemNode{
					ID: "i-cabinet", GroupID: &kitchen, Title: "Cabinet install",
					Quantity: 2, Unit: "ea",
					MaterialCost: domain.FloatPtr(10), LaborCost: domain.FloatPtr(5),
				},
				&domain.GroupNode{
					ID: electrical, ParentGroupID: &kitchen, Name: "Electrical", OrderIndex: 1,
					Children: []domain.Node{
						&domain.ItemNode{
							ID: "i-outlets", GroupID: &electrical, Title: "Outlets",
							Quantity: 4, Unit: "ea", LaborCost: domain.FloatPtr(12.5),
						},
					},
				},
			},
		},
		&domain.ItemNode{
			ID: "i-permit", Title: "Permit", Quantity: 1, Unit: "ls",
			OtherCost: domain.FloatPtr(100), OrderIndex: 1,
		},
	}
}

func TestEstimateTree_Golden(t *testing.T) {
	out := RenderTree(EstimateTreeItems(kitchenTree(), TreeOptions{Currency: "$"}))
	goldenTest(t, "estimate_tree", out)
}

func TestFormatTotals_Golden(t *testing.T) {
	out := FormatTotals(domain.TotalsFromSubtotal(180), "$")
	goldenTest(t, "estimate_totals", out)
}

func TestFormatEstimateList_Golden(t *testing.T) {
	customerID := "c-1"
	list := []*domain.Estimate{
		{
			ID:         "a1b2c3d4-0000",
			CustomerID: &customerID,
			Title:      "Kitchen remodel",
			Status:     domain.EstimateAccepted,
			Totals:     domain.TotalsFromSubtotal(30),
			UpdatedAt:  time.Date(2022, 9, 30, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:        "ffee0011-2222",
			Title:     "Fence",
			Status:    domain.EstimateDraft,
			Totals:    domain.Totals{FinalTotal: 1234.5},
			UpdatedAt: time.Date(2023, 1, 15, 10, 0, 0, 0, time.UTC),
		},
	}

	out := FormatEstimateList(list, map[string]string{customerID: "Dana Scully"}, "$")
	goldenTest(t, "estimate_list", out)
}
