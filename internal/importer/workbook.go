package importer

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/xuri/excelize/v2"
)

// FormatXLSX is an export-only spreadsheet of the priced tree.
const FormatXLSX Format = "xlsx"

const workbookSheet = "Estimate"

var workbookHeaders = []string{"Name", "Type", "Quantity", "Unit", "Cost / unit", "Line total"}

// WriteWorkbook renders the estimate tree as one spreadsheet: a row per
// node, indented by depth, followed by the totals block. Amounts are
// rounded to cents.
func WriteWorkbook(w io.Writer, e *domain.Estimate, tree domain.Tree) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", workbookSheet); err != nil {
		return err
	}

	boldStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}

	f.SetCellValue(workbookSheet, "A1", e.Title)
	f.SetCellStyle(workbookSheet, "A1", "A1", boldStyle)

	const headerRow = 3
	for i, h := range workbookHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(workbookSheet, cell, h)
		f.SetCellStyle(workbookSheet, cell, cell, boldStyle)
	}

	row := headerRow + 1
	estimate.Walk(tree, func(n domain.Node, depth int) bool {
		indent := strings.Repeat("  ", depth)
		switch v := n.(type) {
		case *domain.GroupNode:
			f.SetCellValue(workbookSheet, fmt.Sprintf("A%d", row), indent+v.Name)
			f.SetCellValue(workbookSheet, fmt.Sprintf("B%d", row), string(domain.NodeGroup))
			f.SetCellValue(workbookSheet, fmt.Sprintf("F%d", row), cents(estimate.GroupSubtotal(v)))
		case *domain.ItemNode:
			costs := domain.ComputeItemCosts(v)
			f.SetCellValue(workbookSheet, fmt.Sprintf("A%d", row), indent+v.Label())
			f.SetCellValue(workbookSheet, fmt.Sprintf("B%d", row), string(domain.NodeItem))
			f.SetCellValue(workbookSheet, fmt.Sprintf("C%d", row), domain.NormalizeQuantity(v.Quantity))
			f.SetCellValue(workbookSheet, fmt.Sprintf("D%d", row), v.Unit)
			f.SetCellValue(workbookSheet, fmt.Sprintf("E%d", row), cents(costs.CostPerUnit))
			f.SetCellValue(workbookSheet, fmt.Sprintf("F%d", row), cents(costs.LineCostTotal))
		}
		row++
		return true
	})
	if row > headerRow+1 {
		f.SetCellStyle(workbookSheet, fmt.Sprintf("E%d", headerRow+1), fmt.Sprintf("F%d", row-1), moneyStyle)
	}

	totals := estimate.ComputeTotals(tree)
	row++
	for _, line := range []struct {
		label  string
		amount float64
	}{
		{"Subtotal", totals.Subtotal},
		{"Discount", totals.DiscountAmount},
		{"After discount", totals.TotalAfterDiscount},
		{fmt.Sprintf("Tax (%d%%)", int(math.Round(domain.TaxRate*100))), totals.TaxAmount},
		{"Total", totals.FinalTotal},
	} {
		f.SetCellValue(workbookSheet, fmt.Sprintf("E%d", row), line.label)
		f.SetCellValue(workbookSheet, fmt.Sprintf("F%d", row), cents(line.amount))
		f.SetCellStyle(workbookSheet, fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row), moneyStyle)
		row++
	}
	f.SetCellStyle(workbookSheet, fmt.Sprintf("E%d", row-1), fmt.Sprintf("F%d", row-1), boldStyle)

	colWidths := []float64{40, 8, 10, 8, 14, 14}
	for i, width := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(workbookSheet, col, col, width)
	}

	return f.Write(w)
}

func cents(amount float64) float64 {
	return domain.Cents(amount).InexactFloat64()
}
