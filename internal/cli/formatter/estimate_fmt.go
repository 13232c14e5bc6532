package formatter

import (
	"fmt"
	"math"
	"strings"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/charmbracelet/lipgloss"
)

// FormatTotals renders the totals block with amounts right-aligned.
func FormatTotals(t domain.Totals, currency string) string {
	rows := [][2]string{
		{"Subtotal", Money(currency, t.Subtotal)},
		{"Discount", Money(currency, t.DiscountAmount)},
		{"After discount", Money(currency, t.TotalAfterDiscount)},
		{fmt.Sprintf("Tax (%d%%)", int(math.Round(domain.TaxRate*100))), Money(currency, t.TaxAmount)},
		{"Total", Money(currency, t.FinalTotal)},
	}
	labelWidth, amountWidth := 0, 0
	for _, r := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(r[0]))
		amountWidth = max(amountWidth, lipgloss.Width(r[1]))
	}

	var b strings.Builder
	for i, r := range rows {
		label := r[0] + strings.Repeat(" ", labelWidth-lipgloss.Width(r[0]))
		amount := strings.Repeat(" ", amountWidth-lipgloss.Width(r[1])) + r[1]
		if i == len(rows)-1 {
			b.WriteString(StyleDim.Render(strings.Repeat("─", labelWidth+2+amountWidth)) + "\n")
			b.WriteString(Bold(label) + "  " + Bold(amount) + "\n")
			continue
		}
		b.WriteString(Dim(label) + "  " + amount + "\n")
	}
	return b.String()
}

// EstimateView is everything FormatEstimate shows.
type EstimateView struct {
	Estimate *domain.Estimate
	Customer *domain.Customer
	Tree     domain.Tree
	Totals   domain.Totals
	Currency string
	ShowIDs  bool
}

// FormatEstimate renders one estimate with its tree and totals in a box.
func FormatEstimate(v EstimateView) string {
	var b strings.Builder

	e := v.Estimate
	b.WriteString(fmt.Sprintf("%s  %s\n\n", Bold(e.Title), StatusPill(e.Status)))
	b.WriteString(fmt.Sprintf("  %s  %s\n", Dim("ID      "), ShortID(e.ID)))
	if v.Customer != nil {
		b.WriteString(fmt.Sprintf("  %s  %s\n", Dim("CUSTOMER"), v.Customer.FullName()))
	}
	if e.Notes != "" {
		b.WriteString(fmt.Sprintf("  %s  %s\n", Dim("NOTES   "), e.Notes))
	}
	if !e.UpdatedAt.IsZero() {
		b.WriteString(fmt.Sprintf("  %s  %s\n", Dim("UPDATED "), HumanTimestamp(e.UpdatedAt)))
	}
	b.WriteString("\n")

	if len(v.Tree) == 0 {
		b.WriteString(Dim("No groups or items yet.") + "\n")
	} else {
		groups, items := estimate.Count(v.Tree)
		b.WriteString(Header(fmt.Sprintf("Scope · %d groups · %d items", groups, items)) + "\n")
		b.WriteString(RenderTree(EstimateTreeItems(v.Tree, TreeOptions{Currency: v.Currency, ShowIDs: v.ShowIDs})))
	}
	b.WriteString("\n")
	b.WriteString(FormatTotals(v.Totals, v.Currency))

	return RenderBox("Estimate", b.String())
}

// FormatEstimateList renders estimates as a table. customerNames maps
// customer ids to display names.
func FormatEstimateList(list []*domain.Estimate, customerNames map[string]string, currency string) string {
	if len(list) == 0 {
		return Dim("No estimates.") + "\n"
	}
	headers := []string{"ID", "TITLE", "CUSTOMER", "STATUS", "TOTAL", "UPDATED"}
	rows := make([][]string, 0, len(list))
	for _, e := range list {
		customer := "--"
		if e.CustomerID != nil {
			if name, ok := customerNames[*e.CustomerID]; ok {
				customer = name
			}
		}
		rows = append(rows, []string{
			TruncID(e.ID),
			e.Title,
			customer,
			StatusPill(e.Status),
			Money(currency, e.Totals.FinalTotal),
			HumanTimestamp(e.UpdatedAt),
		})
	}
	return RenderTable(headers, rows, 4)
}

// FormatCustomerList renders customers as a table.
func FormatCustomerList(list []*domain.Customer) string {
	if len(list) == 0 {
		return Dim("No customers.") + "\n"
	}
	headers := []string{"ID", "NAME", "EMAIL", "CITY"}
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{TruncID(c.ID), c.FullName(), c.Email, c.City})
	}
	return RenderTable(headers, rows)
}

// FormatWarnings lists tree integrity problems found while loading.
func FormatWarnings(warnings []estimate.Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	var b strings.Builder
	for _, w := range warnings {
		b.WriteString(StyleYellow.Render("! "+w.Message) + "\n")
	}
	return b.String()
}
