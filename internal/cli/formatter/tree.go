package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	Title  string
	ID     string // shown dimmed before the title when set
	Level  int
	IsLast bool
	Group  bool
	Note   string // dimmed text after the title
	Detail string // right-aligned badge
	// Guides says, per ancestor level 1..Level-1, whether a vertical guide
	// continues through this line. Nil draws every guide.
	Guides []bool
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// RenderTree renders TreeItems as an indented tree using box-drawing
// connectors. Groups are bold and detail badges are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	// Pass 1: build each line's content and track max visible width.
	for idx, item := range items {
		var prefix strings.Builder
		if item.Level > 0 {
			for i := 1; i < item.Level; i++ {
				if item.Guides == nil || (i-1 < len(item.Guides) && item.Guides[i-1]) {
					prefix.WriteString(treePipe)
				} else {
					prefix.WriteString(treeBlank)
				}
			}
			if item.IsLast {
				prefix.WriteString(treeCorner)
			} else {
				prefix.WriteString(treeBranch)
			}
		}

		title := item.Title
		if item.Group {
			title = Bold(title)
		}
		if item.ID != "" {
			title = Dim(ShortID(item.ID)) + " " + title
		}
		content := prefix.String() + title
		if item.Note != "" {
			content += Dim("  " + item.Note)
		}
		lines[idx].content = content

		if item.Detail != "" {
			lines[idx].badge = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail))
		}
		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	// Pass 2: render with right-aligned badges.
	var b strings.Builder
	for _, li := range lines {
		if li.badge != "" {
			pad := maxContentWidth - lipgloss.Width(li.content)
			if pad < 0 {
				pad = 0
			}
			b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
		} else {
			b.WriteString(li.content + "\n")
		}
	}
	return b.String()
}

// TreeOptions tunes EstimateTreeItems.
type TreeOptions struct {
	Currency string
	ShowIDs  bool
}

// EstimateTreeItems flattens an estimate tree into display rows. Groups
// show their subtotal; items show quantity, unit and cost per unit with
// the line total as the badge.
func EstimateTreeItems(tree domain.Tree, opts TreeOptions) []TreeItem {
	var out []TreeItem
	var visit func(list []domain.Node, level int, guides []bool)
	visit = func(list []domain.Node, level int, guides []bool) {
		for i, n := range list {
			last := i == len(list)-1
			item := TreeItem{
				Level:  level,
				IsLast: last,
				Guides: guides,
			}
			if opts.ShowIDs {
				item.ID = n.NodeID()
			}
			switch v := n.(type) {
			case *domain.GroupNode:
				item.Title = v.Name
				item.Group = true
				item.Detail = Money(opts.Currency, estimate.GroupSubtotal(v))
				out = append(out, item)
				var childGuides []bool
				if level > 0 {
					childGuides = append(append([]bool{}, guides...), !last)
				}
				visit(v.Children, level+1, childGuides)
			case *domain.ItemNode:
				costs := domain.ComputeItemCosts(v)
				item.Title = v.Label()
				item.Note = ItemNote(v, opts.Currency)
				item.Detail = Money(opts.Currency, costs.LineCostTotal)
				out = append(out, item)
			}
		}
	}
	visit(tree, 0, nil)
	return out
}

// ItemNote describes an item's quantity and unit price, e.g.
// "2 ea × $15.00". Catalog items are marked.
func ItemNote(it *domain.ItemNode, currency string) string {
	costs := domain.ComputeItemCosts(it)
	note := fmt.Sprintf("%s %s × %s", Quantity(domain.NormalizeQuantity(it.Quantity)), it.Unit, Money(currency, costs.CostPerUnit))
	if it.Mode() == domain.ModeCatalog {
		note += " · catalog"
	}
	return note
}
