package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/estimator/internal/cli/formatter"
	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// estimatorHuhTheme returns a huh theme using the formatter palette.
func estimatorHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// itemFormValues holds the raw text collected by the item form.
type itemFormValues struct {
	Title       string
	Quantity    string
	Unit        string
	Material    string
	Labor       string
	Equipment   string
	Other       string
	Subcontract string
}

func newItemForm(v *itemFormValues) *huh.Form {
	if v.Quantity == "" {
		v.Quantity = "1"
	}
	if v.Unit == "" {
		v.Unit = domain.Units[0]
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&v.Title).Validate(validateRequired),
			huh.NewInput().Title("Quantity").Value(&v.Quantity).Validate(validatePositiveNumber),
			huh.NewSelect[string]().Title("Unit").Options(huh.NewOptions(domain.Units...)...).Value(&v.Unit),
		),
		huh.NewGroup(
			costInput("Material per unit", &v.Material),
			costInput("Labor per unit", &v.Labor),
			costInput("Equipment per unit", &v.Equipment),
			costInput("Other per unit", &v.Other),
			costInput("Subcontract per unit", &v.Subcontract),
		).Description("Leave blank for none"),
	).WithTheme(estimatorHuhTheme()).WithShowHelp(false)
}

func costInput(title string, value *string) *huh.Input {
	return huh.NewInput().
		Title(title).
		Placeholder("0.00").
		Value(value).
		Validate(validateOptionalCost)
}

// node converts the collected text into an item. Blank costs stay unset.
func (v itemFormValues) node() (*domain.ItemNode, error) {
	qty, err := parseNumber(v.Quantity)
	if err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}
	it := &domain.ItemNode{Title: strings.TrimSpace(v.Title), Quantity: qty, Unit: v.Unit}
	costs := []struct {
		raw string
		dst **float64
	}{
		{v.Material, &it.MaterialCost},
		{v.Labor, &it.LaborCost},
		{v.Equipment, &it.EquipmentCost},
		{v.Other, &it.OtherCost},
		{v.Subcontract, &it.SubcontractCost},
	}
	for _, c := range costs {
		if strings.TrimSpace(c.raw) == "" {
			continue
		}
		f, err := parseNumber(c.raw)
		if err != nil {
			return nil, err
		}
		*c.dst = domain.FloatPtr(f)
	}
	return it, nil
}

func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return f, nil
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func validatePositiveNumber(s string) error {
	f, err := parseNumber(s)
	if err != nil {
		return err
	}
	if f <= 0 {
		return fmt.Errorf("must be greater than 0")
	}
	return nil
}

func validateOptionalCost(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	f, err := parseNumber(s)
	if err != nil {
		return err
	}
	if f < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}
