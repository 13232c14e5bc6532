package importer

import (
	"fmt"
	"math"
	"strings"
)

// ValidateImportSchema checks the import schema for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	errs = append(errs, validateEstimate(&schema.Estimate)...)

	groupRefs := make(map[string]bool)
	errs = append(errs, validateGroups(schema.Groups, groupRefs)...)
	errs = append(errs, validateItems(schema.Items, groupRefs)...)

	return errs
}

func validateEstimate(e *EstimateImport) []error {
	var errs []error

	if strings.TrimSpace(e.Title) == "" {
		errs = append(errs, fmt.Errorf("estimate.title is required"))
	}
	if e.CustomerID != nil && strings.TrimSpace(*e.CustomerID) == "" {
		errs = append(errs, fmt.Errorf("estimate.customer_id must not be blank when set"))
	}

	return errs
}

func validateGroups(groups []GroupImport, groupRefs map[string]bool) []error {
	var errs []error

	for i, g := range groups {
		prefix := fmt.Sprintf("groups[%d]", i)
		if g.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else {
			prefix = fmt.Sprintf("groups[%d] (%s)", i, g.Ref)
			if groupRefs[g.Ref] {
				errs = append(errs, fmt.Errorf("%s: duplicate ref %q", prefix, g.Ref))
			}
		}
		if strings.TrimSpace(g.Name) == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if g.ParentRef != nil && *g.ParentRef != "" {
			switch {
			case *g.ParentRef == g.Ref:
				errs = append(errs, fmt.Errorf("%s: group cannot be its own parent", prefix))
			case !groupRefs[*g.ParentRef]:
				errs = append(errs, fmt.Errorf("%s: parent_ref %q must refer to an earlier group", prefix, *g.ParentRef))
			}
		}
		if g.Order != nil && *g.Order < 0 {
			errs = append(errs, fmt.Errorf("%s.order must not be negative", prefix))
		}

		// Registered after the parent check so forward references and
		// cycles are both rejected.
		if g.Ref != "" {
			groupRefs[g.Ref] = true
		}
	}

	return errs
}

func validateItems(items []ItemImport, groupRefs map[string]bool) []error {
	var errs []error
	itemRefs := make(map[string]bool)

	for i, it := range items {
		prefix := fmt.Sprintf("items[%d]", i)
		if it.Ref != "" {
			prefix = fmt.Sprintf("items[%d] (%s)", i, it.Ref)
			if itemRefs[it.Ref] {
				errs = append(errs, fmt.Errorf("%s: duplicate ref %q", prefix, it.Ref))
			}
			itemRefs[it.Ref] = true
		}
		if strings.TrimSpace(it.Title) == "" && strings.TrimSpace(it.Description) == "" {
			errs = append(errs, fmt.Errorf("%s: title or description is required", prefix))
		}
		if it.GroupRef != nil && *it.GroupRef != "" && !groupRefs[*it.GroupRef] {
			errs = append(errs, fmt.Errorf("%s: group_ref %q not found", prefix, *it.GroupRef))
		}
		if !isFinite(it.Quantity) || it.Quantity < 0 {
			errs = append(errs, fmt.Errorf("%s.quantity must be a non-negative number", prefix))
		}
		if it.Order != nil && *it.Order < 0 {
			errs = append(errs, fmt.Errorf("%s.order must not be negative", prefix))
		}
		errs = append(errs, validateCosts(prefix+".costs", it.Costs)...)
	}

	return errs
}

func validateCosts(prefix string, c CostsImport) []error {
	var errs []error
	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"material", c.Material},
		{"labor", c.Labor},
		{"equipment", c.Equipment},
		{"other", c.Other},
		{"subcontract", c.Subcontract},
	} {
		if f.v != nil && (!isFinite(*f.v) || *f.v < 0) {
			errs = append(errs, fmt.Errorf("%s.%s must be a non-negative number", prefix, f.name))
		}
	}
	return errs
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
