package domain

// TaxRate is the flat sales tax applied to every estimate (13% HST).
const TaxRate = 0.13

// ItemCosts holds the derived per-unit and per-line cost of an item.
type ItemCosts struct {
	CostPerUnit   float64
	LineCostTotal float64
}

// ComputeItemCosts sums the five per-unit cost components and multiplies by
// quantity. Missing, negative or non-finite costs count as 0; a quantity that
// is not a finite positive number counts as 1. It never fails.
func ComputeItemCosts(it *ItemNode) ItemCosts {
	if it == nil {
		return ItemCosts{}
	}
	perUnit := NormalizeCost(it.MaterialCost) +
		NormalizeCost(it.LaborCost) +
		NormalizeCost(it.EquipmentCost) +
		NormalizeCost(it.OtherCost) +
		NormalizeCost(it.SubcontractCost)
	return ItemCosts{
		CostPerUnit:   perUnit,
		LineCostTotal: NormalizeQuantity(it.Quantity) * perUnit,
	}
}

// NormalizeCost maps a nullable cost to a safe non-negative amount.
func NormalizeCost(p *float64) float64 {
	if p == nil || !finite(*p) || *p < 0 {
		return 0
	}
	return *p
}

// NormalizeQuantity floors invalid or non-positive quantities at 1.
func NormalizeQuantity(q float64) float64 {
	if !finite(q) || q <= 0 {
		return 1
	}
	return q
}

// Totals are the estimate-wide figures derived from the tree.
type Totals struct {
	Subtotal           float64
	DiscountAmount     float64
	TotalAfterDiscount float64
	TaxAmount          float64
	FinalTotal         float64
}

// TotalsFromSubtotal derives discount, tax and final total from a subtotal.
// Discounts are not modelled yet and are always 0.
func TotalsFromSubtotal(subtotal float64) Totals {
	discount := 0.0
	after := subtotal - discount
	tax := after * TaxRate
	return Totals{
		Subtotal:           subtotal,
		DiscountAmount:     discount,
		TotalAfterDiscount: after,
		TaxAmount:          tax,
		FinalTotal:         after + tax,
	}
}
