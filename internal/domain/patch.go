package domain

// NodePatch is a partial update addressed to one node. Nil fields are left
// untouched; set fields replace the current value.
type NodePatch interface {
	Target() NodeRef
}

// GroupPatch updates a group's own fields. It can never change children.
type GroupPatch struct {
	ID         string
	Name       *string
	OrderIndex *int
}

func (p GroupPatch) Target() NodeRef { return GroupRef(p.ID) }

// Apply merges p over g and returns the merged copy.
func (p GroupPatch) Apply(g *GroupNode) *GroupNode {
	c := g.Clone()
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.OrderIndex != nil {
		c.OrderIndex = *p.OrderIndex
	}
	return c
}

// ItemPatch updates an item's fields. Cost fields set to a pointer replace
// the stored value; clearing a cost is done by patching it to 0.
type ItemPatch struct {
	ID              string
	Title           *string
	Description     *string
	Quantity        *float64
	Unit            *string
	MaterialCost    *float64
	LaborCost       *float64
	EquipmentCost   *float64
	OtherCost       *float64
	SubcontractCost *float64
	ItemID          *string
	CostbookItemID  *string
	OrderIndex      *int
}

func (p ItemPatch) Target() NodeRef { return ItemRef(p.ID) }

// Apply merges p over it and returns the merged copy with derived costs
// recomputed from the merged values.
func (p ItemPatch) Apply(it *ItemNode) *ItemNode {
	c := it.Clone()
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Quantity != nil {
		c.Quantity = NormalizeQuantity(*p.Quantity)
	}
	if p.Unit != nil {
		c.Unit = *p.Unit
	}
	if p.MaterialCost != nil {
		c.MaterialCost = FloatPtr(NormalizeCost(p.MaterialCost))
	}
	if p.LaborCost != nil {
		c.LaborCost = FloatPtr(NormalizeCost(p.LaborCost))
	}
	if p.EquipmentCost != nil {
		c.EquipmentCost = FloatPtr(NormalizeCost(p.EquipmentCost))
	}
	if p.OtherCost != nil {
		c.OtherCost = FloatPtr(NormalizeCost(p.OtherCost))
	}
	if p.SubcontractCost != nil {
		c.SubcontractCost = FloatPtr(NormalizeCost(p.SubcontractCost))
	}
	if p.ItemID != nil {
		c.ItemID = CopyStr(p.ItemID)
	}
	if p.CostbookItemID != nil {
		c.CostbookItemID = CopyStr(p.CostbookItemID)
	}
	if p.OrderIndex != nil {
		c.OrderIndex = *p.OrderIndex
	}
	return c.Annotate()
}

// TouchesCatalogFields reports whether the patch edits the fields that are
// read-only for costbook items.
func (p ItemPatch) TouchesCatalogFields() bool {
	return p.Title != nil || p.Description != nil || p.Unit != nil
}
