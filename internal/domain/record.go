package domain

import "time"

// GroupRecord is a flat group row as stored by the persistence layer.
type GroupRecord struct {
	ID            string `validate:"required"`
	EstimateID    string
	Name          string `validate:"required"`
	OrderIndex    *int
	ParentGroupID *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ItemRecord is a flat item row as stored by the persistence layer.
type ItemRecord struct {
	ID              string `validate:"required"`
	EstimateID      string
	GroupID         *string
	Title           string
	Description     string
	Quantity        float64
	Unit            string
	MaterialCost    *float64
	LaborCost       *float64
	EquipmentCost   *float64
	OtherCost       *float64
	SubcontractCost *float64
	ItemID          *string
	CostbookItemID  *string
	OrderIndex      *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Node converts a record into an unannotated tree node.
func (r GroupRecord) Node() *GroupNode {
	return &GroupNode{
		ID:            r.ID,
		EstimateID:    r.EstimateID,
		Name:          r.Name,
		OrderIndex:    IntFromPtrWithDefault(0, r.OrderIndex),
		ParentGroupID: CopyStr(r.ParentGroupID),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// Node converts a record into an item node with derived costs filled in.
func (r ItemRecord) Node() *ItemNode {
	it := &ItemNode{
		ID:              r.ID,
		EstimateID:      r.EstimateID,
		GroupID:         CopyStr(r.GroupID),
		Title:           r.Title,
		Description:     r.Description,
		Quantity:        r.Quantity,
		Unit:            r.Unit,
		MaterialCost:    CopyFloat(r.MaterialCost),
		LaborCost:       CopyFloat(r.LaborCost),
		EquipmentCost:   CopyFloat(r.EquipmentCost),
		OtherCost:       CopyFloat(r.OtherCost),
		SubcontractCost: CopyFloat(r.SubcontractCost),
		ItemID:          CopyStr(r.ItemID),
		CostbookItemID:  CopyStr(r.CostbookItemID),
		OrderIndex:      IntFromPtrWithDefault(0, r.OrderIndex),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	return it.Annotate()
}

// Record flattens a group node back into its row form.
func (g *GroupNode) Record() GroupRecord {
	return GroupRecord{
		ID:            g.ID,
		EstimateID:    g.EstimateID,
		Name:          g.Name,
		OrderIndex:    IntPtr(g.OrderIndex),
		ParentGroupID: CopyStr(g.ParentGroupID),
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

// Record flattens an item node back into its row form. Derived costs are
// not part of the row.
func (it *ItemNode) Record() ItemRecord {
	return ItemRecord{
		ID:              it.ID,
		EstimateID:      it.EstimateID,
		GroupID:         CopyStr(it.GroupID),
		Title:           it.Title,
		Description:     it.Description,
		Quantity:        it.Quantity,
		Unit:            it.Unit,
		MaterialCost:    CopyFloat(it.MaterialCost),
		LaborCost:       CopyFloat(it.LaborCost),
		EquipmentCost:   CopyFloat(it.EquipmentCost),
		OtherCost:       CopyFloat(it.OtherCost),
		SubcontractCost: CopyFloat(it.SubcontractCost),
		ItemID:          CopyStr(it.ItemID),
		CostbookItemID:  CopyStr(it.CostbookItemID),
		OrderIndex:      IntPtr(it.OrderIndex),
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
}
