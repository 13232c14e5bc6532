package api

import (
	"time"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/alexanderramin/estimator/internal/session"
)

type nodeResponse struct {
	Kind          domain.NodeKind `json:"kind"`
	ID            string          `json:"id"`
	OrderIndex    int             `json:"orderIndex"`
	ParentGroupID *string         `json:"parentGroupId"`

	// Group fields.
	Name     string         `json:"name,omitempty"`
	Children []nodeResponse `json:"children,omitempty"`
	Subtotal *float64       `json:"subtotal,omitempty"`

	// Item fields.
	Title           string   `json:"title,omitempty"`
	Description     string   `json:"description,omitempty"`
	Quantity        float64  `json:"quantity,omitempty"`
	Unit            string   `json:"unit,omitempty"`
	MaterialCost    *float64 `json:"materialCost,omitempty"`
	LaborCost       *float64 `json:"laborCost,omitempty"`
	EquipmentCost   *float64 `json:"equipmentCost,omitempty"`
	OtherCost       *float64 `json:"otherCost,omitempty"`
	SubcontractCost *float64 `json:"subcontractCost,omitempty"`
	ItemID          *string  `json:"itemId,omitempty"`
	CostbookItemID  *string  `json:"costbookItemId,omitempty"`
	Mode            string   `json:"mode,omitempty"`
	CostPerUnit     *float64 `json:"costPerUnit,omitempty"`
	LineCostTotal   *float64 `json:"lineCostTotal,omitempty"`
}

func toNodeResponse(n domain.Node) nodeResponse {
	switch v := n.(type) {
	case *domain.GroupNode:
		children := make([]nodeResponse, 0, len(v.Children))
		for _, c := range v.Children {
			children = append(children, toNodeResponse(c))
		}
		sub := estimate.GroupSubtotal(v)
		return nodeResponse{
			Kind:          domain.NodeGroup,
			ID:            v.ID,
			OrderIndex:    v.OrderIndex,
			ParentGroupID: v.ParentGroupID,
			Name:          v.Name,
			Children:      children,
			Subtotal:      &sub,
		}
	case *domain.ItemNode:
		costs := domain.ComputeItemCosts(v)
		return nodeResponse{
			Kind:            domain.NodeItem,
			ID:              v.ID,
			OrderIndex:      v.OrderIndex,
			ParentGroupID:   v.GroupID,
			Title:           v.Title,
			Description:     v.Description,
			Quantity:        v.Quantity,
			Unit:            v.Unit,
			MaterialCost:    v.MaterialCost,
			LaborCost:       v.LaborCost,
			EquipmentCost:   v.EquipmentCost,
			OtherCost:       v.OtherCost,
			SubcontractCost: v.SubcontractCost,
			ItemID:          v.ItemID,
			CostbookItemID:  v.CostbookItemID,
			Mode:            string(v.Mode()),
			CostPerUnit:     &costs.CostPerUnit,
			LineCostTotal:   &costs.LineCostTotal,
		}
	}
	return nodeResponse{}
}

func toTreeResponse(tree domain.Tree) []nodeResponse {
	out := make([]nodeResponse, 0, len(tree))
	for _, n := range tree {
		out = append(out, toNodeResponse(n))
	}
	return out
}

type totalsResponse struct {
	Subtotal           float64           `json:"subtotal"`
	DiscountAmount     float64           `json:"discountAmount"`
	TotalAfterDiscount float64           `json:"totalAfterDiscount"`
	TaxAmount          float64           `json:"taxAmount"`
	FinalTotal         float64           `json:"finalTotal"`
	Display            map[string]string `json:"display"`
}

func toTotalsResponse(t domain.Totals, currency string) totalsResponse {
	return totalsResponse{
		Subtotal:           t.Subtotal,
		DiscountAmount:     t.DiscountAmount,
		TotalAfterDiscount: t.TotalAfterDiscount,
		TaxAmount:          t.TaxAmount,
		FinalTotal:         t.FinalTotal,
		Display: map[string]string{
			"subtotal":           domain.FormatMoney(currency, t.Subtotal),
			"discountAmount":     domain.FormatMoney(currency, t.DiscountAmount),
			"totalAfterDiscount": domain.FormatMoney(currency, t.TotalAfterDiscount),
			"taxAmount":          domain.FormatMoney(currency, t.TaxAmount),
			"finalTotal":         domain.FormatMoney(currency, t.FinalTotal),
		},
	}
}

type treeResponse struct {
	EstimateID string          `json:"estimateId"`
	Outcome    string          `json:"outcome,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	Node       *nodeResponse   `json:"node,omitempty"`
	Tree       []nodeResponse  `json:"tree"`
	Totals     totalsResponse  `json:"totals"`
	Changes    *changeResponse `json:"changes,omitempty"`
}

type changeResponse struct {
	Created []string `json:"created"`
	Updated []string `json:"updated"`
	Deleted []string `json:"deleted"`
}

func toChangeResponse(cs estimate.ChangeSet) *changeResponse {
	out := &changeResponse{Created: []string{}, Updated: []string{}, Deleted: []string{}}
	for _, n := range cs.Created {
		out.Created = append(out.Created, n.Ref().String())
	}
	for _, n := range cs.Updated {
		out.Updated = append(out.Updated, n.Ref().String())
	}
	for _, r := range cs.Deleted {
		out.Deleted = append(out.Deleted, r.String())
	}
	return out
}

func snapshotResponse(snap session.Snapshot, currency string) treeResponse {
	return treeResponse{
		EstimateID: snap.EstimateID,
		Tree:       toTreeResponse(snap.Tree),
		Totals:     toTotalsResponse(snap.Totals, currency),
	}
}

type estimateResponse struct {
	ID         string         `json:"id"`
	CustomerID *string        `json:"customerId"`
	Title      string         `json:"title"`
	Status     string         `json:"status"`
	Notes      string         `json:"notes,omitempty"`
	Totals     totalsResponse `json:"totals"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func toEstimateResponse(e *domain.Estimate, currency string) estimateResponse {
	return estimateResponse{
		ID:         e.ID,
		CustomerID: e.CustomerID,
		Title:      e.Title,
		Status:     string(e.Status),
		Notes:      e.Notes,
		Totals:     toTotalsResponse(e.Totals, currency),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

type jobResponse struct {
	ID         string    `json:"id"`
	EstimateID string    `json:"estimateId"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Requests. Pointers distinguish "not sent" from zero values.

type createEstimateRequest struct {
	Title      string  `json:"title" binding:"required"`
	CustomerID *string `json:"customerId"`
	Notes      string  `json:"notes"`
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft sent accepted rejected"`
}

type addGroupRequest struct {
	Name          string  `json:"name" binding:"required"`
	ParentGroupID *string `json:"parentGroupId"`
}

type addItemRequest struct {
	GroupID         *string  `json:"groupId"`
	Title           string   `json:"title"`
	Description     string   `json:"description" binding:"required"`
	Quantity        float64  `json:"quantity" binding:"gte=0"`
	Unit            string   `json:"unit"`
	MaterialCost    *float64 `json:"materialCost" binding:"omitempty,gte=0"`
	LaborCost       *float64 `json:"laborCost" binding:"omitempty,gte=0"`
	EquipmentCost   *float64 `json:"equipmentCost" binding:"omitempty,gte=0"`
	OtherCost       *float64 `json:"otherCost" binding:"omitempty,gte=0"`
	SubcontractCost *float64 `json:"subcontractCost" binding:"omitempty,gte=0"`
	ItemID          *string  `json:"itemId"`
	CostbookItemID  *string  `json:"costbookItemId"`
}

func (r addItemRequest) node() *domain.ItemNode {
	unit := r.Unit
	if unit == "" {
		unit = "ea"
	}
	return &domain.ItemNode{
		Title:           r.Title,
		Description:     r.Description,
		Quantity:        r.Quantity,
		Unit:            unit,
		MaterialCost:    r.MaterialCost,
		LaborCost:       r.LaborCost,
		EquipmentCost:   r.EquipmentCost,
		OtherCost:       r.OtherCost,
		SubcontractCost: r.SubcontractCost,
		ItemID:          r.ItemID,
		CostbookItemID:  r.CostbookItemID,
	}
}

type patchGroupRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=1"`
	OrderIndex *int    `json:"orderIndex" binding:"omitempty,gte=0"`
}

type patchItemRequest struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description" binding:"omitempty,min=1"`
	Quantity        *float64 `json:"quantity" binding:"omitempty,gte=0"`
	Unit            *string  `json:"unit"`
	MaterialCost    *float64 `json:"materialCost" binding:"omitempty,gte=0"`
	LaborCost       *float64 `json:"laborCost" binding:"omitempty,gte=0"`
	EquipmentCost   *float64 `json:"equipmentCost" binding:"omitempty,gte=0"`
	OtherCost       *float64 `json:"otherCost" binding:"omitempty,gte=0"`
	SubcontractCost *float64 `json:"subcontractCost" binding:"omitempty,gte=0"`
	OrderIndex      *int     `json:"orderIndex" binding:"omitempty,gte=0"`
}

func (r patchItemRequest) patch(id string) domain.ItemPatch {
	return domain.ItemPatch{
		ID:              id,
		Title:           r.Title,
		Description:     r.Description,
		Quantity:        r.Quantity,
		Unit:            r.Unit,
		MaterialCost:    r.MaterialCost,
		LaborCost:       r.LaborCost,
		EquipmentCost:   r.EquipmentCost,
		OtherCost:       r.OtherCost,
		SubcontractCost: r.SubcontractCost,
		OrderIndex:      r.OrderIndex,
	}
}

type moveRequest struct {
	Kind          string  `json:"kind" binding:"required,oneof=group item"`
	NodeID        string  `json:"nodeId" binding:"required"`
	ParentGroupID *string `json:"parentGroupId"`
	Index         int     `json:"index" binding:"gte=0"`
}

type shiftRequest struct {
	Kind   string `json:"kind" binding:"required,oneof=group item"`
	NodeID string `json:"nodeId" binding:"required"`
	Delta  int    `json:"delta" binding:"required,oneof=-1 1"`
}
