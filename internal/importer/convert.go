package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/google/uuid"
)

// Converted is an imported estimate ready for persistence. Groups are
// ordered parents first and every sibling list is numbered densely.
type Converted struct {
	Estimate *domain.Estimate
	Groups   []domain.GroupRecord
	Items    []domain.ItemRecord
}

// Convert transforms a validated ImportSchema into domain objects ready for persistence.
// Call ValidateImportSchema first; Convert assumes the schema is valid.
func Convert(schema *ImportSchema) (*Converted, error) {
	now := time.Now().UTC()

	est := &domain.Estimate{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(schema.Estimate.Title),
		Status:    domain.EstimateDraft,
		Notes:     schema.Estimate.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if id := schema.Estimate.CustomerID; id != nil && strings.TrimSpace(*id) != "" {
		est.CustomerID = domain.StrPtr(strings.TrimSpace(*id))
	}

	refMap := make(map[string]string) // ref -> UUID

	groups := make([]domain.GroupRecord, 0, len(schema.Groups))
	for _, g := range schema.Groups {
		id := uuid.New().String()
		refMap[g.Ref] = id

		parent, err := resolveRef(refMap, g.ParentRef)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Ref, err)
		}
		groups = append(groups, domain.GroupRecord{
			ID:            id,
			EstimateID:    est.ID,
			Name:          strings.TrimSpace(g.Name),
			OrderIndex:    copyInt(g.Order),
			ParentGroupID: parent,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	items := make([]domain.ItemRecord, 0, len(schema.Items))
	for _, it := range schema.Items {
		group, err := resolveRef(refMap, it.GroupRef)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", domain.CoalesceStr(it.Ref, it.Title, it.Description), err)
		}
		items = append(items, domain.ItemRecord{
			ID:              uuid.New().String(),
			EstimateID:      est.ID,
			GroupID:         group,
			Title:           strings.TrimSpace(it.Title),
			Description:     strings.TrimSpace(it.Description),
			Quantity:        it.Quantity,
			Unit:            strings.TrimSpace(it.Unit),
			MaterialCost:    domain.CopyFloat(it.Costs.Material),
			LaborCost:       domain.CopyFloat(it.Costs.Labor),
			EquipmentCost:   domain.CopyFloat(it.Costs.Equipment),
			OtherCost:       domain.CopyFloat(it.Costs.Other),
			SubcontractCost: domain.CopyFloat(it.Costs.Subcontract),
			ItemID:          domain.CopyStr(it.ItemID),
			CostbookItemID:  domain.CopyStr(it.CostbookItemID),
			OrderIndex:      copyInt(it.Order),
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	tree := domain.Tree(renumber(estimate.BuildTree(groups, items)))
	est.Totals = estimate.ComputeTotals(tree)

	out := &Converted{Estimate: est}
	out.Groups, out.Items = estimate.Flatten(tree)
	return out, nil
}

// Export writes an estimate's tree back into the import layout. Refs are
// short sequential names local to the file.
func Export(e *domain.Estimate, tree domain.Tree) *ImportSchema {
	schema := &ImportSchema{
		Estimate: EstimateImport{
			Title:      e.Title,
			Notes:      e.Notes,
			CustomerID: domain.CopyStr(e.CustomerID),
		},
	}

	groups, items := estimate.Flatten(tree)
	refs := make(map[string]string, len(groups))
	refFor := func(id *string) *string {
		if id == nil {
			return nil
		}
		return domain.StrPtr(refs[*id])
	}

	for i, g := range groups {
		ref := fmt.Sprintf("g%d", i+1)
		refs[g.ID] = ref
		schema.Groups = append(schema.Groups, GroupImport{
			Ref:       ref,
			ParentRef: refFor(g.ParentGroupID),
			Name:      g.Name,
			Order:     copyInt(g.OrderIndex),
		})
	}
	for i, it := range items {
		schema.Items = append(schema.Items, ItemImport{
			Ref:         fmt.Sprintf("i%d", i+1),
			GroupRef:    refFor(it.GroupID),
			Title:       it.Title,
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			Costs: CostsImport{
				Material:    domain.CopyFloat(it.MaterialCost),
				Labor:       domain.CopyFloat(it.LaborCost),
				Equipment:   domain.CopyFloat(it.EquipmentCost),
				Other:       domain.CopyFloat(it.OtherCost),
				Subcontract: domain.CopyFloat(it.SubcontractCost),
			},
			ItemID:         domain.CopyStr(it.ItemID),
			CostbookItemID: domain.CopyStr(it.CostbookItemID),
			Order:          copyInt(it.OrderIndex),
		})
	}
	return schema
}

func resolveRef(refMap map[string]string, ref *string) (*string, error) {
	if ref == nil || *ref == "" {
		return nil, nil
	}
	id, ok := refMap[*ref]
	if !ok {
		return nil, fmt.Errorf("unknown group ref %q", *ref)
	}
	return &id, nil
}

// renumber gives every sibling list dense order indexes matching its
// current sequence.
func renumber(list []domain.Node) []domain.Node {
	out := make([]domain.Node, len(list))
	for i, n := range list {
		if g, ok := n.(*domain.GroupNode); ok {
			n = g.WithChildren(renumber(g.Children))
		}
		out[i] = n.WithOrder(i)
	}
	return out
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
