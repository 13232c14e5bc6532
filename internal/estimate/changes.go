package estimate

import "github.com/alexanderramin/estimator/internal/domain"

// Outcome classifies what a mutation did. None of the operations fail with
// an error; misuse ends in NoOp or Rejected with the tree unchanged.
type Outcome string

const (
	Applied  Outcome = "applied"
	NoOp     Outcome = "noop"
	Rejected Outcome = "rejected"
)

// ChangeSet lists the rows a mutation touched, so the caller can persist
// just those instead of resyncing the whole estimate.
type ChangeSet struct {
	Created []domain.Node
	Updated []domain.Node
	Deleted []domain.NodeRef
}

// Empty reports whether nothing changed.
func (c ChangeSet) Empty() bool {
	return len(c.Created) == 0 && len(c.Updated) == 0 && len(c.Deleted) == 0
}

// Merge appends other's entries to c.
func (c ChangeSet) Merge(other ChangeSet) ChangeSet {
	return ChangeSet{
		Created: append(append([]domain.Node(nil), c.Created...), other.Created...),
		Updated: append(append([]domain.Node(nil), c.Updated...), other.Updated...),
		Deleted: append(append([]domain.NodeRef(nil), c.Deleted...), other.Deleted...),
	}
}

// Result is what every mutation returns.
type Result struct {
	Tree    domain.Tree
	Outcome Outcome
	Reason  string
	// Node is the inserted, updated or moved node as it now sits in Tree.
	Node    domain.Node
	Changes ChangeSet

	// PersistErr is set by a session whose persister failed to store
	// Changes. The tree still holds the change.
	PersistErr error
}

func unchanged(tree domain.Tree, outcome Outcome, reason string) Result {
	return Result{Tree: tree, Outcome: outcome, Reason: reason}
}

// Diff compares two trees row by row. A node present in both trees is
// reported as updated when any persisted field or its position differs.
func Diff(before, after domain.Tree) ChangeSet {
	oldGroups, oldItems := Flatten(before)
	newGroups, newItems := Flatten(after)

	oldG := make(map[string]domain.GroupRecord, len(oldGroups))
	for _, g := range oldGroups {
		oldG[g.ID] = g
	}
	oldI := make(map[string]domain.ItemRecord, len(oldItems))
	for _, it := range oldItems {
		oldI[it.ID] = it
	}

	var cs ChangeSet
	seenG := make(map[string]bool, len(newGroups))
	for _, g := range newGroups {
		seenG[g.ID] = true
		node, _ := FindGroup(after, g.ID)
		prev, ok := oldG[g.ID]
		switch {
		case !ok:
			cs.Created = append(cs.Created, node)
		case !sameGroupRecord(prev, g):
			cs.Updated = append(cs.Updated, node)
		}
	}
	seenI := make(map[string]bool, len(newItems))
	for _, it := range newItems {
		seenI[it.ID] = true
		node, _ := FindItem(after, it.ID)
		prev, ok := oldI[it.ID]
		switch {
		case !ok:
			cs.Created = append(cs.Created, node)
		case !sameItemRecord(prev, it):
			cs.Updated = append(cs.Updated, node)
		}
	}
	for _, g := range oldGroups {
		if !seenG[g.ID] {
			cs.Deleted = append(cs.Deleted, domain.GroupRef(g.ID))
		}
	}
	for _, it := range oldItems {
		if !seenI[it.ID] {
			cs.Deleted = append(cs.Deleted, domain.ItemRef(it.ID))
		}
	}
	return cs
}

func sameGroupRecord(a, b domain.GroupRecord) bool {
	return a.Name == b.Name &&
		domain.IntFromPtrWithDefault(-1, a.OrderIndex) == domain.IntFromPtrWithDefault(-1, b.OrderIndex) &&
		domain.SameStr(a.ParentGroupID, b.ParentGroupID)
}

func sameItemRecord(a, b domain.ItemRecord) bool {
	return a.Title == b.Title &&
		a.Description == b.Description &&
		a.Quantity == b.Quantity &&
		a.Unit == b.Unit &&
		sameFloat(a.MaterialCost, b.MaterialCost) &&
		sameFloat(a.LaborCost, b.LaborCost) &&
		sameFloat(a.EquipmentCost, b.EquipmentCost) &&
		sameFloat(a.OtherCost, b.OtherCost) &&
		sameFloat(a.SubcontractCost, b.SubcontractCost) &&
		domain.SameStr(a.ItemID, b.ItemID) &&
		domain.SameStr(a.CostbookItemID, b.CostbookItemID) &&
		domain.IntFromPtrWithDefault(-1, a.OrderIndex) == domain.IntFromPtrWithDefault(-1, b.OrderIndex) &&
		domain.SameStr(a.GroupID, b.GroupID)
}

func sameFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
