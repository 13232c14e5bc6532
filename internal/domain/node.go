package domain

import "time"

// Node is a member of an estimate tree: either *GroupNode or *ItemNode.
//
// Nodes are treated as immutable values once they are part of a Tree. The
// With* methods return modified shallow copies and never touch the receiver.
type Node interface {
	NodeID() string
	Kind() NodeKind
	Ref() NodeRef
	Order() int
	ParentID() *string
	WithOrder(i int) Node
	WithParent(parentGroupID *string) Node
	WithID(id string) Node
}

// NodeRef identifies a node by kind and id. Group and item ids live in
// separate namespaces, so both parts are needed.
type NodeRef struct {
	Kind NodeKind
	ID   string
}

func GroupRef(id string) NodeRef { return NodeRef{Kind: NodeGroup, ID: id} }
func ItemRef(id string) NodeRef { return NodeRef{Kind: NodeItem, ID: id} }

func (r NodeRef) String() string { return string(r.Kind) + ":" + r.ID }

// Tree is the ordered root-level sequence of an estimate.
type Tree []Node

// GroupNode is a folder-like node. It carries no cost of its own.
type GroupNode struct {
	ID            string
	EstimateID    string
	Name          string
	OrderIndex    int
	ParentGroupID *string
	Children      []Node
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (g *GroupNode) NodeID() string { return g.ID }
func (g *GroupNode) Kind() NodeKind { return NodeGroup }
func (g *GroupNode) Ref() NodeRef { return GroupRef(g.ID) }
func (g *GroupNode) Order() int { return g.OrderIndex }
func (g *GroupNode) ParentID() *string { return g.ParentGroupID }
func (g *GroupNode) Clone() *GroupNode {
	c := *g
	return &c
}

func (g *GroupNode) WithID(id string) Node {
	c := g.Clone()
	c.ID = id
	return c
}

func (g *GroupNode) WithOrder(i int) Node {
	c := g.Clone()
	c.OrderIndex = i
	return c
}

func (g *GroupNode) WithParent(parentGroupID *string) Node {
	c := g.Clone()
	c.ParentGroupID = CopyStr(parentGroupID)
	return c
}

// WithChildren returns a copy of g holding children.
func (g *GroupNode) WithChildren(children []Node) *GroupNode {
	c := g.Clone()
	c.Children = children
	return c
}

// ItemNode is a priced line. Cost fields are per-unit amounts; CostPerUnit
// and LineCostTotal are derived and recomputed by the tree engine.
type ItemNode struct {
	ID              string
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
	OrderIndex      int

	CostPerUnit   float64
	LineCostTotal float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (it *ItemNode) NodeID() string { return it.ID }
func (it *ItemNode) Kind() NodeKind { return NodeItem }
func (it *ItemNode) Ref() NodeRef { return ItemRef(it.ID) }
func (it *ItemNode) Order() int { return it.OrderIndex }
func (it *ItemNode) ParentID() *string { return it.GroupID }
func (it *ItemNode) Clone() *ItemNode {
	c := *it
	return &c
}

func (it *ItemNode) WithID(id string) Node {
	c := it.Clone()
	c.ID = id
	return c
}

func (it *ItemNode) WithOrder(i int) Node {
	c := it.Clone()
	c.OrderIndex = i
	return c
}

func (it *ItemNode) WithParent(parentGroupID *string) Node {
	c := it.Clone()
	c.GroupID = CopyStr(parentGroupID)
	return c
}

// Mode reports whether the item came from the costbook.
func (it *ItemNode) Mode() ItemMode {
	if (it.ItemID != nil && *it.ItemID != "") || (it.CostbookItemID != nil && *it.CostbookItemID != "") {
		return ModeCatalog
	}
	return ModeCustom
}

// Label returns the title when set, falling back to the description.
func (it *ItemNode) Label() string {
	return CoalesceStr(it.Title, it.Description)
}

// Annotate returns a copy with CostPerUnit and LineCostTotal recomputed.
func (it *ItemNode) Annotate() *ItemNode {
	c := it.Clone()
	costs := ComputeItemCosts(c)
	c.CostPerUnit = costs.CostPerUnit
	c.LineCostTotal = costs.LineCostTotal
	return c
}
