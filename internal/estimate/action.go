package estimate

import "github.com/alexanderramin/estimator/internal/domain"

// Action is a single tree mutation, the unit a session dispatches and
// records for undo.
type Action interface {
	Name() string
	apply(tree domain.Tree) Result
}

// Apply runs action against tree. A nil action is a no-op.
func Apply(tree domain.Tree, action Action) Result {
	if action == nil {
		return unchanged(tree, NoOp, "no action")
	}
	return action.apply(tree)
}

type AddNode struct {
	Node          domain.Node
	ParentGroupID *string
}

func (a AddNode) Name() string { return "add_" + nodeKindName(a.Node) }
func (a AddNode) apply(tree domain.Tree) Result {
	return Add(tree, a.Node, a.ParentGroupID)
}

type UpdateNode struct {
	Patch domain.NodePatch
}

func (a UpdateNode) Name() string {
	patch, ok := derefPatch(a.Patch)
	if !ok {
		return "update"
	}
	return "update_" + string(patch.Target().Kind)
}
func (a UpdateNode) apply(tree domain.Tree) Result { return Update(tree, a.Patch) }

type MoveNode struct {
	Ref           domain.NodeRef
	ParentGroupID *string
	Index         int
}

func (a MoveNode) Name() string { return "move_" + string(a.Ref.Kind) }
func (a MoveNode) apply(tree domain.Tree) Result {
	return Move(tree, a.Ref, a.ParentGroupID, a.Index)
}

// ShiftNode swaps a node with its previous (Delta -1) or next (Delta 1)
// sibling.
type ShiftNode struct {
	Ref   domain.NodeRef
	Delta int
}

func (a ShiftNode) Name() string { return "shift_" + string(a.Ref.Kind) }
func (a ShiftNode) apply(tree domain.Tree) Result { return Shift(tree, a.Ref, a.Delta) }

type DeleteNode struct {
	Ref domain.NodeRef
}

func (a DeleteNode) Name() string { return "delete_" + string(a.Ref.Kind) }
func (a DeleteNode) apply(tree domain.Tree) Result { return Delete(tree, a.Ref) }

// ReplaceNodeIDs maps placeholder ids to their stored ids.
type ReplaceNodeIDs struct {
	IDs map[domain.NodeRef]string
}

func (a ReplaceNodeIDs) Name() string { return "replace_ids" }
func (a ReplaceNodeIDs) apply(tree domain.Tree) Result { return ReplaceIDs(tree, a.IDs) }

func nodeKindName(n domain.Node) string {
	if n == nil {
		return "node"
	}
	return string(n.Kind())
}
