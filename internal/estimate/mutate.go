package estimate

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/estimator/internal/domain"
)

// Add inserts node as the last child of parentGroupID, or at root when
// parentGroupID is nil. An unknown parent falls back to root level.
//
// The node gets order index max+1 of its new siblings, a placeholder id if
// it has none, and (for items) field defaults plus computed costs.
func Add(tree domain.Tree, node domain.Node, parentGroupID *string) Result {
	if node == nil {
		return unchanged(tree, NoOp, "nothing to add")
	}
	var reason string
	groupPath, ok := locateGroup(tree, parentGroupID)
	if !ok {
		reason = fmt.Sprintf("parent group %s not found, added at root", *parentGroupID)
		groupPath = path{}
		parentGroupID = nil
	}
	if node.NodeID() != "" {
		if _, exists := locate(tree, node.Ref()); exists {
			reason = joinReason(reason, fmt.Sprintf("id %s already in use, assigned a new one", node.NodeID()))
			node = node.WithID("")
		}
	}

	prepared := prepareNew(node, nextOrderIndex(listAt(tree, groupPath)), parentGroupID)
	newTree := rewriteList(tree, groupPath, func(list []domain.Node) []domain.Node {
		out := make([]domain.Node, len(list), len(list)+1)
		copy(out, list)
		out = append(out, prepared)
		sortByOrder(out)
		return out
	})

	var created []domain.Node
	walk([]domain.Node{prepared}, 0, func(n domain.Node, _ int) bool {
		created = append(created, n)
		return true
	})
	return Result{
		Tree:    newTree,
		Outcome: Applied,
		Reason:  reason,
		Node:    prepared,
		Changes: ChangeSet{Created: created},
	}
}

func prepareNew(node domain.Node, order int, parentGroupID *string) domain.Node {
	switch n := node.(type) {
	case *domain.ItemNode:
		it := n.Clone()
		if it.ID == "" {
			it.ID = PlaceholderID(domain.NodeItem)
		}
		it.OrderIndex = order
		it.GroupID = domain.CopyStr(parentGroupID)
		it.Quantity = domain.NormalizeQuantity(it.Quantity)
		for _, c := range []**float64{&it.MaterialCost, &it.LaborCost, &it.EquipmentCost, &it.OtherCost, &it.SubcontractCost} {
			*c = domain.FloatPtr(domain.NormalizeCost(*c))
		}
		return it.Annotate()
	case *domain.GroupNode:
		g := n.Clone()
		if g.ID == "" {
			g.ID = PlaceholderID(domain.NodeGroup)
		}
		g.OrderIndex = order
		g.ParentGroupID = domain.CopyStr(parentGroupID)
		if g.Children == nil {
			g.Children = []domain.Node{}
		}
		return g
	}
	return node
}

// Update merges patch over the node it targets. Item costs are recomputed
// from the merged values; group children are never touched. A patched
// order index repositions the node among its current siblings so the list
// stays dense. An unknown target is a no-op.
func Update(tree domain.Tree, patch domain.NodePatch) Result {
	patch, ok := derefPatch(patch)
	if !ok {
		return unchanged(tree, NoOp, "empty patch")
	}
	ref := patch.Target()
	p, ok := locate(tree, ref)
	if !ok {
		return unchanged(tree, NoOp, fmt.Sprintf("%s not found", ref))
	}
	current := nodeAt(tree, p)

	var merged domain.Node
	switch pt := patch.(type) {
	case domain.ItemPatch:
		merged = pt.Apply(current.(*domain.ItemNode))
	case domain.GroupPatch:
		merged = pt.Apply(current.(*domain.GroupNode))
	default:
		return unchanged(tree, NoOp, fmt.Sprintf("unsupported patch %T", patch))
	}

	wantOrder := merged.Order()
	merged = merged.WithOrder(current.Order())
	parentPath := p[:len(p)-1]
	idx := p[len(p)-1]
	newTree := rewriteList(tree, parentPath, func(list []domain.Node) []domain.Node {
		out := make([]domain.Node, len(list))
		copy(out, list)
		out[idx] = merged
		return out
	})

	res := Result{
		Tree:    newTree,
		Outcome: Applied,
		Node:    merged,
		Changes: ChangeSet{Updated: []domain.Node{merged}},
	}
	if wantOrder == current.Order() {
		return res
	}

	moved := Move(newTree, ref, parentGroupID(newTree, parentPath), wantOrder)
	if moved.Outcome != Applied {
		return res
	}
	moved.Changes = ChangeSet{Updated: mergeUpdated(moved.Tree, []domain.Node{merged}, moved.Changes.Updated)}
	return moved
}

// derefPatch unwraps pointer patches. It reports false for a nil patch,
// typed or not.
func derefPatch(patch domain.NodePatch) (domain.NodePatch, bool) {
	switch pt := patch.(type) {
	case nil:
		return nil, false
	case *domain.ItemPatch:
		if pt == nil {
			return nil, false
		}
		return *pt, true
	case *domain.GroupPatch:
		if pt == nil {
			return nil, false
		}
		return *pt, true
	}
	return patch, true
}

// Move detaches a node and reinserts it under newParentGroupID (nil for
// root) at newOrderIndex, clamped to the target list. Both the old and the
// new sibling lists are renumbered densely.
//
// The move is all-or-nothing: an unknown node is a no-op, and an unknown
// target parent or a target inside the moved group's own subtree rejects
// the move, returning the input tree untouched.
func Move(tree domain.Tree, ref domain.NodeRef, newParentGroupID *string, newOrderIndex int) Result {
	p, ok := locate(tree, ref)
	if !ok {
		return unchanged(tree, NoOp, fmt.Sprintf("%s not found", ref))
	}
	if newParentGroupID != nil {
		if ref.Kind == domain.NodeGroup && IsDescendant(tree, ref.ID, *newParentGroupID) {
			return unchanged(tree, Rejected, fmt.Sprintf("cannot move group %s into its own subtree", ref.ID))
		}
		if _, found := locate(tree, domain.GroupRef(*newParentGroupID)); !found {
			return unchanged(tree, Rejected, fmt.Sprintf("target group %s not found", *newParentGroupID))
		}
	}

	node := nodeAt(tree, p)
	oldParentPath := p[:len(p)-1]
	idx := p[len(p)-1]
	touched := make(map[domain.NodeRef]bool)

	stage := rewriteList(tree, oldParentPath, func(list []domain.Node) []domain.Node {
		rest := make([]domain.Node, 0, len(list)-1)
		rest = append(rest, list[:idx]...)
		rest = append(rest, list[idx+1:]...)
		return renumber(rest, touched)
	})

	// Paths may have shifted after the removal, so resolve the target again.
	targetPath, ok := locateGroup(stage, newParentGroupID)
	if !ok {
		return unchanged(tree, Rejected, "target group vanished during move")
	}
	moved := node.WithParent(newParentGroupID)
	final := rewriteList(stage, targetPath, func(list []domain.Node) []domain.Node {
		pos := clamp(newOrderIndex, 0, len(list))
		out := make([]domain.Node, 0, len(list)+1)
		out = append(out, list[:pos]...)
		out = append(out, moved)
		out = append(out, list[pos:]...)
		return renumber(out, touched)
	})

	// Only report nodes whose position really differs from the input tree.
	touched[ref] = true
	for r := range touched {
		before, _ := Find(tree, r)
		after, _ := Find(final, r)
		if before.Order() == after.Order() && domain.SameStr(before.ParentID(), after.ParentID()) {
			delete(touched, r)
		}
	}
	if len(touched) == 0 {
		return unchanged(tree, NoOp, fmt.Sprintf("%s already in place", ref))
	}
	finalNode, _ := Find(final, ref)
	return Result{
		Tree:    final,
		Outcome: Applied,
		Node:    finalNode,
		Changes: ChangeSet{Updated: resolveRefs(final, touched)},
	}
}

// Shift moves a node one position up (delta < 0) or down (delta > 0) among
// its siblings. Shifting past either end is a no-op.
func Shift(tree domain.Tree, ref domain.NodeRef, delta int) Result {
	p, ok := locate(tree, ref)
	if !ok {
		return unchanged(tree, NoOp, fmt.Sprintf("%s not found", ref))
	}
	parentPath := p[:len(p)-1]
	target := p[len(p)-1] + delta
	if delta == 0 || target < 0 || target >= len(listAt(tree, parentPath)) {
		return unchanged(tree, NoOp, fmt.Sprintf("%s cannot move further", ref))
	}
	return Move(tree, ref, parentGroupID(tree, parentPath), target)
}

// Delete removes a node; deleting a group removes its whole subtree. The
// entire tree is then renumbered densely. An unknown node is a no-op.
func Delete(tree domain.Tree, ref domain.NodeRef) Result {
	p, ok := locate(tree, ref)
	if !ok {
		return unchanged(tree, NoOp, fmt.Sprintf("%s not found", ref))
	}
	node := nodeAt(tree, p)
	var deleted []domain.NodeRef
	walk([]domain.Node{node}, 0, func(n domain.Node, _ int) bool {
		deleted = append(deleted, n.Ref())
		return true
	})

	idx := p[len(p)-1]
	stage := rewriteList(tree, p[:len(p)-1], func(list []domain.Node) []domain.Node {
		rest := make([]domain.Node, 0, len(list)-1)
		rest = append(rest, list[:idx]...)
		return append(rest, list[idx+1:]...)
	})
	touched := make(map[domain.NodeRef]bool)
	final := domain.Tree(renumberAll(stage, touched))

	return Result{
		Tree:    final,
		Outcome: Applied,
		Node:    node,
		Changes: ChangeSet{Updated: resolveRefs(final, touched), Deleted: deleted},
	}
}

// ReplaceIDs swaps placeholder ids for persisted ones and rewrites the
// parent references of children whose group was renamed. It records no
// changes: the new ids come from the store.
func ReplaceIDs(tree domain.Tree, ids map[domain.NodeRef]string) Result {
	if len(ids) == 0 {
		return unchanged(tree, NoOp, "no ids to replace")
	}
	replaced := 0
	var visit func(list []domain.Node) []domain.Node
	visit = func(list []domain.Node) []domain.Node {
		out := make([]domain.Node, len(list))
		for i, n := range list {
			cur := n
			if newID, ok := ids[n.Ref()]; ok && newID != "" {
				cur = cur.WithID(newID)
				replaced++
			}
			if parent := cur.ParentID(); parent != nil {
				if newParent, ok := ids[domain.GroupRef(*parent)]; ok && newParent != "" {
					cur = cur.WithParent(&newParent)
				}
			}
			if g, ok := cur.(*domain.GroupNode); ok {
				cur = g.WithChildren(visit(g.Children))
			}
			out[i] = cur
		}
		return out
	}
	final := domain.Tree(visit(tree))
	if replaced == 0 {
		return unchanged(tree, NoOp, "no matching ids")
	}
	return Result{Tree: final, Outcome: Applied}
}

func nextOrderIndex(list []domain.Node) int {
	next := 0
	for _, n := range list {
		if n.Order()+1 > next {
			next = n.Order() + 1
		}
	}
	return next
}

func sortByOrder(list []domain.Node) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Order() < list[j].Order() })
}

// renumber returns list with order indexes 0..n-1, copying only the nodes
// whose index changes and marking them in touched.
func renumber(list []domain.Node, touched map[domain.NodeRef]bool) []domain.Node {
	for i, n := range list {
		if n.Order() != i {
			list[i] = n.WithOrder(i)
			touched[n.Ref()] = true
		}
	}
	return list
}

// renumberAll renumbers every list in the tree. Groups whose subtree
// changed are copied; untouched subtrees are shared.
func renumberAll(list []domain.Node, touched map[domain.NodeRef]bool) []domain.Node {
	out := make([]domain.Node, len(list))
	for i, n := range list {
		cur := n
		if g, ok := n.(*domain.GroupNode); ok {
			kids := renumberAll(g.Children, touched)
			if !sameNodes(kids, g.Children) {
				cur = g.WithChildren(kids)
			}
		}
		if cur.Order() != i {
			cur = cur.WithOrder(i)
			touched[cur.Ref()] = true
		}
		out[i] = cur
	}
	return out
}

func sameNodes(a, b []domain.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// resolveRefs returns the current version of each touched node in tree
// order.
func resolveRefs(tree domain.Tree, touched map[domain.NodeRef]bool) []domain.Node {
	var out []domain.Node
	Walk(tree, func(n domain.Node, _ int) bool {
		if touched[n.Ref()] {
			out = append(out, n)
		}
		return true
	})
	return out
}

func mergeUpdated(tree domain.Tree, a, b []domain.Node) []domain.Node {
	touched := make(map[domain.NodeRef]bool, len(a)+len(b))
	for _, n := range a {
		touched[n.Ref()] = true
	}
	for _, n := range b {
		touched[n.Ref()] = true
	}
	return resolveRefs(tree, touched)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func joinReason(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}
