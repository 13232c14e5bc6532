package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/alexanderramin/estimator/internal/session"
	"github.com/alexanderramin/estimator/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSession(t *testing.T, r testRepos, est *domain.Estimate) *session.Session {
	t.Helper()
	svc := NewEstimateService(r.estimateRepos(), NewStorePersister(r.uow), nil)
	sess, err := svc.Open(context.Background(), est.ID)
	require.NoError(t, err)
	return sess
}

func TestStorePersister_SwapsPlaceholderIDs(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	est := testutil.NewTestEstimate("Kitchen")
	require.NoError(t, r.estimates.Create(ctx, est))
	sess := openTestSession(t, r, est)

	res := sess.AddNode(ctx, &domain.GroupNode{Name: "Demolition"}, nil)
	require.Equal(t, estimate.Applied, res.Outcome)
	groupID := res.Node.NodeID()
	assert.False(t, estimate.IsPlaceholderID(groupID), "stored id should replace the placeholder")

	res = sess.AddNode(ctx, &domain.ItemNode{Title: "Remove cabinets", Quantity: 2, LaborCost: domain.FloatPtr(50)}, &groupID)
	require.Equal(t, estimate.Applied, res.Outcome)
	itemID := res.Node.NodeID()
	assert.False(t, estimate.IsPlaceholderID(itemID))

	g, err := r.groups.GetByID(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, "Demolition", g.Name)
	assert.Equal(t, est.ID, g.EstimateID)
	assert.Nil(t, g.ParentGroupID)

	it, err := r.items.GetByID(ctx, itemID)
	require.NoError(t, err)
	require.NotNil(t, it.GroupID)
	assert.Equal(t, groupID, *it.GroupID)
	assert.Equal(t, 2.0, it.Quantity)

	stored, err := r.estimates.GetByID(ctx, est.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, stored.Totals.Subtotal, 1e-9)
	assert.InDelta(t, 113.0, stored.Totals.FinalTotal, 1e-9)
}

func TestStorePersister_ReopenRebuildsSameTree(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	est := testutil.NewTestEstimate("Bathroom")
	require.NoError(t, r.estimates.Create(ctx, est))
	sess := openTestSession(t, r, est)

	g1 := sess.AddNode(ctx, &domain.GroupNode{Name: "Rough-in"}, nil).Node.NodeID()
	g2 := sess.AddNode(ctx, &domain.GroupNode{Name: "Finish"}, nil).Node.NodeID()
	sess.AddNode(ctx, &domain.ItemNode{Title: "Pipe", MaterialCost: domain.FloatPtr(12)}, &g1)
	tile := sess.AddNode(ctx, &domain.ItemNode{Title: "Tile", Quantity: 10, MaterialCost: domain.FloatPtr(4)}, &g2).Node.NodeID()
	res := sess.MoveNode(ctx, domain.ItemRef(tile), &g1, 0)
	require.Equal(t, estimate.Applied, res.Outcome)
	res = sess.DeleteNode(ctx, domain.GroupRef(g2))
	require.Equal(t, estimate.Applied, res.Outcome)

	reopened := openTestSession(t, r, est)
	wantGroups, wantItems := estimate.Flatten(sess.Tree())
	gotGroups, gotItems := estimate.Flatten(reopened.Tree())
	require.Len(t, gotGroups, len(wantGroups))
	require.Len(t, gotItems, len(wantItems))
	for i := range wantItems {
		assert.Equal(t, wantItems[i].ID, gotItems[i].ID)
		assert.Equal(t, wantItems[i].OrderIndex, gotItems[i].OrderIndex)
		assert.Equal(t, wantItems[i].GroupID, gotItems[i].GroupID)
	}
	assert.Equal(t, sess.Totals(), reopened.Totals())
}

func TestStorePersister_UndoDeleteRestoresRows(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	est := testutil.NewTestEstimate("Deck")
	require.NoError(t, r.estimates.Create(ctx, est))
	sess := openTestSession(t, r, est)

	g := sess.AddNode(ctx, &domain.GroupNode{Name: "Framing"}, nil).Node.NodeID()
	it := sess.AddNode(ctx, &domain.ItemNode{Title: "Joists"}, &g).Node.NodeID()

	sess.DeleteNode(ctx, domain.GroupRef(g))
	_, err := r.items.GetByID(ctx, it)
	require.Error(t, err, "item should cascade with its group")

	res := sess.Undo(ctx)
	require.Equal(t, estimate.Applied, res.Outcome)

	restored, err := r.items.GetByID(ctx, it)
	require.NoError(t, err)
	assert.Equal(t, g, *restored.GroupID)
}

func TestStorePersister_RejectsLockedEstimate(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	est := testutil.NewTestEstimate("Garage", testutil.WithEstimateStatus(domain.EstimateConverted))
	require.NoError(t, r.estimates.Create(ctx, est))

	p := NewStorePersister(r.uow)
	node := &domain.GroupNode{ID: estimate.PlaceholderID(domain.NodeGroup), Name: "Slab"}
	_, err := p.Persist(ctx, session.PersistRequest{
		EstimateID: est.ID,
		Changes:    estimate.ChangeSet{Created: []domain.Node{node}},
	})
	require.ErrorIs(t, err, domain.ErrLocked)

	groups, err := r.groups.ListByEstimate(ctx, est.ID)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestStorePersister_SkipsPlaceholderDeletes(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	est := testutil.NewTestEstimate("Attic")
	require.NoError(t, r.estimates.Create(ctx, est))

	p := NewStorePersister(r.uow)
	remap, err := p.Persist(ctx, session.PersistRequest{
		EstimateID: est.ID,
		Changes: estimate.ChangeSet{
			Deleted: []domain.NodeRef{domain.ItemRef(estimate.PlaceholderID(domain.NodeItem))},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, remap)
}

func TestStorePersister_RollbackOnItemWriteFailure(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	est := testutil.NewTestEstimate("Basement")
	require.NoError(t, r.estimates.Create(ctx, est))

	// ExecContext #1 = group upsert, #2 = item upsert.
	failUoW := &testutil.FailOnNthExecUoW{
		DB:     r.db,
		FailOn: 2,
		Err:    fmt.Errorf("injected item write failure"),
	}
	obs := &recordingObserver{}
	p := NewStorePersister(failUoW, obs)

	groupID := estimate.PlaceholderID(domain.NodeGroup)
	group := &domain.GroupNode{ID: groupID, Name: "Walls"}
	item := &domain.ItemNode{ID: estimate.PlaceholderID(domain.NodeItem), GroupID: &groupID, Title: "Drywall", Quantity: 1}

	_, err := p.Persist(ctx, session.PersistRequest{
		EstimateID: est.ID,
		Changes:    estimate.ChangeSet{Created: []domain.Node{group, item}},
		Totals:     domain.TotalsFromSubtotal(10),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected item write failure")

	groups, err := r.groups.ListByEstimate(ctx, est.ID)
	require.NoError(t, err)
	assert.Empty(t, groups, "group insert should roll back")

	stored, err := r.estimates.GetByID(ctx, est.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Totals.Subtotal)

	require.Len(t, obs.events, 1)
	assert.Equal(t, "persist-changes", obs.events[0].Name)
	assert.False(t, obs.events[0].Success)
	assert.Equal(t, 2, obs.events[0].Fields["created"])
}

func TestStorePersister_FailureKeepsSessionChange(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	est := testutil.NewTestEstimate("Porch")
	require.NoError(t, r.estimates.Create(ctx, est))

	failUoW := &testutil.FailOnNthExecUoW{DB: r.db, FailOn: 1, Err: fmt.Errorf("disk full")}
	svc := NewEstimateService(r.estimateRepos(), NewStorePersister(failUoW), nil)
	sess, err := svc.Open(ctx, est.ID)
	require.NoError(t, err)

	res := sess.AddNode(ctx, &domain.ItemNode{Title: "Railing", MaterialCost: domain.FloatPtr(80)}, nil)
	require.Equal(t, estimate.Applied, res.Outcome)
	assert.True(t, estimate.IsPlaceholderID(res.Node.NodeID()), "placeholder stays when nothing was stored")
	assert.InDelta(t, 80.0, sess.Totals().Subtotal, 1e-9)
	assert.ErrorContains(t, res.PersistErr, "disk full")
}
