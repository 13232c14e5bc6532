package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPersister struct {
	mu    sync.Mutex
	reqs  []PersistRequest
	err   error
	remap bool
}

func (p *recordingPersister) Persist(_ context.Context, req PersistRequest) (map[domain.NodeRef]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reqs = append(p.reqs, req)
	if p.err != nil {
		return nil, p.err
	}
	if !p.remap {
		return nil, nil
	}
	ids := make(map[domain.NodeRef]string)
	for _, n := range req.Changes.Created {
		if estimate.IsPlaceholderID(n.NodeID()) {
			ids[n.Ref()] = "db-" + strings.TrimPrefix(n.NodeID(), "temp-")
		}
	}
	return ids, nil
}

func TestSession_ObserversSeeConsistentSnapshots(t *testing.T) {
	ctx := context.Background()
	s := New()
	var snaps []Snapshot
	s.Subscribe(ObserverFunc(func(snap Snapshot) { snaps = append(snaps, snap) }))

	res := s.AddNode(ctx, &domain.GroupNode{ID: "g1", Name: "Kitchen"}, nil)
	require.Equal(t, estimate.Applied, res.Outcome)
	s.AddNode(ctx, &domain.ItemNode{ID: "i1", Quantity: 2, MaterialCost: domain.FloatPtr(10), LaborCost: domain.FloatPtr(5)}, domain.StrPtr("g1"))

	require.Len(t, snaps, 2)
	last := snaps[1]
	assert.Equal(t, "add_item", last.Action)
	assert.InDelta(t, 30.0, last.Totals.Subtotal, 1e-9)
	assert.Equal(t, estimate.ComputeTotals(last.Tree), last.Totals)
	assert.InDelta(t, 33.9, s.Totals().FinalTotal, 1e-9)
}

func TestSession_NoOpDoesNotNotify(t *testing.T) {
	s := New()
	calls := 0
	s.Subscribe(ObserverFunc(func(Snapshot) { calls++ }))

	res := s.DeleteNode(context.Background(), domain.ItemRef("ghost"))
	assert.Equal(t, estimate.NoOp, res.Outcome)
	assert.Zero(t, calls)
	assert.False(t, s.CanUndo())
}

func TestSession_Unsubscribe(t *testing.T) {
	s := New()
	calls := 0
	cancel := s.Subscribe(ObserverFunc(func(Snapshot) { calls++ }))
	s.AddNode(context.Background(), &domain.GroupNode{Name: "A"}, nil)
	cancel()
	s.AddNode(context.Background(), &domain.GroupNode{Name: "B"}, nil)
	assert.Equal(t, 1, calls)
}

func TestSession_LoadBuildsTreeAndResetsHistory(t *testing.T) {
	s := New(WithEstimateID("est-1"))
	s.AddNode(context.Background(), &domain.GroupNode{Name: "scratch"}, nil)
	require.True(t, s.CanUndo())

	warnings := s.Load(
		[]domain.GroupRecord{{ID: "g1", Name: "Kitchen", OrderIndex: domain.IntPtr(0)}},
		[]domain.ItemRecord{
			{ID: "i1", GroupID: domain.StrPtr("g1"), Quantity: 1, MaterialCost: domain.FloatPtr(4), OrderIndex: domain.IntPtr(0)},
			{ID: "i2", GroupID: domain.StrPtr("nope"), Quantity: 1, MaterialCost: domain.FloatPtr(1), OrderIndex: domain.IntPtr(0)},
		},
	)

	require.Len(t, warnings, 1)
	assert.Equal(t, domain.ItemRef("i2"), warnings[0].Ref)
	assert.Equal(t, warnings, s.Warnings())
	assert.Len(t, s.Tree(), 2)
	assert.InDelta(t, 5.0, s.Totals().Subtotal, 1e-9)
	assert.False(t, s.CanUndo())
}

func TestSession_Undo(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.AddNode(ctx, &domain.GroupNode{ID: "g1", Name: "Kitchen"}, nil)
	s.AddNode(ctx, &domain.ItemNode{ID: "i1", Quantity: 1, MaterialCost: domain.FloatPtr(10)}, domain.StrPtr("g1"))
	s.DeleteNode(ctx, domain.GroupRef("g1"))
	assert.Empty(t, s.Tree())

	res := s.Undo(ctx)
	require.Equal(t, estimate.Applied, res.Outcome)
	_, ok := estimate.FindItem(s.Tree(), "i1")
	assert.True(t, ok)
	assert.InDelta(t, 10.0, s.Totals().Subtotal, 1e-9)
	require.Len(t, res.Changes.Created, 2)

	s.Undo(ctx)
	s.Undo(ctx)
	assert.Empty(t, s.Tree())
	assert.Equal(t, estimate.NoOp, s.Undo(ctx).Outcome)
}

func TestSession_HistoryLimit(t *testing.T) {
	ctx := context.Background()
	s := New(WithHistoryLimit(2))
	for i := 0; i < 5; i++ {
		s.AddNode(ctx, &domain.GroupNode{Name: "G"}, nil)
	}
	s.Undo(ctx)
	s.Undo(ctx)
	assert.Equal(t, estimate.NoOp, s.Undo(ctx).Outcome)
	assert.Len(t, s.Tree(), 3)
}

func TestSession_PersistsChangesAndSwapsIDs(t *testing.T) {
	ctx := context.Background()
	p := &recordingPersister{remap: true}
	s := New(WithEstimateID("est-1"), WithPersister(p))
	var last Snapshot
	s.Subscribe(ObserverFunc(func(snap Snapshot) { last = snap }))

	res := s.AddNode(ctx, &domain.GroupNode{Name: "Kitchen"}, nil)

	require.Len(t, p.reqs, 1)
	assert.Equal(t, "est-1", p.reqs[0].EstimateID)
	require.Len(t, p.reqs[0].Changes.Created, 1)
	assert.True(t, strings.HasPrefix(res.Node.NodeID(), "db-group-"), res.Node.NodeID())
	assert.Equal(t, res.Node.NodeID(), s.Tree()[0].NodeID())
	assert.Equal(t, "replace_ids", last.Action)

	item := s.AddNode(ctx, &domain.ItemNode{Quantity: 1}, domain.StrPtr(res.Node.NodeID()))
	it := item.Node.(*domain.ItemNode)
	assert.Equal(t, res.Node.NodeID(), *it.GroupID)

	// History carries stored ids too, so undoing reaches rows by their real id.
	s.Undo(ctx)
	require.Len(t, p.reqs, 3)
	require.Len(t, p.reqs[2].Changes.Deleted, 1)
	assert.Equal(t, it.Ref(), p.reqs[2].Changes.Deleted[0])
}

func TestSession_PersistFailureKeepsLocalChange(t *testing.T) {
	p := &recordingPersister{err: errors.New("disk full")}
	s := New(WithEstimateID("est-1"), WithPersister(p))

	res := s.AddNode(context.Background(), &domain.GroupNode{Name: "Kitchen"}, nil)

	assert.Equal(t, estimate.Applied, res.Outcome)
	assert.Len(t, s.Tree(), 1)
	assert.True(t, estimate.IsPlaceholderID(s.Tree()[0].NodeID()))
	assert.ErrorContains(t, res.PersistErr, "disk full")
	assert.ErrorIs(t, res.PersistErr, p.err)
}

func TestSession_NoEstimateIDSkipsPersist(t *testing.T) {
	p := &recordingPersister{}
	s := New(WithPersister(p))
	res := s.AddNode(context.Background(), &domain.GroupNode{Name: "Kitchen"}, nil)
	assert.Empty(t, p.reqs)
	assert.NoError(t, res.PersistErr)
}

func TestSession_CompanionState(t *testing.T) {
	s := New()
	assert.Nil(t, s.SelectedCustomer())
	s.SetSelectedCustomer(&domain.Customer{ID: "c1", FirstName: "Ada"})
	s.SetCurrentEstimateID("est-9")

	c := s.SelectedCustomer()
	c.FirstName = "changed"
	assert.Equal(t, "Ada", s.SelectedCustomer().FirstName)
	assert.Equal(t, "est-9", s.CurrentEstimateID())
}

func TestSession_ConcurrentDispatch(t *testing.T) {
	ctx := context.Background()
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddNode(ctx, &domain.ItemNode{Quantity: 1, MaterialCost: domain.FloatPtr(1)}, nil)
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Len(t, snap.Tree, 20)
	assert.InDelta(t, 20.0, snap.Totals.Subtotal, 1e-9)
	for i, n := range snap.Tree {
		assert.Equal(t, i, n.Order())
	}
}
