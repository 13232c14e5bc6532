// Package session holds the live editing state of one estimate: the tree,
// its totals and the companion selections the UI needs next to them.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
)

const defaultHistoryLimit = 50

// Snapshot is a consistent view of the session after a change. Tree and
// Totals always belong together.
type Snapshot struct {
	EstimateID string
	Tree       domain.Tree
	Totals     domain.Totals
	Action     string
	Outcome    estimate.Outcome
	Reason     string
}

// Observer receives a snapshot after every applied change. Observers run
// synchronously while the session is locked and must not call back into it.
type Observer interface {
	OnSnapshot(snap Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) OnSnapshot(snap Snapshot) { f(snap) }

// PersistRequest carries one applied change to the store.
type PersistRequest struct {
	EstimateID string
	Changes    estimate.ChangeSet
	Tree       domain.Tree
	Totals     domain.Totals
}

// Persister writes changes to a backing store. It returns the stored ids
// for any placeholder ids it saw.
type Persister interface {
	Persist(ctx context.Context, req PersistRequest) (map[domain.NodeRef]string, error)
}

// Session is safe for concurrent use. Mutations are serialized, and each
// one recomputes totals and notifies observers before it returns.
type Session struct {
	mu           sync.Mutex
	estimateID   string
	customer     *domain.Customer
	tree         domain.Tree
	totals       domain.Totals
	history      []domain.Tree
	historyLimit int
	warnings     []estimate.Warning
	observers    map[int]Observer
	nextObserver int
	persister    Persister
	logger       *slog.Logger
	closed       bool
}

type Option func(*Session)

// WithPersister writes every applied change through p.
func WithPersister(p Persister) Option {
	return func(s *Session) { s.persister = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHistoryLimit bounds the undo stack. Zero disables undo.
func WithHistoryLimit(n int) Option {
	return func(s *Session) {
		if n >= 0 {
			s.historyLimit = n
		}
	}
}

func WithEstimateID(id string) Option {
	return func(s *Session) { s.estimateID = id }
}

func WithCustomer(c *domain.Customer) Option {
	return func(s *Session) { s.customer = c }
}

// New returns a session holding an empty tree.
func New(opts ...Option) *Session {
	s := &Session{
		tree:         domain.Tree{},
		historyLimit: defaultHistoryLimit,
		observers:    make(map[int]Observer),
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.totals = estimate.ComputeTotals(s.tree)
	return s
}

func (s *Session) Tree() domain.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

func (s *Session) Totals() domain.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// Snapshot returns the current tree and totals as one consistent pair.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked("", estimate.Applied, "")
}

func (s *Session) SelectedCustomer() *domain.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.customer == nil {
		return nil
	}
	c := *s.customer
	return &c
}

func (s *Session) SetSelectedCustomer(c *domain.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customer = c
}

func (s *Session) CurrentEstimateID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.estimateID
}

func (s *Session) SetCurrentEstimateID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.estimateID = id
}

// CanUndo reports whether Undo has a tree to return to.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history) > 0
}

// Subscribe registers o and returns a function that removes it.
func (s *Session) Subscribe(o Observer) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = o
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// Load replaces the tree with one built from flat records and clears the
// undo history. Records whose parent cannot be resolved end up at root and
// are reported as warnings.
func (s *Session) Load(groups []domain.GroupRecord, items []domain.ItemRecord) []estimate.Warning {
	tree, warnings := estimate.BuildTreeWithWarnings(groups, items)
	for _, w := range warnings {
		s.logger.Warn("estimate tree integrity", "estimate_id", s.CurrentEstimateID(), "node", w.Ref.String(), "missing", w.Missing, "detail", w.Message)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.warnings = warnings
	s.commitLocked(tree, "load", estimate.Applied, "")
	return warnings
}

// Warnings returns the integrity problems found by the last Load.
func (s *Session) Warnings() []estimate.Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.warnings)
}

// Dispatch applies action to the current tree. When it applies, totals are
// recomputed, observers are notified and the change is handed to the
// persister. Persistence is best-effort: a failure is logged and reported
// on Result.PersistErr, and the in-memory change stands.
func (s *Session) Dispatch(ctx context.Context, action estimate.Action) estimate.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := actionName(action)
	res := estimate.Apply(s.tree, action)
	if res.Outcome != estimate.Applied {
		s.logger.Debug("action skipped", "action", name, "outcome", string(res.Outcome), "reason", res.Reason)
		return res
	}

	s.pushHistoryLocked(s.tree)
	s.commitLocked(res.Tree, name, res.Outcome, res.Reason)
	s.persistLocked(ctx, res.Changes, &res)
	return res
}

func (s *Session) AddNode(ctx context.Context, node domain.Node, parentGroupID *string) estimate.Result {
	return s.Dispatch(ctx, estimate.AddNode{Node: node, ParentGroupID: parentGroupID})
}

func (s *Session) UpdateNode(ctx context.Context, patch domain.NodePatch) estimate.Result {
	return s.Dispatch(ctx, estimate.UpdateNode{Patch: patch})
}

func (s *Session) MoveNode(ctx context.Context, ref domain.NodeRef, parentGroupID *string, index int) estimate.Result {
	return s.Dispatch(ctx, estimate.MoveNode{Ref: ref, ParentGroupID: parentGroupID, Index: index})
}

func (s *Session) DeleteNode(ctx context.Context, ref domain.NodeRef) estimate.Result {
	return s.Dispatch(ctx, estimate.DeleteNode{Ref: ref})
}

// Shift moves a node one slot up (delta -1) or down (delta 1).
func (s *Session) Shift(ctx context.Context, ref domain.NodeRef, delta int) estimate.Result {
	return s.Dispatch(ctx, estimate.ShiftNode{Ref: ref, Delta: delta})
}

// Undo restores the tree from before the last applied action and persists
// the difference.
func (s *Session) Undo(ctx context.Context) estimate.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return estimate.Result{Tree: s.tree, Outcome: estimate.NoOp, Reason: "nothing to undo"}
	}
	prev := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	res := estimate.Result{
		Tree:    prev,
		Outcome: estimate.Applied,
		Changes: estimate.Diff(s.tree, prev),
	}
	s.commitLocked(prev, "undo", res.Outcome, "")
	s.persistLocked(ctx, res.Changes, &res)
	return res
}

// Close drops all observers. A closed session still answers reads.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.observers = make(map[int]Observer)
}

func (s *Session) commitLocked(tree domain.Tree, action string, outcome estimate.Outcome, reason string) {
	s.tree = tree
	s.totals = estimate.ComputeTotals(tree)
	s.notifyLocked(s.snapshotLocked(action, outcome, reason))
}

func (s *Session) snapshotLocked(action string, outcome estimate.Outcome, reason string) Snapshot {
	return Snapshot{
		EstimateID: s.estimateID,
		Tree:       s.tree,
		Totals:     s.totals,
		Action:     action,
		Outcome:    outcome,
		Reason:     reason,
	}
}

func (s *Session) notifyLocked(snap Snapshot) {
	if s.closed {
		return
	}
	for _, id := range sortedKeys(s.observers) {
		s.observers[id].OnSnapshot(snap)
	}
}

func (s *Session) pushHistoryLocked(tree domain.Tree) {
	if s.historyLimit == 0 {
		return
	}
	s.history = append(s.history, tree)
	if over := len(s.history) - s.historyLimit; over > 0 {
		s.history = append([]domain.Tree(nil), s.history[over:]...)
	}
}

// persistLocked hands changes to the persister and swaps in stored ids for
// placeholders, in the live tree, the undo history and res.
func (s *Session) persistLocked(ctx context.Context, changes estimate.ChangeSet, res *estimate.Result) {
	if s.persister == nil || s.estimateID == "" || changes.Empty() {
		return
	}
	remap, err := s.persister.Persist(ctx, PersistRequest{
		EstimateID: s.estimateID,
		Changes:    changes,
		Tree:       s.tree,
		Totals:     s.totals,
	})
	if err != nil {
		s.logger.Warn("persist failed, keeping local change", "estimate_id", s.estimateID, "error", err)
		res.PersistErr = fmt.Errorf("saving estimate %s: %w", s.estimateID, err)
		return
	}
	if len(remap) == 0 {
		return
	}

	replaced := estimate.ReplaceIDs(s.tree, remap)
	if replaced.Outcome != estimate.Applied {
		return
	}
	for i, h := range s.history {
		s.history[i] = estimate.ReplaceIDs(h, remap).Tree
	}
	s.commitLocked(replaced.Tree, "replace_ids", estimate.Applied, "")

	res.Tree = s.tree
	if res.Node != nil {
		ref := res.Node.Ref()
		if id, ok := remap[ref]; ok {
			ref.ID = id
		}
		if n, ok := estimate.Find(s.tree, ref); ok {
			res.Node = n
		}
	}
}

func actionName(a estimate.Action) string {
	if a == nil {
		return "none"
	}
	return a.Name()
}

func sortedKeys(m map[int]Observer) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
