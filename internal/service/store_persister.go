package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/estimator/internal/db"
	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/alexanderramin/estimator/internal/repository"
	"github.com/alexanderramin/estimator/internal/session"
	"github.com/google/uuid"
)

type storePersister struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time
}

// NewStorePersister writes session changes to SQLite. Each change set is
// applied in one transaction together with the estimate's totals snapshot.
func NewStorePersister(uow db.UnitOfWork, observers ...UseCaseObserver) session.Persister {
	return &storePersister{
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (p *storePersister) Persist(ctx context.Context, req session.PersistRequest) (remap map[domain.NodeRef]string, err error) {
	startedAt := p.now()
	defer func() {
		p.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "persist-changes",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields: map[string]any{
				"estimate_id": req.EstimateID,
				"created":     len(req.Changes.Created),
				"updated":     len(req.Changes.Updated),
				"deleted":     len(req.Changes.Deleted),
			},
		})
	}()

	remap = make(map[domain.NodeRef]string)
	now := p.now()
	err = p.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txEstimates := repository.NewSQLiteEstimateRepo(tx)
		txGroups := repository.NewSQLiteGroupRepo(tx)
		txItems := repository.NewSQLiteItemRepo(tx)

		est, err := txEstimates.GetByID(ctx, req.EstimateID)
		if err != nil {
			return err
		}
		if est.IsLocked() {
			return fmt.Errorf("estimate %s: %w", est.DisplayID(), domain.ErrLocked)
		}

		w := rowWriter{estimateID: est.ID, remap: remap, now: now, groups: txGroups, items: txItems}
		for _, n := range req.Changes.Created {
			if err := w.upsert(ctx, n); err != nil {
				return err
			}
		}
		for _, n := range req.Changes.Updated {
			if err := w.upsert(ctx, n); err != nil {
				return err
			}
		}
		for _, ref := range req.Changes.Deleted {
			if estimate.IsPlaceholderID(ref.ID) {
				continue
			}
			if err := w.delete(ctx, ref); err != nil {
				return err
			}
		}
		return txEstimates.UpdateTotals(ctx, est.ID, req.Totals, now)
	})
	if err != nil {
		return nil, err
	}
	return remap, nil
}

// rowWriter turns tree nodes into rows, swapping placeholder ids for new
// UUIDs as it goes. Parents are written before their children, so a
// child's placeholder parent is always already in remap.
type rowWriter struct {
	estimateID string
	remap      map[domain.NodeRef]string
	now        time.Time
	groups     repository.GroupRepo
	items      repository.ItemRepo
}

func (w rowWriter) storedID(ref domain.NodeRef) string {
	if id, ok := w.remap[ref]; ok {
		return id
	}
	if estimate.IsPlaceholderID(ref.ID) {
		id := uuid.New().String()
		w.remap[ref] = id
		return id
	}
	return ref.ID
}

func (w rowWriter) storedParent(parent *string) *string {
	if parent == nil {
		return nil
	}
	id := w.storedID(domain.GroupRef(*parent))
	return &id
}

func (w rowWriter) upsert(ctx context.Context, n domain.Node) error {
	switch v := n.(type) {
	case *domain.GroupNode:
		rec := v.Record()
		rec.ID = w.storedID(v.Ref())
		rec.EstimateID = w.estimateID
		rec.ParentGroupID = w.storedParent(rec.ParentGroupID)
		w.stamp(&rec.CreatedAt, &rec.UpdatedAt)
		if err := domain.Validate(rec); err != nil {
			return fmt.Errorf("group %s: %w", rec.ID, err)
		}
		return w.groups.Upsert(ctx, rec)
	case *domain.ItemNode:
		rec := v.Record()
		rec.ID = w.storedID(v.Ref())
		rec.EstimateID = w.estimateID
		rec.GroupID = w.storedParent(rec.GroupID)
		w.stamp(&rec.CreatedAt, &rec.UpdatedAt)
		return w.items.Upsert(ctx, rec)
	}
	return fmt.Errorf("unsupported node %T", n)
}

func (w rowWriter) delete(ctx context.Context, ref domain.NodeRef) error {
	if ref.Kind == domain.NodeGroup {
		return w.groups.Delete(ctx, ref.ID)
	}
	return w.items.Delete(ctx, ref.ID)
}

func (w rowWriter) stamp(created, updated *time.Time) {
	if created.IsZero() {
		*created = w.now
	}
	*updated = w.now
}
