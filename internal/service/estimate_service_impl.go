package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/repository"
	"github.com/alexanderramin/estimator/internal/session"
	"github.com/google/uuid"
)

// EstimateRepos groups the repositories an estimate service reads from.
type EstimateRepos struct {
	Estimates repository.EstimateRepo
	Groups    repository.GroupRepo
	Items     repository.ItemRepo
	Customers repository.CustomerRepo
}

type estimateService struct {
	repos     EstimateRepos
	persister session.Persister
	logger    *slog.Logger
	observer  UseCaseObserver
}

// NewEstimateService wires sessions opened by Open to persister. A nil
// persister gives read-only sessions whose edits stay in memory.
func NewEstimateService(repos EstimateRepos, persister session.Persister, logger *slog.Logger, observers ...UseCaseObserver) EstimateService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &estimateService{
		repos:     repos,
		persister: persister,
		logger:    logger,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *estimateService) Create(ctx context.Context, e *domain.Estimate) error {
	if err := domain.Validate(e); err != nil {
		return err
	}
	if e.CustomerID != nil && *e.CustomerID != "" {
		if _, err := s.repos.Customers.GetByID(ctx, *e.CustomerID); err != nil {
			return fmt.Errorf("estimate customer: %w", err)
		}
	} else {
		e.CustomerID = nil
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Status == "" {
		e.Status = domain.EstimateDraft
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	return s.repos.Estimates.Create(ctx, e)
}

func (s *estimateService) GetByID(ctx context.Context, id string) (*domain.Estimate, error) {
	return s.repos.Estimates.GetByID(ctx, id)
}

func (s *estimateService) List(ctx context.Context, filter repository.EstimateFilter) ([]*domain.Estimate, error) {
	return s.repos.Estimates.List(ctx, filter)
}

func (s *estimateService) Open(ctx context.Context, id string, opts ...session.Option) (sess *session.Session, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"estimate_id": id}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "open-estimate",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	est, err := s.repos.Estimates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	groups, err := s.repos.Groups.ListByEstimate(ctx, est.ID)
	if err != nil {
		return nil, err
	}
	items, err := s.repos.Items.ListByEstimate(ctx, est.ID)
	if err != nil {
		return nil, err
	}

	var customer *domain.Customer
	if est.CustomerID != nil {
		customer, err = s.repos.Customers.GetByID(ctx, *est.CustomerID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		err = nil
	}

	base := []session.Option{
		session.WithEstimateID(est.ID),
		session.WithCustomer(customer),
		session.WithLogger(s.logger.With("estimate_id", est.ID)),
	}
	if s.persister != nil && !est.IsLocked() {
		base = append(base, session.WithPersister(s.persister))
	}
	sess = session.New(append(base, opts...)...)
	warnings := sess.Load(groups, items)

	fields["groups"] = len(groups)
	fields["items"] = len(items)
	fields["warnings"] = len(warnings)
	return sess, nil
}

func (s *estimateService) SetStatus(ctx context.Context, id string, status domain.EstimateStatus) (*domain.Estimate, error) {
	est, err := s.repos.Estimates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == domain.EstimateConverted {
		return nil, fmt.Errorf("use job conversion to mark an estimate converted: %w", domain.ErrInvalidTransition)
	}
	if err := est.Transition(status, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repos.Estimates.Update(ctx, est); err != nil {
		return nil, err
	}
	return est, nil
}

func (s *estimateService) Delete(ctx context.Context, id string) error {
	est, err := s.repos.Estimates.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if est.IsLocked() {
		return fmt.Errorf("estimate %s: %w", est.DisplayID(), domain.ErrLocked)
	}
	return s.repos.Estimates.Delete(ctx, id)
}
