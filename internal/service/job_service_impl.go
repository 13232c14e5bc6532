package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/estimator/internal/db"
	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/repository"
	"github.com/google/uuid"
)

type jobService struct {
	jobs     repository.JobRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewJobService(jobs repository.JobRepo, uow db.UnitOfWork, observers ...UseCaseObserver) JobService {
	return &jobService{jobs: jobs, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *jobService) ConvertFromEstimate(ctx context.Context, estimateID string) (job *domain.Job, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "convert-estimate",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"estimate_id": estimateID},
		})
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txEstimates := repository.NewSQLiteEstimateRepo(tx)
		txJobs := repository.NewSQLiteJobRepo(tx)

		est, err := txEstimates.GetByID(ctx, estimateID)
		if err != nil {
			return err
		}
		if est.Status != domain.EstimateAccepted {
			return fmt.Errorf("estimate %s is %s, only accepted estimates become jobs: %w",
				est.DisplayID(), est.Status, domain.ErrInvalidTransition)
		}

		now := time.Now().UTC()
		if err := est.Transition(domain.EstimateConverted, now); err != nil {
			return err
		}
		job = &domain.Job{
			ID:         uuid.New().String(),
			EstimateID: est.ID,
			Title:      est.Title,
			Status:     domain.JobPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := txJobs.Create(ctx, job); err != nil {
			return err
		}
		return txEstimates.Update(ctx, est)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) GetByEstimate(ctx context.Context, estimateID string) (*domain.Job, error) {
	return s.jobs.GetByEstimate(ctx, estimateID)
}

func (s *jobService) List(ctx context.Context) ([]*domain.Job, error) {
	return s.jobs.List(ctx)
}
