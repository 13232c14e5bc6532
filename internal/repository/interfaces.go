package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/estimator/internal/domain"
)

// EstimateFilter narrows EstimateRepo.List. Zero values match everything.
type EstimateFilter struct {
	CustomerID string
	Status     domain.EstimateStatus
}

type CustomerRepo interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context) ([]*domain.Customer, error)
	Update(ctx context.Context, c *domain.Customer) error
	Delete(ctx context.Context, id string) error
}

type EstimateRepo interface {
	Create(ctx context.Context, e *domain.Estimate) error
	GetByID(ctx context.Context, id string) (*domain.Estimate, error)
	List(ctx context.Context, filter EstimateFilter) ([]*domain.Estimate, error)
	Update(ctx context.Context, e *domain.Estimate) error
	UpdateTotals(ctx context.Context, id string, totals domain.Totals, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// GroupRepo stores estimate groups as flat rows.
type GroupRepo interface {
	Upsert(ctx context.Context, g domain.GroupRecord) error
	GetByID(ctx context.Context, id string) (*domain.GroupRecord, error)
	ListByEstimate(ctx context.Context, estimateID string) ([]domain.GroupRecord, error)
	Delete(ctx context.Context, id string) error
}

// ItemRepo stores estimate items as flat rows.
type ItemRepo interface {
	Upsert(ctx context.Context, it domain.ItemRecord) error
	GetByID(ctx context.Context, id string) (*domain.ItemRecord, error)
	ListByEstimate(ctx context.Context, estimateID string) ([]domain.ItemRecord, error)
	Delete(ctx context.Context, id string) error
}

type JobRepo interface {
	Create(ctx context.Context, j *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	GetByEstimate(ctx context.Context, estimateID string) (*domain.Job, error)
	List(ctx context.Context) ([]*domain.Job, error)
}
