package service

import (
	"context"
	"io"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/importer"
	"github.com/alexanderramin/estimator/internal/repository"
	"github.com/alexanderramin/estimator/internal/session"
)

type CustomerService interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context) ([]*domain.Customer, error)
	Update(ctx context.Context, c *domain.Customer) error
	Delete(ctx context.Context, id string) error
}

type EstimateService interface {
	Create(ctx context.Context, e *domain.Estimate) error
	GetByID(ctx context.Context, id string) (*domain.Estimate, error)
	List(ctx context.Context, filter repository.EstimateFilter) ([]*domain.Estimate, error)
	// Open loads the estimate's tree into a new editing session wired to
	// the store.
	Open(ctx context.Context, id string, opts ...session.Option) (*session.Session, error)
	SetStatus(ctx context.Context, id string, status domain.EstimateStatus) (*domain.Estimate, error)
	Delete(ctx context.Context, id string) error
}

type JobService interface {
	// ConvertFromEstimate turns an accepted estimate into a job and marks
	// the estimate converted.
	ConvertFromEstimate(ctx context.Context, estimateID string) (*domain.Job, error)
	GetByEstimate(ctx context.Context, estimateID string) (*domain.Job, error)
	List(ctx context.Context) ([]*domain.Job, error)
}

// ImportResult reports what an import created.
type ImportResult struct {
	Estimate   *domain.Estimate
	GroupCount int
	ItemCount  int
}

type ImportService interface {
	// ImportEstimate reads a JSON or YAML file and stores it as a new draft
	// estimate. Nothing is written unless the whole file imports.
	ImportEstimate(ctx context.Context, filePath string) (*ImportResult, error)
	ImportEstimateFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error)
	ExportEstimate(ctx context.Context, estimateID string) (*importer.ImportSchema, error)
	// ExportWorkbook writes the priced tree as an xlsx spreadsheet.
	ExportWorkbook(ctx context.Context, estimateID string, w io.Writer) error
}
