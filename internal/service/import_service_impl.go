package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alexanderramin/estimator/internal/db"
	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/alexanderramin/estimator/internal/importer"
	"github.com/alexanderramin/estimator/internal/repository"
)

type importService struct {
	repos    EstimateRepos
	uow      db.UnitOfWork
	observer UseCaseObserver
}

// NewImportService reads through repos and writes every import inside one
// uow transaction.
func NewImportService(repos EstimateRepos, uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{repos: repos, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) ImportEstimate(ctx context.Context, filePath string) (*ImportResult, error) {
	schema, err := importer.LoadImportSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.ImportEstimateFromSchema(ctx, schema)
}

func (s *importService) ImportEstimateFromSchema(ctx context.Context, schema *importer.ImportSchema) (result *ImportResult, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		fields := map[string]any{"groups": len(schema.Groups), "items": len(schema.Items)}
		if result != nil {
			fields["estimate_id"] = result.Estimate.ID
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "import-estimate",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	generated, err := importer.Convert(schema)
	if err != nil {
		return nil, fmt.Errorf("converting import schema: %w", err)
	}
	if err := domain.Validate(generated.Estimate); err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txCustomers := repository.NewSQLiteCustomerRepo(tx)
		txEstimates := repository.NewSQLiteEstimateRepo(tx)
		txGroups := repository.NewSQLiteGroupRepo(tx)
		txItems := repository.NewSQLiteItemRepo(tx)

		if id := generated.Estimate.CustomerID; id != nil {
			if _, err := txCustomers.GetByID(ctx, *id); err != nil {
				return fmt.Errorf("estimate customer: %w", err)
			}
		}
		if err := txEstimates.Create(ctx, generated.Estimate); err != nil {
			return fmt.Errorf("creating estimate: %w", err)
		}
		for _, g := range generated.Groups {
			if err := txGroups.Upsert(ctx, g); err != nil {
				return fmt.Errorf("creating group %q: %w", g.Name, err)
			}
		}
		for _, it := range generated.Items {
			if err := txItems.Upsert(ctx, it); err != nil {
				return fmt.Errorf("creating item %q: %w", domain.CoalesceStr(it.Title, it.Description), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		Estimate:   generated.Estimate,
		GroupCount: len(generated.Groups),
		ItemCount:  len(generated.Items),
	}, nil
}

func (s *importService) ExportEstimate(ctx context.Context, estimateID string) (*importer.ImportSchema, error) {
	est, tree, err := s.loadTree(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	return importer.Export(est, tree), nil
}

func (s *importService) ExportWorkbook(ctx context.Context, estimateID string, w io.Writer) error {
	est, tree, err := s.loadTree(ctx, estimateID)
	if err != nil {
		return err
	}
	return importer.WriteWorkbook(w, est, tree)
}

func (s *importService) loadTree(ctx context.Context, estimateID string) (*domain.Estimate, domain.Tree, error) {
	est, err := s.repos.Estimates.GetByID(ctx, estimateID)
	if err != nil {
		return nil, nil, err
	}
	groups, err := s.repos.Groups.ListByEstimate(ctx, est.ID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repos.Items.ListByEstimate(ctx, est.ID)
	if err != nil {
		return nil, nil, err
	}
	return est, estimate.BuildTree(groups, items), nil
}

// formatValidationErrors joins import validation errors into one message
// that still matches domain.ErrInvalid.
func formatValidationErrors(errs []error) error {
	var b strings.Builder
	fmt.Fprintf(&b, "import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		b.WriteString("\n  - ")
		b.WriteString(e.Error())
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalid, b.String())
}
