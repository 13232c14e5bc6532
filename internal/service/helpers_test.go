package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/estimator/internal/db"
	"github.com/alexanderramin/estimator/internal/repository"
	"github.com/alexanderramin/estimator/internal/testutil"
)

type testRepos struct {
	db        *sql.DB
	uow       db.UnitOfWork
	customers *repository.SQLiteCustomerRepo
	estimates *repository.SQLiteEstimateRepo
	groups    *repository.SQLiteGroupRepo
	items     *repository.SQLiteItemRepo
	jobs      *repository.SQLiteJobRepo
}

func setupRepos(t *testing.T) testRepos {
	t.Helper()
	database := testutil.NewTestDB(t)
	return testRepos{
		db:        database,
		uow:       testutil.NewTestUoW(database),
		customers: repository.NewSQLiteCustomerRepo(database),
		estimates: repository.NewSQLiteEstimateRepo(database),
		groups:    repository.NewSQLiteGroupRepo(database),
		items:     repository.NewSQLiteItemRepo(database),
		jobs:      repository.NewSQLiteJobRepo(database),
	}
}

func (r testRepos) estimateRepos() EstimateRepos {
	return EstimateRepos{
		Estimates: r.estimates,
		Groups:    r.groups,
		Items:     r.items,
		Customers: r.customers,
	}
}

// recordingObserver keeps every use-case event it sees.
type recordingObserver struct {
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.events = append(o.events, e)
}
