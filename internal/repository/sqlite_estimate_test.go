package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	customers := NewSQLiteCustomerRepo(db)
	repo := NewSQLiteEstimateRepo(db)

	c := testutil.NewTestCustomer("Ada")
	require.NoError(t, customers.Create(ctx, c))
	e := testutil.NewTestEstimate("Kitchen reno", testutil.WithCustomerID(c.ID))
	e.Notes = "walk-through on Friday"
	require.NoError(t, repo.Create(ctx, e))

	fetched, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kitchen reno", fetched.Title)
	assert.Equal(t, domain.EstimateDraft, fetched.Status)
	require.NotNil(t, fetched.CustomerID)
	assert.Equal(t, c.ID, *fetched.CustomerID)
	assert.Equal(t, "walk-through on Friday", fetched.Notes)
}

func TestEstimateRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, err := NewSQLiteEstimateRepo(db).GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEstimateRepo_ListFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	customers := NewSQLiteCustomerRepo(db)
	repo := NewSQLiteEstimateRepo(db)

	c := testutil.NewTestCustomer("Ada")
	require.NoError(t, customers.Create(ctx, c))
	require.NoError(t, repo.Create(ctx, testutil.NewTestEstimate("A", testutil.WithCustomerID(c.ID))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestEstimate("B", testutil.WithEstimateStatus(domain.EstimateSent))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestEstimate("C")))

	all, err := repo.List(ctx, EstimateFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := repo.List(ctx, EstimateFilter{CustomerID: c.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "A", mine[0].Title)

	sent, err := repo.List(ctx, EstimateFilter{Status: domain.EstimateSent})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "B", sent[0].Title)
}

func TestEstimateRepo_UpdateStatusAndTotals(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteEstimateRepo(db)

	e := testutil.NewTestEstimate("Deck")
	require.NoError(t, repo.Create(ctx, e))

	e.Status = domain.EstimateSent
	require.NoError(t, repo.Update(ctx, e))
	require.NoError(t, repo.UpdateTotals(ctx, e.ID, domain.TotalsFromSubtotal(100), time.Now()))

	fetched, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EstimateSent, fetched.Status)
	assert.InDelta(t, 100.0, fetched.Totals.Subtotal, 1e-9)
	assert.InDelta(t, 13.0, fetched.Totals.TaxAmount, 1e-9)
	assert.InDelta(t, 113.0, fetched.Totals.FinalTotal, 1e-9)

	assert.ErrorIs(t, repo.UpdateTotals(ctx, "missing", domain.Totals{}, time.Now()), ErrNotFound)
}

func TestEstimateRepo_DeletingCustomerKeepsEstimate(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	customers := NewSQLiteCustomerRepo(db)
	repo := NewSQLiteEstimateRepo(db)

	c := testutil.NewTestCustomer("Ada")
	require.NoError(t, customers.Create(ctx, c))
	e := testutil.NewTestEstimate("Deck", testutil.WithCustomerID(c.ID))
	require.NoError(t, repo.Create(ctx, e))

	require.NoError(t, customers.Delete(ctx, c.ID))
	fetched, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.CustomerID)
}
