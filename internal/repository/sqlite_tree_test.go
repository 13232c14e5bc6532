package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEstimate(t *testing.T, ctx context.Context, conn *SQLiteEstimateRepo) *domain.Estimate {
	t.Helper()
	e := testutil.NewTestEstimate("Basement")
	require.NoError(t, conn.Create(ctx, e))
	return e
}

func TestGroupRepo_UpsertAndList(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	e := seedEstimate(t, ctx, NewSQLiteEstimateRepo(db))
	repo := NewSQLiteGroupRepo(db)

	parent := testutil.NewTestGroup(e.ID, "Framing")
	child := testutil.NewTestGroup(e.ID, "Walls", testutil.WithParentGroup(parent.ID), testutil.WithGroupOrder(1))
	require.NoError(t, repo.Upsert(ctx, parent))
	require.NoError(t, repo.Upsert(ctx, child))

	child.Name = "Interior walls"
	child.OrderIndex = domain.IntPtr(0)
	require.NoError(t, repo.Upsert(ctx, child))

	fetched, err := repo.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "Interior walls", fetched.Name)
	require.NotNil(t, fetched.ParentGroupID)
	assert.Equal(t, parent.ID, *fetched.ParentGroupID)
	assert.Equal(t, 0, *fetched.OrderIndex)

	list, err := repo.ListByEstimate(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestGroupRepo_NullOrderIndexRoundTrips(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	e := seedEstimate(t, ctx, NewSQLiteEstimateRepo(db))
	repo := NewSQLiteGroupRepo(db)

	g := testutil.NewTestGroup(e.ID, "Loose")
	g.OrderIndex = nil
	require.NoError(t, repo.Upsert(ctx, g))

	fetched, err := repo.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.OrderIndex)
}

func TestItemRepo_UpsertKeepsNullCosts(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	e := seedEstimate(t, ctx, NewSQLiteEstimateRepo(db))
	groups := NewSQLiteGroupRepo(db)
	repo := NewSQLiteItemRepo(db)

	g := testutil.NewTestGroup(e.ID, "Drywall")
	require.NoError(t, groups.Upsert(ctx, g))
	it := testutil.NewTestItem(e.ID, "1/2in board",
		testutil.InGroup(g.ID),
		testutil.WithQuantity(12),
		testutil.WithCosts(14.5, 0),
		testutil.WithCatalogItem("cb-42"),
	)
	require.NoError(t, repo.Upsert(ctx, it))

	fetched, err := repo.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.0, fetched.Quantity)
	require.NotNil(t, fetched.MaterialCost)
	assert.Equal(t, 14.5, *fetched.MaterialCost)
	assert.Nil(t, fetched.EquipmentCost)
	assert.Nil(t, fetched.SubcontractCost)
	require.NotNil(t, fetched.CostbookItemID)
	assert.Equal(t, "cb-42", *fetched.CostbookItemID)
	assert.Equal(t, domain.ModeCatalog, fetched.Node().Mode())

	it.Quantity = 20
	it.GroupID = nil
	require.NoError(t, repo.Upsert(ctx, it))
	fetched, err = repo.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, fetched.Quantity)
	assert.Nil(t, fetched.GroupID)
}

func TestItemRepo_ListByEstimateIsScoped(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	estimates := NewSQLiteEstimateRepo(db)
	e1 := seedEstimate(t, ctx, estimates)
	e2 := seedEstimate(t, ctx, estimates)
	repo := NewSQLiteItemRepo(db)

	require.NoError(t, repo.Upsert(ctx, testutil.NewTestItem(e1.ID, "a")))
	require.NoError(t, repo.Upsert(ctx, testutil.NewTestItem(e1.ID, "b", testutil.WithItemOrder(1))))
	require.NoError(t, repo.Upsert(ctx, testutil.NewTestItem(e2.ID, "c")))

	list, err := repo.ListByEstimate(ctx, e1.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Description)
	assert.Equal(t, "b", list[1].Description)
}

func TestItemRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, err := NewSQLiteItemRepo(db).GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = NewSQLiteGroupRepo(db).GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
