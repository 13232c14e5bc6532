package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/estimator/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteCustomerRepo(db)
	ctx := context.Background()

	c := testutil.NewTestCustomer("Ada",
		testutil.WithLastName("Lovelace"),
		testutil.WithEmail("ada@example.com"),
		testutil.WithAddress("12 Analytical Way", "Toronto", "M5V 2T6"),
	)
	require.NoError(t, repo.Create(ctx, c))

	fetched, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", fetched.FullName())
	assert.Equal(t, "ada@example.com", fetched.Email)
	assert.Equal(t, "Toronto", fetched.City)
	assert.Equal(t, "M5V 2T6", fetched.PostalCode)
}

func TestCustomerRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteCustomerRepo(db)

	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerRepo_ListSortedByName(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteCustomerRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestCustomer("Zed", testutil.WithLastName("Young"))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestCustomer("Amy", testutil.WithLastName("Brown"))))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Brown", list[0].LastName)
	assert.Equal(t, "Young", list[1].LastName)
}

func TestCustomerRepo_UpdateAndDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteCustomerRepo(db)
	ctx := context.Background()

	c := testutil.NewTestCustomer("Ada")
	require.NoError(t, repo.Create(ctx, c))

	c.Phone = "416-555-0100"
	require.NoError(t, repo.Update(ctx, c))
	fetched, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "416-555-0100", fetched.Phone)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Update(ctx, c), ErrNotFound)
}
