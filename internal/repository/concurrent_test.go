package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alexanderramin/estimator/internal/db"
	"github.com/alexanderramin/estimator/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConcurrentTestDB creates a file-backed SQLite database in a temp directory.
// Unlike :memory:, a file-backed DB shares state across all connections in the
// pool, which is required to test real concurrent access with WAL mode.
func newConcurrentTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "concurrent_test.db")
	database, err := db.OpenDB(dbPath)
	require.NoError(t, err, "failed to create concurrent test database")
	t.Cleanup(func() { database.Close() })
	return database
}

// TestConcurrentAccess_ReadDuringWrite verifies that listing an estimate's
// items while another goroutine writes neither fails nor sees torn rows.
func TestConcurrentAccess_ReadDuringWrite(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()

	e := seedEstimate(t, ctx, NewSQLiteEstimateRepo(database))
	items := NewSQLiteItemRepo(database)

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			it := testutil.NewTestItem(e.ID, fmt.Sprintf("Item-%d", i), testutil.WithItemOrder(i), testutil.WithCosts(1, 1))
			if err := items.Upsert(ctx, it); err != nil {
				errs <- fmt.Errorf("writer: %w", err)
				return
			}
		}
	}()

	for r := 0; r < 3; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				list, err := items.ListByEstimate(ctx, e.ID)
				if err != nil {
					errs <- fmt.Errorf("reader: %w", err)
					return
				}
				for _, it := range list {
					if it.MaterialCost == nil || *it.MaterialCost != 1 {
						errs <- fmt.Errorf("reader saw torn row %s", it.ID)
						return
					}
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	list, err := items.ListByEstimate(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, list, 20)
}
