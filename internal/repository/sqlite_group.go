package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/estimator/internal/db"
	"github.com/alexanderramin/estimator/internal/domain"
)

const groupColumns = `id, estimate_id, parent_group_id, name, order_index, created_at, updated_at`

// SQLiteGroupRepo implements GroupRepo using a SQLite database.
type SQLiteGroupRepo struct {
	db db.DBTX
}

// NewSQLiteGroupRepo creates a new SQLiteGroupRepo.
func NewSQLiteGroupRepo(conn db.DBTX) *SQLiteGroupRepo {
	return &SQLiteGroupRepo{db: conn}
}

// Upsert inserts the group or overwrites the stored row with the same id.
// created_at is kept from the first insert.
func (r *SQLiteGroupRepo) Upsert(ctx context.Context, g domain.GroupRecord) error {
	query := `INSERT INTO estimate_groups (` + groupColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			parent_group_id = excluded.parent_group_id,
			name = excluded.name,
			order_index = excluded.order_index,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		g.ID,
		g.EstimateID,
		nullableStrToValue(g.ParentGroupID),
		g.Name,
		nullableIntToValue(g.OrderIndex),
		formatTime(g.CreatedAt),
		formatTime(g.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting group %s: %w", g.ID, err)
	}
	return nil
}

func (r *SQLiteGroupRepo) GetByID(ctx context.Context, id string) (*domain.GroupRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM estimate_groups WHERE id = ?`, id)
	g, err := scanGroup(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("group %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &g, nil
}

// ListByEstimate returns the estimate's groups in storage order. Nesting is
// rebuilt by the tree builder.
func (r *SQLiteGroupRepo) ListByEstimate(ctx context.Context, estimateID string) ([]domain.GroupRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+groupColumns+` FROM estimate_groups WHERE estimate_id = ? ORDER BY order_index, created_at, id`,
		estimateID)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()

	var groups []domain.GroupRecord
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating groups: %w", err)
	}
	return groups, nil
}

// Delete removes the group; nested groups and items cascade.
func (r *SQLiteGroupRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM estimate_groups WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting group: %w", err)
	}
	return nil
}

func scanGroup(s scanner) (domain.GroupRecord, error) {
	var g domain.GroupRecord
	var parent sql.NullString
	var order sql.NullInt64
	var createdAt, updatedAt string
	err := s.Scan(&g.ID, &g.EstimateID, &parent, &g.Name, &order, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return g, err
		}
		return g, fmt.Errorf("scanning group: %w", err)
	}
	g.ParentGroupID = strFromNull(parent)
	g.OrderIndex = intFromNull(order)
	if g.CreatedAt, g.UpdatedAt, err = parseTimes(createdAt, updatedAt); err != nil {
		return g, err
	}
	return g, nil
}
