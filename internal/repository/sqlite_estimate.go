package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/estimator/internal/db"
	"github.com/alexanderramin/estimator/internal/domain"
)

const estimateColumns = `id, customer_id, title, status, notes,
		subtotal, discount_amount, total_after_discount, tax_amount, final_total,
		created_at, updated_at`

// SQLiteEstimateRepo implements EstimateRepo using a SQLite database.
type SQLiteEstimateRepo struct {
	db db.DBTX
}

// NewSQLiteEstimateRepo creates a new SQLiteEstimateRepo.
func NewSQLiteEstimateRepo(conn db.DBTX) *SQLiteEstimateRepo {
	return &SQLiteEstimateRepo{db: conn}
}

func (r *SQLiteEstimateRepo) Create(ctx context.Context, e *domain.Estimate) error {
	query := `INSERT INTO estimates (` + estimateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		nullableStrToValue(e.CustomerID),
		e.Title,
		string(e.Status),
		e.Notes,
		e.Totals.Subtotal,
		e.Totals.DiscountAmount,
		e.Totals.TotalAfterDiscount,
		e.Totals.TaxAmount,
		e.Totals.FinalTotal,
		formatTime(e.CreatedAt),
		formatTime(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting estimate: %w", err)
	}
	return nil
}

func (r *SQLiteEstimateRepo) GetByID(ctx context.Context, id string) (*domain.Estimate, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+estimateColumns+` FROM estimates WHERE id = ?`, id)
	e, err := scanEstimate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("estimate %s: %w", id, ErrNotFound)
	}
	return e, err
}

func (r *SQLiteEstimateRepo) List(ctx context.Context, filter EstimateFilter) ([]*domain.Estimate, error) {
	var where []string
	var args []any
	if filter.CustomerID != "" {
		where = append(where, "customer_id = ?")
		args = append(args, filter.CustomerID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	query := `SELECT ` + estimateColumns + ` FROM estimates`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing estimates: %w", err)
	}
	defer rows.Close()

	var estimates []*domain.Estimate
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, err
		}
		estimates = append(estimates, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating estimates: %w", err)
	}
	return estimates, nil
}

func (r *SQLiteEstimateRepo) Update(ctx context.Context, e *domain.Estimate) error {
	query := `UPDATE estimates SET customer_id = ?, title = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableStrToValue(e.CustomerID),
		e.Title,
		string(e.Status),
		e.Notes,
		formatTime(e.UpdatedAt),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating estimate: %w", err)
	}
	return requireAffected(res, "estimate", e.ID)
}

// UpdateTotals stores the totals snapshot computed from the estimate's tree.
func (r *SQLiteEstimateRepo) UpdateTotals(ctx context.Context, id string, t domain.Totals, at time.Time) error {
	query := `UPDATE estimates SET subtotal = ?, discount_amount = ?, total_after_discount = ?,
		tax_amount = ?, final_total = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.Subtotal, t.DiscountAmount, t.TotalAfterDiscount, t.TaxAmount, t.FinalTotal,
		formatTime(at), id,
	)
	if err != nil {
		return fmt.Errorf("updating estimate totals: %w", err)
	}
	return requireAffected(res, "estimate", id)
}

func (r *SQLiteEstimateRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM estimates WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting estimate: %w", err)
	}
	return nil
}

func scanEstimate(s scanner) (*domain.Estimate, error) {
	var e domain.Estimate
	var customerID sql.NullString
	var status, createdAt, updatedAt string
	err := s.Scan(
		&e.ID, &customerID, &e.Title, &status, &e.Notes,
		&e.Totals.Subtotal, &e.Totals.DiscountAmount, &e.Totals.TotalAfterDiscount,
		&e.Totals.TaxAmount, &e.Totals.FinalTotal,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning estimate: %w", err)
	}
	e.CustomerID = strFromNull(customerID)
	e.Status = domain.EstimateStatus(status)
	if e.CreatedAt, e.UpdatedAt, err = parseTimes(createdAt, updatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
