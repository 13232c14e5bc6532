package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/estimator/internal/db"
	"github.com/alexanderramin/estimator/internal/domain"
)

// itemColumns is the canonical SELECT column list for estimate_items.
const itemColumns = `id, estimate_id, group_id, title, description, quantity, unit,
		material_cost, labor_cost, equipment_cost, other_cost, subcontract_cost,
		item_id, costbook_item_id, order_index, created_at, updated_at`

// SQLiteItemRepo implements ItemRepo using a SQLite database.
type SQLiteItemRepo struct {
	db db.DBTX
}

// NewSQLiteItemRepo creates a new SQLiteItemRepo.
func NewSQLiteItemRepo(conn db.DBTX) *SQLiteItemRepo {
	return &SQLiteItemRepo{db: conn}
}

// Upsert inserts the item or overwrites the stored row with the same id.
// Cost columns keep NULL for costs that were never entered.
func (r *SQLiteItemRepo) Upsert(ctx context.Context, it domain.ItemRecord) error {
	query := `INSERT INTO estimate_items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			group_id = excluded.group_id,
			title = excluded.title,
			description = excluded.description,
			quantity = excluded.quantity,
			unit = excluded.unit,
			material_cost = excluded.material_cost,
			labor_cost = excluded.labor_cost,
			equipment_cost = excluded.equipment_cost,
			other_cost = excluded.other_cost,
			subcontract_cost = excluded.subcontract_cost,
			item_id = excluded.item_id,
			costbook_item_id = excluded.costbook_item_id,
			order_index = excluded.order_index,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		it.ID,
		it.EstimateID,
		nullableStrToValue(it.GroupID),
		it.Title,
		it.Description,
		it.Quantity,
		it.Unit,
		nullableFloatToValue(it.MaterialCost),
		nullableFloatToValue(it.LaborCost),
		nullableFloatToValue(it.EquipmentCost),
		nullableFloatToValue(it.OtherCost),
		nullableFloatToValue(it.SubcontractCost),
		nullableStrToValue(it.ItemID),
		nullableStrToValue(it.CostbookItemID),
		nullableIntToValue(it.OrderIndex),
		formatTime(it.CreatedAt),
		formatTime(it.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting item %s: %w", it.ID, err)
	}
	return nil
}

func (r *SQLiteItemRepo) GetByID(ctx context.Context, id string) (*domain.ItemRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM estimate_items WHERE id = ?`, id)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &it, nil
}

func (r *SQLiteItemRepo) ListByEstimate(ctx context.Context, estimateID string) ([]domain.ItemRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM estimate_items WHERE estimate_id = ? ORDER BY order_index, created_at, id`,
		estimateID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []domain.ItemRecord
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return items, nil
}

func (r *SQLiteItemRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM estimate_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

func scanItem(s scanner) (domain.ItemRecord, error) {
	var it domain.ItemRecord
	var groupID, itemID, costbookID sql.NullString
	var material, labor, equipment, other, subcontract sql.NullFloat64
	var order sql.NullInt64
	var createdAt, updatedAt string
	err := s.Scan(
		&it.ID, &it.EstimateID, &groupID, &it.Title, &it.Description, &it.Quantity, &it.Unit,
		&material, &labor, &equipment, &other, &subcontract,
		&itemID, &costbookID, &order, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return it, err
		}
		return it, fmt.Errorf("scanning item: %w", err)
	}
	it.GroupID = strFromNull(groupID)
	it.MaterialCost = floatFromNull(material)
	it.LaborCost = floatFromNull(labor)
	it.EquipmentCost = floatFromNull(equipment)
	it.OtherCost = floatFromNull(other)
	it.SubcontractCost = floatFromNull(subcontract)
	it.ItemID = strFromNull(itemID)
	it.CostbookItemID = strFromNull(costbookID)
	it.OrderIndex = intFromNull(order)
	if it.CreatedAt, it.UpdatedAt, err = parseTimes(createdAt, updatedAt); err != nil {
		return it, err
	}
	return it, nil
}
