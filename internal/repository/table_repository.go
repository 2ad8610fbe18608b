package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/campusdesk/table-reservation/internal/model"
)

// ErrTableNotFound is returned when a table lookup fails.
var ErrTableNotFound = errors.New("table not found")

// ErrSlotBounds is returned when a table write would leave
// available_slots outside [0, total_slots]. The registry rejects such
// writes outright instead of trusting callers to keep the counter
// consistent.
var ErrSlotBounds = errors.New("available slots out of bounds")

// TableRepo provides CRUD operations for tables plus the slot-counter
// adjustment used by the booking lifecycle. Counter adjustments always
// run inside a caller-provided transaction together with the booking
// write so the two cannot diverge.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span the table counter and the booking record.
func (r *TableRepo) DB() *sql.DB { return r.db }

const tableCols = `id, name, capacity, features, location, available_slots, total_slots, created_at, updated_at`

type rowScanner interface{ Scan(dest ...any) error }

func scanTable(row rowScanner) (*model.Table, error) {
	var t model.Table
	var features []byte
	if err := row.Scan(&t.ID, &t.Name, &t.Capacity, &features, &t.Location,
		&t.AvailableSlots, &t.TotalSlots, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Features = []string{}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &t.Features); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

// List returns all tables ordered by id. The availability argument
// filters the result: "available" keeps tables with open slots, "full"
// keeps fully booked ones, and an empty string returns everything.
func (r *TableRepo) List(ctx context.Context, availability string) ([]*model.Table, error) {
	q := `SELECT ` + tableCols + ` FROM tables`
	switch availability {
	case "available":
		q += ` WHERE available_slots > 0`
	case "full":
		q += ` WHERE available_slots = 0`
	}
	q += ` ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a single table or ErrTableNotFound.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.Table, error) {
	const q = `SELECT ` + tableCols + ` FROM tables WHERE id = ?`
	t, err := scanTable(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return t, nil
}

// GetForUpdateTx loads a table inside tx with a row lock. The booking
// lifecycle uses it so that concurrent operations on the same table
// serialize on the counter.
func (r *TableRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Table, error) {
	const q = `SELECT ` + tableCols + ` FROM tables WHERE id = ? FOR UPDATE`
	t, err := scanTable(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return t, nil
}

// Create inserts a new table. TotalSlots and AvailableSlots are stored
// as given by the caller, after validating the slot invariant. The ID
// and timestamps are populated on the passed struct.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	if t.TotalSlots == 0 || t.AvailableSlots > t.TotalSlots {
		return ErrSlotBounds
	}
	features, err := json.Marshal(t.Features)
	if err != nil {
		return err
	}
	const q = `INSERT INTO tables (name, capacity, features, location, available_slots, total_slots)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.Capacity, features, t.Location, t.AvailableSlots, t.TotalSlots)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)

	// Read the row back so timestamps reflect what the database stored.
	fresh, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = *fresh
	return nil
}

// Update replaces all mutable fields of a table. The id is immutable
// and total_slots stays fixed; the slot invariant is validated against
// the stored total before writing. Returns ErrTableNotFound when the
// table does not exist.
func (r *TableRepo) Update(ctx context.Context, t *model.Table) error {
	existing, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	if t.AvailableSlots > existing.TotalSlots {
		return ErrSlotBounds
	}
	features, err := json.Marshal(t.Features)
	if err != nil {
		return err
	}
	const q = `UPDATE tables
	           SET name = ?, capacity = ?, features = ?, location = ?, available_slots = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, t.Name, t.Capacity, features, t.Location, t.AvailableSlots, t.ID); err != nil {
		return err
	}
	fresh, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = *fresh
	return nil
}

// Delete removes a table. Bookings referencing it keep their
// denormalized snapshots; there is no cascade.
func (r *TableRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tables WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTableNotFound
	}
	return nil
}

// AdjustSlotsTx applies a counter delta to a table inside tx, clamped
// into [0, total_slots] in a single statement. A decrement on a table
// that is already at zero leaves the counter at zero, and an increment
// never pushes it past total_slots.
func (r *TableRepo) AdjustSlotsTx(ctx context.Context, tx *sql.Tx, id uint64, delta int) error {
	const q = `UPDATE tables
	           SET available_slots = GREATEST(0, LEAST(CAST(total_slots AS SIGNED), CAST(available_slots AS SIGNED) + ?)),
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	// MySQL reports zero affected rows when the clamp leaves the value
	// unchanged (e.g. a decrement on an already-empty table), so
	// existence is the caller's concern via GetForUpdateTx.
	_, err := tx.ExecContext(ctx, q, delta, id)
	return err
}
