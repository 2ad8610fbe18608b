package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/campusdesk/table-reservation/internal/model"
)

// ErrBookingNotFound is returned when a booking lookup fails.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepo persists bookings. Mutations that touch a table's slot
// counter expose Tx variants so the handler can run the booking write
// and the counter adjustment inside one transaction; the repo never
// adjusts counters on its own.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for transaction management.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingCols = `id, reference, table_id, table_name, location, date, time_slot, club_id, club_name, purpose, status, attendees, user_id, created_at, updated_at`

func scanBooking(row rowScanner) (*model.Booking, error) {
	var b model.Booking
	var date time.Time
	if err := row.Scan(&b.ID, &b.Reference, &b.TableID, &b.TableName, &b.Location,
		&date, &b.Time, &b.ClubID, &b.ClubName, &b.Purpose, &b.Status,
		&b.Attendees, &b.UserID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Date = date.Format(model.DateLayout)
	return &b, nil
}

func (r *BookingRepo) queryMany(ctx context.Context, q string, args ...any) ([]*model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns all bookings ordered by id.
func (r *BookingRepo) List(ctx context.Context) ([]*model.Booking, error) {
	return r.queryMany(ctx, `SELECT `+bookingCols+` FROM bookings ORDER BY id`)
}

// ListByUser returns the bookings whose requester matches userID.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Booking, error) {
	return r.queryMany(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE user_id = ? ORDER BY id`, userID)
}

// ListUpcoming returns active bookings dated today or later. The today
// argument is a calendar date in model.DateLayout; time of day plays
// no part in the comparison.
func (r *BookingRepo) ListUpcoming(ctx context.Context, today string) ([]*model.Booking, error) {
	return r.queryMany(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE date >= ? AND status <> ? ORDER BY date, id`,
		today, model.StatusCancelled)
}

// ListPast returns active bookings dated strictly before today.
func (r *BookingRepo) ListPast(ctx context.Context, today string) ([]*model.Booking, error) {
	return r.queryMany(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE date < ? AND status <> ? ORDER BY date DESC, id`,
		today, model.StatusCancelled)
}

// ListCancelled returns bookings in cancelled status.
func (r *BookingRepo) ListCancelled(ctx context.Context) ([]*model.Booking, error) {
	return r.queryMany(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE status = ? ORDER BY id`, model.StatusCancelled)
}

// GetByID returns a single booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetForUpdateTx loads a booking inside tx with a row lock so a status
// transition cannot race with another operation on the same booking.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	b, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id = ? FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// CreateTx inserts a booking within the scope of an existing
// transaction and reads the stored row back into b. The caller commits
// or rolls back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (reference, table_id, table_name, location, date, time_slot, club_id, club_name, purpose, status, attendees, user_id)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.Reference, b.TableID, b.TableName, b.Location,
		b.Date, b.Time, b.ClubID, b.ClubName, b.Purpose, b.Status, b.Attendees, b.UserID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	fresh, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id = ?`, b.ID))
	if err != nil {
		return err
	}
	*b = *fresh
	return nil
}

// UpdateTx rewrites a booking's mutable fields inside tx. The table
// and club references and their snapshots are immutable after
// creation; only schedule, purpose, attendees and status change.
func (r *BookingRepo) UpdateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `UPDATE bookings
	           SET date = ?, time_slot = ?, purpose = ?, status = ?, attendees = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q, b.Date, b.Time, b.Purpose, b.Status, b.Attendees, b.ID); err != nil {
		return err
	}
	fresh, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id = ?`, b.ID))
	if err != nil {
		return err
	}
	*b = *fresh
	return nil
}

// UpdateStatusTx sets only the status column inside tx. Used by the
// dedicated cancel and confirm endpoints.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	const q = `UPDATE bookings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, id)
	return err
}

// DeleteTx removes a booking inside tx.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	return err
}
