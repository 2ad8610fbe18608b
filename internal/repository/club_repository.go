package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/campusdesk/table-reservation/internal/model"
)

// ErrClubNotFound is returned when a club lookup fails.
var ErrClubNotFound = errors.New("club not found")

// ClubRepo provides plain CRUD over clubs. Clubs carry no lifecycle
// logic; bookings snapshot the club name at creation time.
type ClubRepo struct {
	db *sql.DB
}

// NewClubRepo returns a ClubRepo bound to the given database.
func NewClubRepo(db *sql.DB) *ClubRepo { return &ClubRepo{db: db} }

const clubCols = `id, name, created_at, updated_at`

func scanClub(row rowScanner) (*model.Club, error) {
	var c model.Club
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all clubs ordered by id.
func (r *ClubRepo) List(ctx context.Context) ([]*model.Club, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+clubCols+` FROM clubs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Club, 0)
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a single club or ErrClubNotFound.
func (r *ClubRepo) GetByID(ctx context.Context, id uint64) (*model.Club, error) {
	c, err := scanClub(r.db.QueryRowContext(ctx, `SELECT `+clubCols+` FROM clubs WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	return c, nil
}

// Create inserts a club and populates its ID and timestamps.
func (r *ClubRepo) Create(ctx context.Context, c *model.Club) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO clubs (name) VALUES (?)`, c.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	fresh, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *fresh
	return nil
}

// Update renames a club. Returns ErrClubNotFound when absent. Booking
// snapshots keep the old name.
func (r *ClubRepo) Update(ctx context.Context, c *model.Club) error {
	if _, err := r.GetByID(ctx, c.ID); err != nil {
		return err
	}
	const q = `UPDATE clubs SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, c.Name, c.ID); err != nil {
		return err
	}
	fresh, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *fresh
	return nil
}

// Delete removes a club without cascading to bookings.
func (r *ClubRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clubs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClubNotFound
	}
	return nil
}
