package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/campusdesk/table-reservation/internal/model"
	"github.com/campusdesk/table-reservation/internal/utils"
)

// ErrUserNotFound is returned when a user lookup fails.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when registering an email that is already
// taken. It wraps ErrConflict.
var ErrEmailExists = fmt.Errorf("email already exists: %w", ErrConflict)

// UserRepo persists users. Passwords are bcrypt-hashed before they
// ever reach the database; the plaintext is never stored or logged.
type UserRepo struct{ DB *sql.DB }

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, name, email, password_hash, role, club_id, is_active, created_at, updated_at`

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	var clubID sql.NullInt64
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&clubID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if clubID.Valid {
		cid := uint64(clubID.Int64)
		u.ClubID = &cid
	}
	return &u, nil
}

// Create inserts a user with a freshly hashed password and returns its
// ID. Emails are normalized to lower case; a duplicate maps to
// ErrEmailExists via the MySQL 1062 duplicate-key error.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role string, clubID *uint64, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, club_id) VALUES (?,?,?,?,?)`,
		name, email, hash, role, clubID)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email. Returns
// ErrUserNotFound when absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE email=? LIMIT 1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetByID fetches a user by id. Returns ErrUserNotFound when absent.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE id=? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// List returns all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites a user's mutable profile fields (name, role, club
// affiliation). Email and password change through dedicated flows and
// are left untouched here.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	if _, err := r.GetByID(ctx, u.ID); err != nil {
		return err
	}
	const q = `UPDATE users SET name = ?, role = ?, club_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.DB.ExecContext(ctx, q, u.Name, u.Role, u.ClubID, u.ID); err != nil {
		return err
	}
	fresh, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = *fresh
	return nil
}

// Delete removes a user. Their bookings are kept; there is no cascade.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
