package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/table-reservation/internal/model"
)

func newMockBookingRepo(t *testing.T) (*BookingRepo, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewBookingRepo(db), mock, db
}

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "reference", "table_id", "table_name", "location", "date", "time_slot",
		"club_id", "club_name", "purpose", "status", "attendees", "user_id",
		"created_at", "updated_at",
	})
}

func addBookingRow(rows *sqlmock.Rows, id uint64, status string, date time.Time) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, "ref-"+status, 3, "Study Room A", "Library 2F", date, "14:00 - 16:00",
		2, "Chess Club", "weekly meetup", status, 6, 11, now, now)
}

func TestBookingRepoGetByID(t *testing.T) {
	t.Run("formats the date column as a calendar date", func(t *testing.T) {
		repo, mock, db := newMockBookingRepo(t)
		defer db.Close()

		date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT .+ FROM bookings WHERE id = \?`).
			WithArgs(uint64(5)).
			WillReturnRows(addBookingRow(bookingRows(), 5, model.StatusPending, date))

		b, err := repo.GetByID(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, "2026-09-14", b.Date)
		assert.Equal(t, "14:00 - 16:00", b.Time)
		assert.Equal(t, "Chess Club", b.ClubName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing booking maps to ErrBookingNotFound", func(t *testing.T) {
		repo, mock, db := newMockBookingRepo(t)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM bookings WHERE id = \?`).
			WithArgs(uint64(42)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), 42)
		assert.ErrorIs(t, err, ErrBookingNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepoListViews(t *testing.T) {
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	t.Run("upcoming excludes cancelled and past dates", func(t *testing.T) {
		repo, mock, db := newMockBookingRepo(t)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM bookings WHERE date >= \? AND status <> \? ORDER BY date, id`).
			WithArgs("2026-09-01", model.StatusCancelled).
			WillReturnRows(addBookingRow(bookingRows(), 1, model.StatusConfirmed, date))

		out, err := repo.ListUpcoming(context.Background(), "2026-09-01")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, model.StatusConfirmed, out[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("past uses a strict date comparison", func(t *testing.T) {
		repo, mock, db := newMockBookingRepo(t)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM bookings WHERE date < \? AND status <> \? ORDER BY date DESC, id`).
			WithArgs("2026-09-01", model.StatusCancelled).
			WillReturnRows(bookingRows())

		out, err := repo.ListPast(context.Background(), "2026-09-01")
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cancelled filters on status only", func(t *testing.T) {
		repo, mock, db := newMockBookingRepo(t)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM bookings WHERE status = \? ORDER BY id`).
			WithArgs(model.StatusCancelled).
			WillReturnRows(addBookingRow(bookingRows(), 9, model.StatusCancelled, date))

		out, err := repo.ListCancelled(context.Background())
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("by user binds the requester id", func(t *testing.T) {
		repo, mock, db := newMockBookingRepo(t)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM bookings WHERE user_id = \? ORDER BY id`).
			WithArgs(uint64(11)).
			WillReturnRows(addBookingRow(bookingRows(), 1, model.StatusPending, date))

		out, err := repo.ListByUser(context.Background(), 11)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, uint64(11), out[0].UserID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepoCreateTx(t *testing.T) {
	t.Run("inserts inside the transaction and reads the row back", func(t *testing.T) {
		repo, mock, db := newMockBookingRepo(t)
		defer db.Close()

		date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO bookings`).
			WithArgs("ref-pending", uint64(3), "Study Room A", "Library 2F", "2026-09-14",
				"14:00 - 16:00", uint64(2), "Chess Club", "weekly meetup",
				model.StatusPending, uint32(6), uint64(11)).
			WillReturnResult(sqlmock.NewResult(5, 1))
		mock.ExpectQuery(`SELECT .+ FROM bookings WHERE id = \?`).
			WithArgs(uint64(5)).
			WillReturnRows(addBookingRow(bookingRows(), 5, model.StatusPending, date))
		mock.ExpectCommit()

		tx, err := db.Begin()
		require.NoError(t, err)

		b := &model.Booking{
			Reference: "ref-pending", TableID: 3, TableName: "Study Room A",
			Location: "Library 2F", Date: "2026-09-14", Time: "14:00 - 16:00",
			ClubID: 2, ClubName: "Chess Club", Purpose: "weekly meetup",
			Status: model.StatusPending, Attendees: 6, UserID: 11,
		}
		require.NoError(t, repo.CreateTx(context.Background(), tx, b))
		require.NoError(t, tx.Commit())

		assert.Equal(t, uint64(5), b.ID)
		assert.False(t, b.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepoUpdateStatusTx(t *testing.T) {
	repo, mock, db := newMockBookingRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE bookings SET status = \?, updated_at = CURRENT_TIMESTAMP WHERE id = \?`).
		WithArgs(model.StatusCancelled, uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatusTx(context.Background(), tx, 5, model.StatusCancelled))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
