package handler

import (
	"database/sql"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/table-reservation/internal/repository"
)

func newTableHandler(t *testing.T) (*TableHandler, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewTableHandler(repository.NewTableRepo(db)), mock, db
}

func TestTableList(t *testing.T) {
	t.Run("rejects an unknown availability filter", func(t *testing.T) {
		h, _, db := newTableHandler(t)
		defer db.Close()

		c, rec := newBookingCtx(http.MethodGet, "/v1/tables?availability=busy", "", 0, "")
		require.NoError(t, h.List(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTableCreate(t *testing.T) {
	t.Run("availableSlots above totalSlots is rejected", func(t *testing.T) {
		h, _, db := newTableHandler(t)
		defer db.Close()

		body := `{"name":"Study Room A","capacity":8,"totalSlots":2,"availableSlots":5}`
		c, rec := newBookingCtx(http.MethodPost, "/v1/tables", body, 1, "coordinator")
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "availableSlots")
	})

	t.Run("requires name, capacity and totalSlots", func(t *testing.T) {
		h, _, db := newTableHandler(t)
		defer db.Close()

		c, rec := newBookingCtx(http.MethodPost, "/v1/tables", `{"name":"X"}`, 1, "coordinator")
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTableGet(t *testing.T) {
	t.Run("missing table is 404", func(t *testing.T) {
		h, mock, db := newTableHandler(t)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM tables WHERE id = \?`).
			WithArgs(uint64(99)).
			WillReturnError(sql.ErrNoRows)

		c, rec := newBookingCtx(http.MethodGet, "/v1/tables/99", "", 0, "")
		c.SetParamNames("id")
		c.SetParamValues("99")
		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-numeric id is a bad request", func(t *testing.T) {
		h, _, db := newTableHandler(t)
		defer db.Close()

		c, rec := newBookingCtx(http.MethodGet, "/v1/tables/abc", "", 0, "")
		c.SetParamNames("id")
		c.SetParamValues("abc")
		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
