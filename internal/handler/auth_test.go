package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusdesk/table-reservation/internal/config"
	"github.com/campusdesk/table-reservation/internal/repository"
	"github.com/campusdesk/table-reservation/internal/utils"
)

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     bcrypt.MinCost,
	}
	h := NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db))
	return h, mock, db
}

func newJSONCtx(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthRegister(t *testing.T) {
	t.Run("creates the account and returns a token pair", func(t *testing.T) {
		h, mock, db := newAuthHandler(t)
		defer db.Close()

		mock.ExpectExec(`INSERT INTO users`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO refresh_tokens`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		body := `{"name":"Dana","email":"Dana@Example.COM","password":"s3cret"}`
		c, rec := newJSONCtx(http.MethodPost, "/v1/auth/register", body)
		require.NoError(t, h.Register(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp authResp
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "dana@example.com", resp.User.Email)
		assert.Equal(t, "student", resp.User.Role)
		assert.NotEmpty(t, resp.Access.Token)
		assert.NotEmpty(t, resp.Refresh.Token)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		h, mock, db := newAuthHandler(t)
		defer db.Close()

		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'dana@example.com' for key 'users.email'"})

		body := `{"name":"Dana","email":"dana@example.com","password":"s3cret"}`
		c, rec := newJSONCtx(http.MethodPost, "/v1/auth/register", body)
		require.NoError(t, h.Register(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "email already exists")
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		h, _, db := newAuthHandler(t)
		defer db.Close()

		c, rec := newJSONCtx(http.MethodPost, "/v1/auth/register", `{"email":"x@y.z"}`)
		require.NoError(t, h.Register(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("admin role cannot be self-assigned", func(t *testing.T) {
		h, mock, db := newAuthHandler(t)
		defer db.Close()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs("Dana", "dana@example.com", sqlmock.AnyArg(), "student", nil).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO refresh_tokens`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		body := `{"name":"Dana","email":"dana@example.com","password":"s3cret","role":"admin"}`
		c, rec := newJSONCtx(http.MethodPost, "/v1/auth/register", body)
		require.NoError(t, h.Register(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp authResp
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "student", resp.User.Role)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func userRow(id uint64, email, passwordHash string, active bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "role", "club_id", "is_active",
		"created_at", "updated_at",
	}).AddRow(id, "Dana", email, passwordHash, "student", nil, active, now, now)
}

func TestAuthLogin(t *testing.T) {
	hash, err := utils.HashPassword("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("valid credentials return a token pair", func(t *testing.T) {
		h, mock, db := newAuthHandler(t)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM users WHERE email=\?`).
			WithArgs("dana@example.com").
			WillReturnRows(userRow(1, "dana@example.com", hash, true))
		mock.ExpectExec(`INSERT INTO refresh_tokens`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		c, rec := newJSONCtx(http.MethodPost, "/v1/auth/login", `{"email":"dana@example.com","password":"s3cret"}`)
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp authResp
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, uint64(1), resp.User.ID)
		assert.NotEmpty(t, resp.Access.Token)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		h, mock, db := newAuthHandler(t)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM users WHERE email=\?`).
			WithArgs("dana@example.com").
			WillReturnRows(userRow(1, "dana@example.com", hash, true))

		c, rec := newJSONCtx(http.MethodPost, "/v1/auth/login", `{"email":"dana@example.com","password":"nope"}`)
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("deactivated accounts cannot log in", func(t *testing.T) {
		h, mock, db := newAuthHandler(t)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM users WHERE email=\?`).
			WithArgs("dana@example.com").
			WillReturnRows(userRow(1, "dana@example.com", hash, false))

		c, rec := newJSONCtx(http.MethodPost, "/v1/auth/login", `{"email":"dana@example.com","password":"s3cret"}`)
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email is unauthorized, not 404", func(t *testing.T) {
		h, mock, db := newAuthHandler(t)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM users WHERE email=\?`).
			WithArgs("ghost@example.com").
			WillReturnError(sql.ErrNoRows)

		c, rec := newJSONCtx(http.MethodPost, "/v1/auth/login", `{"email":"ghost@example.com","password":"s3cret"}`)
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthRefresh(t *testing.T) {
	t.Run("unknown refresh token is unauthorized", func(t *testing.T) {
		h, mock, db := newAuthHandler(t)
		defer db.Close()

		mock.ExpectQuery(`SELECT user_id, expires_at, revoked_at FROM refresh_tokens`).
			WillReturnError(sql.ErrNoRows)

		c, rec := newJSONCtx(http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"bogus"}`)
		require.NoError(t, h.Refresh(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty body is a bad request", func(t *testing.T) {
		h, _, db := newAuthHandler(t)
		defer db.Close()

		c, rec := newJSONCtx(http.MethodPost, "/v1/auth/refresh", `{}`)
		require.NoError(t, h.Refresh(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
