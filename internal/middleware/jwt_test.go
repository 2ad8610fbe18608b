package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/table-reservation/internal/utils"
)

func runJWT(t *testing.T, secret, authHeader string) (echo.Context, *httptest.ResponseRecorder, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := JWTAuth(secret)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	return c, rec, called
}

func TestJWTAuth(t *testing.T) {
	t.Run("valid token injects claims", func(t *testing.T) {
		at, err := utils.NewAccessToken("test-secret", 42, "coordinator", 15)
		require.NoError(t, err)

		c, rec, called := runJWT(t, "test-secret", "Bearer "+at.Token)
		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(42), c.Get("user_id"))
		assert.Equal(t, "coordinator", c.Get("role"))
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		_, rec, called := runJWT(t, "test-secret", "")
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret is unauthorized", func(t *testing.T) {
		at, err := utils.NewAccessToken("other-secret", 42, "student", 15)
		require.NoError(t, err)

		_, rec, called := runJWT(t, "test-secret", "Bearer "+at.Token)
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token is unauthorized", func(t *testing.T) {
		at, err := utils.NewAccessToken("test-secret", 42, "student", -5)
		require.NoError(t, err)

		_, rec, called := runJWT(t, "test-secret", "Bearer "+at.Token)
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	run := func(role interface{}, allowed ...string) (*httptest.ResponseRecorder, bool) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/v1/tables", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}

		called := false
		_ = RequireRole(allowed...)(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		})(c)
		return rec, called
	}

	t.Run("allowed role passes", func(t *testing.T) {
		rec, called := run("coordinator", "coordinator", "admin")
		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("disallowed role is forbidden", func(t *testing.T) {
		rec, called := run("student", "coordinator", "admin")
		assert.False(t, called)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing role is forbidden", func(t *testing.T) {
		rec, called := run(nil, "admin")
		assert.False(t, called)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
