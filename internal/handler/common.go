package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/campusdesk/table-reservation/internal/model"
)

// getUserID extracts the authenticated user's id from the echo context.
// The JWT middleware stores the subject claim as whatever numeric type
// the token decoded to, so several representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole returns the role claim stored by the JWT middleware, or the
// empty string when absent.
func getRole(c echo.Context) string {
	if s, ok := c.Get("role").(string); ok {
		return s
	}
	return ""
}

// canManage reports whether the caller may mutate a booking owned by
// ownerID: owners always can, coordinators and admins can touch any.
func canManage(c echo.Context, callerID, ownerID uint64) bool {
	if callerID == ownerID {
		return true
	}
	role := getRole(c)
	return role == model.RoleCoordinator || role == model.RoleAdmin
}

// pathID parses the :id path parameter as a positive integer.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
