package middleware

// identity.go holds helpers shared across middleware files. The rate
// limiter keys buckets per user when a token is present and falls back
// to "guest" otherwise.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// userID returns a string form of the authenticated user's id from the
// context, or "guest" when the request is unauthenticated. JWTAuth
// stores the subject claim under "user_id" as whatever numeric type
// the JWT library decoded.
func userID(c echo.Context) string {
	v := c.Get("user_id")
	if v == nil {
		return "guest"
	}
	s := fmt.Sprint(v)
	if s == "" {
		return "guest"
	}
	return s
}
