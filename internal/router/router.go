// Package router wires handlers, auth middleware, the response cache
// and the rate limiter onto an Echo instance. Public browse routes
// (tables, clubs) take no JWT; everything that mutates state or
// exposes per-user data lives under the protected /v1 group.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/campusdesk/table-reservation/internal/config"
	"github.com/campusdesk/table-reservation/internal/handler"
	"github.com/campusdesk/table-reservation/internal/middleware"
	"github.com/campusdesk/table-reservation/internal/model"
)

// RegisterRoutes registers routes that carry no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session endpoints under /v1/auth. The
// rate limiter guards register and login; logout and me require a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, rdb *redis.Client) {
	g := e.Group("/v1/auth")
	g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.POST("/auth/logout", a.Logout)
	auth.GET("/me", a.Me)
}

// RegisterCatalog registers the table and club endpoints. Reads are
// public and cached; writes require a coordinator or admin token.
func RegisterCatalog(e *echo.Echo, t *handler.TableHandler, cl *handler.ClubHandler, jwtSecret string, rdb *redis.Client) {
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e.GET("/v1/tables", t.List, cache)
	e.GET("/v1/tables/:id", t.Get, cache)
	e.GET("/v1/clubs", cl.List, cache)
	e.GET("/v1/clubs/:id", cl.Get, cache)

	staff := e.Group("/v1")
	staff.Use(middleware.JWTAuth(jwtSecret))
	staff.Use(middleware.RequireRole(model.RoleCoordinator, model.RoleAdmin))
	staff.POST("/tables", t.Create)
	staff.PUT("/tables/:id", t.Update)
	staff.DELETE("/tables/:id", t.Delete)
	staff.POST("/clubs", cl.Create)
	staff.PUT("/clubs/:id", cl.Update)
	staff.DELETE("/clubs/:id", cl.Delete)
}

// RegisterBookings registers the booking lifecycle endpoints. Every
// route requires a valid access token; ownership checks happen in the
// handlers so students can manage their own bookings while staff can
// manage any.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleStudent, model.RoleCoordinator, model.RoleAdmin))

	g.GET("/bookings", b.List)
	g.GET("/bookings/:id", b.Get)
	g.POST("/bookings", b.Create)
	g.PUT("/bookings/:id", b.Update)
	g.PUT("/bookings/:id/cancel", b.Cancel)
	g.PUT("/bookings/:id/confirm", b.Confirm)
	g.DELETE("/bookings/:id", b.Delete)
	g.GET("/users/:id/bookings", b.ListByUser)
}

// RegisterUsers registers user administration. Listing, creating and
// deleting accounts is admin-only; get and update allow self-service
// and are checked in the handler.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, jwtSecret string) {
	g := e.Group("/v1/users")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.GET("/:id", u.Get)
	g.PUT("/:id", u.Update)

	admin := e.Group("/v1/users")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("", u.List)
	admin.POST("", u.Create)
	admin.DELETE("/:id", u.Delete)
}
