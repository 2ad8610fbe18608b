package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/campusdesk/table-reservation/internal/app"
	"github.com/campusdesk/table-reservation/internal/config"
	"github.com/campusdesk/table-reservation/internal/database"
	"github.com/campusdesk/table-reservation/internal/handler"
	"github.com/campusdesk/table-reservation/internal/queue"
	"github.com/campusdesk/table-reservation/internal/repository"
	"github.com/campusdesk/table-reservation/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment
	cfg := config.Load()

	logger := app.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; cache and limiter no-op

	tables := repository.NewTableRepo(db)
	clubs := repository.NewClubRepo(db)
	bookings := repository.NewBookingRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	tableH := handler.NewTableHandler(tables)
	clubH := handler.NewClubHandler(clubs)
	bookingH := handler.NewBookingHandler(bookings, tables, clubs, logger)
	userH := handler.NewUserHandler(cfg, users)

	// The consumer reconnects on its own; a missing broker must not
	// keep the API from serving.
	go func() {
		if err := queue.StartBookingConsumer(logger); err != nil {
			logger.Warn("booking consumer stopped", zap.Error(err))
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, rdb)
	router.RegisterCatalog(e, tableH, clubH, cfg.JWTSecret, rdb)
	router.RegisterBookings(e, bookingH, cfg.JWTSecret)
	router.RegisterUsers(e, userH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
