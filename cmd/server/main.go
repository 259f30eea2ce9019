package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/movie-ticket-reservation/internal/broadcast"
	"github.com/iliyamo/movie-ticket-reservation/internal/config"
	"github.com/iliyamo/movie-ticket-reservation/internal/database"
	"github.com/iliyamo/movie-ticket-reservation/internal/handler"
	"github.com/iliyamo/movie-ticket-reservation/internal/middleware"
	"github.com/iliyamo/movie-ticket-reservation/internal/queue"
	"github.com/iliyamo/movie-ticket-reservation/internal/repository"
	"github.com/iliyamo/movie-ticket-reservation/internal/router"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	schemaCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(schemaCtx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	// Redis is optional; without it rate limiting and caching degrade to
	// no-ops and every other feature keeps working.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	buildings := repository.NewBuildingRepo(db)
	showtimes := repository.NewShowtimeRepo(db)
	seats := repository.NewSeatRepo(db)
	reservations := repository.NewReservationRepo(db)

	events := broadcast.New()

	authH := handler.NewAuthHandler(cfg, users, tokens)
	userH := handler.NewUserHandler(cfg, users)
	movieH := handler.NewMovieHandler(movies, showtimes, seats, buildings)
	showtimeH := handler.NewShowtimeHandler(showtimes, seats)
	buildingH := handler.NewBuildingHandler(buildings)
	reservationH := handler.NewReservationHandler(reservations, showtimes, events)
	streamH := handler.NewStreamHandler(events)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORS())

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.WithBypass(middleware.NewResponseCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e, streamH)
	router.RegisterPublic(e, movieH, showtimeH, buildingH, reservationH, cache)
	router.RegisterAuth(e, authH, userH, cfg.JWTSecret)
	router.RegisterReservations(e, reservationH, cfg.JWTSecret, limiter)
	router.RegisterAdmin(e, movieH, userH, reservationH, cfg.JWTSecret)

	// Background consumer: drains reservation events from the broker into
	// the reservation log.  Runs its own reconnect loop forever.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
