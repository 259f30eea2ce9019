// Command seed provisions demo data: venues, the movie catalogue with
// showtimes and seat grids, and the admin/test accounts.  It is safe to
// run repeatedly.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/movie-ticket-reservation/internal/config"
	"github.com/iliyamo/movie-ticket-reservation/internal/database"
	"github.com/iliyamo/movie-ticket-reservation/internal/repository"
	"github.com/iliyamo/movie-ticket-reservation/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	s := &seed.Seeder{
		DB:         db,
		Users:      repository.NewUserRepo(db),
		Movies:     repository.NewMovieRepo(db),
		Buildings:  repository.NewBuildingRepo(db),
		Showtimes:  repository.NewShowtimeRepo(db),
		Seats:      repository.NewSeatRepo(db),
		BcryptCost: cfg.BcryptCost,
	}
	if err := s.Run(ctx); err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Println("seed: done")
}
