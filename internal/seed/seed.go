// Package seed provisions demo data: venues, a movie catalogue with a
// showtime calendar and full seat grids, plus an admin and a test user.
// Every step is idempotent, so the seeder is safe to run at every boot.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/iliyamo/movie-ticket-reservation/internal/model"
	"github.com/iliyamo/movie-ticket-reservation/internal/repository"
	"github.com/iliyamo/movie-ticket-reservation/internal/utils"
)

// Seeder bundles the repositories needed to provision demo data.
type Seeder struct {
	DB        *sql.DB
	Users     *repository.UserRepo
	Movies    *repository.MovieRepo
	Buildings *repository.BuildingRepo
	Showtimes *repository.ShowtimeRepo
	Seats     *repository.SeatRepo

	BcryptCost int
}

// Run seeds buildings, movies and users in order.  Each stage skips
// itself when its data already exists.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedBuildings(ctx); err != nil {
		return err
	}
	if err := s.seedMovies(ctx); err != nil {
		return err
	}
	return s.seedUsers(ctx)
}

func (s *Seeder) seedBuildings(ctx context.Context) error {
	n, err := s.Buildings.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Println("seed: buildings already present")
		return nil
	}
	err = s.Buildings.CreateBulk(ctx, []model.Building{
		{Name: "Cinema One", Location: "Main Street 1", Capacity: 150},
		{Name: "Galaxy Theatre", Location: "Downtown Center", Capacity: 120},
		{Name: "Grand Hall", Location: "Boulevard 88", Capacity: 200},
	})
	if err == nil {
		log.Println("seed: buildings created")
	}
	return err
}

type movieSpec struct {
	title       string
	genre       string
	durationMin uint32
	description string
}

var catalogue = []movieSpec{
	{"Oppenheimer", "Drama / History", 180, "The story of J. Robert Oppenheimer and the atomic bomb."},
	{"Interstellar", "Sci-Fi / Adventure", 169, "Explorers travel through a wormhole in space to save humanity."},
	{"The Dark Knight", "Action / Crime", 152, "Batman faces the Joker's chaos in Gotham."},
	{"The Godfather", "Crime / Drama", 175, "A crime dynasty is handed to a reluctant son."},
	{"Green Book", "Drama / Biography", 130, "A driver and pianist journey through 1960s America."},
	{"12 Years a Slave", "Biography / History", 134, "A free man is sold into slavery pre-Civil War."},
	{"Lincoln", "Biography / History", 150, "Lincoln fights to pass the 13th Amendment."},
	{"Django Unchained", "Western / Action", 165, "A freed slave and bounty hunter rescue his wife."},
	{"Inglourious Basterds", "War / Adventure", 153, "Jewish soldiers plot to kill Nazis in France."},
	{"Munich", "Thriller / Drama", 164, "Mossad agents avenge the 1972 Olympics massacre."},
	{"Charlie and the Chocolate Factory", "Family / Fantasy", 115, "Charlie visits a magical chocolate factory."},
	{"Edward Scissorhands", "Fantasy / Romance", 105, "A man with scissor hands tries to fit in."},
}

var timeSlots = []string{"12:00", "14:30", "17:00", "19:15", "21:45"}

// seedMovies creates the catalogue and, for every movie and venue, a
// calendar of showtimes with a full seat grid each.  Showtimes closer
// than 24 hours are skipped so freshly seeded screenings are always
// bookable and cancellable.
func (s *Seeder) seedMovies(ctx context.Context) error {
	var n int
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		log.Println("seed: movies already present")
		return nil
	}

	buildings, err := s.Buildings.List(ctx)
	if err != nil {
		return err
	}

	dates := calendarDates(time.Now().UTC(), 56, 3)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	cutoff := time.Now().UTC().Add(24 * time.Hour)

	for _, spec := range catalogue {
		tx, err := s.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		committed := false
		rollback := func() {
			if !committed {
				_ = tx.Rollback()
			}
		}

		m := model.Movie{
			Title:       spec.title,
			Slug:        utils.Slugify(spec.title),
			Description: ptr(spec.description),
			DurationMin: spec.durationMin,
			Genre:       ptr(spec.genre),
		}
		if err := s.Movies.CreateTx(ctx, tx, &m); err != nil {
			rollback()
			return err
		}

		for _, b := range buildings {
			for _, date := range dates {
				// Two random slots per calendar day per venue.
				slots := rng.Perm(len(timeSlots))[:2]
				for _, si := range slots {
					slot := timeSlots[si]
					start, perr := time.Parse("2006-01-02 15:04", date+" "+slot)
					if perr != nil || !start.After(cutoff) {
						continue
					}
					show := model.Showtime{
						MovieID:  m.ID,
						ShowDate: date,
						ShowTime: slot,
						Building: b.Name,
					}
					if err := s.Showtimes.CreateTx(ctx, tx, &show); err != nil {
						rollback()
						return err
					}
					if err := s.Seats.CreateBulkTx(ctx, tx, model.SeatGrid(show.ID)); err != nil {
						rollback()
						return err
					}
				}
			}
		}

		if err := tx.Commit(); err != nil {
			rollback()
			return err
		}
		committed = true
	}

	log.Printf("seed: %d movies created with showtimes and seats", len(catalogue))
	return nil
}

// seedUsers creates the admin and a regular test account when missing.
func (s *Seeder) seedUsers(ctx context.Context) error {
	accounts := []struct {
		name, email, password, role, phone string
	}{
		{"Admin", "admin@example.com", "admin123", "admin", "+31612345678"},
		{"Test User", "user@example.com", "user123", "user", "+31687654321"},
	}
	for _, a := range accounts {
		_, err := s.Users.GetByEmail(ctx, a.email)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		uid, err := s.Users.Create(ctx, a.name, a.email, a.password, a.role, s.BcryptCost)
		if err != nil {
			return err
		}
		if err := s.Users.UpdateProfile(ctx, uid, repository.ProfileUpdate{PhoneNumber: ptr(a.phone)}); err != nil {
			return err
		}
		log.Printf("seed: %s account created (%s)", a.role, a.email)
	}
	return nil
}

// calendarDates returns dates starting two days out, stepping every
// `step` days across the given horizon.
func calendarDates(from time.Time, horizonDays, step int) []string {
	var dates []string
	start := from.AddDate(0, 0, 2)
	end := from.AddDate(0, 0, horizonDays)
	for d := start; !d.After(end); d = d.AddDate(0, 0, step) {
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates
}

func ptr(s string) *string { return &s }
