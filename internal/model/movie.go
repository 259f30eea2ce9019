package model

import "time"

// Movie represents a film that can be scheduled for screenings.
// Each movie has a URL-friendly slug derived from its title and
// may be shown in multiple buildings through its showtimes.  This
// struct corresponds to a row in the `movies` table.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – display title of the movie.
//  Slug        – unique URL-friendly identifier derived from the title.
//  Description – optional synopsis (nullable).
//  Image       – optional poster image path (nullable).
//  DurationMin – running time in minutes.
//  Genre       – optional genre label (nullable).
//  CreatedAt   – timestamp when the movie was created.
//  UpdatedAt   – timestamp of last update.
type Movie struct {
	ID          uint64    // movies.id
	Title       string    // movies.title
	Slug        string    // movies.slug
	Description *string   // movies.description (nullable)
	Image       *string   // movies.image (nullable)
	DurationMin uint32    // movies.duration_min
	Genre       *string   // movies.genre (nullable)
	CreatedAt   time.Time // movies.created_at
	UpdatedAt   time.Time // movies.updated_at
}
