package model

import "time"

// Building represents a cinema venue where movies are screened.
// Showtimes carry the building name denormalized, while
// reservations reference buildings by ID.  This struct corresponds
// to a row in the `buildings` table.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – venue name.
//  Location  – street address or district.
//  Capacity  – total seating capacity of the venue.
//  CreatedAt – timestamp when the building was created.
//  UpdatedAt – timestamp of last update.
type Building struct {
	ID        uint64    // buildings.id
	Name      string    // buildings.name
	Location  string    // buildings.location
	Capacity  uint32    // buildings.capacity
	CreatedAt time.Time // buildings.created_at
	UpdatedAt time.Time // buildings.updated_at
}
