package database

import (
	"context"
	"database/sql"
)

// statements creates the full schema when it does not exist yet.  The
// unique key on reservation_seats (showtime_id, seat_id) is the hard
// guarantee that a seat belongs to at most one reservation per
// showtime; the application-level availability check only exists to
// turn that violation into a friendly 409 before the insert races.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(191) NULL,
		email VARCHAR(191) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(32) NOT NULL DEFAULT 'user',
		phone_number VARCHAR(32) NULL,
		date_of_birth VARCHAR(10) NULL,
		favorite_movies VARCHAR(512) NULL,
		bio TEXT NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_refresh_user (user_id),
		UNIQUE KEY uq_refresh_hash (token_hash),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(191) NOT NULL,
		slug VARCHAR(191) NOT NULL,
		description TEXT NULL,
		image VARCHAR(255) NULL,
		duration_min INT UNSIGNED NOT NULL,
		genre VARCHAR(128) NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_movies_slug (slug)
	)`,
	`CREATE TABLE IF NOT EXISTS buildings (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(191) NOT NULL,
		location VARCHAR(255) NOT NULL,
		capacity INT UNSIGNED NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS showtimes (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		movie_id BIGINT UNSIGNED NOT NULL,
		show_date CHAR(10) NOT NULL,
		show_time CHAR(5) NOT NULL,
		building VARCHAR(191) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_showtimes_movie (movie_id),
		CONSTRAINT fk_showtimes_movie FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS seats (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		showtime_id BIGINT UNSIGNED NOT NULL,
		row_label VARCHAR(4) NOT NULL,
		seat_number INT UNSIGNED NOT NULL,
		seat_class ENUM('first','second','regular') NOT NULL DEFAULT 'regular',
		price DECIMAL(8,2) NOT NULL DEFAULT 10,
		UNIQUE KEY uq_seats_position (showtime_id, row_label, seat_number),
		CONSTRAINT fk_seats_showtime FOREIGN KEY (showtime_id) REFERENCES showtimes(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		movie_id BIGINT UNSIGNED NOT NULL,
		showtime_id BIGINT UNSIGNED NOT NULL,
		building_id BIGINT UNSIGNED NOT NULL,
		seat_class VARCHAR(16) NOT NULL,
		total_price DECIMAL(8,2) NOT NULL DEFAULT 0,
		phone_number VARCHAR(32) NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_reservations_user (user_id),
		KEY idx_reservations_lookup (movie_id, showtime_id, building_id),
		CONSTRAINT fk_reservations_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_reservations_movie FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE,
		CONSTRAINT fk_reservations_showtime FOREIGN KEY (showtime_id) REFERENCES showtimes(id) ON DELETE CASCADE,
		CONSTRAINT fk_reservations_building FOREIGN KEY (building_id) REFERENCES buildings(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS reservation_seats (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		reservation_id BIGINT UNSIGNED NOT NULL,
		showtime_id BIGINT UNSIGNED NOT NULL,
		seat_id BIGINT UNSIGNED NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_reservation_seats_claim (showtime_id, seat_id),
		KEY idx_reservation_seats_res (reservation_id),
		CONSTRAINT fk_resseats_reservation FOREIGN KEY (reservation_id) REFERENCES reservations(id) ON DELETE CASCADE,
		CONSTRAINT fk_resseats_seat FOREIGN KEY (seat_id) REFERENCES seats(id) ON DELETE CASCADE
	)`,
}

// EnsureSchema creates any missing tables.  It is idempotent and runs at
// startup before the HTTP server begins accepting requests.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
