package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID             – primary key identifier of the user.
//  Name           – display name (optional).
//  Email          – unique email address.
//  PasswordHash   – bcrypt hashed password.
//  Role           – role name ("admin" or "user").
//  PhoneNumber    – contact phone number (nullable).
//  DateOfBirth    – birth date as "YYYY-MM-DD" (nullable).
//  FavoriteMovies – free-form list of favourite movies (nullable).
//  Bio            – short profile text (nullable).
//  IsActive       – whether the account is active.
//  CreatedAt      – timestamp of creation.
//  UpdatedAt      – timestamp of last update.
type User struct {
	ID             uint64    // users.id
	Name           *string   // users.name (nullable)
	Email          string    // users.email
	PasswordHash   string    // users.password_hash
	Role           string    // users.role
	PhoneNumber    *string   // users.phone_number (nullable)
	DateOfBirth    *string   // users.date_of_birth (nullable)
	FavoriteMovies *string   // users.favorite_movies (nullable)
	Bio            *string   // users.bio (nullable)
	IsActive       bool      // users.is_active
	CreatedAt      time.Time // users.created_at
	UpdatedAt      time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
