package models

import (
	"context"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// CredentialStore defines the persistence operations behind login, account creation and the watchlist.
type CredentialStore interface {
	FindUserByUsername(ctx context.Context, username string) (*User, error)   // exact, case-sensitive match
	CreateUser(ctx context.Context, username, password string) (*User, error) // fails with shared.ErrUserExists
	GetWatchlist(ctx context.Context, username string) (Watchlist, error)      // never nil for an existing user
	SetWatchlist(ctx context.Context, username string, movies Watchlist) error // whole-list overwrite
	AddToWatchlist(ctx context.Context, username string, movie Movie) (bool, error)
}
