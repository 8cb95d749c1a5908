package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/marquee/internal/shared"
)

var _ Model = (*User)(nil)

// User is a credentials record with its saved watchlist.
//
// Passwords are stored and compared as plaintext.
type User struct {
	id        string
	sequence  int
	username  string
	password  string
	watchlist Watchlist
	version   int
	createdAt time.Time
	updatedAt time.Time
}

// NewUser creates a [User] with an empty watchlist and fresh timestamps.
func NewUser(sequence int, username, password string) *User {
	now := time.Now().UTC()
	return &User{
		sequence:  sequence,
		username:  username,
		password:  password,
		watchlist: Watchlist{},
		version:   1,
		createdAt: now,
		updatedAt: now,
	}
}

func (u *User) ID() string           { return u.id }
func (u *User) Sequence() int        { return u.sequence }
func (u *User) Username() string     { return u.username }
func (u *User) Password() string     { return u.password }
func (u *User) Watchlist() Watchlist { return u.watchlist }
func (u *User) Version() int         { return u.version }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

func (u *User) SetID(id string)              { u.id = id }
func (u *User) SetSequence(sequence int)     { u.sequence = sequence }
func (u *User) SetVersion(version int)       { u.version = version }
func (u *User) SetCreatedAt(t time.Time)     { u.createdAt = t }
func (u *User) SetUpdatedAt(t time.Time)     { u.updatedAt = t }
func (u *User) SetWatchlist(w Watchlist)     { u.watchlist = w.orEmpty() }
func (u *User) CheckPassword(pw string) bool { return u.password == pw }

// Validate reports a missing username or password.
func (u *User) Validate() error {
	if u.username == "" {
		return fmt.Errorf("%w: username is required", shared.ErrInvalidRecord)
	}
	if u.password == "" {
		return fmt.Errorf("%w: password is required", shared.ErrInvalidRecord)
	}
	return nil
}
