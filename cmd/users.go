package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

type userSummary struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"sequence"`
	Username  string    `json:"username"`
	Movies    int       `json:"movies"`
	MovieIDs  []int64   `json:"movie_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// UsersList prints every account with the size of its watchlist.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore()
	if err != nil {
		return err
	}

	users, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	summaries := make([]userSummary, len(users))
	for i, u := range users {
		summaries[i] = userSummary{
			ID:        u.ID(),
			Sequence:  u.Sequence(),
			Username:  u.Username(),
			Movies:    len(u.Watchlist()),
			MovieIDs:  u.Watchlist().IDs(),
			CreatedAt: u.CreatedAt(),
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(summaries, cmd.Bool("pretty"))
	}

	if len(summaries) == 0 {
		return r.writePlain("No accounts yet.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Accounts (%d)", len(summaries)))
	for _, s := range summaries {
		r.writePlain("%3d. %-24s %d movies\n", s.Sequence, s.Username, s.Movies)
	}
	return nil
}

// UsersCreate registers an account.
func (r *Runner) UsersCreate(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	password := cmd.String("password")
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", shared.ErrMissingArgument)
	}

	store, err := r.openStore()
	if err != nil {
		return err
	}

	user, err := store.CreateUser(ctx, username, password)
	if errors.Is(err, shared.ErrUserExists) {
		return fmt.Errorf("%w: %s", shared.ErrUserExists, username)
	} else if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Info("user created", "username", username, "sequence", user.Sequence())
	return r.writePlain("✓ Created account %s\n", user.Username())
}
