// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

// serveCommand starts the web application
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the home page in a browser once listening",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles first-run configuration and schema management
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Configuration and database setup",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write config.toml from the bundled template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// statusCommand checks a running server
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Check the health endpoint of a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "Base URL of the server (default: from server config)",
			},
		},
		Action: r.Status,
	}
}

// tmdbCommand handles metadata lookups
func tmdbCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tmdb",
		Usage: "Query The Movie Database",
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search movies by title",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags: append(jsonFlags(), &cli.IntFlag{
					Name:  "page",
					Usage: "Results page",
					Value: 1,
				}),
				Action: r.TMDBSearch,
			},
			{
				Name:      "movie",
				Usage:     "Show movie details",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     jsonFlags(),
				Action:    r.TMDBMovie,
			},
			{
				Name:      "images",
				Usage:     "List posters, backdrops and logos for a movie",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     jsonFlags(),
				Action:    r.TMDBImages,
			},
			{
				Name:      "videos",
				Usage:     "List trailers, teasers and clips for a movie",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     jsonFlags(),
				Action:    r.TMDBVideos,
			},
			{
				Name:      "recommendations",
				Aliases:   []string{"recs"},
				Usage:     "List recommendations for a movie",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     jsonFlags(),
				Action:    r.TMDBRecommendations,
			},
			{
				Name:      "get",
				Usage:     "Direct GET to the TMDB API, prints raw JSON",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.TMDBGet,
			},
		},
	}
}

// usersCommand manages accounts
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage accounts",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List accounts",
				Flags:  jsonFlags(),
				Action: r.UsersList,
			},
			{
				Name:      "create",
				Usage:     "Create an account",
				Arguments: []cli.Argument{&cli.StringArg{Name: "username"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "password",
						Usage:    "Account password",
						Required: true,
					},
				},
				Action: r.UsersCreate,
			},
		},
	}
}

// watchlistCommand handles watchlist operations
func watchlistCommand(r *Runner) *cli.Command {
	userArg := &cli.StringArg{Name: "username"}

	return &cli.Command{
		Name:    "watchlist",
		Aliases: []string{"wl"},
		Usage:   "Watchlist operations",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "List a user's saved movies",
				Arguments: []cli.Argument{userArg},
				Flags:     jsonFlags(),
				Action:    r.WatchlistShow,
			},
			{
				Name:      "add",
				Usage:     "Save a movie by TMDB id",
				Arguments: []cli.Argument{userArg, &cli.StringArg{Name: "id"}},
				Action:    r.WatchlistAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a saved movie by TMDB id",
				Arguments: []cli.Argument{userArg, &cli.StringArg{Name: "id"}},
				Action:    r.WatchlistRemove,
			},
			{
				Name:      "export",
				Usage:     "Export a watchlist as json, csv, markdown or text",
				Arguments: []cli.Argument{userArg},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown (md), text (txt)",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file, or directory for markdown (default: {username}_watchlist)",
					},
					&cli.BoolFlag{
						Name:  "posters",
						Usage: "Download posters into markdown exports",
					},
				},
				Action: r.WatchlistExport,
			},
			{
				Name:      "refresh",
				Usage:     "Re-fetch details for every saved movie",
				Arguments: []cli.Argument{userArg},
				Flags:     refreshFlags(),
				Action:    r.WatchlistRefresh,
			},
		},
	}
}

func refreshFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Concurrent detail requests (max 10)",
			Value: 4,
		},
		&cli.FloatFlag{
			Name:  "rate",
			Usage: "Detail requests per second",
			Value: 10,
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Usage:     "Browse a watchlist in the terminal",
		Arguments: []cli.Argument{&cli.StringArg{Name: "username"}},
		Flags:     refreshFlags(),
		Action:    r.TUI,
	}
}
