// Package models defines domain entities and persistence interfaces for the marquee movie watchlist service.
//
// The package contains two categories of types:
//
// 1. Catalog DTOs: structures decoded from the movie metadata API
//   - [Movie] : Movie details, kept verbatim so they can be embedded in a watchlist
//   - [MovieImages] : Posters, backdrops and logos for a movie
//   - [VideoList] : Trailers, teasers and clips for a movie
//   - [SearchResults] : A page of movies from search or recommendations
//
// 2. Persistent Entities: database-backed models
//   - [User] : Credentials plus the user's [Watchlist]
//
// [Watchlist] implements [database/sql/driver.Valuer] and [database/sql.Scanner] so it is
// stored as one JSON column. The [CredentialStore] interface describes the operations the
// route layer needs from persistence.
package models
