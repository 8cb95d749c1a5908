// Package tasks runs watchlist operations that combine the credential store with the movie metadata service.
//
// # Operations
//
// [WatchlistEngine] exposes:
//
//  1. [WatchlistEngine.Add] : fetch full details and append them unless the movie is saved
//  2. [WatchlistEngine.Remove] : drop a saved movie
//  3. [WatchlistEngine.Export] : write the watchlist as JSON, CSV, Markdown or text
//  4. [WatchlistEngine.Refresh] : re-fetch every saved movie with a rate limited worker pool
//     and write the fresh payloads back in one update
//
// Every write goes through the store's UpdateWatchlist, so concurrent writers never lose entries.
//
// # Progress Reporting
//
// Long-running operations send [ProgressUpdate] values on an optional channel. Sends never block;
// updates are dropped when the channel is full.
package tasks
