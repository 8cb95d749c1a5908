// Package repositories implements SQL persistence for user records and their watchlists.
//
// [UserRepository] runs against sqlite3, postgres or libsql connections. Queries are written with
// "?" placeholders and rebound for the driver in use.
//
// Watchlist writes use optimistic concurrency: every user row carries a version that is bumped on
// each write, and [UserRepository.UpdateWatchlist] only stores a result computed from the current
// version, re-reading on conflict.
//
// Sequence numbers provide stable, human-readable ordering (e.g., user #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
