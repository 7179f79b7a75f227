// Package database provides SQLite-based storage for the run history.
//
// This package implements the RunDB, which stores one summary row per
// discover/archive run for later inspection by the stats command.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
