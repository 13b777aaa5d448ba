// Package client contains the client-side building blocks that touch
// storage.
//
// # Overview
//
// The package provides:
//  1. A backend contract (see the Client interface): account calls
//     (Register/GetSalt/Login), Ping, and the per-entity operations used by
//     the sync engine (Upsert, SoftDelete, FetchUpdated, FetchDeleted).
//  2. A PostgreSQL implementation (see PostgresClient) built on the pgx
//     database/sql driver. Entity calls run in a transaction that sets
//     request.jwt.claim.sub so the backend's row-level security applies.
//     Local camelCase field names are translated to snake_case columns by
//     the table in fieldmap.go.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations, Repositories)
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrLocalDataNotAvailable,
// ErrUserExists. Driver errors are translated by mapError.
package client
