// Package cli provides the interactive GiftKeeper command-line client.
//
// It wires configuration, the local store, the remote adapter, the sync
// engine and the domain services, and runs a REPL on top of them. The
// process works offline; when the remote is reachable and a user is signed
// in, the engine pushes queued changes and reconciles in the background.
//
// Key features:
//   - Register / Login / Logout (online with offline fallback)
//   - Holidays, recipients and gifts: add, edit, list, delete
//   - Budget summary per holiday
//   - Manual sync, sync status and cloud backup/restore
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
