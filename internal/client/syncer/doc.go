// Package syncer is the offline-first synchronisation engine.
//
// Local mutations are recorded in the sync queue by the domain services and
// pushed to the remote store by ProcessQueue. SyncAll runs a full
// reconciliation: push the queue, then pull every collection changed since
// the last successful pass and merge it into the local store with
// last-write-wins. Remote tombstones become local hard deletes.
//
// At most one pass runs at a time. A trigger that arrives while a pass is in
// flight is dropped; the next tick or transition starts the following one.
package syncer
