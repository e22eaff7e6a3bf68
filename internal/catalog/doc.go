// Package catalog implements the normalized entity model and its
// transactional SQLite store.
//
// Entity identity is deterministic: Work, Release, Media, and Company IDs
// are pure functions of their natural keys (see internal/slug), so repeated
// imports of the same DAT resolve to the same rows. All multi-write
// operations run inside a single transaction via Store.WithTx; the SQLite
// WAL plus foreign-key enforcement is the only cross-run safety net.
package catalog
