// Package ledger implements the content-addressed, append-only event log:
// a single SQLite-backed store of (schema, blob) pairs published into named
// runs, where each blob is addressed by its SHA-256 hash and each publish
// receives a dense, gap-free, monotonically increasing sequence number
// scoped to its run.
//
// A Ledger depends on schema validation only through the small Validator
// interface it declares here, not on any concrete schema backend —
// internal/schemaregistry.Registry satisfies it structurally.
//
// Publish is transactional and idempotent: publishing the same blob under
// the same schema to the same run twice returns OutcomeDuplicate rather
// than creating a second event or an error. Subscribe and Replay deliver
// events to a caller-supplied callback in seq order; Subscribe blocks for
// new events using a per-run notifier (see notifier.go) rather than
// polling, and self-terminates after an idle timeout with no waiters left
// hanging.
package ledger
