// Package types defines the strongly-named value types shared by the ledger,
// the schema registry, and the reactor runtime: Blob, SchemaId, Sha256,
// Timestamp, EventHeader, EventRow, and the header-matching Pattern.
//
// None of these types carry behavior beyond validation and equality; they
// exist so that a Sha256 can never be confused with an arbitrary string.
// EventHeader and EventRow are plain structs with no constructor, and this
// package does not check their invariants; the ledger assigns id, ts and
// seq when it publishes and reads events.
package types
