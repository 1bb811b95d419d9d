// Package schemaregistry resolves a SchemaId to a validator and applies it to
// a blob, implementing the external contract spec.md §4.1 requires of the
// ledger's schema collaborator: validate(schema_id, blob) -> ok | unknown |
// invalid.
//
// Two schema-document backends are supported, selected by file extension:
//
//   - NAME.vVERSION.json — a JSON Schema document (the default, and the only
//     format spec.md §6 documents as part of the persisted/external format).
//   - NAME.vVERSION.cue — a CUE constraint document (an additive backend;
//     see jsonschema.go and cueschema.go).
//
// Compiled validators are cached for the process lifetime, keyed by the
// normalized SchemaId, behind a RWMutex.
package schemaregistry
