package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Blob is an opaque, immutable byte payload. Its identity is its content.
type Blob []byte

// Sha256 is the 64-character lowercase hexadecimal digest of a Blob's
// SHA-256. The hash function is fixed; the digest is the blob's address.
type Sha256 string

// HashBlob computes the content address of a Blob.
func HashBlob(b Blob) Sha256 {
	sum := sha256.Sum256(b)
	return Sha256(hex.EncodeToString(sum[:]))
}

var sha256Pattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Valid reports whether s looks like a lowercase, 64-character hex digest.
func (s Sha256) Valid() bool {
	return sha256Pattern.MatchString(string(s))
}

// Timestamp is integer milliseconds since the Unix epoch, UTC.
type Timestamp int64

// SchemaId is a textual identifier of the form NAME@VERSION, e.g.
// "RMSD_CSV@1". Case-sensitive; the ledger treats it opaquely except that it
// partitions the validation lookup.
type SchemaId string

var schemaIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]+@[0-9]+$`)
var schemaNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// DefaultSchemaVersion is used when a lookup omits the "@VERSION" suffix.
const DefaultSchemaVersion = "1"

// NormalizeSchemaId parses a schema identifier that may omit its version
// ("NAME" or "NAME@VERSION") and returns the canonical "NAME@VERSION" form.
func NormalizeSchemaId(raw string) (SchemaId, error) {
	if schemaIDPattern.MatchString(raw) {
		return SchemaId(raw), nil
	}
	if schemaNamePattern.MatchString(raw) {
		return SchemaId(raw + "@" + DefaultSchemaVersion), nil
	}
	return "", fmt.Errorf("invalid schema id %q: must match NAME@VERSION", raw)
}

// NameVersion splits a normalized SchemaId into its name and version parts.
func (s SchemaId) NameVersion() (name string, version int, err error) {
	name, _, ver := strings.Cut(string(s), "@")
	if !ver {
		name = string(s)
		version = 1
		if !schemaNamePattern.MatchString(name) {
			return "", 0, fmt.Errorf("invalid schema id %q", s)
		}
		return name, version, nil
	}
	parts := strings.SplitN(string(s), "@", 2)
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid schema id %q: bad version: %w", s, err)
	}
	return parts[0], n, nil
}

// EventHeader is the immutable triple {id, schema, ts} identifying a
// published blob.
type EventHeader struct {
	ID     Sha256    `json:"id"`
	Schema SchemaId  `json:"schema"`
	Ts     Timestamp `json:"ts"`
}

// EventRow is a committed event: a header plus its blob, the run it belongs
// to, and its position in that run's sequence.
type EventRow struct {
	Header EventHeader `json:"header"`
	Blob   Blob        `json:"blob"`
	RunID  string      `json:"run_id"`
	Seq    int64       `json:"seq"`
}

// Pattern is a static, exhaustive header predicate: every non-nil field must
// equal the corresponding EventHeader field for Matches to return true. A
// zero-value Pattern matches everything.
type Pattern struct {
	Schema *SchemaId
	ID     *Sha256
	Ts     *Timestamp
}

// Matches reports whether h satisfies every field p sets.
func (p Pattern) Matches(h EventHeader) bool {
	if p.Schema != nil && *p.Schema != h.Schema {
		return false
	}
	if p.ID != nil && *p.ID != h.ID {
		return false
	}
	if p.Ts != nil && *p.Ts != h.Ts {
		return false
	}
	return true
}

// WithSchema returns a Pattern matching only the given schema, leaving other
// fields unconstrained. Convenience constructor for the common case.
func WithSchema(schema SchemaId) Pattern {
	return Pattern{Schema: &schema}
}
