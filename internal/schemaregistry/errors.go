package schemaregistry

import (
	"errors"
	"fmt"

	"github.com/drylab/drylab/internal/types"
)

// Code categorizes a schema registry failure, matching spec.md §4.1 and §7
// exactly: UnknownSchema (no validator known) and InvalidPayload (validator
// rejected the blob).
type Code string

const (
	// CodeUnknownSchema means no schema document could be resolved for the
	// requested SchemaId.
	CodeUnknownSchema Code = "UNKNOWN_SCHEMA"
	// CodeInvalidPayload means a schema document was resolved but the blob
	// did not satisfy it.
	CodeInvalidPayload Code = "INVALID_PAYLOAD"
)

// Error is the structured failure returned by Registry.Validate. Neither
// error kind is retried by the registry itself (spec.md §4.1).
type Error struct {
	Code     Code
	SchemaID types.SchemaId
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.SchemaID != "" {
		return fmt.Sprintf("%s: %s (schema=%s)", e.Code, e.Message, e.SchemaID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnknownSchema reports whether err is (or wraps) an UnknownSchema error.
func IsUnknownSchema(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeUnknownSchema
}

// IsInvalidPayload reports whether err is (or wraps) an InvalidPayload error.
func IsInvalidPayload(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeInvalidPayload
}
