package ledger

import (
	"errors"
	"fmt"
)

// Code categorizes a ledger failure, matching the error taxonomy spec.md §7
// requires beyond the schema registry's own UnknownSchema/InvalidPayload
// codes (those surface wrapped inside an *Error with CodeRejected).
type Code string

const (
	// CodeRejected means publish ran the blob through the validator and it
	// was refused (unknown schema or invalid payload).
	CodeRejected Code = "REJECTED"
	// CodeCorruptLedger means a stored event failed re-validation during
	// replay or subscribe delivery — the schema document changed
	// underneath already-published data, or the row was tampered with.
	CodeCorruptLedger Code = "CORRUPT_LEDGER"
	// CodeStorageFailed means the underlying SQLite operation failed for
	// reasons unrelated to validation (I/O error, constraint violation
	// other than the idempotency unique index, context cancellation).
	CodeStorageFailed Code = "STORAGE_FAILED"
)

// Error is the structured failure type Ledger operations return.
type Error struct {
	Code    Code
	RunID   string
	Schema  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("%s: %s (run=%s, schema=%s)", e.Code, e.Message, e.RunID, e.Schema)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRejected reports whether err is a publish rejection.
func IsRejected(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeRejected
}

// IsCorruptLedger reports whether err came from a failed integrity
// re-validation during replay or subscribe.
func IsCorruptLedger(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeCorruptLedger
}

// IsStorageFailed reports whether err is a storage-layer failure.
func IsStorageFailed(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeStorageFailed
}

func newRejectedError(runID, schema string, cause error) *Error {
	return &Error{Code: CodeRejected, RunID: runID, Schema: schema, Message: cause.Error(), Err: cause}
}

func newCorruptLedgerError(runID, schema string, seq int64, cause error) *Error {
	return &Error{
		Code:    CodeCorruptLedger,
		RunID:   runID,
		Schema:  schema,
		Message: fmt.Sprintf("seq %d failed integrity re-validation: %v", seq, cause),
		Err:     cause,
	}
}

func newStorageFailedError(op string, cause error) *Error {
	return &Error{Code: CodeStorageFailed, Message: fmt.Sprintf("%s: %v", op, cause), Err: cause}
}
