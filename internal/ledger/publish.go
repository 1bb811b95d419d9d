package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/drylab/drylab/internal/types"
)

// PublishOutcome distinguishes a successful commit from a no-op duplicate.
// Rejection is not an outcome value — it surfaces as an error, since unlike
// Duplicate it means nothing was, or ever will be, stored for this call.
type PublishOutcome int

const (
	// OutcomeCommitted means a new event row was appended.
	OutcomeCommitted PublishOutcome = iota
	// OutcomeDuplicate means an event with the same (run_id, schema, sha)
	// already existed; the header of that existing event is returned.
	OutcomeDuplicate
)

func (o PublishOutcome) String() string {
	if o == OutcomeDuplicate {
		return "duplicate"
	}
	return "committed"
}

// Publish validates blob against schemaID, then appends it to runID as the
// next event, assigning it a dense, gap-free seq scoped to runID. Publishing
// an identical (runID, schemaID, sha) pair again is a no-op: it returns
// OutcomeDuplicate and the original event's header rather than creating a
// second row or an error.
//
// ts is always assigned by the ledger from wall-clock time at commit; it is
// never accepted from the caller.
func (l *Ledger) Publish(ctx context.Context, runID, schemaID string, blob types.Blob) (PublishOutcome, types.EventHeader, error) {
	sha := types.HashBlob(blob)

	if l.validator != nil {
		if err := l.validator.Validate(schemaID, []byte(blob)); err != nil {
			return OutcomeCommitted, types.EventHeader{}, newRejectedError(runID, schemaID, err)
		}
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return OutcomeCommitted, types.EventHeader{}, newStorageFailedError("publish: begin tx", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO blobs (sha, bytes) VALUES (?, ?)
		ON CONFLICT(sha) DO NOTHING
	`, string(sha), []byte(blob)); err != nil {
		return OutcomeCommitted, types.EventHeader{}, newStorageFailedError("publish: insert blob", err)
	}

	var existingSeq int64
	var existingTs int64
	err = tx.QueryRowContext(ctx, `
		SELECT seq, ts FROM events WHERE run_id = ? AND schema = ? AND sha = ?
	`, runID, schemaID, string(sha)).Scan(&existingSeq, &existingTs)
	switch {
	case err == nil:
		if commitErr := tx.Commit(); commitErr != nil {
			return OutcomeCommitted, types.EventHeader{}, newStorageFailedError("publish: commit duplicate read", commitErr)
		}
		return OutcomeDuplicate, types.EventHeader{ID: sha, Schema: types.SchemaId(schemaID), Ts: types.Timestamp(existingTs)}, nil
	case err != sql.ErrNoRows:
		return OutcomeCommitted, types.EventHeader{}, newStorageFailedError("publish: check existing", err)
	}

	var nextSeq int64
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM events WHERE run_id = ?
	`, runID).Scan(&nextSeq); err != nil {
		return OutcomeCommitted, types.EventHeader{}, newStorageFailedError("publish: next seq", err)
	}

	ts := types.Timestamp(time.Now().UnixMilli())

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO events (run_id, seq, sha, schema, ts) VALUES (?, ?, ?, ?, ?)
	`, runID, nextSeq, string(sha), schemaID, int64(ts)); err != nil {
		return OutcomeCommitted, types.EventHeader{}, newStorageFailedError("publish: insert event", err)
	}

	if err := tx.Commit(); err != nil {
		return OutcomeCommitted, types.EventHeader{}, newStorageFailedError(fmt.Sprintf("publish: commit run=%s seq=%d", runID, nextSeq), err)
	}

	l.notifier.broadcast(runID)

	return OutcomeCommitted, types.EventHeader{ID: sha, Schema: types.SchemaId(schemaID), Ts: ts}, nil
}
