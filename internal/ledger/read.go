package ledger

import (
	"context"
	"database/sql"

	"github.com/drylab/drylab/internal/types"
)

// Cat returns a snapshot of every event published to runID, ordered by seq
// ascending, after fromSeq (exclusive). It never blocks: callers wanting to
// wait for future events want Subscribe instead.
func (l *Ledger) Cat(ctx context.Context, runID string, fromSeq int64) ([]types.EventRow, error) {
	rows, err := l.queryFrom(ctx, runID, fromSeq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.EventRow
	for rows.Next() {
		row, err := scanEventRow(rows, runID)
		if err != nil {
			return nil, newStorageFailedError("cat: scan", err)
		}
		if l.integrityCheck && l.validator != nil {
			if err := l.validator.Validate(string(row.Header.Schema), []byte(row.Blob)); err != nil {
				return nil, newCorruptLedgerError(runID, string(row.Header.Schema), row.Seq, err)
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, newStorageFailedError("cat: iterate", err)
	}
	return out, nil
}

// Replay delivers every stored event for runID, after fromSeq (exclusive) up
// to the last event present when Replay was called, to fn in seq order.
// Unlike Subscribe it never waits for events published after the call
// begins.
func (l *Ledger) Replay(ctx context.Context, runID string, fromSeq int64, fn func(types.EventRow) error) error {
	rows, err := l.queryFrom(ctx, runID, fromSeq)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		row, err := scanEventRow(rows, runID)
		if err != nil {
			return newStorageFailedError("replay: scan", err)
		}
		if l.integrityCheck && l.validator != nil {
			if err := l.validator.Validate(string(row.Header.Schema), []byte(row.Blob)); err != nil {
				return newCorruptLedgerError(runID, string(row.Header.Schema), row.Seq, err)
			}
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return newStorageFailedError("replay: iterate", err)
	}
	return nil
}

// LastSeq returns the highest seq published to runID, or -1 if the run is
// empty.
func (l *Ledger) LastSeq(ctx context.Context, runID string) (int64, error) {
	var seq sql.NullInt64
	err := l.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM events WHERE run_id = ?
	`, runID).Scan(&seq)
	if err != nil {
		return 0, newStorageFailedError("last seq", err)
	}
	if !seq.Valid {
		return -1, nil
	}
	return seq.Int64, nil
}

func (l *Ledger) queryFrom(ctx context.Context, runID string, fromSeq int64) (*sql.Rows, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT e.seq, e.sha, e.schema, e.ts, b.bytes
		FROM events e
		JOIN blobs b ON b.sha = e.sha
		WHERE e.run_id = ? AND e.seq > ?
		ORDER BY e.seq ASC
	`, runID, fromSeq)
	if err != nil {
		return nil, newStorageFailedError("query events", err)
	}
	return rows, nil
}

func scanEventRow(rows *sql.Rows, runID string) (types.EventRow, error) {
	var runRow types.EventRow
	var sha string
	var schema string
	var ts int64
	var content []byte
	if err := rows.Scan(&runRow.Seq, &sha, &schema, &ts, &content); err != nil {
		return types.EventRow{}, err
	}
	runRow.Header = types.EventHeader{ID: types.Sha256(sha), Schema: types.SchemaId(schema), Ts: types.Timestamp(ts)}
	runRow.Blob = content
	runRow.RunID = runID
	return runRow, nil
}
