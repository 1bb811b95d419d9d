package ledger

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/drylab/drylab/internal/types"
)

const defaultIdleTimeout = 5 * time.Second

// idleTimeoutFromEnv returns IDLE_TIMEOUT_MS parsed as a duration, or def if
// the variable is unset or unparsable.
func idleTimeoutFromEnv(def time.Duration) time.Duration {
	raw := os.Getenv("IDLE_TIMEOUT_MS")
	if raw == "" {
		return def
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

type subscribeConfig struct {
	idleTimeout time.Duration
}

// SubscribeOption configures a single Subscribe call.
type SubscribeOption func(*subscribeConfig)

// WithIdleTimeout overrides the default idle timeout (5s, or IDLE_TIMEOUT_MS
// if set) for one Subscribe call.
func WithIdleTimeout(d time.Duration) SubscribeOption {
	return func(c *subscribeConfig) {
		c.idleTimeout = d
	}
}

// Subscribe delivers events published to runID, after fromSeq (exclusive),
// to fn in seq order — first the events already stored, then any published
// while Subscribe is running. Each call to fn completes
// before the next begins and before the next publish is observed.
//
// Subscribe blocks between events rather than polling: it waits on the
// ledger's per-run notifier, woken immediately by the next Publish to
// runID. It returns nil on its own once no event arrives within the idle
// timeout, releasing the wait without leaving any notification queued
// against it, or returns ctx.Err() if ctx is cancelled first.
func (l *Ledger) Subscribe(ctx context.Context, runID string, fromSeq int64, fn func(types.EventRow) error, opts ...SubscribeOption) error {
	cfg := subscribeConfig{idleTimeout: idleTimeoutFromEnv(defaultIdleTimeout)}
	for _, opt := range opts {
		opt(&cfg)
	}

	cursor := fromSeq
	for {
		// Grab the wait channel for this round before querying, so a
		// publish racing with the query is never missed: it would close
		// this exact channel even if it commits mid-query.
		waitCh := l.notifier.wait(runID)

		delivered, err := l.deliverFrom(ctx, runID, cursor, fn)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
		if delivered > 0 {
			cursor += int64(delivered)
			continue
		}

		timer := time.NewTimer(cfg.idleTimeout)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-waitCh:
			timer.Stop()
			continue
		case <-timer.C:
			return nil
		}
	}
}

// deliverFrom queries and delivers events from cursor onward, returning how
// many were delivered before fn returned an error or rows were exhausted.
func (l *Ledger) deliverFrom(ctx context.Context, runID string, cursor int64, fn func(types.EventRow) error) (int, error) {
	rows, err := l.queryFrom(ctx, runID, cursor)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		row, err := scanEventRow(rows, runID)
		if err != nil {
			return count, newStorageFailedError("subscribe: scan", err)
		}
		if l.integrityCheck && l.validator != nil {
			if err := l.validator.Validate(string(row.Header.Schema), []byte(row.Blob)); err != nil {
				return count, newCorruptLedgerError(runID, string(row.Header.Schema), row.Seq, err)
			}
		}
		if err := fn(row); err != nil {
			return count, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, newStorageFailedError("subscribe: iterate", err)
	}
	return count, nil
}
