package reactor

import (
	"context"
	"fmt"

	"github.com/drylab/drylab/internal/ledger"
	"github.com/drylab/drylab/internal/types"
)

// Output is a single (schema, blob) pair a Handler asks to publish back to
// the reactor's run.
type Output struct {
	Schema string
	Blob   types.Blob
}

// Handler reacts to a single matched event and returns zero or more events
// to publish in response. Returning a non-nil error stops the owning
// Reactor's Run loop with a HandlerFailedError.
type Handler interface {
	Handle(ctx context.Context, row types.EventRow) ([]Output, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, row types.EventRow) ([]Output, error)

func (f HandlerFunc) Handle(ctx context.Context, row types.EventRow) ([]Output, error) {
	return f(ctx, row)
}

// Reactor matches events published to a ledger run against Pattern and
// runs Handler on each match, publishing the handler's outputs back to the
// same run.
type Reactor struct {
	Ledger  *ledger.Ledger
	Pattern types.Pattern
	Handler Handler
}

// New creates a Reactor over ledg that reacts to events matching pattern.
func New(ledg *ledger.Ledger, pattern types.Pattern, handler Handler) *Reactor {
	return &Reactor{Ledger: ledg, Pattern: pattern, Handler: handler}
}

// Run subscribes to runID starting at fromSeq and drives the match/handle/
// publish loop until ctx is cancelled, Subscribe idles out, or the handler
// returns an error (wrapped as *HandlerFailedError).
func (r *Reactor) Run(ctx context.Context, runID string, fromSeq int64, opts ...ledger.SubscribeOption) error {
	return r.Ledger.Subscribe(ctx, runID, fromSeq, func(row types.EventRow) error {
		if !r.Pattern.Matches(row.Header) {
			return nil
		}

		outputs, err := r.Handler.Handle(ctx, row)
		if err != nil {
			return &HandlerFailedError{RunID: runID, Seq: row.Seq, Err: err}
		}

		for _, out := range outputs {
			if _, _, err := r.Ledger.Publish(ctx, runID, out.Schema, out.Blob); err != nil {
				return &HandlerFailedError{RunID: runID, Seq: row.Seq, Err: fmt.Errorf("publishing output: %w", err)}
			}
		}
		return nil
	}, opts...)
}
