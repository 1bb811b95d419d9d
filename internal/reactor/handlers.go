package reactor

import (
	"context"

	"github.com/drylab/drylab/internal/types"
)

// PassthroughHandler republishes every matched event's blob unchanged under
// a different schema. It is the simplest possible dataflow node — a rename
// in the DAG — and is useful both as a demonstration of the Handler
// contract and as a building block for tests.
type PassthroughHandler struct {
	OutputSchema string
}

func (h PassthroughHandler) Handle(ctx context.Context, row types.EventRow) ([]Output, error) {
	return []Output{{Schema: h.OutputSchema, Blob: row.Blob}}, nil
}

// FanOutHandler runs several Handlers over the same event and concatenates
// their outputs, letting one matched event feed multiple downstream
// schemas from a single Reactor.
type FanOutHandler struct {
	Handlers []Handler
}

func (h FanOutHandler) Handle(ctx context.Context, row types.EventRow) ([]Output, error) {
	var outputs []Output
	for _, sub := range h.Handlers {
		out, err := sub.Handle(ctx, row)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out...)
	}
	return outputs, nil
}
