package reactor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/drylab/drylab/internal/ledger"
	"github.com/drylab/drylab/internal/types"
)

type acceptAll struct{}

func (acceptAll) Validate(schemaID string, blob []byte) error { return nil }

func openTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	dir := t.TempDir()
	l, err := ledger.Open(dir+"/test.db", acceptAll{})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestReactor_MatchesAndRepublishes(t *testing.T) {
	l := openTestLedger(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	r := New(l, types.WithSchema("IN@1"), PassthroughHandler{OutputSchema: "OUT@1"})

	runErr := make(chan error, 1)
	go func() { runErr <- r.Run(ctx, "run-1", 0, ledger.WithIdleTimeout(200*time.Millisecond)) }()

	_, _, err := l.Publish(ctx, "run-1", "IN@1", types.Blob("payload"))
	require.NoError(t, err)

	require.NoError(t, <-runErr)

	rows, err := l.Cat(context.Background(), "run-1", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, int64(1), rows[0].Seq)
	require.Equal(t, types.SchemaId("IN@1"), rows[0].Header.Schema)
	require.Equal(t, int64(2), rows[1].Seq)
	require.Equal(t, types.SchemaId("OUT@1"), rows[1].Header.Schema)
	require.Equal(t, types.Blob("payload"), rows[1].Blob)
}

func TestReactor_IgnoresNonMatchingEvents(t *testing.T) {
	l := openTestLedger(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	r := New(l, types.WithSchema("IN@1"), PassthroughHandler{OutputSchema: "OUT@1"})

	runErr := make(chan error, 1)
	go func() { runErr <- r.Run(ctx, "run-1", 0, ledger.WithIdleTimeout(200*time.Millisecond)) }()

	_, _, err := l.Publish(ctx, "run-1", "OTHER@1", types.Blob("ignored"))
	require.NoError(t, err)

	require.NoError(t, <-runErr)

	rows, err := l.Cat(context.Background(), "run-1", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1, "reactor must not have republished anything")
}

func TestReactor_HandlerErrorIsWrapped(t *testing.T) {
	l := openTestLedger(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	boom := HandlerFunc(func(ctx context.Context, row types.EventRow) ([]Output, error) {
		return nil, context.DeadlineExceeded
	})
	r := New(l, types.WithSchema("IN@1"), boom)

	runErr := make(chan error, 1)
	go func() { runErr <- r.Run(ctx, "run-1", 0, ledger.WithIdleTimeout(200*time.Millisecond)) }()

	_, _, err := l.Publish(ctx, "run-1", "IN@1", types.Blob("payload"))
	require.NoError(t, err)

	err = <-runErr
	require.Error(t, err)
	var hf *HandlerFailedError
	require.ErrorAs(t, err, &hf)
}

func TestFanOutHandler_ConcatenatesOutputs(t *testing.T) {
	h := FanOutHandler{Handlers: []Handler{
		PassthroughHandler{OutputSchema: "A@1"},
		PassthroughHandler{OutputSchema: "B@1"},
	}}

	outputs, err := h.Handle(context.Background(), types.EventRow{Blob: types.Blob("x")})
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	require.Equal(t, "A@1", outputs[0].Schema)
	require.Equal(t, "B@1", outputs[1].Schema)
}
