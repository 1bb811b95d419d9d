package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/drylab/drylab/internal/ledger"
	"github.com/drylab/drylab/internal/reactor"
	"github.com/drylab/drylab/internal/types"
)

// entry is one reactor this pipeline drives, along with the run and cursor
// it subscribes from.
type entry struct {
	runID   string
	fromSeq int64
	react   *reactor.Reactor
}

// Pipeline supervises a single Ledger and the reactors registered against
// it, running each in its own goroutine and shutting all of them down once
// no reactor has observed a matching event for the configured idle
// timeout.
type Pipeline struct {
	Ledger      *ledger.Ledger
	idleTimeout time.Duration
	log         *slog.Logger

	mu      sync.Mutex
	entries []*entry

	activity chan struct{} // buffered size 1, coalesced signal
}

// Option configures a Pipeline at construction time.
type Option func(*Pipeline)

// WithIdleTimeout overrides the pipeline-wide watchdog idle timeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.idleTimeout = d }
}

// WithLogger overrides the pipeline's structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// New creates a Pipeline driving ledg, with a watchdog idle timeout of
// 5 seconds (or IDLE_TIMEOUT_MS, if set) unless overridden.
func New(ledg *ledger.Ledger, opts ...Option) *Pipeline {
	p := &Pipeline{
		Ledger:      ledg,
		idleTimeout: idleTimeoutFromEnv(defaultIdleTimeout),
		log:         slog.Default(),
		activity:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Add registers a Handler to run against events on runID matching pattern,
// starting from fromSeq. The reactor is not started until RunForever is
// called.
func (p *Pipeline) Add(runID string, pattern types.Pattern, handler reactor.Handler, fromSeq int64) {
	wrapped := &activitySignalingHandler{inner: handler, pipeline: p}
	p.mu.Lock()
	p.entries = append(p.entries, &entry{
		runID:   runID,
		fromSeq: fromSeq,
		react:   reactor.New(p.Ledger, pattern, wrapped),
	})
	p.mu.Unlock()
}

// RunForever starts every registered reactor and the idle watchdog, and
// blocks until ctx is cancelled or the watchdog shuts the pipeline down
// after an idle period. Reactor failures are logged but do not themselves
// stop sibling reactors; ctx cancellation or the watchdog are the only
// ways every reactor is asked to stop together.
func (p *Pipeline) RunForever(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	entries := append([]*entry(nil), p.entries...)
	p.mu.Unlock()

	var wg sync.WaitGroup
	for _, e := range entries {
		wg.Add(1)
		go func(e *entry) {
			defer wg.Done()
			err := e.react.Run(ctx, e.runID, e.fromSeq, ledger.WithIdleTimeout(p.idleTimeout))
			if err != nil && ctx.Err() == nil {
				p.log.Error("reactor stopped", "run_id", e.runID, "error", err)
			}
		}(e)
	}

	watchdogDone := make(chan struct{})
	go func() {
		defer close(watchdogDone)
		p.watchdog(ctx, cancel)
	}()

	wg.Wait()
	<-watchdogDone

	if err := ctx.Err(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// watchdog shuts the pipeline down (via cancel) once no reactor has
// signalled activity within the idle timeout.
func (p *Pipeline) watchdog(ctx context.Context, cancel context.CancelFunc) {
	timer := time.NewTimer(p.idleTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.activity:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(p.idleTimeout)
		case <-timer.C:
			p.log.Info("no activity within idle timeout, stopping pipeline", "idle_timeout", p.idleTimeout.String())
			cancel()
			return
		}
	}
}

// signal wakes the watchdog's idle timer, coalescing concurrent signals.
func (p *Pipeline) signal() {
	select {
	case p.activity <- struct{}{}:
	default:
	}
}

// activitySignalingHandler decorates a Handler to report activity to its
// owning Pipeline whenever it is invoked, so the watchdog only considers a
// pipeline idle when none of its reactors have matched an event.
type activitySignalingHandler struct {
	inner    reactor.Handler
	pipeline *Pipeline
}

func (h *activitySignalingHandler) Handle(ctx context.Context, row types.EventRow) ([]reactor.Output, error) {
	h.pipeline.signal()
	return h.inner.Handle(ctx, row)
}
