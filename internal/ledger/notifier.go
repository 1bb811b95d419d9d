package ledger

import "sync"

// notifier broadcasts "a new event was published to this run" to any
// number of waiters, scoped per run_id.
//
// The Python prototype this ledger is modeled on shared a single
// asyncio.Condition across every Ledger instance process-wide, so a
// publish to run A would wake (and every waiter would have to re-check)
// subscribers parked on run B. That is fixed here by keying a distinct
// broadcast channel per run_id: waiting on a run means holding a
// reference to that run's *current* channel and waiting for it to close.
//
// A publish closes the run's current channel (waking everyone currently
// parked on it) and atomically replaces it with a fresh one, so waiters
// never need to register or deregister themselves and no notification is
// ever left queued against a waiter that has moved on.
type notifier struct {
	mu   sync.Mutex
	runs map[string]chan struct{}
}

func newNotifier() *notifier {
	return &notifier{runs: make(map[string]chan struct{})}
}

// wait returns the channel to block on for the next publish to runID.
// Closed when a publish to runID occurs after this call.
func (n *notifier) wait(runID string) <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch, ok := n.runs[runID]
	if !ok {
		ch = make(chan struct{})
		n.runs[runID] = ch
	}
	return ch
}

// broadcast wakes every waiter currently parked on runID and rotates in a
// fresh channel for the next round.
func (n *notifier) broadcast(runID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if ch, ok := n.runs[runID]; ok {
		close(ch)
	}
	n.runs[runID] = make(chan struct{})
}
