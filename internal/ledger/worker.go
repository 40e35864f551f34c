package ledger

import (
	"sync"
	"time"
)

// inboxCapacity is the bound on a Worker's inbox. Ten suffices since
// admission caps concurrent in-flight requests per user at maxBacklog.
const inboxCapacity = maxBacklog

// worker is the single-consumer task that serializes all balance mutations
// for one user. At most one worker is ever active for a given account at a
// time, enforced by account.workerRef's compare-and-swap install/clear
// protocol in dispatcher.go and reaper.go.
type worker struct {
	account     *account
	inbox       chan *request
	idleTimeout time.Duration

	// onExit is called exactly once, after the worker has stopped accepting
	// new work and drained its inbox, so the Reaper can clear this worker's
	// Registry bookkeeping. It must never touch balances or the backlog
	// counter.
	onExit func(w *worker)

	mu     sync.Mutex
	closed bool
}

func newWorker(acc *account, idleTimeout time.Duration, onExit func(w *worker)) *worker {
	return &worker{
		account:     acc,
		inbox:       make(chan *request, inboxCapacity),
		idleTimeout: idleTimeout,
		onExit:      onExit,
	}
}

// enqueue submits req to the worker. It returns false if the worker has
// already begun (or completed) its graceful shutdown, in which case the
// Dispatcher must install a fresh worker and retry exactly once.
//
// closed is only ever set to true while holding mu, and only by shutdown()
// before it starts draining the inbox — so an enqueue that observes
// closed == false is guaranteed to land in the inbox strictly before any
// concurrent shutdown() begins draining it. This removes the race a
// channel-close-based signal would have against a buffered send.
func (w *worker) enqueue(req *request) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	select {
	case w.inbox <- req:
		return true
	default:
		// Should not happen: admission caps in-flight requests at
		// inboxCapacity. Treat as a transient failure; the caller retries.
		return false
	}
}

// run is the Worker's main loop: await either an inbox message or the idle
// timer. The loop ends only when the idle timer fires; the deferred
// shutdown() then drains the inbox and notifies the Reaper. A panic in a
// request is recovered in executeSafely and does not end the loop.
func (w *worker) run() {
	defer w.shutdown()

	timer := time.NewTimer(w.idleTimeout)
	defer timer.Stop()

	for {
		select {
		case req := <-w.inbox:
			w.executeSafely(req)
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.idleTimeout)

		case <-timer.C:
			return
		}
	}
}

// executeSafely runs one operation against the Ledger and replies on its
// one-shot channel, recovering from a panic so a single bad request cannot
// crash the process. Worker faults are reported to the caller, not fatal.
func (w *worker) executeSafely(req *request) {
	defer func() {
		if r := recover(); r != nil {
			select {
			case req.reply <- opResult{err: ErrWorkerFault}:
			default:
			}
		}
	}()
	w.execute(req)
}

func (w *worker) execute(req *request) {
	switch req.kind {
	case opDeposit:
		newBalance := w.account.ledgerDeposit(req.currency, req.amount)
		req.reply <- opResult{balance: newBalance}

	case opWithdraw:
		newBalance, err := w.account.ledgerWithdraw(req.currency, req.amount)
		req.reply <- opResult{balance: newBalance, err: err}

	case opGetBalance:
		req.reply <- opResult{balance: w.account.ledgerGet(req.currency)}
	}
}

// shutdown implements the graceful shutdown protocol: clear this worker's
// Registry ref so a concurrent dispatcher retry installs a fresh worker
// instead of finding this one again, stop accepting new messages, drain
// what's already queued, then let the Reaper clear the rest of this
// worker's bookkeeping. The ref is cleared under mu together with setting
// closed, so an enqueue that finds this worker closed is always followed by
// a lookup that no longer returns it. Idempotent: only the first call
// drains and fires onExit.
func (w *worker) shutdown() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.account.workerRef.CompareAndSwap(w, nil)
	w.mu.Unlock()

	for {
		select {
		case req := <-w.inbox:
			w.executeSafely(req)
		default:
			if w.onExit != nil {
				w.onExit(w)
			}
			return
		}
	}
}
