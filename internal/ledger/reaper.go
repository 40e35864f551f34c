package ledger

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/r3e-network/ledger-core/internal/logging"
	"github.com/r3e-network/ledger-core/internal/metrics"
)

// reaper observes Worker termination and clears the corresponding Registry
// bookkeeping. It never touches balances or the backlog counter.
// Event-driven clearing happens as soon as a worker's onExit callback
// fires; a robfig/cron sweep runs every staleCheckInterval as a backstop
// that reconciles the active-worker gauge.
type reaper struct {
	reg     *registry
	logger  *logging.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	watched map[string]*worker // user -> worker currently believed live

	cron *cron.Cron
}

func newReaper(reg *registry, staleCheckInterval time.Duration, logger *logging.Logger, m *metrics.Metrics) *reaper {
	r := &reaper{
		reg:     reg,
		logger:  logger,
		metrics: m,
		watched: make(map[string]*worker),
	}

	c := cron.New()
	spec := "@every " + staleCheckInterval.String()
	if _, err := c.AddFunc(spec, r.sweep); err != nil {
		if logger != nil {
			logger.WithError(err).Error("reaper: failed to schedule stale-check sweep")
		}
	} else {
		r.cron = c
	}
	return r
}

// start begins the periodic backstop sweep. Safe to call even if scheduling
// failed; in that case it is a no-op.
func (r *reaper) start() {
	if r.cron != nil {
		r.cron.Start()
	}
}

// stop halts the periodic sweep; used on graceful process shutdown.
func (r *reaper) stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

// track registers w as the live worker for acc, for the backstop sweep's
// bookkeeping. Called by the Dispatcher immediately after installing w.
func (r *reaper) track(acc *account, w *worker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watched[acc.id] = w
	if r.metrics != nil {
		r.metrics.ActiveWorkers.Set(float64(len(r.watched)))
	}
}

// notify is the Worker's onExit callback: it atomically clears
// acc.workerRef only if it still points at w, so a late-firing notify from
// a retired worker can never clear a newer worker that has since been
// installed, then drops w from the watch set.
func (r *reaper) notify(w *worker) {
	acc := w.account
	acc.workerRef.CompareAndSwap(w, nil)

	r.mu.Lock()
	if r.watched[acc.id] == w {
		delete(r.watched, acc.id)
	}
	count := len(r.watched)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.ActiveWorkers.Set(float64(count))
		r.metrics.WorkerReapedTotal.Inc()
	}
}

// sweep is the periodic backstop: it reconciles the watch set against
// actual Registry state, dropping entries whose worker has already been
// cleared (e.g. by a direct notify race) so the active-worker gauge never
// drifts upward indefinitely.
func (r *reaper) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for user, w := range r.watched {
		acc, ok := r.reg.lookup(user)
		if !ok || acc.workerRef.Load() != w {
			delete(r.watched, user)
		}
	}
	if r.metrics != nil {
		r.metrics.ActiveWorkers.Set(float64(len(r.watched)))
	}
}
