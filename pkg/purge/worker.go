package purge

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/schemahub/pkg/async"
)

// DefaultSchedule runs every 15 minutes.
const DefaultSchedule = "@every 15m"

// DefaultTimeout bounds a single purge run.
const DefaultTimeout = 5 * time.Minute

// Store is the narrow collaborator the worker needs from storage.
type Store interface {
	// PurgeExpiredSchemaChecks deletes schema checks whose ExpiresAt has
	// passed and returns the number of rows removed.
	PurgeExpiredSchemaChecks(ctx context.Context, now time.Time) (int64, error)
}

// Worker runs Store.PurgeExpiredSchemaChecks on a cron schedule.
type Worker struct {
	store    Store
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
}

// Option configures a Worker.
type Option func(*Worker)

// WithSchedule overrides the cron schedule expression.
func WithSchedule(schedule string) Option {
	return func(w *Worker) { w.schedule = schedule }
}

// WithTimeout overrides the per-run timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(w *Worker) { w.timeout = timeout }
}

// New builds a Worker. Call Start to begin scheduling.
func New(store Store, opts ...Option) *Worker {
	w := &Worker{
		store:    store,
		schedule: DefaultSchedule,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start registers the purge job and begins the cron scheduler. Call Stop to
// drain in-flight runs.
func (w *Worker) Start(ctx context.Context) error {
	w.cron = cron.New()
	_, err := w.cron.AddFunc(w.schedule, func() {
		async.SafeGo(ctx, w.timeout, "schema check purge", w.runOnce)
	})
	if err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for any in-flight job to return.
func (w *Worker) Stop() {
	if w.cron == nil {
		return
	}
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
}

// RunOnce runs one purge pass synchronously, outside the cron schedule —
// used by tests and by operator-triggered manual purges.
func (w *Worker) RunOnce(ctx context.Context) (int64, error) {
	return w.store.PurgeExpiredSchemaChecks(ctx, time.Now())
}

func (w *Worker) runOnce(ctx context.Context) error {
	n, err := w.store.PurgeExpiredSchemaChecks(ctx, time.Now())
	if err != nil {
		log.Printf("[purge] failed: %v", err)
		return err
	}
	if n > 0 {
		log.Printf("[purge] removed %d expired schema checks", n)
	}
	return nil
}
