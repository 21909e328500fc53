package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/mdxsite/internal/logfields"
)

const warmJobName = "cache-warm"

// Warmer periodically loads every listing so the first request after an
// invalidation does not pay for a full walk.
type Warmer struct {
	scheduler gocron.Scheduler
	docs      *Docs
	locales   []string
	logger    *slog.Logger
}

// NewWarmer creates a stopped warmer for docs over locales.
func NewWarmer(docs *Docs, locales []string, logger *slog.Logger) (*Warmer, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if len(locales) == 0 {
		locales = []string{""}
	}
	return &Warmer{scheduler: s, docs: docs, locales: locales, logger: logger}, nil
}

// Schedule registers the warm job to run every interval, starting
// immediately once the scheduler starts.
func (w *Warmer) Schedule(interval time.Duration) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("warm interval must be positive, got %s", interval)
	}
	job, err := w.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(w.run),
		gocron.WithName(warmJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to schedule warm job: %w", err)
	}
	return job.ID().String(), nil
}

// Start starts the scheduler.
func (w *Warmer) Start() { w.scheduler.Start() }

// Stop shuts the scheduler down and waits for a running job.
func (w *Warmer) Stop() error { return w.scheduler.Shutdown() }

func (w *Warmer) run() {
	start := time.Now()
	n, err := w.Warm(context.Background())
	if err != nil {
		w.logger.Warn("Cache warm failed", logfields.Job(warmJobName), logfields.Error(err))
		return
	}
	w.logger.Debug("Cache warmed", logfields.Job(warmJobName), logfields.Count(n), logfields.Duration(time.Since(start)))
}

// Warm loads versions, every listing and the redirect table. It returns
// the number of listed documents.
func (w *Warmer) Warm(ctx context.Context) (int, error) {
	versions, err := w.docs.Versions(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, v := range versions {
		for _, l := range w.locales {
			list, err := w.docs.List(ctx, v, l)
			if err != nil {
				return total, fmt.Errorf("warm %s/%s: %w", v, l, err)
			}
			total += len(list)
		}
	}
	if _, err := w.docs.Redirects(ctx); err != nil {
		return total, err
	}
	return total, nil
}
