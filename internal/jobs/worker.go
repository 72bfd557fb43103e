package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobProcessor runs one pass of background work
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// WorkerConfig controls how often a Worker runs its processor
type WorkerConfig struct {
	Interval time.Duration
	// PassTimeout bounds a single pass. Zero means no bound beyond the
	// worker's own context.
	PassTimeout time.Duration
	// RunOnStart runs a pass immediately instead of waiting one interval.
	RunOnStart bool
}

// Worker runs a JobProcessor on a fixed interval until stopped
type Worker struct {
	processor JobProcessor
	cfg       WorkerConfig
	logger    *zap.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewWorker creates a worker. A non-positive interval falls back to one hour.
func NewWorker(processor JobProcessor, cfg WorkerConfig, logger *zap.Logger) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		processor: processor,
		cfg:       cfg,
		logger:    logger.Named("worker"),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start blocks, running passes until ctx is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.done)

	w.logger.Info("worker started",
		zap.Duration("interval", w.cfg.Interval),
		zap.Bool("run_on_start", w.cfg.RunOnStart))

	if w.cfg.RunOnStart {
		w.runPass(ctx)
	}

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped", zap.String("reason", "context cancelled"))
			return
		case <-w.stop:
			w.logger.Info("worker stopped", zap.String("reason", "stop requested"))
			return
		case <-ticker.C:
			w.runPass(ctx)
		}
	}
}

func (w *Worker) runPass(ctx context.Context) {
	if w.cfg.PassTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.PassTimeout)
		defer cancel()
	}

	start := time.Now()
	if err := w.processor.ProcessJobs(ctx); err != nil {
		w.logger.Error("worker pass failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return
	}
	w.logger.Debug("worker pass complete", zap.Duration("elapsed", time.Since(start)))
}

// Stop signals the loop and waits for the current pass to finish. It is safe
// to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
}
