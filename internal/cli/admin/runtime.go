package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/config"
	"github.com/cloo-solutions/dupefinder/internal/logging"
	"github.com/cloo-solutions/dupefinder/internal/retail"
	"github.com/cloo-solutions/dupefinder/internal/service"
	"github.com/cloo-solutions/dupefinder/internal/telemetry"
	"go.uber.org/zap"
)

// runtime holds what every admin command needs before touching the database
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	shutdown func()
}

func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Debug: cfg.Debug})
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, logger: logger, shutdown: func() {}}
	if cfg.HasSentry() {
		flush, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: cfg.TracesSampleRate(),
			Debug:            cfg.Debug,
		}, logger)
		if err != nil {
			logger.Warn("telemetry init failed, continuing without tracing", zap.Error(err))
		} else {
			rt.shutdown = flush
		}
	}
	return rt, nil
}

func (rt *runtime) Close() {
	rt.shutdown()
	_ = rt.logger.Sync()
}

func newScorer(mode string) service.Scorer {
	if mode == config.ScoringOverlap {
		return service.NewOverlapScorer()
	}
	return service.NewRandomScorer(nil)
}

func newPriceSources(mode string, timeout time.Duration) []retail.PriceSource {
	if mode == config.PriceSourcesScrape {
		return retail.DefaultPageSources(timeout)
	}
	return retail.DefaultStaticSources()
}

type partitionEnsurer interface {
	EnsureMonthlyPartition(ctx context.Context, month time.Time) (bool, error)
}

// ensurePartitions makes sure search log partitions exist for this month
// and the next, so a long-running server does not spill into the default one.
func ensurePartitions(ctx context.Context, repo partitionEnsurer, now time.Time, logger *zap.Logger) error {
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for _, m := range []time.Time{month, month.AddDate(0, 1, 0)} {
		created, err := repo.EnsureMonthlyPartition(ctx, m)
		if err != nil {
			return fmt.Errorf("failed to ensure searches partition for %s: %w", m.Format("2006-01"), err)
		}
		if created {
			logger.Info("created searches partition", zap.String("month", m.Format("2006-01")))
		}
	}
	return nil
}
