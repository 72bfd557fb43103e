package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/api/handlers"
	"github.com/cloo-solutions/dupefinder/internal/cache"
	"github.com/cloo-solutions/dupefinder/internal/database"
	"github.com/cloo-solutions/dupefinder/internal/jobs"
	"github.com/cloo-solutions/dupefinder/internal/metrics"
	"github.com/cloo-solutions/dupefinder/internal/openai"
	"github.com/cloo-solutions/dupefinder/internal/repository"
	"github.com/cloo-solutions/dupefinder/internal/retail"
	"github.com/cloo-solutions/dupefinder/internal/server"
	"github.com/cloo-solutions/dupefinder/internal/service"
	"github.com/cloo-solutions/dupefinder/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the dupefinder API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides DUPE_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().String("migrations", database.DefaultMigrationsPath, "Path to the migrations directory")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg, logger := rt.cfg, rt.logger

	if err := cfg.RequireOpenAI(); err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	dbConfig := cfg.Database("dupefinderd")
	dbConfig.Logger = logger
	pool, err := database.NewPool(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if noMigrate, _ := cmd.Flags().GetBool("no-migrate"); !noMigrate {
		path, _ := cmd.Flags().GetString("migrations")
		if err := database.RunMigrations(cfg.DatabaseURL, path, logger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	productRepo := repository.NewProductRepository(pool)
	dupeRepo := repository.NewDupeRepository(pool)
	searchRepo := repository.NewSearchLogRepository(pool)

	if err := ensurePartitions(ctx, searchRepo, time.Now().UTC(), logger); err != nil {
		return err
	}

	var priceCache cache.PriceCache = cache.NoopPriceCache{}
	if cfg.HasRedis() {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()
		priceCache = cache.NewRedisPriceCache(rdb, cfg.PriceCacheTTL)
		logger.Info("price cache enabled", zap.Duration("ttl", cfg.PriceCacheTTL))
	}

	var archiver retail.PageArchiver
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		archiver = storage.NewPageArchive(s3Client)
		logger.Info("page archive ready", zap.String("bucket", cfg.S3Bucket))
	}

	aiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	}, logger)
	scraper := retail.NewIngredientScraper(retail.ScraperConfig{Timeout: cfg.ScrapeTimeout, Archiver: archiver}, logger)

	priceSvc := service.NewPriceService(productRepo, newPriceSources(cfg.PriceSources, cfg.ScrapeTimeout), priceCache, logger)
	resolver := service.NewResolver(productRepo, scraper, priceSvc, logger)
	dupeSvc := service.NewDupeService(productRepo, dupeRepo, newScorer(cfg.Scoring), logger)
	extractor := service.NewSearchExtractor(aiClient, cfg.ExtractionFallback, logger)

	searchSvc := service.NewSearchService(extractor, resolver, dupeSvc, searchRepo, logger)
	chatSvc := service.NewChatService(resolver, dupeSvc, service.NewCuratedCatalog(), searchRepo, logger)
	compareSvc := service.NewCompareService(productRepo, dupeRepo, aiClient, logger)
	productSvc := service.NewProductService(productRepo)

	var priceWorker *jobs.Worker
	if cfg.PriceRefreshInterval > 0 {
		processor := jobs.NewPriceRefreshProcessor(productRepo, priceSvc, cfg.PriceMaxAge, jobs.DefaultRefreshBatch, logger)
		priceWorker = jobs.NewWorker(processor, jobs.WorkerConfig{
			Interval:    cfg.PriceRefreshInterval,
			PassTimeout: cfg.PriceRefreshInterval,
			RunOnStart:  true,
		}, logger)
		go priceWorker.Start(ctx)
	}

	router := server.NewRouter(server.RouterConfig{
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMin:    cfg.RateLimitPerMin,
		SearchHandler:      handlers.NewSearchHandler(searchSvc, logger),
		DupesHandler:       handlers.NewDupesHandler(chatSvc, logger),
		CompareHandler:     handlers.NewCompareHandler(compareSvc, logger),
		PricesHandler:      handlers.NewPricesHandler(priceSvc, logger),
		ProductHandler:     handlers.NewProductHandler(productSvc, dupeSvc, logger),
		DiagnosticsHandler: handlers.NewDiagnosticsHandler(handlers.DiagnosticsEnv{
			DatabaseConfigured: true,
			OpenAIConfigured:   cfg.HasOpenAI(),
			RedisConfigured:    cfg.HasRedis(),
			S3Configured:       cfg.HasS3(),
			SentryConfigured:   cfg.HasSentry(),
			Environment:        cfg.Environment,
		}, pool, productRepo, searchRepo, aiClient, logger),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port), zap.String("scoring", cfg.Scoring))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	if priceWorker != nil {
		priceWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
