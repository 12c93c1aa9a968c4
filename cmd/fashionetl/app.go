package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/JakeFAU/fashion-etl/internal/clock/system"
	"github.com/JakeFAU/fashion-etl/internal/config"
	collyfetcher "github.com/JakeFAU/fashion-etl/internal/fetcher/colly"
	"github.com/JakeFAU/fashion-etl/internal/id/uuid"
	"github.com/JakeFAU/fashion-etl/internal/load"
	"github.com/JakeFAU/fashion-etl/internal/logging"
	"github.com/JakeFAU/fashion-etl/internal/metrics"
	"github.com/JakeFAU/fashion-etl/internal/pipeline"
	"github.com/JakeFAU/fashion-etl/internal/policy/ratelimit"
	"github.com/JakeFAU/fashion-etl/internal/scrape"
	"github.com/JakeFAU/fashion-etl/internal/sink/csvfile"
	sinkpostgres "github.com/JakeFAU/fashion-etl/internal/sink/postgres"
	"github.com/JakeFAU/fashion-etl/internal/sink/sheets"
	"github.com/JakeFAU/fashion-etl/internal/storage"
	"github.com/JakeFAU/fashion-etl/internal/storage/gcs"
	"github.com/JakeFAU/fashion-etl/internal/storage/local"
	"github.com/JakeFAU/fashion-etl/internal/transform"
)

func runPipeline(ctx context.Context, opts options, out io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyOverrides(&cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blobs, closeBlobs, err := openBlobStore(ctx, cfg.CSV)
	if err != nil {
		return err
	}
	defer closeBlobs()

	rec := metrics.New()
	driver := buildDriver(cfg, blobs, rec, logger)
	report := driver.RunReport(ctx, cfg.Scrape.BaseURL, cfg.Scrape.MaxPages)

	if cfg.Metrics.Textfile != "" {
		if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("Failed to write metrics textfile", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
		}
	}

	if report.OK {
		fmt.Fprintln(out, successMessage)
	} else {
		fmt.Fprintln(out, failureMessage)
	}
	if opts.summary {
		renderSummary(out, report)
	}
	return nil
}

func applyOverrides(cfg *config.Config, opts options) {
	if opts.baseURL != "" {
		cfg.Scrape.BaseURL = opts.baseURL
	}
	if opts.maxPages != 0 {
		cfg.Scrape.MaxPages = opts.maxPages
	}
}

// openBlobStore selects GCS when a bucket is configured and the local
// directory otherwise. The returned func releases the store.
func openBlobStore(ctx context.Context, cfg config.CSVConfig) (storage.BlobStore, func(), error) {
	if cfg.GCSBucket != "" {
		store, err := gcs.Dial(ctx, gcs.Config{Bucket: cfg.GCSBucket, Prefix: cfg.Prefix})
		if err != nil {
			return nil, nil, fmt.Errorf("open gcs blob store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	}
	store, err := local.New(local.Config{BaseDir: cfg.OutputDir})
	if err != nil {
		return nil, nil, fmt.Errorf("open local blob store: %w", err)
	}
	return store, func() {}, nil
}

func buildDriver(cfg config.Config, blobs storage.BlobStore, rec *metrics.Recorder, logger *zap.Logger) *pipeline.Driver {
	clock := system.New()

	var fetcher scrape.Fetcher = collyfetcher.New(collyfetcher.Config{
		UserAgent:     cfg.Scrape.UserAgent,
		RespectRobots: cfg.Scrape.RespectRobots,
		Timeout:       cfg.Scrape.Timeout(),
	})
	if cfg.Scrape.MaxRPS > 0 {
		limiter := ratelimit.New(ratelimit.Config{RPS: cfg.Scrape.MaxRPS, Burst: cfg.Scrape.Burst})
		fetcher = ratelimit.Wrap(fetcher, limiter, logger.Named("ratelimit"))
	}
	extractor := scrape.NewSiteExtractor(fetcher, scrape.Config{
		MinDelay: cfg.Scrape.MinDelay(),
		MaxDelay: cfg.Scrape.MaxDelay(),
	}, rec, logger.Named("scrape"))

	sinks := []load.Sink{
		csvfile.New(blobs, clock, logger.Named("csv")),
		sheets.New(sheets.Config{
			CredentialsPath: cfg.Sheets.CredentialsPath,
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			SheetName:       cfg.Sheets.SheetName,
		}, nil, logger.Named("sheets")),
		sinkpostgres.New(sinkpostgres.Params{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			Name:     cfg.DB.Name,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			SSLMode:  cfg.DB.SSLMode,
			Table:    cfg.DB.Table,
		}, nil, logger.Named("postgres")),
	}

	return pipeline.New(pipeline.Deps{
		Extractor:   extractor,
		Transformer: transform.New(clock, rec, logger.Named("transform")),
		Loader:      load.NewCoordinator(sinks, rec, logger.Named("load")),
		IDs:         uuid.New(),
		Clock:       clock,
		Metrics:     rec,
		Logger:      logger,
	})
}
