// Package pipeline sequences one extract, transform, load run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/fashion-etl/internal/load"
	"github.com/JakeFAU/fashion-etl/internal/product"
	"github.com/JakeFAU/fashion-etl/internal/scrape"
)

// Extractor walks the paginated catalog.
type Extractor interface {
	ExtractAll(ctx context.Context, baseURL string, maxPages int) scrape.Result
}

// Transformer normalizes raw records.
type Transformer interface {
	Transform(raw []product.RawProduct) product.Table
}

// Loader fans a table out to the sinks.
type Loader interface {
	LoadAll(ctx context.Context, table product.Table) (bool, []load.Outcome)
}

// IDGenerator produces run identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Recorder receives the run duration.
type Recorder interface {
	ObserveRun(d time.Duration)
}

// Stage names where a run stopped.
const (
	StageExtract   = "extract"
	StageTransform = "transform"
	StageLoad      = "load"
)

// Report summarizes one run.
type Report struct {
	RunID        string
	BaseURL      string
	PagesFetched int
	RawRecords   int
	Rows         int
	Sinks        []load.Outcome
	// Stage is the last stage reached.
	Stage    string
	OK       bool
	Duration time.Duration
}

// Driver runs the three stages in order.
type Driver struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	ids         IDGenerator
	clock       Clock
	metrics     Recorder
	logger      *zap.Logger
}

// Deps bundles the Driver's collaborators.
type Deps struct {
	Extractor   Extractor
	Transformer Transformer
	Loader      Loader
	IDs         IDGenerator
	Clock       Clock
	Metrics     Recorder
	Logger      *zap.Logger
}

// New constructs a Driver.
func New(deps Deps) *Driver {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		extractor:   deps.Extractor,
		transformer: deps.Transformer,
		loader:      deps.Loader,
		ids:         deps.IDs,
		clock:       deps.Clock,
		metrics:     deps.Metrics,
		logger:      logger,
	}
}

// Run executes the pipeline and reports overall success.
func (d *Driver) Run(ctx context.Context, baseURL string, maxPages int) bool {
	return d.RunReport(ctx, baseURL, maxPages).OK
}

// RunReport executes the pipeline and returns its summary. It never panics.
func (d *Driver) RunReport(ctx context.Context, baseURL string, maxPages int) (report Report) {
	report.BaseURL = baseURL
	report.RunID = d.runID()
	logger := d.logger.With(zap.String("run_id", report.RunID))

	start := d.now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Pipeline execution failed", zap.Error(fmt.Errorf("panic: %v", r)))
			report.OK = false
		}
		report.Duration = d.now().Sub(start)
		if d.metrics != nil {
			d.metrics.ObserveRun(report.Duration)
		}
		logger.Info("ETL pipeline finished",
			zap.Bool("success", report.OK),
			zap.String("stage", report.Stage),
			zap.Duration("duration", report.Duration),
		)
	}()

	logger.Info("Starting ETL pipeline", zap.String("url", baseURL), zap.Int("max_pages", maxPages))

	report.Stage = StageExtract
	logger.Info("Step 1: Extracting data")
	extracted := d.extractor.ExtractAll(ctx, baseURL, maxPages)
	report.PagesFetched = extracted.PagesFetched
	report.RawRecords = len(extracted.Products)
	if len(extracted.Products) == 0 {
		logger.Error("Extraction failed: No data extracted")
		return report
	}

	report.Stage = StageTransform
	logger.Info("Step 2: Transforming data")
	table := d.transformer.Transform(extracted.Products)
	report.Rows = table.Len()
	if table.Empty() {
		logger.Error("Transformation failed: No data after transformation")
		return report
	}

	report.Stage = StageLoad
	logger.Info("Step 3: Loading data")
	ok, outcomes := d.loader.LoadAll(ctx, table)
	report.Sinks = outcomes
	report.OK = ok
	if !ok {
		logger.Warn("Some data loading operations failed")
	}
	return report
}

func (d *Driver) runID() string {
	if d.ids == nil {
		return ""
	}
	id, err := d.ids.NewID()
	if err != nil {
		d.logger.Warn("Failed to generate run id", zap.Error(err))
		return ""
	}
	return id
}

func (d *Driver) now() time.Time {
	if d.clock == nil {
		return time.Now()
	}
	return d.clock.Now()
}
