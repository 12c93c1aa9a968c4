// Package sheets overwrites a spreadsheet range with the normalized table.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/JakeFAU/fashion-etl/internal/product"
)

var (
	// ErrMissingConfig reports an unset credentials path or spreadsheet id.
	ErrMissingConfig = errors.New("google sheets credentials path and spreadsheet id are required")
	// ErrCredentialsNotFound reports a credentials path that does not exist.
	ErrCredentialsNotFound = errors.New("google sheets credentials file not found")
)

// DefaultSheetName is the tab written when none is configured.
const DefaultSheetName = "fashion"

// Config locates the target spreadsheet.
type Config struct {
	CredentialsPath string
	SpreadsheetID   string
	SheetName       string
}

// ValuesUpdater overwrites a range with a grid of values and returns the
// number of cells updated.
type ValuesUpdater interface {
	UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]any) (int64, error)
}

// UpdaterFactory builds a ValuesUpdater authenticated with the service-account
// key at credentialsPath.
type UpdaterFactory func(ctx context.Context, credentialsPath string) (ValuesUpdater, error)

// ServiceUpdater writes through the Sheets v4 API.
type ServiceUpdater struct {
	svc *gsheets.Service
}

// NewServiceUpdater creates a Sheets API client.
func NewServiceUpdater(ctx context.Context, opts ...option.ClientOption) (*ServiceUpdater, error) {
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &ServiceUpdater{svc: svc}, nil
}

// UpdateValues writes values verbatim, without formula or number parsing.
func (u *ServiceUpdater) UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]any) (int64, error) {
	resp, err := u.svc.Spreadsheets.Values.
		Update(spreadsheetID, rng, &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("update values: %w", err)
	}
	return resp.UpdatedCells, nil
}

// ServiceFactory returns an UpdaterFactory using service-account credentials.
// extra options are appended after the credential and scope options.
func ServiceFactory(extra ...option.ClientOption) UpdaterFactory {
	return func(ctx context.Context, credentialsPath string) (ValuesUpdater, error) {
		opts := append([]option.ClientOption{
			option.WithCredentialsFile(credentialsPath),
			option.WithScopes(gsheets.SpreadsheetsScope),
		}, extra...)
		return NewServiceUpdater(ctx, opts...)
	}
}

// Writer loads tables into a spreadsheet.
type Writer struct {
	cfg     Config
	factory UpdaterFactory
	logger  *zap.Logger
}

// New constructs a Writer. A nil factory defaults to ServiceFactory().
func New(cfg Config, factory UpdaterFactory, logger *zap.Logger) *Writer {
	if cfg.SheetName == "" {
		cfg.SheetName = DefaultSheetName
	}
	if factory == nil {
		factory = ServiceFactory()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{cfg: cfg, factory: factory, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (*Writer) Name() string { return "sheets" }

// Check validates the configuration without contacting the API.
func (c Config) Check() error {
	if c.CredentialsPath == "" || c.SpreadsheetID == "" {
		return ErrMissingConfig
	}
	if _, err := os.Stat(c.CredentialsPath); err != nil {
		return fmt.Errorf("%w: %s", ErrCredentialsNotFound, c.CredentialsPath)
	}
	return nil
}

// Write replaces <sheet>!A1:<last column><rows> with the header and rows.
func (w *Writer) Write(ctx context.Context, table product.Table) bool {
	if err := w.cfg.Check(); err != nil {
		w.logger.Error("Error saving to Google Sheets", zap.Error(err))
		return false
	}
	updater, err := w.factory(ctx, w.cfg.CredentialsPath)
	if err != nil {
		w.logger.Error("Error saving to Google Sheets", zap.Error(err))
		return false
	}

	values := Values(table)
	rng := Range(w.cfg.SheetName, len(table.Columns()), len(values))
	cells, err := updater.UpdateValues(ctx, w.cfg.SpreadsheetID, rng, values)
	if err != nil {
		w.logger.Error("Error saving to Google Sheets", zap.String("range", rng), zap.Error(err))
		return false
	}
	w.logger.Info("Data successfully saved to Google Sheets",
		zap.String("range", rng),
		zap.Int64("updated_cells", cells),
	)
	return true
}

// Values returns the header followed by every row, in column order.
func Values(table product.Table) [][]any {
	cols := table.Columns()
	values := make([][]any, 0, table.Len()+1)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	values = append(values, header)
	for _, r := range table.Rows {
		values = append(values, r.Values())
	}
	return values
}

// Range returns the A1 range covering cols columns and rows rows.
func Range(sheet string, cols, rows int) string {
	return fmt.Sprintf("%s!A1:%s%d", sheet, ColumnLetter(cols), rows)
}

// ColumnLetter converts a 1-based column index to its letter label
// (1 -> A, 27 -> AA).
func ColumnLetter(n int) string {
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('A' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}
