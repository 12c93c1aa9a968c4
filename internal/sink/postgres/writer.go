// Package postgres loads the normalized table into a relational table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/fashion-etl/internal/product"
	pgstore "github.com/JakeFAU/fashion-etl/internal/storage/postgres"
)

// ErrIncompleteConfig reports missing connection parameters.
var ErrIncompleteConfig = errors.New("incomplete database configuration")

// Params are the connection settings for the target database.
type Params struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Table    string
}

// Validate ensures every required parameter is present.
func (p Params) Validate() error {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"host", p.Host},
		{"port", p.Port},
		{"name", p.Name},
		{"user", p.User},
		{"password", p.Password},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteConfig, strings.Join(missing, ", "))
	}
	if port, err := strconv.Atoi(p.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid database port %q", p.Port)
	}
	return nil
}

// DSN renders the parameters as a postgres:// URL.
func (p Params) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   net.JoinHostPort(p.Host, p.Port),
		Path:   "/" + p.Name,
	}
	if p.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {p.SSLMode}}.Encode()
	}
	return u.String()
}

// Store persists tables.
type Store interface {
	SaveTable(ctx context.Context, table product.Table) (int64, error)
	Close()
}

// Connector opens a Store for the given parameters.
type Connector func(ctx context.Context, p Params) (Store, error)

// Connect validates p and opens a pooled ProductStore.
func Connect(ctx context.Context, p Params) (Store, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	store, err := pgstore.NewProductStore(ctx, pgstore.StoreConfig{DSN: p.DSN(), Table: p.Table})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Writer appends tables to the database, one connection per write.
type Writer struct {
	params  Params
	connect Connector
	logger  *zap.Logger
}

// New constructs a Writer. A nil connect defaults to Connect.
func New(params Params, connect Connector, logger *zap.Logger) *Writer {
	if connect == nil {
		connect = Connect
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{params: params, connect: connect, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (*Writer) Name() string { return "postgres" }

// Write connects, appends every row in one transaction, and disconnects.
func (w *Writer) Write(ctx context.Context, table product.Table) bool {
	store, err := w.connect(ctx, w.params)
	if err != nil {
		w.logger.Error("Database connection or operation error", zap.Error(err))
		return false
	}
	defer store.Close()

	n, err := store.SaveTable(ctx, table)
	if err != nil {
		w.logger.Error("Database connection or operation error", zap.Error(err))
		return false
	}
	w.logger.Info("Data successfully saved to PostgreSQL",
		zap.Int64("rows", n),
		zap.String("host", w.params.Host),
		zap.String("database", w.params.Name),
	)
	return true
}
