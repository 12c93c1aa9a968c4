// Package postgres provides Postgres-backed persistence for normalized rows.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/fashion-etl/internal/product"
)

// DefaultTable is the table rows are appended to.
const DefaultTable = "fashion_products"

// maxBatchRows keeps each INSERT below the 65535 bind-parameter limit.
const maxBatchRows = 1000

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// columnTypes mirrors product.Columns; id is generated.
var columnTypes = map[string]string{
	product.ColumnTitle:     "VARCHAR(255) NOT NULL",
	product.ColumnPrice:     "NUMERIC NOT NULL",
	product.ColumnRating:    "NUMERIC",
	product.ColumnColors:    "INTEGER",
	product.ColumnSize:      "VARCHAR(50)",
	product.ColumnGender:    "VARCHAR(50) NOT NULL",
	product.ColumnTimestamp: "TIMESTAMP NOT NULL",
}

// StoreConfig controls the Postgres connection pool used for product rows.
type StoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type txBeginner interface {
	Begin(context.Context) (pgx.Tx, error)
	Close()
}

// ProductStore appends normalized rows to a Postgres table.
type ProductStore struct {
	pool      txBeginner
	table     string
	batchRows int
}

// NewProductStore creates a Postgres-backed ProductStore using the provided config.
func NewProductStore(ctx context.Context, cfg StoreConfig) (*ProductStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	table, err := resolveTable(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &ProductStore{pool: pool, table: table, batchRows: maxBatchRows}, nil
}

// NewProductStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewProductStoreWithPool(pool txBeginner, table string) (*ProductStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	resolved, err := resolveTable(table)
	if err != nil {
		return nil, err
	}
	return &ProductStore{pool: pool, table: resolved, batchRows: maxBatchRows}, nil
}

func resolveTable(table string) (string, error) {
	if table == "" {
		table = DefaultTable
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *ProductStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// SaveTable creates the table if needed and appends every row, all inside one
// transaction. It returns the number of inserted rows.
func (s *ProductStore) SaveTable(ctx context.Context, table product.Table) (n int64, err error) {
	if s == nil || s.pool == nil {
		return 0, fmt.Errorf("product store is not configured")
	}
	args, err := rowArgs(table.Rows)
	if err != nil {
		return 0, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
		}
	}()

	if _, err = tx.Exec(ctx, createTableSQL(s.table)); err != nil {
		return 0, fmt.Errorf("create table %s: %w", s.table, err)
	}

	width := len(product.Columns())
	for start := 0; start < len(table.Rows); start += s.batchRows {
		end := min(start+s.batchRows, len(table.Rows))
		tag, execErr := tx.Exec(ctx, insertSQL(s.table, end-start), args[start*width:end*width]...)
		if execErr != nil {
			err = fmt.Errorf("insert rows %d-%d: %w", start, end-1, execErr)
			return 0, err
		}
		n += tag.RowsAffected()
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return n, nil
}

func rowArgs(rows []product.Row) ([]any, error) {
	args := make([]any, 0, len(rows)*len(product.Columns()))
	for i, r := range rows {
		ts, err := time.Parse(product.TimestampLayout, r.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("row %d timestamp %q: %w", i, r.Timestamp, err)
		}
		args = append(args, r.Title, r.Price, r.Rating, r.Colors, r.Size, r.Gender, ts)
	}
	return args, nil
}

func quotedColumns() []string {
	cols := product.Columns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return quoted
}

func createTableSQL(table string) string {
	cols := product.Columns()
	defs := make([]string, 0, len(cols)+1)
	defs = append(defs, pgx.Identifier{"id"}.Sanitize()+" SERIAL PRIMARY KEY")
	for i, quoted := range quotedColumns() {
		defs = append(defs, quoted+" "+columnTypes[cols[i]])
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		pgx.Identifier{table}.Sanitize(), strings.Join(defs, ",\n\t"))
}

func insertSQL(table string, rows int) string {
	width := len(product.Columns())
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ",
		pgx.Identifier{table}.Sanitize(), strings.Join(quotedColumns(), ", "))
	for r := range rows {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := range width {
			if c > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "$%d", r*width+c+1)
		}
		b.WriteByte(')')
	}
	return b.String()
}
