// Package sqlite provides the SQLite-backed exogenous catalog.
//
// The catalog is a startup-time collaborator: the sim service reads the
// exogenous table from it once while booting and never touches it again.
// Session state is never persisted here.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/louisbranch/growthlab/internal/econ"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS exogenous_rows (
	round INTEGER PRIMARY KEY,
	tilde_e REAL NOT NULL,
	y_star REAL NOT NULL,
	h REAL NOT NULL,
	fdi_ratio REAL NOT NULL
);`

// Catalog is a SQLite-backed store for the exogenous data table.
type Catalog struct {
	sqlDB *sql.DB
}

// Open opens a catalog at the provided path.
func Open(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("catalog path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create catalog schema: %w", err)
	}

	return &Catalog{sqlDB: sqlDB}, nil
}

// Close closes the underlying SQLite database.
func (c *Catalog) Close() error {
	if c == nil || c.sqlDB == nil {
		return nil
	}
	return c.sqlDB.Close()
}

// WriteTable replaces the catalog's contents with the given table, keyed by
// round index.
func (c *Catalog) WriteTable(ctx context.Context, table econ.Table) error {
	if c == nil || c.sqlDB == nil {
		return fmt.Errorf("catalog is not configured")
	}
	if len(table) == 0 {
		return fmt.Errorf("exogenous table is empty")
	}

	tx, err := c.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog write: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM exogenous_rows`); err != nil {
		return fmt.Errorf("clear exogenous rows: %w", err)
	}
	for round, row := range table {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO exogenous_rows (round, tilde_e, y_star, h, fdi_ratio) VALUES (?, ?, ?, ?, ?)`,
			round, row.TildeE, row.YStar, row.H, row.FDIRatio,
		)
		if err != nil {
			return fmt.Errorf("insert exogenous row %d: %w", round, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog write: %w", err)
	}
	return nil
}

// LoadTable reads the full exogenous table ordered by round index.
func (c *Catalog) LoadTable(ctx context.Context) (econ.Table, error) {
	if c == nil || c.sqlDB == nil {
		return nil, fmt.Errorf("catalog is not configured")
	}

	rows, err := c.sqlDB.QueryContext(ctx,
		`SELECT tilde_e, y_star, h, fdi_ratio FROM exogenous_rows ORDER BY round`)
	if err != nil {
		return nil, fmt.Errorf("query exogenous rows: %w", err)
	}
	defer rows.Close()

	var table econ.Table
	for rows.Next() {
		var row econ.ExogenousRow
		if err := rows.Scan(&row.TildeE, &row.YStar, &row.H, &row.FDIRatio); err != nil {
			return nil, fmt.Errorf("scan exogenous row: %w", err)
		}
		table = append(table, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read exogenous rows: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("catalog holds no exogenous rows")
	}
	return table, nil
}
