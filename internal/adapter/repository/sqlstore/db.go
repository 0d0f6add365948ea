package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// timeLayout is fixed width so TEXT timestamps sort chronologically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var placeholder = regexp.MustCompile(`\$(\d+)`)

// DB wraps the database connection
type DB struct {
	*sql.DB
	driver string
}

// Open creates a new database connection
// For postgres, dsn should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=portfoy sslmode=disable"
// For sqlite, dsn is the database file path
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dsn != ":memory:" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		if !strings.Contains(dsn, "?") {
			// WAL for concurrent readers, busy timeout for the scheduler writing alongside the API
			dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer
		conn.SetMaxOpenConns(1)
	}

	return &DB{DB: conn, driver: driver}, nil
}

// Driver returns the name of the SQL driver in use
func (db *DB) Driver() string {
	return db.driver
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Migrate creates the schema if it does not exist yet
func (db *DB) Migrate(ctx context.Context) error {
	blob := "BYTEA"
	if db.driver == DriverSQLite {
		blob = "BLOB"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS assets (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			asset_type TEXT NOT NULL,
			amount     TEXT NOT NULL,
			buy_price  TEXT NOT NULL,
			target     TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS targets (
			asset_type TEXT PRIMARY KEY,
			target     TEXT NOT NULL,
			position   INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS prices (
			price_key  TEXT NOT NULL,
			source     TEXT NOT NULL,
			price      TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (price_key, source)
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS snapshots (
			snapshot_date TEXT PRIMARY KEY,
			total_value   TEXT NOT NULL,
			distribution  %s NOT NULL
		)`, blob),
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites $N placeholders into the driver's syntax
func (db *DB) rebind(query string) string {
	if db.driver == DriverSQLite {
		return placeholder.ReplaceAllString(query, "?$1")
	}
	return query
}
