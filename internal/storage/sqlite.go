package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/manthan/quizbot/internal/poll"
)

type DB struct {
	db *sql.DB
}

func NewDB(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Serialize writers; sqlite allows a single writer anyway.
	db.SetMaxOpenConns(1)

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate creates the questions table and appends any missing header columns.
// Existing columns are never reordered or dropped.
func (d *DB) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS questions (
		row_num INTEGER PRIMARY KEY AUTOINCREMENT
	);
	`
	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	for _, col := range poll.DefaultHeaders {
		_, err := d.db.Exec(fmt.Sprintf(`ALTER TABLE questions ADD COLUMN %s TEXT NOT NULL DEFAULT ''`, quoteIdent(string(col))))
		// Ignore "duplicate column" errors - column already present
		if err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("add column %s: %w", col, err)
		}
	}

	return nil
}

// Columns returns the questions table columns in table order.
func (d *DB) Columns() ([]string, error) {
	rows, err := d.db.Query(`SELECT name FROM pragma_table_info('questions') ORDER BY cid`)
	if err != nil {
		return nil, fmt.Errorf("query table info: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func (d *DB) DB() *sql.DB {
	return d.db
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
