package sqlite

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/cognicore/paramxml/pkg/paramxml/store"
	"github.com/cognicore/paramxml/pkg/paramxml/store/sqlstore"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS parameters (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_name TEXT NOT NULL,
	name_key TEXT NOT NULL,
	tag_name TEXT NOT NULL,
	created_at TEXT NOT NULL
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS parameters_name_key ON parameters (name_key)`,
	`CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	original_filename TEXT NOT NULL,
	name TEXT NOT NULL,
	xml_content TEXT NOT NULL,
	created_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS documents_created_at ON documents (created_at)`,
}

// Dialect is the SQLite flavour of the shared SQL store.
var Dialect = sqlstore.Dialect{
	Name:    "sqlite",
	Schema:  schema,
	Rebind:  sqlstore.Question,
	TimeArg: sqlstore.TextTime,
}

// Open opens a SQLite database with WAL mode enabled and creates the
// schema. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// A single connection serializes writers and keeps the pragmas below in
	// effect for every statement.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, err
	}

	st := sqlstore.New(db, Dialect)
	if err := st.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return st, nil
}
