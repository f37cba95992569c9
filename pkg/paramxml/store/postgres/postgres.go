package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/cognicore/paramxml/pkg/paramxml/store"
	"github.com/cognicore/paramxml/pkg/paramxml/store/sqlstore"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS parameters (
	id BIGSERIAL PRIMARY KEY,
	source_name VARCHAR(255) NOT NULL,
	name_key VARCHAR(255) NOT NULL,
	tag_name VARCHAR(255) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS parameters_name_key ON parameters (name_key)`,
	`CREATE TABLE IF NOT EXISTS documents (
	id CHAR(26) PRIMARY KEY,
	original_filename VARCHAR(255) NOT NULL,
	name VARCHAR(255) NOT NULL,
	xml_content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS documents_created_at ON documents (created_at)`,
}

// Dialect is the PostgreSQL flavour of the shared SQL store.
var Dialect = sqlstore.Dialect{
	Name:    "postgres",
	Schema:  schema,
	Rebind:  sqlstore.Dollar,
	TimeArg: sqlstore.NativeTime,
}

// Open connects to PostgreSQL through the pgx driver, verifies the
// connection and creates the schema.
func Open(ctx context.Context, dsn string) (store.Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	st := sqlstore.New(db, Dialect)
	if err := st.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return st, nil
}

// DSN builds a postgres:// connection URL from its parts.
func DSN(user, password, host string, port int, name string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, password),
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + name,
	}
	return u.String()
}

// Redact hides the password of a connection URL for display. Strings that
// do not parse as URLs are returned with everything before '@' removed.
func Redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		for i := len(dsn) - 1; i >= 0; i-- {
			if dsn[i] == '@' {
				return dsn[i+1:]
			}
		}
		return dsn
	}
	return u.Redacted()
}
