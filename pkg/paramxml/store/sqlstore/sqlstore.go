// Package sqlstore implements store.Store over database/sql. The sqlite and
// postgres packages supply the connection and a Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cognicore/paramxml/pkg/paramxml/store"
)

const defaultListLimit = 20

// textTimeLayout is fixed width so stored timestamps sort chronologically.
const textTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Dialect captures what differs between SQL backends.
type Dialect struct {
	Name string
	// Schema is executed statement by statement; every statement must be
	// idempotent.
	Schema []string
	// Rebind rewrites '?' placeholders into the backend's form.
	Rebind func(query string) string
	// TimeArg converts a timestamp into a query argument.
	TimeArg func(t time.Time) any
}

// Question leaves '?' placeholders as they are.
func Question(query string) string { return query }

// Dollar numbers placeholders as $1, $2, ...
func Dollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TextTime stores timestamps as RFC 3339 text in UTC.
func TextTime(t time.Time) any { return t.UTC().Format(textTimeLayout) }

// NativeTime passes timestamps to the driver unchanged.
func NativeTime(t time.Time) any { return t.UTC() }

// Store implements store.Store on a *sql.DB
type Store struct {
	db  *sql.DB
	d   Dialect
	now func() time.Time
}

// New wraps db. The schema is not touched; call InitSchema.
func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, d: d, now: time.Now}
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// InitSchema creates tables and indexes if they don't exist
func (s *Store) InitSchema(ctx context.Context) error {
	for _, stmt := range s.d.Schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s schema: %w", s.d.Name, err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertParameter returns the parameter whose source name matches
// sourceName ignoring case, creating it when absent. It is a single
// statement, so concurrent callers converge on one row. An existing row
// keeps its original source and tag names.
func (s *Store) UpsertParameter(ctx context.Context, sourceName, tagName string) (store.Parameter, error) {
	if err := store.ValidateParameter(sourceName, tagName); err != nil {
		return store.Parameter{}, err
	}

	const stmt = `
INSERT INTO parameters (source_name, name_key, tag_name, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (name_key) DO UPDATE SET name_key = excluded.name_key
RETURNING id, source_name, tag_name, created_at;
`
	var p store.Parameter
	err := s.db.QueryRowContext(
		ctx,
		s.d.Rebind(stmt),
		sourceName,
		store.NameKey(sourceName),
		tagName,
		s.d.TimeArg(s.now()),
	).Scan(&p.ID, &p.SourceName, &p.TagName, timestamp{&p.CreatedAt})
	if err != nil {
		return store.Parameter{}, fmt.Errorf("upsert parameter %q: %w", sourceName, err)
	}
	return p, nil
}

// GetParameter looks a parameter up by source name, ignoring case
func (s *Store) GetParameter(ctx context.Context, sourceName string) (store.Parameter, bool, error) {
	const q = `SELECT id, source_name, tag_name, created_at FROM parameters WHERE name_key = ?`

	var p store.Parameter
	err := s.db.QueryRowContext(ctx, s.d.Rebind(q), store.NameKey(sourceName)).
		Scan(&p.ID, &p.SourceName, &p.TagName, timestamp{&p.CreatedAt})
	if errors.Is(err, sql.ErrNoRows) {
		return store.Parameter{}, false, nil
	}
	if err != nil {
		return store.Parameter{}, false, fmt.Errorf("get parameter %q: %w", sourceName, err)
	}
	return p, true, nil
}

// ListParameters returns every parameter in creation order
func (s *Store) ListParameters(ctx context.Context) ([]store.Parameter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, source_name, tag_name, created_at FROM parameters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list parameters: %w", err)
	}
	defer rows.Close()

	var out []store.Parameter
	for rows.Next() {
		var p store.Parameter
		if err := rows.Scan(&p.ID, &p.SourceName, &p.TagName, timestamp{&p.CreatedAt}); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaveDocument inserts a new document record. Documents are never merged:
// converting the same file twice stores two rows.
func (s *Store) SaveDocument(ctx context.Context, d store.Document) (store.Document, error) {
	if err := store.ValidateDocument(d); err != nil {
		return store.Document{}, err
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now()
	}
	d.CreatedAt = d.CreatedAt.UTC()
	if d.ID == "" {
		d.ID = store.NewDocumentID(d.CreatedAt)
	}

	const stmt = `
INSERT INTO documents (id, original_filename, name, xml_content, created_at)
VALUES (?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(
		ctx,
		s.d.Rebind(stmt),
		d.ID,
		d.OriginalFilename,
		d.Name,
		d.XML,
		s.d.TimeArg(d.CreatedAt),
	)
	if err != nil {
		return store.Document{}, fmt.Errorf("save document %q: %w", d.OriginalFilename, err)
	}
	return d, nil
}

// GetDocument retrieves a document by ID
func (s *Store) GetDocument(ctx context.Context, id string) (store.Document, bool, error) {
	const q = `SELECT id, original_filename, name, xml_content, created_at FROM documents WHERE id = ?`

	var d store.Document
	err := s.db.QueryRowContext(ctx, s.d.Rebind(q), id).
		Scan(&d.ID, &d.OriginalFilename, &d.Name, &d.XML, timestamp{&d.CreatedAt})
	if errors.Is(err, sql.ErrNoRows) {
		return store.Document{}, false, nil
	}
	if err != nil {
		return store.Document{}, false, fmt.Errorf("get document %q: %w", id, err)
	}
	return d, true, nil
}

// ListDocuments returns the most recent documents first
func (s *Store) ListDocuments(ctx context.Context, limit int) ([]store.Document, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	const q = `
SELECT id, original_filename, name, xml_content, created_at
FROM documents
ORDER BY created_at DESC, id DESC
LIMIT ?;
`
	rows, err := s.db.QueryContext(ctx, s.d.Rebind(q), limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []store.Document
	for rows.Next() {
		var d store.Document
		if err := rows.Scan(&d.ID, &d.OriginalFilename, &d.Name, &d.XML, timestamp{&d.CreatedAt}); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// timestamp scans either a native time or RFC 3339 text.
type timestamp struct{ t *time.Time }

func (ts timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*ts.t = time.Time{}
	case time.Time:
		*ts.t = v.UTC()
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
	return nil
}

func (ts timestamp) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	*ts.t = t.UTC()
	return nil
}
