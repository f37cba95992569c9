package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Store is the main interface for persisting the parameter vocabulary and
// generated documents
type Store interface {
	Close() error

	// Parameters
	UpsertParameter(ctx context.Context, sourceName, tagName string) (Parameter, error)
	GetParameter(ctx context.Context, sourceName string) (Parameter, bool, error)
	ListParameters(ctx context.Context) ([]Parameter, error)

	// Documents
	SaveDocument(ctx context.Context, d Document) (Document, error)
	GetDocument(ctx context.Context, id string) (Document, bool, error)
	ListDocuments(ctx context.Context, limit int) ([]Document, error)
}

// Parameter is one entry of the label vocabulary. SourceName is the label
// as first seen; lookups ignore its case.
type Parameter struct {
	ID         int64
	SourceName string
	TagName    string
	CreatedAt  time.Time
}

// Document is a converted source file
type Document struct {
	ID               string
	OriginalFilename string
	Name             string
	XML              string
	CreatedAt        time.Time
}

// NameKey folds a source name for case-insensitive lookup. The folding is
// done here rather than in SQL because SQLite's lower() only handles ASCII.
func NameKey(name string) string {
	return strings.ToLower(name)
}

// ValidateParameter checks the arguments of UpsertParameter.
func ValidateParameter(sourceName, tagName string) error {
	if strings.TrimSpace(sourceName) == "" {
		return fmt.Errorf("%w: parameter source name is required", ErrInvalidInput)
	}
	if tagName == "" {
		return fmt.Errorf("%w: parameter tag name is required", ErrInvalidInput)
	}
	return nil
}

// ValidateDocument checks the fields SaveDocument requires.
func ValidateDocument(d Document) error {
	if strings.TrimSpace(d.OriginalFilename) == "" {
		return fmt.Errorf("%w: document filename is required", ErrInvalidInput)
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: document name is required", ErrInvalidInput)
	}
	if d.XML == "" {
		return fmt.Errorf("%w: document XML is required", ErrInvalidInput)
	}
	return nil
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewDocumentID returns a new time-ordered document identifier.
func NewDocumentID(now time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), idEntropy).String()
}
