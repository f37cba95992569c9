package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/paramxml/pkg/paramxml/store"
)

const defaultListLimit = 20

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu        sync.RWMutex
	nextID    int64
	params    map[int64]store.Parameter
	nameIndex map[string]int64
	docs      map[string]store.Document
	now       func() time.Time
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		nextID:    1,
		params:    make(map[int64]store.Parameter),
		nameIndex: make(map[string]int64),
		docs:      make(map[string]store.Document),
		now:       time.Now,
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// UpsertParameter returns the parameter matching sourceName ignoring case,
// creating it when absent.
func (s *Store) UpsertParameter(ctx context.Context, sourceName, tagName string) (store.Parameter, error) {
	if err := store.ValidateParameter(sourceName, tagName); err != nil {
		return store.Parameter{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := store.NameKey(sourceName)
	if id, ok := s.nameIndex[key]; ok {
		return s.params[id], nil
	}

	p := store.Parameter{
		ID:         s.nextID,
		SourceName: sourceName,
		TagName:    tagName,
		CreatedAt:  s.now().UTC(),
	}
	s.nextID++
	s.params[p.ID] = p
	s.nameIndex[key] = p.ID
	return p, nil
}

// GetParameter returns a parameter by source name, ignoring case.
func (s *Store) GetParameter(ctx context.Context, sourceName string) (store.Parameter, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := s.nameIndex[store.NameKey(sourceName)]; ok {
		return s.params[id], true, nil
	}
	return store.Parameter{}, false, nil
}

// ListParameters returns all parameters in creation order.
func (s *Store) ListParameters(ctx context.Context) ([]store.Parameter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Parameter, 0, len(s.params))
	for _, p := range s.params {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveDocument stores a new document.
func (s *Store) SaveDocument(ctx context.Context, d store.Document) (store.Document, error) {
	if err := store.ValidateDocument(d); err != nil {
		return store.Document{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now()
	}
	d.CreatedAt = d.CreatedAt.UTC()
	if d.ID == "" {
		d.ID = store.NewDocumentID(d.CreatedAt)
	}
	s.docs[d.ID] = d
	return d, nil
}

// GetDocument returns a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (store.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[id]
	return d, ok, nil
}

// ListDocuments returns the most recent documents first.
func (s *Store) ListDocuments(ctx context.Context, limit int) ([]store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = defaultListLimit
	}

	out := make([]store.Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
