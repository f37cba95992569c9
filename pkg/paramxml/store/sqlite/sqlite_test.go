package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/paramxml/pkg/paramxml/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// TestUpsertParameterCaseInsensitive tests that lookups fold Cyrillic case
func TestUpsertParameterCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	first, err := st.UpsertParameter(ctx, "Дата рождения", "data_rozhdeniya")
	require.NoError(t, err)
	require.NotZero(t, first.ID, "expected a generated ID")
	assert.False(t, first.CreatedAt.IsZero(), "expected CreatedAt to be set")

	again, err := st.UpsertParameter(ctx, "ДАТА РОЖДЕНИЯ", "other_tag")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Дата рождения", again.SourceName, "existing row must keep first names")
	assert.Equal(t, "data_rozhdeniya", again.TagName, "existing row must keep first names")

	got, found, err := st.GetParameter(ctx, "дата рождения")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, first.ID, got.ID)

	params, err := st.ListParameters(ctx)
	require.NoError(t, err)
	assert.Len(t, params, 1)
}

func TestGetParameterMissing(t *testing.T) {
	st := openTestStore(t)

	_, found, err := st.GetParameter(context.Background(), "нет такого")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpsertParameterValidation(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.UpsertParameter(ctx, "  ", "x")
	assert.ErrorIs(t, err, store.ErrInvalidInput, "blank source")
	_, err = st.UpsertParameter(ctx, "ФИО", "")
	assert.ErrorIs(t, err, store.ErrInvalidInput, "blank tag")
}

// TestUpsertParameterConcurrent tests that concurrent upserts converge on one row
func TestUpsertParameterConcurrent(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	names := []string{"ФИО", "фио", "Фио", "фИО"}
	ids := make([]int64, 40)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := st.UpsertParameter(ctx, names[i%len(names)], "fio")
			assert.NoError(t, err)
			ids[i] = p.ID
		}()
	}
	wg.Wait()

	for _, id := range ids {
		require.Equal(t, ids[0], id, "concurrent upserts produced different IDs")
	}

	params, err := st.ListParameters(ctx)
	require.NoError(t, err)
	assert.Len(t, params, 1)
}

func TestListParametersInCreationOrder(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	want := []string{"Имя", "Фамилия", "Отчество"}
	for _, name := range want {
		_, err := st.UpsertParameter(ctx, name, "x_"+name)
		require.NoError(t, err)
	}

	params, err := st.ListParameters(ctx)
	require.NoError(t, err)
	require.Len(t, params, len(want))
	for i, p := range params {
		assert.Equal(t, want[i], p.SourceName, "params[%d]", i)
	}
}

func TestSaveAndGetDocument(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	saved, err := st.SaveDocument(ctx, store.Document{
		OriginalFilename: "report.txt",
		Name:             "Отчет",
		XML:              "<document>\n    <fio></fio>\n</document>",
	})
	require.NoError(t, err)
	assert.Len(t, saved.ID, 26, "expected a ULID")

	got, found, err := st.GetDocument(ctx, saved.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Отчет", got.Name)
	assert.Equal(t, "report.txt", got.OriginalFilename)
	assert.Equal(t, saved.XML, got.XML)
	assert.True(t, got.CreatedAt.Equal(saved.CreatedAt), "CreatedAt = %v, want %v", got.CreatedAt, saved.CreatedAt)

	_, found, err = st.GetDocument(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveDocumentTwiceKeepsBoth(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	doc := store.Document{OriginalFilename: "a.txt", Name: "A", XML: "<document></document>"}
	for i := 0; i < 2; i++ {
		_, err := st.SaveDocument(ctx, doc)
		require.NoError(t, err)
	}

	docs, err := st.ListDocuments(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestSaveDocumentValidation(t *testing.T) {
	st := openTestStore(t)
	_, err := st.SaveDocument(context.Background(), store.Document{OriginalFilename: "a.txt", XML: "<document></document>"})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestListDocumentsNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, name := range []string{"old", "mid", "new"} {
		_, err := st.SaveDocument(ctx, store.Document{
			OriginalFilename: name + ".txt",
			Name:             name,
			XML:              "<document></document>",
			// sub-second offsets exercise ordering of the stored text form
			CreatedAt: base.Add(time.Duration(i) * 150 * time.Millisecond),
		})
		require.NoError(t, err)
	}

	docs, err := st.ListDocuments(ctx, 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "new", docs[0].Name)
	assert.Equal(t, "mid", docs[1].Name)
}

// TestSchemaCreationIdempotent tests that reopening an existing database is safe
func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		st, err := Open(ctx, dbPath)
		require.NoError(t, err, "Open iteration %d", i)
		_, err = st.UpsertParameter(ctx, "ФИО", "fio")
		require.NoError(t, err, "UpsertParameter iteration %d", i)
		st.Close()
	}

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var tables int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 2, tables)

	var params int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM parameters").Scan(&params))
	assert.Equal(t, 1, params, "parameters after reopening")
}

func TestOpenInMemory(t *testing.T) {
	st, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer st.Close()

	_, err = st.UpsertParameter(context.Background(), "ИНН", "inn")
	assert.NoError(t, err)
}
