package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/paramxml/pkg/paramxml/pipeline"
	"github.com/cognicore/paramxml/pkg/paramxml/source"
	"github.com/cognicore/paramxml/pkg/paramxml/store"
	"github.com/cognicore/paramxml/pkg/paramxml/store/memstore"
	"github.com/cognicore/paramxml/pkg/paramxml/strategy"
	"github.com/cognicore/paramxml/pkg/paramxml/textparse"
)

const reportXML = "<document>\n    <fio></fio>\n    <data_rozhdeniya></data_rozhdeniya>\n</document>"

func newPipeline() *pipeline.Pipeline {
	splitter, _ := strategy.SplitterFor("none")
	translator, _ := strategy.TranslatorFor("translit")
	return pipeline.New(splitter, translator)
}

func writeInputs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestRunStoresAndWrites(t *testing.T) {
	dir := writeInputs(t, map[string]string{
		"report.txt": "Отчет\n- ФИО;\n- Дата рождения.\n",
		"other.txt":  "Анкета\n- фио;\n",
	})
	st := memstore.New()
	ctx := context.Background()

	sum, err := NewRunner(newPipeline(), st, nil).Run(ctx, Options{Dir: dir, OutputXML: true})
	require.NoError(t, err)
	assert.Equal(t, Summary{Found: 2, Processed: 2}, sum)

	got, err := os.ReadFile(filepath.Join(dir, "report.xml"))
	require.NoError(t, err)
	assert.Equal(t, reportXML, string(got))

	// "ФИО" and "фио" share one row
	params, err := st.ListParameters(ctx)
	require.NoError(t, err)
	assert.Len(t, params, 2)

	docs, err := st.ListDocuments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	names := map[string]string{}
	for _, d := range docs {
		names[d.OriginalFilename] = d.Name
	}
	assert.Equal(t, map[string]string{"report.txt": "Отчет", "other.txt": "Анкета"}, names)
}

func TestRunXMLDir(t *testing.T) {
	dir := writeInputs(t, map[string]string{"report.txt": "Отчет\n- ФИО;\n- Дата рождения.\n"})
	out := filepath.Join(t.TempDir(), "xml")

	_, err := NewRunner(newPipeline(), nil, nil).Run(context.Background(), Options{Dir: dir, OutputXML: true, XMLDir: out})
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(out, "report.xml"))
	require.NoError(t, err)
	assert.Equal(t, reportXML, string(got))
	assert.NoFileExists(t, filepath.Join(dir, "report.xml"))
}

func TestRunSkipsFailingFiles(t *testing.T) {
	dir := writeInputs(t, map[string]string{
		"a.txt": "Отчет\n- ФИО;\n",
		"b.txt": "",
		"c.txt": "- только пункт;\n",
		"d.txt": "Анкета\n- Адрес;\n",
	})
	st := memstore.New()

	sum, err := NewRunner(newPipeline(), st, nil).Run(context.Background(), Options{Dir: dir, Workers: 3})
	require.NoError(t, err)

	assert.Equal(t, 4, sum.Found)
	assert.Equal(t, 2, sum.Processed)
	assert.Equal(t, 2, sum.Failed)
	require.Len(t, sum.Failures, 2)
	assert.Equal(t, filepath.Join(dir, "b.txt"), sum.Failures[0].Path)
	assert.ErrorIs(t, sum.Failures[0].Err, textparse.ErrEmptyInput)
	assert.Equal(t, filepath.Join(dir, "c.txt"), sum.Failures[1].Path)
	assert.ErrorIs(t, sum.Failures[1].Err, textparse.ErrNoTitle)

	docs, _ := st.ListDocuments(context.Background(), 10)
	assert.Len(t, docs, 2)
}

func TestRunEmptyDirectory(t *testing.T) {
	sum, err := NewRunner(newPipeline(), nil, nil).Run(context.Background(), Options{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
}

func TestRunMissingDirectory(t *testing.T) {
	_, err := NewRunner(newPipeline(), nil, nil).Run(context.Background(), Options{Dir: filepath.Join(t.TempDir(), "nope")})
	assert.ErrorIs(t, err, source.ErrNotDirectory)
}

func TestRunCancelled(t *testing.T) {
	dir := writeInputs(t, map[string]string{"a.txt": "Отчет\n- ФИО;\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := NewRunner(newPipeline(), nil, nil).Run(ctx, Options{Dir: dir})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, sum.Processed)
}

type failingStore struct {
	*memstore.Store
}

var errDown = errors.New("database down")

func (failingStore) SaveDocument(context.Context, store.Document) (store.Document, error) {
	return store.Document{}, errDown
}

func TestRunStoreFailureCountsFile(t *testing.T) {
	dir := writeInputs(t, map[string]string{"a.txt": "Отчет\n- ФИО;\n"})

	sum, err := NewRunner(newPipeline(), failingStore{memstore.New()}, nil).Run(context.Background(), Options{Dir: dir, OutputXML: true})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
	assert.ErrorIs(t, sum.Failures[0].Err, errDown)
	assert.NoFileExists(t, filepath.Join(dir, "a.xml"))
}

type cancellingStore struct {
	*memstore.Store
	cancel context.CancelFunc
}

func (s cancellingStore) SaveDocument(ctx context.Context, d store.Document) (store.Document, error) {
	s.cancel()
	return s.Store.SaveDocument(ctx, d)
}

func TestRunStopsWhenCancelledMidRun(t *testing.T) {
	dir := writeInputs(t, map[string]string{
		"a.txt": "Отчет\n- ФИО;\n",
		"b.txt": "Отчет\n- Адрес;\n",
		"c.txt": "Отчет\n- Телефон;\n",
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	st := cancellingStore{Store: memstore.New(), cancel: cancel}

	sum, err := NewRunner(newPipeline(), st, nil).Run(ctx, Options{Dir: dir, Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, sum.Found)
	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, 0, sum.Failed)
}

func TestRunManyWorkers(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files[name+".txt"] = "Документ " + name + "\n- ФИО;\n- Адрес;\n"
	}
	dir := writeInputs(t, files)
	st := memstore.New()

	sum, err := NewRunner(newPipeline(), st, nil).Run(context.Background(), Options{Dir: dir, Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, 8, sum.Processed)

	params, _ := st.ListParameters(context.Background())
	assert.Len(t, params, 2)
}
