// Package batch converts every text file of a directory, persisting and
// writing the results.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/paramxml/pkg/paramxml/pipeline"
	"github.com/cognicore/paramxml/pkg/paramxml/source"
	"github.com/cognicore/paramxml/pkg/paramxml/store"
)

// Options controls a directory run
type Options struct {
	Dir       string
	XMLDir    string // empty writes XML beside each source file
	Encoding  string
	OutputXML bool
	Workers   int
}

// Failure records a file that could not be converted
type Failure struct {
	Path string
	Err  error
}

// Summary reports the outcome of a run
type Summary struct {
	Found     int
	Processed int
	Failed    int
	Failures  []Failure // sorted by path
}

// Runner drives the pipeline over a directory. The store is optional.
type Runner struct {
	pipeline *pipeline.Pipeline
	store    store.Store
	logger   *slog.Logger
}

// NewRunner creates a runner. A nil store disables persistence and a nil
// logger discards output.
func NewRunner(p *pipeline.Pipeline, st store.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{pipeline: p, store: st, logger: logger}
}

// Run converts every *.txt file under opts.Dir. Failing files are logged
// and counted; the error return is reserved for run-level failures.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	files, err := source.FindTextFiles(opts.Dir)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Found: len(files)}
	if len(files) == 0 {
		r.logger.Warn("no .txt files found", "dir", opts.Dir)
		return sum, nil
	}
	r.logger.Info("starting run", "dir", opts.Dir, "files", len(files))

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(workers)

	// Per-file failures are recorded in sum; only cancellation reaches Wait.
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := r.convert(ctx, path, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.logger.Error("conversion failed", "path", path, "err", err)
				sum.Failed++
				sum.Failures = append(sum.Failures, Failure{Path: path, Err: err})
				return nil
			}
			sum.Processed++
			return nil
		})
	}
	waitErr := g.Wait()

	sort.Slice(sum.Failures, func(i, j int) bool {
		return sum.Failures[i].Path < sum.Failures[j].Path
	})

	if waitErr != nil {
		return sum, waitErr
	}
	if err := ctx.Err(); err != nil {
		return sum, err
	}

	r.logger.Info("run complete", "processed", sum.Processed, "failed", sum.Failed)
	return sum, nil
}

// convert runs one file: read, process, persist, write.
func (r *Runner) convert(ctx context.Context, path string, opts Options) error {
	text, err := source.ReadText(path, opts.Encoding)
	if err != nil {
		return err
	}

	res, err := r.pipeline.Process(text)
	if err != nil {
		return fmt.Errorf("process: %w", err)
	}
	r.logger.Debug("parsed", "path", path, "title", res.Title, "params", len(res.Raw))
	for _, s := range res.Skipped {
		r.logger.Warn("skipped label without a valid tag", "path", path, "label", s)
	}

	if r.store != nil {
		for _, l := range res.Labels {
			if _, err := r.store.UpsertParameter(ctx, l.Source, l.Tag); err != nil {
				return fmt.Errorf("store parameter %q: %w", l.Source, err)
			}
		}
		doc, err := r.store.SaveDocument(ctx, store.Document{
			OriginalFilename: filepath.Base(path),
			Name:             res.Title,
			XML:              res.XML,
		})
		if err != nil {
			return fmt.Errorf("store document: %w", err)
		}
		r.logger.Debug("saved document", "path", path, "id", doc.ID)
	}

	if opts.OutputXML {
		out := source.XMLPath(path, opts.XMLDir)
		if err := source.WriteXML(out, res.XML); err != nil {
			return fmt.Errorf("write xml: %w", err)
		}
		r.logger.Debug("wrote xml", "path", path, "xml", out)
	}

	r.logger.Info("converted", "path", path, "title", res.Title, "tags", len(res.Tags))
	return nil
}
