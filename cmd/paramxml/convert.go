package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/cognicore/paramxml/pkg/paramxml/batch"
	"github.com/cognicore/paramxml/pkg/paramxml/pipeline"
	"github.com/cognicore/paramxml/pkg/paramxml/store"
	"github.com/cognicore/paramxml/pkg/paramxml/store/open"
	"github.com/cognicore/paramxml/pkg/paramxml/strategy"
)

// ConvertCmd converts a directory of text documents
type ConvertCmd struct {
	Directory   string `arg:"" type:"path" help:"Directory with .txt files"`
	Translation string `name:"translation-strategy" help:"Translation strategy (translit, llm)"`
	Splitting   string `name:"splitting-strategy" help:"Splitting strategy (none, llm)"`
	OutputXML   bool   `name:"output-xml" help:"Write an .xml file for every document"`
	XMLDir      string `name:"xml-dir" type:"path" help:"Directory for XML files (default: beside each .txt file)"`
	Encoding    string `name:"encoding" help:"Input encoding label, e.g. utf-8 or windows-1251"`
	Workers     int    `name:"workers" short:"w" help:"Files converted in parallel"`
}

func (c *ConvertCmd) Run(g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}

	if c.Translation != "" {
		if cfg.Translation, err = strategy.ParseTranslation(c.Translation); err != nil {
			return err
		}
	}
	if c.Splitting != "" {
		if cfg.Splitting, err = strategy.ParseSplitting(c.Splitting); err != nil {
			return err
		}
	}
	if c.OutputXML {
		cfg.OutputXML = true
	}
	if c.XMLDir != "" {
		cfg.XMLDir = c.XMLDir
	}
	if c.Encoding != "" {
		cfg.InputEncoding = c.Encoding
	}
	if c.Workers != 0 {
		cfg.Workers = c.Workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var st store.Store
	if cfg.Database.Enabled {
		logger.Debug("connecting to database", "db", open.Describe(cfg.Database))
		st, err = open.Open(ctx, cfg.Database)
		switch {
		case err == nil:
			defer st.Close()
		case cfg.OutputXML:
			logger.Warn("database unavailable, writing XML files only", "err", err)
			st = nil
		default:
			return fmt.Errorf("database connection: %w", err)
		}
	}

	logger.Info("settings",
		"translation", cfg.Translation,
		"splitting", cfg.Splitting,
		"database", st != nil,
		"output_xml", cfg.OutputXML,
		"xml_dir", cfg.XMLDir,
	)

	splitter, err := strategy.NewSplitter(cfg.Splitting)
	if err != nil {
		return err
	}
	translator, err := strategy.NewTranslator(cfg.Translation)
	if err != nil {
		return err
	}

	p := pipeline.New(splitter, translator)
	sum, err := batch.NewRunner(p, st, logger).Run(ctx, batch.Options{
		Dir:       c.Directory,
		XMLDir:    cfg.XMLDir,
		Encoding:  cfg.InputEncoding,
		OutputXML: cfg.OutputXML,
		Workers:   cfg.Workers,
	})
	if err != nil {
		return err
	}

	for _, f := range sum.Failures {
		fmt.Fprintf(os.Stderr, "error: %s: %v\n", f.Path, f.Err)
	}
	fmt.Printf("Processed: %d, Errors: %d\n", sum.Processed, sum.Failed)
	return nil
}
