package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cognicore/paramxml/pkg/paramxml/normalize"
	"github.com/cognicore/paramxml/pkg/paramxml/store"
	"github.com/cognicore/paramxml/pkg/paramxml/store/open"
	"github.com/cognicore/paramxml/pkg/paramxml/xmldoc"
)

var errNoDatabase = errors.New("database disabled (--no-db)")

func openStore(ctx context.Context, g *Globals) (store.Store, error) {
	cfg, logger, err := g.load()
	if err != nil {
		return nil, err
	}
	if !cfg.Database.Enabled {
		return nil, errNoDatabase
	}
	logger.Debug("connecting to database", "db", open.Describe(cfg.Database))
	return open.Open(ctx, cfg.Database)
}

// ParamsCmd lists the parameter catalogue
type ParamsCmd struct{}

func (c *ParamsCmd) Run(g *Globals) error {
	ctx := context.Background()
	st, err := openStore(ctx, g)
	if err != nil {
		return err
	}
	defer st.Close()

	params, err := st.ListParameters(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTAG")
	for _, p := range params {
		fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.SourceName, p.TagName)
	}
	return w.Flush()
}

// DocsCmd groups the document commands
type DocsCmd struct {
	List DocsListCmd `cmd:"" default:"1" help:"List recent documents"`
	Show DocsShowCmd `cmd:"" help:"Print a stored document"`
}

// DocsListCmd lists recent documents, newest first
type DocsListCmd struct {
	Limit int `name:"limit" short:"n" default:"20" help:"Maximum documents to list"`
}

func (c *DocsListCmd) Run(g *Globals) error {
	ctx := context.Background()
	st, err := openStore(ctx, g)
	if err != nil {
		return err
	}
	defer st.Close()

	docs, err := st.ListDocuments(ctx, c.Limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tFILE\tNAME")
	for _, d := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.CreatedAt.Local().Format(time.DateTime), d.OriginalFilename, d.Name)
	}
	return w.Flush()
}

// DocsShowCmd prints one document and the tags it contains
type DocsShowCmd struct {
	ID string `arg:"" help:"Document ID"`
}

func (c *DocsShowCmd) Run(g *Globals) error {
	ctx := context.Background()
	st, err := openStore(ctx, g)
	if err != nil {
		return err
	}
	defer st.Close()

	doc, found, err := st.GetDocument(ctx, c.ID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: document %s", store.ErrNotFound, c.ID)
	}

	tags, err := xmldoc.Tags(doc.XML)
	if err != nil {
		return fmt.Errorf("document %s: %w", c.ID, err)
	}

	fmt.Printf("%s (%s)\n", doc.Name, doc.OriginalFilename)
	fmt.Printf("tags: %s\n\n", strings.Join(tags, ", "))
	fmt.Println(doc.XML)
	return nil
}

// NormalizeCmd prints the tag each label translates to
type NormalizeCmd struct {
	Labels []string `arg:"" help:"Parameter labels"`
}

func (c *NormalizeCmd) Run() error {
	for _, label := range c.Labels {
		tag := normalize.Normalize(label)
		if !normalize.IsValidTag(tag) {
			fmt.Printf("%s\t(no valid tag: %q)\n", label, tag)
			continue
		}
		fmt.Printf("%s\t%s\n", label, tag)
	}
	return nil
}
