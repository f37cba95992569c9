package pipeline

import (
	"github.com/cognicore/paramxml/pkg/paramxml/normalize"
	"github.com/cognicore/paramxml/pkg/paramxml/strategy"
	"github.com/cognicore/paramxml/pkg/paramxml/textparse"
	"github.com/cognicore/paramxml/pkg/paramxml/xmldoc"
)

// Pipeline orchestrates the conversion flow:
// text → title + labels → split → translate → XML
type Pipeline struct {
	splitter   strategy.Splitter
	translator strategy.Translator
}

// New creates a conversion pipeline with the given strategies
func New(splitter strategy.Splitter, translator strategy.Translator) *Pipeline {
	return &Pipeline{
		splitter:   splitter,
		translator: translator,
	}
}

// Label pairs a sub-label with the tag it was translated to
type Label struct {
	Source string
	Tag    string
}

// Result represents a document after conversion
type Result struct {
	Title   string
	Raw     []string // labels as parsed, before splitting
	Labels  []Label  // sub-labels that made it into the XML
	Tags    []string
	Skipped []string // sub-labels whose translation is not a legal tag
	XML     string
}

// Process runs a document through the full pipeline. Parse errors are
// returned unchanged.
func (p *Pipeline) Process(text string) (Result, error) {
	// 1. Title and raw labels
	raw, err := textparse.Parse(text)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Title: raw.Title,
		Raw:   raw.Parameters,
		Tags:  []string{},
	}

	// 2. Split each label, then translate each sub-label
	for _, param := range raw.Parameters {
		for _, sub := range p.splitter.Split(param) {
			tag := p.translator.Translate(sub)
			if !normalize.IsValidTag(tag) {
				res.Skipped = append(res.Skipped, sub)
				continue
			}
			res.Labels = append(res.Labels, Label{Source: sub, Tag: tag})
			res.Tags = append(res.Tags, tag)
		}
	}

	// 3. Serialize
	res.XML, err = xmldoc.Build(res.Title, res.Tags)
	if err != nil {
		return Result{}, err
	}

	return res, nil
}
