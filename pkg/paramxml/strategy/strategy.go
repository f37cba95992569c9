package strategy

import (
	"errors"
	"fmt"

	"github.com/cognicore/paramxml/pkg/paramxml/normalize"
)

// ErrUnknownStrategy is returned for a strategy name that is not registered.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Translator turns one atomic label into a tag name.
type Translator interface {
	Translate(label string) string
}

// Splitter breaks one label into the sub-labels that are translated
// separately.
type Splitter interface {
	Split(label string) []string
}

// TranslationKind selects a Translator.
type TranslationKind int

const (
	TranslationTranslit TranslationKind = iota
	// TranslationLLM is reserved for model-backed translation and currently
	// behaves like TranslationTranslit.
	TranslationLLM
)

var translationNames = map[TranslationKind]string{
	TranslationTranslit: "translit",
	TranslationLLM:      "llm",
}

// SplittingKind selects a Splitter.
type SplittingKind int

const (
	SplittingNone SplittingKind = iota
	// SplittingLLM is reserved for model-backed splitting and currently
	// behaves like SplittingNone.
	SplittingLLM
)

var splittingNames = map[SplittingKind]string{
	SplittingNone: "none",
	SplittingLLM:  "llm",
}

func (k TranslationKind) String() string {
	if name, ok := translationNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TranslationKind(%d)", int(k))
}

func (k SplittingKind) String() string {
	if name, ok := splittingNames[k]; ok {
		return name
	}
	return fmt.Sprintf("SplittingKind(%d)", int(k))
}

// ParseTranslation maps a translation strategy name to its kind.
// Names are case-sensitive.
func ParseTranslation(name string) (TranslationKind, error) {
	for k, n := range translationNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: translation %q", ErrUnknownStrategy, name)
}

// ParseSplitting maps a splitting strategy name to its kind.
func ParseSplitting(name string) (SplittingKind, error) {
	for k, n := range splittingNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: splitting %q", ErrUnknownStrategy, name)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *TranslationKind) UnmarshalText(text []byte) error {
	parsed, err := ParseTranslation(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (k TranslationKind) MarshalText() ([]byte, error) {
	if _, ok := translationNames[k]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SplittingKind) UnmarshalText(text []byte) error {
	parsed, err := ParseSplitting(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (k SplittingKind) MarshalText() ([]byte, error) {
	if _, ok := splittingNames[k]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, k)
	}
	return []byte(k.String()), nil
}

// TranslationNames lists the accepted translation strategy names.
func TranslationNames() []string {
	return []string{TranslationTranslit.String(), TranslationLLM.String()}
}

// SplittingNames lists the accepted splitting strategy names.
func SplittingNames() []string {
	return []string{SplittingNone.String(), SplittingLLM.String()}
}

// NewTranslator returns the Translator for k.
func NewTranslator(k TranslationKind) (Translator, error) {
	switch k {
	case TranslationTranslit:
		return translit{}, nil
	case TranslationLLM:
		return llmTranslator{fallback: translit{}}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, k)
}

// NewSplitter returns the Splitter for k.
func NewSplitter(k SplittingKind) (Splitter, error) {
	switch k {
	case SplittingNone:
		return identity{}, nil
	case SplittingLLM:
		return llmSplitter{fallback: identity{}}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, k)
}

// TranslatorFor resolves a translation strategy by name.
func TranslatorFor(name string) (Translator, error) {
	k, err := ParseTranslation(name)
	if err != nil {
		return nil, err
	}
	return NewTranslator(k)
}

// SplitterFor resolves a splitting strategy by name.
func SplitterFor(name string) (Splitter, error) {
	k, err := ParseSplitting(name)
	if err != nil {
		return nil, err
	}
	return NewSplitter(k)
}

type translit struct{}

func (translit) Translate(label string) string { return normalize.Normalize(label) }

type identity struct{}

func (identity) Split(label string) []string { return []string{label} }

// llmTranslator and llmSplitter hold the place of model-backed strategies.
// Until one is wired in they delegate to their fallback.
type llmTranslator struct{ fallback Translator }

func (t llmTranslator) Translate(label string) string { return t.fallback.Translate(label) }

type llmSplitter struct{ fallback Splitter }

func (s llmSplitter) Split(label string) []string { return s.fallback.Split(label) }
