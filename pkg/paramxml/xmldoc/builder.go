// Package xmldoc renders parameter tags as a flat XML document and reads
// such documents back.
//
// A document always has the shape
//
//	<document>
//	    <tag1></tag1>
//	    <tag2></tag2>
//	</document>
//
// with explicit end tags, four-space indentation, '\n' line breaks and no
// XML declaration. A document without tags is the single line
// <document></document>.
package xmldoc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/cognicore/paramxml/pkg/paramxml/normalize"
)

// Root is the name of the root element of every generated document.
const Root = "document"

const indent = "    "

var (
	// ErrInvalidTag is returned by Build for a tag that is not a legal
	// element name, including the empty string.
	ErrInvalidTag = errors.New("invalid tag name")
	// ErrMalformed is returned by Tags for input that is not a generated
	// document.
	ErrMalformed = errors.New("malformed document")
)

// Build renders tags, in order, as empty child elements of the document
// root. Repeated tags are rendered repeatedly.
//
// The document name is not written to the output. Every tag must satisfy
// normalize.IsValidTag; otherwise Build returns ErrInvalidTag and no XML.
func Build(documentName string, tags []string) (string, error) {
	for i, tag := range tags {
		if !normalize.IsValidTag(tag) {
			return "", fmt.Errorf("%w: %q at position %d", ErrInvalidTag, tag, i)
		}
	}

	var b strings.Builder
	enc := xml.NewEncoder(&b)
	enc.Indent("", indent)

	root := xml.StartElement{Name: xml.Name{Local: Root}}
	if err := enc.EncodeToken(root); err != nil {
		return "", err
	}
	for _, tag := range tags {
		el := xml.StartElement{Name: xml.Name{Local: tag}}
		if err := enc.EncodeToken(el); err != nil {
			return "", err
		}
		if err := enc.EncodeToken(el.End()); err != nil {
			return "", err
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}

	return b.String(), nil
}
