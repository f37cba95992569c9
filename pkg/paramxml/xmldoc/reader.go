package xmldoc

import (
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Tags parses a generated document and returns the names of the children
// of its root, in document order.
func Tags(doc string) ([]string, error) {
	top, err := xmlquery.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	root := firstElement(top)
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformed)
	}
	if root.Data != Root {
		return nil, fmt.Errorf("%w: root element is %q, want %q", ErrMalformed, root.Data, Root)
	}

	tags := []string{}
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		switch n.Type {
		case xmlquery.ElementNode:
			if !isEmpty(n) {
				return nil, fmt.Errorf("%w: element %q has content", ErrMalformed, n.Data)
			}
			tags = append(tags, n.Data)
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if strings.TrimSpace(n.Data) != "" {
				return nil, fmt.Errorf("%w: text under root", ErrMalformed)
			}
		}
	}
	return tags, nil
}

func firstElement(n *xmlquery.Node) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c
		}
	}
	return nil
}

func isEmpty(n *xmlquery.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode || strings.TrimSpace(c.Data) != "" {
			return false
		}
	}
	return true
}
