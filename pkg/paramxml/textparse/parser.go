package textparse

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrEmptyInput is returned when the text has no non-whitespace content.
	ErrEmptyInput = errors.New("empty input")
	// ErrNoTitle is returned when every non-blank line is a bullet line.
	ErrNoTitle = errors.New("document title not found")
)

// A bullet marker is '-' or '•' followed by whitespace. \p{Zs} admits
// no-break spaces, which are common in text pasted from word processors.
var (
	bulletPrefix = regexp.MustCompile(`^[-•][\s\p{Zs}]+`)
	bulletLine   = regexp.MustCompile(`(?m)^[-•][\s\p{Zs}]+(.+?)(?:[;.][\s\p{Zs}]*)?$`)
	lineBreaks   = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// RawDocument is the title and the ordered bullet labels of a text document.
type RawDocument struct {
	Title      string
	Parameters []string
}

// Parse extracts the document title and its bullet parameters from text.
//
// The title is the first non-blank line that is not a bullet line. Bullet
// lines are collected from the whole text in order; trailing ';' and '.'
// are stripped from each label. When no bullet starts at the beginning of a
// line, indented bullets after the first line are accepted instead.
func Parse(text string) (RawDocument, error) {
	if strings.TrimSpace(text) == "" {
		return RawDocument{}, ErrEmptyInput
	}

	text = lineBreaks.Replace(text)
	lines := strings.Split(text, "\n")

	title := findTitle(lines)
	if title == "" {
		return RawDocument{}, ErrNoTitle
	}

	params := scanBullets(text)
	if len(params) == 0 {
		params = scanIndentedBullets(lines)
	}

	return RawDocument{Title: title, Parameters: params}, nil
}

func findTitle(lines []string) string {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !bulletPrefix.MatchString(line) {
			return line
		}
	}
	return ""
}

// scanBullets matches bullet lines anchored at column zero across the
// whole text.
func scanBullets(text string) []string {
	var params []string
	for _, m := range bulletLine.FindAllStringSubmatch(text, -1) {
		if p := cleanLabel(m[1]); p != "" {
			params = append(params, p)
		}
	}
	return params
}

// scanIndentedBullets is the line-by-line pass used when scanBullets finds
// nothing. The first line is never a parameter.
func scanIndentedBullets(lines []string) []string {
	var params []string
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if !bulletPrefix.MatchString(line) {
			continue
		}
		if p := cleanLabel(bulletPrefix.ReplaceAllString(line, "")); p != "" {
			params = append(params, p)
		}
	}
	return params
}

// cleanLabel trims the label and drops its trailing run of ';', '.' and
// whitespace. Separators inside the label are kept.
func cleanLabel(s string) string {
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return r == ';' || r == '.' || unicode.IsSpace(r)
	})
	return strings.TrimSpace(s)
}
