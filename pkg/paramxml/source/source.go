// Package source finds input text files, decodes them and writes the XML
// produced for them.
package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrNotDirectory    = errors.New("not a directory")
	ErrUnknownEncoding = errors.New("unknown encoding")
)

const (
	textExt = ".txt"
	xmlExt  = ".xml"
	bom     = "\uFEFF"
)

// FindTextFiles walks dir and returns every *.txt file in lexical order.
func FindTextFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), textExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// ReadText decodes the file at path from the named encoding into NFC UTF-8
// with any byte order mark removed.
func ReadText(path, encoding string) (string, error) {
	if encoding == "" {
		encoding = "utf-8"
	}
	if enc, _ := charset.Lookup(encoding); enc == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, encoding)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	r, err := charset.NewReaderLabel(encoding, f)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownEncoding, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}

	text := strings.TrimPrefix(string(data), bom)
	return norm.NFC.String(text), nil
}

// XMLPath returns where the XML for txtPath goes: beside it, or inside
// xmlDir when that is set.
func XMLPath(txtPath, xmlDir string) string {
	base := strings.TrimSuffix(filepath.Base(txtPath), filepath.Ext(txtPath)) + xmlExt
	if xmlDir == "" {
		return filepath.Join(filepath.Dir(txtPath), base)
	}
	return filepath.Join(xmlDir, base)
}

// WriteXML writes content to path, creating parent directories.
func WriteXML(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
