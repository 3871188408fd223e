// Package parser turns a PDF byte stream into a raw.Document by
// resolving the cross-reference table and loading every live object.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/markpad/annotkit/ir/raw"
	"github.com/markpad/annotkit/xref"
)

// ErrEncrypted marks a document with an Encrypt trailer entry. Encrypted
// files are rejected up front rather than producing garbled objects.
var ErrEncrypted = errors.New("encrypted documents are not supported")

var versionRe = regexp.MustCompile(`%PDF-(\d+\.\d+)`)

type Parser struct {
	scannerConfig ScannerConfig
}

// ScannerConfig bounds the tokenizer. Zero values mean unlimited.
type ScannerConfig struct {
	MaxStringLength int64
	MaxStreamScan   int64
}

func New() *Parser { return &Parser{} }

func NewWithConfig(cfg ScannerConfig) *Parser { return &Parser{scannerConfig: cfg} }

// Parse loads all objects reachable through the xref table. The trailer
// on the returned document is the merged trailer across revisions.
func (p *Parser) Parse(r io.ReaderAt) (*raw.Document, error) {
	version, err := headerVersion(r)
	if err != nil {
		return nil, err
	}

	table, err := xref.Resolve(r)
	if err != nil {
		return nil, err
	}
	trailer := table.Trailer()
	if _, ok := trailer.Get(raw.NameLiteral("Encrypt")); ok {
		return nil, ErrEncrypted
	}

	doc := &raw.Document{
		Objects: make(map[raw.ObjectRef]raw.Object),
		Trailer: trailer,
		Version: version,
	}
	loader := newLoader(r, table, p.scannerConfig)
	for _, num := range table.Objects() {
		ref, obj, err := loader.load(num)
		if err != nil {
			return nil, fmt.Errorf("load object %d: %w", num, err)
		}
		doc.Objects[ref] = obj
	}
	return doc, nil
}

func headerVersion(r io.ReaderAt) (string, error) {
	buf := make([]byte, 32)
	n, err := r.ReadAt(buf, 0)
	if n == 0 && err != nil {
		return "", fmt.Errorf("read header: %w", err)
	}
	m := versionRe.FindSubmatch(bytes.TrimLeft(buf[:n], "\x00"))
	if m == nil {
		return "", errors.New("missing %PDF header")
	}
	return string(m[1]), nil
}
