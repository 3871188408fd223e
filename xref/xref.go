// Package xref resolves classic PDF cross-reference tables. Cross
// reference streams are out of scope and are reported as errors so the
// caller can surface an actionable load failure.
package xref

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/markpad/annotkit/ir/raw"
	"github.com/markpad/annotkit/scanner"
)

// ErrXRefStream marks a document whose cross-reference data lives in an
// xref stream rather than a classic table.
var ErrXRefStream = errors.New("cross-reference streams are not supported")

// Table maps object numbers to byte offsets, merged across all
// revisions reachable through trailer Prev links (newest wins).
type Table struct {
	entries map[int]entry
	trailer *raw.DictObj
}

type entry struct {
	offset int64
	gen    int
}

func (t *Table) Lookup(objNum int) (offset int64, gen int, found bool) {
	e, ok := t.entries[objNum]
	if !ok {
		return 0, 0, false
	}
	return e.offset, e.gen, true
}

// Objects returns the live object numbers in ascending order.
func (t *Table) Objects() []int {
	out := make([]int, 0, len(t.entries))
	for k := range t.entries {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Trailer returns the merged trailer dictionary. Keys from newer
// revisions shadow the same keys in older ones.
func (t *Table) Trailer() *raw.DictObj { return t.trailer }

// Resolve locates the newest startxref offset and walks the revision
// chain backwards through Prev links.
func Resolve(r io.ReaderAt) (*Table, error) {
	data := readAll(r)

	offset, err := startXRefOffset(data)
	if err != nil {
		return nil, err
	}

	t := &Table{entries: make(map[int]entry), trailer: raw.Dict()}
	visited := make(map[int64]bool)
	for {
		if offset <= 0 || offset >= int64(len(data)) {
			return nil, fmt.Errorf("xref offset out of range: %d", offset)
		}
		if visited[offset] {
			return nil, errors.New("cyclic Prev chain in xref trailers")
		}
		visited[offset] = true

		trailer, err := t.parseSection(r, offset)
		if err != nil {
			return nil, err
		}
		// Older keys only fill gaps; the newest revision wins.
		for k, v := range trailer.KV {
			if _, ok := t.trailer.KV[k]; !ok {
				t.trailer.KV[k] = v
			}
		}
		prev, ok := trailer.Get(raw.NameLiteral("Prev"))
		if !ok {
			return t, nil
		}
		num, ok := prev.(raw.NumberObj)
		if !ok {
			return nil, errors.New("trailer Prev is not a number")
		}
		offset = num.Int()
	}
}

func startXRefOffset(data []byte) (int64, error) {
	idx := bytes.LastIndex(data, []byte("startxref"))
	if idx < 0 {
		return 0, errors.New("startxref not found")
	}
	lines := bufio.NewScanner(bytes.NewReader(data[idx+len("startxref"):]))
	for lines.Scan() {
		text := strings.TrimSpace(lines.Text())
		if text == "" {
			continue
		}
		val, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse startxref: %w", err)
		}
		return val, nil
	}
	return 0, errors.New("startxref offset missing")
}

// parseSection reads one xref table plus its trailer dictionary,
// merging entries into the table (first-seen, i.e. newest, wins).
func (t *Table) parseSection(r io.ReaderAt, offset int64) (*raw.DictObj, error) {
	s := scanner.New(r, scanner.Config{})
	if err := s.SeekTo(offset); err != nil {
		return nil, err
	}
	tr := raw.NewTokenReader(s)

	tok, err := tr.Next()
	if err != nil {
		return nil, err
	}
	if tok.Type == scanner.TokenNumber {
		// "N G obj" at the startxref target means an xref stream.
		return nil, ErrXRefStream
	}
	if tok.Type != scanner.TokenKeyword || tok.Str != "xref" {
		return nil, fmt.Errorf("xref keyword not found at offset %d", offset)
	}

	for {
		tok, err := tr.Next()
		if err != nil {
			return nil, fmt.Errorf("truncated xref section: %w", err)
		}
		if tok.Type == scanner.TokenKeyword && tok.Str == "trailer" {
			break
		}
		if tok.Type != scanner.TokenNumber {
			return nil, fmt.Errorf("invalid xref subsection header %q", tok.Str)
		}
		start := int(tok.Int)
		countTok, err := tr.Next()
		if err != nil || countTok.Type != scanner.TokenNumber {
			return nil, errors.New("invalid xref subsection count")
		}
		count := int(countTok.Int)
		for i := 0; i < count; i++ {
			off, gen, kind, err := readEntry(tr)
			if err != nil {
				return nil, err
			}
			if kind != 'n' {
				continue // free entry
			}
			objNum := start + i
			if _, ok := t.entries[objNum]; !ok {
				t.entries[objNum] = entry{offset: off, gen: gen}
			}
		}
	}

	dictTok, err := tr.Next()
	if err != nil || dictTok.Type != scanner.TokenDict {
		return nil, errors.New("trailer dictionary missing")
	}
	tr.Unread(dictTok)
	obj, err := raw.ParseObject(tr)
	if err != nil {
		return nil, fmt.Errorf("parse trailer: %w", err)
	}
	dict, ok := obj.(*raw.DictObj)
	if !ok {
		return nil, errors.New("trailer is not a dictionary")
	}
	return dict, nil
}

func readEntry(tr *raw.TokenReader) (int64, int, byte, error) {
	offTok, err := tr.Next()
	if err != nil || offTok.Type != scanner.TokenNumber {
		return 0, 0, 0, errors.New("invalid xref entry offset")
	}
	genTok, err := tr.Next()
	if err != nil || genTok.Type != scanner.TokenNumber {
		return 0, 0, 0, errors.New("invalid xref entry generation")
	}
	kindTok, err := tr.Next()
	if err != nil || kindTok.Type != scanner.TokenKeyword || (kindTok.Str != "n" && kindTok.Str != "f") {
		return 0, 0, 0, errors.New("invalid xref entry kind")
	}
	return offTok.Int, int(genTok.Int), kindTok.Str[0], nil
}

func readAll(r io.ReaderAt) []byte {
	var buf bytes.Buffer
	const chunk = int64(32 * 1024)
	for off := int64(0); ; off += chunk {
		tmp := make([]byte, chunk)
		n, err := r.ReadAt(tmp, off)
		if n > 0 {
			buf.Write(tmp[:n])
		}
		if err != nil || int64(n) < chunk {
			break
		}
	}
	return buf.Bytes()
}
