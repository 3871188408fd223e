package parser

import (
	"errors"
	"fmt"
	"io"

	"github.com/markpad/annotkit/ir/raw"
	"github.com/markpad/annotkit/scanner"
)

// loader reads individual indirect objects at xref offsets. Stream
// payload lengths may themselves be indirect, so the loader can recurse
// one level to resolve a Length object.
type loader struct {
	reader io.ReaderAt
	table  xrefTable
	cfg    ScannerConfig
}

// xrefTable is the subset of the resolver the loader needs.
type xrefTable interface {
	Lookup(objNum int) (offset int64, gen int, found bool)
}

func newLoader(r io.ReaderAt, table xrefTable, cfg ScannerConfig) *loader {
	return &loader{reader: r, table: table, cfg: cfg}
}

func (l *loader) load(num int) (raw.ObjectRef, raw.Object, error) {
	offset, _, ok := l.table.Lookup(num)
	if !ok {
		return raw.ObjectRef{}, nil, fmt.Errorf("object %d not in xref", num)
	}
	return l.loadAt(num, offset, true)
}

func (l *loader) loadAt(num int, offset int64, allowStream bool) (raw.ObjectRef, raw.Object, error) {
	s := scanner.New(l.reader, scanner.Config{
		MaxStringLength: l.cfg.MaxStringLength,
		MaxStreamScan:   l.cfg.MaxStreamScan,
	})
	if err := s.SeekTo(offset); err != nil {
		return raw.ObjectRef{}, nil, err
	}
	tr := raw.NewTokenReader(s)

	gotNum, gotGen, err := readObjHeader(tr)
	if err != nil {
		return raw.ObjectRef{}, nil, err
	}
	if gotNum != num {
		return raw.ObjectRef{}, nil, fmt.Errorf("xref points at object %d, header says %d", num, gotNum)
	}
	ref := raw.ObjectRef{Num: gotNum, Gen: gotGen}

	obj, err := raw.ParseObject(tr)
	if err != nil {
		return raw.ObjectRef{}, nil, err
	}

	dict, isDict := obj.(*raw.DictObj)
	if !isDict || !allowStream {
		return ref, obj, nil
	}

	// A dictionary may be a stream header. Resolve Length before the
	// stream keyword so the scanner can slice the payload exactly.
	if err := l.applyLengthHint(s, dict); err != nil {
		return raw.ObjectRef{}, nil, err
	}
	tok, err := tr.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ref, obj, nil
		}
		return raw.ObjectRef{}, nil, err
	}
	if tok.Type != scanner.TokenStream {
		tr.Unread(tok)
		return ref, obj, nil
	}
	return ref, raw.NewStream(dict, tok.Bytes), nil
}

func (l *loader) applyLengthHint(s scanner.Scanner, dict *raw.DictObj) error {
	val, ok := dict.Get(raw.NameLiteral("Length"))
	if !ok {
		s.SetNextStreamLength(-1)
		return nil
	}
	switch v := val.(type) {
	case raw.NumberObj:
		s.SetNextStreamLength(v.Int())
	case raw.RefObj:
		offset, _, found := l.table.Lookup(v.R.Num)
		if !found {
			s.SetNextStreamLength(-1)
			return nil
		}
		_, lenObj, err := l.loadAt(v.R.Num, offset, false)
		if err != nil {
			return fmt.Errorf("resolve stream Length %s: %w", v.R, err)
		}
		num, ok := lenObj.(raw.NumberObj)
		if !ok {
			return fmt.Errorf("stream Length %s is not a number", v.R)
		}
		s.SetNextStreamLength(num.Int())
	default:
		s.SetNextStreamLength(-1)
	}
	return nil
}

func readObjHeader(tr *raw.TokenReader) (int, int, error) {
	numTok, err := tr.Next()
	if err != nil {
		return 0, 0, err
	}
	if numTok.Type != scanner.TokenNumber || !numTok.IsInt {
		return 0, 0, errors.New("object header: expected object number")
	}
	genTok, err := tr.Next()
	if err != nil {
		return 0, 0, err
	}
	if genTok.Type != scanner.TokenNumber || !genTok.IsInt {
		return 0, 0, errors.New("object header: expected generation number")
	}
	kwTok, err := tr.Next()
	if err != nil {
		return 0, 0, err
	}
	if kwTok.Type != scanner.TokenKeyword || kwTok.Str != "obj" {
		return 0, 0, fmt.Errorf("object header: expected obj keyword, got %q", kwTok.Str)
	}
	return int(numTok.Int), int(genTok.Int), nil
}
