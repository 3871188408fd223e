package raw

import (
	"fmt"

	"github.com/markpad/annotkit/scanner"
)

// TokenSource yields scanner tokens. Both the object loader and the
// xref trailer parser feed a TokenReader from one of these.
type TokenSource interface {
	Next() (scanner.Token, error)
}

// TokenReader adds single-token lookahead on top of a TokenSource.
type TokenReader struct {
	src TokenSource
	buf []scanner.Token
}

func NewTokenReader(src TokenSource) *TokenReader { return &TokenReader{src: src} }

func (r *TokenReader) Next() (scanner.Token, error) {
	if l := len(r.buf); l > 0 {
		t := r.buf[l-1]
		r.buf = r.buf[:l-1]
		return t, nil
	}
	return r.src.Next()
}

func (r *TokenReader) Unread(tok scanner.Token) { r.buf = append(r.buf, tok) }

// ParseObject consumes one complete object from the token stream.
func ParseObject(tr *TokenReader) (Object, error) {
	tok, err := tr.Next()
	if err != nil {
		return nil, err
	}
	switch tok.Type {
	case scanner.TokenName:
		return NameObj{Val: tok.Str}, nil
	case scanner.TokenNumber:
		if tok.IsInt {
			return NumberObj{I: tok.Int, IsInt: true}, nil
		}
		return NumberObj{F: tok.Float}, nil
	case scanner.TokenBoolean:
		return BoolObj{V: tok.Bool}, nil
	case scanner.TokenNull:
		return NullObj{}, nil
	case scanner.TokenString:
		return StringObj{Bytes: tok.Bytes}, nil
	case scanner.TokenRef:
		return RefObj{R: ObjectRef{Num: int(tok.Int), Gen: tok.Gen}}, nil
	case scanner.TokenArray:
		return parseArray(tr)
	case scanner.TokenDict:
		return parseDict(tr)
	}
	return nil, fmt.Errorf("unexpected token %q", tok.Str)
}

func parseArray(tr *TokenReader) (Object, error) {
	arr := &ArrayObj{}
	for {
		tok, err := tr.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == scanner.TokenKeyword && tok.Str == "]" {
			return arr, nil
		}
		tr.Unread(tok)
		item, err := ParseObject(tr)
		if err != nil {
			return nil, err
		}
		arr.Append(item)
	}
}

func parseDict(tr *TokenReader) (Object, error) {
	d := Dict()
	for {
		tok, err := tr.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == scanner.TokenKeyword && tok.Str == ">>" {
			return d, nil
		}
		if tok.Type != scanner.TokenName {
			return nil, fmt.Errorf("expected name key in dict, got %q", tok.Str)
		}
		val, err := ParseObject(tr)
		if err != nil {
			return nil, err
		}
		d.Set(NameObj{Val: tok.Str}, val)
	}
}
