package raw

import (
	"bytes"
	"testing"

	"github.com/markpad/annotkit/scanner"
)

func parse(t *testing.T, input string) Object {
	t.Helper()
	s := scanner.New(bytes.NewReader([]byte(input)), scanner.Config{})
	obj, err := ParseObject(NewTokenReader(s))
	if err != nil {
		t.Fatalf("ParseObject(%q): %v", input, err)
	}
	return obj
}

func TestParseNestedStructures(t *testing.T) {
	obj := parse(t, "<< /Kids [3 0 R << /Deep (value) >>] /Count 1 >>")
	dict, ok := obj.(*DictObj)
	if !ok {
		t.Fatalf("got %T, want dict", obj)
	}
	kidsObj, ok := dict.Get(NameLiteral("Kids"))
	if !ok {
		t.Fatal("Kids missing")
	}
	kids := kidsObj.(*ArrayObj)
	if kids.Len() != 2 {
		t.Fatalf("Kids len = %d, want 2", kids.Len())
	}
	first, _ := kids.Get(0)
	if ref, ok := first.(RefObj); !ok || ref.R != (ObjectRef{Num: 3}) {
		t.Errorf("Kids[0] = %v, want 3 0 R", first)
	}
	second, _ := kids.Get(1)
	inner := second.(*DictObj)
	deep, _ := inner.Get(NameLiteral("Deep"))
	if string(deep.(StringObj).Bytes) != "value" {
		t.Errorf("Deep = %v", deep)
	}
	count, _ := dict.Get(NameLiteral("Count"))
	if n := count.(NumberObj); !n.IsInteger() || n.Int() != 1 {
		t.Errorf("Count = %v", count)
	}
}

func TestParsePrimitives(t *testing.T) {
	if v := parse(t, "true").(BoolObj); !v.V {
		t.Error("true misparsed")
	}
	if _, ok := parse(t, "null").(NullObj); !ok {
		t.Error("null misparsed")
	}
	if v := parse(t, "-1.5").(NumberObj); v.IsInteger() || v.Float() != -1.5 {
		t.Errorf("real = %+v", v)
	}
	if v := parse(t, "/Annot").(NameObj); v.Val != "Annot" {
		t.Errorf("name = %+v", v)
	}
}

func TestParseDictRejectsNonNameKey(t *testing.T) {
	s := scanner.New(bytes.NewReader([]byte("<< 42 /Value >>")), scanner.Config{})
	if _, err := ParseObject(NewTokenReader(s)); err == nil {
		t.Fatal("expected error for a non-name dictionary key")
	}
}

func TestTokenReaderUnread(t *testing.T) {
	s := scanner.New(bytes.NewReader([]byte("/A /B")), scanner.Config{})
	tr := NewTokenReader(s)
	tok, err := tr.Next()
	if err != nil {
		t.Fatal(err)
	}
	tr.Unread(tok)
	again, err := tr.Next()
	if err != nil || again.Str != "A" {
		t.Errorf("unread token = %+v, %v", again, err)
	}
	next, err := tr.Next()
	if err != nil || next.Str != "B" {
		t.Errorf("next = %+v, %v", next, err)
	}
}

func TestMaxObjectNumber(t *testing.T) {
	doc := &Document{Objects: map[ObjectRef]Object{}}
	if doc.MaxObjectNumber() != 0 {
		t.Error("empty document should report 0")
	}
	doc.Objects[ObjectRef{Num: 3}] = NullObj{}
	doc.Objects[ObjectRef{Num: 12}] = NullObj{}
	if got := doc.MaxObjectNumber(); got != 12 {
		t.Errorf("MaxObjectNumber = %d, want 12", got)
	}
}
