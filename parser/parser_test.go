package parser

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/markpad/annotkit/ir/raw"
)

// pdfBuilder assembles a synthetic file while tracking object offsets
// so the xref table can be emitted last.
type pdfBuilder struct {
	buf     bytes.Buffer
	offsets map[int]int64
	maxNum  int
	trailer string
}

func newPDFBuilder() *pdfBuilder {
	b := &pdfBuilder{offsets: make(map[int]int64)}
	b.buf.WriteString("%PDF-1.4\n")
	return b
}

func (b *pdfBuilder) object(num int, body string) {
	b.offsets[num] = int64(b.buf.Len())
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", num, body)
	if num > b.maxNum {
		b.maxNum = num
	}
}

func (b *pdfBuilder) bytes() []byte {
	xrefPos := b.buf.Len()
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", b.maxNum+1)
	b.buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= b.maxNum; i++ {
		fmt.Fprintf(&b.buf, "%010d 00000 n \n", b.offsets[i])
	}
	trailer := b.trailer
	if trailer == "" {
		trailer = fmt.Sprintf("<< /Size %d /Root 1 0 R >>", b.maxNum+1)
	}
	fmt.Fprintf(&b.buf, "trailer\n%s\nstartxref\n%d\n%%%%EOF\n", trailer, xrefPos)
	return b.buf.Bytes()
}

func TestParseLoadsAllObjects(t *testing.T) {
	b := newPDFBuilder()
	b.object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.object(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.object(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")

	doc, err := New().Parse(bytes.NewReader(b.bytes()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Version != "1.4" {
		t.Errorf("Version = %q, want 1.4", doc.Version)
	}
	if len(doc.Objects) != 3 {
		t.Fatalf("got %d objects, want 3", len(doc.Objects))
	}
	page, ok := doc.Objects[raw.ObjectRef{Num: 3}].(*raw.DictObj)
	if !ok {
		t.Fatal("object 3 is not a dictionary")
	}
	box, ok := page.Get(raw.NameLiteral("MediaBox"))
	if !ok {
		t.Fatal("page missing MediaBox")
	}
	arr, ok := box.(*raw.ArrayObj)
	if !ok || arr.Len() != 4 {
		t.Errorf("MediaBox = %v, want 4-element array", box)
	}
}

func TestParseRejectsEncrypted(t *testing.T) {
	b := newPDFBuilder()
	b.object(1, "<< /Type /Catalog >>")
	b.object(2, "<< /Filter /Standard /V 1 >>")
	b.trailer = "<< /Size 3 /Root 1 0 R /Encrypt 2 0 R >>"

	_, err := New().Parse(bytes.NewReader(b.bytes()))
	if !errors.Is(err, ErrEncrypted) {
		t.Fatalf("err = %v, want ErrEncrypted", err)
	}
}

func TestParseStreamWithDirectLength(t *testing.T) {
	b := newPDFBuilder()
	b.object(1, "<< /Type /Catalog >>")
	payload := "BT /F1 12 Tf ET"
	b.object(2, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(payload), payload))

	doc, err := New().Parse(bytes.NewReader(b.bytes()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stream, ok := doc.Objects[raw.ObjectRef{Num: 2}].(*raw.StreamObj)
	if !ok {
		t.Fatalf("object 2 = %T, want stream", doc.Objects[raw.ObjectRef{Num: 2}])
	}
	if string(stream.Data) != payload {
		t.Errorf("payload = %q, want %q", stream.Data, payload)
	}
}

func TestParseStreamWithIndirectLength(t *testing.T) {
	b := newPDFBuilder()
	b.object(1, "<< /Type /Catalog >>")
	payload := "binary\x00data)("
	b.object(2, fmt.Sprintf("<< /Length 3 0 R >>\nstream\n%s\nendstream", payload))
	b.object(3, fmt.Sprintf("%d", len(payload)))

	doc, err := New().Parse(bytes.NewReader(b.bytes()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stream, ok := doc.Objects[raw.ObjectRef{Num: 2}].(*raw.StreamObj)
	if !ok {
		t.Fatal("object 2 is not a stream")
	}
	if string(stream.Data) != payload {
		t.Errorf("payload = %q, want %q", stream.Data, payload)
	}
}

func TestParseMissingHeader(t *testing.T) {
	if _, err := New().Parse(bytes.NewReader([]byte("not a pdf"))); err == nil {
		t.Fatal("expected error for missing header")
	}
}

func TestParseHeaderMismatchObjectNumber(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	off := int64(buf.Len())
	buf.WriteString("9 0 obj\n<< >>\nendobj\n")
	xrefPos := buf.Len()
	buf.WriteString("xref\n0 2\n0000000000 65535 f \n")
	fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	buf.WriteString("trailer\n<< /Size 2 >>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefPos)

	if _, err := New().Parse(bytes.NewReader(buf.Bytes())); err == nil {
		t.Fatal("expected error when header object number disagrees with xref")
	}
}
