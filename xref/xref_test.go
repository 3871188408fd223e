package xref

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/markpad/annotkit/ir/raw"
)

// buildSinglePDF writes a minimal one-revision file with two objects
// and returns the full bytes.
func buildSinglePDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make(map[int]int64)

	offsets[1] = int64(buf.Len())
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	offsets[2] = int64(buf.Len())
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n")

	xrefPos := buf.Len()
	buf.WriteString("xref\n0 3\n")
	buf.WriteString("0000000000 65535 f \n")
	fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[1])
	fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[2])
	buf.WriteString("trailer\n<< /Size 3 /Root 1 0 R >>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefPos)
	return buf.Bytes()
}

func TestResolveSingleRevision(t *testing.T) {
	data := buildSinglePDF()
	table, err := Resolve(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	objs := table.Objects()
	if len(objs) != 2 {
		t.Fatalf("got %d objects, want 2", len(objs))
	}
	if _, _, ok := table.Lookup(1); !ok {
		t.Error("object 1 not found")
	}
	if _, _, ok := table.Lookup(0); ok {
		t.Error("free entry 0 should not resolve")
	}
	root, ok := table.Trailer().Get(raw.NameLiteral("Root"))
	if !ok {
		t.Fatal("trailer missing Root")
	}
	ref, ok := root.(raw.RefObj)
	if !ok || ref.R.Num != 1 {
		t.Errorf("Root = %v, want 1 0 R", root)
	}
}

func TestResolvePrevChainNewestWins(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	off1 := int64(buf.Len())
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	off2 := int64(buf.Len())
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n")

	oldXref := buf.Len()
	buf.WriteString("xref\n0 3\n")
	buf.WriteString("0000000000 65535 f \n")
	fmt.Fprintf(&buf, "%010d 00000 n \n", off1)
	fmt.Fprintf(&buf, "%010d 00000 n \n", off2)
	buf.WriteString("trailer\n<< /Size 3 /Root 1 0 R >>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", oldXref)

	// Incremental update replaces object 2 and adds object 3.
	off2b := int64(buf.Len())
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	off3 := int64(buf.Len())
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R >>\nendobj\n")

	newXref := buf.Len()
	buf.WriteString("xref\n2 2\n")
	fmt.Fprintf(&buf, "%010d 00000 n \n", off2b)
	fmt.Fprintf(&buf, "%010d 00000 n \n", off3)
	fmt.Fprintf(&buf, "trailer\n<< /Size 4 /Root 1 0 R /Prev %d >>\n", oldXref)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", newXref)

	table, err := Resolve(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := table.Objects(); len(got) != 3 {
		t.Fatalf("got %d objects, want 3", len(got))
	}
	got2, _, ok := table.Lookup(2)
	if !ok || got2 != off2b {
		t.Errorf("object 2 offset = %d, want newest revision %d", got2, off2b)
	}
	size, _ := table.Trailer().Get(raw.NameLiteral("Size"))
	if n, ok := size.(raw.NumberObj); !ok || n.Int() != 4 {
		t.Errorf("merged trailer Size = %v, want 4 from newest revision", size)
	}
}

func TestResolveRejectsXRefStream(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n")
	streamPos := buf.Len()
	buf.WriteString("5 0 obj\n<< /Type /XRef /Size 6 >>\nstream\nxx\nendstream\nendobj\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", streamPos)

	_, err := Resolve(bytes.NewReader(buf.Bytes()))
	if !errors.Is(err, ErrXRefStream) {
		t.Fatalf("err = %v, want ErrXRefStream", err)
	}
}

func TestResolveMissingStartXref(t *testing.T) {
	if _, err := Resolve(bytes.NewReader([]byte("%PDF-1.4\nnothing here"))); err == nil {
		t.Fatal("expected error for missing startxref")
	}
}

func TestResolveCyclicPrev(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	xrefPos := buf.Len()
	buf.WriteString("xref\n0 1\n0000000000 65535 f \n")
	fmt.Fprintf(&buf, "trailer\n<< /Size 1 /Prev %d >>\n", xrefPos)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefPos)

	if _, err := Resolve(bytes.NewReader(buf.Bytes())); err == nil {
		t.Fatal("expected error for cyclic Prev chain")
	}
}
