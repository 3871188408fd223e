// Package writer serializes a raw.Document back to PDF syntax as a
// single full revision with a classic cross-reference table.
package writer

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/markpad/annotkit/ir/raw"
)

// countingWriter tracks the byte offset of each emitted object.
type countingWriter struct {
	w   io.Writer
	off int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.off += int64(n)
	return n, err
}

// WriteDocument emits the header, every object in ascending number
// order, the xref table, and the trailer. The trailer Size is
// recomputed; Prev and XRefStm are dropped since the output is a single
// revision.
func WriteDocument(doc *raw.Document, w io.Writer) error {
	cw := &countingWriter{w: w}

	version := doc.Version
	if version == "" {
		version = "1.4"
	}
	// The binary-marker comment keeps transfer tools from treating the
	// file as text (PDF 7.5.2).
	if _, err := fmt.Fprintf(cw, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", version); err != nil {
		return err
	}

	refs := make([]raw.ObjectRef, 0, len(doc.Objects))
	for ref := range doc.Objects {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Num < refs[j].Num })

	offsets := make(map[int]offsetEntry, len(refs))
	for _, ref := range refs {
		offsets[ref.Num] = offsetEntry{offset: cw.off, gen: ref.Gen}
		if err := serializeIndirect(cw, ref, doc.Objects[ref]); err != nil {
			return fmt.Errorf("serialize %s: %w", ref, err)
		}
	}

	xrefPos := cw.off
	size := 1
	if len(refs) > 0 {
		size = refs[len(refs)-1].Num + 1
	}
	if _, err := fmt.Fprintf(cw, "xref\n0 %d\n", size); err != nil {
		return err
	}
	if _, err := io.WriteString(cw, "0000000000 65535 f \n"); err != nil {
		return err
	}
	for num := 1; num < size; num++ {
		e, ok := offsets[num]
		if !ok {
			// Gap in object numbering becomes a free entry.
			if _, err := io.WriteString(cw, "0000000000 00000 f \n"); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(cw, "%010d %05d n \n", e.offset, e.gen); err != nil {
			return err
		}
	}

	trailer := trailerDict(doc, size)
	if _, err := io.WriteString(cw, "trailer\n"); err != nil {
		return err
	}
	if err := serializeObject(cw, trailer); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cw, "\nstartxref\n%d\n%%%%EOF\n", xrefPos)
	return err
}

type offsetEntry struct {
	offset int64
	gen    int
}

func trailerDict(doc *raw.Document, size int) *raw.DictObj {
	trailer := raw.Dict()
	if doc.Trailer != nil {
		trailer = doc.Trailer.Clone()
	}
	trailer.Delete(raw.NameLiteral("Prev"))
	trailer.Delete(raw.NameLiteral("XRefStm"))
	trailer.Set(raw.NameLiteral("Size"), raw.NumberInt(int64(size)))
	return trailer
}

func serializeIndirect(w io.Writer, ref raw.ObjectRef, obj raw.Object) error {
	if _, err := fmt.Fprintf(w, "%d %d obj\n", ref.Num, ref.Gen); err != nil {
		return err
	}
	if err := serializeObject(w, obj); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\nendobj\n")
	return err
}

func serializeObject(w io.Writer, obj raw.Object) error {
	switch o := obj.(type) {
	case raw.NameObj:
		_, err := io.WriteString(w, serializeName(o.Val))
		return err
	case raw.NumberObj:
		_, err := io.WriteString(w, serializeNumber(o))
		return err
	case raw.BoolObj:
		_, err := io.WriteString(w, strconv.FormatBool(o.V))
		return err
	case raw.NullObj:
		_, err := io.WriteString(w, "null")
		return err
	case raw.StringObj:
		_, err := w.Write(serializeString(o.Bytes))
		return err
	case raw.RefObj:
		_, err := fmt.Fprintf(w, "%d %d R", o.R.Num, o.R.Gen)
		return err
	case *raw.ArrayObj:
		return serializeArray(w, o)
	case *raw.DictObj:
		return serializeDict(w, o)
	case *raw.StreamObj:
		return serializeStream(w, o)
	}
	return fmt.Errorf("unsupported object type %T", obj)
}

func serializeArray(w io.Writer, arr *raw.ArrayObj) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}
	for i, item := range arr.Items {
		if i > 0 {
			if _, err := io.WriteString(w, " "); err != nil {
				return err
			}
		}
		if err := serializeObject(w, item); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]")
	return err
}

// serializeDict emits keys in sorted order so output is deterministic.
func serializeDict(w io.Writer, dict *raw.DictObj) error {
	keys := make([]string, 0, len(dict.KV))
	for k := range dict.KV {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if _, err := io.WriteString(w, "<<"); err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := io.WriteString(w, " "+serializeName(k)+" "); err != nil {
			return err
		}
		if err := serializeObject(w, dict.KV[k]); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, " >>")
	return err
}

func serializeStream(w io.Writer, s *raw.StreamObj) error {
	dict := s.Dict.Clone()
	dict.Set(raw.NameLiteral("Length"), raw.NumberInt(int64(len(s.Data))))
	if err := serializeDict(w, dict); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\nstream\n"); err != nil {
		return err
	}
	if _, err := w.Write(s.Data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\nendstream")
	return err
}

// serializeNumber formats reals at single precision with trailing zeros
// trimmed, matching how coordinates round-trip through float32 models.
func serializeNumber(n raw.NumberObj) string {
	if n.IsInt {
		return strconv.FormatInt(n.I, 10)
	}
	return strconv.FormatFloat(n.F, 'f', -1, 32)
}

func serializeName(name string) string {
	out := []byte{'/'}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c <= 0x20 || c >= 0x7f || isDelimiterByte(c) || c == '#' {
			out = append(out, fmt.Sprintf("#%02X", c)...)
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

// serializeString always emits the literal form, escaping backslash,
// parentheses, and non-printable bytes.
func serializeString(data []byte) []byte {
	out := []byte{'('}
	for _, c := range data {
		switch c {
		case '\\', '(', ')':
			out = append(out, '\\', c)
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '\t':
			out = append(out, '\\', 't')
		case '\b':
			out = append(out, '\\', 'b')
		case '\f':
			out = append(out, '\\', 'f')
		default:
			if c < 0x20 || c >= 0x7f {
				out = append(out, fmt.Sprintf("\\%03o", c)...)
			} else {
				out = append(out, c)
			}
		}
	}
	return append(out, ')')
}

func isDelimiterByte(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
