// Package document wraps a raw object graph with page-level access and
// whole-file load/save. Edits happen in memory; nothing touches disk
// until Save is called.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/markpad/annotkit/ir/raw"
	"github.com/markpad/annotkit/parser"
	"github.com/markpad/annotkit/writer"
)

// maxResolveDepth bounds reference chasing so a reference cycle cannot
// hang a lookup.
const maxResolveDepth = 32

type Document struct {
	raw   *raw.Document
	pages []raw.ObjectRef // in document order, index 0 = page 1
}

func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadFrom(f)
}

func LoadBytes(data []byte) (*Document, error) {
	return LoadFrom(bytes.NewReader(data))
}

func LoadFrom(r io.ReaderAt) (*Document, error) {
	rawDoc, err := parser.New().Parse(r)
	if err != nil {
		return nil, err
	}
	return FromRaw(rawDoc)
}

// FromRaw builds the page index over an already-parsed graph.
func FromRaw(rawDoc *raw.Document) (*Document, error) {
	d := &Document{raw: rawDoc}
	if err := d.indexPages(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Document) Raw() *raw.Document { return d.raw }

func (d *Document) PageCount() int { return len(d.pages) }

// Page returns the page dictionary for a 1-based page number.
func (d *Document) Page(num int) (*raw.DictObj, raw.ObjectRef, error) {
	if num < 1 || num > len(d.pages) {
		return nil, raw.ObjectRef{}, fmt.Errorf("page %d out of range 1..%d", num, len(d.pages))
	}
	ref := d.pages[num-1]
	dict, ok := d.raw.Objects[ref].(*raw.DictObj)
	if !ok {
		return nil, raw.ObjectRef{}, fmt.Errorf("page %d object %s is not a dictionary", num, ref)
	}
	return dict, ref, nil
}

func (d *Document) Get(ref raw.ObjectRef) (raw.Object, bool) {
	obj, ok := d.raw.Objects[ref]
	return obj, ok
}

func (d *Document) Set(ref raw.ObjectRef, obj raw.Object) {
	d.raw.Objects[ref] = obj
}

// Add inserts a new object under the next unused object number.
func (d *Document) Add(obj raw.Object) raw.ObjectRef {
	ref := raw.ObjectRef{Num: d.raw.MaxObjectNumber() + 1}
	d.raw.Objects[ref] = obj
	return ref
}

// Resolve follows reference objects until a concrete object or a
// missing target is hit. Missing targets resolve to null.
func (d *Document) Resolve(obj raw.Object) raw.Object {
	for depth := 0; depth < maxResolveDepth; depth++ {
		ref, ok := obj.(raw.RefObj)
		if !ok {
			return obj
		}
		target, ok := d.raw.Objects[ref.R]
		if !ok {
			return raw.NullObj{}
		}
		obj = target
	}
	return raw.NullObj{}
}

func (d *Document) Save(path string) error {
	var buf bytes.Buffer
	if err := writer.WriteDocument(d.raw, &buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := writer.WriteDocument(d.raw, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// indexPages walks Catalog -> Pages -> Kids depth first, collecting leaf
// Page objects in document order.
func (d *Document) indexPages() error {
	if d.raw.Trailer == nil {
		return errors.New("document has no trailer")
	}
	rootObj, ok := d.raw.Trailer.Get(raw.NameLiteral("Root"))
	if !ok {
		return errors.New("trailer has no Root")
	}
	catalog, ok := d.Resolve(rootObj).(*raw.DictObj)
	if !ok {
		return errors.New("Root is not a dictionary")
	}
	pagesObj, ok := catalog.Get(raw.NameLiteral("Pages"))
	if !ok {
		return errors.New("catalog has no Pages")
	}
	pagesRef, ok := pagesObj.(raw.RefObj)
	if !ok {
		return errors.New("catalog Pages is not an indirect reference")
	}
	visited := make(map[raw.ObjectRef]bool)
	return d.walkPageTree(pagesRef.R, visited)
}

func (d *Document) walkPageTree(ref raw.ObjectRef, visited map[raw.ObjectRef]bool) error {
	if visited[ref] {
		return fmt.Errorf("page tree cycle at %s", ref)
	}
	visited[ref] = true

	node, ok := d.raw.Objects[ref].(*raw.DictObj)
	if !ok {
		return fmt.Errorf("page tree node %s is not a dictionary", ref)
	}
	typ, _ := node.Get(raw.NameLiteral("Type"))
	name, _ := typ.(raw.NameObj)
	switch name.Val {
	case "Page":
		d.pages = append(d.pages, ref)
		return nil
	case "Pages":
		kidsObj, ok := node.Get(raw.NameLiteral("Kids"))
		if !ok {
			return nil
		}
		kids, ok := d.Resolve(kidsObj).(*raw.ArrayObj)
		if !ok {
			return fmt.Errorf("Kids of %s is not an array", ref)
		}
		for _, kid := range kids.Items {
			kidRef, ok := kid.(raw.RefObj)
			if !ok {
				return fmt.Errorf("Kids entry of %s is not an indirect reference", ref)
			}
			if err := d.walkPageTree(kidRef.R, visited); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("page tree node %s has type %q", ref, name.Val)
	}
}
