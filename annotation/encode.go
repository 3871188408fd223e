package annotation

import (
	"fmt"
	"sort"
	"time"

	"github.com/markpad/annotkit/document"
	"github.com/markpad/annotkit/ir/raw"
	"github.com/markpad/annotkit/observability"
)

// timeNow is swapped in tests so encoded date strings are stable.
var timeNow = time.Now

// Add appends one new annotation object per instance to its target page
// and serializes the result to destPath. All edits happen in memory
// first; an invalid page index aborts before anything is written, so
// the destination is either complete or untouched.
func (e *Engine) Add(sourcePath, destPath string, annots []Annotation) (AddResult, error) {
	doc, err := document.Load(sourcePath)
	if err != nil {
		return AddResult{}, loadError(err)
	}
	if err := e.addToDocument(doc, annots); err != nil {
		return AddResult{}, err
	}
	if err := doc.Save(destPath); err != nil {
		return AddResult{}, saveError(err)
	}
	e.log.Info("annotations added",
		observability.F("count", len(annots)), observability.F("path", destPath))
	return AddResult{Success: true, Path: destPath, Count: len(annots)}, nil
}

func (e *Engine) addToDocument(doc *document.Document, annots []Annotation) error {
	// Stable grouping: pages ascending, original order within a page.
	byPage := make(map[int][]Annotation)
	for _, a := range annots {
		byPage[a.Page] = append(byPage[a.Page], a)
	}
	pages := make([]int, 0, len(byPage))
	for p := range byPage {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	for _, pageIdx := range pages {
		pageDict, pageRef, err := doc.Page(pageIdx + 1)
		if err != nil {
			return invalidPageError(pageIdx)
		}
		refs := existingAnnotRefs(doc, pageDict)
		for _, a := range byPage[pageIdx] {
			dict, err := buildAnnotationDict(a, pageRef)
			if err != nil {
				return &Error{Kind: KindAnnotation, Err: err}
			}
			refs.Append(raw.RefObj{R: doc.Add(dict)})
		}
		// Write-back is always a direct array, regardless of whether
		// the page originally held an indirect reference.
		pageDict.Set(raw.NameLiteral("Annots"), refs)
	}
	return nil
}

// existingAnnotRefs copies the page's current Annots entries so new
// references extend, never reorder, what is already there.
func existingAnnotRefs(doc *document.Document, page *raw.DictObj) *raw.ArrayObj {
	out := raw.NewArray()
	arr := annotsArray(doc, page)
	if arr == nil {
		return out
	}
	out.Items = append(out.Items, arr.Items...)
	return out
}

func buildAnnotationDict(a Annotation, pageRef raw.ObjectRef) (*raw.DictObj, error) {
	subtype, ok := a.Type.subtype()
	if !ok {
		return nil, fmt.Errorf("unsupported annotation type %q", a.Type)
	}

	dict := raw.Dict()
	dict.Set(raw.NameLiteral("Type"), raw.NameLiteral("Annot"))
	dict.Set(raw.NameLiteral("Subtype"), raw.NameLiteral(subtype))
	dict.Set(raw.NameLiteral("P"), raw.RefObj{R: pageRef})
	dict.Set(raw.NameLiteral("Rect"), rectArray(a.Rect))
	dict.Set(raw.NameLiteral("C"), raw.NewArray(
		raw.NumberFloat(a.Color.R), raw.NumberFloat(a.Color.G), raw.NumberFloat(a.Color.B)))
	dict.Set(raw.NameLiteral("CA"), raw.NumberFloat(a.Opacity))
	// Print visibility only. No-zoom, no-rotate and friends stay unset.
	dict.Set(raw.NameLiteral("F"), raw.NumberInt(4))

	date := raw.Str([]byte(pdfDate(timeNow())))
	dict.Set(raw.NameLiteral("CreationDate"), date)
	dict.Set(raw.NameLiteral("M"), date)

	switch {
	case a.Type.IsMarkup():
		dict.Set(raw.NameLiteral("QuadPoints"), quadPointsArray(a))
	case a.Type == Ink:
		dict.Set(raw.NameLiteral("InkList"), inkListArray(a.InkPaths))
		bs := raw.Dict()
		bs.Set(raw.NameLiteral("W"), raw.NumberFloat(a.StrokeWidth))
		dict.Set(raw.NameLiteral("BS"), bs)
	case a.Type == Text:
		dict.Set(raw.NameLiteral("Contents"), raw.Str([]byte(a.Contents)))
		dict.Set(raw.NameLiteral("Name"), raw.NameLiteral("Comment"))
		dict.Set(raw.NameLiteral("Open"), raw.Bool(false))
	}
	return dict, nil
}

func rectArray(r Rect) *raw.ArrayObj {
	return raw.NewArray(
		raw.NumberFloat(r.X1), raw.NumberFloat(r.Y1),
		raw.NumberFloat(r.X2), raw.NumberFloat(r.Y2))
}

// quadPointsArray flattens the supplied quads, or synthesizes the
// default quad from the rectangle corners in the order top-left,
// top-right, bottom-left, bottom-right.
func quadPointsArray(a Annotation) *raw.ArrayObj {
	points := a.QuadPoints
	if len(points) == 0 {
		points = []Point{
			{X: a.Rect.X1, Y: a.Rect.Y2},
			{X: a.Rect.X2, Y: a.Rect.Y2},
			{X: a.Rect.X1, Y: a.Rect.Y1},
			{X: a.Rect.X2, Y: a.Rect.Y1},
		}
	}
	out := raw.NewArray()
	for _, p := range points {
		out.Append(raw.NumberFloat(p.X))
		out.Append(raw.NumberFloat(p.Y))
	}
	return out
}

// inkListArray keeps zero-point strokes as empty arrays; dropping them
// is the decoder's business, not the encoder's.
func inkListArray(paths [][]Point) *raw.ArrayObj {
	out := raw.NewArray()
	for _, stroke := range paths {
		flat := raw.NewArray()
		for _, p := range stroke {
			flat.Append(raw.NumberFloat(p.X))
			flat.Append(raw.NumberFloat(p.Y))
		}
		out.Append(flat)
	}
	return out
}

// pdfDate renders the PDF date-string convention in UTC, e.g.
// D:20260831120000+00'00'.
func pdfDate(t time.Time) string {
	return "D:" + t.UTC().Format("20060102150405") + "+00'00'"
}
