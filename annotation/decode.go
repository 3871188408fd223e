package annotation

import (
	"github.com/markpad/annotkit/document"
	"github.com/markpad/annotkit/ir/raw"
	"github.com/markpad/annotkit/observability"
)

// Decode returns every supported annotation in the document, in page
// order then per-page Annots order. Unknown subtypes and malformed
// entries are omitted, not errors; only a load failure fails the call.
func (e *Engine) Decode(sourcePath string) ([]Annotation, error) {
	doc, err := document.Load(sourcePath)
	if err != nil {
		return nil, loadError(err)
	}
	return e.decodeDocument(doc), nil
}

// DecodeBytes is Decode over an in-memory document.
func (e *Engine) DecodeBytes(data []byte) ([]Annotation, error) {
	doc, err := document.LoadBytes(data)
	if err != nil {
		return nil, loadError(err)
	}
	return e.decodeDocument(doc), nil
}

func (e *Engine) decodeDocument(doc *document.Document) []Annotation {
	var out []Annotation
	for pageIdx := 0; pageIdx < doc.PageCount(); pageIdx++ {
		pageDict, _, err := doc.Page(pageIdx + 1)
		if err != nil {
			e.log.Debug("skipping unreadable page", observability.F("page", pageIdx))
			continue
		}
		arr := annotsArray(doc, pageDict)
		if arr == nil {
			continue
		}
		for i, entry := range arr.Items {
			annot, ok := e.decodeEntry(doc, entry, pageIdx)
			if !ok {
				e.log.Debug("skipping annotation entry",
					observability.F("page", pageIdx), observability.F("index", i))
				continue
			}
			out = append(out, annot)
		}
	}
	return out
}

// decodeEntry reads one Annots entry. A false return means the entry is
// unsupported or malformed and must be omitted.
func (e *Engine) decodeEntry(doc *document.Document, entry raw.Object, pageIdx int) (Annotation, bool) {
	dict, ok := doc.Resolve(entry).(*raw.DictObj)
	if !ok {
		return Annotation{}, false
	}
	subtypeObj, ok := dict.Get(raw.NameLiteral("Subtype"))
	if !ok {
		return Annotation{}, false
	}
	subtype, ok := doc.Resolve(subtypeObj).(raw.NameObj)
	if !ok {
		return Annotation{}, false
	}
	typ, ok := typeFromSubtype(subtype.Val)
	if !ok {
		return Annotation{}, false
	}
	rect, ok := readRect(doc, dict)
	if !ok {
		return Annotation{}, false
	}

	annot := Annotation{
		Type:     typ,
		Page:     pageIdx,
		Rect:     rect,
		Color:    readColor(doc, dict),
		Opacity:  readOpacity(doc, dict),
		Contents: readContents(doc, dict),
	}
	switch {
	case typ.IsMarkup():
		annot.QuadPoints = readQuadPoints(doc, dict)
	case typ == Ink:
		annot.InkPaths = readInkPaths(doc, dict)
		annot.StrokeWidth = readStrokeWidth(doc, dict)
	}
	return annot, true
}

// annotsArray resolves a page's Annots entry, which may be a direct
// array or an indirect reference to one. Nil means no usable array.
func annotsArray(doc *document.Document, page *raw.DictObj) *raw.ArrayObj {
	obj, ok := page.Get(raw.NameLiteral("Annots"))
	if !ok {
		return nil
	}
	arr, ok := doc.Resolve(obj).(*raw.ArrayObj)
	if !ok {
		return nil
	}
	return arr
}

// Read-or-default field accessors. Each reads exactly one optional
// field and falls back to the documented default on absence or
// malformation.

func readRect(doc *document.Document, dict *raw.DictObj) (Rect, bool) {
	obj, ok := dict.Get(raw.NameLiteral("Rect"))
	if !ok {
		return Rect{}, false
	}
	nums, ok := numberSlice(doc, obj)
	if !ok || len(nums) != 4 {
		return Rect{}, false
	}
	return Rect{X1: nums[0], Y1: nums[1], X2: nums[2], Y2: nums[3]}, true
}

func readColor(doc *document.Document, dict *raw.DictObj) Color {
	obj, ok := dict.Get(raw.NameLiteral("C"))
	if !ok {
		return DefaultColor
	}
	nums, ok := numberSlice(doc, obj)
	if !ok || len(nums) != 3 {
		return DefaultColor
	}
	return Color{R: nums[0], G: nums[1], B: nums[2]}
}

// readOpacity defaults to fully opaque: a dictionary without CA renders
// at 1.0 in a conforming reader.
func readOpacity(doc *document.Document, dict *raw.DictObj) float64 {
	obj, ok := dict.Get(raw.NameLiteral("CA"))
	if !ok {
		return 1.0
	}
	num, ok := doc.Resolve(obj).(raw.NumberObj)
	if !ok {
		return 1.0
	}
	return num.Float()
}

func readContents(doc *document.Document, dict *raw.DictObj) string {
	obj, ok := dict.Get(raw.NameLiteral("Contents"))
	if !ok {
		return ""
	}
	str, ok := doc.Resolve(obj).(raw.StringObj)
	if !ok {
		return ""
	}
	return string(str.Bytes)
}

func readQuadPoints(doc *document.Document, dict *raw.DictObj) []Point {
	obj, ok := dict.Get(raw.NameLiteral("QuadPoints"))
	if !ok {
		return nil
	}
	nums, ok := numberSlice(doc, obj)
	if !ok {
		return nil
	}
	points := make([]Point, 0, len(nums)/2)
	for i := 0; i+1 < len(nums); i += 2 {
		points = append(points, Point{X: nums[i], Y: nums[i+1]})
	}
	return points
}

// readInkPaths drops empty strokes, matching what a reader would render
// as nothing anyway.
func readInkPaths(doc *document.Document, dict *raw.DictObj) [][]Point {
	obj, ok := dict.Get(raw.NameLiteral("InkList"))
	if !ok {
		return nil
	}
	list, ok := doc.Resolve(obj).(*raw.ArrayObj)
	if !ok {
		return nil
	}
	var paths [][]Point
	for _, strokeObj := range list.Items {
		nums, ok := numberSlice(doc, strokeObj)
		if !ok || len(nums) < 2 {
			continue
		}
		stroke := make([]Point, 0, len(nums)/2)
		for i := 0; i+1 < len(nums); i += 2 {
			stroke = append(stroke, Point{X: nums[i], Y: nums[i+1]})
		}
		paths = append(paths, stroke)
	}
	return paths
}

func readStrokeWidth(doc *document.Document, dict *raw.DictObj) float64 {
	obj, ok := dict.Get(raw.NameLiteral("BS"))
	if !ok {
		return DefaultStrokeWidth
	}
	bs, ok := doc.Resolve(obj).(*raw.DictObj)
	if !ok {
		return DefaultStrokeWidth
	}
	wObj, ok := bs.Get(raw.NameLiteral("W"))
	if !ok {
		return DefaultStrokeWidth
	}
	num, ok := doc.Resolve(wObj).(raw.NumberObj)
	if !ok {
		return DefaultStrokeWidth
	}
	return num.Float()
}

// numberSlice resolves an array of numbers, dereferencing both the
// array itself and each element.
func numberSlice(doc *document.Document, obj raw.Object) ([]float64, bool) {
	arr, ok := doc.Resolve(obj).(*raw.ArrayObj)
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, arr.Len())
	for _, item := range arr.Items {
		num, ok := doc.Resolve(item).(raw.NumberObj)
		if !ok {
			return nil, false
		}
		out = append(out, num.Float())
	}
	return out, true
}
