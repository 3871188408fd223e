package annotation

import (
	"math"

	"github.com/markpad/annotkit/document"
	"github.com/markpad/annotkit/ir/raw"
	"github.com/markpad/annotkit/observability"
)

// removeTolerance is the per-coordinate matching bound. The comparison
// is strict, so a difference of exactly 1.0 on any coordinate is not a
// match.
const removeTolerance = 1.0

// Remove deletes every annotation on the page whose Rect matches the
// target within tolerance on all four coordinates, and reports whether
// at least one was removed. A zero-removal call writes nothing to
// destPath.
func (e *Engine) Remove(sourcePath, destPath string, pageIdx int, target Rect) (bool, error) {
	doc, err := document.Load(sourcePath)
	if err != nil {
		return false, loadError(err)
	}
	pageDict, _, err := doc.Page(pageIdx + 1)
	if err != nil {
		return false, invalidPageError(pageIdx)
	}
	arr := annotsArray(doc, pageDict)
	if arr == nil {
		return false, nil
	}

	kept := raw.NewArray()
	removed := 0
	for _, entry := range arr.Items {
		if matchesTarget(doc, entry, target) {
			removed++
			continue
		}
		kept.Append(entry)
	}
	if removed == 0 {
		return false, nil
	}

	pageDict.Set(raw.NameLiteral("Annots"), kept)
	if err := doc.Save(destPath); err != nil {
		return false, saveError(err)
	}
	e.log.Info("annotations removed",
		observability.F("count", removed), observability.F("page", pageIdx))
	return true, nil
}

// matchesTarget resolves one Annots entry and compares its Rect.
// Entries that are not dictionaries or lack a valid 4-number Rect are
// never matches; they stay in the document untouched.
func matchesTarget(doc *document.Document, entry raw.Object, target Rect) bool {
	dict, ok := doc.Resolve(entry).(*raw.DictObj)
	if !ok {
		return false
	}
	rect, ok := readRect(doc, dict)
	if !ok {
		return false
	}
	return within(rect.X1, target.X1) && within(rect.Y1, target.Y1) &&
		within(rect.X2, target.X2) && within(rect.Y2, target.Y2)
}

func within(a, b float64) bool { return math.Abs(a-b) < removeTolerance }
