package annotation

import (
	"github.com/markpad/annotkit/document"
	"github.com/markpad/annotkit/ir/raw"
	"github.com/markpad/annotkit/observability"
)

// ClearPage removes all annotations from one page by deleting the
// page's Annots key, returning how many entries it held. The annotation
// objects themselves, and an indirect Annots array if there was one,
// stay in the graph as unreferenced objects. A page that was already
// empty returns 0 and writes nothing to destPath.
func (e *Engine) ClearPage(sourcePath, destPath string, pageIdx int) (int, error) {
	doc, err := document.Load(sourcePath)
	if err != nil {
		return 0, loadError(err)
	}
	pageDict, _, err := doc.Page(pageIdx + 1)
	if err != nil {
		return 0, invalidPageError(pageIdx)
	}

	count := 0
	if arr := annotsArray(doc, pageDict); arr != nil {
		count = arr.Len()
	}
	if count == 0 {
		return 0, nil
	}

	pageDict.Delete(raw.NameLiteral("Annots"))
	if err := doc.Save(destPath); err != nil {
		return 0, saveError(err)
	}
	e.log.Info("page cleared",
		observability.F("count", count), observability.F("page", pageIdx))
	return count, nil
}
