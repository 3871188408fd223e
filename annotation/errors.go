package annotation

import "fmt"

// Kind discriminates the failure classes of the engine's operations.
type Kind int

const (
	// KindLoad covers a source that cannot be read or parsed.
	KindLoad Kind = iota
	// KindSave covers serialization or I/O failure on the destination.
	KindSave
	// KindInvalidPage covers a page index with no counterpart.
	KindInvalidPage
	// KindAnnotation covers structural failures that policy does not
	// downgrade to a silent skip.
	KindAnnotation
)

func (k Kind) String() string {
	switch k {
	case KindLoad:
		return "load"
	case KindSave:
		return "save"
	case KindInvalidPage:
		return "invalid page"
	case KindAnnotation:
		return "annotation"
	}
	return "unknown"
}

// Error is the single discriminated error type of this package. Page is
// meaningful only for KindInvalidPage.
type Error struct {
	Kind Kind
	Page int
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindInvalidPage:
		return fmt.Sprintf("invalid page index %d", e.Page)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func loadError(err error) *Error { return &Error{Kind: KindLoad, Err: err} }
func saveError(err error) *Error { return &Error{Kind: KindSave, Err: err} }

func invalidPageError(page int) *Error { return &Error{Kind: KindInvalidPage, Page: page} }
