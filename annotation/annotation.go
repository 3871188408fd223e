// Package annotation decodes, adds, removes, and clears PDF page
// annotations by editing the document's indirect-object graph directly.
// Every operation loads a private graph from its source, mutates it in
// memory, and serializes at most once, so a destination file is either
// complete or absent.
package annotation

import (
	"github.com/markpad/annotkit/observability"
)

// Type identifies one supported annotation kind.
type Type string

const (
	Highlight     Type = "highlight"
	Underline     Type = "underline"
	Strikethrough Type = "strikethrough"
	Ink           Type = "ink"
	Text          Type = "text"
)

// subtype maps a Type onto its PDF Subtype name. Strikethrough is the
// odd one out: the PDF name is StrikeOut.
func (t Type) subtype() (string, bool) {
	switch t {
	case Highlight:
		return "Highlight", true
	case Underline:
		return "Underline", true
	case Strikethrough:
		return "StrikeOut", true
	case Ink:
		return "Ink", true
	case Text:
		return "Text", true
	}
	return "", false
}

func typeFromSubtype(name string) (Type, bool) {
	switch name {
	case "Highlight":
		return Highlight, true
	case "Underline":
		return Underline, true
	case "StrikeOut":
		return Strikethrough, true
	case "Ink":
		return Ink, true
	case "Text":
		return Text, true
	}
	return "", false
}

// Valid reports whether the type is one of the supported kinds.
func (t Type) Valid() bool {
	_, ok := t.subtype()
	return ok
}

// IsMarkup reports whether the type carries quad-point geometry.
func (t Type) IsMarkup() bool {
	return t == Highlight || t == Underline || t == Strikethrough
}

// Point is a position in page user space (origin bottom-left, units of
// 1/72 inch).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a four-coordinate bounding box. Corner ordering is the
// caller's responsibility; nothing here enforces x1 < x2 or y1 < y2.
type Rect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Color is an RGB triple with components in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// DefaultColor is the yellow used when a caller or a decoded dictionary
// supplies no color.
var DefaultColor = Color{R: 1.0, G: 0.92, B: 0.23}

const (
	// DefaultOpacity applies when a caller constructs an annotation
	// without one. Decoding a dictionary without CA yields 1.0 instead.
	DefaultOpacity = 0.5

	// DefaultStrokeWidth applies to ink annotations without an explicit
	// border width.
	DefaultStrokeWidth = 2.0
)

// Annotation is the in-memory form of one annotation instance. It is
// ephemeral: built by the caller or the decoder, consumed once, never
// mutated afterward. ID is opaque caller state and is never persisted.
type Annotation struct {
	ID          string    `json:"id,omitempty"`
	Type        Type      `json:"type"`
	Page        int       `json:"page"` // 0-based
	Rect        Rect      `json:"rect"`
	QuadPoints  []Point   `json:"quad_points,omitempty"`
	InkPaths    [][]Point `json:"ink_paths,omitempty"`
	Contents    string    `json:"contents,omitempty"`
	Color       Color     `json:"color"`
	Opacity     float64   `json:"opacity"`
	StrokeWidth float64   `json:"stroke_width,omitempty"`
}

// New builds an annotation with the model-boundary defaults filled in.
func New(t Type, page int, rect Rect) Annotation {
	return Annotation{
		Type:        t,
		Page:        page,
		Rect:        rect,
		Color:       DefaultColor,
		Opacity:     DefaultOpacity,
		StrokeWidth: DefaultStrokeWidth,
	}
}

// AddResult reports the outcome of a successful Add.
type AddResult struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
	Count   int    `json:"count"`
}

// Engine performs the four operations. It holds no document state; each
// call works on its own graph snapshot.
type Engine struct {
	log observability.Logger
}

type Option func(*Engine)

// WithLogger routes the engine's skip decisions and progress to the
// given logger. Decode drops malformed entries silently by contract;
// the debug log is the only place they surface.
func WithLogger(l observability.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{log: observability.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
