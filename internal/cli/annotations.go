package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/markpad/annotkit/annotation"
)

// annotationSpec is the JSON input shape for add. Optional fields are
// pointers so absence is distinguishable from a zero value and can fall
// back to the configured defaults.
type annotationSpec struct {
	ID          string               `json:"id"`
	Type        annotation.Type      `json:"type"`
	Page        int                  `json:"page"`
	Rect        annotation.Rect      `json:"rect"`
	QuadPoints  []annotation.Point   `json:"quad_points"`
	InkPaths    [][]annotation.Point `json:"ink_paths"`
	Contents    string               `json:"contents"`
	Color       *annotation.Color    `json:"color"`
	Opacity     *float64             `json:"opacity"`
	StrokeWidth *float64             `json:"stroke_width"`
}

func loadAnnotationSpecs(path string) ([]annotationSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var specs []annotationSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, s := range specs {
		if !s.Type.Valid() {
			return nil, fmt.Errorf("%s: entry %d has unsupported type %q", path, i, s.Type)
		}
		if s.Page < 0 {
			return nil, fmt.Errorf("%s: entry %d has negative page index %d", path, i, s.Page)
		}
	}
	return specs, nil
}

// toModel fills the configured defaults and generates an ID when the
// caller supplied none.
func (s annotationSpec) toModel(cfg Config) annotation.Annotation {
	a := annotation.Annotation{
		ID:          s.ID,
		Type:        s.Type,
		Page:        s.Page,
		Rect:        s.Rect,
		QuadPoints:  s.QuadPoints,
		InkPaths:    s.InkPaths,
		Contents:    s.Contents,
		Color:       cfg.Color,
		Opacity:     cfg.Opacity,
		StrokeWidth: cfg.StrokeWidth,
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if s.Color != nil {
		a.Color = *s.Color
	}
	if s.Opacity != nil {
		a.Opacity = *s.Opacity
	}
	if s.StrokeWidth != nil {
		a.StrokeWidth = *s.StrokeWidth
	}
	return a
}

// parseRect reads the flag form "x1,y1,x2,y2".
func parseRect(s string) (annotation.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return annotation.Rect{}, fmt.Errorf("rect %q: want x1,y1,x2,y2", s)
	}
	coords := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return annotation.Rect{}, fmt.Errorf("rect %q: coordinate %d: %w", s, i+1, err)
		}
		coords[i] = v
	}
	return annotation.Rect{X1: coords[0], Y1: coords[1], X2: coords[2], Y2: coords[3]}, nil
}
