package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/markpad/annotkit/annotation"
)

func TestParseRect(t *testing.T) {
	got, err := parseRect("10,10.5, 50 ,30")
	if err != nil {
		t.Fatalf("parseRect: %v", err)
	}
	want := annotation.Rect{X1: 10, Y1: 10.5, X2: 50, Y2: 30}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rect mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"", "1,2,3", "1,2,3,4,5", "a,b,c,d"} {
		if _, err := parseRect(bad); err == nil {
			t.Errorf("parseRect(%q) should fail", bad)
		}
	}
}

func TestSpecDefaults(t *testing.T) {
	cfg := defaultConfig()
	spec := annotationSpec{Type: annotation.Highlight, Page: 1, Rect: annotation.Rect{X1: 1, Y1: 2, X2: 3, Y2: 4}}

	a := spec.toModel(cfg)
	if a.Color != annotation.DefaultColor {
		t.Errorf("Color = %+v, want default yellow", a.Color)
	}
	if a.Opacity != annotation.DefaultOpacity {
		t.Errorf("Opacity = %v, want %v", a.Opacity, annotation.DefaultOpacity)
	}
	if a.ID == "" {
		t.Error("missing id must be generated")
	}

	op := 0.9
	spec.Opacity = &op
	spec.Color = &annotation.Color{R: 0, G: 0, B: 1}
	spec.ID = "caller-id"
	a = spec.toModel(cfg)
	if a.Opacity != 0.9 || a.Color.B != 1 || a.ID != "caller-id" {
		t.Errorf("explicit fields lost: %+v", a)
	}
}

func TestLoadAnnotationSpecs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annots.json")
	data := `[
		{"type": "highlight", "page": 0, "rect": {"x1": 10, "y1": 10, "x2": 50, "y2": 30}},
		{"type": "text", "page": 1, "rect": {"x1": 1, "y1": 1, "x2": 2, "y2": 2}, "contents": "hi", "opacity": 0.8}
	]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	specs, err := loadAnnotationSpecs(path)
	if err != nil {
		t.Fatalf("loadAnnotationSpecs: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("got %d specs, want 2", len(specs))
	}
	if specs[1].Opacity == nil || *specs[1].Opacity != 0.8 {
		t.Errorf("opacity pointer not populated: %+v", specs[1])
	}
	if specs[0].Opacity != nil {
		t.Error("absent opacity must stay nil so defaults apply")
	}
}

func TestLoadAnnotationSpecsRejectsBadType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annots.json")
	if err := os.WriteFile(path, []byte(`[{"type": "circle", "page": 0}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadAnnotationSpecs(path); err == nil {
		t.Fatal("unsupported type must be rejected")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.toml")
	data := "opacity = 0.7\nstroke_width = 1.5\n\n[color]\nr = 0.2\ng = 0.6\nb = 1.0\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	want := Config{Color: annotation.Color{R: 0.2, G: 0.6, B: 1.0}, Opacity: 0.7, StrokeWidth: 1.5}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	if got, err := loadConfig(""); err != nil || got != defaultConfig() {
		t.Errorf("empty path: got %+v, %v", got, err)
	}
}

func TestLoadConfigRejectsBadOpacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.toml")
	if err := os.WriteFile(path, []byte("opacity = 1.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Fatal("out-of-range opacity must be rejected")
	}
}

func TestWriteTarget(t *testing.T) {
	if _, err := newWriteTarget("a.pdf", "b.pdf", true); err == nil {
		t.Error("--in-place with --output must be rejected")
	}
	if _, err := newWriteTarget("a.pdf", "", false); err == nil {
		t.Error("neither flag must be rejected")
	}

	target, err := newWriteTarget("a.pdf", "", true)
	if err != nil {
		t.Fatal(err)
	}
	if target.dest != "a.pdf.tmp" || target.resultPath() != "a.pdf" {
		t.Errorf("in-place target = %+v", target)
	}

	target, err = newWriteTarget("a.pdf", "b.pdf", false)
	if err != nil {
		t.Fatal(err)
	}
	if target.dest != "b.pdf" || target.resultPath() != "b.pdf" {
		t.Errorf("output target = %+v", target)
	}
}

func TestWriteTargetFinalize(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(src, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	target, err := newWriteTarget(src, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target.dest, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := target.finalize(true); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	got, _ := os.ReadFile(src)
	if string(got) != "new" {
		t.Errorf("source = %q, want temp file renamed over it", got)
	}
	if _, err := os.Stat(target.dest); !os.IsNotExist(err) {
		t.Error("temp file still present after rename")
	}

	// No-op path discards the temp file.
	if err := os.WriteFile(target.dest, []byte("scratch"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := target.finalize(false); err != nil {
		t.Fatalf("finalize no-op: %v", err)
	}
	if _, err := os.Stat(target.dest); !os.IsNotExist(err) {
		t.Error("temp file not discarded on no-op")
	}
}
