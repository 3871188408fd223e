package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/markpad/annotkit/annotation"
)

// Config carries the defaults applied to JSON annotation input that
// omits the optional fields.
//
// Example file:
//
//	opacity = 0.7
//	stroke_width = 1.5
//
//	[color]
//	r = 0.2
//	g = 0.6
//	b = 1.0
type Config struct {
	Color       annotation.Color `toml:"color"`
	Opacity     float64          `toml:"opacity"`
	StrokeWidth float64          `toml:"stroke_width"`
}

func defaultConfig() Config {
	return Config{
		Color:       annotation.DefaultColor,
		Opacity:     annotation.DefaultOpacity,
		StrokeWidth: annotation.DefaultStrokeWidth,
	}
}

// loadConfig reads the TOML file at path over the built-in defaults. An
// empty path returns the defaults untouched.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if cfg.Opacity < 0 || cfg.Opacity > 1 {
		return Config{}, fmt.Errorf("config opacity %v out of range [0, 1]", cfg.Opacity)
	}
	return cfg, nil
}
