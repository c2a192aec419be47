package config

import (
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Tint is an RGB multiplier applied to the trail glyph.
type Tint struct {
	R, G, B uint8
}

type Config struct {
	// Sensitivity scales trail opacity with pointer speed.
	Sensitivity float64
	// FadeMs is how long each trail sample takes to fade out, in milliseconds.
	FadeMs float64
	// MaxAlpha is the trail starting opacity.
	MaxAlpha uint8
	// TintColor is multiplied into the glyph bitmap.
	TintColor Tint
}

func NewConfig() *Config {
	return &Config{
		Sensitivity: 0.03,
		FadeMs:      50,
		MaxAlpha:    10,
		TintColor:   Tint{R: 255, G: 255, B: 255},
	}
}

// Parse applies free-form command tokens to a fresh Config. Keys are
// case-insensitive, order-independent and may carry a "/" or "-" prefix.
// Malformed or unknown tokens are ignored and the previous value kept.
func Parse(tokens []string) *Config {
	cfg := NewConfig()

	for i := 0; i < len(tokens); i++ {
		key := strings.ToLower(strings.TrimLeft(tokens[i], "/-"))

		switch key {
		case "sensitivity", "s", "fade", "f", "alpha", "a", "color", "c":
		default:
			continue
		}

		if i+1 >= len(tokens) {
			break
		}
		val := tokens[i+1]
		i++ // The value token is consumed even if it fails to parse

		switch key {
		case "sensitivity", "s":
			if v, err := strconv.ParseFloat(val, 64); err == nil {
				cfg.Sensitivity = clampFloat(v, 0.001, 1.0)
			}
		case "fade", "f":
			if v, err := strconv.ParseFloat(val, 64); err == nil {
				cfg.FadeMs = clampFloat(v, 1, 1000)
			}
		case "alpha", "a":
			if v, err := strconv.Atoi(val); err == nil {
				cfg.MaxAlpha = uint8(clampInt(v, 0, 255))
			}
		case "color", "c":
			if t, ok := parseHexColor(val); ok {
				cfg.TintColor = t
			}
		}
	}

	return cfg
}

func parseHexColor(s string) (Tint, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return Tint{}, false
	}
	c, err := colorful.Hex("#" + strings.ToLower(s))
	if err != nil {
		return Tint{}, false
	}
	r, g, b := c.RGB255()
	return Tint{R: r, G: g, B: b}, true
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
