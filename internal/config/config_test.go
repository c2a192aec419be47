package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDefaults(t *testing.T) {
	cfg := Parse(nil)

	assert.Equal(t, 0.03, cfg.Sensitivity)
	assert.Equal(t, 50.0, cfg.FadeMs)
	assert.Equal(t, uint8(10), cfg.MaxAlpha)
	assert.Equal(t, Tint{R: 255, G: 255, B: 255}, cfg.TintColor)
}

func TestParseTokens(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   func(*Config)
	}{
		{
			name:   "long keys",
			tokens: []string{"sensitivity", "0.5", "fade", "200", "alpha", "128"},
			want: func(c *Config) {
				c.Sensitivity = 0.5
				c.FadeMs = 200
				c.MaxAlpha = 128
			},
		},
		{
			name:   "short keys with prefixes",
			tokens: []string{"/s", "0.1", "-f", "300", "-a", "42"},
			want: func(c *Config) {
				c.Sensitivity = 0.1
				c.FadeMs = 300
				c.MaxAlpha = 42
			},
		},
		{
			name:   "case insensitive",
			tokens: []string{"SENSITIVITY", "0.2", "Fade", "75"},
			want: func(c *Config) {
				c.Sensitivity = 0.2
				c.FadeMs = 75
			},
		},
		{
			name:   "clamped to range",
			tokens: []string{"s", "99", "f", "0.0001", "a", "9999"},
			want: func(c *Config) {
				c.Sensitivity = 1.0
				c.FadeMs = 1
				c.MaxAlpha = 255
			},
		},
		{
			name:   "color with hash",
			tokens: []string{"color", "#FF8000"},
			want: func(c *Config) {
				c.TintColor = Tint{R: 255, G: 128, B: 0}
			},
		},
		{
			name:   "color without hash",
			tokens: []string{"c", "00ff00"},
			want: func(c *Config) {
				c.TintColor = Tint{R: 0, G: 255, B: 0}
			},
		},
		{
			name:   "unknown tokens ignored",
			tokens: []string{"bogus", "nope", "s", "0.4"},
			want: func(c *Config) {
				c.Sensitivity = 0.4
			},
		},
		{
			name:   "malformed value keeps default",
			tokens: []string{"fade", "fast", "alpha", "opaque", "color", "red"},
			want:   func(c *Config) {},
		},
		{
			name:   "trailing key without value",
			tokens: []string{"fade", "120", "alpha"},
			want: func(c *Config) {
				c.FadeMs = 120
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := NewConfig()
			tt.want(want)
			assert.Equal(t, want, Parse(tt.tokens))
		})
	}
}
