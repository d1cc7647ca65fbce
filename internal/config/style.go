package config

import (
	"fmt"
	"strings"
)

const (
	StyleClean     = "clean"
	StyleCinematic = "cinematic"
	StyleEnergetic = "energetic"
	StyleDreamy    = "dreamy"
)

// NormalizeStyle canonicalizes a visual-style tag. Empty selects clean.
func NormalizeStyle(raw string) (string, error) {
	style := strings.ToLower(strings.TrimSpace(raw))
	if style == "" {
		style = StyleClean
	}
	switch style {
	case StyleClean, StyleCinematic, StyleEnergetic, StyleDreamy:
		return style, nil
	default:
		return "", fmt.Errorf(
			"invalid style %q (expected %s|%s|%s|%s)",
			raw,
			StyleClean,
			StyleCinematic,
			StyleEnergetic,
			StyleDreamy,
		)
	}
}
