package visualize

import (
	"fmt"
	"strings"
)

// Theme represents a color theme for plots.
type Theme string

const (
	// ThemeLight is the light color theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark color theme.
	ThemeDark Theme = "dark"
)

// ParseTheme converts a theme name; empty means dark.
func ParseTheme(name string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(name))) {
	case "", ThemeDark:
		return ThemeDark, nil
	case ThemeLight:
		return ThemeLight, nil
	default:
		return "", fmt.Errorf("%w: theme %q", ErrUnknownFormat, name)
	}
}

// themeConfig holds the chart colors of a theme.
type themeConfig struct {
	Background string
	Text       string
	TextMuted  string
	Axis       string
	Grid       string

	Signal  string
	Anomaly string
	Band    string
	Score   string
}

var lightTheme = themeConfig{
	Background: "#fafaf9", // stone-50.
	Text:       "#44403c", // stone-700.
	TextMuted:  "#78716c", // stone-500.
	Axis:       "#a8a29e", // stone-400.
	Grid:       "#e7e5e4", // stone-200.

	Signal:  "#0284c7", // sky-600.
	Anomaly: "#dc2626", // red-600.
	Band:    "#a16207", // yellow-700.
	Score:   "#7c3aed", // violet-600.
}

var darkTheme = themeConfig{
	Background: "#1c1917", // stone-900.
	Text:       "#d6d3d1", // stone-300.
	TextMuted:  "#a8a29e", // stone-400.
	Axis:       "#57534e", // stone-600.
	Grid:       "#44403c", // stone-700.

	Signal:  "#38bdf8", // sky-400.
	Anomaly: "#ef4444", // red-500.
	Band:    "#fbbf24", // amber-400.
	Score:   "#a78bfa", // violet-400.
}

func getThemeConfig(theme Theme) themeConfig {
	if theme == ThemeLight {
		return lightTheme
	}

	return darkTheme
}
