// Package theme holds the terminal styles shared by help output, error
// messages and the log formatter.
package theme

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/cydantic/config"
	"github.com/muesli/termenv"
)

const defaultThemeName = "kanagawa"

// --- Kanagawa palette (light, dark) ---
const (
	kanagawaLightGreen  = "#4E7C5A"
	kanagawaDarkGreen   = "#98BB6C"
	kanagawaLightYellow = "#A68A64"
	kanagawaDarkYellow  = "#FF9E3B"
	kanagawaLightRed    = "#C34043"
	kanagawaDarkRed     = "#FF5D62"
	kanagawaLightOrange = "#CC6B4E"
	kanagawaDarkOrange  = "#FFA066"
	kanagawaLightCyan   = "#5B8BBE"
	kanagawaDarkCyan    = "#7E9CD8"
	kanagawaLightBlue   = "#4F7CAC"
	kanagawaDarkBlue    = "#7FB4CA"
	kanagawaLightViolet = "#674D7A"
	kanagawaDarkViolet  = "#957FB8"
	kanagawaLightMuted  = "#6C7086"
	kanagawaDarkMuted   = "#727169"
)

// --- Terminal (ANSI-friendly) palette ---
const (
	terminalGreen  = "2"
	terminalYellow = "3"
	terminalRed    = "1"
	terminalOrange = "208"
	terminalCyan   = "6"
	terminalBlue   = "4"
	terminalViolet = "5"
	terminalMuted  = "8"
)

// Colors is the palette a theme is built from.
type Colors struct {
	Green     lipgloss.TerminalColor
	Yellow    lipgloss.TerminalColor
	Red       lipgloss.TerminalColor
	Orange    lipgloss.TerminalColor
	Cyan      lipgloss.TerminalColor
	Blue      lipgloss.TerminalColor
	Violet    lipgloss.TerminalColor
	MutedText lipgloss.TerminalColor
}

// Theme holds the pre-configured styles.
type Theme struct {
	Name   string
	Colors Colors

	Header  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style

	Bold   lipgloss.Style
	Italic lipgloss.Style
	Muted  lipgloss.Style
	Accent lipgloss.Style
	Code   lipgloss.Style
}

var themeRegistry = map[string]func() Colors{
	"kanagawa": newKanagawaColors,
	"terminal": newTerminalColors,
}

// DefaultTheme is the theme selected by CYDANTIC_THEME or the cli.theme setting.
var DefaultTheme = NewTheme()

// NewTheme creates a theme based on the configured theme selection.
func NewTheme() *Theme {
	return NewThemeWithName(getThemeName())
}

// NewThemeWithName constructs a theme from a palette name. Unknown names
// fall back to the default palette.
func NewThemeWithName(name string) *Theme {
	key := normalizeThemeName(name)
	builder, ok := themeRegistry[key]
	if !ok {
		key = defaultThemeName
		builder = themeRegistry[key]
	}
	colors := builder()

	return &Theme{
		Name:    key,
		Colors:  colors,
		Header:  lipgloss.NewStyle().Bold(true).Foreground(colors.Orange),
		Success: lipgloss.NewStyle().Bold(true).Foreground(colors.Green),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(colors.Red),
		Warning: lipgloss.NewStyle().Bold(true).Foreground(colors.Yellow),
		Bold:    lipgloss.NewStyle().Bold(true),
		Italic:  lipgloss.NewStyle().Italic(true),
		Muted:   lipgloss.NewStyle().Foreground(colors.MutedText),
		Accent:  lipgloss.NewStyle().Foreground(colors.Cyan),
		Code:    lipgloss.NewStyle().Foreground(colors.Violet),
	}
}

// InitializeColor picks the lipgloss color profile from the environment.
// NO_COLOR disables styling; CLICOLOR_FORCE=1 or COLORTERM=truecolor force
// full color even when output is not a terminal.
func InitializeColor() {
	switch {
	case os.Getenv("NO_COLOR") != "":
		lipgloss.SetColorProfile(termenv.Ascii)
	case os.Getenv("CLICOLOR_FORCE") == "1" || os.Getenv("COLORTERM") == "truecolor":
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
}

func normalizeThemeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, " ", "-")
	normalized = strings.ReplaceAll(normalized, "_", "-")
	return normalized
}

func getThemeName() string {
	if theme := normalizeThemeName(os.Getenv("CYDANTIC_THEME")); theme != "" {
		return theme
	}

	cfg, err := config.LoadDefault()
	if err != nil || cfg == nil {
		return defaultThemeName
	}

	var cliCfg struct {
		Theme string `yaml:"theme"`
	}
	if err := cfg.UnmarshalExtension("cli", &cliCfg); err == nil {
		if theme := normalizeThemeName(cliCfg.Theme); theme != "" {
			return theme
		}
	}

	return defaultThemeName
}

func newKanagawaColors() Colors {
	return Colors{
		Green:     lipgloss.AdaptiveColor{Light: kanagawaLightGreen, Dark: kanagawaDarkGreen},
		Yellow:    lipgloss.AdaptiveColor{Light: kanagawaLightYellow, Dark: kanagawaDarkYellow},
		Red:       lipgloss.AdaptiveColor{Light: kanagawaLightRed, Dark: kanagawaDarkRed},
		Orange:    lipgloss.AdaptiveColor{Light: kanagawaLightOrange, Dark: kanagawaDarkOrange},
		Cyan:      lipgloss.AdaptiveColor{Light: kanagawaLightCyan, Dark: kanagawaDarkCyan},
		Blue:      lipgloss.AdaptiveColor{Light: kanagawaLightBlue, Dark: kanagawaDarkBlue},
		Violet:    lipgloss.AdaptiveColor{Light: kanagawaLightViolet, Dark: kanagawaDarkViolet},
		MutedText: lipgloss.AdaptiveColor{Light: kanagawaLightMuted, Dark: kanagawaDarkMuted},
	}
}

func newTerminalColors() Colors {
	return Colors{
		Green:     lipgloss.Color(terminalGreen),
		Yellow:    lipgloss.Color(terminalYellow),
		Red:       lipgloss.Color(terminalRed),
		Orange:    lipgloss.Color(terminalOrange),
		Cyan:      lipgloss.Color(terminalCyan),
		Blue:      lipgloss.Color(terminalBlue),
		Violet:    lipgloss.Color(terminalViolet),
		MutedText: lipgloss.Color(terminalMuted),
	}
}
