// Package theme provides color theming for the TUI.
package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	// Primary colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Accent    lipgloss.AdaptiveColor

	// Background colors
	Background lipgloss.AdaptiveColor
	Surface    lipgloss.AdaptiveColor
	Overlay    lipgloss.AdaptiveColor

	// Text colors
	Text          lipgloss.AdaptiveColor
	TextMuted     lipgloss.AdaptiveColor
	TextHighlight lipgloss.AdaptiveColor

	// Semantic colors
	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor

	// Search result colors
	Mark     lipgloss.AdaptiveColor // background behind matched terms
	Link     lipgloss.AdaptiveColor
	Skeleton lipgloss.AdaptiveColor

	// Review kind colors
	KindMovie lipgloss.AdaptiveColor
	KindBook  lipgloss.AdaptiveColor
}

// MarqueeTheme is the default theater-marquee color scheme.
var MarqueeTheme = Theme{
	Primary:   lipgloss.AdaptiveColor{Light: "#9A1B1F", Dark: "#E0474C"}, // Curtain red
	Secondary: lipgloss.AdaptiveColor{Light: "#4B3F72", Dark: "#8C7DC8"}, // Velvet
	Accent:    lipgloss.AdaptiveColor{Light: "#A66F00", Dark: "#F5B642"}, // Marquee bulb

	Background: lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#111014"},
	Surface:    lipgloss.AdaptiveColor{Light: "#F6F3EE", Dark: "#1C1A21"},
	Overlay:    lipgloss.AdaptiveColor{Light: "#E7E2D9", Dark: "#2A2731"},

	Text:          lipgloss.AdaptiveColor{Light: "#1F1B16", Dark: "#ECE8E1"},
	TextMuted:     lipgloss.AdaptiveColor{Light: "#6E675D", Dark: "#8A8478"},
	TextHighlight: lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"},

	Success: lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#66BB6A"},
	Warning: lipgloss.AdaptiveColor{Light: "#B35C00", Dark: "#FFA040"},
	Error:   lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF5A5F"},
	Info:    lipgloss.AdaptiveColor{Light: "#1565C0", Dark: "#64B5F6"},

	Mark:     lipgloss.AdaptiveColor{Light: "#FCE38A", Dark: "#6B5214"},
	Link:     lipgloss.AdaptiveColor{Light: "#9A1B1F", Dark: "#F08A8D"},
	Skeleton: lipgloss.AdaptiveColor{Light: "#DDD7CC", Dark: "#34303B"},

	KindMovie: lipgloss.AdaptiveColor{Light: "#9A1B1F", Dark: "#E0474C"},
	KindBook:  lipgloss.AdaptiveColor{Light: "#2F5D50", Dark: "#6FBFA4"},
}

// PaperbackTheme is a quieter, low-contrast alternative.
var PaperbackTheme = Theme{
	Primary:   lipgloss.AdaptiveColor{Light: "#2F5D50", Dark: "#6FBFA4"},
	Secondary: lipgloss.AdaptiveColor{Light: "#5C4B3B", Dark: "#B59B82"},
	Accent:    lipgloss.AdaptiveColor{Light: "#8A5A00", Dark: "#E2B663"},

	Background: lipgloss.AdaptiveColor{Light: "#FBF8F1", Dark: "#161512"},
	Surface:    lipgloss.AdaptiveColor{Light: "#F2EDE1", Dark: "#201E1A"},
	Overlay:    lipgloss.AdaptiveColor{Light: "#E4DDCC", Dark: "#2C2924"},

	Text:          lipgloss.AdaptiveColor{Light: "#2A261F", Dark: "#E6E0D3"},
	TextMuted:     lipgloss.AdaptiveColor{Light: "#7A7262", Dark: "#8F887A"},
	TextHighlight: lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"},

	Success: lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#7CC47F"},
	Warning: lipgloss.AdaptiveColor{Light: "#A65E00", Dark: "#E8A04A"},
	Error:   lipgloss.AdaptiveColor{Light: "#B3261E", Dark: "#F2726B"},
	Info:    lipgloss.AdaptiveColor{Light: "#33658A", Dark: "#86BBD8"},

	Mark:     lipgloss.AdaptiveColor{Light: "#F3E3A3", Dark: "#5A4A1C"},
	Link:     lipgloss.AdaptiveColor{Light: "#2F5D50", Dark: "#8FD3BC"},
	Skeleton: lipgloss.AdaptiveColor{Light: "#E0D9C8", Dark: "#302D27"},

	KindMovie: lipgloss.AdaptiveColor{Light: "#8C3B2E", Dark: "#D9826F"},
	KindBook:  lipgloss.AdaptiveColor{Light: "#2F5D50", Dark: "#6FBFA4"},
}

// Current is the active theme (can be changed at runtime).
var Current = MarqueeTheme

// KindColor returns the accent color for a review kind.
func KindColor(kind string) lipgloss.AdaptiveColor {
	switch kind {
	case "movie":
		return Current.KindMovie
	case "book":
		return Current.KindBook
	default:
		return Current.Primary
	}
}
