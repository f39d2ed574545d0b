package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/pders01/flik/internal/config"
)

const AppName = "flik"

// LogoLines is the canonical ASCII logo.
var LogoLines = []string{
	"▄████ ██     ██ ██  ▄█▀",
	"██▄▄  ██     ██ ██▄█▀  ",
	"██▀▀  ██     ██ ██▀█▄  ",
	"██    ██▄▄▄▄ ██ ██  ▀█▄",
}

const CompactLogo = `flik ›`

// Banner gradient colors
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#FF6B6B"),
	lipgloss.Color("#FFA86B"),
	lipgloss.Color("#95E1D3"),
	lipgloss.Color("#4ECDC4"),
}

// Brand colors. Dusk tones for a screening room; overridable via [ui.colors].
var (
	PrimaryColor   = lipgloss.Color("#FF6B6B") // Warm coral
	SecondaryColor = lipgloss.Color("#4ECDC4") // Teal
	AccentColor    = lipgloss.Color("#95E1D3") // Mint

	BackgroundColor = lipgloss.Color("#1A1A2E")
	SurfaceColor    = lipgloss.Color("#16213E")
	TextColor       = lipgloss.Color("#EAEAEA")
	MutedColor      = lipgloss.Color("#94A3B8")

	HighlightColor = lipgloss.Color("#FFE66D") // Bookmarks
	ErrorColor     = lipgloss.Color("#F87171")
	SuccessColor   = lipgloss.Color("#4ADE80")
)

// Styled components, rebuilt by applyTheme.
var (
	LogoStyle          lipgloss.Style
	TitleStyle         lipgloss.Style
	HeaderStyle        lipgloss.Style
	HelpStyle          lipgloss.Style
	BookmarkStyle      lipgloss.Style
	ErrorMessageStyle  lipgloss.Style
	SeparatorStyle     lipgloss.Style
	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style
)

func init() {
	buildStyles()
}

func buildStyles() {
	LogoStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	TitleStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Bold(true).
		Padding(0, 2)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	BookmarkStyle = lipgloss.NewStyle().
		Foreground(HighlightColor).
		Bold(true)

	ErrorMessageStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	SeparatorStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(HighlightColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)
}

// applyTheme overrides the brand colors with any set in the config.
func applyTheme(c config.UIColors) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&PrimaryColor, c.Primary)
	set(&SecondaryColor, c.Secondary)
	set(&AccentColor, c.Accent)
	set(&BackgroundColor, c.Background)
	set(&SurfaceColor, c.Surface)
	set(&TextColor, c.Text)
	set(&MutedColor, c.Muted)
	set(&ErrorColor, c.Error)
	set(&SuccessColor, c.Success)
	buildStyles()
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

func ShowBanner(version string) {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)
	lines[len(LogoLines)] = ""

	versionTag := version
	if versionTag != "" && versionTag != "dev" {
		if versionTag[0] != 'v' && versionTag[0] != 'V' {
			versionTag = "v" + versionTag
		}
		lines = append(lines, fmt.Sprintf("  Terminal Movie Discovery %s", versionTag))
	} else {
		lines = append(lines, "  Terminal Movie Discovery")
	}

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}

		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))

		coloredLines = append(coloredLines, style.Render(line))
	}

	borderChars := lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}

	borderStyle := lipgloss.NewStyle().
		Border(borderChars).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		MarginTop(1)

	banner := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)
	output := borderStyle.Render(banner)

	fmt.Println(lipgloss.NewStyle().
		Width(60).
		Align(lipgloss.Center).
		Render(output))

	separator := lipgloss.NewStyle().
		Foreground(AccentColor).
		Render("◆ ◇ ◆ ◇ ◆")

	fmt.Println(lipgloss.NewStyle().
		Width(60).
		Align(lipgloss.Center).
		MarginBottom(1).
		Render(separator))
}
