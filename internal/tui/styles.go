package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"artreview/internal/artwork"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
	compliantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	activePanel    = panelStyle.BorderForeground(lipgloss.Color("62"))
)

// languageName renders a language code for humans; empty means text-free.
func languageName(code string) string {
	code = artwork.NormalizeLanguage(code)
	if code == "" {
		return "text-free"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(code)
}

func filterLabel(f artwork.LanguageFilter) string {
	if !f.Active {
		return "any language"
	}
	return languageName(f.Language)
}

func dimensions(c artwork.Candidate) string {
	if c.Width <= 0 || c.Height <= 0 {
		return "?"
	}
	return fmt.Sprintf("%dx%d", c.Width, c.Height)
}

func candidateLine(c artwork.Candidate) string {
	return fmt.Sprintf("%-10s %-12s %-10s %4.1f  %s",
		c.Provider, languageName(c.Language), dimensions(c), c.Quality, c.URL)
}

func complianceMark(compliant bool) string {
	if compliant {
		return compliantStyle.Render("✓") + " "
	}
	return "  "
}

// truncate shortens plain text to width runes.
func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 1 || len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
