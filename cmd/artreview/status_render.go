package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusBadges = map[statusKind]struct {
	label string
	style lipgloss.Style
}{
	statusInfo:  {"INFO", lipgloss.NewStyle().Foreground(lipgloss.Color("12"))},
	statusOK:    {"OK", lipgloss.NewStyle().Foreground(lipgloss.Color("10"))},
	statusWarn:  {"WARN", lipgloss.NewStyle().Foreground(lipgloss.Color("11"))},
	statusError: {"ERROR", lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)},
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// statusLine renders one "label: [KIND] message" row of a status block.
func statusLine(label string, kind statusKind, message string, colorize bool) string {
	badge, ok := statusBadges[kind]
	if !ok {
		badge = statusBadges[statusInfo]
	}
	tag := "[" + badge.label + "]"
	if colorize {
		tag = badge.style.Render(tag)
	}
	if message == "" {
		return fmt.Sprintf("  %-18s %s", label+":", tag)
	}
	return fmt.Sprintf("  %-18s %s %s", label+":", tag, message)
}

type statusRow struct {
	label   string
	kind    statusKind
	message string
}

func (r statusRow) render(colorize bool) string {
	return statusLine(r.label, r.kind, r.message, colorize)
}

func sectionHeader(title string, colorize bool) string {
	if colorize {
		return headerStyle.Render(title)
	}
	return "== " + title + " =="
}

// shouldColorize is true only when w is a terminal.
func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
