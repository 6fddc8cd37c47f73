package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"artreview/internal/artwork"
	"artreview/internal/multiart"
	"artreview/internal/policy"
)

type pane int

const (
	paneSet pane = iota
	panePool
)

// editModel edits the working set of a multi-image slot.
type editModel struct {
	ws      *multiart.WorkingSet
	prompt  policy.Prompt
	keys    editKeys
	help    help.Model
	focus   pane
	showAll bool
	setPos  int
	poolPos int
	width   int
	height  int
	status  string

	commit bool
	done   bool
}

func newEditModel(ws *multiart.WorkingSet, prompt policy.Prompt, keys KeyMap) editModel {
	m := editModel{
		ws:      ws,
		prompt:  prompt,
		keys:    editKeys{keys},
		help:    help.New(),
		showAll: prompt.FilteredCount == 0,
	}
	if ws.Len() == 0 {
		m.focus = panePool
	}
	return m
}

// pool lists candidates not yet in the set.
func (m editModel) pool() []artwork.Candidate {
	var source []artwork.Candidate
	for _, c := range m.prompt.Candidates {
		if m.showAll || m.prompt.Compliant(c) {
			source = append(source, c)
		}
	}
	return m.ws.Available(source)
}

func (m editModel) Init() tea.Cmd { return nil }

func (m editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m editModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.done = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Commit):
		m.commit = true
		m.done = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.SwitchPane):
		if m.focus == paneSet {
			m.focus = panePool
		} else {
			m.focus = paneSet
		}
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Select):
		if m.focus != panePool {
			break
		}
		pool := m.pool()
		if len(pool) == 0 {
			break
		}
		if err := m.ws.Add(pool[m.poolPos]); err != nil {
			m.status = err.Error()
			break
		}
		m.poolPos = clamp(m.poolPos, len(pool)-1)
	case key.Matches(msg, m.keys.Remove):
		if m.focus != paneSet || m.ws.Len() == 0 {
			break
		}
		if err := m.ws.Remove(m.setPos); err != nil {
			m.status = err.Error()
			break
		}
		m.setPos = clamp(m.setPos, m.ws.Len())
	case key.Matches(msg, m.keys.RemoveAll):
		m.ws.RemoveAll()
		m.setPos = 0
	case key.Matches(msg, m.keys.Reset):
		m.ws.Clear()
		m.setPos = 0
		m.poolPos = 0
	case key.Matches(msg, m.keys.ToggleAll):
		m.showAll = !m.showAll
		m.poolPos = 0
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *editModel) move(delta int) {
	if m.focus == paneSet {
		m.setPos = clamp(m.setPos+delta, m.ws.Len())
		return
	}
	m.poolPos = clamp(m.poolPos+delta, len(m.pool()))
}

// clamp bounds pos to [0, length-1], or 0 for an empty list.
func clamp(pos, length int) int {
	if length <= 0 || pos < 0 {
		return 0
	}
	return min(pos, length-1)
}

func (m editModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.prompt.Title))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  (%d more in queue)", m.prompt.Remaining)))
	if m.ws.Dirty() {
		b.WriteString(warnStyle.Render("  modified"))
	}
	b.WriteString("\n")
	if len(m.prompt.Failed) > 0 {
		b.WriteString(warnStyle.Render("unavailable: " + strings.Join(m.prompt.Failed, ", ")))
		b.WriteString("\n")
	}

	paneWidth := m.paneWidth()
	rows := m.paneRows()

	var set []string
	images := m.ws.Images()
	start, end := window(m.setPos, len(images), rows)
	for i := start; i < end; i++ {
		im := images[i]
		origin := "new"
		if im.Existing() {
			origin = fmt.Sprintf("was %d", im.Ordinal)
		}
		line := truncate(fmt.Sprintf("%2d. %-7s %s", i+1, origin, im.URL), paneWidth)
		if m.focus == paneSet && i == m.setPos {
			line = selectedStyle.Render(line)
		}
		set = append(set, line)
	}
	if len(images) == 0 {
		set = append(set, dimStyle.Render("empty"))
	}

	var pool []string
	candidates := m.pool()
	start, end = window(m.poolPos, len(candidates), rows)
	for i := start; i < end; i++ {
		line := truncate(candidateLine(candidates[i]), paneWidth)
		if m.focus == panePool && i == m.poolPos {
			line = selectedStyle.Render(line)
		}
		pool = append(pool, line)
	}
	if len(candidates) == 0 {
		pool = append(pool, dimStyle.Render("no more candidates"))
	}

	setTitle := headerStyle.Render(fmt.Sprintf("%s (%d)", m.ws.ArtType(), m.ws.Len()))
	poolTitle := headerStyle.Render(fmt.Sprintf("candidates: %d of %d match %s", m.prompt.FilteredCount, m.prompt.Total, filterLabel(m.prompt.Filter)))
	left, right := panelStyle, panelStyle
	if m.focus == paneSet {
		left = activePanel
	} else {
		right = activePanel
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		left.Width(paneWidth).Render(setTitle+"\n"+strings.Join(set, "\n")),
		right.Width(paneWidth).Render(poolTitle+"\n"+strings.Join(pool, "\n")),
	))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(warnStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m editModel) paneWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(m.width/2-4, 20)
}

func (m editModel) paneRows() int {
	if m.height <= 0 {
		return 12
	}
	return max(m.height-10, 3)
}
