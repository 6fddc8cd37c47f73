package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"artreview/internal/artwork"
	"artreview/internal/policy"
)

// chooseModel is the single-image selection screen.
type chooseModel struct {
	prompt  policy.Prompt
	keys    chooseKeys
	help    help.Model
	showAll bool
	cursor  int
	width   int
	height  int

	choice policy.Choice
	done   bool
}

func newChooseModel(prompt policy.Prompt, keys KeyMap) chooseModel {
	return chooseModel{
		prompt: prompt,
		keys:   chooseKeys{keys},
		help:   help.New(),
		// Without compliant candidates the full list is the only useful view.
		showAll: prompt.FilteredCount == 0,
	}
}

func (m chooseModel) visible() []artwork.Candidate {
	if m.showAll {
		return m.prompt.Candidates
	}
	out := make([]artwork.Candidate, 0, m.prompt.FilteredCount)
	for _, c := range m.prompt.Candidates {
		if m.prompt.Compliant(c) {
			out = append(out, c)
		}
	}
	return out
}

func (m chooseModel) Init() tea.Cmd { return nil }

func (m chooseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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

func (m chooseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.visible()
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.choice = policy.Choice{Action: policy.ActionCancel}
		m.done = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Skip):
		m.choice = policy.Choice{Action: policy.ActionSkip}
		m.done = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Select):
		if len(list) == 0 {
			return m, nil
		}
		m.choice = policy.Choice{Action: policy.ActionSelect, Candidate: list[m.cursor]}
		m.done = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(list)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.ToggleAll):
		m.showAll = !m.showAll
		m.cursor = 0
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m chooseModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	p := m.prompt
	b.WriteString(titleStyle.Render(p.Title))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  (%d more in queue)", p.Remaining)))
	b.WriteString("\n")
	current := p.Current
	if current == "" {
		current = "missing"
	}
	b.WriteString(dimStyle.Render("current: " + truncate(current, m.width-10)))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%d of %d candidates match %s", p.FilteredCount, p.Total, filterLabel(p.Filter))))
	if m.showAll {
		b.WriteString(dimStyle.Render("  showing all"))
	}
	b.WriteString("\n")
	if len(p.Failed) > 0 {
		b.WriteString(warnStyle.Render("unavailable: " + strings.Join(p.Failed, ", ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	list := m.visible()
	if len(list) == 0 {
		b.WriteString(dimStyle.Render("no candidates in this view"))
		b.WriteString("\n")
	}
	start, end := window(m.cursor, len(list), m.listHeight())
	for i := start; i < end; i++ {
		line := truncate(candidateLine(list[i]), m.width-2)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(complianceMark(p.Compliant(list[i])))
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m chooseModel) listHeight() int {
	if m.height <= 0 {
		return 15
	}
	return max(m.height-9, 3)
}

// window returns the slice bounds that keep cursor visible in height rows.
func window(cursor, length, height int) (int, int) {
	if length <= height {
		return 0, length
	}
	start := cursor - height/2
	start = max(start, 0)
	start = min(start, length-height)
	return start, start + height
}
