package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/vendas/internal/bizweek"
	"github.com/javiermolinar/vendas/internal/dateutil"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case reportLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.report = nil
			return m, nil
		}
		m.err = nil
		r := msg.report
		m.report = &r
		m.cursor = min(m.cursor, max(0, len(r.Rows)-1))
		return m, nil

	case linkDoneMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Link failed: %v", msg.err)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Linked %d sale(s) in %s", msg.linked, msg.week)
		if !msg.week.Equal(m.week) {
			return m, nil
		}
		return m.reload()
	}

	return m, nil
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.mode == ModeJump {
		return m.handleJumpKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.PrevWeek):
		return m.showWeek(m.week.Prev())
	case key.Matches(msg, m.keys.NextWeek):
		return m.showWeek(m.week.Next())
	case key.Matches(msg, m.keys.Today):
		return m.showWeek(m.cal.Resolve(m.nowFunc()))

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.report != nil && m.cursor < len(m.report.Rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.NextRole):
		m.role = cycleRole(m.role, 1)
		m.cursor = 0
		return m.reload()
	case key.Matches(msg, m.keys.PrevRole):
		m.role = cycleRole(m.role, -1)
		m.cursor = 0
		return m.reload()

	case key.Matches(msg, m.keys.Reload):
		return m.refresh()

	case key.Matches(msg, m.keys.Link):
		if m.link == nil {
			m.statusMsg = "Linking is not available"
			return m, nil
		}
		m.statusMsg = "Linking " + m.week.String() + "..."
		return m, runLink(m.link, m.week)

	case key.Matches(msg, m.keys.Jump):
		m.mode = ModeJump
		m.jump.SetValue("")
		return m, m.jump.Focus()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// handleJumpKeys handles keys while typing a date.
func (m Model) handleJumpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.jump.Blur()
		return m, nil

	case "enter":
		value := m.jump.Value()
		m.mode = ModeNormal
		m.jump.Blur()
		m.jump.SetValue("")
		m.statusMsg = ""

		if strings.TrimSpace(value) == "" {
			return m.showWeek(m.cal.Resolve(m.nowFunc()))
		}
		ref, err := dateutil.ParseDate(value, m.cal.Location())
		if err != nil {
			m.statusMsg = fmt.Sprintf("Invalid date: %v", err)
			return m, nil
		}
		return m.showWeek(m.cal.Resolve(ref))
	}

	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

func (m Model) showWeek(w bizweek.Week) (tea.Model, tea.Cmd) {
	m.week = w
	m.cursor = 0
	return m.reload()
}

func (m Model) reload() (tea.Model, tea.Cmd) {
	return m.load(false)
}

// refresh reloads the current week bypassing the report cache.
func (m Model) refresh() (tea.Model, tea.Cmd) {
	return m.load(true)
}

func (m Model) load(fresh bool) (tea.Model, tea.Cmd) {
	m.seq++
	m.loading = true
	return m, loadReport(m.src, m.role, m.week, m.seq, fresh)
}
