package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/vendas/internal/bizweek"
	"github.com/javiermolinar/vendas/internal/commission"
	"github.com/javiermolinar/vendas/internal/report"
	"github.com/javiermolinar/vendas/internal/sales"
	"github.com/javiermolinar/vendas/internal/tui/theme"
)

// Source provides weekly reports. Week may serve a cached copy; Refresh
// always reads the store.
type Source interface {
	Week(ctx context.Context, role sales.Role, ref time.Time) (report.WeekReport, error)
	Refresh(ctx context.Context, role sales.Role, ref time.Time) (report.WeekReport, error)
}

// LinkFunc credits a week's approved sales to the SDRs who booked them.
type LinkFunc func(ctx context.Context, week bizweek.Week) (int, error)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeJump        // typing a date to jump to
)

// Model is the dashboard model.
type Model struct {
	// Dependencies
	src     Source
	cal     *bizweek.Calendar
	plan    *commission.Plan
	link    LinkFunc
	nowFunc func() time.Time

	styles *Styles
	keys   keyMap
	help   help.Model
	jump   textinput.Model

	// State
	role    sales.Role
	start   time.Time
	week    bizweek.Week
	report  *report.WeekReport
	cursor  int
	mode    Mode
	loading bool
	seq     int // identifies the latest load; older results are dropped

	width  int
	height int

	statusMsg string
	err       error
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithRole sets the role shown first.
func WithRole(role sales.Role) ModelOption {
	return func(m *Model) { m.role = role }
}

// WithDate opens the dashboard on the week containing ref.
func WithDate(ref time.Time) ModelOption {
	return func(m *Model) { m.start = ref }
}

// WithNow overrides the clock used for "this week".
func WithNow(now func() time.Time) ModelOption {
	return func(m *Model) { m.nowFunc = now }
}

// WithTheme sets the color theme.
func WithTheme(t *theme.Theme) ModelOption {
	return func(m *Model) { m.styles = NewStyles(t) }
}

// WithPlan colors conversion rates by commission tier.
func WithPlan(p *commission.Plan) ModelOption {
	return func(m *Model) { m.plan = p }
}

// WithLinker enables linking sales from the dashboard.
func WithLinker(fn LinkFunc) ModelOption {
	return func(m *Model) { m.link = fn }
}

// New creates a dashboard over src.
func New(src Source, cal *bizweek.Calendar, opts ...ModelOption) Model {
	jump := textinput.New()
	jump.Prompt = "go to: "
	jump.Placeholder = "YYYY-MM-DD"
	jump.CharLimit = 10

	m := Model{
		src:     src,
		cal:     cal,
		nowFunc: time.Now,
		keys:    defaultKeyMap(),
		help:    help.New(),
		jump:    jump,
		role:    sales.RoleSDR,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.styles == nil {
		m.styles = NewStyles(nil)
	}

	ref := m.start
	if ref.IsZero() {
		ref = m.nowFunc()
	}
	m.week = cal.Resolve(ref)
	m.loading = true
	m.seq = 1
	return m
}

// Init loads the first report.
func (m Model) Init() tea.Cmd {
	return loadReport(m.src, m.role, m.week, m.seq, false)
}

// Week returns the business week on display.
func (m Model) Week() bizweek.Week {
	return m.week
}

// Role returns the role on display.
func (m Model) Role() sales.Role {
	return m.role
}

func cycleRole(role sales.Role, step int) sales.Role {
	n := len(sales.Roles)
	for i, r := range sales.Roles {
		if r == role {
			return sales.Roles[((i+step)%n+n)%n]
		}
	}
	return sales.Roles[0]
}

// Run starts the dashboard in the alternate screen and blocks until it exits.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
