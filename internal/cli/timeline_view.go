package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/phaseline/internal/cli/formatter"
	"github.com/alexanderramin/phaseline/internal/importer"
	"github.com/alexanderramin/phaseline/internal/planner"
	"github.com/alexanderramin/phaseline/internal/timeline"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// defaultViewerCols is used until the first WindowSizeMsg arrives.
const defaultViewerCols = 120

type timelineKeyMap struct {
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Undo    key.Binding
	Quit    key.Binding
}

func newTimelineKeyMap() timelineKeyMap {
	return timelineKeyMap{
		ZoomIn:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "finer")),
		ZoomOut: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "coarser")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "collapse/expand")),
		Undo:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k timelineKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Toggle, k.Undo, k.Quit}
}

func (k timelineKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.ZoomIn, k.ZoomOut}, {k.Up, k.Down, k.Toggle, k.Undo}, {k.Quit}}
}

// timelineModel is the interactive Gantt viewer. Resizing re-runs adaptive
// zoom; +/- override it. Collapsing phases goes through the planner session
// so it can be undone and saved on exit.
type timelineModel struct {
	ctx         context.Context
	session     *planner.Session
	loaded      []byte
	cfg         timeline.Config
	granularity timeline.Granularity
	cols        int
	layout      *timeline.Layout
	err         error
	cursor      int
	keys        timelineKeyMap
	help        help.Model
	quitting    bool
}

// newTimelineModel starts at granularity g, adapted to the default width
// when adapt is set. Later resizes always adapt from the current granularity.
func newTimelineModel(ctx context.Context, s *planner.Session, g timeline.Granularity, cfg timeline.Config, adapt bool) timelineModel {
	m := timelineModel{
		ctx:         ctx,
		session:     s,
		loaded:      document(s),
		cfg:         cfg,
		granularity: g,
		cols:        defaultViewerCols,
		keys:        newTimelineKeyMap(),
		help:        help.New(),
	}
	m.rebuild(adapt)
	return m
}

func (m timelineModel) Init() tea.Cmd { return nil }

func (m timelineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols = msg.Width
		m.help.Width = msg.Width
		m.rebuild(true)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.ZoomIn):
			m.granularity = m.granularity.Finer()
			m.rebuild(false)
		case key.Matches(msg, m.keys.ZoomOut):
			m.granularity = m.granularity.Coarser()
			m.rebuild(false)
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.layout != nil && m.cursor < len(m.layout.Bars)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			m.toggleSelected()
		case key.Matches(msg, m.keys.Undo):
			m.session.Undo(m.ctx)
			m.rebuild(false)
		}
	}
	return m, nil
}

// toggleSelected collapses or expands the phase under the cursor, or the
// phase owning the selected task. The cursor lands on that phase.
func (m *timelineModel) toggleSelected() {
	if m.layout == nil || len(m.layout.Bars) == 0 {
		return
	}
	g := m.session.Graph()
	id := m.layout.Bars[m.cursor].ID
	if m.layout.Bars[m.cursor].Kind == timeline.BarTask {
		owner, err := g.PhaseOf(id)
		if err != nil {
			m.err = err
			return
		}
		id = owner.ID
	}
	ph, err := g.Phase(id)
	if err != nil {
		m.err = err
		return
	}
	if err := m.session.Apply(m.ctx, collapseEdit(id, !ph.Collapsed)); err != nil {
		m.err = err
		return
	}
	m.rebuild(false)
	for i, b := range m.layout.Bars {
		if b.ID == id {
			m.cursor = i
			break
		}
	}
}

func (m *timelineModel) trackWidth() int {
	return formatter.TrackWidth(m.cols - 2)
}

// rebuild recomputes the layout. With adapt the granularity is re-derived
// from the track width; otherwise the current granularity is kept.
func (m *timelineModel) rebuild(adapt bool) {
	px := 0.0
	if adapt {
		px = float64(m.trackWidth()) * formatter.CellPx
	}
	l, err := timeline.BuildLayout(m.session.Graph().View(), m.granularity, px, m.cfg)
	if err != nil {
		m.layout, m.err = nil, err
		return
	}
	m.layout, m.err = l, nil
	m.granularity = l.Granularity
	if m.cursor >= len(l.Bars) {
		m.cursor = max(len(l.Bars)-1, 0)
	}
}

// Changed reports whether the viewer left edits to save. Edits that cancel
// out, such as collapsing and re-expanding a phase, leave nothing to save.
func (m timelineModel) Changed() bool {
	if m.session.UndoLen() == 0 {
		return false
	}
	return !bytes.Equal(document(m.session), m.loaded)
}

// document is the stored form of the session's current project, or nil
// when it cannot be encoded.
func document(s *planner.Session) []byte {
	doc, err := importer.Marshal(s.Graph().Project())
	if err != nil {
		return nil
	}
	return doc
}

func (m timelineModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(formatter.Header(m.session.Graph().View().Name))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(formatter.StyleRed.Render("✖ "+m.err.Error()) + "\n")
	}
	if m.layout != nil {
		width := m.trackWidth()
		b.WriteString(formatter.TimelineHeader(m.layout) + "\n\n")
		for _, line := range strings.SplitAfter(formatter.TimelineAxis(m.layout, width), "\n") {
			if line != "" {
				b.WriteString("  " + line)
			}
		}
		for i, bar := range m.layout.Bars {
			prefix := "  "
			if i == m.cursor {
				prefix = formatter.StyleHeader.Render("›") + " "
			}
			b.WriteString(prefix + formatter.TimelineRow(bar, width) + "\n")
		}
	}
	if n := m.session.UndoLen(); n > 0 && m.Changed() {
		b.WriteString("\n" + formatter.Dim(fmt.Sprintf("%d unsaved change(s), saved on quit", n)) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}
