package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	errs "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/graph"
	"github.com/matzehuels/conceptmap/pkg/layout"
	"github.com/matzehuels/conceptmap/pkg/session"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)

	typeStyles = map[graph.NodeType]lipgloss.Style{
		graph.TypeRoot:     lipgloss.NewStyle().Bold(true).Foreground(colorCyan),
		graph.TypeCategory: lipgloss.NewStyle().Foreground(colorBlue),
		graph.TypeLeaf:     lipgloss.NewStyle().Foreground(colorWhite),
	}
)

// =============================================================================
// ExploreModel - Interactive concept map explorer
// =============================================================================

type inputMode int

const (
	modeBrowse inputMode = iota
	modeDive
	modeRefine
)

// treeRow is one line of the explorer: a visible node at its layout depth.
type treeRow struct {
	node      graph.Node
	depth     int
	collapsed bool
	expanded  bool
}

type mutationDoneMsg struct {
	op  string
	res session.Result
	err error
}

type tickMsg time.Time

// ExploreModel is the bubbletea model for browsing and growing a map.
type ExploreModel struct {
	ctx     context.Context
	session *session.Session

	Rows   []treeRow
	Cursor int
	Offset int
	Height int

	mode   inputMode
	input  string
	busy   string
	frame  int
	status string
	failed bool

	// Dirty is set once any mutation or undo has been applied.
	Dirty bool
}

// NewExploreModel creates an explorer over s.
func NewExploreModel(ctx context.Context, s *session.Session) ExploreModel {
	m := ExploreModel{ctx: ctx, session: s, Height: 20}
	m.refresh()
	return m
}

// refresh rebuilds the rows from the session's visible graph, keeping the
// cursor on the same node when it is still visible.
func (m *ExploreModel) refresh() {
	selected := m.Selected()
	f := m.session.Frame()
	m.Rows = flattenTree(f.Graph, f.Layout, f.Collapsed, f.Expanded)

	m.Cursor = min(m.Cursor, max(len(m.Rows)-1, 0))
	for i, r := range m.Rows {
		if r.node.ID == selected {
			m.Cursor = i
			break
		}
	}
	m.scroll()
}

// flattenTree orders visible nodes depth-first along the layout tree.
func flattenTree(g graph.Graph, l layout.Layout, collapsed map[string]bool, expanded []string) []treeRow {
	children := make(map[string][]string)
	for _, e := range l.TreeEdges {
		children[e.Source] = append(children[e.Source], e.Target)
	}
	isExpanded := make(map[string]bool, len(expanded))
	for _, id := range expanded {
		isExpanded[id] = true
	}

	var rows []treeRow
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		n, ok := g.Node(id)
		if !ok {
			return
		}
		rows = append(rows, treeRow{
			node:      n,
			depth:     depth,
			collapsed: collapsed[id],
			expanded:  isExpanded[id] && len(children[id]) > 0,
		})
		for _, c := range children[id] {
			walk(c, depth+1)
		}
	}
	for _, r := range l.Roots {
		walk(r, 0)
	}
	return rows
}

// Selected returns the id under the cursor, or "".
func (m ExploreModel) Selected() string {
	if m.Cursor < 0 || m.Cursor >= len(m.Rows) {
		return ""
	}
	return m.Rows[m.Cursor].node.ID
}

func (m *ExploreModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m *ExploreModel) setStatus(failed bool, format string, args ...any) {
	m.failed = failed
	m.status = fmt.Sprintf(format, args...)
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)

	case mutationDoneMsg:
		m.busy = ""
		if msg.err != nil {
			m.setStatus(true, "%s rejected: %s", msg.op, errs.UserMessage(msg.err))
			return m, nil
		}
		m.Dirty = true
		m.setStatus(false, "%s: +%d -%d, %d nodes", msg.op, msg.res.Added, msg.res.Removed, msg.res.Nodes)
		m.refresh()
		return m, nil

	case tickMsg:
		if m.busy == "" {
			return m, nil
		}
		m.frame++
		return m, tick()

	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		m.scroll()
	}
	return m, nil
}

func (m ExploreModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			m.scroll()
		}
	case "down", "j":
		if m.Cursor < len(m.Rows)-1 {
			m.Cursor++
			m.scroll()
		}
	case "enter", " ", "right", "l":
		id := m.Selected()
		if id == "" {
			break
		}
		if m.session.IsExpanded(id) {
			_ = m.session.Collapse(id)
		} else {
			_ = m.session.Expand(id)
		}
		m.refresh()
	case "left", "h":
		if id := m.Selected(); id != "" {
			_ = m.session.Collapse(id)
			m.refresh()
		}
	case "a":
		m.session.ExpandAll()
		m.refresh()
	case "d":
		if m.Selected() != "" {
			m.mode, m.input = modeDive, ""
		}
	case "r":
		if m.Selected() != "" {
			m.mode, m.input = modeRefine, ""
		}
	case "u":
		if m.session.Undo(m.ctx) {
			m.Dirty = true
			m.setStatus(false, "undone")
			m.refresh()
		} else {
			m.setStatus(true, "nothing to undo")
		}
	}
	return m, nil
}

func (m ExploreModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.mode, m.input = modeBrowse, ""
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeySpace:
		m.input += " "
		return m, nil
	case tea.KeyRunes:
		m.input += string(msg.Runes)
		return m, nil
	case tea.KeyEnter:
	default:
		return m, nil
	}

	id, instruction, mode := m.Selected(), strings.TrimSpace(m.input), m.mode
	m.mode, m.input = modeBrowse, ""

	op := "dive"
	run := func() (session.Result, error) { return m.session.Dive(m.ctx, id, instruction) }
	if mode == modeRefine {
		op = "refine"
		run = func() (session.Result, error) { return m.session.Refine(m.ctx, id, instruction) }
	}

	m.busy = op + " " + id
	m.status = ""
	return m, tea.Batch(func() tea.Msg {
		res, err := run()
		return mutationDoneMsg{op: op, res: res, err: err}
	}, tick())
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (m ExploreModel) View() string {
	var b strings.Builder

	st := m.session.Status()
	b.WriteString(StyleTitle.Render("Concept Map"))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d nodes · %d visible · history %d/%d", st.Nodes, len(m.Rows), st.HistoryIndex+1, st.HistoryLen)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  ⏎ toggle  a all  d dive  r refine  u undo  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  (empty map)"))
		b.WriteString("\n")
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	for i := m.Offset; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if id := m.Selected(); id != "" {
		if n, ok := m.session.Graph().Node(id); ok && n.Summary != "" {
			b.WriteString(listDimStyle.Render("  " + n.Summary))
			b.WriteString("\n")
		}
	}

	switch {
	case m.mode == modeDive:
		b.WriteString(fmt.Sprintf("%s %s█", StyleHighlight.Render("dive instruction (empty for default):"), m.input))
	case m.mode == modeRefine:
		b.WriteString(fmt.Sprintf("%s %s█", StyleHighlight.Render("refine instruction:"), m.input))
	case m.busy != "":
		b.WriteString(styleIconSpinner.Render(spinnerFrames[m.frame%len(spinnerFrames)]) + " " + listDimStyle.Render(m.busy+"..."))
	case m.status != "":
		if m.failed {
			b.WriteString(styleIconError.Render(iconError) + " " + m.status)
		} else {
			b.WriteString(styleIconSuccess.Render(iconSuccess) + " " + m.status)
		}
	}

	return b.String()
}

func (m ExploreModel) renderRow(i int) string {
	r := m.Rows[i]

	cursor := "  "
	if i == m.Cursor {
		cursor = "▸ "
	}
	marker := "  "
	switch {
	case r.collapsed:
		marker = "+ "
	case r.expanded:
		marker = "- "
	}

	label := r.node.DisplayLabel()
	style, ok := typeStyles[r.node.Type]
	if !ok {
		style = listNormalStyle
	}
	if i == m.Cursor {
		style = listSelectedStyle
	}
	return cursor + strings.Repeat("  ", r.depth) + listDimStyle.Render(marker) + style.Render(label)
}
