package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/interact"
	"github.com/matzehuels/mindcraft/pkg/mapfile"
	"github.com/matzehuels/mindcraft/pkg/mindmap"
	"github.com/matzehuels/mindcraft/pkg/store"
)

// Status line texts.
const (
	statusReady          = "Ready"
	statusConnect        = "Connect Mode: Click first node, then second node to create a connection."
	statusConnectPending = "Connect Mode: Now click the second node to connect."
	statusConnectAgain   = "Connect Mode: Click first node, then second node."
	statusDelete         = "Delete Mode: Click a node to delete it, or a line to remove connection."
	statusConfirmClear   = "Clear Mind Map: This will remove all nodes and connections. Continue? (y/n)"
	statusCleared        = "Canvas cleared."
)

// Rows taken by the header above and the status and help lines below the canvas.
const (
	headerRows = 1
	footerRows = 2
)

var (
	styleHeader     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleModeOn     = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleStatusErr  = lipgloss.NewStyle().Foreground(colorRed)
	styleHelp       = lipgloss.NewStyle().Foreground(colorDim)
	stylePromptText = lipgloss.NewStyle().Foreground(colorCyan)
)

// =============================================================================
// Messages
// =============================================================================

type savedMsg struct{ err error }

type loadedMsg struct {
	m   *mindmap.Map
	res *mapfile.Result
	err error
}

// =============================================================================
// EditorModel - interactive canvas
// =============================================================================

// EditorOptions configures an editor session.
type EditorOptions struct {
	Name   string          // Map name in Store
	Target string          // Human-readable location for status messages
	Store  store.Store     // Where s and r save and load
	Map    mapfile.Options // Restore options for reloads
	// CellWidth and CellHeight are the canvas units covered by one cell.
	CellWidth, CellHeight float64
	Tolerance             float64
	DoubleClick           time.Duration
}

// click remembers the last primary press for double-click detection.
type lastClick struct {
	col, row int
	at       time.Time
}

// EditorModel is the bubbletea model for the mind-map editor. Mouse presses,
// motion and releases on the canvas go to an interact.Controller; two
// presses on the same cell within the double-click window open the label
// prompt.
type EditorModel struct {
	ctx   context.Context
	opts  EditorOptions
	view  viewport
	ctl   *interact.Controller
	state interact.State

	width, height int

	status    string
	statusErr bool

	prompt    textinput.Model
	prompting bool
	promptAt  mindmap.Point

	confirmClear bool
	last         lastClick
	now          func() time.Time
	dirty        bool
}

// NewEditorModel creates an editor over m.
func NewEditorModel(ctx context.Context, m *mindmap.Map, opts EditorOptions) EditorModel {
	if opts.CellWidth <= 0 {
		opts.CellWidth = 10
	}
	if opts.CellHeight <= 0 {
		opts.CellHeight = 20
	}
	if opts.DoubleClick <= 0 {
		opts.DoubleClick = 400 * time.Millisecond
	}
	if opts.Target == "" {
		opts.Target = opts.Name
	}
	v := viewport{cellW: opts.CellWidth, cellH: opts.CellHeight}

	ti := textinput.New()
	ti.Prompt = "Enter node text: "
	ti.PromptStyle = stylePromptText
	ti.CharLimit = 200

	return EditorModel{
		ctx:    ctx,
		opts:   opts,
		view:   v,
		ctl:    interact.New(m, v.tolerance(opts.Tolerance)),
		width:  80,
		height: 24,
		status: statusReady,
		prompt: ti,
		now:    time.Now,
	}
}

// Map returns the map being edited.
func (m EditorModel) Map() *mindmap.Map { return m.ctl.Map() }

// State returns the interaction state.
func (m EditorModel) State() interact.State { return m.state }

// Status returns the status line text.
func (m EditorModel) Status() string { return m.status }

// Dirty reports whether the map changed since the last save or load.
func (m EditorModel) Dirty() bool { return m.dirty }

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.prompt.Width = max(msg.Width-len(m.prompt.Prompt)-1, 10)
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.setError("Failed to save map: " + errors.UserMessage(msg.err))
			return m, nil
		}
		m.dirty = false
		m.setStatus("Saved map to " + m.opts.Target)
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.setError("Failed to load map: " + errors.UserMessage(msg.err))
			return m, nil
		}
		m.ctl = interact.New(msg.m, m.ctl.Tolerance())
		m.state = m.state.Reset()
		m.dirty = false
		status := "Loaded map from " + m.opts.Target
		if n := len(msg.res.Dropped); n > 0 {
			status += fmt.Sprintf(" (%d dangling connections dropped)", n)
		}
		m.setStatus(status)
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		if m.confirmClear {
			return m.updateConfirm(msg), nil
		}
		return m.updateKey(msg)

	case tea.MouseMsg:
		if m.prompting || m.confirmClear {
			return m, nil
		}
		return m.updateMouse(msg), nil
	}
	return m, nil
}

func (m EditorModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "c":
		m.state = m.state.ToggleConnect()
		m.setStatus(m.modeStatus())
	case "d":
		m.state = m.state.ToggleDelete()
		m.setStatus(m.modeStatus())
	case "esc":
		if m.state.Mode != interact.ModeNormal {
			m.state = interact.State{Dragging: m.state.Dragging, DragOffset: m.state.DragOffset}
			m.setStatus(statusReady)
		}
	case "s":
		return m, m.saveCmd()
	case "r":
		return m, m.loadCmd()
	case "x":
		m.confirmClear = true
		m.setStatus(statusConfirmClear)
	}
	return m, nil
}

func (m EditorModel) updateConfirm(msg tea.KeyMsg) EditorModel {
	m.confirmClear = false
	switch msg.String() {
	case "y", "Y":
		m.Map().Clear()
		m.state = m.state.Reset()
		m.dirty = true
		m.setStatus(statusCleared)
	default:
		m.setStatus(m.modeStatus())
	}
	return m
}

func (m EditorModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.closePrompt()
		m.setStatus(m.modeStatus())
		return m, nil
	case tea.KeyEnter:
		text := m.prompt.Value()
		m.closePrompt()
		if strings.TrimSpace(text) == "" {
			m.setStatus(m.modeStatus())
			return m, nil
		}
		state, out, err := m.ctl.PlaceNode(m.state, m.promptAt, text)
		m.state = state
		if err != nil {
			m.setError(errors.UserMessage(err))
			return m, nil
		}
		m.apply(out)
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *EditorModel) closePrompt() {
	m.prompting = false
	m.prompt.Blur()
	m.prompt.Reset()
}

func (m EditorModel) updateMouse(msg tea.MouseMsg) EditorModel {
	col, row := msg.X, msg.Y-headerRows
	if row < 0 || row >= m.canvasHeight() {
		if msg.Action == tea.MouseActionRelease {
			m.state, _ = m.ctl.PointerUp(m.state, mindmap.Point{})
		}
		return m
	}
	p := m.view.toCanvas(col, row)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m
		}
		now := m.now()
		if m.isDoubleClick(col, row, now) && m.ctl.CanPlaceAt(p) {
			m.last = lastClick{}
			return m.doubleClick(p)
		}
		m.last = lastClick{col: col, row: row, at: now}
		state, out := m.ctl.PointerDown(m.state, p)
		m.state = state
		m.apply(out)

	case tea.MouseActionMotion:
		if msg.Button != tea.MouseButtonLeft {
			return m
		}
		state, out := m.ctl.PointerMove(m.state, p)
		m.state = state
		m.apply(out)

	case tea.MouseActionRelease:
		m.state, _ = m.ctl.PointerUp(m.state, p)
	}
	return m
}

func (m EditorModel) isDoubleClick(col, row int, now time.Time) bool {
	if m.last.at.IsZero() {
		return false
	}
	return col == m.last.col && row == m.last.row && now.Sub(m.last.at) <= m.opts.DoubleClick
}

// doubleClick opens the label prompt when p is over empty canvas. The
// prompt result is applied with PlaceNode once the user presses enter.
func (m EditorModel) doubleClick(p mindmap.Point) EditorModel {
	if !m.ctl.CanPlaceAt(p) {
		return m
	}
	m.prompting = true
	m.promptAt = p
	m.prompt.Reset()
	m.prompt.Focus()
	return m
}

// apply updates the status line after a controller event.
func (m *EditorModel) apply(out interact.Outcome) {
	switch out.Action {
	case interact.ActionNodeCreated:
		n, _ := m.Map().Node(out.Node)
		m.dirty = true
		m.setStatus(fmt.Sprintf("Created node %q", n.Label))
	case interact.ActionNodeDeleted:
		m.dirty = true
		msg := fmt.Sprintf("Deleted node %d", out.Node)
		if len(out.Removed) > 0 {
			msg += fmt.Sprintf(" and %d connection(s)", len(out.Removed))
		}
		m.setStatus(msg)
	case interact.ActionEdgeDeleted:
		m.dirty = true
		m.setStatus("Deleted connection")
	case interact.ActionConnectPending:
		m.setStatus(statusConnectPending)
	case interact.ActionEdgeCreated:
		m.dirty = true
		m.setStatus(statusConnectAgain)
	case interact.ActionNodeMoved:
		m.dirty = true
	case interact.ActionNone:
		// Completing a connect attempt that made no edge still resets the prompt.
		if out.Unhighlight != mindmap.NoNode {
			m.setStatus(statusConnectAgain)
		}
	}
}

func (m *EditorModel) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *EditorModel) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m EditorModel) modeStatus() string {
	switch m.state.Mode {
	case interact.ModeConnect:
		return statusConnect
	case interact.ModeDelete:
		return statusDelete
	default:
		return statusReady
	}
}

func (m EditorModel) canvasHeight() int {
	return max(m.height-headerRows-footerRows, 1)
}

// =============================================================================
// Commands
// =============================================================================

// saveCmd snapshots the map on the update goroutine and writes it in the
// background.
func (m EditorModel) saveCmd() tea.Cmd {
	ctx, st, name := m.ctx, m.opts.Store, m.opts.Name
	doc := mapfile.FromMap(m.Map())
	return func() tea.Msg {
		return savedMsg{err: store.SaveDocument(ctx, st, name, doc)}
	}
}

// loadCmd restores into a fresh map in the background; the editor swaps it
// in when loadedMsg arrives, so a failed load leaves the canvas untouched.
func (m EditorModel) loadCmd() tea.Cmd {
	ctx, st, name, opts := m.ctx, m.opts.Store, m.opts.Name, m.opts.Map
	return func() tea.Msg {
		fresh := mindmap.New()
		res, err := store.LoadMap(ctx, st, name, fresh, opts)
		return loadedMsg{m: fresh, res: res, err: err}
	}
}

// =============================================================================
// View
// =============================================================================

func (m EditorModel) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")

	g := rasterize(m.Map(), m.view, m.width, m.canvasHeight(), m.state.PendingSource, m.state.Dragging)
	b.WriteString(g.String())
	b.WriteString("\n")

	switch {
	case m.prompting:
		b.WriteString(m.prompt.View())
	case m.statusErr:
		b.WriteString(styleStatusErr.Render(truncate(m.status, m.width)))
	default:
		b.WriteString(truncate(m.status, m.width))
	}
	b.WriteString("\n")
	b.WriteString(styleHelp.Render(truncate(m.helpText(), m.width)))
	return b.String()
}

func (m EditorModel) headerView() string {
	name := m.opts.Name
	if m.dirty {
		name += "*"
	}
	parts := []string{
		styleHeader.Render("mindcraft"),
		StyleValue.Render(name),
		StyleDim.Render(fmt.Sprintf("%d nodes · %d edges", m.Map().NodeCount(), m.Map().EdgeCount())),
	}
	switch m.state.Mode {
	case interact.ModeConnect:
		parts = append(parts, styleModeOn.Render("Connect Mode: ON"))
	case interact.ModeDelete:
		parts = append(parts, styleModeOn.Render("Delete Mode: ON"))
	}
	return strings.Join(parts, "  ")
}

func (m EditorModel) helpText() string {
	switch {
	case m.prompting:
		return "enter create  esc cancel"
	case m.confirmClear:
		return "y clear  any other key cancel"
	}
	return "double-click add  drag move  c connect  d delete  s save  r reload  x clear  q quit"
}
