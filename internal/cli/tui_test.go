package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/mindcraft/pkg/interact"
	"github.com/matzehuels/mindcraft/pkg/mindmap"
	"github.com/matzehuels/mindcraft/pkg/store"
)

// Cell coordinates (terminal X, Y) of the fixture nodes with 10x20 cells and
// one header row: Idea at canvas (100,100), Plan at (400,100).
const (
	ideaX, ideaY   = 10, 6
	planX, planY   = 40, 6
	emptyX, emptyY = 70, 16
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestEditor(t *testing.T) (EditorModel, *fakeClock, store.Store) {
	t.Helper()
	m := mindmap.New()
	if _, err := m.CreateNode(mindmap.Point{X: 100, Y: 100}, "Idea"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.CreateNode(mindmap.Point{X: 400, Y: 100}, "Plan"); err != nil {
		t.Fatal(err)
	}
	st := store.NewMemoryStore()
	ed := NewEditorModel(context.Background(), m, EditorOptions{
		Name:        "ideas",
		Target:      "mem://ideas",
		Store:       st,
		CellWidth:   10,
		CellHeight:  20,
		Tolerance:   2,
		DoubleClick: 400 * time.Millisecond,
	})
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	ed.now = clock.now
	ed, _ = send(ed, tea.WindowSizeMsg{Width: 100, Height: 30})
	return ed, clock, st
}

func send(ed EditorModel, msg tea.Msg) (EditorModel, tea.Cmd) {
	next, cmd := ed.Update(msg)
	return next.(EditorModel), cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
}

func release(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
}

// click presses and releases, advancing the clock past the double-click window.
func click(ed EditorModel, clock *fakeClock, x, y int) EditorModel {
	clock.t = clock.t.Add(time.Second)
	ed, _ = send(ed, press(x, y))
	ed, _ = send(ed, release(x, y))
	return ed
}

func TestEditorConnect(t *testing.T) {
	ed, clock, _ := newTestEditor(t)

	ed, _ = send(ed, key("c"))
	if ed.State().Mode != interact.ModeConnect || ed.Status() != statusConnect {
		t.Fatalf("after c: mode %v, status %q", ed.State().Mode, ed.Status())
	}

	ed = click(ed, clock, ideaX, ideaY)
	if ed.State().PendingSource != 1 || ed.Status() != statusConnectPending {
		t.Fatalf("after first click: pending %d, status %q", ed.State().PendingSource, ed.Status())
	}

	// Same node again is absorbed.
	ed = click(ed, clock, ideaX+1, ideaY)
	if ed.State().PendingSource != 1 || ed.Map().EdgeCount() != 0 {
		t.Fatalf("same-node click: pending %d, edges %d", ed.State().PendingSource, ed.Map().EdgeCount())
	}

	ed = click(ed, clock, planX, planY)
	if !ed.Map().HasEdge(1, 2) {
		t.Fatal("edge Idea-Plan not created")
	}
	if ed.State().HasPending() || ed.Status() != statusConnectAgain {
		t.Errorf("after connect: pending %d, status %q", ed.State().PendingSource, ed.Status())
	}
	if !ed.Dirty() {
		t.Error("map not marked dirty")
	}

	ed, _ = send(ed, key("c"))
	if ed.State().Mode != interact.ModeNormal || ed.Status() != statusReady {
		t.Errorf("after second c: mode %v, status %q", ed.State().Mode, ed.Status())
	}
}

func TestEditorDelete(t *testing.T) {
	ed, clock, _ := newTestEditor(t)
	ed.Map().CreateEdge(1, 2)

	ed, _ = send(ed, key("d"))
	if ed.Status() != statusDelete {
		t.Fatalf("status = %q", ed.Status())
	}

	// Midpoint of the line: canvas (250,100) is cell (25, 5).
	ed = click(ed, clock, 25, 6)
	if ed.Map().EdgeCount() != 0 || ed.Map().NodeCount() != 2 {
		t.Fatalf("edge click: %d nodes, %d edges", ed.Map().NodeCount(), ed.Map().EdgeCount())
	}

	ed.Map().CreateEdge(1, 2)
	ed = click(ed, clock, ideaX, ideaY)
	if ed.Map().HasNode(1) || ed.Map().EdgeCount() != 0 {
		t.Errorf("node delete did not cascade: %d nodes, %d edges", ed.Map().NodeCount(), ed.Map().EdgeCount())
	}
	if !strings.HasPrefix(ed.Status(), "Deleted node 1") {
		t.Errorf("status = %q", ed.Status())
	}
}

func TestEditorDrag(t *testing.T) {
	ed, _, _ := newTestEditor(t)

	ed, _ = send(ed, press(ideaX, ideaY))
	if !ed.State().IsDragging() {
		t.Fatal("press on node did not start a drag")
	}
	ed, _ = send(ed, motion(ideaX+10, ideaY))
	ed, _ = send(ed, motion(ideaX+20, ideaY+2))
	ed, _ = send(ed, release(ideaX+20, ideaY+2))

	n, _ := ed.Map().Node(1)
	if want := (mindmap.Point{X: 300, Y: 140}); n.Position != want {
		t.Errorf("Idea at %v, want %v", n.Position, want)
	}
	if ed.State().IsDragging() {
		t.Error("drag not ended on release")
	}

	// Motion without a drag moves nothing.
	ed, _ = send(ed, motion(planX+5, planY))
	if p, _ := ed.Map().Node(2); p.Position != (mindmap.Point{X: 400, Y: 100}) {
		t.Errorf("Plan moved to %v", p.Position)
	}
}

func TestEditorDoubleClickCreatesNode(t *testing.T) {
	ed, clock, _ := newTestEditor(t)

	ed, _ = send(ed, press(emptyX, emptyY))
	ed, _ = send(ed, release(emptyX, emptyY))
	clock.t = clock.t.Add(200 * time.Millisecond)
	ed, _ = send(ed, press(emptyX, emptyY))
	if !ed.prompting {
		t.Fatal("double-click on empty canvas did not prompt")
	}

	// Mouse input is ignored while the prompt is open.
	ed, _ = send(ed, press(ideaX, ideaY))
	if ed.State().IsDragging() {
		t.Error("press during prompt started a drag")
	}

	ed, _ = send(ed, key("  Risks "))
	ed, _ = send(ed, key("enter"))
	if ed.prompting {
		t.Fatal("prompt still open after enter")
	}
	n, ok := ed.Map().Node(3)
	if !ok {
		t.Fatal("node 3 not created")
	}
	if n.Label != "Risks" || n.Position != (mindmap.Point{X: 705, Y: 310}) {
		t.Errorf("node = %+v", n)
	}
}

func TestEditorDoubleClickIgnored(t *testing.T) {
	tests := []struct {
		name string
		x, y int
		gap  time.Duration
	}{
		{"too slow", emptyX, emptyY, time.Second},
		{"over node", ideaX, ideaY, 100 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed, clock, _ := newTestEditor(t)
			ed, _ = send(ed, press(tt.x, tt.y))
			ed, _ = send(ed, release(tt.x, tt.y))
			clock.t = clock.t.Add(tt.gap)
			ed, _ = send(ed, press(tt.x, tt.y))
			if ed.prompting {
				t.Error("prompt opened")
			}
		})
	}
}

func TestEditorQuickRegrabDrags(t *testing.T) {
	ed, clock, _ := newTestEditor(t)

	ed, _ = send(ed, press(ideaX, ideaY))
	ed, _ = send(ed, release(ideaX, ideaY))
	clock.t = clock.t.Add(100 * time.Millisecond)
	ed, _ = send(ed, press(ideaX, ideaY))
	if !ed.State().IsDragging() {
		t.Fatal("second press on node did not start a drag")
	}
	ed, _ = send(ed, motion(ideaX+10, ideaY))
	ed, _ = send(ed, release(ideaX+10, ideaY))

	n, _ := ed.Map().Node(1)
	if want := (mindmap.Point{X: 200, Y: 100}); n.Position != want {
		t.Errorf("Idea at %v, want %v", n.Position, want)
	}
}

func TestEditorPromptCancel(t *testing.T) {
	for _, k := range []string{"esc", "enter"} {
		t.Run(k, func(t *testing.T) {
			ed, _, _ := newTestEditor(t)
			ed = ed.doubleClick(mindmap.Point{X: 705, Y: 310})
			if k == "enter" {
				ed, _ = send(ed, key("   "))
			}
			ed, _ = send(ed, key(k))
			if ed.prompting || ed.Map().NodeCount() != 2 {
				t.Errorf("prompting %v, %d nodes", ed.prompting, ed.Map().NodeCount())
			}
		})
	}
}

func TestEditorClear(t *testing.T) {
	ed, _, _ := newTestEditor(t)

	ed, _ = send(ed, key("x"))
	if ed.Status() != statusConfirmClear {
		t.Fatalf("status = %q", ed.Status())
	}
	ed, _ = send(ed, key("n"))
	if ed.Map().NodeCount() != 2 || ed.Status() != statusReady {
		t.Fatalf("declined clear: %d nodes, status %q", ed.Map().NodeCount(), ed.Status())
	}

	ed, _ = send(ed, key("x"))
	ed, _ = send(ed, key("y"))
	if ed.Map().NodeCount() != 0 || ed.Status() != statusCleared {
		t.Errorf("confirmed clear: %d nodes, status %q", ed.Map().NodeCount(), ed.Status())
	}
}

func TestEditorSaveAndReload(t *testing.T) {
	ed, _, st := newTestEditor(t)
	ed.Map().CreateEdge(1, 2)

	ed, cmd := send(ed, key("s"))
	if cmd == nil {
		t.Fatal("s returned no command")
	}
	ed, _ = send(ed, cmd())
	if ed.Status() != "Saved map to mem://ideas" {
		t.Fatalf("status = %q", ed.Status())
	}
	if names, _ := st.List(context.Background()); len(names) != 1 || names[0] != "ideas" {
		t.Fatalf("store has %v", names)
	}

	ed.Map().DeleteNode(2)
	ed, cmd = send(ed, key("r"))
	ed, _ = send(ed, cmd())
	if ed.Status() != "Loaded map from mem://ideas" {
		t.Fatalf("status = %q", ed.Status())
	}
	if ed.Map().NodeCount() != 2 || !ed.Map().HasEdge(1, 2) {
		t.Errorf("reloaded map: %d nodes, edge %v", ed.Map().NodeCount(), ed.Map().HasEdge(1, 2))
	}
	if ed.Dirty() {
		t.Error("dirty after reload")
	}
}

func TestEditorReloadFailureKeepsMap(t *testing.T) {
	ed, _, _ := newTestEditor(t)

	ed, cmd := send(ed, key("r"))
	ed, _ = send(ed, cmd())
	if !strings.HasPrefix(ed.Status(), "Failed to load map:") || !ed.statusErr {
		t.Errorf("status = %q", ed.Status())
	}
	if ed.Map().NodeCount() != 2 {
		t.Errorf("map replaced on failure: %d nodes", ed.Map().NodeCount())
	}
}

func TestEditorQuit(t *testing.T) {
	ed, _, _ := newTestEditor(t)
	for _, k := range []tea.KeyMsg{key("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := send(ed, k)
		if cmd == nil {
			t.Fatalf("%s returned no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not quit", k)
		}
	}
}

func TestEditorView(t *testing.T) {
	ed, _, _ := newTestEditor(t)
	ed, _ = send(ed, key("c"))

	view := ed.View()
	for _, want := range []string{"mindcraft", "ideas", "2 nodes", "Connect Mode: ON", "Idea", "Plan", statusConnect} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if got := strings.Count(view, "\n") + 1; got != 30 {
		t.Errorf("view has %d lines, want 30", got)
	}
}
