package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"kanban-cli/internal/boardstate"
	"kanban-cli/internal/debounce"
	"kanban-cli/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

type countingSaver struct{ saves int }

func (c *countingSaver) SaveBoard(context.Context, model.Board) error {
	c.saves++
	return nil
}

func asciiProfile(t *testing.T) {
	t.Helper()
	old := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() { lipgloss.SetColorProfile(old) })
}

func testBoard() model.Board {
	return model.Board{
		Title:    "Sprint",
		Autosave: true,
		Columns: []model.Column{
			{ID: "todo", Title: "Todo", Color: "white", Tasks: []model.Task{{ID: "t1", Text: "**Write** docs"}}},
			{ID: "done", Title: "Done", Color: "green", Tasks: []model.Task{}},
		},
	}
}

func newTestModel(t *testing.T, b model.Board) (appModel, *boardstate.State, *countingSaver) {
	t.Helper()
	asciiProfile(t)
	saver := &countingSaver{}
	st := boardstate.New(boardstate.Options{
		Board:     &b,
		Saver:     saver,
		Scheduler: debounce.NewManualClock(time.Unix(0, 0)),
	})
	m := newAppModel(st, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(appModel), st, saver
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "shift+right":
		return tea.KeyMsg{Type: tea.KeyShiftRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(m appModel, keys ...string) appModel {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(appModel)
	}
	return m
}

func typeText(m appModel, s string) appModel {
	for _, r := range s {
		m = press(m, string(r))
	}
	return m
}

func plainView(m appModel) string {
	return xansi.Strip(m.View())
}

func TestView_RendersColumnsAndMarkdownCards(t *testing.T) {
	m, _, _ := newTestModel(t, testBoard())
	out := plainView(m)
	for _, want := range []string{"Sprint", "Todo (1)", "Done (0)", "Write docs", "(no tasks)", "autosave on"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
	if strings.Contains(out, "**Write**") {
		t.Fatalf("expected markdown to be rendered, got:\n%s", out)
	}
}

func TestNewTask_TypingIsOneHistoryEntry(t *testing.T) {
	m, st, _ := newTestModel(t, testBoard())

	m = press(m, "n")
	if m.mode != modeEditTask {
		t.Fatalf("expected edit mode after new task, got %v", m.mode)
	}
	m = typeText(m, "hello")
	cur := st.Current()
	if got := cur.Columns[0].Tasks[0].Text; got != "hello" {
		t.Fatalf("expected live text %q, got %q", "hello", got)
	}
	if st.Len() != 0 {
		t.Fatalf("expected no history before the window closes, got %d", st.Len())
	}
	if st.PendingEdits() != 1 {
		t.Fatalf("expected one pending burst, got %d", st.PendingEdits())
	}
	if !strings.Contains(plainView(m), "1 pending") {
		t.Fatalf("expected pending marker in header:\n%s", plainView(m))
	}

	m = press(m, "esc")
	if m.mode != modeBoard {
		t.Fatalf("expected board mode after esc")
	}
	st.Flush()
	h := st.History()
	if len(h) != 1 || h[0].Change != model.ChangeTaskText {
		t.Fatalf("expected a single task-text entry, got %+v", h)
	}
	if h[0].Snapshot.Columns[0].Tasks[0].Text != "" {
		t.Fatalf("expected snapshot to hold the pre-burst text, got %q", h[0].Snapshot.Columns[0].Tasks[0].Text)
	}
}

func TestMoveTask_AcrossColumnsFollowsSelection(t *testing.T) {
	m, st, _ := newTestModel(t, testBoard())

	m = press(m, "L")
	cur := st.Current()
	if len(cur.Columns[0].Tasks) != 0 || len(cur.Columns[1].Tasks) != 1 {
		t.Fatalf("expected task to move right, got %+v", cur.Columns)
	}
	if m.col != 1 || m.task != 0 {
		t.Fatalf("expected selection to follow the task, got col=%d task=%d", m.col, m.task)
	}
	if st.Len() != 0 {
		t.Fatalf("task moves are not recorded, got %d entries", st.Len())
	}

	// Already in the last column.
	m = press(m, "shift+right")
	if len(st.Current().Columns[1].Tasks) != 1 {
		t.Fatalf("expected no-op at the right edge")
	}
}

func TestMoveTask_WithinColumn(t *testing.T) {
	b := testBoard()
	b.Columns[0].Tasks = append(b.Columns[0].Tasks, model.Task{ID: "t2", Text: "second"})
	m, st, _ := newTestModel(t, b)

	m = press(m, "J")
	ids := []string{}
	for _, tk := range st.Current().Columns[0].Tasks {
		ids = append(ids, tk.ID)
	}
	if strings.Join(ids, ",") != "t2,t1" {
		t.Fatalf("expected t2,t1 got %v", ids)
	}
	if m.task != 1 {
		t.Fatalf("expected selection on moved task, got %d", m.task)
	}
}

func TestColumns_AddRenameColorMove(t *testing.T) {
	m, st, _ := newTestModel(t, testBoard())

	m = press(m, "C")
	if m.mode != modeEditColumn || m.col != 2 {
		t.Fatalf("expected rename mode on new column, mode=%v col=%d", m.mode, m.col)
	}
	m = typeText(m, "!")
	m = press(m, "enter")
	if got := st.Current().Columns[2].Title; got != "Column 3!" {
		t.Fatalf("expected renamed column, got %q", got)
	}

	m = press(m, "c")
	if got := st.Current().Columns[2].Color; got != model.NextColor(model.DefaultColumnColor) {
		t.Fatalf("expected cycled color, got %q", got)
	}

	m = press(m, "<")
	cur := st.Current()
	if cur.Columns[1].Title != "Column 3!" || m.col != 1 {
		t.Fatalf("expected column moved left and selected, got %q col=%d", cur.Columns[1].Title, m.col)
	}

	st.Flush()
	var kinds []string
	for _, e := range st.History() {
		kinds = append(kinds, e.Change.String())
	}
	want := "column-added,column-color,column-moved,column-title"
	if got := strings.Join(kinds, ","); got != want {
		t.Fatalf("expected history %s, got %s", want, got)
	}
}

func TestColumnRename_RespectsTitleLimit(t *testing.T) {
	m, st, _ := newTestModel(t, testBoard())
	m = press(m, "r")
	m = typeText(m, strings.Repeat("x", 30))
	m = press(m, "esc")
	if got := st.Current().Columns[0].Title; len(got) != model.MaxColumnTitleLen {
		t.Fatalf("expected title clamped to %d, got %q", model.MaxColumnTitleLen, got)
	}
}

func TestHistory_PreviewAndUndo(t *testing.T) {
	m, st, _ := newTestModel(t, testBoard())

	m = press(m, "c")
	if st.Current().Columns[0].Color == "white" {
		t.Fatalf("expected color change")
	}

	m = press(m, "u")
	if m.mode != modeHistory {
		t.Fatalf("expected history mode")
	}
	if m.board.Columns[0].Color != "white" {
		t.Fatalf("expected preview of the entry snapshot, got %q", m.board.Columns[0].Color)
	}
	if st.Current().Columns[0].Color == "white" {
		t.Fatalf("preview must not change the live board")
	}
	if !strings.Contains(plainView(m), "column-color") {
		t.Fatalf("expected history panel in view:\n%s", plainView(m))
	}

	m = press(m, "enter")
	if m.mode != modeBoard {
		t.Fatalf("expected board mode after undo")
	}
	if got := st.Current().Columns[0].Color; got != "white" {
		t.Fatalf("expected undo to restore white, got %q", got)
	}
	h := st.History()
	if len(h) != 2 || h[1].Change != model.ChangeHistoryReversed {
		t.Fatalf("expected reversal recorded, got %+v", h)
	}
	if !strings.Contains(plainView(m), "restored history item 1") {
		t.Fatalf("expected status line after undo")
	}
}

func TestHistory_EscRestoresLiveBoard(t *testing.T) {
	m, st, _ := newTestModel(t, testBoard())
	m = press(m, "c", "u")
	m = press(m, "esc")
	if m.board.Columns[0].Color != st.Current().Columns[0].Color {
		t.Fatalf("expected live board after leaving history")
	}
}

func TestEditBoardTitle(t *testing.T) {
	m, st, _ := newTestModel(t, testBoard())
	m = press(m, "t", "backspace", "backspace", "backspace", "backspace", "backspace", "backspace")
	m = typeText(m, "Q3")
	m = press(m, "enter")
	if got := st.Current().Title; got != "Q3" {
		t.Fatalf("expected title Q3, got %q", got)
	}
	st.Flush()
	h := st.History()
	if len(h) != 1 || h[0].Details != `From "Sprint" to "Q3"` {
		t.Fatalf("expected one title entry, got %+v", h)
	}
}

func TestAutosaveToggleAndSave(t *testing.T) {
	m, st, saver := newTestModel(t, testBoard())

	m = press(m, "a")
	if st.Current().Autosave {
		t.Fatalf("expected autosave off")
	}
	before := saver.saves
	m = press(m, "x")
	if saver.saves != before {
		t.Fatalf("expected no save with autosave off")
	}
	m = press(m, "ctrl+s")
	if saver.saves != before+1 {
		t.Fatalf("expected ctrl+s to save")
	}
	if !strings.Contains(plainView(m), "saved") {
		t.Fatalf("expected saved status")
	}
}

func TestDeleteTaskAndColumn(t *testing.T) {
	m, st, _ := newTestModel(t, testBoard())
	m = press(m, "x")
	if len(st.Current().Columns[0].Tasks) != 0 {
		t.Fatalf("expected task deleted")
	}
	m = press(m, "X")
	if len(st.Current().Columns) != 1 || st.Current().Columns[0].ID != "done" {
		t.Fatalf("expected first column deleted, got %+v", st.Current().Columns)
	}
	_ = m
}

func TestFeed_DeliversLatestBoard(t *testing.T) {
	f := newBoardFeed()
	b1 := testBoard()
	b2 := testBoard()
	b2.Title = "latest"
	f.publishBoard(b1)
	f.publishBoard(b2)
	f.publishHistory(model.HistoryEntry{})

	msg := f.wait()()
	fm, ok := msg.(feedMsg)
	if !ok || fm.board == nil || fm.board.Title != "latest" || !fm.history {
		t.Fatalf("unexpected feed message %#v", msg)
	}

	f.close()
	if _, ok := f.wait()().(feedClosedMsg); !ok {
		t.Fatalf("expected closed message")
	}
	f.publishBoard(b1)
}

func TestFeed_UpdatesModelFromEngineListeners(t *testing.T) {
	asciiProfile(t)
	f := newBoardFeed()
	b := testBoard()
	st := boardstate.New(boardstate.Options{Board: &b, Scheduler: debounce.NewManualClock(time.Unix(0, 0))})
	remove := st.OnBoardChanged(f.publishBoard)
	defer remove()
	m := newAppModel(st, f)

	// An external load (e.g. the file watcher) reaches the model through the feed.
	loaded := testBoard()
	loaded.Title = "from disk"
	st.Load(loaded)

	next, cmd := m.Update(f.wait()())
	m = next.(appModel)
	if m.board.Title != "from disk" {
		t.Fatalf("expected model to show the loaded board, got %q", m.board.Title)
	}
	if cmd == nil {
		t.Fatalf("expected the model to keep waiting on the feed")
	}
}
