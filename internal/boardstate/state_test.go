package boardstate

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"kanban-cli/internal/debounce"
	"kanban-cli/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type recordingSaver struct {
	mu    sync.Mutex
	saves []model.Board
	err   error
}

func (r *recordingSaver) SaveBoard(_ context.Context, b model.Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, b)
	return r.err
}

func (r *recordingSaver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

type harness struct {
	state   *State
	clock   *debounce.ManualClock
	saver   *recordingSaver
	boards  []model.Board
	entries []model.HistoryEntry
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newHarness(t *testing.T, b model.Board) *harness {
	t.Helper()
	h := &harness{
		clock: debounce.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		saver: &recordingSaver{},
	}
	h.state = New(Options{
		Board:     &b,
		Saver:     h.saver,
		Scheduler: h.clock,
		Logger:    quietLogger(),
	})
	h.state.OnBoardChanged(func(b model.Board) { h.boards = append(h.boards, b) })
	h.state.OnHistoryUpdated(func(e model.HistoryEntry) { h.entries = append(h.entries, e) })
	t.Cleanup(func() {
		require.NoError(t, h.state.Current().Validate())
	})
	return h
}

func twoColumnBoard() model.Board {
	return model.Board{
		Title:    "Board",
		Autosave: true,
		Columns: []model.Column{
			{ID: "col-a", Title: "A", Color: model.DefaultColumnColor, Tasks: []model.Task{}},
			{ID: "col-b", Title: "B", Color: model.DefaultColumnColor, Tasks: []model.Task{{ID: "task-1", Text: "x"}}},
		},
	}
}

func taskIDs(c model.Column) []string {
	out := []string{}
	for _, t := range c.Tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestMoveTask_AcrossColumnsNotifiesExactShape(t *testing.T) {
	h := newHarness(t, twoColumnBoard())

	require.True(t, h.state.MoveTask("col-b", "col-a", 0, 0))

	cur := h.state.Current()
	require.Equal(t, []model.Task{{ID: "task-1", Text: "x"}}, cur.Columns[0].Tasks)
	require.Empty(t, cur.Columns[1].Tasks)

	require.Len(t, h.boards, 1)
	require.Equal(t, cur, h.boards[0])
	require.Equal(t, 0, h.state.Len(), "card moves are never recorded")
	require.Empty(t, h.entries)
	require.Equal(t, 1, h.saver.count(), "autosave runs after the move")
}

func TestMoveTask_DestinationBounds(t *testing.T) {
	b := model.Board{Autosave: true, Columns: []model.Column{
		{ID: "col-a", Tasks: []model.Task{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}}},
		{ID: "col-b", Tasks: []model.Task{{ID: "b1"}, {ID: "b2"}, {ID: "b3"}}},
	}}
	h := newHarness(t, b)

	require.False(t, h.state.MoveTask("col-a", "col-a", 0, 3), "same column: len is out of range")
	require.False(t, h.state.MoveTask("col-a", "col-b", 0, 4))
	require.False(t, h.state.MoveTask("col-a", "col-b", 3, 0))
	require.False(t, h.state.MoveTask("col-a", "col-b", -1, 0))
	require.False(t, h.state.MoveTask("col-a", "col-b", 0, -1))
	require.False(t, h.state.MoveTask("col-a", "col-missing", 0, 0))
	require.Empty(t, h.boards, "declined moves do not notify")
	require.Zero(t, h.saver.count(), "declined moves do not save")

	require.True(t, h.state.MoveTask("col-a", "col-b", 0, 3), "other column: len appends")
	cur := h.state.Current()
	require.Equal(t, []string{"a2", "a3"}, taskIDs(cur.Columns[0]))
	require.Equal(t, []string{"b1", "b2", "b3", "a1"}, taskIDs(cur.Columns[1]))

	require.True(t, h.state.MoveTask("col-b", "col-b", 0, 3))
	require.Equal(t, []string{"b2", "b3", "a1", "b1"}, taskIDs(h.state.Current().Columns[1]))

	require.True(t, h.state.MoveTask("col-b", "col-b", 3, 0))
	require.Equal(t, []string{"b1", "b2", "b3", "a1"}, taskIDs(h.state.Current().Columns[1]))
	require.Equal(t, 0, h.state.Len())
}

func TestChangeTaskText_CoalescesBurstIntoOneEntry(t *testing.T) {
	b := model.Board{Autosave: true, Columns: []model.Column{
		{ID: "col-a", Title: "A", Tasks: []model.Task{{ID: "task-1", Text: "foo"}}},
	}}
	h := newHarness(t, b)

	for _, text := range []string{"fo", "foob", "fooba"} {
		require.True(t, h.state.ChangeTaskText("col-a", "task-1", text))
		h.clock.Advance(500 * time.Millisecond)
	}

	require.Equal(t, "fooba", h.state.Current().Columns[0].Tasks[0].Text, "live board shows the latest keystroke")
	require.Len(t, h.boards, 3, "board-changed fires on every keystroke")
	require.Equal(t, 3, h.saver.count(), "autosave follows every keystroke")
	require.Equal(t, 0, h.state.Len(), "nothing is recorded while the burst is open")
	require.Empty(t, h.entries)
	require.Equal(t, 1, h.state.PendingEdits())

	h.clock.Advance(DefaultTaskTextWindow)

	hist := h.state.History()
	require.Len(t, hist, 1)
	require.Equal(t, model.ChangeTaskText, hist[0].Change)
	require.Equal(t, "foo", hist[0].Snapshot.Columns[0].Tasks[0].Text)
	require.Equal(t, `"foo" changed to "fooba"`, hist[0].Details)
	require.Equal(t, "fooba", h.state.Current().Columns[0].Tasks[0].Text)
	require.Len(t, h.entries, 1, "history-updated fires once, after the window")
	require.Equal(t, hist[0], h.entries[0])
	require.Zero(t, h.state.PendingEdits())

	// A new burst starts from the committed value.
	h.state.ChangeTaskText("col-a", "task-1", "bar")
	h.clock.Advance(DefaultTaskTextWindow)
	hist = h.state.History()
	require.Len(t, hist, 2)
	require.Equal(t, "fooba", hist[1].Snapshot.Columns[0].Tasks[0].Text)
}

func TestChangeTaskText_TargetsAreIndependent(t *testing.T) {
	b := model.Board{Columns: []model.Column{
		{ID: "col-a", Tasks: []model.Task{{ID: "t1", Text: "one"}, {ID: "t2", Text: "two"}}},
	}}
	h := newHarness(t, b)

	h.state.ChangeTaskText("col-a", "t1", "one!")
	h.clock.Advance(2 * time.Second)
	h.state.ChangeTaskText("col-a", "t2", "two!")
	h.clock.Advance(time.Second)

	hist := h.state.History()
	require.Len(t, hist, 1, "editing t2 must not postpone t1's commit")
	require.Equal(t, "one", hist[0].Snapshot.Columns[0].Tasks[0].Text)
	require.Equal(t, "two!", hist[0].Snapshot.Columns[0].Tasks[1].Text, "only the committed target is restored")

	h.clock.Advance(2 * time.Second)
	hist = h.state.History()
	require.Len(t, hist, 2)
	require.Equal(t, "one!", hist[1].Snapshot.Columns[0].Tasks[0].Text)
	require.Equal(t, "two", hist[1].Snapshot.Columns[0].Tasks[1].Text)
	require.Len(t, h.entries, 2)
}

func TestChangeTaskText_TaskMovedDuringWindow(t *testing.T) {
	h := newHarness(t, twoColumnBoard())

	h.state.ChangeTaskText("col-b", "task-1", "xy")
	h.state.MoveTask("col-b", "col-a", 0, 0)
	h.clock.Advance(DefaultTaskTextWindow)

	hist := h.state.History()
	require.Len(t, hist, 1)
	require.Equal(t, "x", hist[0].Snapshot.Columns[0].Tasks[0].Text)
}

func TestChangeTaskText_UnknownTargets(t *testing.T) {
	h := newHarness(t, twoColumnBoard())

	require.False(t, h.state.ChangeTaskText("col-missing", "task-1", "y"))
	require.False(t, h.state.ChangeTaskText("col-a", "task-1", "y"), "task lives in col-b")
	h.clock.Advance(time.Minute)
	require.Empty(t, h.boards)
	require.Equal(t, 0, h.state.Len())
}

func TestChangeBoardTitle_UsesTitleWindow(t *testing.T) {
	h := newHarness(t, twoColumnBoard())

	h.state.ChangeBoardTitle("Boa")
	h.state.ChangeBoardTitle("Boar")
	h.clock.Advance(DefaultTitleWindow)

	hist := h.state.History()
	require.Len(t, hist, 1)
	require.Equal(t, model.ChangeBoardTitle, hist[0].Change)
	require.Equal(t, "Board", hist[0].Snapshot.Title)
	require.Equal(t, `From "Board" to "Boar"`, hist[0].Details)
	require.Equal(t, "Boar", h.state.Current().Title)
}

func TestChangeColumnTitle_ClampsAndCoalesces(t *testing.T) {
	h := newHarness(t, twoColumnBoard())

	require.True(t, h.state.ChangeColumnTitle("col-a", "To"))
	require.True(t, h.state.ChangeColumnTitle("col-a", "Todo, but with a very long name"))
	require.False(t, h.state.ChangeColumnTitle("col-missing", "x"))
	h.clock.Advance(DefaultTitleWindow)

	cur := h.state.Current()
	require.Len(t, []rune(cur.Columns[0].Title), model.MaxColumnTitleLen)
	hist := h.state.History()
	require.Len(t, hist, 1)
	require.Equal(t, model.ChangeColumnTitle, hist[0].Change)
	require.Equal(t, "A", hist[0].Snapshot.Columns[0].Title)
}

func TestRemoveTask_RecordsOnlyContent(t *testing.T) {
	b := model.Board{Columns: []model.Column{
		{ID: "col-a", Title: "A", Tasks: []model.Task{{ID: "empty", Text: ""}, {ID: "full", Text: "x"}}},
	}}
	h := newHarness(t, b)

	require.True(t, h.state.RemoveTask("col-a", "empty"))
	require.Equal(t, 0, h.state.Len())
	require.Empty(t, h.entries)
	require.Len(t, h.boards, 1)

	require.True(t, h.state.RemoveTask("col-a", "full"))
	hist := h.state.History()
	require.Len(t, hist, 1)
	require.Equal(t, model.ChangeTaskDeleted, hist[0].Change)
	require.Equal(t, `"x" removed from "A"`, hist[0].Details)
	require.Len(t, hist[0].Snapshot.Columns[0].Tasks, 1)
	require.Len(t, h.entries, 1)

	require.False(t, h.state.RemoveTask("col-a", "full"), "double delete is ignored")
	require.False(t, h.state.RemoveTask("col-missing", "full"))
	require.Equal(t, 1, h.state.Len())
}

func TestAddTask_FrontAndUnrecorded(t *testing.T) {
	h := newHarness(t, twoColumnBoard())

	id, ok := h.state.AddTask("col-b")
	require.True(t, ok)
	cur := h.state.Current()
	require.Equal(t, []string{id, "task-1"}, taskIDs(cur.Columns[1]))
	require.Equal(t, "", cur.Columns[1].Tasks[0].Text)
	require.Equal(t, 0, h.state.Len())
	require.Len(t, h.boards, 1)
	require.Equal(t, 1, h.saver.count())

	_, ok = h.state.AddTask("col-missing")
	require.False(t, ok)
}

func TestAddAndRemoveColumn(t *testing.T) {
	h := newHarness(t, twoColumnBoard())

	id := h.state.AddColumn()
	cur := h.state.Current()
	require.Len(t, cur.Columns, 3)
	require.Equal(t, id, cur.Columns[2].ID)
	require.Equal(t, "Column 3", cur.Columns[2].Title)
	require.Equal(t, model.DefaultColumnColor, cur.Columns[2].Color)

	require.True(t, h.state.RemoveColumn("col-a"))
	require.False(t, h.state.RemoveColumn("col-a"))

	hist := h.state.History()
	require.Len(t, hist, 2)
	require.Equal(t, model.ChangeColumnAdded, hist[0].Change)
	require.Len(t, hist[0].Snapshot.Columns, 2)
	require.Equal(t, model.ChangeColumnDeleted, hist[1].Change)
	require.Equal(t, `Deleted "A"`, hist[1].Details)
	require.Len(t, h.entries, 2)
}

func TestChangeColumnColor_SameColorIsNoOp(t *testing.T) {
	h := newHarness(t, twoColumnBoard())

	require.False(t, h.state.ChangeColumnColor("col-a", model.DefaultColumnColor))
	require.False(t, h.state.ChangeColumnColor("col-a", model.DefaultColumnColor))
	require.Equal(t, 0, h.state.Len())
	require.Empty(t, h.boards)

	require.True(t, h.state.ChangeColumnColor("col-a", "red"))
	require.False(t, h.state.ChangeColumnColor("col-a", "red"))
	require.False(t, h.state.ChangeColumnColor("col-missing", "red"))
	require.Equal(t, 1, h.state.Len())
	require.Equal(t, "red", h.state.Current().Columns[0].Color)
}

func TestMoveColumn(t *testing.T) {
	b := model.Board{Columns: []model.Column{{ID: "c1", Title: "One"}, {ID: "c2", Title: "Two"}, {ID: "c3", Title: "Three"}}}
	h := newHarness(t, b)

	require.False(t, h.state.MoveColumn("c1", 3))
	require.False(t, h.state.MoveColumn("c1", -1))
	require.False(t, h.state.MoveColumn("missing", 0))
	require.Equal(t, 0, h.state.Len())

	require.True(t, h.state.MoveColumn("c1", 2))
	cur := h.state.Current()
	require.Equal(t, []string{"c2", "c3", "c1"}, []string{cur.Columns[0].ID, cur.Columns[1].ID, cur.Columns[2].ID})

	hist := h.state.History()
	require.Len(t, hist, 1)
	require.Equal(t, model.ChangeColumnMoved, hist[0].Change)
	require.Equal(t, `"One" moved`, hist[0].Details)
	require.Equal(t, "c1", hist[0].Snapshot.Columns[0].ID)
}

func TestUndoChange_RoundTrip(t *testing.T) {
	h := newHarness(t, twoColumnBoard())
	b0 := h.state.Current()

	require.True(t, h.state.RemoveColumn("col-b"))
	require.NotEqual(t, b0, h.state.Current())

	require.True(t, h.state.UndoChange(0))
	require.Equal(t, b0, h.state.Current())

	hist := h.state.History()
	require.Len(t, hist, 2, "the mutation and the undo are both recorded")
	require.Equal(t, model.ChangeHistoryReversed, hist[1].Change)
	require.Equal(t, "Changes reversed to item 1", hist[1].Details)
	require.Len(t, hist[1].Snapshot.Columns, 1, "undo entry holds the board it replaced")

	// Undo the undo.
	require.True(t, h.state.UndoChange(1))
	require.Len(t, h.state.Current().Columns, 1)
	require.Equal(t, 3, h.state.Len())

	require.False(t, h.state.UndoChange(-1))
	require.False(t, h.state.UndoChange(3))
	require.Equal(t, 3, h.state.Len())
}

func TestUndoChange_RestoresPreBurstText(t *testing.T) {
	b := model.Board{Columns: []model.Column{{ID: "col-a", Tasks: []model.Task{{ID: "t", Text: "foo"}}}}}
	h := newHarness(t, b)

	h.state.ChangeTaskText("col-a", "t", "foob")
	h.state.ChangeTaskText("col-a", "t", "fooba")
	h.clock.Advance(DefaultTaskTextWindow)

	require.True(t, h.state.UndoChange(0))
	require.Equal(t, "foo", h.state.Current().Columns[0].Tasks[0].Text)
}

func TestHistory_ReturnsCopies(t *testing.T) {
	h := newHarness(t, twoColumnBoard())
	h.state.RemoveColumn("col-a")

	hist := h.state.History()
	hist[0].Snapshot.Columns[0].Title = "mutated"
	hist[0].Snapshot.Columns[1].Tasks[0].Text = "mutated"

	again := h.state.History()
	require.Equal(t, "A", again[0].Snapshot.Columns[0].Title)
	require.Equal(t, "x", again[0].Snapshot.Columns[1].Tasks[0].Text)

	h.boards[0].Columns[0].Tasks[0].Text = "mutated"
	require.Equal(t, "x", h.state.Current().Columns[0].Tasks[0].Text)
}

func TestSave_WithBoardRecordsLoad(t *testing.T) {
	h := newHarness(t, twoColumnBoard())
	prev := h.state.Current()

	loaded := model.Board{Title: "Loaded", Columns: []model.Column{{ID: "col-z", Title: "Z", Tasks: []model.Task{}}}}
	require.NoError(t, h.state.Save(&loaded))

	require.Equal(t, loaded, h.state.Current())
	hist := h.state.History()
	require.Len(t, hist, 1)
	require.Equal(t, model.ChangeBoardLoaded, hist[0].Change)
	require.Equal(t, prev, hist[0].Snapshot)
	require.Len(t, h.entries, 1)
	require.Len(t, h.boards, 1)
	require.Equal(t, 1, h.saver.count(), "loading also persists the new board")
	require.Equal(t, loaded, h.saver.saves[0])

	// Caller keeps ownership of its board.
	loaded.Columns[0].Title = "mutated"
	require.Equal(t, "Z", h.state.Current().Columns[0].Title)

	require.NoError(t, h.state.Save(nil))
	require.Equal(t, 2, h.saver.count())
	require.Equal(t, 1, h.state.Len())

	require.True(t, h.state.UndoChange(0))
	require.Equal(t, prev, h.state.Current())
}

func TestSave_RejectsInvalidBoard(t *testing.T) {
	h := newHarness(t, twoColumnBoard())

	bad := model.Board{Columns: []model.Column{{ID: "dup"}, {ID: "dup"}}}
	err := h.state.Save(&bad)
	var dup model.DuplicateIDError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, 0, h.state.Len())
	require.Equal(t, "Board", h.state.Current().Title)
}

func TestSave_ReturnsSaverError(t *testing.T) {
	h := newHarness(t, twoColumnBoard())
	h.saver.err = errors.New("disk full")

	require.EqualError(t, h.state.Save(nil), "disk full")

	// Autosave failures are logged, not surfaced; the mutation still applies.
	require.True(t, h.state.MoveTask("col-b", "col-a", 0, 0))
	require.Len(t, h.state.Current().Columns[0].Tasks, 1)
}

func TestAutosaveOff_SkipsSaver(t *testing.T) {
	h := newHarness(t, twoColumnBoard())

	h.state.ChangeAutosave(false)
	require.Equal(t, 0, h.saver.count(), "turning autosave off does not save")
	h.state.AddTask("col-a")
	h.state.RemoveColumn("col-b")
	require.Equal(t, 0, h.saver.count())

	h.state.ChangeAutosave(true)
	require.Equal(t, 1, h.saver.count())
	require.Equal(t, 1, h.state.Len(), "settings changes are not recorded")

	h.state.ChangeSaveToFile(true)
	require.True(t, h.state.Current().SaveToFile)
	require.Equal(t, 2, h.saver.count())
	require.Equal(t, 1, h.state.Len())
}

func TestListenerRemoval(t *testing.T) {
	h := newHarness(t, twoColumnBoard())
	calls := 0
	remove := h.state.OnBoardChanged(func(model.Board) { calls++ })

	h.state.AddTask("col-a")
	remove()
	h.state.AddTask("col-a")

	require.Equal(t, 1, calls)
	require.Len(t, h.boards, 2, "other listeners are kept")
}

func TestPreview_DoesNotTouchState(t *testing.T) {
	h := newHarness(t, twoColumnBoard())
	preview := model.Board{Title: "preview"}

	h.state.Preview(preview)
	require.Len(t, h.boards, 1)
	require.Equal(t, "preview", h.boards[0].Title)
	require.Equal(t, "Board", h.state.Current().Title)
	require.Zero(t, h.saver.count())
}

func TestFlushAndClose_CommitPendingEdits(t *testing.T) {
	h := newHarness(t, twoColumnBoard())

	h.state.ChangeTaskText("col-b", "task-1", "xyz")
	h.state.ChangeBoardTitle("New")
	require.Equal(t, 2, h.state.PendingEdits())

	h.state.Close()
	require.Zero(t, h.state.PendingEdits())
	hist := h.state.History()
	require.Len(t, hist, 2)

	// After Close the saver is detached and listeners are gone.
	saves := h.saver.count()
	boards := len(h.boards)
	h.state.AddTask("col-a")
	require.Equal(t, saves, h.saver.count())
	require.Len(t, h.boards, boards)
}

func TestColumnColorIdempotence(t *testing.T) {
	h := newHarness(t, twoColumnBoard())
	before := h.state.Len()
	h.state.ChangeColumnColor("col-a", model.DefaultColumnColor)
	h.state.ChangeColumnColor("col-a", model.DefaultColumnColor)
	require.Equal(t, before, h.state.Len())
}

func TestSeededHistory_IsCopied(t *testing.T) {
	seed := []model.HistoryEntry{{Change: model.ChangeColumnAdded, Snapshot: twoColumnBoard(), Details: "seed"}}
	s := New(Options{History: seed, Logger: quietLogger()})
	seed[0].Snapshot.Columns[0].Title = "mutated"

	hist := s.History()
	require.Len(t, hist, 1)
	require.Equal(t, "A", hist[0].Snapshot.Columns[0].Title)
	require.True(t, s.UndoChange(0))
	require.Equal(t, "Board", s.Current().Title)
}

func TestConcurrentEdits_WithRealTimers(t *testing.T) {
	b := model.Board{Columns: []model.Column{{ID: "col-a", Tasks: []model.Task{{ID: "t", Text: ""}}}}}
	s := New(Options{
		Board:          &b,
		TaskTextWindow: 20 * time.Millisecond,
		TitleWindow:    20 * time.Millisecond,
		Logger:         quietLogger(),
	})

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				switch g {
				case 0:
					s.ChangeTaskText("col-a", "t", string(rune('a'+i%26)))
				case 1:
					s.ChangeBoardTitle("title")
				case 2:
					s.AddTask("col-a")
				default:
					_ = s.Current()
					_ = s.History()
				}
			}
		}(g)
	}
	wg.Wait()

	require.Eventually(t, func() bool { return s.PendingEdits() == 0 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Current().Validate())
	require.GreaterOrEqual(t, s.Len(), 2)
}
