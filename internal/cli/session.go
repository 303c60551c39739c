package cli

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"kanban-cli/internal/boardstate"
	"kanban-cli/internal/config"
	"kanban-cli/internal/model"
	"kanban-cli/internal/store"

	"github.com/sirupsen/logrus"
)

// session is one command's view of the board: loaded from the store, mutated
// through the engine, then persisted on close.
type session struct {
	app   *App
	store *store.Store
	state *boardstate.State
	saver *trackingSaver
	found bool

	initial model.Board
}

// trackingSaver remembers the first save error so commands can report it;
// the engine itself only logs save failures.
type trackingSaver struct {
	inner boardstate.Saver

	mu    sync.Mutex
	saves int
	err   error
}

func (t *trackingSaver) SaveBoard(ctx context.Context, b model.Board) error {
	err := t.inner.SaveBoard(ctx, b)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.saves++
	if err != nil && t.err == nil {
		t.err = err
	}
	return err
}

func (t *trackingSaver) result() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saves, t.err
}

func resolveDir(app *App) error {
	if app.Dir != "" {
		return nil
	}
	d, err := store.DefaultDir()
	if err != nil {
		return err
	}
	app.Dir = d
	return nil
}

func openBackend(ctx context.Context, app *App) (store.Backend, error) {
	switch app.cfg.Store.Backend {
	case config.BackendRedis:
		return store.OpenRedis(ctx, app.cfg.Store.RedisURL, app.cfg.Store.RedisPrefix)
	case config.BackendSQLite, "":
		return store.OpenSQLite(ctx, store.SQLitePath(app.Dir))
	default:
		return nil, fmt.Errorf("unknown backend: %s", app.cfg.Store.Backend)
	}
}

func openStore(ctx context.Context, app *App) (*store.Store, error) {
	if err := resolveDir(app); err != nil {
		return nil, err
	}
	be, err := openBackend(ctx, app)
	if err != nil {
		return nil, err
	}
	return store.New(app.Dir, be, app.cfg.Store.BoardFile), nil
}

func logger(app *App) logrus.FieldLogger {
	if app.log == nil {
		return logrus.StandardLogger()
	}
	return app.log
}

func openSession(ctx context.Context, app *App) (*session, error) {
	st, err := openStore(ctx, app)
	if err != nil {
		return nil, err
	}
	board, found, err := st.Load(ctx)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	history, err := st.LoadHistory(ctx)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("load history: %w", err)
	}

	saver := &trackingSaver{inner: st}
	state := boardstate.New(boardstate.Options{
		Board:          &board,
		History:        history,
		Saver:          saver,
		TaskTextWindow: app.cfg.TaskTextDebounce.Std(),
		TitleWindow:    app.cfg.TitleDebounce.Std(),
		Logger:         logger(app),
	})
	return &session{app: app, store: st, state: state, saver: saver, found: found, initial: board}, nil
}

// close commits open text bursts, persists the history, and saves the board
// when forced (or when the engine's autosave did not run).
func (s *session) close(ctx context.Context, forceSave bool) error {
	s.state.Flush()

	var errs []error
	if forceSave || s.app.Save {
		if err := s.state.Save(nil); err != nil {
			errs = append(errs, err)
		}
	}
	s.state.Close()

	saves, saveErr := s.saver.result()
	if saveErr != nil {
		errs = append(errs, saveErr)
	}
	if err := s.store.SaveHistory(ctx, s.state.History()); err != nil {
		errs = append(errs, fmt.Errorf("save history: %w", err))
	}
	if saves == 0 && !s.state.Current().Autosave && s.changed() {
		logger(s.app).Warn("autosave is off; board changes were not saved (pass --save)")
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *session) changed() bool {
	return !reflect.DeepEqual(s.initial, s.state.Current())
}

// columnLookup resolves a column by id or by exact title.
func columnLookup(b model.Board, ref string) (model.Column, bool) {
	if i := b.ColumnIndex(ref); i >= 0 {
		return b.Columns[i], true
	}
	for _, c := range b.Columns {
		if c.Title == ref {
			return c, true
		}
	}
	return model.Column{}, false
}

// taskLookup finds a task by id anywhere on the board.
func taskLookup(b model.Board, taskID string) (model.Column, int, bool) {
	for _, c := range b.Columns {
		if i := c.TaskIndex(taskID); i >= 0 {
			return c, i, true
		}
	}
	return model.Column{}, -1, false
}
