package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"kanban-cli/internal/model"
)

const (
	storeDirName         = ".kanban"
	sqliteFileName       = "kanban.sqlite"
	DefaultBoardFileName = ".kanban.json"
)

// Backend is the workspace-level persistence for the board and its history.
type Backend interface {
	LoadBoard(ctx context.Context) (model.Board, bool, error)
	SaveBoard(ctx context.Context, b model.Board) error
	LoadHistory(ctx context.Context) ([]model.HistoryEntry, error)
	SaveHistory(ctx context.Context, entries []model.HistoryEntry) error
	Close() error
}

// Store routes board snapshots: the backend always receives them, and boards
// with SaveToFile set are also written as JSON to File, next to the .kanban
// directory, so they can be edited or committed alongside a project.
type Store struct {
	Dir     string
	Backend Backend
	File    *File
}

func New(dir string, backend Backend, boardFileName string) *Store {
	if boardFileName == "" {
		boardFileName = DefaultBoardFileName
	}
	return &Store{
		Dir:     dir,
		Backend: backend,
		File:    &File{Path: filepath.Join(filepath.Dir(dir), boardFileName)},
	}
}

func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, storeDirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDir returns the nearest .kanban directory above the working directory,
// or ./.kanban if there is none.
func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, storeDirName), nil
}

func SQLitePath(dir string) string {
	return filepath.Join(dir, sqliteFileName)
}

func (s *Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

// Load returns the persisted board. found is false when nothing has been saved
// yet, in which case a default board is returned.
func (s *Store) Load(ctx context.Context) (model.Board, bool, error) {
	if s.Backend == nil {
		return model.Board{}, false, errors.New("store: no backend")
	}
	b, found, err := s.Backend.LoadBoard(ctx)
	if err != nil {
		return model.Board{}, false, fmt.Errorf("load board: %w", err)
	}

	// The file copy wins when the board is file-backed (or the backend is empty),
	// since it may have been edited outside this program.
	if s.File != nil && (!found || b.SaveToFile) {
		fb, ok, err := s.File.Read()
		if err != nil {
			return model.Board{}, false, err
		}
		if ok {
			return fb, true, nil
		}
	}
	if !found {
		return model.NewBoard(), false, nil
	}
	return b, true, nil
}

// SaveBoard implements boardstate.Saver.
func (s *Store) SaveBoard(ctx context.Context, b model.Board) error {
	if s.Backend == nil {
		return errors.New("store: no backend")
	}
	if err := s.Backend.SaveBoard(ctx, b); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	if b.SaveToFile && s.File != nil {
		if err := s.File.Write(b); err != nil {
			return fmt.Errorf("write board file: %w", err)
		}
	}
	return nil
}

func (s *Store) LoadHistory(ctx context.Context) ([]model.HistoryEntry, error) {
	if s.Backend == nil {
		return nil, errors.New("store: no backend")
	}
	return s.Backend.LoadHistory(ctx)
}

func (s *Store) SaveHistory(ctx context.Context, entries []model.HistoryEntry) error {
	if s.Backend == nil {
		return errors.New("store: no backend")
	}
	return s.Backend.SaveHistory(ctx, entries)
}

func (s *Store) Close() error {
	if s.Backend == nil {
		return nil
	}
	return s.Backend.Close()
}

// normalizeBoard fills nil slices so a decoded board marshals back to the same
// shape, then checks id invariants.
func normalizeBoard(b *model.Board) error {
	if b.Columns == nil {
		b.Columns = []model.Column{}
	}
	for i := range b.Columns {
		if b.Columns[i].Tasks == nil {
			b.Columns[i].Tasks = []model.Task{}
		}
		if b.Columns[i].Color == "" {
			b.Columns[i].Color = model.DefaultColumnColor
		}
	}
	return b.Validate()
}
