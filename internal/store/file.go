package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"kanban-cli/internal/model"
)

// File is a board stored as a single JSON document.
type File struct {
	Path string

	mu          sync.Mutex
	lastWritten []byte
}

// Read returns the board in the file. ok is false when the file does not exist.
func (f *File) Read() (model.Board, bool, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Board{}, false, nil
		}
		return model.Board{}, false, err
	}
	board, err := decodeBoard(b)
	if err != nil {
		return model.Board{}, false, fmt.Errorf("%s: %w", f.Path, err)
	}
	return board, true, nil
}

func (f *File) Write(board model.Board) error {
	b, err := encodeBoard(board, true)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := atomicWriteFile(dir, ".board-*.tmp", f.Path, b, 0o644); err != nil {
		return err
	}
	f.lastWritten = b
	return nil
}

// WroteContent reports whether b is exactly what this File last wrote. The
// watcher uses it to skip change events caused by our own saves.
func (f *File) WroteContent(b []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastWritten != nil && bytes.Equal(f.lastWritten, b)
}

func decodeBoard(b []byte) (model.Board, error) {
	var board model.Board
	if err := json.Unmarshal(b, &board); err != nil {
		return model.Board{}, err
	}
	if err := normalizeBoard(&board); err != nil {
		return model.Board{}, err
	}
	return board, nil
}

func encodeBoard(board model.Board, pretty bool) ([]byte, error) {
	if pretty {
		b, err := json.MarshalIndent(board, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
	return json.Marshal(board)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
