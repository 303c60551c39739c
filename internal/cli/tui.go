package cli

import (
	"os"
	"path/filepath"

	"kanban-cli/internal/config"
	"kanban-cli/internal/tui"

	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()

	// The alt screen owns the terminal; keep logs out of it.
	if dir, err := config.Dir(); err == nil {
		if err := os.MkdirAll(dir, 0o755); err == nil {
			if f, err := os.OpenFile(filepath.Join(dir, "kanban.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
				defer f.Close()
				app.log.SetOutput(f)
			}
		}
	}

	s, err := openSession(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := s.store.Ensure(); err != nil {
		_ = s.close(ctx, false)
		return writeErr(cmd, err)
	}

	runErr := tui.Run(ctx, tui.Options{State: s.state, File: s.store.File, Logger: logger(app)})
	if err := s.close(ctx, false); err != nil {
		return writeErr(cmd, err)
	}
	if runErr != nil {
		return writeErr(cmd, runErr)
	}
	return nil
}
