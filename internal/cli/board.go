package cli

import (
	"fmt"
	"strings"

	"kanban-cli/internal/boardstate"
	"kanban-cli/internal/store"

	"github.com/spf13/cobra"
)

// runMutation opens a session, applies fn, persists, and prints the resulting
// board with fn's metadata.
func runMutation(cmd *cobra.Command, app *App, forceSave bool, fn func(st *boardstate.State) (map[string]any, error)) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	meta, fnErr := fn(s.state)
	closeErr := s.close(ctx, forceSave)
	if fnErr != nil {
		return writeErr(cmd, fnErr)
	}
	if closeErr != nil {
		return writeErr(cmd, closeErr)
	}
	return writeOut(cmd, app, envelope{Data: s.state.Current(), Meta: meta})
}

func newInitCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the .kanban board directory and an initial board",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := resolveDir(app); err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.store.Ensure(); err != nil {
				_ = s.close(ctx, false)
				return writeErr(cmd, err)
			}
			created := !s.found
			if err := s.close(ctx, created); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{
				Data: map[string]any{
					"dir":       app.Dir,
					"backend":   app.cfg.Store.Backend,
					"boardFile": s.store.File.Path,
					"created":   created,
				},
			})
		},
	}
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = st.Close() }()
			b, _, err := st.Load(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: b})
		},
	}
	return cmd
}

func newTitleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "title <title>",
		Short: "Set the board title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, false, func(st *boardstate.State) (map[string]any, error) {
				return map[string]any{"changed": st.ChangeBoardTitle(args[0])}, nil
			})
		},
	}
	return cmd
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on|off, got %q", s)
	}
}

func newAutosaveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autosave <on|off>",
		Short: "Save the board after every change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseOnOff(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			// The setting itself is always persisted.
			return runMutation(cmd, app, true, func(st *boardstate.State) (map[string]any, error) {
				st.ChangeAutosave(on)
				return nil, nil
			})
		},
	}
	return cmd
}

func newSaveToFileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save-to-file <on|off>",
		Short: "Also write the board as JSON next to the .kanban directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseOnOff(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return runMutation(cmd, app, true, func(st *boardstate.State) (map[string]any, error) {
				st.ChangeSaveToFile(on)
				return nil, nil
			})
		},
	}
	return cmd
}

func newSaveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the board now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, true, func(st *boardstate.State) (map[string]any, error) {
				return nil, nil
			})
		},
	}
	return cmd
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveDir(app); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: map[string]any{
				"dir":              app.Dir,
				"sqlitePath":       store.SQLitePath(app.Dir),
				"taskTextDebounce": app.cfg.TaskTextDebounce.Std().String(),
				"titleDebounce":    app.cfg.TitleDebounce.Std().String(),
				"logLevel":         app.cfg.LogLevel,
				"backend":          app.cfg.Store.Backend,
				"boardFile":        app.cfg.Store.BoardFile,
			}})
		},
	}
	return cmd
}
