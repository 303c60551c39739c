package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"kanban-cli/internal/config"
	"kanban-cli/internal/format"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string
	Backend    string
	RedisURL   string
	Debug      bool
	// Save forces a final save even when the board's autosave is off.
	Save bool

	cfg config.Config
	log *logrus.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "kanban",
		Short:        "Local kanban board (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board
  kanban

  # Scriptable commands
  kanban columns add --title Doing
  kanban tasks add <column-id> "Write the release notes"
  kanban history --format text
  kanban undo 3
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd.ErrOrStderr())
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("KANBAN_DIR", ""), "Path to the .kanban board directory (default: nearest .kanban above the working directory)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("KANBAN_FORMAT", "json"), "Output format (json|text)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Storage backend (sqlite|redis); overrides config")
	cmd.PersistentFlags().StringVar(&app.RedisURL, "redis-url", envOr("KANBAN_REDIS_URL", ""), "Redis URL for the redis backend; overrides config")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", envOr("KANBAN_DEBUG", "") != "", "Debug logging to stderr")
	cmd.PersistentFlags().BoolVar(&app.Save, "save", false, "Save the board after the command even if autosave is off")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newTitleCmd(app))
	cmd.AddCommand(newColumnsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newUndoCmd(app))
	cmd.AddCommand(newAutosaveCmd(app))
	cmd.AddCommand(newSaveToFileCmd(app))
	cmd.AddCommand(newSaveCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

// setup loads config, applies flag overrides and configures logging.
func (app *App) setup(stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return writeErrTo(stderr, err)
	}
	if strings.TrimSpace(app.Backend) != "" {
		cfg.Store.Backend = strings.ToLower(strings.TrimSpace(app.Backend))
	}
	if strings.TrimSpace(app.RedisURL) != "" {
		cfg.Store.RedisURL = strings.TrimSpace(app.RedisURL)
	}
	if app.Debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return writeErrTo(stderr, err)
	}
	app.cfg = cfg

	level, _ := logrus.ParseLevel(cfg.LogLevel)
	app.log = logrus.New()
	app.log.SetOutput(stderr)
	app.log.SetLevel(level)
	app.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// envelope is the JSON shape of every command's output. In text mode only
// Data is rendered.
type envelope struct {
	Data any            `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

func (e envelope) WriteText(w io.Writer) error {
	return format.WriteText(w, e.Data)
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	return writeErrTo(cmd.ErrOrStderr(), err)
}

func writeErrTo(w io.Writer, err error) error {
	fmt.Fprintln(w, err.Error())
	return err
}
