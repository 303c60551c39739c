package cli

import (
	"strconv"

	"kanban-cli/internal/boardstate"
	"kanban-cli/internal/model"

	"github.com/spf13/cobra"
)

func newColumnsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "columns",
		Aliases: []string{"cols"},
		Short:   "Column commands",
	}
	cmd.AddCommand(newColumnsAddCmd(app))
	cmd.AddCommand(newColumnsRemoveCmd(app))
	cmd.AddCommand(newColumnsRenameCmd(app))
	cmd.AddCommand(newColumnsColorCmd(app))
	cmd.AddCommand(newColumnsMoveCmd(app))
	return cmd
}

func newColumnsAddCmd(app *App) *cobra.Command {
	var title string
	var color string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a column",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, false, func(st *boardstate.State) (map[string]any, error) {
				id := st.AddColumn()
				if title != "" {
					st.ChangeColumnTitle(id, title)
				}
				if color != "" {
					st.ChangeColumnColor(id, color)
				}
				return map[string]any{"id": id}, nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Column title (default: Column N)")
	cmd.Flags().StringVar(&color, "color", "", "Column color")
	return cmd
}

func newColumnsRemoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <column>",
		Aliases: []string{"remove"},
		Short:   "Delete a column and its tasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, false, func(st *boardstate.State) (map[string]any, error) {
				col, ok := columnLookup(st.Current(), args[0])
				if !ok {
					return nil, errNotFound("column", args[0])
				}
				st.RemoveColumn(col.ID)
				return map[string]any{"id": col.ID}, nil
			})
		},
	}
	return cmd
}

func newColumnsRenameCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <column> <title>",
		Short: "Rename a column (titles are cut to 18 characters)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, false, func(st *boardstate.State) (map[string]any, error) {
				col, ok := columnLookup(st.Current(), args[0])
				if !ok {
					return nil, errNotFound("column", args[0])
				}
				return map[string]any{"id": col.ID, "changed": st.ChangeColumnTitle(col.ID, args[1])}, nil
			})
		},
	}
	return cmd
}

func newColumnsColorCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "color <column> [color]",
		Short: "Set a column color, or cycle to the next one",
		Long:  "Colors: white, red, orange, yellow, green, blue, purple.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, false, func(st *boardstate.State) (map[string]any, error) {
				col, ok := columnLookup(st.Current(), args[0])
				if !ok {
					return nil, errNotFound("column", args[0])
				}
				color := model.NextColor(col.Color)
				if len(args) == 2 {
					color = args[1]
				}
				return map[string]any{"id": col.ID, "changed": st.ChangeColumnColor(col.ID, color)}, nil
			})
		},
	}
	return cmd
}

func newColumnsMoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <column> <index>",
		Short: "Move a column to a zero-based position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return runMutation(cmd, app, false, func(st *boardstate.State) (map[string]any, error) {
				b := st.Current()
				col, ok := columnLookup(b, args[0])
				if !ok {
					return nil, errNotFound("column", args[0])
				}
				if to < 0 || to >= len(b.Columns) {
					return nil, errOutOfRange("column index", to, len(b.Columns)-1)
				}
				res := boardstate.DropResult{
					Source:      boardstate.Location{Index: b.ColumnIndex(col.ID)},
					Destination: &boardstate.Location{Index: to},
				}
				return map[string]any{"id": col.ID, "changed": st.DragColumn(col.ID, res)}, nil
			})
		},
	}
	return cmd
}
