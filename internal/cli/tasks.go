package cli

import (
	"strings"

	"kanban-cli/internal/boardstate"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksRemoveCmd(app))
	cmd.AddCommand(newTasksEditCmd(app))
	cmd.AddCommand(newTasksMoveCmd(app))
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <task>",
		Short: "Print a task with its column and position",
		Args:  cobra.ExactArgs(1),
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
			col, idx, ok := taskLookup(b, args[0])
			if !ok {
				return writeErr(cmd, errNotFound("task", args[0]))
			}
			return writeOut(cmd, app, envelope{
				Data: col.Tasks[idx],
				Meta: map[string]any{"column": col.ID, "columnTitle": col.Title, "index": idx},
			})
		},
	}
	return cmd
}

func newTasksAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <column> [text...]",
		Short: "Add a task at the top of a column",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			return runMutation(cmd, app, false, func(st *boardstate.State) (map[string]any, error) {
				col, ok := columnLookup(st.Current(), args[0])
				if !ok {
					return nil, errNotFound("column", args[0])
				}
				id, _ := st.AddTask(col.ID)
				if text != "" {
					st.ChangeTaskText(col.ID, id, text)
				}
				return map[string]any{"id": id, "column": col.ID}, nil
			})
		},
	}
	return cmd
}

func newTasksRemoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <task>",
		Aliases: []string{"remove"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, false, func(st *boardstate.State) (map[string]any, error) {
				col, _, ok := taskLookup(st.Current(), args[0])
				if !ok {
					return nil, errNotFound("task", args[0])
				}
				st.RemoveTask(col.ID, args[0])
				return map[string]any{"id": args[0], "column": col.ID}, nil
			})
		},
	}
	return cmd
}

func newTasksEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <task> <text...>",
		Short: "Replace a task's text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			return runMutation(cmd, app, false, func(st *boardstate.State) (map[string]any, error) {
				col, _, ok := taskLookup(st.Current(), args[0])
				if !ok {
					return nil, errNotFound("task", args[0])
				}
				return map[string]any{"id": args[0], "changed": st.ChangeTaskText(col.ID, args[0], text)}, nil
			})
		},
	}
	return cmd
}

func newTasksMoveCmd(app *App) *cobra.Command {
	var to string
	var index int

	cmd := &cobra.Command{
		Use:   "move <task>",
		Short: "Move a task within or across columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, false, func(st *boardstate.State) (map[string]any, error) {
				b := st.Current()
				src, srcIdx, ok := taskLookup(b, args[0])
				if !ok {
					return nil, errNotFound("task", args[0])
				}
				dst := src
				if to != "" {
					if dst, ok = columnLookup(b, to); !ok {
						return nil, errNotFound("column", to)
					}
				}
				maxIdx := len(dst.Tasks)
				if dst.ID == src.ID {
					maxIdx--
				}
				if index < 0 || index > maxIdx {
					return nil, errOutOfRange("task index", index, maxIdx)
				}
				res := boardstate.DropResult{
					Source:      boardstate.Location{ColumnID: src.ID, Index: srcIdx},
					Destination: &boardstate.Location{ColumnID: dst.ID, Index: index},
				}
				return map[string]any{"id": args[0], "column": dst.ID, "changed": st.DragTask(res)}, nil
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Destination column (default: the task's column)")
	cmd.Flags().IntVar(&index, "index", 0, "Zero-based position in the destination column")
	return cmd
}
