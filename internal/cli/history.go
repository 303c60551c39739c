package cli

import (
	"fmt"
	"io"
	"strconv"

	"kanban-cli/internal/boardstate"
	"kanban-cli/internal/format"
	"kanban-cli/internal/model"

	"github.com/spf13/cobra"
)

// historyItem is the listing shape of a history entry; snapshots are only
// included on request since they repeat the whole board.
type historyItem struct {
	Index    int              `json:"index"`
	Change   model.ChangeKind `json:"change"`
	Details  string           `json:"details"`
	Snapshot *model.Board     `json:"data,omitempty"`
}

type historyList []historyItem

func (h historyList) WriteText(w io.Writer) error {
	entries := make([]model.HistoryEntry, 0, len(h))
	for _, it := range h {
		entries = append(entries, model.HistoryEntry{Change: it.Change, Details: it.Details})
	}
	return format.WriteText(w, entries)
}

func newHistoryCmd(app *App) *cobra.Command {
	var withSnapshots bool
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded changes (oldest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = st.Close() }()
			entries, err := st.LoadHistory(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}

			start := 0
			if limit > 0 && len(entries) > limit {
				start = len(entries) - limit
			}
			out := historyList{}
			for i := start; i < len(entries); i++ {
				it := historyItem{Index: i, Change: entries[i].Change, Details: entries[i].Details}
				if withSnapshots {
					snap := entries[i].Snapshot
					it.Snapshot = &snap
				}
				out = append(out, it)
			}
			return writeOut(cmd, app, envelope{Data: out, Meta: map[string]any{"total": len(entries)}})
		},
	}
	cmd.Flags().BoolVar(&withSnapshots, "snapshots", false, "Include the board snapshot of each entry")
	cmd.Flags().IntVar(&limit, "limit", 0, "Only the most recent N entries (0 = all)")
	return cmd
}

func newUndoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo <index>",
		Short: "Restore the board to a history entry (the undo is recorded too)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return writeErr(cmd, fmt.Errorf("invalid history index %q", args[0]))
			}
			return runMutation(cmd, app, false, func(st *boardstate.State) (map[string]any, error) {
				if !st.UndoChange(idx) {
					return nil, errOutOfRange("history index", idx, st.Len()-1)
				}
				return map[string]any{"restored": idx}, nil
			})
		},
	}
	return cmd
}
