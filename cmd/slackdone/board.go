package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gosuda/slackdone/internal/board"
	"github.com/gosuda/slackdone/internal/domain"
)

const defaultWatchInterval = 30 * time.Second

var errAmbiguousWorkspace = errors.New("more than one workspace is connected; pass --workspace") //nolint:gochecknoglobals // sentinel error

type boardFlags struct {
	workspace string
	list      string
	asJSON    bool
}

func (f *boardFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.workspace, "workspace", "w", "", "Slack team ID (optional with a single workspace)")
	cmd.Flags().StringVarP(&f.list, "list", "l", "", "Slack list ID")
	_ = cmd.MarkFlagRequired("list")
}

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show and edit a list as a board in the terminal",
	}
	cmd.AddCommand(newBoardShowCmd(), newBoardMoveCmd(), newBoardWatchCmd())
	return cmd
}

func newBoardShowCmd() *cobra.Command {
	var f boardFlags
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the board of a list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, &f, func(ctx context.Context, sess *board.Session) error {
				b, err := sess.Refresh(ctx)
				if err != nil {
					return err
				}
				return printBoard(cmd.OutOrStdout(), b, "", f.asJSON)
			})
		},
	}
	f.bind(cmd)
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the board as JSON")
	return cmd
}

func newBoardMoveCmd() *cobra.Command {
	var f boardFlags
	cmd := &cobra.Command{
		Use:   "move ITEM COLUMN",
		Short: "Move an item to another column",
		Long: `Move an item to another column. COLUMN is a status option value or
label, or "none" for the No Status column.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, &f, func(ctx context.Context, sess *board.Session) error {
				b, err := sess.Refresh(ctx)
				if err != nil {
					return err
				}
				column, ok := resolveColumn(b, args[1])
				if !ok {
					return fmt.Errorf("%w: %q", board.ErrColumnNotFound, args[1])
				}
				if err := sess.Move(ctx, args[0], column); err != nil {
					return err
				}
				return printBoard(cmd.OutOrStdout(), sess.Board(), sess.Notice(), false)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newBoardWatchCmd() *cobra.Command {
	var (
		f        boardFlags
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the board and refresh it periodically",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				return fmt.Errorf("%w: interval must be positive", domain.ErrInvalidInput)
			}
			return withSession(cmd, &f, func(ctx context.Context, sess *board.Session) error {
				out := cmd.OutOrStdout()
				b, err := sess.Refresh(ctx)
				if err != nil {
					return err
				}
				if err := printBoard(out, b, "", false); err != nil {
					return err
				}
				return sess.Watch(ctx, interval, func(b *board.Board) {
					_, _ = fmt.Fprintf(out, "\n%s\n", time.Now().Format(time.Kitchen))
					_ = printBoard(out, b, "", false)
				})
			})
		},
	}
	f.bind(cmd)
	cmd.Flags().DurationVar(&interval, "interval", defaultWatchInterval, "Refresh interval")
	return cmd
}

// withSession opens the app, resolves the workspace token and runs fn with
// a session bound to the requested list.
func withSession(cmd *cobra.Command, f *boardFlags, fn func(context.Context, *board.Session) error) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	ws, err := pickWorkspace(ctx, a.store.Workspaces(), f.workspace)
	if err != nil {
		return err
	}

	sess := board.NewSession(a.boards, ws.ReadToken(), f.list, board.WithLogger(a.logger))
	return fn(ctx, sess)
}

// pickWorkspace returns the workspace with id, or the only connected one when
// id is empty.
func pickWorkspace(ctx context.Context, repo domain.WorkspaceRepository, id string) (*domain.Workspace, error) {
	if id != "" {
		ws, err := repo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("workspace %s: %w", id, err)
		}
		return ws, nil
	}

	all, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	switch len(all) {
	case 0:
		return nil, fmt.Errorf("no workspace connected: %w", domain.ErrNotFound)
	case 1:
		return all[0], nil
	default:
		return nil, errAmbiguousWorkspace
	}
}

// resolveColumn matches arg against column ids, then names, ignoring case.
func resolveColumn(b *board.Board, arg string) (string, bool) {
	if strings.EqualFold(arg, "none") {
		return board.NoStatus, true
	}
	if _, ok := b.ColumnIndex(arg); ok {
		return arg, true
	}
	for _, col := range b.Columns {
		if strings.EqualFold(col.Name, arg) {
			return col.ID, true
		}
	}
	return "", false
}

func printBoard(w io.Writer, b *board.Board, notice string, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}
	_, err := fmt.Fprintln(w, renderBoard(b, notice))
	return err
}
