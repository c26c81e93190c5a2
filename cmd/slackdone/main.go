package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("slackdone failed")
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "slackdone",
		Short: "Kanban boards on top of Slack Lists",
		Long: `slackdone serves a Kanban board API over Slack Lists and offers a
terminal view of the same boards.

Configuration is read from SLACKDONE_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newBoardCmd())
	return root
}
