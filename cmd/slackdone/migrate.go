package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gosuda/slackdone/internal/config"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending postgres migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.Store.Driver != config.StoreDriverPostgres {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "store driver %q has no schema; nothing to migrate\n", a.cfg.Store.Driver)
				return err
			}

			version, err := a.migrate(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return err
		},
	}
}
