package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cardchat/cardchat-go/internal/repository"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down|status]",
		Short: "Apply or inspect database migrations",
		Long: `Run the embedded schema migrations against DATABASE_DSN.

  up      apply all pending migrations (default)
  down    roll back the most recent migration
  status  print the state of every migration`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := repository.MigrateUp
			if len(args) == 1 {
				direction = repository.MigrateCommand(args[0])
			}
			switch direction {
			case repository.MigrateUp, repository.MigrateDown, repository.MigrateStatus:
			default:
				return fmt.Errorf("unknown migrate command %q", args[0])
			}

			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := repository.NewDB(context.Background(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			return repository.Migrate(db, cfg.Database.Driver, direction, log)
		},
	}
}
