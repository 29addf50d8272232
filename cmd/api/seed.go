package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/syedhisham/bxtrack/internal/database"
	"github.com/syedhisham/bxtrack/internal/features/auth"
	"github.com/syedhisham/bxtrack/internal/features/users"
)

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Create or refresh the demo users",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			db, err := database.Connect(c.Context, cfg.MongoURI, cfg.MongoDB)
			if err != nil {
				return err
			}
			defer db.Disconnect(c.Context)

			demo := users.DemoUsers()
			created, err := users.Seed(c.Context, auth.NewRepository(db.Database), demo)
			if err != nil {
				return err
			}

			log.Info().Int("created", created).Int("total", len(demo)).Msg("Seeded demo users")
			fmt.Fprintf(c.App.Writer, "%d users seeded (%d new)\n", len(demo), created)
			return nil
		},
	}
}
