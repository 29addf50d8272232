package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/syedhisham/bxtrack/internal/database"
	"github.com/syedhisham/bxtrack/internal/features/auth"
	"github.com/syedhisham/bxtrack/internal/pkg/cloudinary"
)

// checkCommand verifies the external services the server depends on.
// MongoDB is required; Google login and avatar uploads are optional.
func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Verify MongoDB, Google login and Cloudinary configuration",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			out := c.App.Writer

			fmt.Fprintln(out, "Testing MongoDB connection...")
			db, err := database.Connect(c.Context, cfg.MongoURI, cfg.MongoDB)
			if err != nil {
				return err
			}
			defer db.Disconnect(c.Context)
			if err := db.HealthCheck(c.Context); err != nil {
				return err
			}
			fmt.Fprintf(out, "  ok: %s\n", cfg.MongoDB)

			fmt.Fprintln(out, "Testing Google login...")
			google, err := auth.NewGoogleVerifier(c.Context, cfg)
			switch {
			case err != nil:
				return err
			case google == nil:
				fmt.Fprintln(out, "  disabled")
			default:
				fmt.Fprintln(out, "  ok")
			}

			fmt.Fprintln(out, "Testing Cloudinary configuration...")
			if _, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, ""); err != nil {
				fmt.Fprintf(out, "  disabled: %s\n", err)
			} else {
				fmt.Fprintf(out, "  ok: %s\n", cfg.CloudinaryCloudName)
			}
			return nil
		},
	}
}
