// @title BxTrack API
// @version 1.0
// @description Issue tracker with comments, @mentions and notifications
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer <token>"
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const version = "1.0.0"

func newApp() *cli.App {
	return &cli.App{
		Name:    "bxtrack",
		Usage:   "Issue tracker API server",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE` (default ./bxtrack.toml when present)",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			serveCommand(),
			seedCommand(),
			renderCommand(),
			checkCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
