package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/syedhisham/bxtrack/internal/features/mentions"
	"github.com/syedhisham/bxtrack/internal/pkg/validator"
)

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render comment text as HTML and list the mentioned names",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read comment text from `FILE` instead of stdin",
			},
		},
		Action: func(c *cli.Context) error {
			text, err := readText(c)
			if err != nil {
				return err
			}
			if !validator.MaxLength(text, mentions.MaxContentLength) {
				return fmt.Errorf("comment text cannot exceed %d characters", mentions.MaxContentLength)
			}

			out := c.App.Writer
			fmt.Fprintln(out, mentions.Render(text))
			for _, name := range mentions.Names(text) {
				fmt.Fprintf(out, "@%s\n", name)
			}
			return nil
		},
	}
}

// readText takes the positional argument, then --file, then stdin.
func readText(c *cli.Context) (string, error) {
	if c.Args().Present() {
		return strings.Join(c.Args().Slice(), " "), nil
	}

	var r io.Reader = os.Stdin
	if path := c.String("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read comment text: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
