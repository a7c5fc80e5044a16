package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/usecase/notes"
	"github.com/urfave/cli/v3"
)

func newCommand() *cli.Command {
	var (
		cfg      config
		title    string
		body     string
		category string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "title",
			Aliases:     []string{"t"},
			Usage:       "Note title",
			Required:    true,
			Destination: &title,
		},
		&cli.StringFlag{
			Name:        "body",
			Aliases:     []string{"b"},
			Usage:       "Note body text",
			Destination: &body,
		},
		&cli.StringFlag{
			Name:        "category",
			Usage:       "Note category",
			Destination: &category,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "new",
		Usage: "Create a new note",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.load(); err != nil {
				return err
			}
			ctx = setupLogging(ctx, &cfg)

			uc, err := cfg.newNotes(ctx)
			if err != nil {
				return err
			}

			note, err := uc.Insert(ctx, notes.InsertInput{
				Title:    title,
				Body:     body,
				Category: category,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to create note")
			}

			fmt.Fprintf(c.Root().Writer, "Created note %s\n", note.ID)
			return nil
		},
	}
}

func importCommand() *cli.Command {
	var (
		cfg   config
		input string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to JSON file containing notes to import",
			Required:    true,
			Destination: &input,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "import",
		Usage: "Bulk import notes from a JSON file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.load(); err != nil {
				return err
			}
			ctx = setupLogging(ctx, &cfg)

			uc, err := cfg.newNotes(ctx)
			if err != nil {
				return err
			}

			f, err := os.Open(input)
			if err != nil {
				return goerr.Wrap(err, "failed to open import file", goerr.V("path", input))
			}
			defer f.Close()

			saved, err := uc.Import(ctx, f)
			if err != nil {
				return goerr.Wrap(err, "failed to import notes")
			}

			fmt.Fprintf(c.Root().Writer, "Imported %d notes\n", len(saved))
			return nil
		},
	}
}
