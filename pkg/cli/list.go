package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/kioku/pkg/usecase/notes"
	"github.com/urfave/cli/v3"
)

func listCommand() *cli.Command {
	var (
		cfg      config
		category string
		offset   int64
		limit    int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "category",
			Usage:       "Only list notes in this category",
			Destination: &category,
		},
		&cli.IntFlag{
			Name:        "offset",
			Usage:       "Offset for pagination",
			Value:       0,
			Destination: &offset,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum number of notes to list",
			Value:       100,
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List notes",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.load(); err != nil {
				return err
			}
			ctx = setupLogging(ctx, &cfg)

			uc, err := cfg.newLocalNotes()
			if err != nil {
				return err
			}

			results, err := uc.List(ctx, notes.ListOptions{
				Category: category,
				Offset:   int(offset),
				Limit:    int(limit),
			})
			if err != nil {
				return err
			}

			for _, note := range results {
				embedded := " "
				if note.HasEmbedding() {
					embedded = "*"
				}
				fmt.Fprintf(c.Root().Writer, "%s %s  [%s] %s\n",
					embedded, note.ID, note.Category, note.Title)
			}
			fmt.Fprintf(c.Root().Writer, "%d notes (* = embedded)\n", len(results))
			return nil
		},
	}
}

func categoriesCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)

	return &cli.Command{
		Name:  "categories",
		Usage: "List note categories in use",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.load(); err != nil {
				return err
			}
			ctx = setupLogging(ctx, &cfg)

			uc, err := cfg.newLocalNotes()
			if err != nil {
				return err
			}

			categories, err := uc.Categories(ctx)
			if err != nil {
				return err
			}

			for _, category := range categories {
				fmt.Fprintln(c.Root().Writer, category)
			}
			return nil
		},
	}
}
