package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/usecase/notes"
	"github.com/urfave/cli/v3"
)

func searchCommand() *cli.Command {
	var (
		cfg   config
		limit int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of results",
			Value:       5,
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "search",
		Usage:     "Search notes by semantic similarity",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			query := c.Args().First()
			if query == "" {
				return goerr.New("query is required")
			}

			if err := cfg.load(); err != nil {
				return err
			}
			ctx = setupLogging(ctx, &cfg)

			uc, err := cfg.newNotes(ctx)
			if err != nil {
				return err
			}

			results, err := uc.Search(ctx, notes.SearchOptions{
				Query: query,
				Limit: int(limit),
			})
			if err != nil {
				return err
			}

			for _, scored := range results {
				fmt.Fprintf(c.Root().Writer, "%.4f  %s  %s\n",
					scored.Score, scored.Note.ID, scored.Note.Title)
			}
			return nil
		},
	}
}
