package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/urfave/cli/v3"
)

func showCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)

	return &cli.Command{
		Name:      "show",
		Usage:     "Show a note by ID",
		ArgsUsage: "<note-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			id := model.NoteID(c.Args().First())
			if id == "" {
				return goerr.New("note ID is required")
			}

			if err := cfg.load(); err != nil {
				return err
			}
			ctx = setupLogging(ctx, &cfg)

			uc, err := cfg.newLocalNotes()
			if err != nil {
				return err
			}

			note, err := uc.Show(ctx, id)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "ID:       %s\n", note.ID)
			fmt.Fprintf(c.Root().Writer, "Title:    %s\n", note.Title)
			fmt.Fprintf(c.Root().Writer, "Category: %s\n", note.Category)
			fmt.Fprintf(c.Root().Writer, "Created:  %s\n", note.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(c.Root().Writer, "Updated:  %s\n", note.UpdatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(c.Root().Writer, "\n%s\n", note.Body)
			return nil
		},
	}
}

func removeCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)

	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a note by ID",
		ArgsUsage: "<note-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			id := model.NoteID(c.Args().First())
			if id == "" {
				return goerr.New("note ID is required")
			}

			if err := cfg.load(); err != nil {
				return err
			}
			ctx = setupLogging(ctx, &cfg)

			uc, err := cfg.newLocalNotes()
			if err != nil {
				return err
			}

			if err := uc.Delete(ctx, id); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Deleted note %s\n", id)
			return nil
		},
	}
}
