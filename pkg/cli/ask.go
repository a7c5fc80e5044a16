package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func askCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, agentFlags(&cfg)...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask a one-shot question against your notes",
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

			ag, _, err := cfg.newAgent(ctx)
			if err != nil {
				return err
			}

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = " thinking..."
			sp.Start()
			resp, err := ag.Run(ctx, query)
			sp.Stop()
			if err != nil {
				return goerr.Wrap(err, "failed to run agent")
			}

			fmt.Fprintln(c.Root().Writer, resp.Narrative)
			if resp.ExtractedData != "" {
				fmt.Fprintf(c.Root().Writer, "\n  %s\n", resp.ExtractedData)
			}
			if resp.Warning != "" {
				fmt.Fprintf(c.Root().Writer, "\n⚠ %s\n", resp.Warning)
			}
			return nil
		},
	}
}
