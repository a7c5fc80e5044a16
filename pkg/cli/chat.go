package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, agentFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive conversation with your notes",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.load(); err != nil {
				return err
			}
			ctx = setupLogging(ctx, &cfg)

			ag, sessions, err := cfg.newAgent(ctx)
			if err != nil {
				return err
			}
			defer sessions.DestroyAll()

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			fmt.Fprintln(c.Root().Writer, "Chat started. Type 'exit' to quit; /history, /clear, /usage for session commands.")

			for {
				line, err := rl.Readline()
				if err == readline.ErrInterrupt {
					continue
				}
				if err == io.EOF {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				query := strings.TrimSpace(line)
				if query == "" {
					continue
				}
				if query == "exit" || query == "quit" {
					break
				}

				// /usage is a CLI concern; /history and /clear are handled
				// by the agent itself
				if query == "/usage" {
					usage, err := sessions.GetUsage(ag.SessionID())
					if err != nil {
						fmt.Fprintln(c.Root().Writer, "No session usage recorded yet.")
						continue
					}
					fmt.Fprintf(c.Root().Writer, "Session usage: %d / %d tokens (%.1f%%)\n",
						usage.Usage, usage.Quota, usage.Percent)
					continue
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
					fmt.Fprintf(c.Root().Writer, "⚠ %s\n", resp.Warning)
				} else if sessions.ShouldClear(ag.SessionID(), 0) {
					fmt.Fprintln(c.Root().Writer, "Session is past its clear threshold; /clear frees the conversation budget.")
				}
			}

			fmt.Fprintln(c.Root().Writer, "\nChat session completed")
			return nil
		},
	}
}
