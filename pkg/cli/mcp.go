package cli

import (
	"context"

	"github.com/m-mizutani/kioku/pkg/service/mcp"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

func mcpCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, agentFlags(&cfg)...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the note tools over MCP (stdio)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.load(); err != nil {
				return err
			}
			ctx = setupLogging(ctx, &cfg)

			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			llm, err := cfg.newLLM(ctx)
			if err != nil {
				return err
			}

			executor, err := cfg.newExecutor(ctx, repo, llm)
			if err != nil {
				return err
			}

			return mcp.NewServer(executor, version).Run(ctx)
		},
	}
}
