package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/kioku/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "kioku",
		Usage: "On-device retrieval-augmented notes agent",
		Commands: []*cli.Command{
			askCommand(),
			chatCommand(),
			newCommand(),
			importCommand(),
			listCommand(),
			showCommand(),
			searchCommand(),
			removeCommand(),
			categoriesCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}

// setupLogging installs the configured logger into the context
func setupLogging(ctx context.Context, cfg *config) context.Context {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}
