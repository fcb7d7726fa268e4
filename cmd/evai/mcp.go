package main

import (
	"os"

	"github.com/Evansxm/ev-ai-core/internal/logutil"
	"github.com/Evansxm/ev-ai-core/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the agent over MCP on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			// Logs go to stderr, keeping stdout clean for the protocol stream.

			a, err := agentFromViper(logger)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(a, a.Name, a.Version, logger)
			return srv.Serve(cmd.Context(), os.Stdin, os.Stdout)
		},
	}
}
