package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Evansxm/ev-ai-core/internal/logutil"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run \"<input>\"",
		Short: "Run a single agent request and print the response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			a, err := agentFromViper(logger)
			if err != nil {
				return err
			}

			input := strings.TrimSpace(strings.Join(args, " "))
			resp, err := a.Execute(cmd.Context(), input, "cli")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}
