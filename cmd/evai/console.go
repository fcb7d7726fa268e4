package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Evansxm/ev-ai-core/internal/logutil"
	"github.com/Evansxm/ev-ai-core/internal/statepaths"
	"github.com/ergochat/readline"
	"github.com/spf13/cobra"
)

func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive agent console",
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

			rl, err := readline.NewFromConfig(&readline.Config{
				Prompt:      "ev> ",
				HistoryFile: statepaths.ConsoleHistoryPath(),
			})
			if err != nil {
				return err
			}
			defer rl.Close()

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s v%s console. Type \"help\" for commands, \"exit\" to leave.\n", a.Name, a.Version)

			for {
				line, err := rl.Readline()
				if err != nil {
					if errors.Is(err, readline.ErrInterrupt) {
						continue
					}
					if errors.Is(err, io.EOF) {
						return nil
					}
					return err
				}

				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				switch strings.ToLower(line) {
				case "exit", "quit":
					return nil
				}

				resp, err := a.Execute(cmd.Context(), line, "console")
				if err != nil {
					_, _ = fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
				_, _ = fmt.Fprintln(out, resp)
			}
		},
	}
}
