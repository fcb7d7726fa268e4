package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Evansxm/ev-ai-core/internal/clifmt"
	"github.com/Evansxm/ev-ai-core/internal/logutil"
	"github.com/spf13/cobra"
)

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		RunE:  runToolsCmd,
	}
	cmd.AddCommand(newToolsRunCmd())
	return cmd
}

func runToolsCmd(cmd *cobra.Command, _ []string) error {
	store, err := openMemoryStore()
	if err != nil {
		return err
	}
	r := registryFromViper(store)

	rows := make([]clifmt.NameDetailRow, 0, len(r.All()))
	for _, tool := range r.All() {
		rows = append(rows, clifmt.NameDetailRow{
			Name:   tool.Name(),
			Detail: strings.TrimSpace(tool.Description()),
		})
	}

	clifmt.PrintNameDetailTable(cmd.OutOrStdout(), clifmt.NameDetailTableOptions{
		Title:     "Tools",
		Rows:      rows,
		EmptyText: "(no tools registered)",
	})
	return nil
}

func newToolsRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <name> [key=value ...]",
		Short: "Execute a single tool directly",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			store, err := openMemoryStore()
			if err != nil {
				return err
			}
			r := registryFromViper(store)

			name := strings.TrimSpace(args[0])
			tool, ok := r.Get(name)
			if !ok {
				return fmt.Errorf("unknown tool %q (see \"evai tools\")", name)
			}

			params := make(map[string]any, len(args)-1)
			for _, arg := range args[1:] {
				key, value, found := strings.Cut(arg, "=")
				if !found || strings.TrimSpace(key) == "" {
					return fmt.Errorf("invalid param %q (expected key=value)", arg)
				}
				params[strings.TrimSpace(key)] = value
			}

			out, err := tool.Execute(cmd.Context(), params)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
