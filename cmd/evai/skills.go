package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Evansxm/ev-ai-core/internal/clifmt"
	"github.com/Evansxm/ev-ai-core/internal/logutil"
	"github.com/Evansxm/ev-ai-core/internal/statepaths"
	"github.com/Evansxm/ev-ai-core/skills"
	"github.com/spf13/cobra"
)

func newSkillsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skills",
		Short: "List registered skills",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			r := skills.NewRegistry()
			skills.RegisterBuiltins(r)
			if err := skills.LoadPacks(r, statepaths.SkillsDir(), logger); err != nil {
				logger.Warn("skill_packs_load_failed", "dir", statepaths.SkillsDir(), "err", err)
			}

			rows := make([]clifmt.NameDetailRow, 0, r.Len())
			for _, s := range r.All() {
				if s.Hidden {
					continue
				}
				detail := s.Description
				if len(s.Aliases) > 0 {
					detail = fmt.Sprintf("%s (aliases: %s)", detail, strings.Join(s.Aliases, ", "))
				}
				rows = append(rows, clifmt.NameDetailRow{Name: s.Name, Detail: detail})
			}

			clifmt.PrintNameDetailTable(cmd.OutOrStdout(), clifmt.NameDetailTableOptions{
				Title:     "Skills",
				Rows:      rows,
				EmptyText: "(no skills registered)",
			})
			return nil
		},
	}
}
