package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Evansxm/ev-ai-core/internal/clifmt"
	"github.com/Evansxm/ev-ai-core/internal/statepaths"
	"github.com/Evansxm/ev-ai-core/memory"
	"github.com/spf13/cobra"
)

func openMemoryStore() (*memory.Store, error) {
	return memory.NewStore(statepaths.MemoryDir(), statepaths.LocksDir())
}

func newMemoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect and edit the agent memory store",
	}
	cmd.AddCommand(newMemorySetCmd())
	cmd.AddCommand(newMemoryGetCmd())
	cmd.AddCommand(newMemoryDelCmd())
	cmd.AddCommand(newMemorySearchCmd())
	cmd.AddCommand(newMemoryListCmd())
	cmd.AddCommand(newMemoryExportCmd())
	return cmd
}

func newMemorySetCmd() *cobra.Command {
	var category string
	var importance int
	cmd := &cobra.Command{
		Use:   "set <key> <value...>",
		Short: "Store a value",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openMemoryStore()
			if err != nil {
				return err
			}
			rec, err := store.Remember(cmd.Context(), args[0], strings.Join(args[1:], " "), category, importance)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), clifmt.Success(fmt.Sprintf("stored %q (category=%s importance=%d)", rec.Key, rec.Category, rec.Importance)))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Category (default \"general\").")
	cmd.Flags().IntVar(&importance, "importance", 0, "Importance 1-10 (default 5).")
	return cmd
}

func newMemoryGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Recall a value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openMemoryStore()
			if err != nil {
				return err
			}
			rec, err := store.Recall(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rec.Value)
			return nil
		},
	}
}

func newMemoryDelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "del <key>",
		Short: "Forget a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openMemoryStore()
			if err != nil {
				return err
			}
			existed, err := store.Forget(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !existed {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), clifmt.Warn(fmt.Sprintf("no memory for %q", args[0])))
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), clifmt.Success(fmt.Sprintf("forgot %q", args[0])))
			return nil
		},
	}
}

func newMemorySearchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search keys and values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openMemoryStore()
			if err != nil {
				return err
			}
			recs, err := store.Search(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			printMemoryTable(cmd, fmt.Sprintf("Matches for %q", args[0]), recs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (default 10).")
	return cmd
}

func newMemoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all memories",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openMemoryStore()
			if err != nil {
				return err
			}
			recs, err := store.Export(cmd.Context())
			if err != nil {
				return err
			}
			printMemoryTable(cmd, "Memories", recs)
			return nil
		},
	}
}

func newMemoryExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Dump all memories as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openMemoryStore()
			if err != nil {
				return err
			}
			recs, err := store.Export(cmd.Context())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(recs, "", "  ")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func printMemoryTable(cmd *cobra.Command, title string, recs []memory.Record) {
	rows := make([]clifmt.NameDetailRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, clifmt.NameDetailRow{
			Name:   rec.Key,
			Detail: fmt.Sprintf("[%s/%d] %s", rec.Category, rec.Importance, rec.Value),
		})
	}
	clifmt.PrintNameDetailTable(cmd.OutOrStdout(), clifmt.NameDetailTableOptions{
		Title:     title,
		Rows:      rows,
		EmptyText: "(no memories)",
	})
}
