package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Evansxm/ev-ai-core/integrity"
	"github.com/Evansxm/ev-ai-core/internal/clifmt"
	"github.com/Evansxm/ev-ai-core/internal/logutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func integrityPaths() (root, manifest string) {
	root = viper.GetString("integrity.root")
	manifest = viper.GetString("integrity.manifest")
	if !filepath.IsAbs(manifest) {
		manifest = filepath.Join(root, manifest)
	}
	return root, manifest
}

func newIntegrityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integrity",
		Short: "Verify, seal and watch the integrity manifest",
	}
	cmd.AddCommand(newIntegrityVerifyCmd())
	cmd.AddCommand(newIntegritySealCmd())
	cmd.AddCommand(newIntegrityWatchCmd())
	return cmd
}

func newIntegrityVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the tree against the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, manifest := integrityPaths()
			report, err := integrity.VerifyFile(root, manifest)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failures := report.Failures()
			if len(failures) == 0 {
				_, _ = fmt.Fprintln(out, clifmt.Success(fmt.Sprintf("integrity ok (%d entries)", len(report.Findings))))
				return nil
			}
			for _, f := range failures {
				_, _ = fmt.Fprintln(out, clifmt.Warn(f.String()))
			}
			return fmt.Errorf("%w: %d finding(s)", integrity.ErrVerifyFailed, len(failures))
		},
	}
}

func newIntegritySealCmd() *cobra.Command {
	var include []string
	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Hash the core trees and write a sealed manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, manifest := integrityPaths()
			m, err := integrity.Seal(root, manifest, include)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), clifmt.Success(fmt.Sprintf("sealed %d files into %s", len(m.Files), manifest)))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&include, "include", nil, "Paths to seal (repeatable; defaults to the core trees).")
	return cmd
}

func newIntegrityWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-verify on file changes until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			root, manifest := integrityPaths()
			return integrity.Watch(ctx, root, manifest, logger)
		},
	}
}
