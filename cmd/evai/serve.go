package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Evansxm/ev-ai-core/internal/logutil"
	"github.com/Evansxm/ev-ai-core/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the agent API server (HTTP, WebSocket, optional TCP)",
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

			cfg := server.Config{
				Bind:                viper.GetString("server.bind"),
				AuthToken:           viper.GetString("server.auth_token"),
				GitHubWebhookSecret: viper.GetString("server.github_webhook_secret"),
				Workers:             viper.GetInt("server.workers"),
				MaxQueue:            viper.GetInt("server.max_queue"),
				TaskTimeout:         viper.GetDuration("server.task_timeout"),
				TCPEnabled:          viper.GetBool("server.tcp.enabled"),
				TCPBind:             viper.GetString("server.tcp.bind"),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(a, cfg, logger)
			return srv.Run(ctx)
		},
	}
	return cmd
}
