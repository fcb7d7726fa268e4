package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Evansxm/ev-ai-core/channel/whatsapp"
	"github.com/Evansxm/ev-ai-core/internal/auditlog"
	"github.com/Evansxm/ev-ai-core/internal/logutil"
	"github.com/Evansxm/ev-ai-core/internal/statepaths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newWhatsAppCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whatsapp",
		Short: "Run the WhatsApp webhook bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			accountSID := strings.TrimSpace(viper.GetString("whatsapp.account_sid"))
			authToken := strings.TrimSpace(viper.GetString("whatsapp.auth_token"))
			fromNumber := strings.TrimSpace(viper.GetString("whatsapp.from_number"))
			if accountSID == "" {
				return fmt.Errorf("missing whatsapp.account_sid (set via EV_AI_WHATSAPP_ACCOUNT_SID or TWILIO_ACCOUNT_SID)")
			}
			if authToken == "" {
				return fmt.Errorf("missing whatsapp.auth_token (set via EV_AI_WHATSAPP_AUTH_TOKEN or TWILIO_AUTH_TOKEN)")
			}
			if fromNumber == "" {
				return fmt.Errorf("missing whatsapp.from_number (set via EV_AI_WHATSAPP_FROM_NUMBER or TWILIO_PHONE_NUMBER)")
			}

			a, err := agentFromViper(logger)
			if err != nil {
				return err
			}

			audit, err := auditlog.NewJSONLSink(
				filepath.Join(statepaths.AuditDir(), "whatsapp.jsonl"),
				viper.GetInt64("audit.rotate_max_bytes"),
				statepaths.LocksDir(),
			)
			if err != nil {
				return fmt.Errorf("open audit log: %w", err)
			}
			defer func() { _ = audit.Close() }()

			gw := whatsapp.NewGateway(
				viper.GetStringSlice("whatsapp.allowed_numbers"),
				viper.GetStringSlice("whatsapp.blocked_numbers"),
				logger,
			)
			client := whatsapp.NewClient(accountSID, authToken, fromNumber, logger)
			router := &whatsapp.Router{Agent: a, Audit: audit}

			cfg := whatsapp.BridgeConfig{
				Bind:              viper.GetString("whatsapp.bind"),
				PublicURL:         viper.GetString("whatsapp.public_url"),
				ValidateSignature: viper.GetBool("whatsapp.validate_signature"),
				AuthToken:         viper.GetString("server.auth_token"),
				MaxConcurrent:     viper.GetInt("whatsapp.max_concurrent"),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			bridge := whatsapp.NewBridge(gw, client, router, cfg, logger)
			return bridge.Run(ctx)
		},
	}
}
