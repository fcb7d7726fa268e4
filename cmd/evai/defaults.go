package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	// Shared agent defaults (used by serve/whatsapp when flags aren't available).
	viper.SetDefault("agent.name", "ev-ai")

	viper.SetDefault("llm.provider", "ollama")
	viper.SetDefault("llm.endpoint", "http://localhost:11434")
	viper.SetDefault("llm.model", "")

	// Global
	viper.SetDefault("file_state_dir", "~/.ev-ai")
	viper.SetDefault("user_agent", "ev-ai-core/1.0 (+https://github.com/Evansxm/ev-ai-core)")

	// State subdirectories
	viper.SetDefault("memory.dir_name", "memory")
	viper.SetDefault("memory.journal_rotate_max_bytes", int64(5*1024*1024))
	viper.SetDefault("skills.dir_name", "skills")
	viper.SetDefault("audit.dir_name", "audit")
	viper.SetDefault("audit.rotate_max_bytes", int64(5*1024*1024))
	viper.SetDefault("locks.dir_name", "locks")

	// API server
	viper.SetDefault("server.bind", "127.0.0.1:8080")
	viper.SetDefault("server.auth_token", "")
	viper.SetDefault("server.github_webhook_secret", "")
	viper.SetDefault("server.workers", 1)
	viper.SetDefault("server.max_queue", 16)
	viper.SetDefault("server.task_timeout", 120*time.Second)
	viper.SetDefault("server.tcp.enabled", false)
	viper.SetDefault("server.tcp.bind", "127.0.0.1:9999")

	// WhatsApp bridge
	viper.SetDefault("whatsapp.bind", "0.0.0.0:5000")
	viper.SetDefault("whatsapp.public_url", "")
	viper.SetDefault("whatsapp.validate_signature", true)
	viper.SetDefault("whatsapp.max_concurrent", 2)
	viper.SetDefault("whatsapp.allowed_numbers", []string{})
	viper.SetDefault("whatsapp.blocked_numbers", []string{})

	// Notifications (unset sink = not wired)
	viper.SetDefault("notify.slack.webhook_url", "")
	viper.SetDefault("notify.discord.webhook_url", "")
	viper.SetDefault("notify.telegram.bot_token", "")
	viper.SetDefault("notify.telegram.chat_id", "")
	viper.SetDefault("notify.webhook.url", "")
	viper.SetDefault("notify.mqtt.broker_url", "")
	viper.SetDefault("notify.mqtt.topic", "ev-ai/notifications")
	viper.SetDefault("notify.mqtt.client_id", "ev-ai")

	// Integrity
	viper.SetDefault("integrity.root", ".")
	viper.SetDefault("integrity.manifest", "INTEGRITY.json")

	// Legacy credential spellings kept for parity with the old deployment.
	_ = viper.BindEnv("whatsapp.account_sid", "EV_AI_WHATSAPP_ACCOUNT_SID", "TWILIO_ACCOUNT_SID")
	_ = viper.BindEnv("whatsapp.auth_token", "EV_AI_WHATSAPP_AUTH_TOKEN", "TWILIO_AUTH_TOKEN")
	_ = viper.BindEnv("whatsapp.from_number", "EV_AI_WHATSAPP_FROM_NUMBER", "TWILIO_PHONE_NUMBER")
}
