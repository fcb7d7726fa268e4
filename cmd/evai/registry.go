package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Evansxm/ev-ai-core/agent"
	"github.com/Evansxm/ev-ai-core/internal/statepaths"
	"github.com/Evansxm/ev-ai-core/memory"
	"github.com/Evansxm/ev-ai-core/notify"
	"github.com/Evansxm/ev-ai-core/proactive"
	"github.com/Evansxm/ev-ai-core/prompts"
	"github.com/Evansxm/ev-ai-core/providers/ollama"
	"github.com/Evansxm/ev-ai-core/skills"
	"github.com/Evansxm/ev-ai-core/tools"
	"github.com/Evansxm/ev-ai-core/tools/builtin"
	"github.com/spf13/viper"
)

func registryFromViper(store *memory.Store) *tools.Registry {
	r := tools.NewRegistry()

	viper.SetDefault("tools.base_dirs", []string{})

	viper.SetDefault("tools.read_file.max_bytes", int64(256*1024))
	viper.SetDefault("tools.read_file.deny_paths", []string{"config.yaml"})

	viper.SetDefault("tools.write_file.enabled", true)
	viper.SetDefault("tools.write_file.max_bytes", int64(512*1024))
	viper.SetDefault("tools.write_file.deny_paths", []string{"config.yaml"})

	viper.SetDefault("tools.shell_exec.enabled", false)
	viper.SetDefault("tools.shell_exec.timeout", 30*time.Second)
	viper.SetDefault("tools.shell_exec.max_output_bytes", 256*1024)

	viper.SetDefault("tools.http_request.enabled", true)
	viper.SetDefault("tools.http_request.timeout", 30*time.Second)
	viper.SetDefault("tools.http_request.max_bytes", int64(512*1024))

	viper.SetDefault("tools.web_search.enabled", true)
	viper.SetDefault("tools.web_search.timeout", 20*time.Second)
	viper.SetDefault("tools.web_search.max_results", 5)
	viper.SetDefault("tools.web_search.base_url", "https://duckduckgo.com/html/")

	baseDirs := viper.GetStringSlice("tools.base_dirs")
	userAgent := strings.TrimSpace(viper.GetString("user_agent"))

	r.Register(builtin.NewReadFileTool(
		viper.GetInt64("tools.read_file.max_bytes"),
		viper.GetStringSlice("tools.read_file.deny_paths"),
		baseDirs...,
	))
	r.Register(builtin.NewWriteFileTool(
		viper.GetBool("tools.write_file.enabled"),
		viper.GetInt64("tools.write_file.max_bytes"),
		viper.GetStringSlice("tools.write_file.deny_paths"),
		baseDirs...,
	))
	r.Register(builtin.NewListDirTool(baseDirs...))
	r.Register(builtin.NewFindFilesTool(baseDirs...))
	r.Register(builtin.NewShellExecTool(
		viper.GetBool("tools.shell_exec.enabled"),
		viper.GetDuration("tools.shell_exec.timeout"),
		viper.GetInt("tools.shell_exec.max_output_bytes"),
		baseDirs...,
	))
	r.Register(builtin.NewHTTPRequestTool(
		viper.GetBool("tools.http_request.enabled"),
		viper.GetDuration("tools.http_request.timeout"),
		viper.GetInt64("tools.http_request.max_bytes"),
		userAgent,
	))
	r.Register(builtin.NewWebSearchTool(
		viper.GetBool("tools.web_search.enabled"),
		viper.GetString("tools.web_search.base_url"),
		viper.GetDuration("tools.web_search.timeout"),
		viper.GetInt("tools.web_search.max_results"),
		userAgent,
	))

	r.Register(&builtin.HashDataTool{})
	r.Register(&builtin.HashFileTool{BaseDirs: baseDirs})
	r.Register(&builtin.Base64EncodeTool{})
	r.Register(&builtin.Base64DecodeTool{})
	r.Register(&builtin.GenerateTokenTool{})
	r.Register(&builtin.GeneratePasswordTool{})
	r.Register(&builtin.TextStatsTool{})
	r.Register(&builtin.ExtractURLsTool{})
	r.Register(&builtin.ExtractEmailsTool{})

	if store != nil {
		r.Register(&builtin.MemoryStoreTool{Store: store})
		r.Register(&builtin.MemoryRecallTool{Store: store})
	}

	return r
}

func notifierFromViper(logger *slog.Logger) *notify.Dispatcher {
	var sinks []notify.Notifier
	if url := strings.TrimSpace(viper.GetString("notify.slack.webhook_url")); url != "" {
		sinks = append(sinks, notify.NewSlack(url))
	}
	if url := strings.TrimSpace(viper.GetString("notify.discord.webhook_url")); url != "" {
		sinks = append(sinks, notify.NewDiscord(url))
	}
	token := strings.TrimSpace(viper.GetString("notify.telegram.bot_token"))
	chatID := strings.TrimSpace(viper.GetString("notify.telegram.chat_id"))
	if token != "" && chatID != "" {
		sinks = append(sinks, notify.NewTelegram(token, chatID))
	}
	if url := strings.TrimSpace(viper.GetString("notify.webhook.url")); url != "" {
		sinks = append(sinks, notify.NewWebhook(url))
	}
	if broker := strings.TrimSpace(viper.GetString("notify.mqtt.broker_url")); broker != "" {
		sinks = append(sinks, notify.NewMQTT(
			broker,
			viper.GetString("notify.mqtt.topic"),
			viper.GetString("notify.mqtt.client_id"),
		))
	}
	return notify.NewDispatcher(logger, sinks...)
}

func agentFromViper(logger *slog.Logger) (*agent.Agent, error) {
	store, err := memory.NewStore(statepaths.MemoryDir(), statepaths.LocksDir())
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}
	journal, err := memory.NewJournal(statepaths.MemoryDir(), viper.GetInt64("memory.journal_rotate_max_bytes"))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	reg := registryFromViper(store)

	sk := skills.NewRegistry()
	skills.RegisterBuiltins(sk)
	if err := skills.LoadPacks(sk, statepaths.SkillsDir(), logger); err != nil {
		logger.Warn("skill_packs_load_failed", "dir", statepaths.SkillsDir(), "err", err)
	}

	pr := prompts.NewRegistry()
	prompts.RegisterDefaults(pr)

	engine := proactive.NewEngine(notifierFromViper(logger), logger)
	proactive.RegisterDefaults(engine)

	a := agent.New(viper.GetString("agent.name"), version)
	a.Memory = store
	a.Journal = journal
	a.Tools = reg
	a.Skills = sk
	a.Prompts = pr
	a.Proactive = engine
	a.Logger = logger
	// Skills run through the shell tool's Run path, which applies the
	// same limits but is not gated on tools.shell_exec.enabled.
	a.Runner = builtin.NewShellExecTool(
		viper.GetBool("tools.shell_exec.enabled"),
		viper.GetDuration("tools.shell_exec.timeout"),
		viper.GetInt("tools.shell_exec.max_output_bytes"),
	)

	if model := strings.TrimSpace(viper.GetString("llm.model")); model != "" {
		switch provider := strings.TrimSpace(viper.GetString("llm.provider")); provider {
		case "", "ollama":
			a.LLM = ollama.New(viper.GetString("llm.endpoint"))
			a.Model = model
		default:
			return nil, fmt.Errorf("unsupported llm.provider %q (only \"ollama\" is built in)", provider)
		}
	}

	return a, nil
}
