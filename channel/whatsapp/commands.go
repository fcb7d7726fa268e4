package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Evansxm/ev-ai-core/agent"
	"github.com/Evansxm/ev-ai-core/internal/auditlog"
	"github.com/Evansxm/ev-ai-core/memory"
)

// runOutputMax caps run output so replies fit inside one relay message.
const runOutputMax = 1500

const helpText = "Commands:\n" +
	"status - agent status report\n" +
	"memory <key> - recall a stored value\n" +
	"run <command> - execute through the agent\n" +
	"help - this text"

// Router maps inbound message bodies to agent operations.
type Router struct {
	Agent *agent.Agent
	Audit *auditlog.JSONLSink
}

// Handle processes one inbound body and returns the reply text.
func (r *Router) Handle(ctx context.Context, sender, body string) string {
	verb, rest := splitCommand(body)

	switch verb {
	case "status":
		return r.Agent.Status(ctx)

	case "memory":
		key := strings.TrimSpace(rest)
		if key == "" {
			return "usage: memory <key>"
		}
		rec, err := r.Agent.Memory.Recall(ctx, key)
		if errors.Is(err, memory.ErrNotFound) {
			return fmt.Sprintf("no memory for %q", key)
		}
		if err != nil {
			return "error: " + err.Error()
		}
		return rec.Value

	case "run":
		command := strings.TrimSpace(rest)
		if command == "" {
			return "usage: run <command>"
		}
		return r.run(ctx, sender, command)

	case "help":
		return helpText

	default:
		return fmt.Sprintf("Unknown command %q. Send \"help\" for the command list.", verb)
	}
}

func (r *Router) run(ctx context.Context, sender, command string) string {
	out, err := r.Agent.Execute(ctx, command, "whatsapp")
	status := "ok"
	errText := ""
	if err != nil {
		status = "error"
		errText = err.Error()
		out = "error: " + err.Error()
	}
	r.audit(ctx, sender, command, status, errText)
	return truncateRunes(out, runOutputMax)
}

func (r *Router) audit(ctx context.Context, sender, command, status, errText string) {
	if r.Audit == nil {
		return
	}
	e := auditlog.Event{
		Timestamp: time.Now().UTC(),
		Channel:   "whatsapp",
		Sender:    sender,
		Command:   command,
		Status:    status,
		Error:     errText,
	}
	if err := r.Audit.Emit(ctx, e); err != nil {
		r.Agent.Logger.Warn("whatsapp_audit_write_failed", "error", err)
	}
}

func splitCommand(body string) (string, string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ""
	}
	i := strings.IndexAny(body, " \t")
	if i < 0 {
		return strings.ToLower(body), ""
	}
	return strings.ToLower(body[:i]), strings.TrimSpace(body[i:])
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
