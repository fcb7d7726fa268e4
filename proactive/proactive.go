package proactive

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adhocore/gronx"
)

type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

type Kind string

const (
	KindKeyword Kind = "keyword"
	KindPattern Kind = "pattern"
	KindCron    Kind = "cron"
)

// Trigger fires an outbound notification when its expression matches agent
// input (keyword/pattern) or the clock (cron).
type Trigger struct {
	Name     string
	Kind     Kind
	Expr     string
	Priority Priority
	Cooldown time.Duration
	Message  string

	re *regexp.Regexp
}

// Notifier is satisfied by notify.Dispatcher.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}

type Engine struct {
	mu        sync.Mutex
	triggers  []*Trigger
	lastFired map[string]time.Time

	notifier Notifier
	logger   *slog.Logger
	gron     *gronx.Gronx
	now      func() time.Time
}

func NewEngine(notifier Notifier, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		lastFired: make(map[string]time.Time),
		notifier:  notifier,
		logger:    logger,
		gron:      gronx.New(),
		now:       time.Now,
	}
}

func (e *Engine) Register(t Trigger) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return fmt.Errorf("proactive: trigger needs a name")
	}
	if t.Priority == 0 {
		t.Priority = PriorityMedium
	}
	switch t.Kind {
	case KindKeyword:
		if strings.TrimSpace(t.Expr) == "" {
			return fmt.Errorf("proactive: trigger %s: empty keyword", t.Name)
		}
	case KindPattern:
		re, err := regexp.Compile("(?i)" + t.Expr)
		if err != nil {
			return fmt.Errorf("proactive: trigger %s: %w", t.Name, err)
		}
		t.re = re
	case KindCron:
		if !e.gron.IsValid(t.Expr) {
			return fmt.Errorf("proactive: trigger %s: invalid cron expr %q", t.Name, t.Expr)
		}
	default:
		return fmt.Errorf("proactive: trigger %s: unknown kind %q", t.Name, t.Kind)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.triggers = append(e.triggers, &t)
	return nil
}

// Analyze returns the text triggers matching input, highest priority first,
// and marks them fired. Triggers inside their cooldown window are skipped.
func (e *Engine) Analyze(input string) []Trigger {
	lowered := strings.ToLower(input)
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	var matched []Trigger
	for _, t := range e.triggers {
		switch t.Kind {
		case KindKeyword:
			if !strings.Contains(lowered, strings.ToLower(t.Expr)) {
				continue
			}
		case KindPattern:
			if !t.re.MatchString(input) {
				continue
			}
		default:
			continue
		}
		if e.inCooldownLocked(t, now) {
			continue
		}
		e.lastFired[t.Name] = now
		matched = append(matched, *t)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority > matched[j].Priority
		}
		return matched[i].Name < matched[j].Name
	})
	return matched
}

// Fire dispatches a matched trigger through the notifier.
func (e *Engine) Fire(ctx context.Context, t Trigger) {
	body := t.Message
	if body == "" {
		body = fmt.Sprintf("trigger %s fired", t.Name)
	}
	e.logger.Info("proactive_trigger_fired", "trigger", t.Name, "kind", string(t.Kind), "priority", t.Priority.String())
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Send(ctx, "ev-ai: "+t.Name, body); err != nil {
		e.logger.Warn("proactive_notify_failed", "trigger", t.Name, "error", err.Error())
	}
}

// AnalyzeAndFire is the per-execution hook the agent calls after responding.
func (e *Engine) AnalyzeAndFire(ctx context.Context, input string) {
	for _, t := range e.Analyze(input) {
		e.Fire(ctx, t)
	}
}

// Run evaluates cron triggers once a minute until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, t := range e.dueCronTriggers() {
				e.Fire(ctx, t)
			}
		}
	}
}

func (e *Engine) dueCronTriggers() []Trigger {
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	var due []Trigger
	for _, t := range e.triggers {
		if t.Kind != KindCron {
			continue
		}
		ok, err := e.gron.IsDue(t.Expr, now)
		if err != nil || !ok {
			continue
		}
		if e.inCooldownLocked(t, now) {
			continue
		}
		e.lastFired[t.Name] = now
		due = append(due, *t)
	}
	return due
}

func (e *Engine) inCooldownLocked(t *Trigger, now time.Time) bool {
	if t.Cooldown <= 0 {
		return false
	}
	last, ok := e.lastFired[t.Name]
	return ok && now.Sub(last) < t.Cooldown
}

// RegisterDefaults installs the stock trigger set.
func RegisterDefaults(e *Engine) {
	_ = e.Register(Trigger{
		Name:     "error_watch",
		Kind:     KindKeyword,
		Expr:     "error",
		Priority: PriorityHigh,
		Cooldown: 10 * time.Minute,
		Message:  "An execution mentioned an error. Check the interaction journal.",
	})
	_ = e.Register(Trigger{
		Name:     "deadline_watch",
		Kind:     KindPattern,
		Expr:     `\b(deadline|due (today|tomorrow))\b`,
		Priority: PriorityCritical,
		Cooldown: time.Hour,
		Message:  "A deadline was mentioned. Consider following up.",
	})
	_ = e.Register(Trigger{
		Name:     "daily_summary",
		Kind:     KindCron,
		Expr:     "0 9 * * *",
		Priority: PriorityLow,
		Message:  "Daily check-in: review yesterday's interactions.",
	})
}
