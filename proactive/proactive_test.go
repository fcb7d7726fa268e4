package proactive

import (
	"context"
	"sync"
	"testing"
	"time"
)

type captureNotifier struct {
	mu    sync.Mutex
	sends []string
}

func (n *captureNotifier) Send(_ context.Context, subject, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends = append(n.sends, subject)
	return nil
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	e := NewEngine(nil, nil)
	cases := []struct {
		name    string
		trigger Trigger
		wantErr bool
	}{
		{"keyword_ok", Trigger{Name: "k", Kind: KindKeyword, Expr: "deploy"}, false},
		{"keyword_empty", Trigger{Name: "k2", Kind: KindKeyword, Expr: " "}, true},
		{"pattern_ok", Trigger{Name: "p", Kind: KindPattern, Expr: `\berr\b`}, false},
		{"pattern_bad", Trigger{Name: "p2", Kind: KindPattern, Expr: "("}, true},
		{"cron_ok", Trigger{Name: "c", Kind: KindCron, Expr: "*/5 * * * *"}, false},
		{"cron_bad", Trigger{Name: "c2", Kind: KindCron, Expr: "not a cron"}, true},
		{"unnamed", Trigger{Kind: KindKeyword, Expr: "x"}, true},
		{"unknown_kind", Trigger{Name: "u", Kind: Kind("nope"), Expr: "x"}, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := e.Register(tc.trigger)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Register() error = %v, wantErr %t", err, tc.wantErr)
			}
		})
	}
}

func TestAnalyzePriorityOrder(t *testing.T) {
	t.Parallel()
	e := NewEngine(nil, nil)
	if err := e.Register(Trigger{Name: "low", Kind: KindKeyword, Expr: "ship", Priority: PriorityLow}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := e.Register(Trigger{Name: "crit", Kind: KindKeyword, Expr: "ship", Priority: PriorityCritical}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got := e.Analyze("please SHIP the release")
	if len(got) != 2 {
		t.Fatalf("Analyze() matched %d, want 2", len(got))
	}
	if got[0].Name != "crit" || got[1].Name != "low" {
		t.Fatalf("Analyze() order = [%s, %s]", got[0].Name, got[1].Name)
	}
}

func TestAnalyzeCooldown(t *testing.T) {
	t.Parallel()
	e := NewEngine(nil, nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return base }

	if err := e.Register(Trigger{Name: "cd", Kind: KindKeyword, Expr: "alert", Cooldown: time.Minute}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if got := e.Analyze("alert now"); len(got) != 1 {
		t.Fatalf("first Analyze() matched %d, want 1", len(got))
	}
	if got := e.Analyze("alert again"); len(got) != 0 {
		t.Fatalf("cooldown Analyze() matched %d, want 0", len(got))
	}

	base = base.Add(2 * time.Minute)
	if got := e.Analyze("alert later"); len(got) != 1 {
		t.Fatalf("post-cooldown Analyze() matched %d, want 1", len(got))
	}
}

func TestAnalyzePattern(t *testing.T) {
	t.Parallel()
	e := NewEngine(nil, nil)
	if err := e.Register(Trigger{Name: "pat", Kind: KindPattern, Expr: `due (today|tomorrow)`}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if got := e.Analyze("report is DUE TOMORROW"); len(got) != 1 {
		t.Fatalf("Analyze() matched %d, want 1", len(got))
	}
	if got := e.Analyze("overdue library book"); len(got) != 0 {
		t.Fatalf("Analyze() matched %d, want 0", len(got))
	}
}

func TestAnalyzeAndFireNotifies(t *testing.T) {
	t.Parallel()
	n := &captureNotifier{}
	e := NewEngine(n, nil)
	if err := e.Register(Trigger{Name: "kw", Kind: KindKeyword, Expr: "panic", Message: "look"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	e.AnalyzeAndFire(context.Background(), "goroutine panic in worker")

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sends) != 1 || n.sends[0] != "ev-ai: kw" {
		t.Fatalf("notifier sends = %v", n.sends)
	}
}

func TestDueCronTriggers(t *testing.T) {
	t.Parallel()
	e := NewEngine(nil, nil)
	e.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 10, 0, time.UTC) }
	if err := e.Register(Trigger{Name: "daily", Kind: KindCron, Expr: "0 9 * * *"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := e.Register(Trigger{Name: "midnight", Kind: KindCron, Expr: "0 0 * * *"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	due := e.dueCronTriggers()
	if len(due) != 1 || due[0].Name != "daily" {
		t.Fatalf("dueCronTriggers() = %+v, want only daily", due)
	}
}

func TestRegisterDefaults(t *testing.T) {
	t.Parallel()
	e := NewEngine(nil, nil)
	RegisterDefaults(e)
	if got := e.Analyze("an error occurred"); len(got) != 1 || got[0].Name != "error_watch" {
		t.Fatalf("Analyze(error) = %+v", got)
	}
}
