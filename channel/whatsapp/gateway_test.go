package whatsapp

import (
	"fmt"
	"testing"
)

func TestGateway_Authorize(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		blocked []string
		number  string
		want    bool
	}{
		{name: "empty_allows_all", number: "+15551234567", want: true},
		{name: "allowed", allowed: []string{"+15551234567"}, number: "+15551234567", want: true},
		{name: "not_allowed", allowed: []string{"+15551234567"}, number: "+15559999999", want: false},
		{name: "blocked_wins", allowed: []string{"+15551234567"}, blocked: []string{"+15551234567"}, number: "+15551234567", want: false},
		{name: "blocked_with_open_allowlist", blocked: []string{"+15550000000"}, number: "+15550000000", want: false},
		{name: "prefix_stripped", allowed: []string{"whatsapp:+15551234567"}, number: "+15551234567", want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGateway(tc.allowed, tc.blocked, nil)
			if got := g.Authorize(tc.number); got != tc.want {
				t.Fatalf("Authorize(%q)=%v, want %v", tc.number, got, tc.want)
			}
		})
	}
}

func TestGateway_AllowAndBlock(t *testing.T) {
	g := NewGateway([]string{"+1"}, nil, nil)
	if g.Authorize("+2") {
		t.Fatal("expected +2 unauthorized")
	}
	g.Allow("+2")
	if !g.Authorize("+2") {
		t.Fatal("expected +2 authorized after Allow")
	}
	g.Block("+2")
	if g.Authorize("+2") {
		t.Fatal("expected +2 unauthorized after Block")
	}
}

func TestGateway_HistoryRing(t *testing.T) {
	g := NewGateway(nil, nil, nil)
	for i := 0; i < historyMax+20; i++ {
		g.Record("+1", fmt.Sprintf("msg %d", i), "", DirectionInbound)
	}
	if got := g.HistoryLen(); got != historyMax {
		t.Fatalf("expected history capped at %d, got %d", historyMax, got)
	}

	recent := g.History(1)
	if len(recent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(recent))
	}
	if recent[0].Body != fmt.Sprintf("msg %d", historyMax+19) {
		t.Fatalf("expected newest message last, got %q", recent[0].Body)
	}
}

func TestGateway_RecordBothDirections(t *testing.T) {
	g := NewGateway(nil, nil, nil)
	g.Record("whatsapp:+1", "in", "SM1", DirectionInbound)
	g.Record("+1", "out", "", DirectionOutbound)

	history := g.History(0)
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].From != "+1" {
		t.Fatalf("expected prefix stripped, got %q", history[0].From)
	}
	if history[0].Direction != DirectionInbound || history[1].Direction != DirectionOutbound {
		t.Fatalf("unexpected directions: %v %v", history[0].Direction, history[1].Direction)
	}
	if history[0].ID == "" {
		t.Fatal("expected generated id")
	}
}

func TestParseDirection(t *testing.T) {
	if _, err := ParseDirection("inbound"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := ParseDirection("OUTBOUND"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Fatal("expected error for invalid direction")
	}
}
