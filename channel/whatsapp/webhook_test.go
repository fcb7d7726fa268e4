package whatsapp

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Evansxm/ev-ai-core/agent"
	"github.com/Evansxm/ev-ai-core/memory"
)

type sendRecorder struct {
	mu    sync.Mutex
	sends []string
}

func (s *sendRecorder) record(to, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends = append(s.sends, to+": "+body)
}

func (s *sendRecorder) wait(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		if len(s.sends) >= n {
			out := append([]string(nil), s.sends...)
			s.mu.Unlock()
			return out
		}
		s.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d sends", n)
	return nil
}

func newTestBridge(t *testing.T, cfg BridgeConfig, allowed []string) (*Bridge, *sendRecorder) {
	t.Helper()
	root := t.TempDir()
	store, err := memory.NewStore(filepath.Join(root, "memory"), filepath.Join(root, "locks"))
	if err != nil {
		t.Fatal(err)
	}

	a := agent.New("ev-ai", "test")
	a.Memory = store

	gw := NewGateway(allowed, nil, nil)
	client := NewClient("AC123", "token", "+15550000000", nil)
	b := NewBridge(gw, client, &Router{Agent: a}, cfg, nil)

	rec := &sendRecorder{}
	b.send = rec.record
	return b, rec
}

func postForm(t *testing.T, h http.Handler, form url.Values, sig string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/whatsapp/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sig != "" {
		req.Header.Set("X-Twilio-Signature", sig)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBridge_Webhook_RepliesViaWorker(t *testing.T) {
	b, rec := newTestBridge(t, BridgeConfig{}, nil)
	h := b.Handler()

	form := url.Values{}
	form.Set("From", "whatsapp:+15551234567")
	form.Set("Body", "help")
	form.Set("MessageSid", "SM1")

	resp := postForm(t, h, form, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("got status %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "text/xml" {
		t.Fatalf("got content type %q", got)
	}
	if !strings.Contains(resp.Body.String(), "<Response/>") {
		t.Fatalf("expected empty TwiML ack, got %q", resp.Body.String())
	}

	sends := rec.wait(t, 1)
	if !strings.Contains(sends[0], "+15551234567") || !strings.Contains(sends[0], "run <command>") {
		t.Fatalf("unexpected send: %q", sends[0])
	}

	if b.Gateway.HistoryLen() != 2 {
		t.Fatalf("expected inbound+outbound recorded, got %d", b.Gateway.HistoryLen())
	}
}

func TestBridge_Webhook_UnauthorizedGetsRefusalTwiML(t *testing.T) {
	b, rec := newTestBridge(t, BridgeConfig{}, []string{"+19990000000"})
	h := b.Handler()

	form := url.Values{}
	form.Set("From", "whatsapp:+15551234567")
	form.Set("Body", "status")

	resp := postForm(t, h, form, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("got status %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "<Message>") ||
		!strings.Contains(resp.Body.String(), "not authorized") {
		t.Fatalf("expected refusal TwiML, got %q", resp.Body.String())
	}

	time.Sleep(50 * time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.sends) != 0 {
		t.Fatalf("expected no outbound send, got %v", rec.sends)
	}
}

func TestBridge_Webhook_SignatureValidation(t *testing.T) {
	publicURL := "https://bot.example.com/whatsapp/webhook"
	b, _ := newTestBridge(t, BridgeConfig{ValidateSignature: true, PublicURL: publicURL}, nil)
	h := b.Handler()

	form := url.Values{}
	form.Set("From", "whatsapp:+15551234567")
	form.Set("Body", "help")

	resp := postForm(t, h, form, "bogus-signature")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for bad signature, got %d", resp.Code)
	}

	sig := ComputeSignature("token", publicURL, form)
	resp = postForm(t, h, form, sig)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid signature, got %d", resp.Code)
	}
}

func TestBridge_StatusEndpoint(t *testing.T) {
	b, _ := newTestBridge(t, BridgeConfig{}, []string{"+1", "+2"})
	b.Gateway.Record("+1", "hi", "", DirectionInbound)

	req := httptest.NewRequest(http.MethodGet, "/whatsapp/status", nil)
	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`"allowed":2`, `"history":1`, `"from_number":"+15550000000"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %q", want, body)
		}
	}
	if strings.Contains(body, "hi") {
		t.Fatal("status must not leak message bodies")
	}
}

func TestBridge_SendEndpoint_BearerGated(t *testing.T) {
	b, _ := newTestBridge(t, BridgeConfig{AuthToken: "sekrit"}, nil)
	h := b.Handler()

	req := httptest.NewRequest(http.MethodPost, "/whatsapp/send", strings.NewReader(`{"to":"+1","body":"x"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestBridge_Health(t *testing.T) {
	b, _ := newTestBridge(t, BridgeConfig{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestBridge_PerSenderSerialization(t *testing.T) {
	b, rec := newTestBridge(t, BridgeConfig{MaxConcurrent: 1}, nil)
	h := b.Handler()

	for i := 0; i < 3; i++ {
		form := url.Values{}
		form.Set("From", "whatsapp:+15551234567")
		form.Set("Body", "help")
		postForm(t, h, form, "")
	}

	sends := rec.wait(t, 3)
	if len(sends) < 3 {
		t.Fatalf("expected 3 replies, got %d", len(sends))
	}
}
