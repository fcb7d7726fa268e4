package builtin

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPRequestTool_Execute_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "pong")
	}))
	defer srv.Close()

	tool := NewHTTPRequestTool(true, 5*time.Second, 1024, "")
	out, err := tool.Execute(context.Background(), map[string]any{"url": srv.URL})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, want := range []string{"status: 200", "content_type: text/plain", "truncated: false", "pong"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output %q", want, out)
		}
	}
}

func TestHTTPRequestTool_Execute_PostBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		io.WriteString(w, "got:"+string(body))
	}))
	defer srv.Close()

	tool := NewHTTPRequestTool(true, 5*time.Second, 1024, "")
	out, err := tool.Execute(context.Background(), map[string]any{
		"url":    srv.URL,
		"method": "post",
		"body":   `{"k":"v"}`,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(out, `got:{"k":"v"}`) {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestHTTPRequestTool_Execute_Truncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, strings.Repeat("x", 100))
	}))
	defer srv.Close()

	tool := NewHTTPRequestTool(true, 5*time.Second, 10, "")
	out, err := tool.Execute(context.Background(), map[string]any{"url": srv.URL})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(out, "truncated: true") {
		t.Fatalf("expected truncated output, got %q", out)
	}
}

func TestHTTPRequestTool_Execute_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	tool := NewHTTPRequestTool(true, 5*time.Second, 1024, "")
	out, err := tool.Execute(context.Background(), map[string]any{"url": srv.URL})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(out, "status: 403") {
		t.Fatalf("expected status in output, got %q", out)
	}
}

func TestHTTPRequestTool_Execute_SchemeRejected(t *testing.T) {
	tool := NewHTTPRequestTool(true, 5*time.Second, 1024, "")
	_, err := tool.Execute(context.Background(), map[string]any{"url": "ftp://example.com/file"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported url scheme") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHTTPRequestTool_Execute_Disabled(t *testing.T) {
	tool := NewHTTPRequestTool(false, 5*time.Second, 1024, "")
	_, err := tool.Execute(context.Background(), map[string]any{"url": "https://example.com"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("unexpected error: %v", err)
	}
}
