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

const duckHTML = `<html><body>
<div class="result">
  <a class="result__a" href="/l/?uddg=https%3A%2F%2Fexample.com%2Fone">First Result</a>
  <a class="result__snippet">Snippet one text.</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.org/two">Second Result</a>
  <a class="result__snippet">Snippet two text.</a>
</div>
<div class="result">
  <a class="result__a" href="//example.net/three">Third Result</a>
</div>
</body></html>`

func TestParseDuckDuckGoHTML(t *testing.T) {
	results, err := parseDuckDuckGoHTML([]byte(duckHTML), 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].URL != "https://example.com/one" {
		t.Fatalf("expected decoded redirect url, got %q", results[0].URL)
	}
	if results[0].Snippet != "Snippet one text." {
		t.Fatalf("expected snippet, got %q", results[0].Snippet)
	}
	if results[1].Title != "Second Result" {
		t.Fatalf("got title %q", results[1].Title)
	}
	if results[2].URL != "https://example.net/three" {
		t.Fatalf("expected scheme-relative url normalized, got %q", results[2].URL)
	}
}

func TestParseDuckDuckGoHTML_MaxResults(t *testing.T) {
	results, err := parseDuckDuckGoHTML([]byte(duckHTML), 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestNormalizeDuckDuckGoResultURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "redirect", in: "/l/?uddg=https%3A%2F%2Fexample.com%2Fa", want: "https://example.com/a"},
		{name: "direct", in: "https://example.com/b", want: "https://example.com/b"},
		{name: "scheme_relative", in: "//example.com/c", want: "https://example.com/c"},
		{name: "empty", in: "  ", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeDuckDuckGoResultURL(tc.in)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestWebSearchTool_Execute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "golang" {
			t.Errorf("expected q=golang, got %q", got)
		}
		io.WriteString(w, duckHTML)
	}))
	defer srv.Close()

	tool := NewWebSearchTool(true, srv.URL, 5*time.Second, 5, "")
	out, err := tool.Execute(context.Background(), map[string]any{"q": "golang"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(out, `"result_count": 3`) {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "https://example.com/one") {
		t.Fatalf("expected first result url in %q", out)
	}
}

func TestWebSearchTool_Execute_Disabled(t *testing.T) {
	tool := NewWebSearchTool(false, "", 5*time.Second, 5, "")
	_, err := tool.Execute(context.Background(), map[string]any{"q": "x"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("unexpected error: %v", err)
	}
}
