package whatsapp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2010-04-01/Accounts/AC123/Messages.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "token" {
			t.Errorf("unexpected basic auth %q:%q", user, pass)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("From"); got != "whatsapp:+15550000000" {
			t.Errorf("got From %q", got)
		}
		if got := r.PostForm.Get("To"); got != "whatsapp:+15551234567" {
			t.Errorf("got To %q", got)
		}
		if got := r.PostForm.Get("Body"); got != "hello" {
			t.Errorf("got Body %q", got)
		}
		io.WriteString(w, `{"sid":"SM42"}`)
	}))
	defer srv.Close()

	c := NewClient("AC123", "token", "+15550000000", nil)
	c.BaseURL = srv.URL

	sid, err := c.Send(context.Background(), "+15551234567", "hello")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if sid != "SM42" {
		t.Fatalf("got sid %q", sid)
	}
}

func TestClient_Send_PrefixAddedOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if got := r.PostForm.Get("To"); got != "whatsapp:+15551234567" {
			t.Errorf("got To %q, want single prefix", got)
		}
		io.WriteString(w, `{"sid":"SM1"}`)
	}))
	defer srv.Close()

	c := NewClient("AC123", "token", "+15550000000", nil)
	c.BaseURL = srv.URL
	if _, err := c.Send(context.Background(), "whatsapp:+15551234567", "hi"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestClient_Send_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"Authenticate"}`)
	}))
	defer srv.Close()

	c := NewClient("AC123", "bad", "+15550000000", nil)
	c.BaseURL = srv.URL

	_, err := c.Send(context.Background(), "+15551234567", "hi")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "whatsapp http 401: Authenticate") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Send_MissingCredentials(t *testing.T) {
	c := NewClient("", "", "+15550000000", nil)
	_, err := c.Send(context.Background(), "+15551234567", "hi")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}
