package server

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWS_ExecuteFrame(t *testing.T) {
	s := newTestServer(t, Config{})
	conn := dialWS(t, s)

	if err := conn.WriteJSON(wsFrame{Type: "execute", Input: "remember k v"}); err != nil {
		t.Fatal(err)
	}
	var reply wsReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if reply.Type != "result" {
		t.Fatalf("got type %q error %q", reply.Type, reply.Error)
	}
	if !strings.Contains(reply.Response, `remembered "k"`) {
		t.Fatalf("unexpected response: %q", reply.Response)
	}
}

func TestWS_MemoryFrames(t *testing.T) {
	s := newTestServer(t, Config{})
	conn := dialWS(t, s)

	if err := conn.WriteJSON(wsFrame{Type: "memory_store", Key: "owner", Value: "Evans"}); err != nil {
		t.Fatal(err)
	}
	var reply wsReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if reply.Type != "result" {
		t.Fatalf("store failed: %+v", reply)
	}

	if err := conn.WriteJSON(wsFrame{Type: "memory_recall", Key: "owner"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if reply.Response != "Evans" {
		t.Fatalf("got %q, want %q", reply.Response, "Evans")
	}
}

func TestWS_UnknownFrameType(t *testing.T) {
	s := newTestServer(t, Config{})
	conn := dialWS(t, s)

	if err := conn.WriteJSON(wsFrame{Type: "bogus"}); err != nil {
		t.Fatal(err)
	}
	var reply wsReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if reply.Type != "error" || !strings.Contains(reply.Error, "unknown frame type") {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}
