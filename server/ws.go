package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

type wsFrame struct {
	Type       string `json:"type"`
	Input      string `json:"input,omitempty"`
	Key        string `json:"key,omitempty"`
	Value      string `json:"value,omitempty"`
	Category   string `json:"category,omitempty"`
	Importance int    `json:"importance,omitempty"`
}

type wsReply struct {
	Type     string `json:"type"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Warn("ws_upgrade_failed", "error", err)
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(reply wsReply) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(reply); err != nil {
			s.Logger.Warn("ws_write_failed", "error", err)
		}
	}

	for {
		var frame wsFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.Logger.Warn("ws_read_failed", "error", err)
			}
			return
		}
		s.handleWSFrame(r, frame, send)
	}
}

func (s *Server) handleWSFrame(r *http.Request, frame wsFrame, send func(wsReply)) {
	switch frame.Type {
	case "execute":
		response, err := s.Agent.Execute(r.Context(), frame.Input, "websocket")
		if err != nil {
			send(wsReply{Type: "error", Error: err.Error()})
			return
		}
		send(wsReply{Type: "result", Response: response})

	case "memory_store":
		rec, err := s.Agent.Memory.Remember(r.Context(), frame.Key, frame.Value, frame.Category, frame.Importance)
		if err != nil {
			send(wsReply{Type: "error", Error: err.Error()})
			return
		}
		send(wsReply{Type: "result", Response: "stored " + rec.Key})

	case "memory_recall":
		rec, err := s.Agent.Memory.Recall(r.Context(), frame.Key)
		if err != nil {
			send(wsReply{Type: "error", Error: err.Error()})
			return
		}
		send(wsReply{Type: "result", Response: rec.Value})

	default:
		send(wsReply{Type: "error", Error: "unknown frame type: " + frame.Type})
	}
}
