package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Evansxm/ev-ai-core/agent"
	"github.com/Evansxm/ev-ai-core/memory"
)

const protocolVersion = "2024-11-05"

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Server speaks line-delimited JSON-RPC 2.0 over a reader/writer pair,
// exposing the agent's tools, memory and prompts to MCP clients.
type Server struct {
	Agent   *agent.Agent
	Name    string
	Version string
	Logger  *slog.Logger
}

func NewServer(a *agent.Agent, name, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{Agent: a, Name: name, Version: version, Logger: logger}
}

// Serve reads requests until EOF or context cancellation.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		resp := s.Handle(ctx, []byte(line))
		if resp == nil {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Handle processes one raw message. Notifications return nil.
func (s *Server) Handle(ctx context.Context, raw []byte) *response {
	var req request
	if err := json.Unmarshal(raw, &req); err != nil {
		return &response{JSONRPC: "2.0", Error: &rpcError{Code: codeParseError, Message: "parse error"}}
	}

	isNotification := len(req.ID) == 0 || string(req.ID) == "null"

	if req.JSONRPC != "2.0" || req.Method == "" {
		if isNotification {
			return nil
		}
		return errResponse(req.ID, codeInvalidRequest, "invalid request")
	}

	result, rpcErr := s.dispatch(ctx, req)
	if isNotification {
		return nil
	}
	if rpcErr != nil {
		return &response{JSONRPC: "2.0", ID: req.ID, Error: rpcErr}
	}
	return &response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func (s *Server) dispatch(ctx context.Context, req request) (any, *rpcError) {
	s.Logger.Debug("mcp_request", "method", req.Method)

	switch req.Method {
	case "initialize":
		return s.initialize(), nil
	case "notifications/initialized", "initialized":
		return map[string]any{}, nil
	case "ping":
		return map[string]any{}, nil
	case "tools/list":
		return s.toolsList(), nil
	case "tools/call":
		return s.toolsCall(ctx, req.Params)
	case "resources/list":
		return s.resourcesList(ctx)
	case "resources/read":
		return s.resourcesRead(ctx, req.Params)
	case "prompts/list":
		return s.promptsList(), nil
	case "prompts/get":
		return s.promptsGet(req.Params)
	default:
		return nil, &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}
	}
}

func (s *Server) initialize() any {
	return map[string]any{
		"protocolVersion": protocolVersion,
		"serverInfo": map[string]any{
			"name":    s.Name,
			"version": s.Version,
		},
		"capabilities": map[string]any{
			"tools":     map[string]any{},
			"resources": map[string]any{},
			"prompts":   map[string]any{},
		},
	}
}

func (s *Server) toolsList() any {
	type toolEntry struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		InputSchema json.RawMessage `json:"inputSchema"`
	}
	entries := []toolEntry{}
	if s.Agent.Tools != nil {
		for _, t := range s.Agent.Tools.All() {
			schema := json.RawMessage(t.ParameterSchema())
			if !json.Valid(schema) {
				schema = json.RawMessage(`{"type":"object"}`)
			}
			entries = append(entries, toolEntry{
				Name:        t.Name(),
				Description: t.Description(),
				InputSchema: schema,
			})
		}
	}
	return map[string]any{"tools": entries}
}

func (s *Server) toolsCall(ctx context.Context, params json.RawMessage) (any, *rpcError) {
	var p struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(params, &p); err != nil || p.Name == "" {
		return nil, &rpcError{Code: codeInvalidParams, Message: "invalid params: name required"}
	}
	if s.Agent.Tools == nil {
		return nil, &rpcError{Code: codeInternalError, Message: "no tool registry"}
	}
	tool, ok := s.Agent.Tools.Get(p.Name)
	if !ok {
		return nil, &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf("unknown tool: %s", p.Name)}
	}

	out, err := tool.Execute(ctx, p.Arguments)
	isError := err != nil
	text := out
	if err != nil {
		text = err.Error()
	}
	return map[string]any{
		"content": []map[string]any{{"type": "text", "text": text}},
		"isError": isError,
	}, nil
}

func (s *Server) resourcesList(ctx context.Context) (any, *rpcError) {
	type resourceEntry struct {
		URI         string `json:"uri"`
		Name        string `json:"name"`
		Description string `json:"description"`
		MimeType    string `json:"mimeType"`
	}
	entries := []resourceEntry{}
	if s.Agent.Memory != nil {
		categories, err := s.Agent.Memory.Categories(ctx)
		if err != nil {
			return nil, &rpcError{Code: codeInternalError, Message: err.Error()}
		}
		for _, cat := range categories {
			entries = append(entries, resourceEntry{
				URI:         "memory://" + cat,
				Name:        cat,
				Description: fmt.Sprintf("Stored memories in category %q.", cat),
				MimeType:    "application/json",
			})
		}
	}
	return map[string]any{"resources": entries}, nil
}

func (s *Server) resourcesRead(ctx context.Context, params json.RawMessage) (any, *rpcError) {
	var p struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(params, &p); err != nil || p.URI == "" {
		return nil, &rpcError{Code: codeInvalidParams, Message: "invalid params: uri required"}
	}
	category, ok := strings.CutPrefix(p.URI, "memory://")
	if !ok || category == "" {
		return nil, &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf("unsupported resource uri: %s", p.URI)}
	}
	if s.Agent.Memory == nil {
		return nil, &rpcError{Code: codeInternalError, Message: "no memory store"}
	}

	records, err := s.Agent.Memory.ByCategory(ctx, category)
	if err != nil {
		return nil, &rpcError{Code: codeInternalError, Message: err.Error()}
	}
	text, err := marshalRecords(records)
	if err != nil {
		return nil, &rpcError{Code: codeInternalError, Message: err.Error()}
	}
	return map[string]any{
		"contents": []map[string]any{{
			"uri":      p.URI,
			"mimeType": "application/json",
			"text":     text,
		}},
	}, nil
}

func (s *Server) promptsList() any {
	type promptEntry struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	entries := []promptEntry{}
	if s.Agent.Prompts != nil {
		for _, t := range s.Agent.Prompts.All() {
			entries = append(entries, promptEntry{
				Name:        t.Name,
				Description: fmt.Sprintf("%s prompt template", t.Kind),
			})
		}
	}
	return map[string]any{"prompts": entries}
}

func (s *Server) promptsGet(params json.RawMessage) (any, *rpcError) {
	var p struct {
		Name      string            `json:"name"`
		Arguments map[string]string `json:"arguments"`
	}
	if err := json.Unmarshal(params, &p); err != nil || p.Name == "" {
		return nil, &rpcError{Code: codeInvalidParams, Message: "invalid params: name required"}
	}
	if s.Agent.Prompts == nil {
		return nil, &rpcError{Code: codeInternalError, Message: "no prompt registry"}
	}
	text, ok := s.Agent.Prompts.Render(p.Name, p.Arguments)
	if !ok {
		return nil, &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf("unknown prompt: %s", p.Name)}
	}
	return map[string]any{
		"messages": []map[string]any{{
			"role":    "user",
			"content": map[string]any{"type": "text", "text": text},
		}},
	}, nil
}

func marshalRecords(records []memory.Record) (string, error) {
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func errResponse(id json.RawMessage, code int, msg string) *response {
	return &response{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: msg}}
}
