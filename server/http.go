package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Evansxm/ev-ai-core/agent"
)

type Config struct {
	Bind                string
	AuthToken           string
	GitHubWebhookSecret string
	Workers             int
	MaxQueue            int
	TaskTimeout         time.Duration
	TCPEnabled          bool
	TCPBind             string
}

// Server exposes the agent over HTTP, WebSocket and an optional TCP
// line protocol.
type Server struct {
	Agent  *agent.Agent
	Config Config
	Tasks  *TaskStore
	Logger *slog.Logger
}

func New(a *agent.Agent, cfg Config, logger *slog.Logger) *Server {
	if cfg.Bind == "" {
		cfg.Bind = "127.0.0.1:8080"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 120 * time.Second
	}
	if cfg.TCPBind == "" {
		cfg.TCPBind = "127.0.0.1:9999"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Agent:  a,
		Config: cfg,
		Tasks:  NewTaskStore(cfg.MaxQueue),
		Logger: logger,
	}
}

// Handler builds the HTTP mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/agent/execute", s.auth(s.handleExecute))
	mux.HandleFunc("/agent/tasks", s.auth(s.handleTasks))
	mux.HandleFunc("/agent/tasks/", s.auth(s.handleTaskGet))
	mux.HandleFunc("/agent/memory/store", s.auth(s.handleMemoryStore))
	mux.HandleFunc("/agent/memory/recall", s.auth(s.handleMemoryRecall))
	mux.HandleFunc("/agent/memory/search", s.auth(s.handleMemorySearch))
	mux.HandleFunc("/agent/tools", s.auth(s.handleTools))
	mux.HandleFunc("/agent/skills", s.auth(s.handleSkills))
	mux.HandleFunc("/github/webhook", s.handleGitHubWebhook)
	mux.HandleFunc("/ws", s.auth(s.handleWS))
	return mux
}

// Run serves HTTP (and TCP when enabled) until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.Tasks.RunWorkers(ctx, s.Config.Workers, func(taskCtx context.Context, input string) (string, error) {
		return s.Agent.Execute(taskCtx, input, "api")
	})

	if s.Config.TCPEnabled {
		go func() {
			if err := s.serveTCP(ctx); err != nil {
				s.Logger.Error("tcp_server_failed", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              s.Config.Bind,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("server_start", "bind", s.Config.Bind)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Config.AuthToken != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.Config.AuthToken)) != 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Input string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json body")
		return
	}

	response, err := s.Agent.Execute(r.Context(), req.Input, "api")
	if err != nil {
		if errors.Is(err, agent.ErrEmptyInput) {
			badRequest(w, err.Error())
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":       uuid.NewString(),
		"response": response,
	})
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Input string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		badRequest(w, "input is required")
		return
	}

	info, err := s.Tasks.Enqueue(context.Background(), req.Input, s.Config.TaskTimeout)
	if err != nil {
		if errors.Is(err, ErrQueueFull) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "queue is full"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": info.ID})
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/agent/tasks/")
	info, ok := s.Tasks.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleMemoryStore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Key        string `json:"key"`
		Value      string `json:"value"`
		Category   string `json:"category"`
		Importance int    `json:"importance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json body")
		return
	}

	rec, err := s.Agent.Memory.Remember(r.Context(), req.Key, req.Value, req.Category, req.Importance)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleMemoryRecall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		badRequest(w, "key is required")
		return
	}
	rec, err := s.Agent.Memory.Recall(r.Context(), key)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("no memory for %q", key)})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleMemorySearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		badRequest(w, "q is required")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, "invalid limit")
			return
		}
		limit = n
	}

	matches, err := s.Agent.Memory.Search(r.Context(), q, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": matches})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	type entry struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	out := []entry{}
	if s.Agent.Tools != nil {
		for _, t := range s.Agent.Tools.All() {
			out = append(out, entry{Name: t.Name(), Description: t.Description()})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": out})
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	type entry struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Enabled     bool   `json:"enabled"`
	}
	out := []entry{}
	if s.Agent.Skills != nil {
		for _, sk := range s.Agent.Skills.All() {
			if sk.Hidden {
				continue
			}
			out = append(out, entry{Name: sk.Name, Description: sk.Description, Category: sk.Category, Enabled: sk.Enabled})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"skills": out})
}

func (s *Server) handleGitHubWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		badRequest(w, "unreadable body")
		return
	}

	if s.Config.GitHubWebhookSecret != "" {
		sig := r.Header.Get("X-Hub-Signature-256")
		if !validGitHubSignature(body, sig, s.Config.GitHubWebhookSecret) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid signature"})
			return
		}
	}

	var payload struct {
		Repository struct {
			FullName string `json:"full_name"`
		} `json:"repository"`
		Commits []struct {
			ID      string `json:"id"`
			Message string `json:"message"`
		} `json:"commits"`
		Issue *struct {
			Number int    `json:"number"`
			Title  string `json:"title"`
		} `json:"issue"`
		Action string `json:"action"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		badRequest(w, "invalid json body")
		return
	}

	event := r.Header.Get("X-GitHub-Event")
	remembered := 0
	ctx := r.Context()
	repo := payload.Repository.FullName

	for _, c := range payload.Commits {
		key := "github_commit_" + shortSHA(c.ID)
		value := fmt.Sprintf("%s: %s", repo, firstLine(c.Message))
		if _, err := s.Agent.Memory.Remember(ctx, key, value, "github", 5); err == nil {
			remembered++
		}
	}
	if payload.Issue != nil {
		key := fmt.Sprintf("github_issue_%d", payload.Issue.Number)
		value := fmt.Sprintf("%s #%d (%s): %s", repo, payload.Issue.Number, payload.Action, payload.Issue.Title)
		if _, err := s.Agent.Memory.Remember(ctx, key, value, "github", 5); err == nil {
			remembered++
		}
	}

	s.Logger.Info("github_webhook", "event", event, "repo", repo, "remembered", remembered)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "remembered": remembered})
}

func validGitHubSignature(body []byte, header, secret string) bool {
	const prefix = "sha256="
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(strings.TrimPrefix(header, prefix)), []byte(want))
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}
