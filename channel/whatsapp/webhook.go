package whatsapp

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Evansxm/ev-ai-core/internal/worker"
)

type BridgeConfig struct {
	Bind              string
	PublicURL         string
	ValidateSignature bool
	AuthToken         string
	MaxConcurrent     int
}

type job struct {
	sender string
	body   string
	sid    string
}

// Bridge is the webhook server connecting the relay to the agent: it
// authorizes senders, routes commands and sends replies back out.
type Bridge struct {
	Gateway *Gateway
	Client  *Client
	Router  *Router
	Config  BridgeConfig
	Logger  *slog.Logger

	// send is swappable for tests; defaults to Client.SendAsync.
	send func(to, body string)

	mu      sync.Mutex
	workers map[string]chan job
	sem     chan struct{}
	ctx     context.Context
}

func NewBridge(gw *Gateway, client *Client, router *Router, cfg BridgeConfig, logger *slog.Logger) *Bridge {
	if cfg.Bind == "" {
		cfg.Bind = "0.0.0.0:5000"
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{
		Gateway: gw,
		Client:  client,
		Router:  router,
		Config:  cfg,
		Logger:  logger,
		workers: make(map[string]chan job),
		sem:     make(chan struct{}, cfg.MaxConcurrent),
	}
	b.send = func(to, body string) {
		if b.Client != nil {
			b.Client.SendAsync(to, body)
		}
	}
	return b
}

func (b *Bridge) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/whatsapp/webhook", b.handleWebhook)
	mux.HandleFunc("/whatsapp/status", b.handleStatus)
	mux.HandleFunc("/whatsapp/send", b.handleSend)
	mux.HandleFunc("/health", b.handleHealth)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (b *Bridge) Run(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	srv := &http.Server{
		Addr:              b.Config.Bind,
		Handler:           b.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		b.Logger.Info("server_start", "bind", b.Config.Bind, "channel", "whatsapp")
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

func (b *Bridge) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form body", http.StatusBadRequest)
		return
	}

	if b.Config.ValidateSignature && b.Client != nil {
		header := r.Header.Get("X-Twilio-Signature")
		if !ValidSignature(b.Client.AuthToken, b.publicURL(r), r.PostForm, header) {
			b.Logger.Warn("whatsapp_invalid_signature", "remote", r.RemoteAddr)
			http.Error(w, "invalid signature", http.StatusForbidden)
			return
		}
	}

	from := numberKey(r.PostForm.Get("From"))
	body := r.PostForm.Get("Body")
	sid := r.PostForm.Get("MessageSid")

	if !b.Gateway.Authorize(from) {
		writeTwiML(w, b.Gateway.RefusalText())
		return
	}

	b.Gateway.Record(from, body, sid, DirectionInbound)
	b.dispatch(job{sender: from, body: body, sid: sid})
	writeTwiML(w, "")
}

// dispatch hands a job to the sender's worker, creating it on first
// contact. A global semaphore caps concurrent agent executions.
func (b *Bridge) dispatch(j job) {
	b.mu.Lock()
	ctx := b.ctx
	if ctx == nil {
		ctx = context.Background()
		b.ctx = ctx
	}
	jobs, ok := b.workers[j.sender]
	if !ok {
		jobs = make(chan job, 16)
		b.workers[j.sender] = jobs
		worker.Start(worker.StartOptions[job]{
			Ctx:    ctx,
			Sem:    b.sem,
			Jobs:   jobs,
			Handle: b.process,
		})
	}
	b.mu.Unlock()

	if err := worker.Enqueue(nil, ctx, jobs, j); err != nil {
		b.Logger.Warn("whatsapp_enqueue_failed", "from", j.sender, "error", err)
	}
}

func (b *Bridge) process(ctx context.Context, j job) {
	reply := b.Router.Handle(ctx, j.sender, j.body)
	if strings.TrimSpace(reply) == "" {
		return
	}
	b.Gateway.Record(j.sender, reply, "", DirectionOutbound)
	b.send(j.sender, reply)
}

func (b *Bridge) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	from := ""
	if b.Client != nil {
		from = b.Client.FromNumber
	}
	out := map[string]any{
		"status":      "ok",
		"from_number": from,
		"allowed":     b.Gateway.AllowedCount(),
		"history":     b.Gateway.HistoryLen(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (b *Bridge) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if b.Config.AuthToken != "" {
		got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(b.Config.AuthToken)) != 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
			return
		}
	}

	var req struct {
		To   string `json:"to"`
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.To == "" || req.Body == "" {
		http.Error(w, "to and body are required", http.StatusBadRequest)
		return
	}

	sid, err := b.Client.Send(r.Context(), req.To, req.Body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	b.Gateway.Record(req.To, req.Body, sid, DirectionOutbound)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "sent", "sid": sid})
}

func (b *Bridge) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

func (b *Bridge) publicURL(r *http.Request) string {
	if b.Config.PublicURL != "" {
		return b.Config.PublicURL
	}
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func writeTwiML(w http.ResponseWriter, reply string) {
	w.Header().Set("Content-Type", "text/xml")
	if strings.TrimSpace(reply) == "" {
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Response/>`))
		return
	}
	var escaped strings.Builder
	_ = xml.EscapeText(&escaped, []byte(reply))
	_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Response><Message>` +
		escaped.String() + `</Message></Response>`))
}
