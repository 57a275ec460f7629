package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/terra-agro/terrabot/core/logger"
	"log/slog"
)

// Dispatcher routes a normalized inbound event to conversation handlers.
type Dispatcher interface {
	HandleEvent(ctx context.Context, ev Event) error
}

// Options configure the webhook HTTP handler.
type Options struct {
	VerifyToken string
	Dispatcher  Dispatcher
	// RateInterval enforces a minimum interval between messages from
	// the same sender; zero disables throttling.
	RateInterval time.Duration
}

// Handler serves the webhook verification and message ingress endpoints.
type Handler struct {
	opts Options

	lastSeenMu sync.Mutex
	lastSeen   map[string]time.Time
}

// NewHandler builds the webhook handler.
func NewHandler(opts Options) *Handler {
	return &Handler{
		opts:     opts,
		lastSeen: make(map[string]time.Time),
	}
}

// Mux returns the HTTP routing with all webhook endpoints registered.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", h.handleWebhook)
	mux.HandleFunc("/health", h.handleHealth)
	return mux
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleVerify(w, r)
	case http.MethodPost:
		h.handleReceive(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleVerify answers the hub challenge used by the gateway to confirm the endpoint.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "subscribe" && token == h.opts.VerifyToken {
		logger.HTTP.Info("webhook verified",
			slog.String("event", "webhook.verify"),
			slog.String("status", "ok"),
		)
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, challenge)
		return
	}

	logger.HTTP.Warn("webhook verification rejected",
		slog.String("event", "webhook.verify"),
		slog.String("status", "rejected"),
		slog.String("cause", "token mismatch"),
	)
	http.Error(w, "Forbidden", http.StatusForbidden)
}

func (h *Handler) handleReceive(w http.ResponseWriter, r *http.Request) {
	rid := uuid.NewString()
	ctx := logger.WithRID(r.Context(), rid)
	start := time.Now()

	// The gateway treats any non-200 as a delivery failure and retries,
	// so bad payloads are logged and acknowledged as a no-op.
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || len(body) == 0 {
		logger.HTTP.Warn("empty webhook payload",
			slog.String("event", "webhook.receive"),
			slog.String("status", "ignored"),
			slog.String("rid", rid),
		)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	events, statuses, err := ParsePayload(body)
	if err != nil {
		logger.HTTP.Warn("webhook payload rejected",
			slog.String("event", "webhook.receive"),
			slog.String("status", "ignored"),
			slog.String("rid", rid),
			slog.String("err", err.Error()),
		)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if statuses > 0 {
		logger.HTTP.Debug("delivery statuses received",
			slog.String("event", "webhook.statuses"),
			slog.String("rid", rid),
			slog.Int("count", statuses),
		)
	}

	for _, ev := range events {
		h.dispatch(ctx, ev)
	}

	logger.HTTP.Info("webhook processed",
		slog.String("event", "webhook.receive"),
		slog.String("status", "ok"),
		slog.String("rid", rid),
		slog.Int("count", len(events)),
		slog.Duration("duration", logger.Took(start)),
	)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// dispatch hands one event to the conversation layer, shielding the HTTP
// response from handler panics and per-message failures.
func (h *Handler) dispatch(ctx context.Context, ev Event) {
	if h.opts.Dispatcher == nil {
		return
	}
	if h.limited(ev.From) {
		logger.HTTP.Warn("rate limit",
			slog.String("event", "webhook.rate_limit"),
			slog.String("status", "rate_limited"),
			slog.String("user_id", ev.From),
		)
		return
	}

	ctx = logger.WithMessageMeta(ctx, ev.From, ev.MsgID)
	defer func() {
		if r := recover(); r != nil {
			logger.HTTP.Error("panic recovered",
				slog.String("event", "webhook.panic"),
				slog.String("user_id", ev.From),
				slog.Any("err", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	if err := h.opts.Dispatcher.HandleEvent(ctx, ev); err != nil {
		logger.HTTP.Error("event handling failed",
			slog.String("event", "webhook.dispatch"),
			slog.String("status", "fail"),
			slog.String("user_id", ev.From),
			slog.String("msg_type", ev.Type),
			slog.String("err", err.Error()),
		)
	}
}

// limited enforces a minimum interval between messages from the same sender.
func (h *Handler) limited(userID string) bool {
	if h.opts.RateInterval <= 0 || userID == "" {
		return false
	}
	now := time.Now()
	h.lastSeenMu.Lock()
	defer h.lastSeenMu.Unlock()
	if last, ok := h.lastSeen[userID]; ok && now.Sub(last) < h.opts.RateInterval {
		return true
	}
	h.lastSeen[userID] = now
	return false
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "terrabot",
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
