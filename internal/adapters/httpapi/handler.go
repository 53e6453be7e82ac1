// Package httpapi serves the loan lookup and the admin JSON API over net/http.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"loanlocator/docs/schema/openapi"
	"loanlocator/internal/auth"
	"loanlocator/internal/core"
	"loanlocator/internal/lookup"
)

const (
	apiPrefix   = "/api/v1"
	adminPrefix = apiPrefix + "/admin/"
	maxBodySize = 10 << 20
)

// LookupObserver receives one observation per lookup request.
type LookupObserver interface {
	ObserveLookup(status string, duration time.Duration)
}

// Handler routes every HTTP endpoint of the server.
type Handler struct {
	loader   *lookup.Loader
	service  *core.Service
	verifier *auth.Verifier
	sessions *auth.Sessions
	observer LookupObserver
	metrics  http.Handler
	logger   core.Logger
	now      func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithVerifier sets the admin password verifier.
func WithVerifier(v *auth.Verifier) Option {
	return func(h *Handler) {
		if v != nil {
			h.verifier = v
		}
	}
}

// WithSessions sets the admin session table.
func WithSessions(s *auth.Sessions) Option {
	return func(h *Handler) {
		if s != nil {
			h.sessions = s
		}
	}
}

// WithLookupObserver records lookup outcomes, typically into metrics.
func WithLookupObserver(o LookupObserver) Option {
	return func(h *Handler) { h.observer = o }
}

// WithMetricsHandler mounts handler at /metrics.
func WithMetricsHandler(handler http.Handler) Option {
	return func(h *Handler) { h.metrics = handler }
}

// WithLogger sets the request logger.
func WithLogger(l core.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithClock overrides the latency clock.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHandler constructs the HTTP handler. Without WithVerifier the default
// admin password hash is used.
func NewHandler(loader *lookup.Loader, service *core.Service, opts ...Option) *Handler {
	h := &Handler{
		loader:   loader,
		service:  service,
		verifier: auth.NewVerifier(""),
		sessions: auth.NewSessions(auth.DefaultSessionTTL, nil),
		logger:   nopLogger{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.loader == nil || h.service == nil {
		writeError(w, http.StatusInternalServerError, "internal", "handler not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/healthz":
		h.handleHealth(w, r)
	case path == "/metrics":
		if h.metrics == nil {
			http.NotFound(w, r)
			return
		}
		h.metrics.ServeHTTP(w, r)
	case path == apiPrefix+"/openapi.yaml":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(openapi.Spec())
	case path == apiPrefix+"/locate":
		h.handleLocate(w, r)
	case path == apiPrefix+"/stats":
		h.handleStats(w, r)
	case path == apiPrefix+"/reload":
		h.handleReload(w, r)
	case path == adminPrefix+"login":
		h.handleLogin(w, r)
	case path == adminPrefix+"logout":
		h.handleLogout(w, r)
	case strings.HasPrefix(path, adminPrefix):
		if !h.authorize(w, r) {
			return
		}
		h.handleAdmin(w, r, strings.TrimPrefix(path, adminPrefix))
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if err := h.service.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "error": err.Error()})
		return
	}
	resp := map[string]any{"status": "ok"}
	if snap, err := h.loader.Current(); err == nil {
		resp["snapshot"] = snap.Stats()
	}
	writeJSON(w, http.StatusOK, resp)
}

type locateRequest struct {
	Loan string `json:"loan"`
}

type locateResponse struct {
	lookup.Result
	Status lookup.Status `json:"status"`
}

func (h *Handler) handleLocate(w http.ResponseWriter, r *http.Request) {
	var input string
	switch r.Method {
	case http.MethodGet:
		input = r.URL.Query().Get("loan")
	case http.MethodPost:
		var req locateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_payload", err.Error())
			return
		}
		input = req.Loan
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	started := h.now()
	result, err := h.loader.Locate(input)
	if err != nil {
		status, code := classify(err)
		h.observeLookup(code, started)
		writeError(w, status, code, err.Error())
		return
	}
	h.observeLookup(string(result.Status()), started)
	writeJSON(w, http.StatusOK, locateResponse{Result: result, Status: result.Status()})
}

func (h *Handler) observeLookup(status string, started time.Time) {
	if h.observer != nil {
		h.observer.ObserveLookup(status, h.now().Sub(started))
	}
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	snap, err := h.loader.Current()
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Stats())
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	snap, err := h.loader.Reload(r.Context())
	if err != nil {
		h.logger.Warn("snapshot reload failed", "error", err)
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Stats())
}

// refresh reloads the snapshot after a successful admin write so searches
// see the change. A failure keeps the previous snapshot.
func (h *Handler) refresh(ctx context.Context) {
	if _, err := h.loader.Reload(ctx); err != nil {
		h.logger.Warn("snapshot refresh after mutation failed", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{"error": message, "code": code})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
