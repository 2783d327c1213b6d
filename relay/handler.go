package relay

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/shopdesk/promocast/gateway"
	"github.com/shopdesk/promocast/tg"
)

var _ http.Handler = (*Handler)(nil)

// Handler implements http.Handler for POST /relay requests.
//
// It keeps one direct platform gateway per configured credential name;
// requests reference credentials by name and never see the tokens.
type Handler struct {
	logger      *slog.Logger
	bearerToken tg.SecretToken
	gateways    map[string]gateway.Caller

	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[*tg.Envelope]
	maxBodySize int64
}

// HandlerOption configures the Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets a custom logger.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithHandlerRateLimit sets rate limiting parameters.
func WithHandlerRateLimit(rps float64, burst int) HandlerOption {
	return func(h *Handler) {
		h.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithGateways substitutes the per-credential gateways, for tests.
func WithGateways(gateways map[string]gateway.Caller) HandlerOption {
	return func(h *Handler) {
		h.gateways = gateways
	}
}

// NewHandler creates a relay handler from a validated Config. One direct
// gateway is built per credential; its rate limiter and breaker protect
// the platform side, while the handler's own limiter and breaker protect
// the relay itself.
func NewHandler(cfg Config, opts ...HandlerOption) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Handler{
		logger:      slog.Default(),
		bearerToken: cfg.BearerToken,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimitRequests), cfg.RateLimitBurst),
		maxBodySize: cfg.MaxBodySize,
	}
	h.breaker = gobreaker.NewCircuitBreaker[*tg.Envelope](gobreaker.Settings{
		Name:         "promocast-relay",
		MaxRequests:  cfg.BreakerMaxRequests,
		Interval:     cfg.BreakerInterval,
		Timeout:      cfg.BreakerTimeout,
		IsSuccessful: isBreakerSuccess,
	})

	for _, opt := range opts {
		opt(h)
	}

	if h.gateways == nil {
		h.gateways = make(map[string]gateway.Caller, len(cfg.Credentials))
		for name, token := range cfg.Credentials {
			gwCfg := gateway.DefaultConfig()
			gwCfg.Token = token
			gwCfg.BaseURL = cfg.BaseURL
			gw, err := gateway.NewBotFromConfig(gwCfg, gateway.WithLogger(h.logger))
			if err != nil {
				return nil, fmt.Errorf("credential %q: %w", name, err)
			}
			h.gateways[name] = gw
		}
	}

	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow() {
		h.fail(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	if r.Method != http.MethodPost {
		h.fail(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Constant-time bearer comparison.
	auth := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if subtle.ConstantTimeCompare([]byte(auth), []byte(h.bearerToken.Value())) != 1 {
		h.fail(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.fail(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var req gateway.RelayRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.fail(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Operation == "" {
		h.fail(w, "operation is required", http.StatusBadRequest)
		return
	}

	gw, ok := h.gateways[req.Credential]
	if !ok {
		// The name, not the 404 body, is the only thing logged.
		h.logger.Warn("unknown credential requested", "credential", req.Credential)
		h.fail(w, "unknown credential", http.StatusNotFound)
		return
	}

	env, err := h.breaker.Execute(func() (*tg.Envelope, error) {
		return gw.Call(r.Context(), req.Operation, req.Params)
	})
	if err != nil {
		var apiErr *tg.APIError
		if errors.As(err, &apiErr) {
			// Application-level failure: hand the envelope back for the
			// client to inspect, exactly as the platform produced it.
			h.writeEnvelope(w, &tg.Envelope{
				OK:          false,
				ErrorCode:   apiErr.Code,
				Description: apiErr.Description,
				Parameters:  apiErr.Parameters,
			})
			return
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			h.fail(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		h.logger.Error("relay forward failed",
			"operation", req.Operation,
			"error", err,
		)
		h.fail(w, "upstream request failed", http.StatusBadGateway)
		return
	}

	h.logger.Info("operation relayed",
		"operation", req.Operation,
		"credential", req.Credential,
	)
	h.writeEnvelope(w, env)
}

func (h *Handler) writeEnvelope(w http.ResponseWriter, env *tg.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.logger.Error("failed to write envelope", "error", err)
	}
}

// isBreakerSuccess determines if an error counts as a breaker failure.
// Application-level 4xx envelopes are platform errors the client must
// see (migration hints included), not relay faults; only 5xx and
// network errors trip the breaker.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *tg.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 400 && apiErr.Code < 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return false
}

func (h *Handler) fail(w http.ResponseWriter, msg string, code int) {
	h.logger.Error(msg, "code", code)
	http.Error(w, msg, code)
}

// HealthHandler returns HTTP handlers for health checks.
type HealthHandler struct {
	ready atomic.Bool
}

// NewHealthHandler creates health check handlers.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// SetReady marks the service as ready.
func (h *HealthHandler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// LivenessHandler returns the liveness probe handler.
func (h *HealthHandler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}

// ReadinessHandler returns the readiness probe handler.
func (h *HealthHandler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.ready.Load() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Ready"))
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Not Ready"))
		}
	}
}
