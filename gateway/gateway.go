package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/shopdesk/promocast/internal/scrub"
	"github.com/shopdesk/promocast/tg"
)

const maxResponseSize = 10 << 20 // 10MB

// Caller performs one platform operation and returns its envelope.
// An ok:false envelope is returned as *tg.APIError, never as a value.
type Caller interface {
	Call(ctx context.Context, op string, params any) (*tg.Envelope, error)
}

// BotGateway calls the bot platform directly, holding the bot credential.
type BotGateway struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*tg.Envelope]
}

var _ Caller = (*BotGateway)(nil)

// Option configures a BotGateway.
type Option func(*BotGateway)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *BotGateway) {
		g.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *BotGateway) {
		g.httpClient = client
	}
}

// WithBaseURL sets the API base URL (useful for testing).
func WithBaseURL(url string) Option {
	return func(g *BotGateway) {
		g.config.BaseURL = url
	}
}

// WithRateLimit sets the global rate limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(g *BotGateway) {
		g.config.GlobalRPS = rps
		g.config.GlobalBurst = burst
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func createHTTPClient(cfg Config) *http.Client {
	return &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: cfg.KeepAlive,
			}).DialContext,
			MaxIdleConns:          cfg.MaxIdleConns,
			IdleConnTimeout:       cfg.IdleTimeout,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			ForceAttemptHTTP2:     true,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// NewBot creates a direct gateway with the given token and options.
func NewBot(token string, opts ...Option) (*BotGateway, error) {
	cfg := DefaultConfig()
	cfg.Token = tg.SecretToken(token)
	return NewBotFromConfig(cfg, opts...)
}

// NewBotFromConfig creates a direct gateway from a Config.
func NewBotFromConfig(cfg Config, opts ...Option) (*BotGateway, error) {
	if cfg.Token.IsEmpty() {
		return nil, tg.ErrInvalidToken
	}

	g := &BotGateway{config: cfg}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.httpClient == nil {
		g.httpClient = createHTTPClient(g.config)
	}
	if g.limiter == nil {
		g.limiter = rate.NewLimiter(rate.Limit(g.config.GlobalRPS), g.config.GlobalBurst)
	}

	g.breaker = gobreaker.NewCircuitBreaker[*tg.Envelope](gobreaker.Settings{
		Name:         "promocast-gateway",
		MaxRequests:  g.config.BreakerMaxRequests,
		Interval:     g.config.BreakerInterval,
		Timeout:      g.config.BreakerTimeout,
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.logger.Info("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return g, nil
}

// Close releases idle HTTP connections.
func (g *BotGateway) Close() error {
	if t, ok := g.httpClient.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
	return nil
}

// Call performs one platform operation.
func (g *BotGateway) Call(ctx context.Context, op string, params any) (*tg.Envelope, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	env, err := g.breaker.Execute(func() (*tg.Envelope, error) {
		return g.doRequest(ctx, op, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", tg.ErrCircuitOpen, err)
		}
		return nil, err
	}
	return env, nil
}

func (g *BotGateway) doRequest(ctx context.Context, op string, params any) (*tg.Envelope, error) {
	url := fmt.Sprintf("%s/bot%s/%s", g.config.BaseURL, g.config.Token.Value(), op)

	jsonData, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", scrub.TokenFromError(err, g.config.Token))
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(op, resp.Body)
	if err != nil {
		return nil, err
	}
	return env, nil
}

// decodeEnvelope reads a platform response body, enforcing the size cap,
// and converts an ok:false envelope into *tg.APIError.
func decodeEnvelope(op string, body io.Reader) (*tg.Envelope, error) {
	// Read one byte past the cap to detect overflow without a false positive.
	limitedReader := io.LimitReader(body, maxResponseSize+1)
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(data)) > maxResponseSize {
		return nil, tg.ErrResponseTooLarge
	}

	var env tg.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !env.OK {
		return nil, tg.NewAPIError(op, &env)
	}
	return &env, nil
}

// isBreakerSuccess determines if an error counts as a breaker failure.
// Only server errors (5xx) and network errors trip the breaker;
// 4xx responses are client-side issues and do not.
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
