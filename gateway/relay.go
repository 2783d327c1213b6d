package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopdesk/promocast/internal/scrub"
	"github.com/shopdesk/promocast/tg"
)

// RelayRequest is the wire format of a relayed operation. Credential is
// the name of a credential configured on the relay host, never the
// credential itself.
type RelayRequest struct {
	Credential string          `json:"credential"`
	Operation  string          `json:"operation"`
	Params     json.RawMessage `json:"params"`
}

// RelayGateway forwards platform operations through a trusted relay so
// this process never holds the bot credential.
type RelayGateway struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Caller = (*RelayGateway)(nil)

// RelayOption configures a RelayGateway.
type RelayOption func(*RelayGateway)

// WithRelayLogger sets a custom logger.
func WithRelayLogger(logger *slog.Logger) RelayOption {
	return func(g *RelayGateway) {
		g.logger = logger
	}
}

// WithRelayHTTPClient sets a custom HTTP client.
func WithRelayHTTPClient(client *http.Client) RelayOption {
	return func(g *RelayGateway) {
		g.httpClient = client
	}
}

// NewRelay creates a relay gateway from a Config with RelayURL set.
func NewRelay(cfg Config, opts ...RelayOption) (*RelayGateway, error) {
	if cfg.RelayURL == "" {
		return nil, tg.NewConfigError("relay_url", "is required")
	}
	if cfg.RelayToken.IsEmpty() {
		return nil, tg.NewConfigError("relay_token", "is required")
	}
	if cfg.RelayCredential == "" {
		return nil, tg.NewConfigError("relay_credential", "is required")
	}

	g := &RelayGateway{config: cfg}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.httpClient == nil {
		g.httpClient = createHTTPClient(g.config)
	}

	return g, nil
}

// Close releases idle HTTP connections.
func (g *RelayGateway) Close() error {
	if t, ok := g.httpClient.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
	return nil
}

// Call forwards one platform operation through the relay.
//
// A non-2xx relay status is a fatal transport error (tg.ErrRelayStatus);
// a 2xx response carries the platform envelope unchanged, which still may
// encode an application-level failure and is inspected the same way the
// direct gateway inspects it.
func (g *RelayGateway) Call(ctx context.Context, op string, params any) (*tg.Envelope, error) {
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	body, err := json.Marshal(RelayRequest{
		Credential: g.config.RelayCredential,
		Operation:  op,
		Params:     rawParams,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.RelayURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.config.RelayToken.Value())

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay request failed: %w", scrub.TokenFromError(err, g.config.RelayToken))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Error("relay rejected request",
			"operation", op,
			"status", resp.StatusCode,
		)
		return nil, fmt.Errorf("%w: %d", tg.ErrRelayStatus, resp.StatusCode)
	}

	return decodeEnvelope(op, resp.Body)
}
