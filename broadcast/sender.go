package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/shopdesk/promocast/gateway"
	"github.com/shopdesk/promocast/tg"
)

// Option configures broadcast components.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Sender delivers one message to one department: it resolves the chat
// identifier, performs the selected wire operation, and retries exactly
// once when the platform reports the chat migrated to a new id.
type Sender struct {
	caller   gateway.Caller
	resolver *Resolver
	logger   *slog.Logger
}

// NewSender creates a Sender on top of a gateway.
func NewSender(caller gateway.Caller, opts ...Option) *Sender {
	o := applyOptions(opts)
	return &Sender{
		caller:   caller,
		resolver: NewResolver(caller, o.logger),
		logger:   o.logger,
	}
}

// Send delivers msg to target. Errors are per-department:
// *ResolutionError, *TransportError or *MigrationRetryError.
func (s *Sender) Send(ctx context.Context, target Target, msg Message) error {
	chatID, err := s.resolver.Resolve(ctx, target.ChatID)
	if err != nil {
		return err
	}
	return s.sendTo(ctx, chatID, msg)
}

func (s *Sender) sendTo(ctx context.Context, chatID string, msg Message) error {
	op, params := buildCall(chatID, msg)

	_, err := s.caller.Call(ctx, op, params)
	if err == nil {
		return nil
	}

	var apiErr *tg.APIError
	if !errors.As(err, &apiErr) {
		// Transport-level failure (network, relay status, open breaker).
		return err
	}

	if newID := apiErr.MigrateTo(); newID != 0 {
		return s.retryMigrated(ctx, chatID, strconv.FormatInt(newID, 10), msg)
	}

	return &TransportError{
		Op:          apiErr.Op,
		Code:        apiErr.Code,
		Description: apiErr.Description,
		Err:         apiErr,
	}
}

// retryMigrated repeats the identical operation once against the chat id
// the platform reported. The replacement id is logged so an operator can
// update the department's stored configuration; it is never written back
// automatically.
func (s *Sender) retryMigrated(ctx context.Context, oldChatID, newChatID string, msg Message) error {
	s.logger.Warn("chat migrated, retrying against new id; update the department's stored chat id",
		"old_chat_id", oldChatID,
		"new_chat_id", newChatID,
	)

	op, params := buildCall(newChatID, msg)
	if _, err := s.caller.Call(ctx, op, params); err != nil {
		return &MigrationRetryError{OldChatID: oldChatID, NewChatID: newChatID, Err: err}
	}
	return nil
}
