package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopdesk/promocast/gateway"
	"github.com/shopdesk/promocast/tg"
)

var numericChatID = regexp.MustCompile(`^-?[0-9]+$`)

// Resolver turns a configured chat identifier into a numeric chat id.
// Numeric identifiers pass through without a network call; handles are
// normalized to a single leading @ and resolved via getChat.
//
// Results are not cached: resolution happens once per send attempt.
type Resolver struct {
	caller gateway.Caller
	logger *slog.Logger
}

// NewResolver creates a Resolver. A nil logger falls back to slog.Default().
func NewResolver(caller gateway.Caller, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{caller: caller, logger: logger}
}

// Resolve returns the numeric chat id for identifier as a string.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (string, error) {
	if identifier == "" {
		return "", &ResolutionError{Identifier: identifier, Err: fmt.Errorf("empty chat identifier")}
	}
	if numericChatID.MatchString(identifier) {
		return identifier, nil
	}

	handle := "@" + strings.TrimPrefix(identifier, "@")

	env, err := r.caller.Call(ctx, tg.OpGetChat, getChatParams{ChatID: handle})
	if err != nil {
		return "", &ResolutionError{Identifier: identifier, Err: err}
	}

	var chat tg.Chat
	if err := json.Unmarshal(env.Result, &chat); err != nil {
		return "", &ResolutionError{Identifier: identifier, Err: fmt.Errorf("failed to parse getChat result: %w", err)}
	}

	resolved := strconv.FormatInt(chat.ID, 10)
	r.logger.Debug("resolved chat handle",
		"handle", handle,
		"chat_id", resolved,
		"chat_type", string(chat.Type),
	)
	return resolved, nil
}
