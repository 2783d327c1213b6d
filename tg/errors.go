package tg

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors - use with errors.Is()
var (
	// Platform errors
	ErrUnauthorized    = errors.New("promocast: unauthorized (invalid token)")
	ErrForbidden       = errors.New("promocast: forbidden")
	ErrNotFound        = errors.New("promocast: not found")
	ErrTooManyRequests = errors.New("promocast: too many requests")

	// Chat errors
	ErrChatNotFound = errors.New("promocast: chat not found")
	ErrBotBlocked   = errors.New("promocast: bot blocked by user")
	ErrBotKicked    = errors.New("promocast: bot kicked from chat")
	ErrNoRights     = errors.New("promocast: not enough rights")

	// Client errors
	ErrCircuitOpen      = errors.New("promocast: circuit breaker open")
	ErrResponseTooLarge = errors.New("promocast: response too large")
	ErrRelayStatus      = errors.New("promocast: relay returned non-2xx status")

	// Validation errors
	ErrInvalidToken = errors.New("promocast: invalid bot token")
)

// APIError represents an ok:false envelope from the platform.
// Use errors.As() to extract details, errors.Is() to match sentinels.
type APIError struct {
	Op          string // operation that failed
	Code        int
	Description string
	Parameters  *ResponseParameters
	cause       error // underlying sentinel for errors.Is()
}

func (e *APIError) Error() string {
	return fmt.Sprintf("promocast: %s failed: %s (code=%d)", e.Op, e.Description, e.Code)
}

// Unwrap returns the underlying sentinel error for errors.Is() support.
func (e *APIError) Unwrap() error { return e.cause }

// MigrateTo returns the replacement chat id from a channel-migration
// error, or 0 when the envelope carried no migration hint.
func (e *APIError) MigrateTo() int64 {
	if e.Code == 400 && e.Parameters != nil {
		return e.Parameters.MigrateToChatID
	}
	return 0
}

// NewAPIError creates an APIError from an error envelope.
func NewAPIError(op string, env *Envelope) *APIError {
	return &APIError{
		Op:          op,
		Code:        env.ErrorCode,
		Description: env.Description,
		Parameters:  env.Parameters,
		cause:       detectSentinel(env.ErrorCode, env.Description),
	}
}

// detectSentinel maps platform error codes/descriptions to sentinel errors.
// Description matches take priority over the generic HTTP-class codes.
func detectSentinel(code int, desc string) error {
	descLower := strings.ToLower(desc)
	switch {
	case strings.Contains(descLower, "chat not found"):
		return ErrChatNotFound
	case strings.Contains(descLower, "bot was blocked"):
		return ErrBotBlocked
	case strings.Contains(descLower, "bot was kicked"):
		return ErrBotKicked
	case strings.Contains(descLower, "not enough rights"):
		return ErrNoRights
	}

	switch code {
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 429:
		return ErrTooManyRequests
	}

	return nil
}

// ValidationError represents a request validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("promocast: validation: %s - %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("promocast: config: %s - %s", e.Key, e.Message)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(key, message string) *ConfigError {
	return &ConfigError{Key: key, Message: message}
}
