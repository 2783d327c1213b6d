package broadcast

import (
	"fmt"
	"strings"
)

// ConfigurationError means the broadcast could not start: either no
// departments were selected at all, or every selected department is
// missing a chat identifier. It is raised before any network call.
type ConfigurationError struct {
	// MissingChatID names active departments excluded for lacking a
	// chat identifier. Empty when the selection itself was empty.
	MissingChatID []string
}

func (e *ConfigurationError) Error() string {
	if len(e.MissingChatID) == 0 {
		return "promocast: no departments selected or configured for this broadcast"
	}
	return fmt.Sprintf("promocast: no departments selected or configured: missing chat id for %s",
		strings.Join(e.MissingChatID, ", "))
}

// ResolutionError means a department's chat identifier could not be
// resolved to a numeric chat id. Per-department; does not abort the batch.
type ResolutionError struct {
	Identifier string
	Err        error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("promocast: cannot resolve chat %q: %v (ensure the bot is a member of this chat)",
		e.Identifier, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// TransportError means the platform rejected the send with an
// application-level failure that carried no migration hint.
type TransportError struct {
	Op          string
	Code        int
	Description string
	Err         error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("promocast: %s rejected: %s (code=%d)", e.Op, e.Description, e.Code)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MigrationRetryError means the one-shot retry against a migrated chat id
// also failed. Terminal for that department; there is no further retry.
type MigrationRetryError struct {
	OldChatID string
	NewChatID string
	Err       error
}

func (e *MigrationRetryError) Error() string {
	return fmt.Sprintf("promocast: retry after chat migration %s -> %s failed: %v",
		e.OldChatID, e.NewChatID, e.Err)
}

func (e *MigrationRetryError) Unwrap() error { return e.Err }

// AggregateError means every department failed. The message names each
// department and its error so the admin UI can show the full picture.
type AggregateError struct {
	Outcomes []Outcome
}

func (e *AggregateError) Error() string {
	parts := make([]string, 0, len(e.Outcomes))
	for _, o := range e.Outcomes {
		parts = append(parts, o.Name+": "+o.Err)
	}
	return "promocast: broadcast failed for all departments: " + strings.Join(parts, "; ")
}
