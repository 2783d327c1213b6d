package schedule

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no record matches the given id.
var ErrNotFound = errors.New("promocast: scheduled send not found")

// Store persists scheduled sends. Implementations are injected into the
// Scheduler so tests can substitute an in-memory fake; the lifecycle is
// explicit: Init before first use, Close when the owner shuts down.
type Store interface {
	// Init prepares the backing storage (creates directories, opens the
	// database, runs migrations).
	Init(ctx context.Context) error

	// Append adds a new record.
	Append(ctx context.Context, rec ScheduledSend) error

	// List returns every record in creation order.
	List(ctx context.Context) ([]ScheduledSend, error)

	// SetStatus rewrites the status (and error message) of the record
	// with the given id. Returns ErrNotFound when no record matches.
	SetStatus(ctx context.Context, id string, status Status, errMsg string) error

	// Close releases the backing storage.
	Close() error
}
