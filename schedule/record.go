package schedule

import (
	"time"

	"github.com/shopdesk/promocast/broadcast"
)

// Status tracks the lifecycle of a scheduled send.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusSent      Status = "sent"
	StatusFailed    Status = "failed"
)

// ScheduledSend is one persisted deferred delivery. It is created once
// at enqueue time; Status and Error are the only mutable fields, written
// exactly once by the firing callback. Records are never deleted.
type ScheduledSend struct {
	ID        string            `json:"id"`
	Target    broadcast.Target  `json:"target"`
	Message   broadcast.Message `json:"message"`
	DueAt     time.Time         `json:"due_at"`
	Status    Status            `json:"status"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
