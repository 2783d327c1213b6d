package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shopdesk/promocast/broadcast"
)

// DefaultHorizon bounds how far ahead the scheduler arms in-process
// timers. Sends due beyond the horizon are persisted but never fire in
// this process lifetime.
const DefaultHorizon = 24 * time.Hour

const defaultSendTimeout = 2 * time.Minute

// Sender delivers one message to one target. *broadcast.Sender satisfies
// this; tests substitute a fake.
type Sender interface {
	Send(ctx context.Context, target broadcast.Target, msg broadcast.Message) error
}

// Scheduler persists deferred sends and fires in-process timers for the
// ones due within its horizon. It does not resume pending records after
// a restart.
type Scheduler struct {
	store  Store
	sender Sender
	logger *slog.Logger

	horizon     time.Duration
	sendTimeout time.Duration
	now         func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used for lifecycle and delivery events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHorizon overrides how far ahead timers are armed.
func WithHorizon(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.horizon = d
		}
	}
}

// WithSendTimeout bounds each delivery attempt made by a firing timer.
func WithSendTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.sendTimeout = d
		}
	}
}

// WithNow substitutes the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScheduler wires a Scheduler to its store and sender. The store must
// already be initialized.
func NewScheduler(store Store, sender Sender, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:       store,
		sender:      sender,
		logger:      slog.Default(),
		horizon:     DefaultHorizon,
		sendTimeout: defaultSendTimeout,
		now:         time.Now,
		timers:      make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule persists a deferred send and, when dueAt falls within the
// horizon, arms a timer for it. The persisted record's id is returned
// either way; a due time in the past or beyond the horizon only persists.
func (s *Scheduler) Schedule(ctx context.Context, target broadcast.Target, msg broadcast.Message, dueAt time.Time) (string, error) {
	now := s.now()
	rec := ScheduledSend{
		ID:        uuid.NewString(),
		Target:    target,
		Message:   msg,
		DueAt:     dueAt,
		Status:    StatusScheduled,
		CreatedAt: now,
	}
	if err := s.store.Append(ctx, rec); err != nil {
		return "", fmt.Errorf("persist scheduled send: %w", err)
	}

	delay := dueAt.Sub(now)
	if delay <= 0 || delay > s.horizon {
		s.logger.Info("scheduled send persisted without timer",
			slog.String("id", rec.ID),
			slog.String("department", target.Name),
			slog.Time("due_at", dueAt),
			slog.Duration("delay", delay))
		return rec.ID, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return rec.ID, nil
	}
	id := rec.ID
	s.timers[id] = time.AfterFunc(delay, func() { s.fire(id) })

	s.logger.Info("scheduled send armed",
		slog.String("id", id),
		slog.String("department", target.Name),
		slog.Time("due_at", dueAt))
	return id, nil
}

// ScheduleBatch enqueues msg for every eligible target, filtering the
// way a live dispatch does: inactive targets silently, active ones
// without a chat identifier by name in the *ConfigurationError raised
// when the exclusion empties the set. Each persisted department yields
// an Outcome with Scheduled set; a department whose record cannot be
// persisted fails alone, and *AggregateError is returned when none
// could be.
func (s *Scheduler) ScheduleBatch(ctx context.Context, targets []broadcast.Target, msg broadcast.Message, dueAt time.Time) (*broadcast.BatchResult, error) {
	var eligible []broadcast.Target
	var missingChatID []string
	for _, t := range targets {
		switch {
		case !t.Active:
		case t.ChatID == "":
			missingChatID = append(missingChatID, t.Name)
		default:
			eligible = append(eligible, t)
		}
	}

	if len(eligible) == 0 {
		return nil, &broadcast.ConfigurationError{MissingChatID: missingChatID}
	}

	result := &broadcast.BatchResult{}
	for _, t := range eligible {
		if _, err := s.Schedule(ctx, t, msg, dueAt); err != nil {
			s.logger.Error("scheduling for department failed",
				slog.String("department", t.Name),
				slog.Any("error", err))
			result.Outcomes = append(result.Outcomes, broadcast.Outcome{Name: t.Name, Err: err.Error()})
			result.FailCount++
			continue
		}
		result.Outcomes = append(result.Outcomes, broadcast.Outcome{Name: t.Name, OK: true, Scheduled: true})
		result.SuccessCount++
	}

	if result.SuccessCount == 0 {
		return nil, &broadcast.AggregateError{Outcomes: result.Outcomes}
	}
	return result, nil
}

// Pending reports how many timers are currently armed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close stops every armed timer. Records stay "scheduled" in the store.
// Close is idempotent.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// fire delivers the record with the given id and records the outcome
// exactly once.
func (s *Scheduler) fire(id string) {
	s.mu.Lock()
	delete(s.timers, id)
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
	defer cancel()

	rec, err := s.lookup(ctx, id)
	if err != nil {
		s.logger.Error("scheduled send lookup failed", slog.String("id", id), slog.Any("error", err))
		return
	}
	if rec.Status != StatusScheduled {
		s.logger.Warn("scheduled send already settled, skipping",
			slog.String("id", id), slog.String("status", string(rec.Status)))
		return
	}

	if err := s.sender.Send(ctx, rec.Target, rec.Message); err != nil {
		s.logger.Error("scheduled send failed",
			slog.String("id", id),
			slog.String("department", rec.Target.Name),
			slog.Any("error", err))
		if serr := s.store.SetStatus(ctx, id, StatusFailed, err.Error()); serr != nil {
			s.logger.Error("record scheduled send failure", slog.String("id", id), slog.Any("error", serr))
		}
		return
	}

	s.logger.Info("scheduled send delivered",
		slog.String("id", id),
		slog.String("department", rec.Target.Name))
	if serr := s.store.SetStatus(ctx, id, StatusSent, ""); serr != nil {
		s.logger.Error("record scheduled send success", slog.String("id", id), slog.Any("error", serr))
	}
}

func (s *Scheduler) lookup(ctx context.Context, id string) (ScheduledSend, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return ScheduledSend{}, err
	}
	for _, rec := range recs {
		if rec.ID == id {
			return rec, nil
		}
	}
	return ScheduledSend{}, ErrNotFound
}
