package broadcast

import (
	"context"
	"log/slog"
)

// Dispatcher fans one message out to a set of department targets and
// aggregates per-department outcomes.
type Dispatcher struct {
	sender *Sender
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher using the given Sender.
func NewDispatcher(sender *Sender, opts ...Option) *Dispatcher {
	o := applyOptions(opts)
	return &Dispatcher{sender: sender, logger: o.logger}
}

// Dispatch sends msg to every eligible target, strictly in sequence.
//
// Ineligible targets are excluded before any network call: inactive ones
// silently, active ones without a chat identifier by name in the
// *ConfigurationError raised when the exclusion empties the set.
// A failing department never aborts the remaining ones. When every
// department fails the call returns *AggregateError; when only some fail
// the BatchResult reports it via FailCount and Partial().
//
// There is no rollback: departments already notified stay notified
// regardless of later failures.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message, targets []Target) (*BatchResult, error) {
	var eligible []Target
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
		return nil, &ConfigurationError{MissingChatID: missingChatID}
	}

	result := &BatchResult{}
	for _, t := range eligible {
		if err := d.sender.Send(ctx, t, msg); err != nil {
			d.logger.Error("broadcast to department failed",
				"department", t.Name,
				"error", err,
			)
			result.append(Outcome{Name: t.Name, Err: err.Error()})
			continue
		}
		result.append(Outcome{Name: t.Name, OK: true})
	}

	if result.SuccessCount == 0 {
		return nil, &AggregateError{Outcomes: result.Outcomes}
	}

	d.logger.Info("broadcast dispatched",
		"success", result.SuccessCount,
		"failed", result.FailCount,
	)
	return result, nil
}
