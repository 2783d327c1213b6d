package broadcast_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopdesk/promocast/broadcast"
	"github.com/shopdesk/promocast/tg"
)

func newDispatcher(fake *fakeCaller) *broadcast.Dispatcher {
	return broadcast.NewDispatcher(broadcast.NewSender(fake))
}

func targets(ts ...broadcast.Target) []broadcast.Target { return ts }

func TestDispatch_AllSucceed(t *testing.T) {
	fake := &fakeCaller{}
	d := newDispatcher(fake)

	// Two active departments, a three-image promotion.
	msg := broadcast.Message{
		Text:   "spring sale",
		Images: []string{"a.jpg", "b.jpg", "c.jpg"},
	}
	result, err := d.Dispatch(context.Background(), msg, targets(
		broadcast.Target{Name: "Sales", ChatID: "-100", Active: true},
		broadcast.Target{Name: "Support", ChatID: "-200", Active: true},
	))

	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 0, result.FailCount)
	assert.False(t, result.Partial())
	assert.Len(t, fake.callsFor(tg.OpSendMediaGroup), 2)
}

func TestDispatch_PartialFailureContinues(t *testing.T) {
	fake := &fakeCaller{}
	fake.handler = func(op string, body map[string]any) (*tg.Envelope, error) {
		if body["chat_id"] == "-200" {
			return nil, apiError(op, 403, "Forbidden: bot was kicked from the supergroup chat", nil)
		}
		return okEnvelope(map[string]any{"message_id": 1}), nil
	}
	d := newDispatcher(fake)

	result, err := d.Dispatch(context.Background(), broadcast.Message{Text: "promo"}, targets(
		broadcast.Target{Name: "A", ChatID: "-100", Active: true},
		broadcast.Target{Name: "B", ChatID: "-200", Active: true},
		broadcast.Target{Name: "C", ChatID: "-300", Active: true},
	))

	require.NoError(t, err, "partial failure is a result, not an error")
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailCount)
	assert.True(t, result.Partial())

	// B failed but C was still attempted, in order.
	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{
		result.Outcomes[0].Name, result.Outcomes[1].Name, result.Outcomes[2].Name,
	})
	assert.True(t, result.Outcomes[0].OK)
	assert.False(t, result.Outcomes[1].OK)
	assert.Contains(t, result.Outcomes[1].Err, "bot was kicked")
	assert.True(t, result.Outcomes[2].OK)

	assert.Contains(t, result.Summary(), "failed for B")
}

func TestDispatch_AllFailAggregates(t *testing.T) {
	fake := &fakeCaller{
		handler: func(op string, body map[string]any) (*tg.Envelope, error) {
			return nil, apiError(op, 400, "Bad Request: chat not found", nil)
		},
	}
	d := newDispatcher(fake)

	_, err := d.Dispatch(context.Background(), broadcast.Message{Text: "promo"}, targets(
		broadcast.Target{Name: "A", ChatID: "-100", Active: true},
		broadcast.Target{Name: "B", ChatID: "-200", Active: true},
	))

	var aggErr *broadcast.AggregateError
	require.ErrorAs(t, err, &aggErr)
	assert.Len(t, aggErr.Outcomes, 2)
	assert.Contains(t, err.Error(), "A:")
	assert.Contains(t, err.Error(), "B:")
}

func TestDispatch_EmptySelection(t *testing.T) {
	fake := &fakeCaller{}
	d := newDispatcher(fake)

	_, err := d.Dispatch(context.Background(), broadcast.Message{Text: "promo"}, nil)

	var cfgErr *broadcast.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, cfgErr.MissingChatID)
	assert.Empty(t, fake.calls, "must fail before any network call")
}

func TestDispatch_AllMissingChatIDs(t *testing.T) {
	fake := &fakeCaller{}
	d := newDispatcher(fake)

	_, err := d.Dispatch(context.Background(), broadcast.Message{Text: "promo"}, targets(
		broadcast.Target{Name: "Sales", Active: true},
		broadcast.Target{Name: "Support", Active: true},
		broadcast.Target{Name: "Logistics", Active: true},
	))

	var cfgErr *broadcast.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"Sales", "Support", "Logistics"}, cfgErr.MissingChatID)
	assert.Contains(t, err.Error(), "no departments selected or configured")
	assert.Contains(t, err.Error(), "Sales, Support, Logistics")
	assert.Empty(t, fake.calls)
}

func TestDispatch_InactiveTargetsExcludedSilently(t *testing.T) {
	fake := &fakeCaller{}
	d := newDispatcher(fake)

	result, err := d.Dispatch(context.Background(), broadcast.Message{Text: "promo"}, targets(
		broadcast.Target{Name: "Active", ChatID: "-100", Active: true},
		broadcast.Target{Name: "Disabled", ChatID: "-200", Active: false},
	))

	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, "Active", result.Outcomes[0].Name)
}
