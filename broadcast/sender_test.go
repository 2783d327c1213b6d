package broadcast_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopdesk/promocast/broadcast"
	"github.com/shopdesk/promocast/tg"
)

var dept = broadcast.Target{ID: "d1", Name: "Sales", ChatID: "-100200300", Active: true}

func TestSender_Success(t *testing.T) {
	fake := &fakeCaller{}
	s := broadcast.NewSender(fake)

	err := s.Send(context.Background(), dept, broadcast.Message{Text: "promo"})
	require.NoError(t, err)

	require.Len(t, fake.calls, 1)
	assert.Equal(t, tg.OpSendMessage, fake.calls[0].Op)
	assert.Equal(t, "-100200300", fake.calls[0].Body["chat_id"])
}

func TestSender_MigrationRetriesExactlyOnce(t *testing.T) {
	fake := &fakeCaller{}
	fake.handler = func(op string, body map[string]any) (*tg.Envelope, error) {
		if body["chat_id"] == "-100200300" {
			return nil, migratedError(op, -1001002003004)
		}
		return okEnvelope(map[string]any{"message_id": 1}), nil
	}
	s := broadcast.NewSender(fake)

	err := s.Send(context.Background(), dept, broadcast.Message{Text: "promo"})
	require.NoError(t, err)

	require.Len(t, fake.calls, 2)
	assert.Equal(t, "-100200300", fake.calls[0].Body["chat_id"])
	assert.Equal(t, "-1001002003004", fake.calls[1].Body["chat_id"])
	assert.Equal(t, fake.calls[0].Op, fake.calls[1].Op, "retry must repeat the identical operation")
}

func TestSender_MigrationRetryFailureIsTerminal(t *testing.T) {
	fake := &fakeCaller{}
	fake.handler = func(op string, body map[string]any) (*tg.Envelope, error) {
		// Every chat id reports a further migration: without the one-shot
		// guard this would loop forever.
		return nil, migratedError(op, -1009999999999)
	}
	s := broadcast.NewSender(fake)

	err := s.Send(context.Background(), dept, broadcast.Message{Text: "promo"})

	var migErr *broadcast.MigrationRetryError
	require.ErrorAs(t, err, &migErr)
	assert.Equal(t, "-100200300", migErr.OldChatID)
	assert.Equal(t, "-1009999999999", migErr.NewChatID)
	assert.Len(t, fake.calls, 2, "exactly one retry, never a loop")
}

func TestSender_TransportErrorNoRetry(t *testing.T) {
	fake := &fakeCaller{
		handler: func(op string, body map[string]any) (*tg.Envelope, error) {
			return nil, apiError(op, 403, "Forbidden: bot was kicked from the supergroup chat", nil)
		},
	}
	s := broadcast.NewSender(fake)

	err := s.Send(context.Background(), dept, broadcast.Message{Text: "promo"})

	var transportErr *broadcast.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 403, transportErr.Code)
	assert.Contains(t, transportErr.Description, "bot was kicked")
	assert.Len(t, fake.calls, 1, "application failures without a migration hint are not retried")
}

func TestSender_ResolvesHandleBeforeSending(t *testing.T) {
	fake := &fakeCaller{}
	fake.handler = func(op string, body map[string]any) (*tg.Envelope, error) {
		if op == tg.OpGetChat {
			return okEnvelope(map[string]any{"id": 555, "type": "channel"}), nil
		}
		return okEnvelope(map[string]any{"message_id": 1}), nil
	}
	s := broadcast.NewSender(fake)

	target := broadcast.Target{ID: "d2", Name: "News", ChatID: "@shopnews", Active: true}
	err := s.Send(context.Background(), target, broadcast.Message{Text: "promo"})
	require.NoError(t, err)

	require.Len(t, fake.calls, 2)
	assert.Equal(t, tg.OpGetChat, fake.calls[0].Op)
	assert.Equal(t, tg.OpSendMessage, fake.calls[1].Op)
	assert.Equal(t, "555", fake.calls[1].Body["chat_id"])
}
