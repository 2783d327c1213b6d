package tg_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopdesk/promocast/tg"
)

func TestAPIError_Error(t *testing.T) {
	err := tg.NewAPIError(tg.OpSendMessage, &tg.Envelope{
		ErrorCode:   400,
		Description: "Bad Request: message text is empty",
	})
	assert.Equal(t, "promocast: sendMessage failed: Bad Request: message text is empty (code=400)", err.Error())
}

func TestAPIError_SentinelDetection(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		desc     string
		sentinel error
	}{
		{"chat not found", 400, "Bad Request: chat not found", tg.ErrChatNotFound},
		{"bot blocked", 403, "Forbidden: bot was blocked by the user", tg.ErrBotBlocked},
		{"bot kicked", 403, "Forbidden: bot was kicked from the supergroup chat", tg.ErrBotKicked},
		{"not enough rights", 400, "Bad Request: not enough rights to send text messages to the chat", tg.ErrNoRights},
		{"unauthorized", 401, "Unauthorized", tg.ErrUnauthorized},
		{"forbidden", 403, "Forbidden", tg.ErrForbidden},
		{"not found", 404, "Not Found", tg.ErrNotFound},
		{"too many requests", 429, "Too Many Requests: retry after 5", tg.ErrTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tg.NewAPIError(tg.OpSendMessage, &tg.Envelope{
				ErrorCode:   tt.code,
				Description: tt.desc,
			})
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestAPIError_NoSentinel(t *testing.T) {
	err := tg.NewAPIError(tg.OpSendPhoto, &tg.Envelope{
		ErrorCode:   400,
		Description: "Bad Request: wrong file identifier",
	})
	assert.Nil(t, errors.Unwrap(err))
}

func TestAPIError_MigrateTo(t *testing.T) {
	tests := []struct {
		name string
		env  *tg.Envelope
		want int64
	}{
		{
			name: "migration hint present",
			env: &tg.Envelope{
				ErrorCode:   400,
				Description: "Bad Request: group chat was upgraded to a supergroup chat",
				Parameters:  &tg.ResponseParameters{MigrateToChatID: -1001234567890},
			},
			want: -1001234567890,
		},
		{
			name: "no parameters",
			env:  &tg.Envelope{ErrorCode: 400, Description: "Bad Request"},
			want: 0,
		},
		{
			name: "parameters without migration",
			env: &tg.Envelope{
				ErrorCode:   429,
				Description: "Too Many Requests",
				Parameters:  &tg.ResponseParameters{RetryAfter: 5},
			},
			want: 0,
		},
		{
			name: "migration id on non-400 code is ignored",
			env: &tg.Envelope{
				ErrorCode:   500,
				Description: "Internal Server Error",
				Parameters:  &tg.ResponseParameters{MigrateToChatID: -100},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tg.NewAPIError(tg.OpSendMessage, tt.env)
			assert.Equal(t, tt.want, err.MigrateTo())
		})
	}
}

func TestAPIError_ErrorsAs(t *testing.T) {
	wrapped := errors.Join(errors.New("outer"), tg.NewAPIError(tg.OpGetChat, &tg.Envelope{
		ErrorCode:   400,
		Description: "Bad Request: chat not found",
	}))

	var apiErr *tg.APIError
	require.ErrorAs(t, wrapped, &apiErr)
	assert.Equal(t, tg.OpGetChat, apiErr.Op)
	assert.ErrorIs(t, wrapped, tg.ErrChatNotFound)
}

func TestValidationError(t *testing.T) {
	err := tg.NewValidationError("chat_id", "cannot be empty")
	assert.Equal(t, "promocast: validation: chat_id - cannot be empty", err.Error())
}

func TestConfigError(t *testing.T) {
	err := tg.NewConfigError("PROMOCAST_BOT_TOKEN", "is required")
	assert.Equal(t, "promocast: config: PROMOCAST_BOT_TOKEN - is required", err.Error())
}
