package testutil

import (
	"encoding/json"
	"net/http"
)

// Envelope is the standard platform response format.
type Envelope struct {
	OK          bool        `json:"ok"`
	Result      any         `json:"result,omitempty"`
	ErrorCode   int         `json:"error_code,omitempty"`
	Description string      `json:"description,omitempty"`
	Parameters  *Parameters `json:"parameters,omitempty"`
}

// Parameters contains optional error parameters.
type Parameters struct {
	MigrateToChatID int64 `json:"migrate_to_chat_id,omitempty"`
	RetryAfter      int   `json:"retry_after,omitempty"`
}

// ReplyOK writes a successful platform response.
func ReplyOK(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Envelope{
		OK:     true,
		Result: result,
	})
}

// ReplyError writes a platform error envelope (with HTTP 200,
// the way the real API reports application-level failures).
func ReplyError(w http.ResponseWriter, code int, description string, params *Parameters) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Envelope{
		OK:          false,
		ErrorCode:   code,
		Description: description,
		Parameters:  params,
	})
}

// ReplyBadRequest writes a 400 bad request error envelope.
func ReplyBadRequest(w http.ResponseWriter, description string) {
	ReplyError(w, 400, "Bad Request: "+description, nil)
}

// ReplyForbidden writes a 403 forbidden error envelope (e.g. bot kicked).
func ReplyForbidden(w http.ResponseWriter, description string) {
	ReplyError(w, 403, "Forbidden: "+description, nil)
}

// ReplyMigrated writes the channel-migration error envelope: 400 with
// the replacement chat id in parameters.
func ReplyMigrated(w http.ResponseWriter, newChatID int64) {
	ReplyError(w, 400, "Bad Request: group chat was upgraded to a supergroup chat", &Parameters{
		MigrateToChatID: newChatID,
	})
}

// ReplyMessage writes a successful send response.
func ReplyMessage(w http.ResponseWriter, messageID int) {
	ReplyOK(w, map[string]any{
		"message_id": messageID,
		"date":       1234567890,
		"chat": map[string]any{
			"id":   TestChatID,
			"type": "private",
		},
	})
}

// ReplyMessages writes a successful sendMediaGroup response.
func ReplyMessages(w http.ResponseWriter, firstMessageID, count int) {
	msgs := make([]map[string]any, 0, count)
	for i := 0; i < count; i++ {
		msgs = append(msgs, map[string]any{
			"message_id": firstMessageID + i,
			"date":       1234567890,
			"chat": map[string]any{
				"id":   TestChatID,
				"type": "private",
			},
		})
	}
	ReplyOK(w, msgs)
}

// ReplyChat writes a successful getChat response.
func ReplyChat(w http.ResponseWriter, chatID int64, chatType, title string) {
	ReplyOK(w, map[string]any{
		"id":    chatID,
		"type":  chatType,
		"title": title,
	})
}
