package tg

import "encoding/json"

// Operation names consumed by the dispatcher. The platform routes by
// method name in the URL path (direct mode) or by the "operation" field
// of a relay request (relay mode).
const (
	OpSendMessage    = "sendMessage"
	OpSendPhoto      = "sendPhoto"
	OpSendMediaGroup = "sendMediaGroup"
	OpGetChat        = "getChat"
)

// Envelope is the platform's standard response wrapper.
// A 2xx HTTP status does not imply success: OK must be inspected,
// and on failure ErrorCode/Description/Parameters describe the problem.
type Envelope struct {
	OK          bool                `json:"ok"`
	Result      json.RawMessage     `json:"result,omitempty"`
	ErrorCode   int                 `json:"error_code,omitempty"`
	Description string              `json:"description,omitempty"`
	Parameters  *ResponseParameters `json:"parameters,omitempty"`
}

// ResponseParameters carries the optional hints the platform attaches to
// error envelopes. MigrateToChatID is set when a group chat was upgraded
// and all further calls must target the new id.
type ResponseParameters struct {
	MigrateToChatID int64 `json:"migrate_to_chat_id,omitempty"`
	RetryAfter      int   `json:"retry_after,omitempty"`
}
