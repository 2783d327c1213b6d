package broadcast_test

import (
	"context"
	"encoding/json"

	"github.com/shopdesk/promocast/tg"
)

// recordedCall is one operation seen by the fake gateway, with its
// parameters decoded for assertions.
type recordedCall struct {
	Op   string
	Body map[string]any
}

// fakeCaller implements gateway.Caller against a programmable handler.
type fakeCaller struct {
	calls   []recordedCall
	handler func(op string, body map[string]any) (*tg.Envelope, error)
}

func (f *fakeCaller) Call(ctx context.Context, op string, params any) (*tg.Envelope, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	f.calls = append(f.calls, recordedCall{Op: op, Body: body})

	if f.handler == nil {
		return okEnvelope(map[string]any{}), nil
	}
	return f.handler(op, body)
}

func (f *fakeCaller) callsFor(op string) []recordedCall {
	var out []recordedCall
	for _, c := range f.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// okEnvelope builds a success envelope around result.
func okEnvelope(result any) *tg.Envelope {
	raw, _ := json.Marshal(result)
	return &tg.Envelope{OK: true, Result: raw}
}

// apiError builds the error a gateway surfaces for an ok:false envelope.
func apiError(op string, code int, description string, params *tg.ResponseParameters) error {
	return tg.NewAPIError(op, &tg.Envelope{
		ErrorCode:   code,
		Description: description,
		Parameters:  params,
	})
}

// migratedError is the channel-migration error envelope.
func migratedError(op string, newChatID int64) error {
	return apiError(op, 400, "Bad Request: group chat was upgraded to a supergroup chat",
		&tg.ResponseParameters{MigrateToChatID: newChatID})
}
