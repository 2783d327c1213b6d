package broadcast

import "github.com/shopdesk/promocast/tg"

// Wire parameter shapes for the send operations. Field names follow the
// platform API; chat ids travel as strings, which the platform accepts
// for both numeric ids and @handles.

type textParams struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type photoParams struct {
	ChatID    string `json:"chat_id"`
	Photo     string `json:"photo"`
	Caption   string `json:"caption,omitempty"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type inputMediaPhoto struct {
	Type      string `json:"type"`
	Media     string `json:"media"`
	Caption   string `json:"caption,omitempty"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type mediaGroupParams struct {
	ChatID string            `json:"chat_id"`
	Media  []inputMediaPhoto `json:"media"`
}

type getChatParams struct {
	ChatID string `json:"chat_id"`
}

// buildCall selects the wire operation from the message shape:
// no images → sendMessage, one image → sendPhoto with the text as
// caption, two or more → sendMediaGroup where only the first item
// carries the caption. The parse mode defaults to HTML.
func buildCall(chatID string, msg Message) (string, any) {
	mode := msg.ParseMode.OrDefault().String()

	switch len(msg.Images) {
	case 0:
		return tg.OpSendMessage, textParams{
			ChatID:    chatID,
			Text:      msg.Text,
			ParseMode: mode,
		}
	case 1:
		return tg.OpSendPhoto, photoParams{
			ChatID:    chatID,
			Photo:     msg.Images[0],
			Caption:   msg.Text,
			ParseMode: mode,
		}
	default:
		media := make([]inputMediaPhoto, 0, len(msg.Images))
		for i, img := range msg.Images {
			item := inputMediaPhoto{Type: "photo", Media: img}
			if i == 0 {
				item.Caption = msg.Text
				item.ParseMode = mode
			}
			media = append(media, item)
		}
		return tg.OpSendMediaGroup, mediaGroupParams{
			ChatID: chatID,
			Media:  media,
		}
	}
}
