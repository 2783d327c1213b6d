package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopdesk/promocast/tg"
)

func TestBuildCall_NoImages(t *testing.T) {
	op, params := buildCall("123", Message{Text: "sale!"})

	require.Equal(t, tg.OpSendMessage, op)
	p := params.(textParams)
	assert.Equal(t, "123", p.ChatID)
	assert.Equal(t, "sale!", p.Text)
	assert.Equal(t, "HTML", p.ParseMode)
}

func TestBuildCall_SingleImage(t *testing.T) {
	op, params := buildCall("123", Message{
		Text:   "sale!",
		Images: []string{"https://cdn.example.com/a.jpg"},
	})

	require.Equal(t, tg.OpSendPhoto, op)
	p := params.(photoParams)
	assert.Equal(t, "https://cdn.example.com/a.jpg", p.Photo)
	assert.Equal(t, "sale!", p.Caption)
	assert.Equal(t, "HTML", p.ParseMode)
}

func TestBuildCall_MediaGroup_CaptionOnFirstItemOnly(t *testing.T) {
	op, params := buildCall("123", Message{
		Text: "sale!",
		Images: []string{
			"https://cdn.example.com/a.jpg",
			"https://cdn.example.com/b.jpg",
			"https://cdn.example.com/c.jpg",
		},
	})

	require.Equal(t, tg.OpSendMediaGroup, op)
	p := params.(mediaGroupParams)
	require.Len(t, p.Media, 3)

	assert.Equal(t, "sale!", p.Media[0].Caption)
	assert.Equal(t, "HTML", p.Media[0].ParseMode)
	for i, item := range p.Media {
		assert.Equal(t, "photo", item.Type, "item %d", i)
		if i > 0 {
			assert.Empty(t, item.Caption, "item %d must not carry a caption", i)
			assert.Empty(t, item.ParseMode, "item %d", i)
		}
	}
}

func TestBuildCall_ExplicitParseMode(t *testing.T) {
	_, params := buildCall("123", Message{Text: "sale!", ParseMode: tg.ParseModeMarkdown})
	assert.Equal(t, "Markdown", params.(textParams).ParseMode)
}
