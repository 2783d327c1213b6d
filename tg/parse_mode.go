package tg

// ParseMode defines the text formatting mode for outgoing messages.
type ParseMode string

// Supported parse modes. Promotion bodies default to HTML.
const (
	ParseModeHTML       ParseMode = "HTML"
	ParseModeMarkdown   ParseMode = "Markdown"
	ParseModeMarkdownV2 ParseMode = "MarkdownV2"
)

// String returns the parse mode string value.
func (p ParseMode) String() string {
	return string(p)
}

// IsValid returns true if the parse mode is supported by the platform.
// The empty value is valid and means "use the default".
func (p ParseMode) IsValid() bool {
	switch p {
	case ParseModeHTML, ParseModeMarkdown, ParseModeMarkdownV2, "":
		return true
	default:
		return false
	}
}

// OrDefault returns p, or ParseModeHTML when p is unset.
func (p ParseMode) OrDefault() ParseMode {
	if p == "" {
		return ParseModeHTML
	}
	return p
}
