package broadcast

import (
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/shopdesk/promocast/tg"
)

// Message is a rendered promotion ready for dispatch. Images may be
// empty; the transport operation is selected from their count.
type Message struct {
	Text      string       `json:"text"`
	Images    []string     `json:"images,omitempty"`
	ParseMode tg.ParseMode `json:"parse_mode,omitempty"`
}

// Promotion is the product promotion the admin composes. Render produces
// the outgoing message; the promotion itself is never mutated.
type Promotion struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	OldPrice    float64  `json:"old_price,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// Render formats the promotion as an HTML message. Field values are
// escaped, so titles and descriptions may contain <, > and &.
func (p Promotion) Render() Message {
	var b strings.Builder

	b.WriteString("🛍️ <b>" + html.EscapeString(p.Title) + "</b>\n")
	if p.Description != "" {
		b.WriteString("\n" + html.EscapeString(p.Description) + "\n")
	}
	if p.OldPrice > p.Price && p.OldPrice > 0 {
		fmt.Fprintf(&b, "\n💰 <b>Price:</b> <s>$%.2f</s> $%.2f", p.OldPrice, p.Price)
	} else {
		fmt.Fprintf(&b, "\n💰 <b>Price:</b> $%.2f", p.Price)
	}

	return Message{
		Text:      b.String(),
		Images:    slices.Clone(p.Images),
		ParseMode: tg.ParseModeHTML,
	}
}

// Target is one configured department chat the broadcast can be sent to.
// ChatID is either a numeric platform chat id or a human-readable handle
// that needs resolution.
type Target struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	ChatID string `json:"chat_id"`
	Active bool   `json:"active"`
}

// Eligible reports whether the target can receive a broadcast.
func (t Target) Eligible() bool {
	return t.Active && t.ChatID != ""
}

// Outcome is the result for one attempted department. It is never
// mutated after creation.
type Outcome struct {
	Name      string `json:"name"`
	OK        bool   `json:"ok"`
	Scheduled bool   `json:"scheduled,omitempty"`
	Err       string `json:"error,omitempty"`
}

// BatchResult aggregates per-department outcomes for one dispatch call.
// Outcome order matches the (filtered) input target order.
type BatchResult struct {
	Outcomes     []Outcome `json:"outcomes"`
	SuccessCount int       `json:"success_count"`
	FailCount    int       `json:"fail_count"`
}

func (b *BatchResult) append(o Outcome) {
	b.Outcomes = append(b.Outcomes, o)
	if o.OK {
		b.SuccessCount++
	} else {
		b.FailCount++
	}
}

// Partial reports whether some, but not all, departments failed.
func (b *BatchResult) Partial() bool {
	return b.FailCount > 0 && b.SuccessCount > 0
}

// Summary renders the result the way the admin UI reports it.
func (b *BatchResult) Summary() string {
	if b.FailCount == 0 {
		return fmt.Sprintf("sent to %d department(s)", b.SuccessCount)
	}
	var failed []string
	for _, o := range b.Outcomes {
		if !o.OK {
			failed = append(failed, o.Name)
		}
	}
	return fmt.Sprintf("sent to %d department(s), failed for %s",
		b.SuccessCount, strings.Join(failed, ", "))
}
