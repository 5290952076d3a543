// Package chat holds the chat view components.
package chat

import (
	"time"

	. "github.com/marycampus/advisor/el"
	"github.com/marycampus/advisor/internal/icons"
	"github.com/marycampus/advisor/internal/markdown"
)

// Message is one chat entry. Body is markdown; rendering sanitizes it.
type Message struct {
	Role string    `json:"role"` // "student" or "advisor"
	Body string    `json:"body"`
	At   time.Time `json:"at"`
}

// MessageView renders one message bubble. Advisor messages carry the
// bot icon and render their markdown; student messages stay plain
// text.
func MessageView(m Message) *VNode {
	body := P(Class("msg-body"), m.Body)
	icon := icons.Icon("user")
	if m.Role == "advisor" {
		body = Div(Class("msg-body"), Raw(markdown.Render(m.Body)))
		icon = icons.Icon("logo")
	}
	return Div(Class("msg msg-"+m.Role),
		Span(Class("msg-icon"), AriaHidden(true), Raw(icon)),
		Div(Class("msg-content"),
			body,
			Time(Class("msg-time"), DateTime(m.At.Format(time.RFC3339)),
				Text(m.At.Format("15:04")),
			),
		),
	)
}

// Thread renders the message list, oldest first.
func Thread(messages []Message) *VNode {
	if len(messages) == 0 {
		return Div(Class("chat-empty"),
			Raw(icons.Icon("chat")),
			P("No messages yet. Ask your advisor anything."),
		)
	}
	return Div(Class("chat-thread"),
		Range(messages, func(m Message, i int) *VNode {
			return MessageView(m)
		}),
	)
}
