package routes

import (
	"strings"
	"time"

	chatui "github.com/marycampus/advisor/app/components/chat"
	"github.com/marycampus/advisor/app/faq"
	. "github.com/marycampus/advisor/el"
	"github.com/marycampus/advisor/internal/icons"
	"github.com/marycampus/advisor/pkg/server"
	"github.com/marycampus/advisor/pkg/vdom"
)

// messagesKey is the session key holding the chat thread.
const messagesKey = "chat.messages"

// ChatPage is the index route: the advising chat. The thread lives in
// session state so it survives navigation and resume.
func ChatPage(ctx server.Ctx, params map[string]string) vdom.Component {
	return vdom.Func(func() *VNode {
		messages := loadMessages(ctx)

		return Section(Class("chat"),
			H1("Advising chat"),
			chatui.Thread(messages),
			Form(Class("chat-form"),
				OnSubmit(func(form server.FormData) {
					sendMessage(ctx, form.Get("message"))
				}),
				Input(
					Type("text"),
					Name("message"),
					Placeholder("Ask a question..."),
					Autocomplete("off"),
					AriaLabel("Message"),
				),
				Button(Type("submit"), Class("chat-send"),
					Raw(icons.Icon("send")),
					Span("Send"),
				),
			),
		)
	})
}

func loadMessages(ctx server.Ctx) []chatui.Message {
	if msgs, ok := ctx.Value(messagesKey).([]chatui.Message); ok {
		return msgs
	}
	return nil
}

// sendMessage appends the student message and the advisor's reply to
// the thread. The reply comes from the knowledge base; with no match
// it asks the student to rephrase.
func sendMessage(ctx server.Ctx, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	now := time.Now()
	msgs := append(loadMessages(ctx), chatui.Message{
		Role: "student",
		Body: text,
		At:   now,
	})
	msgs = append(msgs, chatui.Message{
		Role: "advisor",
		Body: advisorReply(text),
		At:   now,
	})
	ctx.SetValue(messagesKey, msgs)
}

func advisorReply(question string) string {
	if entry, ok := faq.Match(question); ok {
		return entry.Answer
	}
	return "I don't have an answer for that yet. Try the [Q&A page](/qa), " +
		"or book a meeting with your advisor from your [profile](/profile)."
}
