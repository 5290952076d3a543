package routes

import (
	"context"

	"github.com/marycampus/advisor/app/faq"
	. "github.com/marycampus/advisor/el"
	"github.com/marycampus/advisor/internal/markdown"
	"github.com/marycampus/advisor/pkg/middleware"
	"github.com/marycampus/advisor/pkg/server"
	"github.com/marycampus/advisor/pkg/vdom"
)

// answerKey is the session key for the currently shown Q&A answer.
const answerKey = "qa.answer"

// LoadAskPage is the deferred loader for the Q&A route. The page only
// materializes when someone visits /qa; the knowledge base parses as
// part of the load, so a broken dataset fails the route instead of
// startup.
func LoadAskPage(ctx context.Context) (server.PageHandler, error) {
	if _, err := faq.Load(); err != nil {
		middleware.RecordLazyResolve("/qa", "failed")
		return nil, err
	}
	middleware.RecordLazyResolve("/qa", "resolved")
	return askPage, nil
}

// askPage renders the one-shot Q&A: pick or type a question, get the
// knowledge base answer.
func askPage(ctx server.Ctx, params map[string]string) vdom.Component {
	return vdom.Func(func() *VNode {
		entries, _ := faq.Load()

		return Section(Class("qa"),
			H1("Questions & answers"),
			P(Class("qa-intro"), "Search the knowledge base, or browse the common questions below."),

			Form(Class("qa-form"),
				OnSubmit(func(form server.FormData) {
					answerQuestion(ctx, form.Get("question"))
				}),
				Input(
					Type("search"),
					Name("question"),
					Placeholder("Type your question..."),
					AriaLabel("Question"),
				),
				Button(Type("submit"), "Ask"),
			),

			currentAnswer(ctx),

			Section(Class("qa-browse"),
				H2("Common questions"),
				Range(entries, func(e faq.Entry, _ int) *VNode {
					return Details(Class("qa-entry"), Key(e.ID),
						Summary(e.Question),
						Div(Class("qa-answer"), Raw(markdown.Render(e.Answer))),
					)
				}),
			),
		)
	})
}

func answerQuestion(ctx server.Ctx, question string) {
	if entry, ok := faq.Match(question); ok {
		ctx.SetValue(answerKey, entry.ID)
		return
	}
	ctx.SetValue(answerKey, "")
}

func currentAnswer(ctx server.Ctx) *VNode {
	id, asked := ctx.Value(answerKey).(string)
	if !asked {
		return nil
	}
	entry, ok := faq.ByID(id)
	if !ok {
		return Div(Class("qa-result qa-miss"),
			P("Nothing in the knowledge base matches that. An advisor can help in the chat."),
			A(Href("/"), "Open the chat"),
		)
	}
	return Div(Class("qa-result"),
		H2(entry.Question),
		Div(Class("qa-answer"), Raw(markdown.Render(entry.Answer))),
	)
}
