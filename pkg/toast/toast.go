package toast

import (
	"fmt"
	"sync"
	"time"

	"github.com/marycampus/advisor/pkg/server"
	"github.com/marycampus/advisor/pkg/vdom"
)

// trayKey is the session value the tray lives under.
const trayKey = "advisor.toasts"

// DefaultTTL is how long a toast stays up before dismissing itself.
const DefaultTTL = 5 * time.Second

// Level grades a toast for styling.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Toast is one visible notification.
type Toast struct {
	ID      string
	Level   Level
	Title   string
	Message string
}

// tray holds a session's visible toasts. Expiry timers touch it from
// their own goroutine, so it locks.
type tray struct {
	mu     sync.Mutex
	nextID int
	items  []Toast
}

func (t *tray) push(level Level, title, message string) Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	item := Toast{
		ID:      fmt.Sprintf("toast-%d", t.nextID),
		Level:   level,
		Title:   title,
		Message: message,
	}
	t.items = append(t.items, item)
	return item
}

func (t *tray) remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, item := range t.items {
		if item.ID == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return
		}
	}
}

func (t *tray) snapshot() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Toast(nil), t.items...)
}

// trayFor returns the session's tray, creating it on first use. The
// tray does not survive session resume; toasts are moment feedback.
func trayFor(ctx server.Ctx) *tray {
	sess := ctx.Session()
	if sess == nil {
		return &tray{}
	}
	if t, ok := sess.Get(trayKey).(*tray); ok {
		return t
	}
	t := &tray{}
	sess.Set(trayKey, t)
	return t
}

// Show pushes a toast that dismisses itself after DefaultTTL. Without
// a session it is a no-op.
func Show(ctx server.Ctx, level Level, message string) {
	show(ctx, level, "", message, DefaultTTL)
}

// ShowFor pushes a toast with an explicit lifetime. A non-positive
// ttl makes it stay until dismissed.
func ShowFor(ctx server.Ctx, level Level, message string, ttl time.Duration) {
	show(ctx, level, "", message, ttl)
}

// WithTitle pushes a toast with a bold title above the message.
func WithTitle(ctx server.Ctx, level Level, title, message string) {
	show(ctx, level, title, message, DefaultTTL)
}

// Success shows a success toast.
//
//	toast.Success(ctx, "Profile saved")
func Success(ctx server.Ctx, message string) {
	Show(ctx, LevelSuccess, message)
}

// Error shows an error toast.
func Error(ctx server.Ctx, message string) {
	Show(ctx, LevelError, message)
}

// Warning shows a warning toast.
func Warning(ctx server.Ctx, message string) {
	Show(ctx, LevelWarning, message)
}

// Info shows an info toast.
func Info(ctx server.Ctx, message string) {
	Show(ctx, LevelInfo, message)
}

func show(ctx server.Ctx, level Level, title, message string, ttl time.Duration) {
	sess := ctx.Session()
	if sess == nil {
		return
	}
	item := trayFor(ctx).push(level, title, message)
	if ttl > 0 {
		id := item.ID
		time.AfterFunc(ttl, func() {
			sess.Dispatch(func() { Dismiss(ctx, id) })
		})
	}
}

// Dismiss removes one toast by ID.
func Dismiss(ctx server.Ctx, id string) {
	trayFor(ctx).remove(id)
}

// Items returns the visible toasts, oldest first.
func Items(ctx server.Ctx) []Toast {
	return trayFor(ctx).snapshot()
}

// View renders the tray. Layouts mount it once, near the end of the
// shell; every re-render picks up pushes and expiries.
func View(ctx server.Ctx) *vdom.VNode {
	return vdom.Element("div",
		vdom.ID("toast-tray"),
		vdom.Class("toast-tray"),
		vdom.AriaLive("polite"),
		vdom.Range(Items(ctx), func(item Toast, _ int) *vdom.VNode {
			return itemView(ctx, item)
		}),
	)
}

func itemView(ctx server.Ctx, item Toast) *vdom.VNode {
	id := item.ID
	return vdom.Element("div",
		vdom.Key(item.ID),
		vdom.Class("toast", "toast-"+string(item.Level)),
		vdom.Role("status"),
		vdom.If(item.Title != "",
			vdom.Element("strong", vdom.Class("toast-title"), vdom.Text(item.Title))),
		vdom.Element("span", vdom.Class("toast-message"), vdom.Text(item.Message)),
		vdom.Element("button",
			vdom.Class("toast-dismiss"),
			vdom.AriaLabel("Dismiss"),
			vdom.OnClick(func() { Dismiss(ctx, id) }),
			vdom.Text("×"),
		),
	)
}
