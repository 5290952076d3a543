// Package toast provides moment feedback notifications.
//
// Sessions hold their page state server-side, so toasts live there
// too: a push appends to the session's tray, the next render paints
// it, and an expiry timer (or the dismiss button) removes it again.
// No protocol surface is involved; the tray rides the normal render
// and diff path.
//
// Handlers push:
//
//	func saveProfile(ctx server.Ctx) {
//	    if err := store.Save(ctx, form); err != nil {
//	        toast.Error(ctx, "Could not save your profile")
//	        return
//	    }
//	    toast.Success(ctx, "Profile saved")
//	}
//
// The layout mounts the tray once:
//
//	el.Div(el.Class("shell"),
//	    header(ctx),
//	    el.Main(el.ID("app-root"), children),
//	    toast.View(ctx),
//	)
//
// Toasts do not survive session resume; they are feedback about the
// moment, not state.
package toast
