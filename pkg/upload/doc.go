// Package upload stores files posted over plain HTTP and hands their
// descriptors to live sessions.
//
// Live sessions speak a patch protocol, not multipart, so uploads
// arrive on a separate HTTP endpoint. The handler saves the file into
// a Store and runs the OnSaved hook, which is where the application
// bridges back into the session:
//
//	cfg := upload.DefaultConfig()
//	cfg.AllowedTypes = []string{"image/*"}
//	cfg.OnSaved = func(r *http.Request, f *upload.File) {
//	    if sess, ok := manager.Get(r.Header.Get("X-Advisor-Session")); ok {
//	        sess.Emit("profile:avatar", f)
//	    }
//	}
//	mux.Handle("POST /api/profile/avatar", upload.HandlerWithConfig(store, cfg))
//
// The page listens with Session.On("profile:avatar", ...) and the next
// render paints the new avatar.
//
// Two backends ship here: DiskStore for single-node deployments and
// S3Store for anything that needs to survive the node. Both enforce
// the size cap on the bytes actually read, not the declared size.
package upload
