// Package server runs live rendering sessions.
//
// A session is born when an HTTP request server-renders a page: the
// session mounts the route, retains the rendered tree, and the SSR
// document carries the session ID. The embedded client then dials the
// live WebSocket endpoint and attaches to that session. From then on
// every interaction arrives as an event frame and every UI change
// leaves as a patch frame: the session re-renders the current route,
// diffs against the retained tree, and streams the minimal mutations.
//
// All handler execution for one session is serialized on its event
// loop goroutine. Dispatch is the only entry for other goroutines to
// run code inside a session.
package server
