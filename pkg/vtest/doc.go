// Package vtest holds test helpers for page and component code: a
// fluent context builder over the server's test context, and render
// assertions that work on the HTML a component produces.
//
//	ctx := vtest.NewCtx().Path("/profile").Value("profile", p).Build()
//	html := vtest.RenderHTML(t, routes.ProfilePage(ctx, nil))
//	vtest.AssertContains(t, html, `value="Rae"`)
package vtest
