// Package render turns virtual DOM trees into HTML.
//
// The Renderer walks a materialized vdom tree and writes markup with
// deterministic attribute order, so the same tree always produces the
// same bytes. Elements carry their hydration id as a data-hid
// attribute; the live client uses those ids to apply patches and to
// route events back to the session that rendered the page.
//
// RenderPage wraps a rendered body in a full HTML document: head tags,
// inline styles, the session bootstrap globals, and the live client
// script. StreamingRenderer does the same against an
// http.ResponseWriter, flushing the head early.
package render
