package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/marycampus/advisor/pkg/vdom"
)

// DefaultClientScript is the path the live client is served from.
const DefaultClientScript = "/_advisor/advisor.js"

// DefaultLiveEndpoint is the WebSocket path the client dials.
const DefaultLiveEndpoint = "/_advisor/live"

// PageData carries everything needed to render a complete document.
type PageData struct {
	// Body is the root of the page content, layouts already applied.
	Body *vdom.VNode

	// Title is the document title.
	Title string

	// Meta, Links and Scripts populate the head.
	Meta    []MetaTag
	Links   []LinkTag
	Scripts []ScriptTag

	// Styles are inline CSS blocks; StyleSheets are external hrefs.
	Styles      []string
	StyleSheets []string

	// SessionID lets the live client resume the session that rendered
	// this page instead of starting a new one.
	SessionID string

	// CSRFToken is checked on uploads and on the socket handshake.
	CSRFToken string

	// ClientScript overrides the live client path. Empty means
	// DefaultClientScript; "-" disables the client entirely.
	ClientScript string

	// LiveEndpoint overrides the WebSocket path the client dials.
	LiveEndpoint string

	// Lang sets the html lang attribute. Defaults to "en".
	Lang string
}

// MetaTag is a meta element in the document head.
type MetaTag struct {
	Name      string
	Content   string
	Property  string
	HTTPEquiv string
	Charset   string
}

// LinkTag is a link element in the document head.
type LinkTag struct {
	Rel         string
	Href        string
	Type        string
	Sizes       string
	CrossOrigin string
	Media       string
}

// ScriptTag is a script element.
type ScriptTag struct {
	Src    string
	Type   string
	Defer  bool
	Async  bool
	Module bool
	Inline string
}

// RenderPage writes a complete HTML document.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, `<html lang="%s">`+"\n", escapeAttr(lang)); err != nil {
		return err
	}
	if err := r.renderHead(w, page); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "<body>\n"); err != nil {
		return err
	}
	if err := r.RenderToWriter(w, page.Body); err != nil {
		return err
	}
	if err := r.renderClientScript(w, page); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

func (r *Renderer) renderHead(w io.Writer, page PageData) error {
	if _, err := io.WriteString(w, "<head>\n"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `  <meta charset="utf-8">`+"\n"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `  <meta name="viewport" content="width=device-width, initial-scale=1">`+"\n"); err != nil {
		return err
	}
	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "  <title>%s</title>\n", escapeHTML(page.Title)); err != nil {
			return err
		}
	}
	for _, meta := range page.Meta {
		if err := renderMetaTag(w, meta); err != nil {
			return err
		}
	}
	for _, link := range page.Links {
		if err := renderLinkTag(w, link); err != nil {
			return err
		}
	}
	for _, href := range page.StyleSheets {
		if _, err := fmt.Fprintf(w, `  <link rel="stylesheet" href="%s">`+"\n", escapeAttr(href)); err != nil {
			return err
		}
	}
	for _, style := range page.Styles {
		if _, err := fmt.Fprintf(w, "  <style>%s</style>\n", style); err != nil {
			return err
		}
	}
	// Head scripts only; blocking scripts belong at the end of body.
	for _, script := range page.Scripts {
		if script.Defer || script.Async {
			if err := renderScriptTag(w, script); err != nil {
				return err
			}
		}
	}
	_, err := io.WriteString(w, "</head>\n")
	return err
}

func writeAttr(w io.Writer, name, value string) error {
	if value == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, ` %s="%s"`, name, escapeAttr(value))
	return err
}

func renderMetaTag(w io.Writer, meta MetaTag) error {
	if _, err := io.WriteString(w, "  <meta"); err != nil {
		return err
	}
	for _, attr := range []struct{ name, value string }{
		{"charset", meta.Charset},
		{"name", meta.Name},
		{"property", meta.Property},
		{"http-equiv", meta.HTTPEquiv},
		{"content", meta.Content},
	} {
		if err := writeAttr(w, attr.name, attr.value); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ">\n")
	return err
}

func renderLinkTag(w io.Writer, link LinkTag) error {
	if _, err := io.WriteString(w, "  <link"); err != nil {
		return err
	}
	for _, attr := range []struct{ name, value string }{
		{"rel", link.Rel},
		{"href", link.Href},
		{"type", link.Type},
		{"sizes", link.Sizes},
		{"crossorigin", link.CrossOrigin},
		{"media", link.Media},
	} {
		if err := writeAttr(w, attr.name, attr.value); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ">\n")
	return err
}

func renderScriptTag(w io.Writer, script ScriptTag) error {
	if _, err := io.WriteString(w, "  <script"); err != nil {
		return err
	}
	if err := writeAttr(w, "src", script.Src); err != nil {
		return err
	}
	if script.Module {
		if _, err := io.WriteString(w, ` type="module"`); err != nil {
			return err
		}
	} else if err := writeAttr(w, "type", script.Type); err != nil {
		return err
	}
	if script.Defer {
		if _, err := io.WriteString(w, " defer"); err != nil {
			return err
		}
	}
	if script.Async {
		if _, err := io.WriteString(w, " async"); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if script.Inline != "" {
		if _, err := io.WriteString(w, script.Inline); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</script>\n")
	return err
}

// renderClientScript injects the bootstrap globals and the live client.
// The client reads window.__ADVISOR__ to resume the rendering session
// over the socket.
func (r *Renderer) renderClientScript(w io.Writer, page PageData) error {
	if page.ClientScript == "-" {
		return nil
	}

	boot := struct {
		Session string `json:"session,omitempty"`
		CSRF    string `json:"csrf,omitempty"`
		Live    string `json:"live"`
	}{
		Session: page.SessionID,
		CSRF:    page.CSRFToken,
		Live:    page.LiveEndpoint,
	}
	if boot.Live == "" {
		boot.Live = DefaultLiveEndpoint
	}
	blob, err := json.Marshal(boot)
	if err != nil {
		return fmt.Errorf("render: marshal bootstrap config: %w", err)
	}
	if _, err := fmt.Fprintf(w, "  <script>window.__ADVISOR__=%s;</script>\n", blob); err != nil {
		return err
	}

	src := page.ClientScript
	if src == "" {
		src = DefaultClientScript
	}
	_, err = fmt.Fprintf(w, `  <script src="%s" defer></script>`+"\n", escapeAttr(src))
	return err
}
