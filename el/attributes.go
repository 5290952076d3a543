// This file re-exports vdom attribute helpers for the el package.
package el

import "github.com/marycampus/advisor/pkg/vdom"

func ID(id string) Attr {
	return vdom.ID(id)
}
func Class(classes ...string) Attr {
	return vdom.Class(classes...)
}
func StyleAttr(style string) Attr {
	return vdom.StyleAttr(style)
}
func TitleAttr(title string) Attr {
	return vdom.TitleAttr(title)
}
func Lang(lang string) Attr {
	return vdom.Lang(lang)
}
func Data(key, value string) Attr {
	return vdom.Data(key, value)
}
func Role(role string) Attr {
	return vdom.Role(role)
}
func AriaLabel(label string) Attr {
	return vdom.AriaLabel(label)
}
func AriaHidden(hidden bool) Attr {
	return vdom.AriaHidden(hidden)
}
func AriaLive(mode string) Attr {
	return vdom.AriaLive(mode)
}
func AriaCurrent(value string) Attr {
	return vdom.AriaCurrent(value)
}
func TabIndex(index int) Attr {
	return vdom.TabIndex(index)
}
func Hidden() Attr {
	return vdom.Hidden()
}
func Href(url string) Attr {
	return vdom.Href(url)
}
func Target(target string) Attr {
	return vdom.Target(target)
}
func Rel(rel string) Attr {
	return vdom.Rel(rel)
}
func Name(name string) Attr {
	return vdom.Name(name)
}
func Value(value string) Attr {
	return vdom.Value(value)
}
func Type(t string) Attr {
	return vdom.Type(t)
}
func Placeholder(text string) Attr {
	return vdom.Placeholder(text)
}
func Disabled() Attr {
	return vdom.Disabled()
}
func Readonly() Attr {
	return vdom.Readonly()
}
func Required() Attr {
	return vdom.Required()
}
func Checked() Attr {
	return vdom.Checked()
}
func Selected() Attr {
	return vdom.Selected()
}
func Autocomplete(value string) Attr {
	return vdom.Autocomplete(value)
}
func Autofocus() Attr {
	return vdom.Autofocus()
}
func MaxLength(n int) Attr {
	return vdom.MaxLength(n)
}
func Accept(types string) Attr {
	return vdom.Accept(types)
}
func Rows(n int) Attr {
	return vdom.Rows(n)
}
func Cols(n int) Attr {
	return vdom.Cols(n)
}
func For(id string) Attr {
	return vdom.For(id)
}
func Action(url string) Attr {
	return vdom.Action(url)
}
func Method(method string) Attr {
	return vdom.Method(method)
}
func Enctype(enctype string) Attr {
	return vdom.Enctype(enctype)
}
func Src(url string) Attr {
	return vdom.Src(url)
}
func Alt(text string) Attr {
	return vdom.Alt(text)
}
func Width(w int) Attr {
	return vdom.Width(w)
}
func Height(h int) Attr {
	return vdom.Height(h)
}
func Loading(mode string) Attr {
	return vdom.Loading(mode)
}
func Charset(cs string) Attr {
	return vdom.Charset(cs)
}
func Content(c string) Attr {
	return vdom.Content(c)
}
func Defer() Attr {
	return vdom.Defer()
}
func Open() Attr {
	return vdom.Open()
}
func DateTime(value string) Attr {
	return vdom.DateTime(value)
}
