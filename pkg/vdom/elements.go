package vdom

// voidElements cannot have children and render without a closing tag.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement reports whether tag is an HTML void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// newElement builds an element node from constructor arguments.
// Accepted argument types: nil (skipped), Attr, []Attr, EventHandler,
// *VNode, []*VNode, Component, string (text shorthand).
func newElement(tag string, args []any) *VNode {
	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: make(Props),
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Allows conditional attributes and children.
		case Attr:
			node.setAttr(v)
		case []Attr:
			for _, a := range v {
				node.setAttr(a)
			}
		case EventHandler:
			node.Props[v.Event] = v.Handler
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			for _, child := range v {
				if child != nil {
					node.Children = append(node.Children, child)
				}
			}
		case Component:
			node.Children = append(node.Children, &VNode{Kind: KindComponent, Comp: v})
		case string:
			node.Children = append(node.Children, Text(v))
		}
	}
	return node
}

func (v *VNode) setAttr(a Attr) {
	if a.Key == "" {
		return
	}
	if a.Key == "key" {
		if s, ok := a.Value.(string); ok {
			v.Key = s
		}
		return
	}
	v.Props[a.Key] = a.Value
}

// Document structure

func Html(args ...any) *VNode   { return newElement("html", args) }
func Head(args ...any) *VNode   { return newElement("head", args) }
func Body(args ...any) *VNode   { return newElement("body", args) }
func Title(args ...any) *VNode  { return newElement("title", args) }
func Meta(args ...any) *VNode   { return newElement("meta", args) }
func Link(args ...any) *VNode   { return newElement("link", args) }
func Script(args ...any) *VNode { return newElement("script", args) }
func Style(args ...any) *VNode  { return newElement("style", args) }

// Sectioning

func Header(args ...any) *VNode  { return newElement("header", args) }
func Footer(args ...any) *VNode  { return newElement("footer", args) }
func Main(args ...any) *VNode    { return newElement("main", args) }
func Nav(args ...any) *VNode     { return newElement("nav", args) }
func Section(args ...any) *VNode { return newElement("section", args) }
func Article(args ...any) *VNode { return newElement("article", args) }
func Aside(args ...any) *VNode   { return newElement("aside", args) }

func H1(args ...any) *VNode { return newElement("h1", args) }
func H2(args ...any) *VNode { return newElement("h2", args) }
func H3(args ...any) *VNode { return newElement("h3", args) }
func H4(args ...any) *VNode { return newElement("h4", args) }
func H5(args ...any) *VNode { return newElement("h5", args) }
func H6(args ...any) *VNode { return newElement("h6", args) }

// Text content

func Div(args ...any) *VNode        { return newElement("div", args) }
func P(args ...any) *VNode          { return newElement("p", args) }
func Pre(args ...any) *VNode        { return newElement("pre", args) }
func Blockquote(args ...any) *VNode { return newElement("blockquote", args) }
func Ol(args ...any) *VNode         { return newElement("ol", args) }
func Ul(args ...any) *VNode         { return newElement("ul", args) }
func Li(args ...any) *VNode         { return newElement("li", args) }
func Dl(args ...any) *VNode         { return newElement("dl", args) }
func Dt(args ...any) *VNode         { return newElement("dt", args) }
func Dd(args ...any) *VNode         { return newElement("dd", args) }
func Figure(args ...any) *VNode     { return newElement("figure", args) }
func Figcaption(args ...any) *VNode { return newElement("figcaption", args) }
func Hr(args ...any) *VNode         { return newElement("hr", args) }

// Inline text

func A(args ...any) *VNode      { return newElement("a", args) }
func Em(args ...any) *VNode     { return newElement("em", args) }
func Strong(args ...any) *VNode { return newElement("strong", args) }
func Small(args ...any) *VNode  { return newElement("small", args) }
func Code(args ...any) *VNode   { return newElement("code", args) }
func Span(args ...any) *VNode   { return newElement("span", args) }
func Br(args ...any) *VNode     { return newElement("br", args) }
func Time(args ...any) *VNode   { return newElement("time", args) }
func Mark(args ...any) *VNode   { return newElement("mark", args) }
func Sub(args ...any) *VNode    { return newElement("sub", args) }
func Sup(args ...any) *VNode    { return newElement("sup", args) }

// Media

func Img(args ...any) *VNode { return newElement("img", args) }

// Forms

func Form(args ...any) *VNode     { return newElement("form", args) }
func Label(args ...any) *VNode    { return newElement("label", args) }
func Input(args ...any) *VNode    { return newElement("input", args) }
func Button(args ...any) *VNode   { return newElement("button", args) }
func Select(args ...any) *VNode   { return newElement("select", args) }
func Option(args ...any) *VNode   { return newElement("option", args) }
func Optgroup(args ...any) *VNode { return newElement("optgroup", args) }
func Textarea(args ...any) *VNode { return newElement("textarea", args) }
func Fieldset(args ...any) *VNode { return newElement("fieldset", args) }
func Legend(args ...any) *VNode   { return newElement("legend", args) }
func Datalist(args ...any) *VNode { return newElement("datalist", args) }
func Output(args ...any) *VNode   { return newElement("output", args) }
func Progress(args ...any) *VNode { return newElement("progress", args) }

// Tables

func Table(args ...any) *VNode   { return newElement("table", args) }
func Caption(args ...any) *VNode { return newElement("caption", args) }
func Thead(args ...any) *VNode   { return newElement("thead", args) }
func Tbody(args ...any) *VNode   { return newElement("tbody", args) }
func Tfoot(args ...any) *VNode   { return newElement("tfoot", args) }
func Tr(args ...any) *VNode      { return newElement("tr", args) }
func Th(args ...any) *VNode      { return newElement("th", args) }
func Td(args ...any) *VNode      { return newElement("td", args) }

// Interactive

func Details(args ...any) *VNode { return newElement("details", args) }
func Summary(args ...any) *VNode { return newElement("summary", args) }
func Dialog(args ...any) *VNode  { return newElement("dialog", args) }

// Element builds a node for an arbitrary tag. Useful for the rare tag
// without a dedicated constructor.
func Element(tag string, args ...any) *VNode { return newElement(tag, args) }
