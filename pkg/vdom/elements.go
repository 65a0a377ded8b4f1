package vdom

import (
	"github.com/vango-dev/morph/pkg/dom"
)

// El creates an HTML element with an arbitrary tag.
//
// Arguments may be nil, Attr, []Attr, *VNode, []*VNode, Component or string.
// A string becomes a text child and a Component is rendered at
// materialization. Key attributes set VNode.Key instead of a prop.
func El(tag string, args ...any) *VNode {
	return build(&VNode{Kind: KindElement, Tag: tag}, args)
}

// ElNS creates an element in the given namespace.
func ElNS(namespace, tag string, args ...any) *VNode {
	return build(&VNode{Kind: KindElement, Tag: tag, Namespace: dom.NormalizeNamespace(namespace)}, args)
}

func build(node *VNode, args []any) *VNode {
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
		case Attr:
			node.setAttr(v)
		case []Attr:
			for _, a := range v {
				node.setAttr(a)
			}
		case *VNode:
			node.appendChild(v)
		case []*VNode:
			for _, c := range v {
				node.appendChild(c)
			}
		case Component:
			node.appendChild(&VNode{Kind: KindComponent, Comp: v})
		case string:
			node.appendChild(Text(v))
		}
	}
	return node
}

func (v *VNode) setAttr(a Attr) {
	if a.IsEmpty() {
		return
	}
	if a.Key == keyProp {
		if s, ok := a.Value.(string); ok {
			v.Key = s
		}
		return
	}
	if v.Props == nil {
		v.Props = make(Props)
	}
	if a.Key == "class" {
		if prev, ok := v.Props["class"].(string); ok && prev != "" {
			if s, ok := a.Value.(string); ok && s != "" {
				v.Props["class"] = prev + " " + s
				return
			}
		}
	}
	v.Props[a.Key] = a.Value
}

func (v *VNode) appendChild(c *VNode) {
	if c != nil {
		v.Children = append(v.Children, c)
	}
}

// Document

func Html(args ...any) *VNode  { return El("html", args...) }
func Head(args ...any) *VNode  { return El("head", args...) }
func Body(args ...any) *VNode  { return El("body", args...) }
func Title(args ...any) *VNode { return El("title", args...) }
func Meta(args ...any) *VNode  { return El("meta", args...) }
func Link(args ...any) *VNode  { return El("link", args...) }

// Sections and grouping

func Header(args ...any) *VNode     { return El("header", args...) }
func Footer(args ...any) *VNode     { return El("footer", args...) }
func Main(args ...any) *VNode       { return El("main", args...) }
func Nav(args ...any) *VNode        { return El("nav", args...) }
func Section(args ...any) *VNode    { return El("section", args...) }
func Article(args ...any) *VNode    { return El("article", args...) }
func Aside(args ...any) *VNode      { return El("aside", args...) }
func H1(args ...any) *VNode         { return El("h1", args...) }
func H2(args ...any) *VNode         { return El("h2", args...) }
func H3(args ...any) *VNode         { return El("h3", args...) }
func H4(args ...any) *VNode         { return El("h4", args...) }
func Div(args ...any) *VNode        { return El("div", args...) }
func P(args ...any) *VNode          { return El("p", args...) }
func Pre(args ...any) *VNode        { return El("pre", args...) }
func Blockquote(args ...any) *VNode { return El("blockquote", args...) }
func Ul(args ...any) *VNode         { return El("ul", args...) }
func Ol(args ...any) *VNode         { return El("ol", args...) }
func Li(args ...any) *VNode         { return El("li", args...) }
func Dl(args ...any) *VNode         { return El("dl", args...) }
func Dt(args ...any) *VNode         { return El("dt", args...) }
func Dd(args ...any) *VNode         { return El("dd", args...) }
func Hr(args ...any) *VNode         { return El("hr", args...) }

// Inline

func A(args ...any) *VNode      { return El("a", args...) }
func Span(args ...any) *VNode   { return El("span", args...) }
func Strong(args ...any) *VNode { return El("strong", args...) }
func Em(args ...any) *VNode     { return El("em", args...) }
func B(args ...any) *VNode      { return El("b", args...) }
func I(args ...any) *VNode      { return El("i", args...) }
func Small(args ...any) *VNode  { return El("small", args...) }
func Code(args ...any) *VNode   { return El("code", args...) }
func Br(args ...any) *VNode     { return El("br", args...) }

// Forms

func Form(args ...any) *VNode     { return El("form", args...) }
func Input(args ...any) *VNode    { return El("input", args...) }
func Textarea(args ...any) *VNode { return El("textarea", args...) }
func Select(args ...any) *VNode   { return El("select", args...) }
func Option(args ...any) *VNode   { return El("option", args...) }
func Optgroup(args ...any) *VNode { return El("optgroup", args...) }
func Button(args ...any) *VNode   { return El("button", args...) }
func Label(args ...any) *VNode    { return El("label", args...) }
func Fieldset(args ...any) *VNode { return El("fieldset", args...) }
func Legend(args ...any) *VNode   { return El("legend", args...) }

// Tables

func Table(args ...any) *VNode { return El("table", args...) }
func Thead(args ...any) *VNode { return El("thead", args...) }
func Tbody(args ...any) *VNode { return El("tbody", args...) }
func Tr(args ...any) *VNode    { return El("tr", args...) }
func Th(args ...any) *VNode    { return El("th", args...) }
func Td(args ...any) *VNode    { return El("td", args...) }

// Media and interactive

func Img(args ...any) *VNode     { return El("img", args...) }
func Video(args ...any) *VNode   { return El("video", args...) }
func Audio(args ...any) *VNode   { return El("audio", args...) }
func Details(args ...any) *VNode { return El("details", args...) }
func Summary(args ...any) *VNode { return El("summary", args...) }
func Dialog(args ...any) *VNode  { return El("dialog", args...) }
func Script(args ...any) *VNode  { return El("script", args...) }
func Style(args ...any) *VNode   { return El("style", args...) }

// SVG elements. Descendants created with El inherit the SVG namespace when
// materialized, except below foreignObject.

func Svg(args ...any) *VNode    { return ElNS(dom.NamespaceSVG, "svg", args...) }
func G(args ...any) *VNode      { return ElNS(dom.NamespaceSVG, "g", args...) }
func Path(args ...any) *VNode   { return ElNS(dom.NamespaceSVG, "path", args...) }
func Circle(args ...any) *VNode { return ElNS(dom.NamespaceSVG, "circle", args...) }
func Rect(args ...any) *VNode   { return ElNS(dom.NamespaceSVG, "rect", args...) }
func Use(args ...any) *VNode    { return ElNS(dom.NamespaceSVG, "use", args...) }
