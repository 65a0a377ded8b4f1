package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/morph/pkg/dom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output. Whitespace-only text is dropped.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string

	// State writes form controls with their live Props instead of their
	// attributes.
	State bool
}

// Renderer serializes dom trees to HTML. It is safe for concurrent use.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// HTML renders n with the default configuration.
func HTML(n *dom.Node) string {
	s, _ := NewRenderer(RendererConfig{}).RenderToString(n)
	return s
}

// RenderToString renders a tree to a string.
func (r *Renderer) RenderToString(n *dom.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a tree to w.
func (r *Renderer) RenderToWriter(w io.Writer, n *dom.Node) error {
	ew := &errWriter{w: w}
	r.renderNode(ew, n, 0)
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) str(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (r *Renderer) renderNode(w *errWriter, n *dom.Node, depth int) {
	if n == nil || w.err != nil {
		return
	}

	switch n.Kind {
	case dom.KindElement:
		r.renderElement(w, n, depth)
	case dom.KindText:
		r.renderText(w, n)
	case dom.KindFragment:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			r.renderNode(w, c, depth)
		}
	default:
		w.err = fmt.Errorf("render: unknown node kind: %d", n.Kind)
	}
}

func (r *Renderer) renderText(w *errWriter, n *dom.Node) {
	if r.config.Pretty && strings.TrimSpace(n.Text) == "" {
		return
	}
	if p := n.Parent; p != nil && p.Kind == dom.KindElement && p.Namespace == "" && rawTextElements[p.Tag] {
		w.str(n.Text)
		return
	}
	w.str(escapeHTML(n.Text))
}

func (r *Renderer) renderElement(w *errWriter, n *dom.Node, depth int) {
	tag := n.Tag
	html := n.Namespace == ""

	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	w.str("<")
	w.str(tag)
	for _, a := range r.attrsOf(n) {
		w.str(" ")
		w.str(a.Name)
		if a.Value == "" && html && booleanAttrs[a.Name] {
			continue
		}
		w.str(`="`)
		w.str(escapeAttr(a.Value))
		w.str(`"`)
	}
	w.str(">")

	if html && voidElements[tag] {
		if r.config.Pretty {
			w.str("\n")
		}
		return
	}

	block := r.config.Pretty && hasElementChild(n) && !(html && inlineElements[tag])
	if block {
		w.str("\n")
	}

	if r.config.State && html && tag == "textarea" {
		w.str(escapeHTML(n.Props.Value))
	} else {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			r.renderNode(w, c, depth+1)
		}
	}

	if block {
		r.writeIndent(w, depth)
	}
	w.str("</")
	w.str(tag)
	w.str(">")
	if r.config.Pretty {
		w.str("\n")
	}
}

// attrsOf returns the attributes to write for n.
func (r *Renderer) attrsOf(n *dom.Node) []dom.Attr {
	attrs := n.Attrs()
	if !r.config.State || n.Namespace != "" {
		return attrs
	}
	switch n.Tag {
	case "input":
		if _, ok := n.Attr("value"); ok || n.Props.Value != "" {
			attrs = withAttr(attrs, "value", n.Props.Value, true)
		}
		attrs = withAttr(attrs, "checked", "", n.Props.Checked)
	case "option":
		attrs = withAttr(attrs, "selected", "", n.Props.Selected)
	}
	return attrs
}

// withAttr sets or removes a plain attribute in a copied attribute list.
func withAttr(attrs []dom.Attr, name, value string, present bool) []dom.Attr {
	for i, a := range attrs {
		if a.Namespace != "" || a.Name != name {
			continue
		}
		if !present {
			return append(attrs[:i], attrs[i+1:]...)
		}
		attrs[i].Value = value
		return attrs
	}
	if present {
		attrs = append(attrs, dom.Attr{Name: name, Value: value})
	}
	return attrs
}

func (r *Renderer) writeIndent(w *errWriter, depth int) {
	for i := 0; i < depth; i++ {
		w.str(r.config.Indent)
	}
}

func hasElementChild(n *dom.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == dom.KindElement {
			return true
		}
	}
	return false
}
