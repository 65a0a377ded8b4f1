package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/morph/internal/errors"
)

// ParseHTML parses a complete document and returns its root html element.
// Comments and doctypes are dropped; live state is initialized from
// attributes.
func ParseHTML(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.New("M003").Wrap(err)
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			n := convert(c)
			ResetState(n)
			return n, nil
		}
	}
	return nil, errors.New("M003").WithDetail("document has no root element")
}

// ParseFragment parses markup in a body context and returns a fragment
// holding the resulting nodes.
func ParseFragment(s string) (*Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), context)
	if err != nil {
		return nil, errors.New("M003").Wrap(err)
	}
	frag := NewFragment()
	for _, hn := range nodes {
		if n := convert(hn); n != nil {
			frag.AppendChild(n)
		}
	}
	ResetState(frag)
	return frag, nil
}

// ParseElement parses markup with surrounding whitespace trimmed and returns
// its first node, detached. It is the usual way to turn a string into a
// reconcile target.
func ParseElement(s string) (*Node, error) {
	frag, err := ParseFragment(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	first := frag.FirstChild
	if first == nil {
		return nil, errors.New("M003").WithDetail("markup produced no nodes")
	}
	first.Detach()
	return first, nil
}

// MustParseElement is like ParseElement but panics on error.
func MustParseElement(s string) *Node {
	n, err := ParseElement(s)
	if err != nil {
		panic(err)
	}
	return n
}

func convert(hn *html.Node) *Node {
	switch hn.Type {
	case html.TextNode:
		return NewText(hn.Data)
	case html.ElementNode:
		n := NewElementNS(elementNamespace(hn.Namespace), hn.Data)
		for _, a := range hn.Attr {
			ns, name := attrName(a)
			n.attrs = append(n.attrs, Attr{Namespace: ns, Name: name, Value: a.Val})
		}
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			if child := convert(c); child != nil {
				n.AppendChild(child)
			}
		}
		return n
	case html.DocumentNode:
		frag := NewFragment()
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			if child := convert(c); child != nil {
				frag.AppendChild(child)
			}
		}
		return frag
	default:
		// Comments and doctypes have no counterpart in the tree.
		return nil
	}
}

func elementNamespace(ns string) string {
	switch ns {
	case "svg":
		return NamespaceSVG
	case "math":
		return NamespaceMathML
	default:
		return ""
	}
}

func attrName(a html.Attribute) (ns, name string) {
	switch a.Namespace {
	case "xlink":
		return NamespaceXLink, "xlink:" + a.Key
	case "xml":
		return NamespaceXML, "xml:" + a.Key
	case "xmlns":
		if a.Key == "xmlns" {
			return NamespaceXMLNS, "xmlns"
		}
		return NamespaceXMLNS, "xmlns:" + a.Key
	case "":
		return "", a.Key
	default:
		return a.Namespace, a.Namespace + ":" + a.Key
	}
}
