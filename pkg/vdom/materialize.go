package vdom

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/morph/pkg/dom"
)

// Materialize converts a VNode tree into a dom tree ready to be used as a
// reconcile target. Fragments and Raw nodes are flattened into their parent;
// a Fragment or Raw root yields a dom fragment. Live state of form controls
// is initialized from the resulting attributes.
//
// Prop values are converted with these rules: strings as is, true as an
// empty value (or "true" for aria-* and enumerated attributes), false as
// absent (or "false"), numbers in decimal, and anything else with %v.
// Function values are dropped.
func Materialize(v *VNode) *dom.Node {
	if v == nil {
		return nil
	}
	var root *dom.Node
	switch v.Kind {
	case KindElement, KindText:
		root = materialize(v, "", "")
	case KindComponent:
		if v.Comp == nil {
			return nil
		}
		return Materialize(v.Comp.Render())
	default:
		root = dom.NewFragment()
		appendTo(root, v, "", "")
	}
	if root != nil {
		dom.ResetState(root)
	}
	return root
}

// materialize converts an element or text node. parentNS and parentTag are
// used to inherit foreign namespaces.
func materialize(v *VNode, parentNS, parentTag string) *dom.Node {
	if v.Kind == KindText {
		return dom.NewText(v.Text)
	}
	ns := v.Namespace
	if ns == "" && inheritsNamespace(parentNS, parentTag) {
		ns = parentNS
	}
	el := dom.NewElementNS(ns, v.Tag)
	for _, name := range propOrder(v.Props) {
		value, ok := attrValue(name, v.Props[name])
		if !ok {
			continue
		}
		if el.Namespace == "" {
			name = strings.ToLower(name)
		}
		setAttr(el, name, value)
	}
	if v.Key != "" && !el.HasAttr("data-key") {
		el.SetAttr("data-key", v.Key)
	}
	for _, c := range v.Children {
		appendTo(el, c, el.Namespace, el.Tag)
	}
	return el
}

// appendTo appends the dom form of v to parent, flattening fragments,
// components and raw markup.
func appendTo(parent *dom.Node, v *VNode, ns, tag string) {
	if v == nil {
		return
	}
	switch v.Kind {
	case KindElement, KindText:
		parent.AppendChild(materialize(v, ns, tag))
	case KindFragment:
		for _, c := range v.Children {
			appendTo(parent, c, ns, tag)
		}
	case KindComponent:
		if v.Comp != nil {
			appendTo(parent, v.Comp.Render(), ns, tag)
		}
	case KindRaw:
		frag, err := dom.ParseFragment(v.Text)
		if err != nil {
			return
		}
		for frag.FirstChild != nil {
			parent.AppendChild(frag.FirstChild)
		}
	}
}

func inheritsNamespace(parentNS, parentTag string) bool {
	switch parentNS {
	case dom.NamespaceSVG:
		return parentTag != "foreignObject"
	case dom.NamespaceMathML:
		return parentTag != "annotation-xml"
	}
	return false
}

// propOrder returns id and class first, then the remaining props sorted.
func propOrder(props Props) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		if name == "id" || name == "class" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	var head []string
	for _, name := range []string{"id", "class"} {
		if _, ok := props[name]; ok {
			head = append(head, name)
		}
	}
	return append(head, names...)
}

// enumerated attributes take "true"/"false" instead of presence.
var enumerated = map[string]bool{
	"contenteditable": true,
	"draggable":       true,
	"spellcheck":      true,
}

func attrValue(name string, value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		if strings.HasPrefix(name, "aria-") || enumerated[strings.ToLower(name)] {
			return strconv.FormatBool(v), true
		}
		return "", v
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case fmt.Stringer:
		return v.String(), true
	}
	if reflect.TypeOf(value).Kind() == reflect.Func {
		return "", false
	}
	return fmt.Sprint(value), true
}

func setAttr(el *dom.Node, name, value string) {
	prefix, _, found := strings.Cut(name, ":")
	switch {
	case name == "xmlns" || (found && prefix == "xmlns"):
		el.SetAttrNS(dom.NamespaceXMLNS, name, value)
	case found && prefix == "xlink":
		el.SetAttrNS(dom.NamespaceXLink, name, value)
	case found && prefix == "xml":
		el.SetAttrNS(dom.NamespaceXML, name, value)
	default:
		el.SetAttr(name, value)
	}
}
