package dom

import "strings"

// Attr is a single attribute. Name is the qualified name as written
// ("xlink:href"); namespaced attributes are identified by Namespace and
// local name, all others by Name.
type Attr struct {
	Namespace string
	Name      string
	Value     string
}

// LocalName returns the part of a namespaced attribute's name after its
// prefix. Attributes without a namespace return Name.
func (a Attr) LocalName() string {
	if a.Namespace == "" {
		return a.Name
	}
	if i := strings.IndexByte(a.Name, ':'); i >= 0 {
		return a.Name[i+1:]
	}
	return a.Name
}

// Same reports whether a and b name the same attribute.
func (a Attr) Same(b Attr) bool {
	if a.Namespace != b.Namespace {
		return false
	}
	if a.Namespace == "" {
		return a.Name == b.Name
	}
	return a.LocalName() == b.LocalName()
}

// Attrs returns a copy of n's attributes in order.
func (n *Node) Attrs() []Attr {
	if len(n.attrs) == 0 {
		return nil
	}
	out := make([]Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// AttrCount returns the number of attributes on n.
func (n *Node) AttrCount() int {
	return len(n.attrs)
}

// Attr returns the value of the attribute with the given qualified name.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrValue returns the attribute value, or "" when absent.
func (n *Node) AttrValue(name string) string {
	v, _ := n.Attr(name)
	return v
}

// HasAttr reports whether the attribute is present.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// ID returns the id attribute, or "".
func (n *Node) ID() string {
	if n == nil || n.Kind != KindElement {
		return ""
	}
	return n.AttrValue("id")
}

// SetAttr sets a non-namespaced attribute, appending it when absent.
func (n *Node) SetAttr(name, value string) {
	n.SetAttrNS("", name, value)
}

// RemoveAttr removes the attribute with the given qualified name.
// It reports whether an attribute was removed.
func (n *Node) RemoveAttr(name string) bool {
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return true
		}
	}
	return false
}

// AttrNS returns the value of the attribute identified by namespace and local
// name. An empty namespace looks up by name.
func (n *Node) AttrNS(ns, local string) (string, bool) {
	if i := n.indexNS(ns, local); i >= 0 {
		return n.attrs[i].Value, true
	}
	return "", false
}

// SetAttrNS sets the attribute identified by ns and the local part of
// qualifiedName. An existing attribute keeps its position but takes the new
// qualified name.
func (n *Node) SetAttrNS(ns, qualifiedName, value string) {
	a := Attr{Namespace: ns, Name: qualifiedName, Value: value}
	if i := n.indexNS(ns, a.LocalName()); i >= 0 {
		n.attrs[i] = a
		return
	}
	n.attrs = append(n.attrs, a)
}

// RemoveAttrNS removes the attribute identified by namespace and local name.
func (n *Node) RemoveAttrNS(ns, local string) bool {
	if i := n.indexNS(ns, local); i >= 0 {
		n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
		return true
	}
	return false
}

// LookupAttr finds the attribute on n that names the same attribute as a.
func (n *Node) LookupAttr(a Attr) (Attr, bool) {
	if i := n.indexNS(a.Namespace, a.LocalName()); i >= 0 {
		return n.attrs[i], true
	}
	return Attr{}, false
}

func (n *Node) indexNS(ns, local string) int {
	for i, a := range n.attrs {
		if a.Namespace != ns {
			continue
		}
		if ns == "" {
			if a.Name == local {
				return i
			}
		} else if a.LocalName() == local {
			return i
		}
	}
	return -1
}
