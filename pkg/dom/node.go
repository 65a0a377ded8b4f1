package dom

import (
	"strconv"
	"strings"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement  Kind = iota // <div>, <svg>, etc.
	KindText                 // Character data
	KindFragment             // Transparent grouping, only meaningful as a root
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// Well-known namespace URIs.
const (
	NamespaceHTML   = "http://www.w3.org/1999/xhtml"
	NamespaceSVG    = "http://www.w3.org/2000/svg"
	NamespaceMathML = "http://www.w3.org/1998/Math/MathML"
	NamespaceXLink  = "http://www.w3.org/1999/xlink"
	NamespaceXML    = "http://www.w3.org/XML/1998/namespace"
	NamespaceXMLNS  = "http://www.w3.org/2000/xmlns/"
)

// NormalizeNamespace maps the HTML namespace URI to the empty string.
// Element namespaces are stored and compared in normalized form.
func NormalizeNamespace(ns string) string {
	if ns == NamespaceHTML {
		return ""
	}
	return ns
}

// Props holds the live state of an element that is not reflected by its
// attributes once a user has interacted with it.
type Props struct {
	Value         string // input and textarea
	Checked       bool   // checkbox and radio inputs
	Selected      bool   // option
	Disabled      bool   // form controls
	SelectedIndex int    // select, -1 when nothing is selected
}

// Node is a single node of a tree.
type Node struct {
	Kind      Kind   // Node type
	Tag       string // Element tag name, lower-cased in the HTML namespace
	Namespace string // Element namespace URI, empty for HTML
	Text      string // Character data for KindText
	Props     Props  // Live element state

	Parent      *Node
	FirstChild  *Node
	LastChild   *Node
	PrevSibling *Node
	NextSibling *Node

	attrs []Attr
}

// NewElement creates an HTML element. The tag is lower-cased.
func NewElement(tag string) *Node {
	return NewElementNS("", tag)
}

// NewElementNS creates an element in the given namespace. Tags in the HTML
// namespace are lower-cased; foreign tags keep their case (foreignObject).
func NewElementNS(ns, tag string) *Node {
	ns = NormalizeNamespace(ns)
	if ns == "" {
		tag = strings.ToLower(tag)
	}
	n := &Node{Kind: KindElement, Tag: tag, Namespace: ns}
	if ns == "" && tag == "select" {
		n.Props.SelectedIndex = -1
	}
	return n
}

// NewText creates a text node.
func NewText(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// NewFragment creates an empty fragment.
func NewFragment() *Node {
	return &Node{Kind: KindFragment}
}

// IsElement reports whether n is an element with the given tag in the HTML
// namespace. The comparison is case-insensitive.
func (n *Node) IsElement(tag string) bool {
	return n != nil && n.Kind == KindElement && n.Namespace == "" && strings.EqualFold(n.Tag, tag)
}

// AppendChild adds c as the last child of n, detaching it first if needed.
func (n *Node) AppendChild(c *Node) {
	n.InsertBefore(c, nil)
}

// InsertBefore inserts c as a child of n immediately before ref. A nil ref
// appends. If c is already in a tree it is moved.
//
// It panics if ref is not a child of n, if n is a text node, or if c is an
// ancestor of n.
func (n *Node) InsertBefore(c, ref *Node) {
	if n.Kind == KindText {
		panic("dom: InsertBefore called on a text node")
	}
	if ref != nil && ref.Parent != n {
		panic("dom: InsertBefore reference is not a child")
	}
	if c == ref {
		return
	}
	if c.Contains(n) {
		panic("dom: InsertBefore would create a cycle")
	}
	c.Detach()

	var prev *Node
	if ref != nil {
		prev = ref.PrevSibling
	} else {
		prev = n.LastChild
	}
	if prev != nil {
		prev.NextSibling = c
	} else {
		n.FirstChild = c
	}
	if ref != nil {
		ref.PrevSibling = c
	} else {
		n.LastChild = c
	}
	c.Parent = n
	c.PrevSibling = prev
	c.NextSibling = ref
}

// RemoveChild removes c from n. It panics if c is not a child of n.
func (n *Node) RemoveChild(c *Node) {
	if c.Parent != n {
		panic("dom: RemoveChild called for a non-child Node")
	}
	c.Detach()
}

// ReplaceChild puts newChild where old is and detaches old.
// It panics if old is not a child of n.
func (n *Node) ReplaceChild(newChild, old *Node) {
	if old.Parent != n {
		panic("dom: ReplaceChild called for a non-child Node")
	}
	if newChild == old {
		return
	}
	if newChild == old.NextSibling {
		old.Detach()
		return
	}
	next := old.NextSibling
	old.Detach()
	n.InsertBefore(newChild, next)
}

// Detach removes n from its parent. It is a no-op for a root.
func (n *Node) Detach() {
	p := n.Parent
	if p == nil {
		return
	}
	if n.PrevSibling != nil {
		n.PrevSibling.NextSibling = n.NextSibling
	} else {
		p.FirstChild = n.NextSibling
	}
	if n.NextSibling != nil {
		n.NextSibling.PrevSibling = n.PrevSibling
	} else {
		p.LastChild = n.PrevSibling
	}
	n.Parent = nil
	n.PrevSibling = nil
	n.NextSibling = nil
}

// Children returns the children of n as a slice.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ChildCount returns the number of children of n.
func (n *Node) ChildCount() int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// Index returns the position of n among its siblings, or -1 for a root.
func (n *Node) Index() int {
	if n.Parent == nil {
		return -1
	}
	i := 0
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		i++
	}
	return i
}

// Contains reports whether other is n or a descendant of n.
func (n *Node) Contains(other *Node) bool {
	if n == nil {
		return false
	}
	for p := other; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// Root returns the topmost ancestor of n, or n itself.
func (n *Node) Root() *Node {
	r := n
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

// Next returns the node after n in a pre-order walk of the subtree rooted
// at root, or nil at the end.
func (n *Node) Next(root *Node) *Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	return n.NextSkip(root)
}

// NextSkip is like Next but does not descend into n's children.
func (n *Node) NextSkip(root *Node) *Node {
	for p := n; p != nil && p != root; p = p.Parent {
		if p.NextSibling != nil {
			return p.NextSibling
		}
	}
	return nil
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	for cur := n; cur != nil; {
		if fn(cur) {
			cur = cur.Next(n)
		} else {
			cur = cur.NextSkip(n)
		}
	}
}

// Clone returns a detached deep copy of n.
func (n *Node) Clone() *Node {
	c := &Node{
		Kind:      n.Kind,
		Tag:       n.Tag,
		Namespace: n.Namespace,
		Text:      n.Text,
		Props:     n.Props,
	}
	if len(n.attrs) > 0 {
		c.attrs = make([]Attr, len(n.attrs))
		copy(c.attrs, n.attrs)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(child.Clone())
	}
	return c
}

// TextContent returns the concatenated character data of n's subtree.
func (n *Node) TextContent() string {
	if n.Kind == KindText {
		return n.Text
	}
	var b strings.Builder
	n.Walk(func(d *Node) bool {
		if d.Kind == KindText {
			b.WriteString(d.Text)
		}
		return true
	})
	return b.String()
}

// String returns a short description of n for logs and test output.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case KindText:
		t := n.Text
		if len(t) > 20 {
			t = t[:20] + "..."
		}
		return "#text " + strconv.Quote(t)
	case KindFragment:
		return "#fragment"
	}
	s := "<" + n.Tag
	if id := n.ID(); id != "" {
		s += "#" + id
	}
	return s + ">"
}

// Path returns the child indexes leading from root to n, or nil when n is
// not in root's subtree. The path of root itself is empty but non-nil.
func Path(root, n *Node) []int {
	var rev []int
	cur := n
	for ; cur != nil && cur != root; cur = cur.Parent {
		rev = append(rev, cur.Index())
	}
	if cur != root {
		return nil
	}
	path := make([]int, len(rev))
	for i, idx := range rev {
		path[len(rev)-1-i] = idx
	}
	return path
}

// NodeAt follows path from root and returns the node it names, or nil.
func NodeAt(root *Node, path []int) *Node {
	cur := root
	for _, idx := range path {
		if cur == nil || idx < 0 {
			return nil
		}
		c := cur.FirstChild
		for i := 0; c != nil && i < idx; i++ {
			c = c.NextSibling
		}
		cur = c
	}
	return cur
}
