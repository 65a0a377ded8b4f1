// Package dom provides the mutable node tree that morph reconciles.
//
// A tree is built from three node kinds: elements, text nodes and fragments.
// Siblings form a doubly linked list, so moving a node is a constant-time
// pointer update and a node can be detached without scanning its parent.
//
// # Building Trees
//
// Trees are usually produced by the parser or by the vdom builder:
//
//	live, _ := dom.ParseElement(`<ul id="list"><li id="a">A</li></ul>`)
//
// They can also be assembled by hand:
//
//	ul := dom.NewElement("ul")
//	li := dom.NewElement("li")
//	li.SetAttr("id", "a")
//	li.AppendChild(dom.NewText("A"))
//	ul.AppendChild(li)
//
// # Live State
//
// Elements carry Props, the state a user agent keeps apart from attributes:
// an input's current value and checked flag, an option's selected flag and a
// select's selected index. ResetState initializes Props from attributes the
// way a freshly parsed document would.
//
// # Ownership
//
// Inserting a node that already has a parent moves it. Nothing in this
// package copies nodes implicitly; use Clone for that.
package dom
