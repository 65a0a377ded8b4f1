package vdom

import (
	"fmt"
	"sort"
)

const keyProp = "key"

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates a node whose markup is parsed when the tree is materialized.
// The parsed nodes replace it in its parent.
func Raw(markup string) *VNode {
	return &VNode{Kind: KindRaw, Text: markup}
}

// Fragment groups children without a wrapper element. It accepts the same
// child arguments as El; attributes are ignored.
func Fragment(children ...any) *VNode {
	frag := &VNode{Kind: KindFragment}
	for _, c := range children {
		switch v := c.(type) {
		case *VNode:
			frag.appendChild(v)
		case []*VNode:
			for _, n := range v {
				frag.appendChild(n)
			}
		case Component:
			frag.appendChild(&VNode{Kind: KindComponent, Comp: v})
		case string:
			frag.appendChild(Text(v))
		}
	}
	return frag
}

// Key sets the reconciliation key of an element. Values are formatted with
// %v.
func Key(key any) Attr {
	return Attr{Key: keyProp, Value: fmt.Sprint(key)}
}

// If returns node when condition holds, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// IfElse returns ifTrue when condition holds, ifFalse otherwise.
func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When calls fn only when condition holds.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Unless returns node when condition does not hold.
func Unless(condition bool, node *VNode) *VNode {
	return If(!condition, node)
}

// Either returns first if it is not nil, otherwise second.
func Either(first, second *VNode) *VNode {
	if first != nil {
		return first
	}
	return second
}

// Case is a branch of Switch.
type Case[T comparable] struct {
	value     T
	node      *VNode
	isDefault bool
}

// CaseOf returns a branch taken when the switch value equals value.
func CaseOf[T comparable](value T, node *VNode) Case[T] {
	return Case[T]{value: value, node: node}
}

// Default returns the branch taken when no other case matches.
func Default[T comparable](node *VNode) Case[T] {
	return Case[T]{node: node, isDefault: true}
}

// Switch returns the node of the first case matching value.
func Switch[T comparable](value T, cases ...Case[T]) *VNode {
	var fallback *VNode
	for _, c := range cases {
		if c.isDefault {
			fallback = c.node
			continue
		}
		if c.value == value {
			return c.node
		}
	}
	return fallback
}

// Range maps items to nodes, dropping nil results.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	out := make([]*VNode, 0, len(items))
	for i, item := range items {
		if n := fn(item, i); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// RangeMap maps a map to nodes in sorted key order.
func RangeMap[K interface{ ~string | ~int | ~int64 }, V any](m map[K]V, fn func(key K, value V) *VNode) []*VNode {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]*VNode, 0, len(m))
	for _, k := range keys {
		if n := fn(k, m[k]); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Repeat calls fn n times.
func Repeat(n int, fn func(i int) *VNode) []*VNode {
	out := make([]*VNode, 0, n)
	for i := 0; i < n; i++ {
		if node := fn(i); node != nil {
			out = append(out, node)
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
