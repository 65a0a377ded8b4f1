// Package vdom is a small builder for target trees.
//
// Trees are described with variadic factory functions and materialized into
// *dom.Node values that can be handed to the morph reconciler:
//
//	target := vdom.Materialize(
//	    vdom.Ul(ID("list"),
//	        vdom.Range(items, func(it Item, _ int) *vdom.VNode {
//	            return vdom.Li(vdom.Key(it.ID), vdom.Text(it.Name))
//	        }),
//	    ),
//	)
//
// # Keys
//
// Key(k) is written as a data-key attribute, so reconciling with
// morph.KeyAttr("data-key") matches nodes by the builder's keys.
//
// # Event handlers
//
// Props whose name starts with "on" and whose value is a function are not
// part of the materialized tree.
package vdom
