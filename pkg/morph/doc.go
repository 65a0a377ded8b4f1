// Package morph reconciles a live node tree into the shape of a target tree
// in place.
//
// Reconcile walks both trees together and applies the mutations needed to
// make the live tree match the target: attribute updates, text updates,
// insertions and removals. Live elements judged equivalent to a target
// element keep their identity, so state attached to them survives the call.
//
//	live, _ := dom.ParseElement(`<ul><li id="a">A</li><li id="b">B</li></ul>`)
//	target, _ := dom.ParseElement(`<ul><li id="b">B</li><li id="a">A!</li></ul>`)
//	live, err := morph.Reconcile(live, target, morph.Options{})
//
// # Matching
//
// Children are matched greedily in document order. A live child matches a
// target child when both are text nodes, or both are elements with the same
// tag and namespace and the same key. By default an element's key is its id
// attribute; Options.GetNodeKey replaces that.
//
// Keyed live nodes that are removed from one place are held in a pool for
// the rest of the call and reused if a target node with the same key shows
// up later, anywhere in the tree. Target nodes that are adopted before their
// live counterpart is reached are remembered and swapped out when it is.
//
// # Hooks
//
// Options carries callbacks that observe or veto each step. A hook that
// returns SkipNode vetoes the step it guards. Any other error aborts the
// call; the tree is left as it was at that moment.
//
// # Control State
//
// A Policy maps (tag, attribute) pairs to handlers that keep element Props
// such as an input's value consistent with attributes. DefaultPolicy covers
// input, option, textarea and select.
package morph
