package morph

import (
	stderrors "errors"
	"log/slog"

	"github.com/vango-dev/morph/pkg/dom"
)

// SkipNode is returned by a hook to veto the step it guards.
//
// From OnBeforeNodeAdded it leaves the target node out of the live tree.
// From OnBeforeElementUpdated it leaves the live element and its subtree
// untouched. From OnBeforeElementChildrenUpdated it keeps the attribute
// update but leaves the children alone. From OnBeforeNodeDiscarded it keeps
// the live node where it is. From OnNodeAdded or OnNodeDiscarded it stops
// the walk from descending into the node's children.
var SkipNode = stderrors.New("skip this node")

// Options configures a single Reconcile call. The zero value is usable.
type Options struct {
	// ChildrenOnly reconciles only the children of the two roots. The roots
	// themselves are neither replaced nor updated.
	ChildrenOnly bool

	// GetNodeKey derives an element's key. When nil, the id attribute is
	// used. Returning "" means unkeyed.
	GetNodeKey func(n *dom.Node) string

	// OnBeforeNodeAdded is called before a target node is adopted into the
	// live tree. Returning a non-nil node adopts it instead.
	OnBeforeNodeAdded func(n *dom.Node) (*dom.Node, error)

	// OnNodeAdded is called for an adopted node and each of its descendants.
	// A keyed node that a live node found later in the walk may still take
	// the place of is reported, with its subtree, only once the walk is
	// over; if it is replaced it is reported neither added nor discarded.
	OnNodeAdded func(n *dom.Node) error

	// OnBeforeElementUpdated is called before a matched live element is
	// updated from its target.
	OnBeforeElementUpdated func(live, target *dom.Node) error

	// OnElementUpdated is called after a matched element's attributes or
	// properties changed.
	OnElementUpdated func(live *dom.Node) error

	// OnBeforeElementChildrenUpdated is called before a matched element's
	// children are reconciled.
	OnBeforeElementChildrenUpdated func(live, target *dom.Node) error

	// OnBeforeNodeDiscarded is called before a live node is discarded. Keyed
	// nodes are first held for reuse and only asked about at the end of the
	// call if nothing reused them; a kept node goes back to its old place.
	OnBeforeNodeDiscarded func(n *dom.Node) error

	// OnNodeDiscarded is called for a discarded node and each of its
	// descendants that is not kept for reuse.
	OnNodeDiscarded func(n *dom.Node) error

	// IgnoreControlValues disables the Policy for this call.
	IgnoreControlValues bool

	// IsSameNode reports that live already represents target. Such pairs
	// match without any update.
	IsSameNode func(live, target *dom.Node) bool

	// OnMutation receives every mutation applied to the live tree.
	OnMutation func(m Mutation)

	// Policy handles control state. Nil selects DefaultPolicy.
	Policy *Policy

	// Logger receives a debug summary of the call. Nil disables logging.
	Logger *slog.Logger
}

// KeyAttr returns a key function that reads the named attribute.
//
//	opts := morph.Options{GetNodeKey: morph.KeyAttr("data-key")}
func KeyAttr(name string) func(*dom.Node) string {
	return func(n *dom.Node) string {
		if n.Kind != dom.KindElement {
			return ""
		}
		return n.AttrValue(name)
	}
}
