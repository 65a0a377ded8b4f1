package morph

import "github.com/vango-dev/morph/pkg/dom"

// Op is the type of a mutation applied to the live tree.
type Op uint8

const (
	OpSetText     Op = 0x01 // Update text content
	OpSetAttr     Op = 0x02 // Set or update attribute
	OpRemoveAttr  Op = 0x03 // Remove attribute
	OpInsertNode  Op = 0x04 // Adopt a target node
	OpRemoveNode  Op = 0x05 // Detach a live node
	OpMoveNode    Op = 0x06 // Move an existing live node
	OpReplaceNode Op = 0x07 // Replace a node in its parent
	OpSetProperty Op = 0x08 // Change live element state
)

// String returns the string representation of the Op.
func (op Op) String() string {
	switch op {
	case OpSetText:
		return "SetText"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpInsertNode:
		return "InsertNode"
	case OpRemoveNode:
		return "RemoveNode"
	case OpMoveNode:
		return "MoveNode"
	case OpReplaceNode:
		return "ReplaceNode"
	case OpSetProperty:
		return "SetProperty"
	default:
		return "Unknown"
	}
}

// Ops lists every Op in wire order.
var Ops = []Op{
	OpSetText, OpSetAttr, OpRemoveAttr, OpInsertNode,
	OpRemoveNode, OpMoveNode, OpReplaceNode, OpSetProperty,
}

// Mutation describes one change to the live tree. It is delivered
// synchronously, right after the change for everything except OpRemoveNode,
// which is delivered while the node is still attached.
type Mutation struct {
	Op     Op        // Operation type
	Node   *dom.Node // Node that changed, or the node inserted/removed/moved
	Parent *dom.Node // Parent for InsertNode/RemoveNode/MoveNode/ReplaceNode
	Name   string    // Attribute or property name
	Value  string    // New text, attribute or property value
}
