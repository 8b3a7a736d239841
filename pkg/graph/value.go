package graph

// NodeID is the stable index of a node in its store.
type NodeID int

// Input is an optional connection to another node's output. The zero value
// is disconnected.
type Input struct {
	Node      NodeID `json:"node"`
	Connected bool   `json:"connected"`
}

// Connect returns an Input wired to id.
func Connect(id NodeID) Input {
	return Input{Node: id, Connected: true}
}

// Get returns the connected node, if any.
func (in Input) Get() (NodeID, bool) {
	return in.Node, in.Connected
}

// NodeValue is a typed parameter slot holding either a literal or a
// reference to a node producing T.
type NodeValue[T any] struct {
	Ref   Input `json:"ref"`
	Value T     `json:"value"`
}

// Literal returns a slot holding v.
func Literal[T any](v T) NodeValue[T] {
	return NodeValue[T]{Value: v}
}

// Reference returns a slot bound to node id.
func Reference[T any](id NodeID) NodeValue[T] {
	return NodeValue[T]{Ref: Connect(id)}
}

// NodeIndex returns the referenced node, if the slot is a reference.
func (v NodeValue[T]) NodeIndex() (NodeID, bool) {
	return v.Ref.Get()
}

// IsReference reports whether the slot is bound to a node.
func (v NodeValue[T]) IsReference() bool {
	return v.Ref.Connected
}

// LiteralPtr returns a pointer to the literal for in-place editing, or nil
// when the slot is a reference.
func (v *NodeValue[T]) LiteralPtr() *T {
	if v.Ref.Connected {
		return nil
	}
	return &v.Value
}
