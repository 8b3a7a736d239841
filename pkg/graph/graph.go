package graph

import (
	"fmt"

	"github.com/samber/lo"
)

// Reader resolves node ids. Node panics on an id that is not present.
type Reader interface {
	Node(id NodeID) *Node
}

// Store is a Reader that can also enumerate consumers.
type Store interface {
	Reader
	// AppendConsumers appends the id of every node holding a reference to
	// id, each once.
	AppendConsumers(dst []NodeID, id NodeID) []NodeID
}

// Graph is an in-memory Store. Ids are slice positions and stay stable
// after removal; removed slots are nil.
type Graph struct {
	Nodes []*Node  `json:"nodes"`
	Roots []NodeID `json:"roots"`
}

var _ Store = (*Graph)(nil)

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Add appends n and returns its id.
func (g *Graph) Add(n *Node) NodeID {
	g.Nodes = append(g.Nodes, n)
	return NodeID(len(g.Nodes) - 1)
}

// Remove deletes the node with the given id. References to it from other
// nodes are left in place; disconnecting them is the caller's job.
func (g *Graph) Remove(id NodeID) {
	if _, ok := g.Lookup(id); !ok {
		return
	}
	g.Nodes[id] = nil
	g.Roots = lo.Without(g.Roots, id)
}

// Lookup returns the node with the given id, if present.
func (g *Graph) Lookup(id NodeID) (*Node, bool) {
	if id < 0 || int(id) >= len(g.Nodes) || g.Nodes[id] == nil {
		return nil, false
	}
	return g.Nodes[id], true
}

// Node returns the node with the given id, or panics.
func (g *Graph) Node(id NodeID) *Node {
	n, ok := g.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("graph: no node %d", id))
	}
	return n
}

// IDs returns the ids of all present nodes in ascending order.
func (g *Graph) IDs() []NodeID {
	return lo.FilterMap(g.Nodes, func(n *Node, i int) (NodeID, bool) {
		return NodeID(i), n != nil
	})
}

// NodeCount returns the number of present nodes.
func (g *Graph) NodeCount() int {
	return lo.CountBy(g.Nodes, func(n *Node) bool { return n != nil })
}

// AddRoot registers a node as a preview root.
func (g *Graph) AddRoot(id NodeID) {
	if !lo.Contains(g.Roots, id) {
		g.Roots = append(g.Roots, id)
	}
}

// AppendConsumers scans every node for references to id.
func (g *Graph) AppendConsumers(dst []NodeID, id NodeID) []NodeID {
	for i, n := range g.Nodes {
		if n != nil && n.References(id) {
			dst = append(dst, NodeID(i))
		}
	}
	return dst
}

// Consumers returns the ids of every node referencing id.
func (g *Graph) Consumers(id NodeID) []NodeID {
	return g.AppendConsumers(nil, id)
}

// Invalidate bumps the preview version of id and of every node that
// transitively consumes it.
func (g *Graph) Invalidate(id NodeID) {
	seen := map[NodeID]bool{}
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		if im, ok := g.Node(cur).Image(); ok {
			im.Invalidate()
		}
		stack = g.AppendConsumers(stack, cur)
	}
}
