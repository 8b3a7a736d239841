// Package propagate keeps arithmetic operation nodes type-consistent.
//
// An operation starts out unresolved. Once one of its edges pins it to f64
// or u32, every operation reachable through direct reference edges (in
// either direction) must follow. Promote and Demote flood-fill that
// component and rewrite each node's kind and payload in place.
package propagate

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/chazu/noisegraph/pkg/expr"
	"github.com/chazu/noisegraph/pkg/graph"
)

// TypeKind describes one concrete operand type: the operation kind that
// carries it and the rewrites to and from the unresolved form.
type TypeKind struct {
	Name string
	Kind graph.NodeKind

	promote func(n *graph.Node)
	demote  func(n *graph.Node)
}

func (t TypeKind) String() string { return t.Name }

var (
	F64 = concrete[float64]("f64", graph.NodeF64Operation)
	U32 = concrete[uint32]("u32", graph.NodeU32Operation)
)

// Slot returns the graph slot type a value of t is bound into.
func (t TypeKind) Slot() graph.SlotType {
	if t.Kind == graph.NodeU32Operation {
		return graph.SlotU32
	}
	return graph.SlotF64
}

func concrete[T expr.Number](name string, kind graph.NodeKind) TypeKind {
	return TypeKind{
		Name: name,
		Kind: kind,
		promote: func(n *graph.Node) {
			d := graph.MustPayload[*graph.OperationData[graph.Generic]](n)
			n.Kind = kind
			n.Data = &graph.OperationData[T]{
				Op: d.Op,
				Inputs: [2]graph.NodeValue[T]{
					{Ref: d.Inputs[0].Ref},
					{Ref: d.Inputs[1].Ref},
				},
			}
		},
		demote: func(n *graph.Node) {
			d := graph.MustPayload[*graph.OperationData[T]](n)
			n.Kind = graph.NodeOperation
			n.Data = &graph.OperationData[graph.Generic]{
				Op: d.Op,
				Inputs: [2]graph.NodeValue[graph.Generic]{
					{Ref: d.Inputs[0].Ref},
					{Ref: d.Inputs[1].Ref},
				},
			}
		},
	}
}

// Option configures a Propagator.
type Option func(*Propagator)

// WithLogger sets the logger walks report to.
func WithLogger(log logr.Logger) Option {
	return func(p *Propagator) {
		p.log = log
	}
}

// Propagator runs walks over one store. Its scratch space is reused between
// calls, so a Propagator must not be used concurrently or re-entered from a
// walk.
type Propagator struct {
	store graph.Store
	log   logr.Logger

	visited map[graph.NodeID]struct{}
	stack   []graph.NodeID
	found   []graph.NodeID
	busy    bool
}

// New creates a Propagator bound to store.
func New(store graph.Store, opts ...Option) *Propagator {
	p := &Propagator{
		store:   store,
		log:     logr.Discard(),
		visited: make(map[graph.NodeID]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PromoteF64 commits the component of start to f64. See Promote.
func (p *Propagator) PromoteF64(start graph.NodeID) int { return p.Promote(start, F64) }

// PromoteU32 commits the component of start to u32. See Promote.
func (p *Propagator) PromoteU32(start graph.NodeID) int { return p.Promote(start, U32) }

// DemoteF64 reverts an all-f64 component of start to unresolved. See Demote.
func (p *Propagator) DemoteF64(start graph.NodeID) bool { return p.Demote(start, F64) }

// DemoteU32 reverts an all-u32 component of start to unresolved. See Demote.
func (p *Propagator) DemoteU32(start graph.NodeID) bool { return p.Demote(start, U32) }

// Promote rewrites every unresolved operation in the component of start to
// t and returns how many nodes changed. Nodes that are not unresolved
// operations bound the walk: they are neither rewritten nor expanded.
func (p *Propagator) Promote(start graph.NodeID, t TypeKind) int {
	rewritten := 0
	p.walk(start, func(_ graph.NodeID, n *graph.Node) (bool, bool) {
		if n.Kind != graph.NodeOperation {
			return false, true
		}
		t.promote(n)
		rewritten++
		return true, true
	})
	p.log.V(1).Info("promoted component", "type", t.Name, "start", start, "rewritten", rewritten)
	return rewritten
}

// Demote returns the component of start to the unresolved state. Every node
// reached must be a t operation; if any is not (a typed consumer, a
// constant, an operation of another type), nothing is changed and Demote
// reports false.
func (p *Propagator) Demote(start graph.NodeID, t TypeKind) bool {
	p.found = p.found[:0]
	var blocker graph.NodeID = -1
	p.walk(start, func(id graph.NodeID, n *graph.Node) (bool, bool) {
		if n.Kind != t.Kind {
			blocker = id
			return false, false
		}
		p.found = append(p.found, id)
		return true, true
	})
	if blocker >= 0 {
		p.log.V(1).Info("demotion blocked", "type", t.Name, "start", start, "blocker", blocker)
		p.found = p.found[:0]
		return false
	}
	for _, id := range p.found {
		t.demote(p.store.Node(id))
	}
	p.log.V(1).Info("demoted component", "type", t.Name, "start", start, "rewritten", len(p.found))
	p.found = p.found[:0]
	return true
}

// walk visits every node reachable from start through consumer and
// reference edges, each once. visit returns whether to expand the node's
// neighbors and whether to keep walking at all.
func (p *Propagator) walk(start graph.NodeID, visit func(graph.NodeID, *graph.Node) (expand, cont bool)) {
	if p.busy {
		panic(fmt.Sprintf("propagate: walk from node %d started while another walk is running", start))
	}
	p.busy = true
	defer func() {
		clear(p.visited)
		p.stack = p.stack[:0]
		p.busy = false
	}()

	p.stack = append(p.stack, start)
	for len(p.stack) > 0 {
		id := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
		if _, seen := p.visited[id]; seen {
			continue
		}
		p.visited[id] = struct{}{}

		n := p.store.Node(id)
		expand, cont := visit(id, n)
		if !cont {
			return
		}
		if !expand {
			continue
		}
		p.stack = p.store.AppendConsumers(p.stack, id)
		p.stack = n.AppendReferences(p.stack)
	}
}
