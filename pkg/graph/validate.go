package graph

import (
	"fmt"
	"reflect"

	"go.uber.org/multierr"
)

// ValidationSeverity indicates whether a validation finding makes the graph
// unusable or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // graph violates a precondition of the core
	SeverityWarning                           // graph compiles, but probably not as intended
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Node     NodeID
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] node %d: %s", e.Severity, e.Node, e.Message)
}

// Minimum control point counts below which the remapping modules have no
// defined output.
const (
	MinCurvePoints   = 4
	MinTerracePoints = 2
)

// Validate runs the structural checks on g and returns every finding. It
// never mutates the graph and does not look for cycles.
func Validate(g *Graph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validatePayloads(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateInputs(g)...)
	return errs
}

// Check returns the error-severity findings of Validate folded into one
// error, or nil.
func Check(g *Graph) error {
	var err error
	for _, e := range Validate(g) {
		if e.Severity == SeverityError {
			err = multierr.Append(err, e)
		}
	}
	return err
}

// validatePayloads checks that every node's payload type matches its kind.
func validatePayloads(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, id := range g.IDs() {
		n := g.Node(id)
		if n.Kind < 0 || n.Kind >= nodeKindCount {
			errs = append(errs, ValidationError{Node: id, Message: fmt.Sprintf("unknown kind %s", n.Kind)})
			continue
		}
		want := reflect.TypeOf(New(n.Kind).Data)
		if got := reflect.TypeOf(n.Data); got != want {
			errs = append(errs, ValidationError{
				Node:    id,
				Message: fmt.Sprintf("%s node has %v payload, want %v", n.Kind, got, want),
			})
		}
	}
	return errs
}

// validateReferences checks that every connected slot names a present node
// of an accepted kind. A generic operation wired to a typed operation, or
// the reverse, shows up here as a mixed component.
func validateReferences(g *Graph) []ValidationError {
	var (
		errs  []ValidationError
		slots []Slot
	)
	for _, id := range g.IDs() {
		n := g.Node(id)
		if n.Kind < 0 || n.Kind >= nodeKindCount {
			continue
		}
		slots = n.AppendSlots(slots[:0])
		for _, s := range slots {
			ref, ok := s.Input.Get()
			if !ok {
				continue
			}
			target, ok := g.Lookup(ref)
			if !ok {
				errs = append(errs, ValidationError{
					Node:    id,
					Message: fmt.Sprintf("slot %q references missing node %d", s.Name, ref),
				})
				continue
			}
			if ref == id {
				errs = append(errs, ValidationError{
					Node:    id,
					Message: fmt.Sprintf("slot %q references its own node", s.Name),
				})
				continue
			}
			if !s.Type.Accepts(target.Kind) {
				errs = append(errs, ValidationError{
					Node: id,
					Message: fmt.Sprintf("slot %q expects %s, node %d is %s",
						s.Name, s.Type, ref, target.Kind),
				})
			}
		}
	}
	return errs
}

func validateRoots(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, id := range g.Roots {
		n, ok := g.Lookup(id)
		if !ok {
			errs = append(errs, ValidationError{Node: id, Message: "root node does not exist"})
			continue
		}
		if !n.Kind.ProducesNoise() {
			errs = append(errs, ValidationError{
				Node:    id,
				Message: fmt.Sprintf("root is %s, which does not produce noise", n.Kind),
			})
		}
	}
	return errs
}

// validateInputs reports disconnected noise inputs and short control point
// lists. These compile, so they are warnings.
func validateInputs(g *Graph) []ValidationError {
	var (
		errs  []ValidationError
		slots []Slot
	)
	warn := func(id NodeID, format string, args ...any) {
		errs = append(errs, ValidationError{
			Node:     id,
			Message:  fmt.Sprintf(format, args...),
			Severity: SeverityWarning,
		})
	}
	for _, id := range g.IDs() {
		n := g.Node(id)
		if n.Kind < 0 || n.Kind >= nodeKindCount {
			continue
		}
		slots = n.AppendSlots(slots[:0])
		for _, s := range slots {
			if s.Type == SlotNoise && !s.Input.Connected {
				warn(id, "%s input %q is disconnected", n.Kind, s.Name)
			}
		}
		switch d := n.Data.(type) {
		case *CurveData:
			if len(d.ControlPoints) < MinCurvePoints {
				warn(id, "curve has %d control points, needs at least %d", len(d.ControlPoints), MinCurvePoints)
			}
		case *TerraceData:
			if len(d.ControlPoints) < MinTerracePoints {
				warn(id, "terrace has %d control points, needs at least %d", len(d.ControlPoints), MinTerracePoints)
			}
		}
	}
	return errs
}
