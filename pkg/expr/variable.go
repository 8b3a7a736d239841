package expr

// Variable is a resolved leaf value: an anonymous literal, a named literal
// taken from a Constant node, or a nested arithmetic sub-expression.
type Variable[T Number] interface {
	// Eval folds the variable to a single value using the operator
	// semantics of OpType.
	Eval() T
	variable()
}

// Anonymous is a literal typed directly into a parameter slot.
type Anonymous[T Number] struct {
	Value T
}

func (a Anonymous[T]) Eval() T { return a.Value }
func (Anonymous[T]) variable() {}

// Named is a literal that came from a Constant node. Exporters use Name,
// which may be empty, to reproduce human-readable identifiers.
type Named[T Number] struct {
	Name  string
	Value T
}

func (n Named[T]) Eval() T { return n.Value }
func (Named[T]) variable() {}

// Operation is arithmetic over two nested variables.
type Operation[T Number] struct {
	Op       OpType
	Operands [2]Variable[T]
}

func (o Operation[T]) Eval() T {
	return Apply(o.Op, o.Operands[0].Eval(), o.Operands[1].Eval())
}
func (Operation[T]) variable() {}

// WalkVariable calls fn for v and, for operations, for every nested operand
// in depth-first order.
func WalkVariable[T Number](v Variable[T], fn func(Variable[T])) {
	fn(v)
	if op, ok := v.(Operation[T]); ok {
		WalkVariable(op.Operands[0], fn)
		WalkVariable(op.Operands[1], fn)
	}
}
