// Package expr defines the immutable expression tree handed to the noise
// evaluator. A tree is produced by package compile from a node graph and is
// never mutated afterwards; each call to compile builds a fresh tree.
package expr
