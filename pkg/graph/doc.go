// Package graph defines the noise node graph edited by the user.
// Nodes are stored by stable index; each holds a kind-specific payload whose
// parameter slots are either literals or references to other nodes.
package graph
