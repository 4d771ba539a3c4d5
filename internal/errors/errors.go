// Package errors defines the typed error taxonomy shared by the graph
// kernel and the SSA passes: GraphError, SSAError, and
// DeserializationError. The structurer and the lifter add no kinds of
// their own: they pass graph-kernel errors from their dominance analysis
// through, and invariant violations inside them are programming bugs that
// panic with a diagnostic.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// GraphErrorKind enumerates the ways the graph kernel can reject an
// operation.
type GraphErrorKind string

const (
	InvalidNode   GraphErrorKind = "invalid_node"
	NoEntry       GraphErrorKind = "no_entry"
	DuplicateNode GraphErrorKind = "duplicate_node"
	EdgeExists    GraphErrorKind = "edge_exists"
)

// GraphError reports a graph kernel invariant violation, with the node
// (when one is implicated) and the underlying cause preserved for
// %+v-style stack traces via github.com/pkg/errors.
type GraphError struct {
	Kind  GraphErrorKind
	Node  int
	cause error
}

func (e *GraphError) Error() string {
	switch e.Kind {
	case InvalidNode:
		return fmt.Sprintf("graph: invalid node %d", e.Node)
	case NoEntry:
		return "graph: no entry node set"
	case DuplicateNode:
		return fmt.Sprintf("graph: node %d already exists", e.Node)
	case EdgeExists:
		return fmt.Sprintf("graph: edge already exists at node %d", e.Node)
	default:
		return fmt.Sprintf("graph: error (%s)", e.Kind)
	}
}

func (e *GraphError) Unwrap() error { return e.cause }

// NewGraphError builds a GraphError, wrapping it with a stack trace the
// first time it is constructed so CLI diagnostics can render one.
func NewGraphError(kind GraphErrorKind, node int) *GraphError {
	ge := &GraphError{Kind: kind, Node: node}
	ge.cause = errors.WithStack(fmt.Errorf("%s", ge.Error()))
	return ge
}

// SSAErrorKind enumerates SSA construction/destruction failures.
type SSAErrorKind string

const (
	UndefinedUse SSAErrorKind = "undefined_use"
	MalformedPhi SSAErrorKind = "malformed_phi"
	NonSSAInput  SSAErrorKind = "non_ssa_input"
)

// SSAError reports an SSA construction or destruction failure.
type SSAError struct {
	Kind     SSAErrorKind
	Variable string
	Detail   string
	cause    error
}

func (e *SSAError) Error() string {
	switch e.Kind {
	case UndefinedUse:
		return fmt.Sprintf("ssa: variable %q read before any definition on some path (%s)", e.Variable, e.Detail)
	case MalformedPhi:
		return fmt.Sprintf("ssa: malformed phi (%s)", e.Detail)
	case NonSSAInput:
		return fmt.Sprintf("ssa: input is not in SSA form (%s)", e.Detail)
	default:
		return fmt.Sprintf("ssa: error (%s): %s", e.Kind, e.Detail)
	}
}

func (e *SSAError) Unwrap() error { return e.cause }

// NewSSAError builds an SSAError with a stack-traced cause.
func NewSSAError(kind SSAErrorKind, variable, detail string) *SSAError {
	se := &SSAError{Kind: kind, Variable: variable, Detail: detail}
	se.cause = errors.WithStack(fmt.Errorf("%s", se.Error()))
	return se
}

// DeserializationError wraps a failure from the (external) bytecode
// deserializer. It is propagated verbatim by the core; the CLI prints
// "code did not compile" and exits non-zero on seeing one.
type DeserializationError struct {
	cause error
}

func (e *DeserializationError) Error() string { return "code did not compile" }
func (e *DeserializationError) Unwrap() error { return e.cause }

// NewDeserializationError wraps an external deserializer failure.
func NewDeserializationError(cause error) *DeserializationError {
	return &DeserializationError{cause: errors.WithStack(cause)}
}

// Wrap and Cause re-export github.com/pkg/errors' stack-preserving helpers
// so callers outside this package don't need a second import for the same
// library this package already depends on.
func Wrap(err error, message string) error { return errors.Wrap(err, message) }
func Cause(err error) error                { return errors.Cause(err) }
