package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraphErrorMessages(t *testing.T) {
	cases := []struct {
		kind GraphErrorKind
		want string
	}{
		{InvalidNode, "graph: invalid node 7"},
		{NoEntry, "graph: no entry node set"},
		{DuplicateNode, "graph: node 7 already exists"},
		{EdgeExists, "graph: edge already exists at node 7"},
	}
	for _, c := range cases {
		err := NewGraphError(c.kind, 7)
		assert.Equal(t, c.want, err.Error())
		assert.NotNil(t, err.Unwrap(), "cause should carry a stack trace")
	}
}

func TestSSAErrorMessages(t *testing.T) {
	cases := []struct {
		kind     SSAErrorKind
		variable string
		detail   string
	}{
		{UndefinedUse, "x", "no definition dominates block 3"},
		{MalformedPhi, "v10", "block 4 has 2 predecessor(s) but phi names 1"},
		{NonSSAInput, "v5", "defined 2 times"},
	}
	for _, c := range cases {
		err := NewSSAError(c.kind, c.variable, c.detail)
		assert.Contains(t, err.Error(), c.detail)
		assert.NotNil(t, err.Unwrap(), "cause should carry a stack trace")
	}
}

func TestDeserializationErrorIsVerbatim(t *testing.T) {
	err := NewDeserializationError(assert.AnError)
	assert.Equal(t, "code did not compile", err.Error())
	assert.ErrorIs(t, Cause(err.Unwrap()), assert.AnError)
}
