// Package bytecode sketches the boundary between a Luau bytecode
// deserializer and the rest of the pipeline. Nothing in this
// package parses an actual chunk — that deserializer is explicitly out of
// scope — but the shapes here are what internal/ssa's RawFunction builder
// needs handed to it: a string table, a list of function prototypes, and
// an index into that list naming the chunk's top-level function.
package bytecode

import (
	"fmt"

	"luadec/internal/errors"
)

// Chunk is a deserialized Luau bytecode unit: every function prototype it
// defines, the shared string table instructions reference by index, and
// which prototype is the chunk's entry point.
type Chunk struct {
	StringTable []string
	Functions   []FunctionProto
	Main        int
}

// FunctionProto is the surface a bytecode function prototype exposes: its
// parameter count and its register count. It exposes no instruction
// stream, so nothing in this module builds a pre-SSA CFG from one.
type FunctionProto interface {
	NumParams() int
	NumRegisters() int
}

// Source compiles Luau source to a Chunk. The only implementation this
// module ships is Unimplemented — wiring a real bytecode deserializer is
// left to the caller, matching the explicit scope boundary this interface draws.
type Source interface {
	Compile(path string) (*Chunk, error)
}

// Unimplemented is the Source stub cmd/luadec runs against until a real
// deserializer is wired in. Every call fails with ErrNotImplemented,
// wrapped in a DeserializationError so the CLI's existing failure path
// (errors.Reporter.ReportDeserializationFailure) handles it unchanged.
type Unimplemented struct{}

// ErrNotImplemented is the sentinel Unimplemented.Compile always wraps.
var ErrNotImplemented = fmt.Errorf("bytecode deserialization is not implemented")

func (Unimplemented) Compile(path string) (*Chunk, error) {
	return nil, errors.NewDeserializationError(ErrNotImplemented)
}
