// SPDX-License-Identifier: Apache-2.0
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"luadec/internal/bytecode"
	kerrors "luadec/internal/errors"
	"luadec/internal/ir"
	"luadec/internal/lifter"
	"luadec/internal/ssa"
)

func main() {
	file := flag.String("file", "", "path to a compiled Luau chunk")
	flag.Parse()

	if *file == "" {
		fmt.Println("Usage: luadec --file <chunk.luauc>")
		os.Exit(1)
	}

	reporter := kerrors.NewReporter("luadec")
	start := time.Now()

	var source bytecode.Source = bytecode.Unimplemented{}
	chunk, err := source.Compile(*file)
	if err != nil {
		var de *kerrors.DeserializationError
		if errors.As(err, &de) {
			reporter.ReportDeserializationFailure(de)
		} else {
			color.Red("%s", err.Error())
		}
		os.Exit(1)
	}

	body := decompile(chunk)
	took := time.Since(start).Round(time.Millisecond).String()

	out := reporter.Header(took) + "\n" + body
	if err := os.WriteFile("result-u.lua", []byte(out), 0o644); err != nil {
		color.Red("failed to write result-u.lua: %s", err)
		os.Exit(1)
	}

	reporter.ReportSuccess("result-u.lua", took)
}

// decompile returns an empty string; it does not run the chunk's Main
// function through the pipeline, since bytecode.Source never actually
// produces a Chunk yet, and FunctionProto
// exposes no instruction stream for an ir.Builder to consume — that
// builder is its own unwritten package, out of this decompiler's current
// scope. decompileFunction below is the real tail of the pipeline,
// starting from the ir.Function an eventual builder would hand it.
func decompile(chunk *bytecode.Chunk) string {
	return ""
}

// decompileFunction runs the SSA-destruction, structuring, and lifting
// stages over an already-constructed fn and renders the result to Lua
// source. fn must be in the form ssa.Construct produces (still in SSA,
// phis and all); decompileFunction destructs it itself. A CFG region
// structuring could not fully collapse still yields usable, goto-laden
// output (lifter.Lift's residual count), reported through reporter
// rather than treated as a failure.
func decompileFunction(fn *ir.Function, reporter *kerrors.Reporter, opts lifter.Options) (string, error) {
	if err := ssa.Destruct(fn); err != nil {
		return "", err
	}
	block, residual, err := lifter.Lift(fn, opts)
	if err != nil {
		return "", err
	}
	if residual > 0 {
		reporter.ReportStructuringFailure(fn.Name(), residual)
	}
	return block.String(), nil
}
