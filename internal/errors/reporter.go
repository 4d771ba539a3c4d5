package errors

import (
	"fmt"

	"github.com/fatih/color"
)

// Reporter renders the handful of diagnostics the CLI wrapper needs: a
// deserialization failure, or a Structurer that could not fully collapse a
// function (not an error, a produced-but-imperfect result).
//
// Unlike a source-position error reporter, there is no source text to
// show a caret into here — the pipeline's input is a compiled chunk, not
// a parsed file — so this reporter is structural rather than line/column
// based. The bold/dim/color-by-level idiom is kept.
type Reporter struct {
	toolName string
}

// NewReporter creates a Reporter that attributes diagnostics to toolName
// (used in the leading comment written to result-u.lua).
func NewReporter(toolName string) *Reporter {
	return &Reporter{toolName: toolName}
}

// ReportDeserializationFailure prints the CLI's fixed message for a
// DeserializationError.
func (r *Reporter) ReportDeserializationFailure(err *DeserializationError) {
	color.Red("%s", err.Error())
}

// ReportStructuringFailure prints a note that a function's CFG did not
// fully collapse, without treating it as an error — the caller still gets
// usable (goto-laden) output.
func (r *Reporter) ReportStructuringFailure(functionName string, residualNodes int) {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	fmt.Printf("%s %s\n", bold("note:"), dim(fmt.Sprintf(
		"%s did not fully structure, %d node(s) remain (goto emitted)", functionName, residualNodes)))
}

// ReportSuccess prints the CLI's success line, in green, to os.Stdout.
func (r *Reporter) ReportSuccess(outputPath, took string) {
	fmt.Println(color.GreenString("decompiled by %s (took %s) -> %s", r.toolName, took, outputPath))
}

// Header returns the leading comment line written atop result-u.lua.
func (r *Reporter) Header(took string) string {
	return fmt.Sprintf("-- decompiled by %s (took %s)", r.toolName, took)
}

