package interpreter

import (
	"fmt"
	"strings"
)

// TraceFrame names one level of the call stack active when a RuntimeError
// was raised, innermost first — the tree-walker analogue of vm.TraceFrame,
// kept as a distinct type (rather than shared) since the two pipelines have
// no other reason to depend on each other.
type TraceFrame struct {
	Line     int
	Function string // "script" for the implicit top-level frame
}

// RuntimeError is a tree-walker evaluation failure (spec §6, §7), formatted
// identically to the bytecode VM's vm.RuntimeError so the CLI can print
// either one the same way regardless of which pipeline ran.
type RuntimeError struct {
	Message string
	Trace   []TraceFrame
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, fr := range e.Trace {
		fmt.Fprintf(&b, "\n[line %d] in %s", fr.Line, fr.Function)
	}
	return b.String()
}

// frame tracks, for one active call (or the implicit top-level script
// frame at index 0), the name of the function running and the line of the
// statement/expression most recently entered in it — exactly the line a
// call out of this frame would be blamed on if something deeper fails.
type frame struct {
	name string
	line int
}

// setLine records the current line in the innermost active frame.
func (in *Interpreter) setLine(line int) {
	in.callStack[len(in.callStack)-1].line = line
}

// runtimeErrorf builds a RuntimeError from the current call stack,
// formatted per spec §6: message, then one "[line L] in <name>" line per
// frame, innermost first.
func (in *Interpreter) runtimeErrorf(format string, args ...any) *RuntimeError {
	err := &RuntimeError{Message: fmt.Sprintf(format, args...)}
	for i := len(in.callStack) - 1; i >= 0; i-- {
		fr := in.callStack[i]
		name := "script"
		if fr.name != "" {
			name = fr.name + "()"
		}
		err.Trace = append(err.Trace, TraceFrame{Line: fr.line, Function: name})
	}
	return err
}
