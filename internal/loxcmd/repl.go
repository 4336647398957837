package loxcmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/loxcraft/internal/lox/interpreter"
	"github.com/mna/loxcraft/internal/lox/vm"
)

// repl reads one line at a time and interprets it, printing errors to
// stderr without terminating (spec §6 "errors print to stderr and do not
// terminate"). Ctrl-D (EOF) exits cleanly (SPEC_FULL.md §3).
func (c *Cmd) repl(ctx context.Context, stdio mainer.Stdio) {
	machine := vm.New(vm.WithStdout(stdio.Stdout), vm.WithStderr(stdio.Stderr), vm.WithStressGC(c.StressGC), vm.WithLogGC(c.LogGC))
	tree := interpreter.New()
	tree.Stdout = stdio.Stdout

	scan := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !scan.Scan() {
			return
		}
		line := scan.Text()

		var err error
		if c.TreeWalk {
			err = tree.Interpret(line)
		} else {
			err = machine.Interpret(line)
		}
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
		}
	}
}
