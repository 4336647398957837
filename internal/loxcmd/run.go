package loxcmd

import (
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/loxcraft/internal/lox/compiler"
	"github.com/mna/loxcraft/internal/lox/debug"
	"github.com/mna/loxcraft/internal/lox/interpreter"
	"github.com/mna/loxcraft/internal/lox/vm"
)

// runFile reads path and interprets it once, returning the spec §6 exit
// code: 65 on compile error, 70 on runtime error, 0 otherwise; 74 if the
// file cannot be read.
func (c *Cmd) runFile(stdio mainer.Stdio, path string) mainer.ExitCode {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return mainer.ExitCode(74) // sysexits EX_IOERR, file could not be opened
	}

	if c.TreeWalk {
		return c.runTreeWalk(stdio, string(src))
	}
	return c.runBytecode(stdio, string(src))
}

func (c *Cmd) runBytecode(stdio mainer.Stdio, source string) mainer.ExitCode {
	if c.Disassemble {
		machine := vm.New()
		fn, err := compiler.Compile(source, machine)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return mainer.ExitCode(65)
		}
		fmt.Fprint(stdio.Stdout, debug.DisassembleChunk(fn.Chunk, "script"))
	}

	machine := vm.New(vm.WithStdout(stdio.Stdout), vm.WithStderr(stdio.Stderr), vm.WithStressGC(c.StressGC), vm.WithLogGC(c.LogGC))
	if err := machine.Interpret(source); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		if _, ok := err.(*vm.RuntimeError); ok {
			return mainer.ExitCode(70)
		}
		return mainer.ExitCode(65)
	}
	return mainer.Success
}

func (c *Cmd) runTreeWalk(stdio mainer.Stdio, source string) mainer.ExitCode {
	tree := interpreter.New()
	tree.Stdout = stdio.Stdout
	if err := tree.Interpret(source); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		if _, ok := err.(*interpreter.RuntimeError); ok {
			return mainer.ExitCode(70)
		}
		return mainer.ExitCode(65)
	}
	return mainer.Success
}
