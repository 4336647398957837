package loxcmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/mna/loxcraft/internal/loxcmd"
)

func writeTemp(t *testing.T, source string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.lox")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func runFile(t *testing.T, args []string, source string) (int, string, string) {
	t.Helper()
	path := writeTemp(t, source)
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdin: strings.NewReader(""), Stdout: &out, Stderr: &errOut}

	c := loxcmd.Cmd{}
	code := c.Main(append(append([]string{"loxcraft"}, args...), path), stdio)
	return int(code), out.String(), errOut.String()
}

func TestRunFileSuccessExitsZero(t *testing.T) {
	code, out, _ := runFile(t, nil, `print 1 + 2;`)
	require.Equal(t, 0, code)
	require.Equal(t, "3\n", out)
}

func TestRunFileCompileErrorExits65(t *testing.T) {
	code, _, errOut := runFile(t, nil, `var = ;`)
	require.Equal(t, 65, code)
	require.NotEmpty(t, errOut)
}

func TestRunFileRuntimeErrorExits70(t *testing.T) {
	code, _, errOut := runFile(t, nil, `var a; print a + 1;`)
	require.Equal(t, 70, code)
	require.Contains(t, errOut, "Operand")
}

func TestRunFileTreeWalkModeMatchesBytecode(t *testing.T) {
	code, out, _ := runFile(t, []string{"--tree-walk"}, `print "hi";`)
	require.Equal(t, 0, code)
	require.Equal(t, "hi\n", out)
}

func TestTooManyArgsExits64(t *testing.T) {
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdin: strings.NewReader(""), Stdout: &out, Stderr: &errOut}
	c := loxcmd.Cmd{}
	code := c.Main([]string{"loxcraft", "a.lox", "b.lox"}, stdio)
	require.Equal(t, 64, int(code))
}

func TestReplExitsCleanlyOnEOF(t *testing.T) {
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdin: strings.NewReader("print 1+1;\n"), Stdout: &out, Stderr: &errOut}
	c := loxcmd.Cmd{}
	code := c.Main([]string{"loxcraft"}, stdio)
	require.Equal(t, 0, int(code))
	require.Contains(t, out.String(), "2")
}
