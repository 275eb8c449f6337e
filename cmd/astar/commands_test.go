package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zucenko/pathviz/model"
	"github.com/zucenko/pathviz/search"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeSplit(t, stdin, args...)
	return out, err
}

func executeSplit(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := run(cmd, args)
	return out.String(), errOut.String(), err
}

func TestSolveStdin(t *testing.T) {
	board := strings.Join([]string{
		"S.#..",
		"..#..",
		"....T",
	}, "\n")
	out, err := execute(t, board, "solve", "--layout", "-", "--tie-break", "0")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4, out)
	assert.Equal(t, "....T", strings.ReplaceAll(lines[2], "*", "."))
	assert.Equal(t, 5, strings.Count(out, "*"), "every cell between S and T is drawn")
	assert.Equal(t, 2, strings.Count(out, "#"))
	assert.True(t, strings.HasPrefix(lines[3], "path of 6 steps, "), out)
}

func TestSolveFileUnreachable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walled.txt")
	require.NoError(t, os.WriteFile(path, []byte("S#.\n##.\n..T\n"), 0o644))

	out, err := execute(t, "", "solve", "--layout", path)
	assert.ErrorIs(t, err, search.ErrUnreachable)
	assert.Contains(t, out, "unreachable after 1 expansions")
}

func TestSolveEmptyBoard(t *testing.T) {
	out, err := execute(t, "", "solve", "--scale", "2", "-q")
	require.NoError(t, err)
	assert.Equal(t, "path of 48 steps", strings.SplitN(out, ",", 2)[0])
}

func TestSolveBadInput(t *testing.T) {
	_, err := execute(t, "S.X\n..T\n", "solve", "--layout", "-")
	assert.ErrorIs(t, err, model.ErrLayout)

	_, err = execute(t, "", "solve", "--scale", "0")
	assert.ErrorIs(t, err, model.ErrDimensionMismatch)

	_, err = execute(t, "", "solve", "--log-level", "chatty")
	assert.Error(t, err)

	_, err = execute(t, "", "solve", "stray")
	assert.Error(t, err)
}

func TestFailuresReachStderr(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")
	out, errOut, err := executeSplit(t, "", "solve", "--layout", missing)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "astar: ")
	assert.Contains(t, errOut, "missing.txt")

	_, errOut, err = executeSplit(t, "S.X\n..T\n", "solve", "--layout", "-")
	assert.ErrorIs(t, err, model.ErrLayout)
	assert.Contains(t, errOut, err.Error())

	_, errOut, err = executeSplit(t, "", "solve", "--no-such-flag")
	require.Error(t, err)
	assert.Contains(t, errOut, "no-such-flag")
}

func TestUnreachableIsNotRepeatedOnStderr(t *testing.T) {
	out, errOut, err := executeSplit(t, "S#\n#T\n", "solve", "--layout", "-")
	assert.ErrorIs(t, err, search.ErrUnreachable)
	assert.Contains(t, out, "unreachable after")
	assert.Empty(t, errOut)
}
