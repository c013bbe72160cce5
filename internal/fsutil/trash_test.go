package fsutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeForAppleScript(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain path", "/Users/test/Library/Caches", "/Users/test/Library/Caches"},
		{"quotes", `/Users/test/My "Documents"`, `/Users/test/My \"Documents\"`},
		{"backslash", `/Users/test/path\with\backslash`, `/Users/test/path\\with\\backslash`},
		// Backslash must be escaped before quotes or the quote escape
		// gets double-escaped.
		{"backslash then quote", `/Users/test\"path`, `/Users/test\\\"path`},
		{"empty", "", ""},
		{"unicode", "/Users/test/한글경로/日本語", "/Users/test/한글경로/日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EscapeForAppleScript(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEscapeForAppleScript_ControlCharacters(t *testing.T) {
	_, err := EscapeForAppleScript("/Users/test/path\nwith\nnewlines")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = EscapeForAppleScript("/Users/test/path\rwith\rreturns")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestMoveToTrash_CanBeMocked(t *testing.T) {
	orig := MoveToTrash
	t.Cleanup(func() { MoveToTrash = orig })

	var calledPath string
	MoveToTrash = func(path string) error {
		calledPath = path
		return nil
	}

	assert.NoError(t, MoveToTrash("/test/path"))
	assert.Equal(t, "/test/path", calledPath)
}

func TestMoveToTrashImpl_InvalidPath(t *testing.T) {
	err := moveToTrashImpl("/Users/test/bad\npath")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestExecuteTrashBatch_Empty(t *testing.T) {
	assert.NoError(t, executeTrashBatch(nil))
}

func TestExecuteTrashBatch_InvalidPath(t *testing.T) {
	// Escape failures surface before any osascript invocation.
	err := executeTrashBatch([]string{"/ok/path", "/bad\npath"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid path")
}

func TestMoveToTrashBatch_Empty(t *testing.T) {
	result := moveToTrashBatchImpl(nil)
	assert.Empty(t, result.Succeeded)
	assert.Empty(t, result.Failed)
}

func TestMoveToTrashBatch_FallsBackPerItem(t *testing.T) {
	orig := MoveToTrash
	t.Cleanup(func() { MoveToTrash = orig })

	var calls []string
	MoveToTrash = func(path string) error {
		calls = append(calls, path)
		if path == "/fails\nanyway" {
			return fmt.Errorf("finder refused: %s", path)
		}
		return nil
	}

	// Paths with control characters make the batch script unbuildable, so
	// the whole batch degrades to one-by-one deletion.
	paths := []string{"/first\nfile", "/fails\nanyway", "/third\nfile"}
	result := moveToTrashBatchImpl(paths)

	assert.Equal(t, []string{"/first\nfile", "/third\nfile"}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Error(t, result.Failed["/fails\nanyway"])
	assert.Equal(t, paths, calls, "every path in the failed batch is retried individually")
}

func TestMoveToTrashBatch_CanBeMocked(t *testing.T) {
	orig := MoveToTrashBatch
	t.Cleanup(func() { MoveToTrashBatch = orig })

	MoveToTrashBatch = func(paths []string) TrashBatchResult {
		return TrashBatchResult{
			Succeeded: paths,
			Failed:    map[string]error{},
		}
	}

	result := MoveToTrashBatch([]string{"/a", "/b"})
	assert.Equal(t, []string{"/a", "/b"}, result.Succeeded)
	assert.Empty(t, result.Failed)
}

func TestMoveToTrashBatch_ErrorsAreDistinct(t *testing.T) {
	orig := MoveToTrash
	t.Cleanup(func() { MoveToTrash = orig })

	sentinel := errors.New("locked by Finder")
	MoveToTrash = func(path string) error { return sentinel }

	result := moveToTrashBatchImpl([]string{"/a\nx", "/b\nx"})

	assert.Empty(t, result.Succeeded)
	require.Len(t, result.Failed, 2)
	assert.ErrorIs(t, result.Failed["/a\nx"], sentinel)
	assert.ErrorIs(t, result.Failed["/b\nx"], sentinel)
}
