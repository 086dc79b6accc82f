package file_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/agentlisp"
	"github.com/aretw0/agentlisp/pkg/adapters/file"
	"github.com/aretw0/agentlisp/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_DefaultPath(t *testing.T) {
	s := file.New("")
	assert.Equal(t, filepath.Join(".agentlisp", "sessions"), s.BasePath)
}

func TestFileStore_RejectsEmptySessionID(t *testing.T) {
	s := file.New(t.TempDir())
	ctx := context.Background()

	assert.Error(t, s.Save(ctx, "", nil))
	_, err := s.Load(ctx, "")
	assert.Error(t, err)
	assert.Error(t, s.Delete(ctx, ""))
}

func TestFileStore_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	s := file.New(dir)
	ctx := context.Background()

	eng, err := agentlisp.NewFromSource(`(defun main () (read))`)
	require.NoError(t, err)
	state, err := eng.Start()
	require.NoError(t, err)
	state, err = eng.RunToBoundary(ctx, state)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "sess", state))
	require.NoError(t, s.Save(ctx, "sess", state)) // overwrite path

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "tmp-"),
			"temp file left behind: %s", e.Name())
	}
}

func TestFileStore_ListSkipsStrandedTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := file.New(dir)
	ctx := context.Background()

	eng, err := agentlisp.NewFromSource(`(defun main () (read))`)
	require.NoError(t, err)
	state, err := eng.Start()
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "real", state))

	// Simulate a crash between CreateTemp and the rename.
	stranded := filepath.Join(dir, "tmp-real-123456.json")
	require.NoError(t, os.WriteFile(stranded, []byte("{"), 0644))

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"real"}, ids)
}
