package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	for _, name := range []string{"b.yaml", "a.JSON", "notes.txt", "nested/c.yml"} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	}

	t.Run("directory", func(t *testing.T) {
		files, err := FindFilesByExtension(root, ModelExtensions...)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(root, "a.JSON"),
			filepath.Join(root, "b.yaml"),
			filepath.Join(root, "nested", "c.yml"),
		}, files)
	})

	t.Run("single file is returned as is", func(t *testing.T) {
		path := filepath.Join(root, "notes.txt")
		files, err := FindFilesByExtension(path, ModelExtensions...)
		require.NoError(t, err)
		assert.Equal(t, []string{path}, files)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := FindFilesByExtension(filepath.Join(root, "nope"), ".yaml")
		assert.Error(t, err)
	})

	t.Run("no extension panics", func(t *testing.T) {
		assert.Panics(t, func() { _, _ = FindFilesByExtension(root) })
	})
}
