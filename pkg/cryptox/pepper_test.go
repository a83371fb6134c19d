package cryptox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOrGeneratePepper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets", "pepper")

	first, err := LoadOrGeneratePepper(path)
	require.NoError(t, err)
	require.Len(t, first, 43)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := LoadOrGeneratePepper(path)
	require.NoError(t, err)
	require.Equal(t, first, second, "existing pepper must be reused")
}

func TestLoadOrGeneratePepperTrimsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pepper")
	require.NoError(t, os.WriteFile(path, []byte("  house-pepper\n"), 0o600))

	pepper, err := LoadOrGeneratePepper(path)
	require.NoError(t, err)
	require.Equal(t, "house-pepper", pepper)
}

func TestLoadOrGeneratePepperEmptyPath(t *testing.T) {
	pepper, err := LoadOrGeneratePepper("")
	require.NoError(t, err)
	require.Empty(t, pepper)
}
