package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFallsBack(t *testing.T) {
	t.Setenv("EPS_TEST_VALUE", "  ")
	assert.Equal(t, "fallback", Get("EPS_TEST_VALUE", "fallback"))

	t.Setenv("EPS_TEST_VALUE", "set")
	assert.Equal(t, "set", Get("EPS_TEST_VALUE", "fallback"))
}

func TestLoadDotenvKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("EPS_DOTENV_A=from-file\nEPS_DOTENV_B=from-file\n"), 0o600))

	t.Setenv("EPS_DOTENV_A", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("EPS_DOTENV_B") })

	loaded, err := LoadDotenv(filepath.Join(dir, "missing.env"), path)
	require.NoError(t, err)
	assert.Equal(t, path, loaded)
	assert.Equal(t, "from-env", os.Getenv("EPS_DOTENV_A"))
	assert.Equal(t, "from-file", os.Getenv("EPS_DOTENV_B"))
}

func TestLoadDotenvNoFiles(t *testing.T) {
	loaded, err := LoadDotenv(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
