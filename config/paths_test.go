package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoverConfigPathPrefersExplicit(t *testing.T) {
	path := DiscoverConfigPath("/explicit/path.json")
	assert.Equal(t, "/explicit/path.json", path)
}

func TestDiscoverConfigPathUsesEnv(t *testing.T) {
	t.Setenv(FirewallConfigEnv, "/from/env.json")
	assert.Equal(t, "/from/env.json", DiscoverConfigPath(""))
}

func TestDiscoverConfigPathFindsCWDHiddenFile(t *testing.T) {
	t.Setenv(FirewallConfigEnv, "")

	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	cfgPath := filepath.Join(dir, hiddenConfigFileName)
	assert.NoError(t, os.WriteFile(cfgPath, []byte("{}"), 0o644))

	assert.Equal(t, cfgPath, DiscoverConfigPath(""))
}

func TestDiscoverConfigPathReturnsEmptyWhenNotFound(t *testing.T) {
	t.Setenv(FirewallConfigEnv, "")

	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	assert.Equal(t, "", DiscoverConfigPath(""))
}

func chdir(t *testing.T, dir string) func() {
	t.Helper()

	original, err := os.Getwd()
	assert.NoError(t, err)
	assert.NoError(t, os.Chdir(dir))

	return func() {
		_ = os.Chdir(original)
	}
}
