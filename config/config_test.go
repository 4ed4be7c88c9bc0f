package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ModeEnabled, cfg.Mode)
	assert.True(t, cfg.Network.Enabled)
	assert.Equal(t, NetworkModeEnforce, cfg.Network.Mode)
	assert.NotEmpty(t, cfg.Environment.ProtectedVariables)
	assert.NotNil(t, cfg.Exceptions)
}

func TestInjectAndFromContext(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeStrict

	ctx := cfg.Inject(context.Background())

	got, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, ModeStrict, got.Mode)
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}

func TestEquivalentIgnoresListOrder(t *testing.T) {
	a := DefaultConfig()
	a.Filesystem.BlockedReadPaths = []string{"/a", "/b", "/c"}

	b := DefaultConfig()
	b.Filesystem.BlockedReadPaths = []string{"/c", "/a", "/b"}

	assert.True(t, a.Equivalent(b))
}

func TestEquivalentDetectsDifference(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	b.Filesystem.BlockedReadPaths = append(b.Filesystem.BlockedReadPaths, "/extra")

	assert.False(t, a.Equivalent(b))
}

func TestIsInstallMode(t *testing.T) {
	assert.True(t, IsInstallMode(map[string]string{"FIREWALL_INSTALL_MODE": "1"}))
	assert.True(t, IsInstallMode(map[string]string{"npm_command": "install"}))
	assert.True(t, IsInstallMode(map[string]string{"npm_lifecycle_event": "install"}))
	assert.False(t, IsInstallMode(map[string]string{"npm_command": "run"}))
}

func TestIsFirewallActiveReadsEnvFlag(t *testing.T) {
	assert.False(t, IsFirewallActive())

	t.Setenv("FIREWALL_ACTIVE", "1")
	assert.True(t, IsFirewallActive())
}

func TestIsFortressModeReadsEnvFlag(t *testing.T) {
	assert.False(t, IsFortressMode())

	t.Setenv("FIREWALL_FORTRESS", "1")
	assert.True(t, IsFortressMode())
}

func TestIsVerboseReadsEnvFlag(t *testing.T) {
	assert.False(t, IsVerbose())

	t.Setenv("FIREWALL_VERBOSE", "1")
	assert.True(t, IsVerbose())
}

func TestReinjectedParentPIDReportsPresence(t *testing.T) {
	_, ok := ReinjectedParentPID()
	assert.False(t, ok)

	t.Setenv("FIREWALL_PARENT_PID", "1234")
	value, ok := ReinjectedParentPID()
	assert.True(t, ok)
	assert.Equal(t, "1234", value)
}
