package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func exampleExceptions() map[string]Exception {
	return map[string]Exception{
		"left-pad": {
			AllowFilesystem:  []string{"/tmp/build"},
			AllowNetwork:     []string{"registry.npmjs.org"},
			AllowCommands:    []string{"node"},
			AllowEnvironment: []string{"NODE_ENV"},
		},
	}
}

func TestExceptionAllowsPath(t *testing.T) {
	exceptions := exampleExceptions()

	ok, pattern := ExceptionAllowsPath(exceptions, "left-pad", "/tmp/build/out.js")
	assert.True(t, ok)
	assert.Equal(t, "/tmp/build", pattern)

	ok, _ = ExceptionAllowsPath(exceptions, "left-pad", "/etc/passwd")
	assert.False(t, ok)

	ok, _ = ExceptionAllowsPath(exceptions, "unknown-pkg", "/tmp/build/out.js")
	assert.False(t, ok)
}

func TestExceptionAllowsHost(t *testing.T) {
	exceptions := exampleExceptions()

	ok, _ := ExceptionAllowsHost(exceptions, "left-pad", "registry.npmjs.org")
	assert.True(t, ok)

	ok, _ = ExceptionAllowsHost(exceptions, "left-pad", "evil.example.com")
	assert.False(t, ok)
}

func TestExceptionAllowsCommand(t *testing.T) {
	exceptions := exampleExceptions()

	assert.True(t, ExceptionAllowsCommand(exceptions, "left-pad", "node"))
	assert.False(t, ExceptionAllowsCommand(exceptions, "left-pad", "curl"))
}

func TestExceptionAllowsEnvironmentVariable(t *testing.T) {
	exceptions := exampleExceptions()

	assert.True(t, ExceptionAllowsEnvironmentVariable(exceptions, "left-pad", "NODE_ENV"))
	assert.False(t, ExceptionAllowsEnvironmentVariable(exceptions, "left-pad", "AWS_SECRET_ACCESS_KEY"))
}

func TestEffectiveAllowedPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Filesystem.AllowedPaths = []string{"/repo"}
	cfg.Exceptions = exampleExceptions()

	paths := EffectiveAllowedPaths(cfg, "left-pad")
	assert.ElementsMatch(t, []string{"/repo", "/tmp/build"}, paths)

	paths = EffectiveAllowedPaths(cfg, "unknown-pkg")
	assert.ElementsMatch(t, []string{"/repo"}, paths)
}
