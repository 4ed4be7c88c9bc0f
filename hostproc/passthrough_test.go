package hostproc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassthroughSpawnCapturesOutput(t *testing.T) {
	proc := NewPassthrough()

	result, err := proc.Spawn(context.Background(), SpawnSpec{
		Program: "echo",
		Args:    []string{"hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, string(result.Stdout), "hello")
}

func TestPassthroughSpawnCapturesNonZeroExit(t *testing.T) {
	proc := NewPassthrough()

	result, err := proc.Spawn(context.Background(), SpawnSpec{
		Program: "sh",
		Args:    []string{"-c", "exit 3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
}

func TestPassthroughEnvRoundTrip(t *testing.T) {
	proc := NewPassthrough()
	ctx := context.Background()

	require.NoError(t, proc.Setenv(ctx, "HOSTPROC_TEST_VAR", "value"))
	assert.True(t, proc.Contains(ctx, "HOSTPROC_TEST_VAR"))

	value, ok := proc.Getenv(ctx, "HOSTPROC_TEST_VAR")
	assert.True(t, ok)
	assert.Equal(t, "value", value)

	require.NoError(t, proc.Unsetenv(ctx, "HOSTPROC_TEST_VAR"))
	assert.False(t, proc.Contains(ctx, "HOSTPROC_TEST_VAR"))
}
