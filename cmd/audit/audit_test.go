package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuditCommandHasTailSubcommand(t *testing.T) {
	cmd := NewAuditCommand()
	tail, _, err := cmd.Find([]string{"tail"})
	require.NoError(t, err)
	assert.Equal(t, "tail", tail.Name())
}

func TestTailRejectsInvalidAllowedFlag(t *testing.T) {
	dir := t.TempDir()
	auditFile := filepath.Join(dir, "audit.jsonl")
	require.NoError(t, os.WriteFile(auditFile, nil, 0o644))
	t.Setenv("FIREWALL_CONFIG", writeMinimalConfig(t, dir, auditFile))

	cmd := NewAuditCommand()
	cmd.SetArgs([]string{"tail", "--allowed", "maybe"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--allowed must be true or false")
}

func TestTailRendersRecordsFromAuditFile(t *testing.T) {
	dir := t.TempDir()
	auditFile := filepath.Join(dir, "audit.jsonl")
	record := `{"id":"r1","type":"write","allowed":false,"severity":"high","target":"/etc/passwd"}` + "\n"
	require.NoError(t, os.WriteFile(auditFile, []byte(record), 0o644))
	t.Setenv("FIREWALL_CONFIG", writeMinimalConfig(t, dir, auditFile))

	cmd := NewAuditCommand()
	cmd.SetArgs([]string{"tail", "--lines", "5"})

	require.NoError(t, cmd.Execute())
}

func writeMinimalConfig(t *testing.T, dir, auditFile string) string {
	t.Helper()

	path := filepath.Join(dir, "firewall-config.json")
	content := `{"reporting":{"audit_file":"` + auditFile + `"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}
