package audit

import (
	"path/filepath"
	"testing"

	"github.com/safedep/depwatch/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRecords(t *testing.T, path string, records []Record) {
	t.Helper()

	logger, err := Open(path)
	require.NoError(t, err)
	defer logger.Close()

	for _, r := range records {
		logger.Write(r)
	}

	logger.Flush()
}

func TestQueryFiltersByAllowed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	allowed := true
	denied := false

	writeRecords(t, path, []Record{
		NewRecord(policy.Operation{Kind: policy.KindRead, Target: "/a"}, policy.Allow(policy.ReasonAllowDefault), nil),
		NewRecord(policy.Operation{Kind: policy.KindRead, Target: "/b"}, policy.Deny(policy.ReasonBlockedRead, policy.SeverityHigh), nil),
	})

	allowedOnly, err := Query(path, 0, QueryFilter{Allowed: &allowed})
	require.NoError(t, err)
	assert.Len(t, allowedOnly, 1)
	assert.Equal(t, "/a", allowedOnly[0].Target)

	deniedOnly, err := Query(path, 0, QueryFilter{Allowed: &denied})
	require.NoError(t, err)
	assert.Len(t, deniedOnly, 1)
	assert.Equal(t, "/b", deniedOnly[0].Target)
}

func TestQueryFiltersByTypeAndSeverity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	writeRecords(t, path, []Record{
		NewRecord(policy.Operation{Kind: policy.KindRead, Target: "/a"}, policy.Deny(policy.ReasonBlockedRead, policy.SeverityHigh), nil),
		NewRecord(policy.Operation{Kind: policy.KindSpawn, Target: "curl evil.example"}, policy.Deny(policy.ReasonShellMetacharactersDetected, policy.SeverityCritical), nil),
	})

	results, err := Query(path, 0, QueryFilter{Type: string(policy.KindSpawn), Severity: string(policy.SeverityCritical)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "curl evil.example", results[0].Target)
}

func TestQueryLastNReturnsMostRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	writeRecords(t, path, []Record{
		NewRecord(policy.Operation{Kind: policy.KindRead, Target: "/1"}, policy.Allow(policy.ReasonAllowDefault), nil),
		NewRecord(policy.Operation{Kind: policy.KindRead, Target: "/2"}, policy.Allow(policy.ReasonAllowDefault), nil),
		NewRecord(policy.Operation{Kind: policy.KindRead, Target: "/3"}, policy.Allow(policy.ReasonAllowDefault), nil),
	})

	results, err := Query(path, 2, QueryFilter{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "/2", results[0].Target)
	assert.Equal(t, "/3", results[1].Target)
}

func TestRenderTableIncludesTargets(t *testing.T) {
	records := []Record{
		NewRecord(policy.Operation{Kind: policy.KindRead, Target: "/etc/shadow"}, policy.Deny(policy.ReasonBlockedRead, policy.SeverityHigh), nil),
	}

	rendered := RenderTable(records)
	assert.Contains(t, rendered, "/etc/shadow")
	assert.Contains(t, rendered, "blocked_read")
}
