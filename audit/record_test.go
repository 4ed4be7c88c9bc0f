package audit

import (
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/safedep/depwatch/exfil"
	"github.com/stretchr/testify/assert"
)

func TestCurrentProcessMarksReinjectedWhenParentPIDMatches(t *testing.T) {
	t.Setenv("FIREWALL_PARENT_PID", strconv.Itoa(os.Getppid()))

	process := CurrentProcess()
	assert.True(t, process.Reinjected)
}

func TestCurrentProcessNotReinjectedWhenParentPIDMismatches(t *testing.T) {
	t.Setenv("FIREWALL_PARENT_PID", "1")

	process := CurrentProcess()
	assert.False(t, process.Reinjected)
}

func TestNewFindingRecordCarriesKindAndSeverity(t *testing.T) {
	finding := exfil.Finding{
		Kind:     exfil.FindingCredentialExfiltration,
		Severity: exfil.SeverityCritical,
		At:       time.Now(),
		Target:   "evil.example.com",
		Method:   "POST",
	}

	record := NewFindingRecord(finding)
	assert.Equal(t, "EXFIL_FINDING", record.Type)
	assert.False(t, record.Allowed)
	assert.Equal(t, "evil.example.com", record.Target)
	assert.EqualValues(t, "critical", record.Severity)
}
