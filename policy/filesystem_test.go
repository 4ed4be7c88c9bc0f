package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/safedep/depwatch/config"
	"github.com/safedep/depwatch/origin"
	"github.com/stretchr/testify/assert"
)

func TestCheckFilesystemBlockedRead(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Filesystem.BlockedReadPaths = []string{"/home/u/.ssh"}

	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{
		Kind:   KindRead,
		Target: "/home/u/.ssh/id_rsa",
	}, CounterSnapshot{})

	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonBlockedRead, v.Reason)
	assert.Equal(t, SeverityHigh, v.Severity)
}

func TestCheckFilesystemSymlinkBypassViaRealpath(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Filesystem.BlockedReadPaths = []string{"/home/u/.ssh"}

	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{
		Kind:     KindRead,
		Target:   "/tmp/link",
		RealPath: "/home/u/.ssh/id_rsa",
	}, CounterSnapshot{})

	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonBlockedRead, v.Reason)
}

func TestCheckFilesystemSymlinkCreateDestinationChecked(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Filesystem.BlockedReadPaths = []string{"/home/u/.ssh"}

	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{
		Kind:       KindSymlink,
		Target:     "/tmp/link",
		DestTarget: "/home/u/.ssh/id_rsa",
	}, CounterSnapshot{})

	assert.False(t, v.Allowed)
}

func TestCheckFilesystemInstallModeFastPath(t *testing.T) {
	cfg := config.DefaultConfig()
	engine := NewEngine(cfg, true)

	v := engine.Check(Operation{
		Kind:   KindWrite,
		Target: "/repo/node_modules/left-pad/index.js",
	}, CounterSnapshot{})

	assert.True(t, v.Allowed)
	assert.Equal(t, ReasonAllowInstallMode, v.Reason)
}

func TestCheckFilesystemTrustedModuleBypassesBlockedPath(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Filesystem.BlockedReadPaths = []string{"/home/u/.ssh"}
	cfg.TrustedModules = []config.TrustedModule{{Name: "left-pad"}}

	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{
		Kind:   KindRead,
		Target: "/home/u/.ssh/id_rsa",
		Origin: origin.Tag{Name: "left-pad"},
	}, CounterSnapshot{})

	assert.True(t, v.Allowed)
	assert.Equal(t, ReasonAllowTrusted, v.Reason)
}

func TestCheckFilesystemExceptionAllowsPath(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Filesystem.BlockedReadPaths = []string{"/home/u/.ssh"}
	cfg.Exceptions = map[string]config.Exception{
		"left-pad": {AllowFilesystem: []string{"/home/u/.ssh"}},
	}

	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{
		Kind:   KindRead,
		Target: "/home/u/.ssh/id_rsa",
		Origin: origin.Tag{Name: "left-pad"},
	}, CounterSnapshot{})

	assert.True(t, v.Allowed)
	assert.Equal(t, ReasonAllowException, v.Reason)
}

func TestCheckFilesystemBlockedExtensionWrite(t *testing.T) {
	cfg := config.DefaultConfig()
	engine := NewEngine(cfg, false)

	dir := t.TempDir()
	target := filepath.Join(dir, "payload.sh")

	v := engine.Check(Operation{
		Kind:   KindWrite,
		Target: target,
	}, CounterSnapshot{})

	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonBlockedExtension, v.Reason)
	assert.Equal(t, SeverityCritical, v.Severity)
}

func TestCheckFilesystemShebangWrite(t *testing.T) {
	cfg := config.DefaultConfig()
	engine := NewEngine(cfg, false)

	dir := t.TempDir()
	target := filepath.Join(dir, "setup.bin")

	v := engine.Check(Operation{
		Kind:           KindWrite,
		Target:         target,
		ContentPreview: []byte("#!/bin/bash\nrm -rf /\n"),
	}, CounterSnapshot{})

	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonExecutableFileBlocked, v.Reason)
}

func TestCheckFilesystemStrictModeDeniesUnlistedWrite(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeStrict
	cfg.Filesystem.AllowedPaths = []string{"/repo"}

	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{
		Kind:   KindWrite,
		Target: "/elsewhere/out.txt",
	}, CounterSnapshot{})

	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonStrictModeNotAllowed, v.Reason)
}

func TestCheckFilesystemAllowsOrdinaryRead(t *testing.T) {
	cfg := config.DefaultConfig()
	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{
		Kind:   KindRead,
		Target: "/var/data/report.csv",
	}, CounterSnapshot{})

	assert.True(t, v.Allowed)
}

func TestCheckFilesystemAllowsProjectConfigRead(t *testing.T) {
	cfg := config.DefaultConfig()
	engine := NewEngine(cfg, false)

	cwd, err := os.Getwd()
	assert.NoError(t, err)

	v := engine.Check(Operation{
		Kind:   KindRead,
		Target: filepath.Join(cwd, ".env"),
	}, CounterSnapshot{})

	assert.True(t, v.Allowed)
	assert.Equal(t, ReasonAllowProjectConfig, v.Reason)
}

func TestCheckFilesystemDeniesTamperWithOwnAuditFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Reporting.AuditFile = "/var/log/depwatch/firewall-audit.jsonl"

	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{
		Kind:   KindWrite,
		Target: "/var/log/depwatch/firewall-audit.jsonl",
		Origin: origin.Tag{Name: "untrusted-pkg"},
	}, CounterSnapshot{})

	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonFirewallOutputTampering, v.Reason)
	assert.Equal(t, SeverityCritical, v.Severity)
}

func TestCheckFilesystemAllowsFirewallOriginToWriteOwnAuditFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Reporting.AuditFile = "/var/log/depwatch/firewall-audit.jsonl"

	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{
		Kind:   KindWrite,
		Target: "/var/log/depwatch/firewall-audit.jsonl",
		Origin: origin.Tag{Name: FirewallOriginName, Trusted: true},
	}, CounterSnapshot{})

	assert.True(t, v.Allowed)
}

func TestCheckFilesystemDeniesDeleteOfOwnDefaultAuditFile(t *testing.T) {
	cfg := config.DefaultConfig()
	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{
		Kind:   KindDelete,
		Target: "/tmp/anywhere/firewall-audit.jsonl",
		Origin: origin.Tag{Name: "untrusted-pkg"},
	}, CounterSnapshot{})

	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonFirewallOutputTampering, v.Reason)
}
