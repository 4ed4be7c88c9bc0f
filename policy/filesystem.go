package policy

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/safedep/depwatch/classify"
	"github.com/safedep/depwatch/config"
)

// FirewallOriginName is the reserved origin name the firewall's own
// internal components (the audit logger, the self-protection layer) carry
// when they write to their own output files. Sandboxed code is never
// constructed with this origin, so the comparison in the self-protection
// check below cannot be satisfied by dependency code (spec.md §4.5).
const FirewallOriginName = "depwatch-firewall"

// checkFilesystem implements the filesystem resolution order (spec.md §4.1).
func (e *Engine) checkFilesystem(op Operation) Verdict {
	isWrite := op.Kind == KindWrite || op.Kind == KindCreate || op.Kind == KindDelete || op.Kind == KindSymlink

	// Self-protection (spec.md §4.5, runs ahead of the numbered resolution
	// order below): the firewall's own output files can only be written or
	// deleted by the firewall itself.
	if isWrite || op.Kind == KindDelete {
		if isFirewallOutputPath(e.cfg, op.Target) && !(op.Origin.Name == FirewallOriginName && op.Origin.Trusted) {
			return Deny(ReasonFirewallOutputTampering, SeverityCritical)
		}
	}

	// Step 2: install-mode fast path.
	if e.installMode && classify.IsBuildCachePath(op.Target) {
		return Allow(ReasonAllowInstallMode)
	}

	// Step 3: project configuration files.
	if op.Kind == KindRead {
		if cwd, err := os.Getwd(); err == nil && classify.IsProjectConfigPath(op.Target, cwd, 2) {
			return Allow(ReasonAllowProjectConfig)
		}

		// Step 4: recognized source files under CWD or a build-cache path.
		if classify.IsRecognizedSourcePath(op.Target) {
			if cwd, err := os.Getwd(); err == nil {
				if rel, rerr := filepath.Rel(cwd, op.Target); rerr == nil && !hasParentTraversal(rel) {
					return Allow(ReasonAllowSourceFile)
				}
			}

			if classify.IsBuildCachePath(op.Target) {
				return Allow(ReasonAllowSourceFile)
			}
		}
	}

	originName := op.Origin.Name

	// Step 5: exception allow-list.
	if ok, pattern := config.ExceptionAllowsPath(e.cfg.Exceptions, originName, op.Target); ok {
		return Allow(ReasonAllowException).WithPattern(pattern).WithException(originName)
	}

	// Step 6: trusted modules.
	if config.IsTrustedModule(e.cfg.TrustedModules, originName, "") {
		return Allow(ReasonAllowTrusted)
	}

	// Step 7: blocked-write shape checks.
	if isWrite {
		if v, deny := e.checkBlockedWriteShape(op); deny {
			return v
		}
	}

	// Step 8: blocked read/write path match, both original and realpath form.
	if v, deny := e.checkBlockedPaths(op, isWrite); deny {
		return v
	}

	// Step 9: strict mode allowed-paths enforcement.
	if isWrite && e.cfg.Mode == config.ModeStrict {
		allowed := config.EffectiveAllowedPaths(e.cfg, originName)
		if ok, _ := classify.MatchesAnyPathPattern(op.Target, allowed); !ok {
			return Deny(ReasonStrictModeNotAllowed, SeverityMedium)
		}
	}

	// Step 10: default.
	return Allow(ReasonAllowDefault)
}

// isFirewallOutputPath reports whether target names one of the firewall's
// own output files, matched by basename (spec.md §4.5: "the firewall's
// own log/audit/report files are detected by filename").
func isFirewallOutputPath(cfg config.Config, target string) bool {
	base := filepath.Base(target)

	candidates := []string{"firewall-audit.jsonl"}
	if cfg.Reporting.LogFile != "" {
		candidates = append(candidates, filepath.Base(cfg.Reporting.LogFile))
	}
	if cfg.Reporting.AuditFile != "" {
		candidates = append(candidates, filepath.Base(cfg.Reporting.AuditFile))
	}

	for _, candidate := range candidates {
		if candidate != "" && base == candidate {
			return true
		}
	}

	return false
}

func hasParentTraversal(rel string) bool {
	if rel == ".." {
		return true
	}

	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == ".." {
			return true
		}
	}

	return false
}

func (e *Engine) checkBlockedWriteShape(op Operation) (Verdict, bool) {
	ext := filepath.Ext(op.Target)

	blockedExt := classify.IsBlockedWriteExtension(ext)
	for _, configured := range e.cfg.Filesystem.BlockedExtensions {
		if configured == ext {
			blockedExt = true
		}
	}

	shebang := classify.HasShebang(op.ContentPreview)
	executableExisting := classify.IsExecutableFile(op.Target)

	if !blockedExt && !shebang && !executableExisting {
		return Verdict{}, false
	}

	cwd, err := os.Getwd()
	if err == nil && classify.IsBuildCachePath(op.Target) {
		if rel, rerr := filepath.Rel(cwd, op.Target); rerr == nil && !hasParentTraversal(rel) {
			return Verdict{}, false
		}
	}

	if blockedExt {
		return Deny(ReasonBlockedExtension, SeverityCritical).WithExtension(ext), true
	}

	return Deny(ReasonExecutableFileBlocked, SeverityCritical), true
}

func (e *Engine) checkBlockedPaths(op Operation, isWrite bool) (Verdict, bool) {
	patterns := e.cfg.Filesystem.BlockedReadPaths
	reason := ReasonBlockedRead
	severity := SeverityHigh

	if isWrite {
		patterns = e.cfg.Filesystem.BlockedWritePaths
		reason = ReasonBlockedWrite
		severity = SeverityCritical
	}

	targets := []string{op.Target, classify.CanonicalTempAlias(op.Target)}
	if op.RealPath != "" {
		targets = append(targets, op.RealPath, classify.CanonicalTempAlias(op.RealPath))
	}

	for _, target := range targets {
		if ok, pattern := classify.MatchesAnyPathPattern(target, patterns); ok {
			return Deny(reason, severity).WithPattern(pattern), true
		}
	}

	// Two-path operations additionally check the destination as a write
	// (spec.md §4.2 step 3): a symlink pointing at a blocked-read location
	// is denied even though the link's own location is permitted.
	if op.DestTarget != "" {
		destTargets := []string{op.DestTarget, classify.CanonicalTempAlias(op.DestTarget)}
		for _, target := range destTargets {
			if ok, pattern := classify.MatchesAnyPathPattern(target, e.cfg.Filesystem.BlockedWritePaths); ok {
				return Deny(ReasonBlockedWrite, SeverityCritical).WithPattern(pattern), true
			}
			if ok, pattern := classify.MatchesAnyPathPattern(target, e.cfg.Filesystem.BlockedReadPaths); ok {
				return Deny(ReasonBlockedRead, SeverityHigh).WithPattern(pattern), true
			}
		}
	}

	return Verdict{}, false
}
