// Package policy implements the pure decision procedure that turns a
// configuration, an operation, and a counter snapshot into a Verdict. The
// engine is a leaf: it calls nothing, and is called by the interception
// fabric (hostvfs, hostnet, hostproc) and the behavioral monitor, never the
// reverse.
package policy

// Severity ranks how serious a verdict is, independent of whether it was
// allowed. Audit records carry severity so operators can triage without
// re-deriving it from the reason string.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Reason enumerates the verdict.reason taxonomy from spec.md §7.
type Reason string

const (
	ReasonNone Reason = ""

	// Access denial.
	ReasonBlockedRead            Reason = "blocked_read"
	ReasonBlockedWrite           Reason = "blocked_write"
	ReasonBlockedExtension       Reason = "blocked_extension"
	ReasonExecutableFileBlocked  Reason = "executable_file_blocked"
	ReasonStrictModeNotAllowed   Reason = "strict_mode_not_allowed"
	ReasonFirewallOutputTampering Reason = "firewall_output_tampering"

	// Behavioral.
	ReasonHardLimitExceeded  Reason = "hard_limit_exceeded"
	ReasonThresholdExceeded  Reason = "threshold_exceeded"
	ReasonSuspiciousWrite    Reason = "SUSPICIOUS_FILE_WRITE"
	ReasonSuspiciousNetwork  Reason = "SUSPICIOUS_NETWORK_REQUEST"
	ReasonSuspiciousCommand  Reason = "SUSPICIOUS_COMMAND"

	// Command.
	ReasonShellMetacharactersDetected         Reason = "shell_metacharacters_detected"
	ReasonWhitelistedCommandWithShellInjection Reason = "whitelisted_command_with_shell_injection"
	ReasonNotInAllowedCommands                Reason = "not_in_allowed_commands"
	ReasonBlockedCommand                      Reason = "blocked_command"

	// Network.
	ReasonBlockedDomain               Reason = "blocked_domain"
	ReasonNotInAllowedDomains         Reason = "not_in_allowed_domains"
	ReasonSuspiciousPort              Reason = "suspicious_port"
	ReasonCredentialExfiltration      Reason = "CREDENTIAL_EXFILTRATION"
	ReasonTimingCorrelation           Reason = "TIMING_CORRELATION"
	ReasonInstallPhaseExternalNetwork Reason = "INSTALL_PHASE_EXTERNAL_NETWORK"
	ReasonRepoCreation                Reason = "REPO_CREATION"
	ReasonWorkflowCreation            Reason = "WORKFLOW_CREATION"

	// Environment.
	ReasonProtectedVariable  Reason = "protected_variable"
	ReasonStrictModeNoContext Reason = "strict_mode_no_context"
	ReasonUntrustedNoContext  Reason = "untrusted_no_context"

	// Internal.
	ReasonFirewallNotReady Reason = "firewall_not_ready"

	// Allow reasons, kept distinct for audit clarity even though they are
	// never surfaced as errors.
	ReasonAllowInstallMode Reason = "install_mode"
	ReasonAllowProjectConfig Reason = "project_config"
	ReasonAllowSourceFile  Reason = "source_file"
	ReasonAllowException   Reason = "exception"
	ReasonAllowTrusted     Reason = "trusted"
	ReasonAllowDefault     Reason = "allow"
)

// Verdict is the policy engine's sole output (spec.md §3, §6).
type Verdict struct {
	Allowed   bool
	Reason    Reason
	Severity  Severity
	Pattern   string
	Limit     int
	Current   int
	Exception string
	Extension string
}

// Allow builds an allow verdict with reason and SeverityInfo.
func Allow(reason Reason) Verdict {
	return Verdict{Allowed: true, Reason: reason, Severity: SeverityInfo}
}

// Deny builds a deny verdict with the given reason and severity.
func Deny(reason Reason, severity Severity) Verdict {
	return Verdict{Allowed: false, Reason: reason, Severity: severity}
}

// WithPattern returns a copy of v with Pattern set.
func (v Verdict) WithPattern(pattern string) Verdict {
	v.Pattern = pattern
	return v
}

// WithLimit returns a copy of v with Limit/Current set, for hard-limit
// denials.
func (v Verdict) WithLimit(limit, current int) Verdict {
	v.Limit = limit
	v.Current = current
	return v
}

// WithException returns a copy of v with Exception set, recording which
// origin's exception entry produced an allow verdict.
func (v Verdict) WithException(name string) Verdict {
	v.Exception = name
	return v
}

// WithExtension returns a copy of v with Extension set.
func (v Verdict) WithExtension(ext string) Verdict {
	v.Extension = ext
	return v
}
