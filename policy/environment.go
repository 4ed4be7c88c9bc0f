package policy

import (
	"regexp"
	"strings"

	"github.com/safedep/depwatch/classify"
	"github.com/safedep/depwatch/config"
)

// checkEnvironment implements the environment resolution order (spec.md
// §4.1). Applies to EnvGet; EnvEnum filtering (omitting protected keys
// rather than denying) is handled by the caller via ProtectedEnvKeys, since
// an enumeration has no single target to deny against.
func (e *Engine) checkEnvironment(op Operation) Verdict {
	if op.Kind == KindEnvEnum {
		return Allow(ReasonAllowDefault)
	}

	// Step 1: only protected variables are subject to the remaining steps.
	if !variableMatchesAny(op.Target, e.cfg.Environment.ProtectedVariables) {
		return Allow(ReasonAllowDefault)
	}

	hasOrigin := op.Origin.Name != ""

	// Step 2: no origin identifiable.
	if !hasOrigin {
		if e.cfg.Mode == config.ModeStrict {
			return Deny(ReasonStrictModeNoContext, SeverityHigh)
		}

		if !e.cfg.Environment.AllowTrustedModules {
			return Deny(ReasonUntrustedNoContext, SeverityHigh)
		}

		return Allow(ReasonAllowDefault)
	}

	// Step 3: trusted origin.
	if e.cfg.Environment.AllowTrustedModules && config.IsTrustedModule(e.cfg.TrustedModules, op.Origin.Name, "") {
		return Allow(ReasonAllowTrusted)
	}

	// Step 4: exception allow-list.
	if config.ExceptionAllowsEnvironmentVariable(e.cfg.Exceptions, op.Origin.Name, op.Target) {
		return Allow(ReasonAllowException).WithException(op.Origin.Name)
	}

	// Step 5: deny.
	return Deny(ReasonProtectedVariable, SeverityHigh)
}

// variableMatchesAny reports whether name matches any glob pattern in
// patterns, case-insensitively (spec.md §8 boundary behavior).
func variableMatchesAny(name string, patterns []string) bool {
	upper := strings.ToUpper(name)

	for _, pattern := range patterns {
		re, err := regexp.Compile("(?i)" + classify.GlobToRegex(pattern))
		if err == nil && re.MatchString(upper) {
			return true
		}
	}

	return false
}

// ProtectedEnvKeys filters keys down to the ones NOT matching any protected
// pattern, for the environment protector's enumeration mediation (spec.md
// §8 scenario 6: protected keys never appear in an EnvEnum result).
func ProtectedEnvKeys(cfg config.Config, keys []string) []string {
	visible := make([]string, 0, len(keys))

	for _, key := range keys {
		if !variableMatchesAny(key, cfg.Environment.ProtectedVariables) {
			visible = append(visible, key)
		}
	}

	return visible
}
