package config

import "github.com/safedep/depwatch/classify"

// ExceptionAllowsPath reports whether the named origin's exception entry
// grants filesystem access to path (spec.md §4.1 filesystem resolution
// order, step 5: "origin matches any configured exception allow-list for
// the given operation family → allow").
func ExceptionAllowsPath(exceptions map[string]Exception, origin, path string) (bool, string) {
	ex, ok := exceptions[origin]
	if !ok {
		return false, ""
	}

	return classify.MatchesAnyPathPattern(path, ex.AllowFilesystem)
}

// ExceptionAllowsHost reports whether the named origin's exception entry
// grants network access to host.
func ExceptionAllowsHost(exceptions map[string]Exception, origin, host string) (bool, string) {
	ex, ok := exceptions[origin]
	if !ok {
		return false, ""
	}

	for _, allowed := range ex.AllowNetwork {
		if allowed == host || allowed == "*" {
			return true, allowed
		}
	}

	return false, ""
}

// ExceptionAllowsCommand reports whether the named origin's exception entry
// allows spawning program exactly.
func ExceptionAllowsCommand(exceptions map[string]Exception, origin, program string) bool {
	ex, ok := exceptions[origin]
	if !ok {
		return false
	}

	for _, allowed := range ex.AllowCommands {
		if allowed == program {
			return true
		}
	}

	return false
}

// ExceptionAllowsEnvironmentVariable reports whether the named origin's
// exception entry lists variable (or "*") among its allowed environment
// reads (spec.md §4.1 environment resolution order, step 4).
func ExceptionAllowsEnvironmentVariable(exceptions map[string]Exception, origin, variable string) bool {
	ex, ok := exceptions[origin]
	if !ok {
		return false
	}

	for _, allowed := range ex.AllowEnvironment {
		if allowed == variable || allowed == "*" {
			return true
		}
	}

	return false
}

// unionStrings returns a new slice containing all unique elements from both
// slices, base entries first, then extra entries excluding duplicates.
// Exceptions are additive on top of the global allow-lists, never a
// replacement for them, so merging follows this same union shape rather
// than overriding.
func unionStrings(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	result := make([]string, 0, len(base)+len(extra))

	for _, item := range base {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}

	for _, item := range extra {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}

	return result
}

// EffectiveAllowedPaths returns cfg's global allowed paths unioned with the
// named origin's exception filesystem allow-list, for callers that want a
// single combined allow-list rather than two separate checks.
func EffectiveAllowedPaths(cfg Config, origin string) []string {
	ex, ok := cfg.Exceptions[origin]
	if !ok {
		return cfg.Filesystem.AllowedPaths
	}

	return unionStrings(cfg.Filesystem.AllowedPaths, ex.AllowFilesystem)
}
