package classify

import (
	"os"
	"regexp"
	"strings"
)

var tmpdirPatternRegex = regexp.MustCompile(`^/(private/)?var/folders/[^/]{2}/[^/]+/T/?$`)

// PlatformTempAliases returns the set of paths that all denote the same
// temp-directory parent as the process's TMPDIR, including any platform
// alias. On macOS, TMPDIR is typically /var/folders/XX/YYY/T/, and /var is
// itself a symlink to /private/var — a policy that only matches one spelling
// can be evaded by a script that resolves the symlink before reading/writing
// (spec.md §8 boundary behavior: platform-temp-alias evasion).
//
// Returns nil if TMPDIR is unset or does not match the recognized pattern.
func PlatformTempAliases() []string {
	return platformTempAliasesOf(os.Getenv("TMPDIR"))
}

func platformTempAliasesOf(tmpdir string) []string {
	if tmpdir == "" {
		return nil
	}

	if !tmpdirPatternRegex.MatchString(tmpdir) {
		return nil
	}

	parent := strings.TrimSuffix(tmpdir, "/")
	parent = strings.TrimSuffix(parent, "/T")

	switch {
	case strings.HasPrefix(parent, "/private/var/"):
		return []string{parent, strings.Replace(parent, "/private", "", 1)}
	case strings.HasPrefix(parent, "/var/"):
		return []string{parent, "/private" + parent}
	default:
		return []string{parent}
	}
}

// CanonicalTempAlias rewrites path's prefix to its /private/var form when
// path falls under the non-aliased /var/folders spelling, so that sensitive-
// path and build-cache matching see a single canonical form regardless of
// which alias a script used to reach the same inode.
func CanonicalTempAlias(path string) string {
	if strings.HasPrefix(path, "/var/folders/") {
		return "/private" + path
	}

	return path
}
