package classify

import (
	"os"
	"path/filepath"
)

// SensitiveFiles are file/directory basenames that always classify as
// sensitive credential stores, independent of user configuration — reads
// are eligible exfiltration sources (spec.md exfiltration detector) and
// writes are always denied (spec.md filesystem resolution order, mandatory
// deny step).
var SensitiveFiles = []string{
	".env",
	".env.*",
	".aws",
	".gcloud",
	".kube",
	".ssh",
	".gnupg",
	".docker/config.json",
	".netrc",
	".npmrc",
	".pypirc",
}

// MandatoryDenyPatterns returns the filesystem write patterns that are
// always blocked, regardless of user-supplied exceptions. These are
// injected ahead of any configured policy (spec.md §4.1 filesystem
// resolution order, mandatory-deny step).
//
// allowGitConfig controls whether .git/config is included; some workflows
// legitimately rewrite git config during install (e.g. setting a commit
// identity in CI), so it is the one entry callers may opt out of.
func MandatoryDenyPatterns(allowGitConfig bool) []string {
	var patterns []string

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	for _, name := range SensitiveFiles {
		patterns = append(patterns, filepath.Join(cwd, name))
		patterns = append(patterns, filepath.Join("**", name))

		if home != "" {
			patterns = append(patterns, filepath.Join(home, name))
		}
	}

	// git hooks can run arbitrary code on the next commit/checkout; never
	// allow writes there. Deliberately not a global "**/.git/hooks" glob so
	// legitimate temp-dir git clones (npx fetching a repo into /tmp) aren't
	// swept up.
	patterns = append(patterns, filepath.Join(cwd, ".git/hooks"))
	patterns = append(patterns, filepath.Join(cwd, ".git/hooks/**"))

	if home != "" {
		patterns = append(patterns, filepath.Join(home, ".git/hooks"))
		patterns = append(patterns, filepath.Join(home, ".git/hooks/**"))
	}

	if !allowGitConfig {
		patterns = append(patterns, filepath.Join(cwd, ".git/config"))
		if home != "" {
			patterns = append(patterns, filepath.Join(home, ".git/config"))
		}
	}

	return patterns
}

// IsSensitiveReadPath reports whether path names a sensitive credential
// store eligible for exfiltration-detector tracking (spec.md §4.4 recent
// sensitive reads).
func IsSensitiveReadPath(path string) bool {
	base := filepath.Base(path)

	for _, name := range SensitiveFiles {
		if ok, _ := filepath.Match(name, base); ok {
			return true
		}
	}

	dir := filepath.ToSlash(path)
	for _, name := range []string{".ssh", ".aws", ".gcloud", ".kube", ".gnupg"} {
		if containsPathSegment(dir, name) {
			return true
		}
	}

	return false
}

func containsPathSegment(path, segment string) bool {
	for _, part := range splitPath(path) {
		if part == segment {
			return true
		}
	}

	return false
}

func splitPath(path string) []string {
	var parts []string
	start := 0

	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			if i > start {
				parts = append(parts, path[start:i])
			}
			start = i + 1
		}
	}

	if start < len(path) {
		parts = append(parts, path[start:])
	}

	return parts
}
