// Package classify implements the pure predicates used by the policy engine
// to classify filesystem paths, URLs and payload content: sensitive paths,
// build-cache locations, private networks, executable extensions and
// credential patterns. Nothing in this package is stateful or has side
// effects — every function is a pure predicate over its arguments.
package classify

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MatchesPathPattern reports whether target matches pattern, using
// trailing-slash-insensitive directory semantics: a pattern "/a/b" matches
// both the literal path "/a/b" and anything under "/a/b/...". Patterns
// containing glob metacharacters are compiled via GlobToRegex.
func MatchesPathPattern(target, pattern string) bool {
	if pattern == "" {
		return false
	}

	if ContainsGlob(pattern) {
		re, err := regexp.Compile(GlobToRegex(pattern))
		if err == nil && re.MatchString(target) {
			return true
		}
	}

	normalizedPattern := strings.TrimSuffix(pattern, "/")
	normalizedTarget := strings.TrimSuffix(target, "/")

	if normalizedTarget == normalizedPattern {
		return true
	}

	return strings.HasPrefix(normalizedTarget, normalizedPattern+string(filepath.Separator))
}

// MatchesAnyPathPattern reports whether target matches any of patterns.
func MatchesAnyPathPattern(target string, patterns []string) (bool, string) {
	for _, p := range patterns {
		if MatchesPathPattern(target, p) {
			return true, p
		}
	}

	return false, ""
}

// buildCacheDirNames are directory basenames that hold package-manager
// install state. Reads and writes under these are fast-pathed during
// install mode (spec resolution order: filesystem step 2).
var buildCacheDirNames = []string{
	"node_modules",
	".npm",
	".yarn",
	".pnpm-store",
	".cache",
	"__pycache__",
	".venv",
	"site-packages",
}

// manifestAndLockFiles are basenames treated as install-mode manifests or
// lockfiles, always allowed for read during install mode.
var manifestAndLockFiles = []string{
	"package.json",
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"requirements.txt",
	"poetry.lock",
	"Pipfile.lock",
	"go.mod",
	"go.sum",
}

// IsBuildCachePath reports whether path is under a recognized
// package-manager cache/install directory, or is a lockfile/manifest.
func IsBuildCachePath(path string) bool {
	base := filepath.Base(path)

	for _, name := range manifestAndLockFiles {
		if base == name {
			return true
		}
	}

	parts := strings.Split(filepath.ToSlash(path), "/")
	for _, part := range parts {
		for _, dir := range buildCacheDirNames {
			if part == dir {
				return true
			}
		}
	}

	return false
}

// sourceExtensions are extensions whose reads are never counted against
// behavioral thresholds when under the CWD or a recognized transient
// compilation directory (spec resolution order: filesystem step 4).
var sourceExtensions = map[string]bool{
	".js": true, ".mjs": true, ".cjs": true, ".jsx": true,
	".ts": true, ".tsx": true, ".mts": true, ".cts": true,
	".py": true, ".go": true, ".json": true, ".yaml": true, ".yml": true,
}

// IsSourceExtension reports whether ext (as returned by filepath.Ext) is a
// recognized source extension.
func IsSourceExtension(ext string) bool {
	return sourceExtensions[strings.ToLower(ext)]
}

// IsRecognizedSourcePath reports whether path has a recognized source
// extension.
func IsRecognizedSourcePath(path string) bool {
	return IsSourceExtension(filepath.Ext(path))
}

// blockedWriteExtensions are extensions that, combined with a write/create
// operation, are denied outright unless the target is an approved
// build/cache directory inside the project root (spec resolution order:
// filesystem step 7).
var blockedWriteExtensions = map[string]bool{
	".sh": true, ".bash": true, ".zsh": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true,
	".cmd": true, ".bat": true, ".ps1": true,
}

// IsBlockedWriteExtension reports whether ext is configured as a blocked
// write extension by default. Callers should also check the config's
// BlockedExtensions list, since this is only the built-in baseline.
func IsBlockedWriteExtension(ext string) bool {
	return blockedWriteExtensions[strings.ToLower(ext)]
}

var shebangPrefixes = [][]byte{
	[]byte("#!/bin/sh"),
	[]byte("#!/bin/bash"),
	[]byte("#!/usr/bin/env"),
	[]byte("#!/bin/zsh"),
	[]byte("#!"),
}

// HasShebang reports whether content (a write's content preview) begins
// with an executable shebang line.
func HasShebang(content []byte) bool {
	for _, prefix := range shebangPrefixes {
		if len(content) >= len(prefix) && string(content[:len(prefix)]) == string(prefix) {
			return true
		}
	}

	return false
}

// IsExecutableFile reports whether an existing file on disk has any
// executable bit set.
func IsExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode()&0o111 != 0
}

// IsEnvConfigFile reports whether base is a project configuration file of
// the ".env*" family (spec resolution order: filesystem step 3).
func IsEnvConfigFile(base string) bool {
	return base == ".env" || strings.HasPrefix(base, ".env.")
}

// IsProjectConfigPath reports whether path is an ".env*" file within cwd or
// up to maxAncestors parent directories of cwd.
func IsProjectConfigPath(path, cwd string, maxAncestors int) bool {
	if !IsEnvConfigFile(filepath.Base(path)) {
		return false
	}

	dir := filepath.Dir(path)
	root := cwd

	for i := 0; i <= maxAncestors; i++ {
		if dir == root {
			return true
		}
		root = filepath.Dir(root)
	}

	return false
}
