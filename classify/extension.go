package classify

import "strings"

// executableExtensions are extensions denoting a directly runnable file.
// A write that creates or overwrites one of these outside an approved
// build directory is flagged even when the target path isn't otherwise
// sensitive (spec.md §4.1 filesystem resolution order).
var executableExtensions = map[string]bool{
	".sh": true, ".bash": true, ".zsh": true, ".fish": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true,
	".cmd": true, ".bat": true, ".ps1": true, ".app": true,
}

// IsExecutableExtension reports whether ext is a recognized executable
// file extension.
func IsExecutableExtension(ext string) bool {
	return executableExtensions[strings.ToLower(ext)]
}

// compiledArtifactExtensions are produced by normal build tooling and are
// never themselves treated as suspicious writes when under a build-cache
// path (see IsBuildCachePath).
var compiledArtifactExtensions = map[string]bool{
	".pyc": true, ".pyo": true, ".class": true, ".o": true, ".a": true,
}

// IsCompiledArtifactExtension reports whether ext is a routine build output
// extension.
func IsCompiledArtifactExtension(ext string) bool {
	return compiledArtifactExtensions[strings.ToLower(ext)]
}

// archiveExtensions denote packed content; a write of one of these combined
// with a subsequent extraction is a common dropper pattern and is tracked
// by the behavioral monitor's suspicious-event log rather than denied
// outright, since archives are routine package-manager artifacts.
var archiveExtensions = map[string]bool{
	".tar": true, ".tgz": true, ".gz": true, ".zip": true, ".whl": true,
}

// IsArchiveExtension reports whether ext is a recognized archive/package
// extension.
func IsArchiveExtension(ext string) bool {
	return archiveExtensions[strings.ToLower(ext)]
}
