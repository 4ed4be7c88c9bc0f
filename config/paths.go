package config

import (
	"os"
	"path/filepath"
)

// This file centralizes the configuration-file discovery helpers described
// in spec.md §6: explicit CLI argument → FIREWALL_CONFIG env →
// .firewall-config.json in CWD → firewall-config.json in CWD → same in the
// home directory → same alongside the installed firewall binary → built-in
// defaults.

const (
	// FirewallConfigEnv is the environment variable naming an explicit
	// configuration file path.
	FirewallConfigEnv = "FIREWALL_CONFIG"

	hiddenConfigFileName = ".firewall-config.json"
	plainConfigFileName  = "firewall-config.json"
)

// DiscoverConfigPath resolves the configuration file to load, following the
// resolution order in spec.md §6. explicitPath is the value of a CLI flag,
// if any; it takes precedence over every other source. Returns "" if no
// candidate exists, meaning built-in defaults apply.
func DiscoverConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if envPath := os.Getenv(FirewallConfigEnv); envPath != "" {
		return envPath
	}

	if cwd, err := os.Getwd(); err == nil {
		for _, name := range []string{hiddenConfigFileName, plainConfigFileName} {
			candidate := filepath.Join(cwd, name)
			if fileExists(candidate) {
				return candidate
			}
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		for _, name := range []string{hiddenConfigFileName, plainConfigFileName} {
			candidate := filepath.Join(home, name)
			if fileExists(candidate) {
				return candidate
			}
		}
	}

	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		for _, name := range []string{hiddenConfigFileName, plainConfigFileName} {
			candidate := filepath.Join(dir, name)
			if fileExists(candidate) {
				return candidate
			}
		}
	}

	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
