// Package config defines the firewall's configuration schema, its
// discovery/loading order, and the frozen, context-carried value every
// other package reads from.
package config

import (
	"context"
	"os"
	"strings"
)

type configKey struct{}
type contextValue struct {
	Config Config
}

// Mode is the firewall's overall operating posture.
type Mode string

const (
	ModeEnabled     Mode = "enabled"
	ModeAlertOnly   Mode = "alert_only"
	ModeStrict      Mode = "strict"
	ModeInteractive Mode = "interactive"
)

// NetworkMode selects how the network interceptor treats a non-matching
// verdict: log it (monitor) or deny it (enforce).
type NetworkMode string

const (
	NetworkModeMonitor NetworkMode = "monitor"
	NetworkModeEnforce NetworkMode = "enforce"
)

// AllowedDomainsMode toggles whitelist enforcement for outbound hosts.
type AllowedDomainsMode string

const (
	AllowedDomainsOff       AllowedDomainsMode = "off"
	AllowedDomainsWhitelist AllowedDomainsMode = "whitelist"
)

// Config is the complete, frozen firewall configuration (spec.md §3). It is
// unmarshaled once at process start and never mutated afterward — every
// consumer reads it through Inject/FromContext, never through a package
// global, so object identity is the invariant callers can rely on.
type Config struct {
	Mode Mode `mapstructure:"mode"`

	Filesystem FilesystemConfig `mapstructure:"filesystem"`
	Network    NetworkConfig    `mapstructure:"network"`
	Commands   CommandsConfig   `mapstructure:"commands"`
	Behavioral BehavioralConfig `mapstructure:"behavioral"`
	Environment EnvironmentConfig `mapstructure:"environment"`

	TrustedModules []TrustedModule        `mapstructure:"trusted_modules"`
	Exceptions     map[string]Exception   `mapstructure:"exceptions"`

	GitHubAPI GitHubAPIConfig `mapstructure:"github_api"`
	Reporting ReportingConfig `mapstructure:"reporting"`
}

// FilesystemConfig governs the filesystem interceptor's resolution order.
type FilesystemConfig struct {
	BlockedReadPaths  []string `mapstructure:"blocked_read_paths"`
	BlockedWritePaths []string `mapstructure:"blocked_write_paths"`
	BlockedExtensions []string `mapstructure:"blocked_extensions"`
	AllowedPaths      []string `mapstructure:"allowed_paths"`
}

// NetworkConfig governs the network interceptor's resolution order.
type NetworkConfig struct {
	Enabled            bool               `mapstructure:"enabled"`
	Mode               NetworkMode        `mapstructure:"mode"`
	AllowLocalhost     bool               `mapstructure:"allow_localhost"`
	AllowPrivate       bool               `mapstructure:"allow_private"`
	BlockedDomains     []string           `mapstructure:"blocked_domains"`
	AllowedDomains     []string           `mapstructure:"allowed_domains"`
	AllowedDomainsMode AllowedDomainsMode `mapstructure:"allowed_domains_mode"`
	SuspiciousPorts    []int              `mapstructure:"suspicious_ports"`
	CredentialPatterns []string           `mapstructure:"credential_patterns"`
}

// BlockedCommandPattern is a single regex-driven command deny rule.
type BlockedCommandPattern struct {
	Regex       string `mapstructure:"regex"`
	Severity    string `mapstructure:"severity"`
	Description string `mapstructure:"description"`
}

// CommandsConfig governs the command interceptor's resolution order.
type CommandsConfig struct {
	AllowedCommands []string                `mapstructure:"allowed_commands"`
	BlockedPatterns []BlockedCommandPattern `mapstructure:"blocked_patterns"`
}

// AlertThresholds are soft per-counter warning levels; crossing one emits
// an informational audit record but does not deny the operation.
type AlertThresholds struct {
	FileReads  int `mapstructure:"file_reads"`
	FileWrites int `mapstructure:"file_writes"`
	Network    int `mapstructure:"network"`
	Spawns     int `mapstructure:"spawns"`
}

// BehavioralConfig governs the behavior monitor's counters and hard limits.
type BehavioralConfig struct {
	MonitorLifecycle bool            `mapstructure:"monitor_lifecycle"`
	AlertThresholds  AlertThresholds `mapstructure:"alert_thresholds"`
	MaxFileWrites    int             `mapstructure:"max_file_writes"`
	MaxNetwork       int             `mapstructure:"max_network"`
	MaxSpawns        int             `mapstructure:"max_spawns"`
}

// EnvironmentConfig governs the environment protector's resolution order.
type EnvironmentConfig struct {
	ProtectedVariables []string `mapstructure:"protected_variables"`
	AllowTrustedModules bool    `mapstructure:"allow_trusted_modules"`
}

// TrustedModule names a dependency exempted from most policy checks,
// optionally scoped to a semver version range (e.g. a module is trusted
// only at the version the host program vendored).
type TrustedModule struct {
	Name          string `mapstructure:"name"`
	VersionRange  string `mapstructure:"version_range"`
}

// Exception grants a named origin additional allow-lists across every
// operation family, layered on top of (never replacing) the global policy.
type Exception struct {
	AllowFilesystem []string `mapstructure:"allow_filesystem"`
	AllowNetwork    []string `mapstructure:"allow_network"`
	AllowCommands   []string `mapstructure:"allow_commands"`
	AllowEnvironment []string `mapstructure:"allow_environment"`
}

// GitHubAPIConfig governs the GitHub-API monitor lobe.
type GitHubAPIConfig struct {
	MonitorRepoCreation     bool     `mapstructure:"monitor_repo_creation"`
	MonitorWorkflowCreation bool     `mapstructure:"monitor_workflow_creation"`
	BlockedRepoNames        []string `mapstructure:"blocked_repo_names"`
	BlockedWorkflowPatterns []string `mapstructure:"blocked_workflow_patterns"`
}

// ReportingConfig governs audit/log file locations and the denial banner.
type ReportingConfig struct {
	LogFile           string `mapstructure:"log_file"`
	AuditFile         string `mapstructure:"audit_file"`
	AlertOnSuspicious bool   `mapstructure:"alert_on_suspicious"`
	GenerateReport    bool   `mapstructure:"generate_report"`
}

// DefaultConfig returns the built-in configuration applied when no
// configuration file is discovered (spec.md §6 discovery order, final
// fallback).
func DefaultConfig() Config {
	return Config{
		Mode: ModeEnabled,
		Filesystem: FilesystemConfig{
			BlockedReadPaths:  []string{"${HOME}/.ssh", "${HOME}/.aws", "${HOME}/.gnupg"},
			BlockedWritePaths: []string{"${HOME}/.ssh", "${HOME}/.aws", "${HOME}/.gnupg"},
			BlockedExtensions: []string{".sh", ".exe", ".dll"},
			AllowedPaths:      []string{"${CWD}"},
		},
		Network: NetworkConfig{
			Enabled:            true,
			Mode:               NetworkModeEnforce,
			AllowLocalhost:     true,
			AllowPrivate:       false,
			BlockedDomains:     []string{},
			AllowedDomains:     []string{},
			AllowedDomainsMode: AllowedDomainsOff,
			SuspiciousPorts:    []int{4444, 1337, 31337},
			CredentialPatterns: []string{},
		},
		Commands: CommandsConfig{
			AllowedCommands: []string{},
			BlockedPatterns: []BlockedCommandPattern{},
		},
		Behavioral: BehavioralConfig{
			MonitorLifecycle: true,
			AlertThresholds: AlertThresholds{
				FileReads:  500,
				FileWrites: 100,
				Network:    50,
				Spawns:     20,
			},
			MaxFileWrites: 1000,
			MaxNetwork:    200,
			MaxSpawns:     100,
		},
		Environment: EnvironmentConfig{
			ProtectedVariables:  []string{"AWS_*", "*_TOKEN", "*_SECRET", "*_KEY", "*_PASSWORD"},
			AllowTrustedModules: true,
		},
		TrustedModules: []TrustedModule{},
		Exceptions:     map[string]Exception{},
		GitHubAPI: GitHubAPIConfig{
			MonitorRepoCreation:     true,
			MonitorWorkflowCreation: true,
			BlockedRepoNames:        []string{},
			BlockedWorkflowPatterns: []string{},
		},
		Reporting: ReportingConfig{
			LogFile:           "fs-firewall.log",
			AuditFile:         "firewall-audit.jsonl",
			AlertOnSuspicious: true,
			GenerateReport:    false,
		},
	}
}

// Inject returns a copy of ctx carrying c as the active configuration.
// Configuration object-identity never changes after first load (spec.md §3
// invariant); callers should Inject exactly once, at process start.
func (c Config) Inject(ctx context.Context) context.Context {
	return context.WithValue(ctx, configKey{}, &contextValue{Config: c})
}

// FromContext extracts the configuration injected into ctx. The second
// return value is false if no configuration was ever injected.
func FromContext(ctx context.Context) (Config, bool) {
	v, ok := ctx.Value(configKey{}).(*contextValue)
	if !ok {
		return Config{}, false
	}

	return v.Config, true
}

// Equivalent reports whether c and other describe the same configuration,
// ignoring list ordering (spec.md §8 round-trip property: a config loaded,
// serialized, and reloaded is equivalent, but viper's map-based decoding
// does not promise to preserve slice order).
func (c Config) Equivalent(other Config) bool {
	return c.Mode == other.Mode &&
		c.Filesystem.equivalent(other.Filesystem) &&
		c.Network.equivalent(other.Network) &&
		c.Commands.equivalent(other.Commands) &&
		c.Behavioral == other.Behavioral &&
		c.Environment.equivalent(other.Environment) &&
		trustedModulesEquivalent(c.TrustedModules, other.TrustedModules) &&
		exceptionsEquivalent(c.Exceptions, other.Exceptions) &&
		c.GitHubAPI.equivalent(other.GitHubAPI) &&
		c.Reporting == other.Reporting
}

func (f FilesystemConfig) equivalent(o FilesystemConfig) bool {
	return sameSet(f.BlockedReadPaths, o.BlockedReadPaths) &&
		sameSet(f.BlockedWritePaths, o.BlockedWritePaths) &&
		sameSet(f.BlockedExtensions, o.BlockedExtensions) &&
		sameSet(f.AllowedPaths, o.AllowedPaths)
}

func (n NetworkConfig) equivalent(o NetworkConfig) bool {
	return n.Enabled == o.Enabled &&
		n.Mode == o.Mode &&
		n.AllowLocalhost == o.AllowLocalhost &&
		n.AllowPrivate == o.AllowPrivate &&
		n.AllowedDomainsMode == o.AllowedDomainsMode &&
		sameSet(n.BlockedDomains, o.BlockedDomains) &&
		sameSet(n.AllowedDomains, o.AllowedDomains) &&
		sameIntSet(n.SuspiciousPorts, o.SuspiciousPorts) &&
		sameSet(n.CredentialPatterns, o.CredentialPatterns)
}

func (c CommandsConfig) equivalent(o CommandsConfig) bool {
	if !sameSet(c.AllowedCommands, o.AllowedCommands) {
		return false
	}

	if len(c.BlockedPatterns) != len(o.BlockedPatterns) {
		return false
	}

	for _, p := range c.BlockedPatterns {
		found := false
		for _, q := range o.BlockedPatterns {
			if p == q {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func (e EnvironmentConfig) equivalent(o EnvironmentConfig) bool {
	return e.AllowTrustedModules == o.AllowTrustedModules &&
		sameSet(e.ProtectedVariables, o.ProtectedVariables)
}

func (g GitHubAPIConfig) equivalent(o GitHubAPIConfig) bool {
	return g.MonitorRepoCreation == o.MonitorRepoCreation &&
		g.MonitorWorkflowCreation == o.MonitorWorkflowCreation &&
		sameSet(g.BlockedRepoNames, o.BlockedRepoNames) &&
		sameSet(g.BlockedWorkflowPatterns, o.BlockedWorkflowPatterns)
}

func trustedModulesEquivalent(a, b []TrustedModule) bool {
	if len(a) != len(b) {
		return false
	}

	for _, m := range a {
		found := false
		for _, n := range b {
			if m == n {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func exceptionsEquivalent(a, b map[string]Exception) bool {
	if len(a) != len(b) {
		return false
	}

	for name, ea := range a {
		eb, ok := b[name]
		if !ok {
			return false
		}

		if !sameSet(ea.AllowFilesystem, eb.AllowFilesystem) ||
			!sameSet(ea.AllowNetwork, eb.AllowNetwork) ||
			!sameSet(ea.AllowCommands, eb.AllowCommands) ||
			!sameSet(ea.AllowEnvironment, eb.AllowEnvironment) {
			return false
		}
	}

	return true
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	counts := make(map[string]int, len(a))
	for _, v := range a {
		counts[v]++
	}

	for _, v := range b {
		counts[v]--
	}

	for _, c := range counts {
		if c != 0 {
			return false
		}
	}

	return true
}

func sameIntSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}

	counts := make(map[int]int, len(a))
	for _, v := range a {
		counts[v]++
	}

	for _, v := range b {
		counts[v]--
	}

	for _, c := range counts {
		if c != 0 {
			return false
		}
	}

	return true
}

// IsFirewallActive reports whether FIREWALL_ACTIVE=1 is set — the master
// activation switch (spec.md §6: "If unset, the firewall installs
// nothing").
func IsFirewallActive() bool {
	return os.Getenv("FIREWALL_ACTIVE") == "1"
}

// IsFortressMode reports whether FIREWALL_FORTRESS=1 is set, enabling the
// self-protection layer's startup window at maximum strictness (spec.md
// §6).
func IsFortressMode() bool {
	return os.Getenv("FIREWALL_FORTRESS") == "1"
}

// IsVerbose reports whether FIREWALL_VERBOSE=1 is set (spec.md §6:
// "disable silent mode").
func IsVerbose() bool {
	return os.Getenv("FIREWALL_VERBOSE") == "1"
}

// ReinjectedParentPID returns the value of FIREWALL_PARENT_PID, the
// identifier a wrapper launcher sets on a re-injected child (spec.md §6),
// and whether it was set at all.
func ReinjectedParentPID() (string, bool) {
	v := os.Getenv("FIREWALL_PARENT_PID")
	return v, v != ""
}

// IsInstallMode reports whether env describes a package-manager install
// lifecycle, via either the explicit override or a package-manager-set
// lifecycle signal (spec.md §6 environment flags).
func IsInstallMode(env map[string]string) bool {
	if env["FIREWALL_INSTALL_MODE"] == "1" {
		return true
	}

	for key, value := range env {
		if strings.HasSuffix(key, "_lifecycle_event") && value == "install" {
			return true
		}

		if strings.HasSuffix(key, "_command") && (value == "install" || value == "ci") {
			return true
		}
	}

	return false
}
