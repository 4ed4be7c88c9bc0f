package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/safedep/dry/log"
	"github.com/safedep/depwatch/classify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Load resolves and reads the firewall configuration following the
// discovery order in spec.md §6, with CLI flags (bound from fs, if
// non-nil) taking precedence over file contents and environment variables.
//
// A missing or unreadable configuration file is not an error: it degrades
// to DefaultConfig with a single warning, per spec.md §7 ("Configuration
// parse errors degrade to built-in defaults and emit a single warning").
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetConfigType("json")

	for key, value := range asMap(DefaultConfig()) {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("FIREWALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := ""
	if fs != nil {
		explicit, _ = fs.GetString("config")
	}

	path := DiscoverConfigPath(explicit)
	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			log.Warnf("firewall: failed to read config file %s, falling back to defaults: %v", path, err)
		}
	}

	bindFlags(v, fs)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Warnf("firewall: failed to unmarshal config, falling back to defaults: %v", err)
		return applyEnvFlags(DefaultConfig()), nil
	}

	return applyEnvFlags(cfg), nil
}

// applyEnvFlags layers the boolean environment switches from spec.md §6
// ("Environment flags consumed") on top of the file-derived configuration.
// These are process-launch signals, not persisted schema fields, so they
// are applied after unmarshaling rather than bound through viper.
func applyEnvFlags(cfg Config) Config {
	if os.Getenv("FIREWALL_STRICT") == "1" {
		cfg.Mode = ModeStrict
	}

	return cfg
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	if fs == nil {
		return
	}

	bind := func(key, flag string) {
		if f := fs.Lookup(flag); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}

	bind("mode", "mode")
	bind("network.mode", "network-mode")
	bind("behavioral.max_network", "max-network")
	bind("behavioral.max_file_writes", "max-file-writes")
	bind("behavioral.max_spawns", "max-spawns")
}

// asMap flattens cfg into the dotted-key form viper's SetDefault expects,
// mirroring mapstructure's own key derivation so defaults and file contents
// merge consistently.
func asMap(cfg Config) map[string]any {
	return map[string]any{
		"mode":                               string(cfg.Mode),
		"filesystem.blocked_read_paths":       cfg.Filesystem.BlockedReadPaths,
		"filesystem.blocked_write_paths":      cfg.Filesystem.BlockedWritePaths,
		"filesystem.blocked_extensions":       cfg.Filesystem.BlockedExtensions,
		"filesystem.allowed_paths":            cfg.Filesystem.AllowedPaths,
		"network.enabled":                     cfg.Network.Enabled,
		"network.mode":                        string(cfg.Network.Mode),
		"network.allow_localhost":             cfg.Network.AllowLocalhost,
		"network.allow_private":               cfg.Network.AllowPrivate,
		"network.blocked_domains":             cfg.Network.BlockedDomains,
		"network.allowed_domains":             cfg.Network.AllowedDomains,
		"network.allowed_domains_mode":        string(cfg.Network.AllowedDomainsMode),
		"network.suspicious_ports":            cfg.Network.SuspiciousPorts,
		"network.credential_patterns":         cfg.Network.CredentialPatterns,
		"commands.allowed_commands":           cfg.Commands.AllowedCommands,
		"commands.blocked_patterns":           cfg.Commands.BlockedPatterns,
		"behavioral.monitor_lifecycle":        cfg.Behavioral.MonitorLifecycle,
		"behavioral.alert_thresholds":         cfg.Behavioral.AlertThresholds,
		"behavioral.max_file_writes":          cfg.Behavioral.MaxFileWrites,
		"behavioral.max_network":              cfg.Behavioral.MaxNetwork,
		"behavioral.max_spawns":               cfg.Behavioral.MaxSpawns,
		"environment.protected_variables":     cfg.Environment.ProtectedVariables,
		"environment.allow_trusted_modules":   cfg.Environment.AllowTrustedModules,
		"trusted_modules":                     cfg.TrustedModules,
		"exceptions":                          cfg.Exceptions,
		"github_api.monitor_repo_creation":     cfg.GitHubAPI.MonitorRepoCreation,
		"github_api.monitor_workflow_creation": cfg.GitHubAPI.MonitorWorkflowCreation,
		"github_api.blocked_repo_names":        cfg.GitHubAPI.BlockedRepoNames,
		"github_api.blocked_workflow_patterns": cfg.GitHubAPI.BlockedWorkflowPatterns,
		"reporting.log_file":                  cfg.Reporting.LogFile,
		"reporting.audit_file":                cfg.Reporting.AuditFile,
		"reporting.alert_on_suspicious":       cfg.Reporting.AlertOnSuspicious,
		"reporting.generate_report":           cfg.Reporting.GenerateReport,
	}
}

// ExpandPaths resolves ${HOME}/${CWD}/${TMPDIR} variables in every path
// pattern the config carries, so later policy evaluation only ever compares
// already-resolved paths. Called once, right after Load.
func ExpandPaths(cfg Config) (Config, error) {
	var err error

	if cfg.Filesystem.BlockedReadPaths, err = classify.ExpandVariableList(cfg.Filesystem.BlockedReadPaths); err != nil {
		return cfg, fmt.Errorf("expanding blocked_read_paths: %w", err)
	}

	if cfg.Filesystem.BlockedWritePaths, err = classify.ExpandVariableList(cfg.Filesystem.BlockedWritePaths); err != nil {
		return cfg, fmt.Errorf("expanding blocked_write_paths: %w", err)
	}

	if cfg.Filesystem.AllowedPaths, err = classify.ExpandVariableList(cfg.Filesystem.AllowedPaths); err != nil {
		return cfg, fmt.Errorf("expanding allowed_paths: %w", err)
	}

	return cfg, nil
}
