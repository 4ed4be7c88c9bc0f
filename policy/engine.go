package policy

import "github.com/safedep/depwatch/config"

// Engine evaluates operations against a frozen configuration. It holds no
// mutable state of its own — every dynamic input (counters) is supplied by
// the caller as an explicit CounterSnapshot argument — so Check is pure
// with respect to its inputs (spec.md §4.1 contract).
type Engine struct {
	cfg         config.Config
	installMode bool
}

// NewEngine constructs an Engine bound to cfg. installMode should be the
// result of config.IsInstallMode(os.Environ()) evaluated once at process
// start; it gates the filesystem and network install-mode fast paths.
func NewEngine(cfg config.Config, installMode bool) *Engine {
	return &Engine{cfg: cfg, installMode: installMode}
}

// Config returns the engine's bound configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Check dispatches op to the resolution order for its Kind and returns the
// resulting Verdict (spec.md §4.1).
func (e *Engine) Check(op Operation, counters CounterSnapshot) Verdict {
	if e.cfg.Mode == "" {
		// No configuration was ever loaded into the engine; degrade to
		// allow-but-log rather than block every operation (spec.md §7
		// "firewall_not_ready": "degraded mode... treated as allow but
		// logged").
		return Allow(ReasonFirewallNotReady)
	}

	switch op.Kind {
	case KindRead, KindWrite, KindCreate, KindDelete, KindChdir, KindSymlink:
		return e.checkFilesystem(op)
	case KindNetConnect, KindNetSend, KindDNSQuery:
		return e.checkNetwork(op, counters)
	case KindSpawn:
		return e.checkCommand(op, counters)
	case KindEnvGet, KindEnvSet, KindEnvDelete, KindEnvEnum:
		return e.checkEnvironment(op)
	case KindGitHubAPI:
		return e.CheckGitHubAPI(op)
	default:
		return Allow(ReasonAllowDefault)
	}
}
