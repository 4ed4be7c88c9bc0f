package selfprotect

import (
	"os"
	"runtime"
	"strings"

	"github.com/safedep/dry/log"

	"github.com/safedep/depwatch/audit"
	"github.com/safedep/depwatch/config"
	"github.com/safedep/depwatch/exfil"
	"github.com/safedep/depwatch/hostnet"
	"github.com/safedep/depwatch/hostproc"
	"github.com/safedep/depwatch/hostvfs"
	"github.com/safedep/depwatch/monitor"
	"github.com/safedep/depwatch/policy"
)

// Provider is the single process-wide source of firewalled capability
// objects (spec.md Design Notes §9: "User code receives the firewalled
// instance via dependency injection from a single process-wide
// provider"). Host programs construct exactly one Provider at startup and
// thread its VFS/Net/Proc fields into whatever loads and runs dependency
// code -- dependency code never imports os, net, or os/exec directly, so
// there is no reachable path back to an unfirewalled primitive. This is
// the compiled-language substitute for "module cache protection": there
// is nothing to protect because there is nothing else to reach.
type Provider struct {
	VFS     hostvfs.HostVFS
	Net     hostnet.HostNet
	Proc    hostproc.HostProc
	Monitor *monitor.Monitor
	Engine  *policy.Engine
	Window  *FortressWindow
	Audit   *audit.Logger
}

// NewProvider builds every firewalled capability object around a shared
// policy engine and behavior monitor, and marks the firewall live. installMode
// relaxes network checks per spec.md §4.1's exfiltration install-phase rule.
//
// Every verdict the shared Monitor produces is written to cfg.Reporting.AuditFile
// through monitor.OnVerdict (spec.md §4.6: "every policy verdict is recorded
// to exactly once"). A failure to open the audit file degrades to no audit
// logging with a single warning, the same posture spec.md §7 prescribes for
// a bad configuration file, rather than refusing to start.
func NewProvider(cfg config.Config, installMode bool) *Provider {
	engine := policy.NewEngine(cfg, installMode)
	mon := monitor.New(cfg, engine)
	detector := exfil.New()
	env := processEnv()

	provider := &Provider{
		VFS:     hostvfs.NewFirewalled(hostvfs.NewPassthrough(), mon, detector),
		Proc:    hostproc.NewFirewalled(hostproc.NewPassthrough(), mon),
		Monitor: mon,
		Engine:  engine,
		Window:  NewFortressWindow(),
	}

	var onFind func(exfil.Finding)

	if logger, err := audit.Open(cfg.Reporting.AuditFile); err != nil {
		log.Warnf("selfprotect: audit log disabled, failed to open %s: %s", cfg.Reporting.AuditFile, err)
	} else {
		provider.Audit = logger
		mon.OnVerdict(func(op policy.Operation, verdict policy.Verdict) {
			logger.Write(audit.NewRecord(op, verdict, captureStack(verdict)))
		})
		onFind = func(f exfil.Finding) {
			logger.Write(audit.NewFindingRecord(f))
		}
	}

	provider.Net = hostnet.NewFirewalled(hostnet.NewPassthrough(), mon, detector, cfg, env, onFind)

	MarkAlive()

	return provider
}

// processEnv snapshots the running process's environment into the
// key/value form the exfiltration detector's install-phase check expects
// (config.IsInstallMode).
func processEnv() map[string]string {
	env := make(map[string]string)

	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			env[key] = value
		}
	}

	return env
}

// Close flushes and closes the provider's audit log, if one was opened.
// Host programs should call this once at process exit.
func (p *Provider) Close() error {
	if p.Audit == nil {
		return nil
	}

	return p.Audit.Close()
}

// captureStack walks the calling goroutine's frames for a denied
// operation, skipping the monitor/policy/audit plumbing itself. Allowed
// operations never need a stack (audit.NewRecord drops it regardless), so
// the walk is skipped for them to avoid the cost on the hot allow path.
func captureStack(verdict policy.Verdict) []string {
	if verdict.Allowed {
		return nil
	}

	pcs := make([]uintptr, 16)
	n := runtime.Callers(4, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	stack := make([]string, 0, n)

	for {
		frame, more := frames.Next()
		stack = append(stack, frame.Function)

		if !more || len(stack) >= 10 {
			break
		}
	}

	return stack
}
