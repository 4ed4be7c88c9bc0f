package monitor

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/safedep/depwatch/classify"
	"github.com/safedep/depwatch/config"
	"github.com/safedep/depwatch/policy"
)

// Monitor is the behavior monitor (spec.md §4.3): it owns the live counters,
// evaluates each operation through the policy engine, increments the
// relevant counter afterward, and records any pattern-matched suspicious
// event. It never denies anything the engine didn't already deny — its
// threshold checks are alert-only, and the hard limits it enforces are
// themselves read out of the same snapshot the engine already saw.
type Monitor struct {
	cfg      config.Config
	engine   *policy.Engine
	counters Counters
	log      *SuspiciousLog

	onAlert      func(Alert)
	onSuspicious func(SuspiciousEvent)
	onVerdict    func(policy.Operation, policy.Verdict)
}

// New builds a Monitor around an already-constructed policy engine.
func New(cfg config.Config, engine *policy.Engine) *Monitor {
	return &Monitor{
		cfg:    cfg,
		engine: engine,
		log:    NewSuspiciousLog(200),
	}
}

// OnAlert registers a callback invoked synchronously whenever a counter
// crosses its alert threshold. Typically wired to the audit logger.
func (m *Monitor) OnAlert(fn func(Alert)) { m.onAlert = fn }

// OnSuspicious registers a callback invoked synchronously whenever an
// operation matches a suspicious-pattern rule.
func (m *Monitor) OnSuspicious(fn func(SuspiciousEvent)) { m.onSuspicious = fn }

// OnVerdict registers a callback invoked synchronously after every Check,
// win or lose — the hook the audit logger attaches to so that "every
// policy verdict is recorded to exactly once" (audit package doc comment)
// holds without the monitor needing to import the audit package itself.
func (m *Monitor) OnVerdict(fn func(policy.Operation, policy.Verdict)) { m.onVerdict = fn }

// Counters exposes the live counter set, e.g. for a status/report command.
func (m *Monitor) Counters() *Counters { return &m.counters }

// Config exposes the frozen configuration the monitor was built with, e.g.
// for the environment protector's enumeration filtering (spec.md §8
// scenario 6), which needs the protected-variables list directly rather
// than through a per-operation Check call.
func (m *Monitor) Config() config.Config { return m.cfg }

// SuspiciousEvents returns up to n of the most recently recorded suspicious
// events, newest last.
func (m *Monitor) SuspiciousEvents(n int) []SuspiciousEvent { return m.log.Recent(n) }

// Check evaluates op against the policy engine using the monitor's current
// counter snapshot, then — regardless of the verdict — increments the
// corresponding counter, runs the alert-threshold check, and runs the
// suspicious-pattern classifiers. A denied operation still counts: a
// malicious script spraying denied writes is exactly the behavior the
// counters exist to surface.
func (m *Monitor) Check(op policy.Operation) policy.Verdict {
	verdict := m.engine.Check(op, m.counters.Snapshot())

	m.recordCounter(op)
	m.checkAlerts()
	m.classifySuspicious(op)

	if m.onVerdict != nil {
		m.onVerdict(op, verdict)
	}

	return verdict
}

// recordCounter increments the counter matching op.Kind, skipping reads of
// the project's own recognized source files — the same population the
// filesystem policy itself treats as noise (policy.checkFilesystem step 4)
// so the counters track attacker-relevant activity, not the interpreter
// reading its own modules back off disk.
func (m *Monitor) recordCounter(op policy.Operation) {
	switch op.Kind {
	case policy.KindRead:
		if isProjectSourceRead(op.Target) {
			return
		}
		m.counters.IncrementFileRead()

	case policy.KindWrite, policy.KindCreate, policy.KindDelete, policy.KindSymlink:
		m.counters.IncrementFileWrite()

	case policy.KindNetConnect, policy.KindNetSend, policy.KindDNSQuery:
		m.counters.IncrementNetworkRequest()

	case policy.KindSpawn:
		m.counters.IncrementProcessSpawn()
	}
}

func isProjectSourceRead(target string) bool {
	if !classify.IsRecognizedSourcePath(target) {
		return false
	}

	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(cwd, target)
	if err != nil {
		return false
	}

	return !filepathHasParentTraversal(rel)
}

func filepathHasParentTraversal(rel string) bool {
	if rel == ".." {
		return true
	}

	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == ".." {
			return true
		}
	}

	return false
}

func (m *Monitor) checkAlerts() {
	if m.onAlert == nil {
		return
	}

	for _, alert := range CheckThresholds(m.cfg, m.counters.Snapshot()) {
		m.onAlert(alert)
	}
}

func (m *Monitor) classifySuspicious(op policy.Operation) {
	var pattern string

	switch op.Kind {
	case policy.KindWrite, policy.KindCreate:
		pattern = ClassifyWrite(op.Target, op.ContentPreview)

	case policy.KindNetConnect, policy.KindNetSend:
		pattern = ClassifyNetwork(classify.HostFromTarget(op.Target), op.Port)

	case policy.KindSpawn:
		pattern = ClassifyCommand(op.Target)
	}

	if pattern == "" {
		return
	}

	event := SuspiciousEvent{
		At:      time.Now(),
		Kind:    op.Kind,
		Target:  op.Target,
		Origin:  originName(op.Origin),
		Pattern: pattern,
	}

	m.log.Record(event)

	if m.onSuspicious != nil {
		m.onSuspicious(event)
	}
}
