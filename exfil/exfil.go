// Package exfil implements the exfiltration detector (spec.md §4.4): it
// correlates sensitive file reads with outbound network traffic on a
// sliding time window, scans outbound payloads for credential patterns
// independently of that correlation, and flags install-phase connections
// to hosts outside the trusted-registry list. It calls nothing downstream
// of policy — findings are informational, surfaced to the audit log, not
// to the policy engine.
package exfil

import (
	"sync"
	"time"

	"github.com/safedep/depwatch/classify"
	"github.com/safedep/depwatch/config"
)

// FindingKind names one of the detector's three independent checks.
type FindingKind string

const (
	FindingTimingCorrelation       FindingKind = "TIMING_CORRELATION"
	FindingCredentialExfiltration  FindingKind = "CREDENTIAL_EXFILTRATION"
	FindingInstallPhaseExternalNet FindingKind = "INSTALL_PHASE_EXTERNAL_NETWORK"
)

// Severity mirrors policy.Severity's vocabulary without importing policy —
// the detector is a sibling consumer of the engine's output, not a part of
// its resolution chain.
type Severity string

const (
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Finding is a single detector hit, ready to hand to the audit logger.
type Finding struct {
	Kind      FindingKind
	Severity  Severity
	At        time.Time
	Target    string
	Method    string
	Paths     []string
	Pattern   string
}

const (
	correlationWindow = 5 * time.Second
	readRetention     = 30 * time.Second
)

// recentRead is a sensitive-file read awaiting correlation against an
// outbound request.
type recentRead struct {
	path string
	at   time.Time
}

// Detector holds the recent-sensitive-reads map described in spec.md §4.4.
// Safe for concurrent use; a single Detector is shared process-wide, the
// same way a single Monitor owns the behavior counters.
type Detector struct {
	mu    sync.Mutex
	reads []recentRead
}

// New returns an empty detector.
func New() *Detector { return &Detector{} }

// RecordRead inserts or refreshes path in the recent-reads map if it
// matches a sensitive-file pattern. Entries older than 30s are evicted as a
// side effect of every insertion, per spec.md §4.4 ("Entries older than 30s
// are evicted on the next insertion").
func (d *Detector) RecordRead(path string, now time.Time) {
	if !classify.IsSensitiveReadPath(path) {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.evictLocked(now)

	for i, r := range d.reads {
		if r.path == path {
			d.reads[i].at = now
			return
		}
	}

	d.reads = append(d.reads, recentRead{path: path, at: now})
}

func (d *Detector) evictLocked(now time.Time) {
	cutoff := now.Add(-readRetention)

	kept := d.reads[:0]
	for _, r := range d.reads {
		if r.at.After(cutoff) {
			kept = append(kept, r)
		}
	}

	d.reads = kept
}

// recentPathsWithin returns the paths of every recorded read whose
// timestamp is within window of now.
func (d *Detector) recentPathsWithin(now time.Time, window time.Duration) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := now.Add(-window)

	var paths []string
	for _, r := range d.reads {
		if r.at.After(cutoff) {
			paths = append(paths, r.path)
		}
	}

	return paths
}

// CheckOutbound runs all three exfiltration checks against a single
// outbound network operation and returns every finding that fired. now,
// target, method, and body describe the request; env/installMode feed the
// install-phase check.
func (d *Detector) CheckOutbound(now time.Time, host, method string, body []byte, installMode bool) []Finding {
	var findings []Finding

	if classify.IsHTTPWriteMethod(method) {
		if culprits := d.recentPathsWithin(now, correlationWindow); len(culprits) > 0 {
			findings = append(findings, Finding{
				Kind:     FindingTimingCorrelation,
				Severity: SeverityCritical,
				At:       now,
				Target:   host,
				Method:   method,
				Paths:    culprits,
			})
		}
	}

	if hit, pattern := classify.PayloadMatchesCredentialPattern(body); hit {
		findings = append(findings, Finding{
			Kind:     FindingCredentialExfiltration,
			Severity: SeverityCritical,
			At:       now,
			Target:   host,
			Method:   method,
			Pattern:  pattern,
		})
	}

	if installMode && !classify.IsTrustedRegistryHost(host) {
		findings = append(findings, Finding{
			Kind:     FindingInstallPhaseExternalNet,
			Severity: SeverityHigh,
			At:       now,
			Target:   host,
			Method:   method,
		})
	}

	return findings
}

// CheckOutboundEnv is a convenience wrapper deriving installMode from the
// process environment the way config.IsInstallMode expects it.
func (d *Detector) CheckOutboundEnv(now time.Time, host, method string, body []byte, env map[string]string) []Finding {
	return d.CheckOutbound(now, host, method, body, config.IsInstallMode(env))
}
