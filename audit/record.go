// Package audit is the firewall's audit logger (spec.md §2 row 10, §4.6):
// an append-only, line-delimited JSON stream that every policy verdict is
// recorded to exactly once, buffered for throughput but flushed
// immediately on deny and critical-severity records. Adapted from the
// teacher's internal/eventlog (a buffered JSONL writer with a sync.Once
// singleton and a background retention sweep), generalized from
// install-specific event types to the firewall's verdict-shaped
// AuditRecord.
package audit

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/safedep/depwatch/config"
	"github.com/safedep/depwatch/exfil"
	"github.com/safedep/depwatch/policy"
)

// Process describes the process an audited operation ran in (spec.md §3
// audit record schema: "process{pid,ppid,cwd,argv_head}").
type Process struct {
	PID        int      `json:"pid"`
	PPID       int      `json:"ppid"`
	CWD        string   `json:"cwd"`
	ArgvHead   []string `json:"argv_head"`
	Reinjected bool     `json:"reinjected,omitempty"`
}

// CurrentProcess snapshots the running process's identity for an audit
// record. ArgvHead is truncated to the first 4 arguments — enough to
// identify the invocation without recording an entire, possibly
// sensitive, command line. Reinjected is true when FIREWALL_PARENT_PID
// (spec.md §6, set by a wrapper launcher to identify re-injected
// children) names this process's own parent, distinguishing a
// firewall-relaunched child from an independently started process.
func CurrentProcess() Process {
	argv := os.Args
	if len(argv) > 4 {
		argv = argv[:4]
	}

	ppid := os.Getppid()

	reinjected := false
	if parentPID, ok := config.ReinjectedParentPID(); ok {
		reinjected = parentPID == strconv.Itoa(ppid)
	}

	return Process{
		PID:        os.Getpid(),
		PPID:       ppid,
		CWD:        cwd(),
		ArgvHead:   append([]string{}, argv...),
		Reinjected: reinjected,
	}
}

func cwd() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	return dir
}

// Record is a single audit entry (spec.md §3: "ts, iso, type, operation,
// target, allowed, reason, severity, package, process{...}, stack?").
type Record struct {
	ID       string          `json:"id"`
	TS       int64           `json:"ts"`
	ISO      string          `json:"iso"`
	Type     string          `json:"type"`
	Operation policy.Kind    `json:"operation"`
	Target   string          `json:"target"`
	Allowed  bool            `json:"allowed"`
	Reason   policy.Reason   `json:"reason"`
	Severity policy.Severity `json:"severity"`
	Package  string          `json:"package,omitempty"`
	Process  Process         `json:"process"`

	// Stack is present only when denied and severity is medium or higher
	// (spec.md §3), capped to 10 frames.
	Stack []string `json:"stack,omitempty"`
}

// NewRecord builds a Record from a completed policy check. stack is
// typically captured by the caller via runtime.Callers; it is dropped
// unless the verdict is a deny of at least medium severity, per spec.md.
func NewRecord(op policy.Operation, verdict policy.Verdict, stack []string) Record {
	now := time.Now()

	record := Record{
		ID:        uuid.NewString(),
		TS:        now.UnixMilli(),
		ISO:       now.UTC().Format(time.RFC3339Nano),
		Type:      string(op.Kind),
		Operation: op.Kind,
		Target:    op.Target,
		Allowed:   verdict.Allowed,
		Reason:    verdict.Reason,
		Severity:  verdict.Severity,
		Package:   op.Origin.Name,
		Process:   CurrentProcess(),
	}

	if !verdict.Allowed && severityAtLeastMedium(verdict.Severity) && len(stack) > 0 {
		if len(stack) > 10 {
			stack = stack[:10]
		}

		record.Stack = append([]string{}, stack...)
	}

	return record
}

// NewFindingRecord builds a Record from an exfiltration-detector finding
// (spec.md §4.4). Findings never deny on their own -- Allowed is always
// false here only in the sense that the record marks the underlying
// activity as flagged, not that a verdict blocked it; Reason carries the
// finding's kind so the audit stream distinguishes detector hits from
// policy-engine denials at read time.
func NewFindingRecord(f exfil.Finding) Record {
	now := f.At
	if now.IsZero() {
		now = time.Now()
	}

	reason := policy.Reason(strings.ToUpper(string(f.Kind)))

	return Record{
		ID:        uuid.NewString(),
		TS:        now.UnixMilli(),
		ISO:       now.UTC().Format(time.RFC3339Nano),
		Type:      "EXFIL_FINDING",
		Operation: policy.KindNetSend,
		Target:    f.Target,
		Allowed:   false,
		Reason:    reason,
		Severity:  policy.Severity(f.Severity),
		Process:   CurrentProcess(),
	}
}

func severityAtLeastMedium(s policy.Severity) bool {
	switch s {
	case policy.SeverityMedium, policy.SeverityHigh, policy.SeverityCritical:
		return true
	default:
		return false
	}
}
