package monitor

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/safedep/depwatch/classify"
	"github.com/safedep/depwatch/origin"
	"github.com/safedep/depwatch/policy"
)

// SuspiciousEvent records a single operation that matched one of the
// behavior monitor's heuristic patterns (spec.md §4.3). Unlike a policy
// Verdict, a suspicious event never denies anything by itself — it only
// feeds the audit log and the exfiltration detector's correlation window.
type SuspiciousEvent struct {
	At      time.Time
	Kind    policy.Kind
	Target  string
	Origin  string
	Pattern string
}

// suspiciousPathFragments are directory segments whose presence in a write
// target is itself a signal, regardless of the firewall's configured
// blocked-path list — credential stores and CI pipeline definitions are
// high-value targets even when the user never thought to block them.
var suspiciousPathFragments = []string{
	".ssh", ".aws", ".gnupg", ".docker", ".kube",
	".github/workflows", ".circleci", ".gitlab-ci",
}

var suspiciousWriteExtensions = map[string]bool{
	".sh": true, ".bash": true, ".zsh": true, ".ps1": true, ".bat": true, ".cmd": true,
}

// exfiltrationDomainPattern flags hosts that look like raw IP literals or
// dynamic-DNS/pastebin-style exfiltration endpoints rather than ordinary
// package registries.
var (
	rawIPHostPattern = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)

	reverseShellPattern  = regexp.MustCompile(`(?i)(/dev/tcp/|nc\s+-e|bash\s+-i\s+>&|sh\s+-i\s+>&|mkfifo\b.*\|\s*/bin/(sh|bash))`)
	pipeToShellPattern   = regexp.MustCompile(`(?i)(curl|wget)[^|]*\|\s*(sh|bash|zsh|python3?)\b`)
	credentialHarvest    = regexp.MustCompile(`(?i)(cat|grep|find)\b[^;|&]*(\.ssh|\.aws|\.npmrc|\.netrc|id_rsa|credentials)\b`)
)

// ClassifyWrite reports the pattern name a suspicious-write rule matched, or
// "" if the write is unremarkable.
func ClassifyWrite(target string, contentPreview []byte) string {
	lower := strings.ToLower(target)

	for _, fragment := range suspiciousPathFragments {
		if strings.Contains(lower, fragment) {
			return "write to credential/CI path: " + fragment
		}
	}

	ext := extensionOf(target)
	if suspiciousWriteExtensions[ext] {
		return "write of executable script extension " + ext
	}

	if classify.HasShebang(contentPreview) {
		return "shebang in written content"
	}

	return ""
}

// ClassifyNetwork reports the pattern name a suspicious-network rule
// matched, or "" if the request is unremarkable.
func ClassifyNetwork(host string, port int) string {
	if rawIPHostPattern.MatchString(host) {
		return "connection to raw IP literal"
	}

	for _, p := range []int{4444, 1337, 31337} {
		if port == p {
			return "connection to common backdoor port"
		}
	}

	return ""
}

// ClassifyCommand reports the pattern name a suspicious-command rule
// matched, or "" if the command line is unremarkable.
func ClassifyCommand(command string) string {
	switch {
	case reverseShellPattern.MatchString(command):
		return "reverse shell pattern"
	case pipeToShellPattern.MatchString(command):
		return "pipe-to-shell pattern"
	case credentialHarvest.MatchString(command):
		return "credential harvesting pattern"
	default:
		return ""
	}
}

func extensionOf(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return ""
	}

	return strings.ToLower(path[idx:])
}

// SuspiciousLog is a fixed-capacity ring of the most recent suspicious
// events. Bounded so a long-running process under sustained attack cannot
// grow the firewall's own memory footprint without limit.
type SuspiciousLog struct {
	mu       sync.Mutex
	capacity int
	events   []SuspiciousEvent
}

// NewSuspiciousLog returns a log retaining at most capacity events, oldest
// dropped first.
func NewSuspiciousLog(capacity int) *SuspiciousLog {
	if capacity <= 0 {
		capacity = 200
	}

	return &SuspiciousLog{capacity: capacity}
}

// Record appends an event, evicting the oldest entry if the log is full.
func (l *SuspiciousLog) Record(event SuspiciousEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, event)
	if len(l.events) > l.capacity {
		l.events = l.events[len(l.events)-l.capacity:]
	}
}

// Recent returns a copy of up to n most recent events, newest last.
func (l *SuspiciousLog) Recent(n int) []SuspiciousEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > len(l.events) {
		n = len(l.events)
	}

	out := make([]SuspiciousEvent, n)
	copy(out, l.events[len(l.events)-n:])
	return out
}

func originName(tag origin.Tag) string {
	if tag.Name == "" {
		return origin.Unknown
	}

	return tag.Name
}
