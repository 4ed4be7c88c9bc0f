package policy

import "github.com/safedep/depwatch/origin"

// Kind tags which capability family an Operation belongs to (spec.md §3).
type Kind string

const (
	KindRead       Kind = "read"
	KindWrite      Kind = "write"
	KindCreate     Kind = "create"
	KindDelete     Kind = "delete"
	KindChdir      Kind = "chdir"
	KindSymlink    Kind = "symlink"
	KindNetConnect Kind = "net_connect"
	KindNetSend    Kind = "net_send"
	KindDNSQuery   Kind = "dns_query"
	KindSpawn      Kind = "spawn"
	KindEnvGet     Kind = "env_get"
	KindEnvSet     Kind = "env_set"
	KindEnvDelete  Kind = "env_delete"
	KindEnvEnum    Kind = "env_enum"
	KindGitHubAPI  Kind = "github_api"
)

// Operation is the single value every capability call is reduced to before
// it reaches the policy engine.
type Operation struct {
	Kind   Kind
	Target string
	Origin origin.Tag

	// RealPath is the realpath-resolved form of Target, filled in by the
	// interception fabric when Target exists on disk (spec.md §4.2 step 2).
	// Empty when not applicable or not yet resolved.
	RealPath string

	// DestTarget is the second path for two-path filesystem operations
	// (copy, rename, link, symlink) — checked as a Write in its own right
	// (spec.md §4.2 step 3).
	DestTarget string

	// ContentPreview is up to 100 bytes of a write's content, used for
	// shebang detection (spec.md §3).
	ContentPreview []byte

	// Method is the HTTP method for network operations.
	Method string

	// Port is the destination port for network operations, used for the
	// suspicious-ports check.
	Port int

	// Body is the full outbound payload, populated once collection is
	// complete; used by the exfiltration detector and the GitHub-API
	// monitor lobe (spec.md §4.4, §4.7).
	Body []byte
}

// CounterSnapshot is an immutable read of the behavior monitor's counters
// at the moment a Check call began. Passing a snapshot by value (rather
// than a live counters reference) keeps the engine a pure leaf: it never
// calls back into the monitor, and evaluating the same operation against
// the same snapshot twice always yields the same verdict (spec.md §8
// round-trip property).
type CounterSnapshot struct {
	FileReads       int
	FileWrites      int
	NetworkRequests int
	ProcessSpawns   int
}
