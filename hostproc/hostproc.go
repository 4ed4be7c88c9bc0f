// Package hostproc is the command and environment interceptor (spec.md
// §4.2 "Commands"/"Environment", §2 rows 8-9). It reduces process-spawn
// calls and environment-mapping access to policy.Operations, mirroring the
// shape hostvfs and hostnet already establish for filesystem and network
// primitives: a passthrough implementation backed directly by os/exec and
// os.Environ, and a firewalled implementation that checks every call
// through the monitor first.
package hostproc

import "context"

// SpawnSpec is the request a single intercepted spawn call is reduced to.
type SpawnSpec struct {
	Program string
	Args    []string
	Env     []string
	Dir     string
}

// SpawnResult carries a completed child process's outcome.
type SpawnResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// ProtectedSentinel is returned in place of a protected variable's real
// value when the environment protector denies a get (spec.md Design Notes
// §9: "the environment proxy returns a sentinel string indicating
// protected status for some accesses"). See DESIGN.md for why this
// implementation always returns the sentinel on deny rather than the
// real value, resolving the spec's own flagged ambiguity here.
const ProtectedSentinel = "***PROTECTED***"

// HostProc is the capability surface process-spawning and environment
// calls are reduced to. User code receives a firewalled instance instead
// of calling os/exec and os.Getenv/Setenv/Environ directly.
type HostProc interface {
	// Spawn runs spec as a child process and waits for it to exit.
	Spawn(ctx context.Context, spec SpawnSpec) (*SpawnResult, error)

	// Getenv returns a variable's value and whether it was set at all
	// (mirroring os.LookupEnv). A denied protected variable returns
	// (ProtectedSentinel, true) rather than an error, since a get of an
	// unset variable and a get of a denied variable are different things.
	Getenv(ctx context.Context, key string) (string, bool)

	// Setenv assigns key=value in the process environment.
	Setenv(ctx context.Context, key, value string) error

	// Unsetenv removes key from the process environment.
	Unsetenv(ctx context.Context, key string) error

	// Environ returns "key=value" pairs for every variable visible to the
	// caller — protected keys are omitted entirely rather than masked
	// (spec.md §8 scenario 6).
	Environ(ctx context.Context) []string

	// Contains reports whether key is set, without exposing its value.
	Contains(ctx context.Context, key string) bool
}
