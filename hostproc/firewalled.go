package hostproc

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/safedep/dry/log"

	"github.com/safedep/depwatch/monitor"
	"github.com/safedep/depwatch/origin"
	"github.com/safedep/depwatch/policy"
)

// Denied is returned when the policy engine denies a spawn or an
// environment access.
type Denied struct {
	Verdict policy.Verdict
	Target  string
}

func (d *Denied) Error() string {
	return fmt.Sprintf("EACCES: %s denied for %s", d.Verdict.Reason, d.Target)
}

// sameRuntimeMarkers names the program basenames the wrapper treats as
// "the same runtime" for parent->child trust transfer (spec.md §4.2:
// "When the spawned program is the same runtime..."). Go programs spawn
// children by path, not by a shared interpreter binary, so "same runtime"
// is approximated as "the currently running executable, spawned again" --
// the common pattern for a host program that re-execs itself as a worker.
func sameRuntimeMarkers() []string {
	exe, err := os.Executable()
	if err != nil {
		return nil
	}

	return []string{exe}
}

// nativeBuildTools are program basenames that commonly appear as children
// during legitimate native compilation (e.g. a dependency's postinstall
// building a binary addon). Re-injecting firewall flags into these would
// risk corrupting the build (spec.md §5: "Build-tool detection ...
// suppresses firewall installation in children to avoid corrupting
// legitimate native compilation").
var nativeBuildTools = map[string]bool{
	"cc":      true,
	"gcc":     true,
	"clang":   true,
	"make":    true,
	"cmake":   true,
	"ld":      true,
	"ar":      true,
	"node-gyp": true,
	"cargo":   true,
	"rustc":   true,
}

// FirewallPreloadFlag is re-injected into a same-runtime child's argument
// list (spec.md §4.2, §5).
const FirewallPreloadFlag = "--firewall-preload"

// FirewallActiveEnvVar is forced into a same-runtime child's environment
// so the child cannot escape enforcement simply by starting fresh.
const FirewallActiveEnvVar = "DEPWATCH_FIREWALL_ACTIVE=1"

// firewalled wraps a HostProc with policy enforcement.
type firewalled struct {
	inner HostProc
	mon   *monitor.Monitor
}

// NewFirewalled wraps inner with policy enforcement.
func NewFirewalled(inner HostProc, mon *monitor.Monitor) HostProc {
	return &firewalled{inner: inner, mon: mon}
}

func (f *firewalled) Spawn(ctx context.Context, spec SpawnSpec) (*SpawnResult, error) {
	command := spec.Program
	if len(spec.Args) > 0 {
		command = command + " " + strings.Join(spec.Args, " ")
	}

	op := policy.Operation{
		Kind:   policy.KindSpawn,
		Target: command,
		Origin: originFromContext(ctx),
	}

	verdict := f.mon.Check(op)
	if !verdict.Allowed {
		return nil, &Denied{Verdict: verdict, Target: command}
	}

	warnSuspiciousPath(spec, command)

	spec = applyTrustTransfer(spec)

	return f.inner.Spawn(ctx, spec)
}

// warnSuspiciousPath implements the command resolution order's advisory
// step (spec.md §4.1 step 2: "Warn if PATH contains suspicious entries").
// It never denies the spawn on its own -- a writable-by-anyone or relative
// PATH entry is a PATH-hijacking smell, not proof of one.
func warnSuspiciousPath(spec SpawnSpec, command string) {
	env := spec.Env
	if env == nil {
		env = os.Environ()
	}

	for _, kv := range env {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name != "PATH" {
			continue
		}

		if suspicious := policy.SuspiciousPathEntries(value); len(suspicious) > 0 {
			log.Warnf("hostproc: PATH contains suspicious entries %v before spawning %q", suspicious, command)
		}

		return
	}
}

// applyTrustTransfer re-injects the firewall preload flag and environment
// flag into a same-runtime child's spawn spec (spec.md §4.2, §5), unless
// the child is a recognized native build tool.
func applyTrustTransfer(spec SpawnSpec) SpawnSpec {
	programName := spec.Program
	if idx := strings.LastIndexByte(programName, '/'); idx >= 0 {
		programName = programName[idx+1:]
	}

	if nativeBuildTools[programName] {
		return spec
	}

	isSameRuntime := false
	for _, marker := range sameRuntimeMarkers() {
		if spec.Program == marker {
			isSameRuntime = true
			break
		}
	}

	if !isSameRuntime {
		return spec
	}

	hasFlag := false
	for _, arg := range spec.Args {
		if arg == FirewallPreloadFlag {
			hasFlag = true
			break
		}
	}

	if !hasFlag {
		spec.Args = append(append([]string{}, spec.Args...), FirewallPreloadFlag)
	}

	env := spec.Env
	if env == nil {
		env = os.Environ()
	}

	hasFlagVar := false
	for _, kv := range env {
		if strings.HasPrefix(kv, "DEPWATCH_FIREWALL_ACTIVE=") {
			hasFlagVar = true
			break
		}
	}

	if !hasFlagVar {
		env = append(append([]string{}, env...), FirewallActiveEnvVar)
	}

	spec.Env = env

	return spec
}

func (f *firewalled) checkEnv(ctx context.Context, kind policy.Kind, key string) error {
	op := policy.Operation{
		Kind:   kind,
		Target: key,
		Origin: originFromContext(ctx),
	}

	verdict := f.mon.Check(op)
	if !verdict.Allowed {
		return &Denied{Verdict: verdict, Target: key}
	}

	return nil
}

func (f *firewalled) Getenv(ctx context.Context, key string) (string, bool) {
	if err := f.checkEnv(ctx, policy.KindEnvGet, key); err != nil {
		return ProtectedSentinel, true
	}

	return f.inner.Getenv(ctx, key)
}

func (f *firewalled) Setenv(ctx context.Context, key, value string) error {
	if err := f.checkEnv(ctx, policy.KindEnvSet, key); err != nil {
		return err
	}

	return f.inner.Setenv(ctx, key, value)
}

func (f *firewalled) Unsetenv(ctx context.Context, key string) error {
	if err := f.checkEnv(ctx, policy.KindEnvDelete, key); err != nil {
		return err
	}

	return f.inner.Unsetenv(ctx, key)
}

// Environ omits protected keys entirely rather than masking them (spec.md
// §8 scenario 6: "keys beginning with AWS_ absent from the enumeration").
func (f *firewalled) Environ(ctx context.Context) []string {
	all := f.inner.Environ(ctx)

	keys := make([]string, 0, len(all))
	values := make(map[string]string, len(all))

	for _, kv := range all {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}

		keys = append(keys, name)
		values[name] = value
	}

	visible := policy.ProtectedEnvKeys(f.mon.Config(), keys)

	result := make([]string, 0, len(visible))
	for _, key := range visible {
		result = append(result, key+"="+values[key])
	}

	return result
}

func (f *firewalled) Contains(ctx context.Context, key string) bool {
	return f.inner.Contains(ctx, key)
}

func originFromContext(ctx context.Context) origin.Tag {
	tag, _ := origin.FromContext(ctx)
	return tag
}
