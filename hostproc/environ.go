package hostproc

import (
	"context"
	"encoding/json"
	"strings"
)

// Environ renders a HostProc's visible environment for debug output. It
// exists because spec.md §4.2 additionally requires overriding the
// "inspection/JSON-serialization paths so that debug-printing the
// environment does not leak protected values" -- a host program that logs
// its environment (fmt.Println, %+v, json.Marshal) must see the same
// filtered view Environ() already produces, not the raw process
// environment.
type Environ struct {
	proc HostProc
	ctx  context.Context
}

// NewEnviron returns an Environ that renders proc's environment as seen
// through ctx's origin.
func NewEnviron(proc HostProc, ctx context.Context) Environ {
	return Environ{proc: proc, ctx: ctx}
}

// String implements fmt.Stringer with one "KEY=value" pair per line,
// protected keys already absent (spec.md §8 scenario 6).
func (e Environ) String() string {
	var b strings.Builder

	for _, kv := range e.proc.Environ(e.ctx) {
		b.WriteString(kv)
		b.WriteByte('\n')
	}

	return b.String()
}

// MarshalJSON implements json.Marshaler over the same filtered view, so
// that serializing the environment for a log line or report cannot leak a
// protected variable either.
func (e Environ) MarshalJSON() ([]byte, error) {
	result := make(map[string]string)

	for _, kv := range e.proc.Environ(e.ctx) {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}

		result[name] = value
	}

	return json.Marshal(result)
}
