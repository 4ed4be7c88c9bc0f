// Package origin resolves which dependency is responsible for a capability
// call.
//
// Stack-trace package resolution (walking call frames to find the first
// frame outside the runtime/firewall itself) is fragile in a compiled
// language: inlining, vendoring, and build-mode differences all change what
// a frame's reported path looks like. Instead, origin is an explicit tag
// threaded through a context.Context value. Whatever component in the host
// program dispatches control to dependency code — a plugin loader, a
// module registry, a per-package worker — installs the tag once, before
// calling into that dependency; every capability call the dependency makes
// downstream carries the context and the policy engine reads the tag
// instead of walking the stack.
package origin

import "context"

// Unknown is returned by FromContext when no origin tag has been set.
const Unknown = ""

type contextKey struct{}

// Tag identifies the dependency responsible for operations made while it
// holds control.
type Tag struct {
	// Name is the dependency/package name, e.g. "left-pad" or "requests".
	Name string
	// Trusted marks this origin as pre-approved by the host program,
	// independent of the policy engine's own trusted-modules list — used
	// for the host program's own first-party code.
	Trusted bool
}

// WithOrigin returns a copy of ctx carrying tag as the active origin. Call
// this once, at the point where control transfers into dependency code;
// every capability call made before the next WithOrigin call is attributed
// to tag.
func WithOrigin(ctx context.Context, tag Tag) context.Context {
	return context.WithValue(ctx, contextKey{}, tag)
}

// FromContext returns the origin tag installed in ctx, and whether one was
// present at all. An absent tag means the call site could not be
// attributed to any dependency — the policy engine treats this as "no
// context" (spec.md environment resolution order step 2).
func FromContext(ctx context.Context) (Tag, bool) {
	tag, ok := ctx.Value(contextKey{}).(Tag)
	return tag, ok
}

// Name returns the origin name carried by ctx, or Unknown if none is set.
func Name(ctx context.Context) string {
	tag, ok := FromContext(ctx)
	if !ok {
		return Unknown
	}

	return tag.Name
}
