package selfprotect

import (
	"context"

	"github.com/safedep/depwatch/origin"
	"github.com/safedep/depwatch/policy"
)

// FirewallTag is the origin carried by the firewall's own components (the
// audit logger, the self-protection layer itself) when they write to
// their own output files. Code holding any other origin -- including no
// origin at all -- is sandboxed code by definition and is never allowed
// to touch the firewall's own files. Its Name matches
// policy.FirewallOriginName, the engine's own reserved marker for the
// same invariant (spec.md §4.5).
var FirewallTag = origin.Tag{Name: policy.FirewallOriginName, Trusted: true}

// WithFirewallOrigin returns a copy of ctx tagged as the firewall's own
// origin, for use by internal components (the audit logger, config
// reload) that legitimately write to the firewall's own output files.
func WithFirewallOrigin(ctx context.Context) context.Context {
	return origin.WithOrigin(ctx, FirewallTag)
}
