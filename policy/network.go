package policy

import (
	"strconv"
	"strings"

	"github.com/safedep/depwatch/classify"
	"github.com/safedep/depwatch/config"
)

// checkNetwork implements the network resolution order (spec.md §4.1).
func (e *Engine) checkNetwork(op Operation, counters CounterSnapshot) Verdict {
	if !e.cfg.Network.Enabled {
		return Allow(ReasonAllowDefault)
	}

	host := classify.HostFromTarget(op.Target)

	// Step 2: loopback/0.0.0.0/unknown.
	if e.cfg.Network.AllowLocalhost && isLoopbackLike(host) {
		return Allow(ReasonAllowDefault)
	}

	// Step 3: private ranges.
	if e.cfg.Network.AllowPrivate && classify.IsPrivateOrLoopback(host) {
		return Allow(ReasonAllowDefault)
	}

	blockAll := containsWildcard(e.cfg.Network.BlockedDomains)
	whitelistMode := e.cfg.Network.AllowedDomainsMode == config.AllowedDomainsWhitelist ||
		e.cfg.Mode == config.ModeStrict || blockAll

	// Step 4: allow-list enforcement.
	if whitelistMode && len(e.cfg.Network.AllowedDomains) > 0 {
		if !hostMatchesAny(host, e.cfg.Network.AllowedDomains) {
			return Deny(ReasonNotInAllowedDomains, SeverityMedium)
		}
	}

	// Step 5: blocked-domain substring match, unless in block-all mode
	// (block-all is already enforced by the allow-list check above).
	if !blockAll {
		for _, blocked := range e.cfg.Network.BlockedDomains {
			if strings.Contains(strings.ToLower(host), strings.ToLower(blocked)) {
				return Deny(ReasonBlockedDomain, SeverityHigh).WithPattern(blocked)
			}
		}
	}

	// Step 6: suspicious ports.
	if op.Port != 0 {
		for _, port := range e.cfg.Network.SuspiciousPorts {
			if port == op.Port {
				if e.cfg.Mode == config.ModeAlertOnly {
					return Allow(ReasonSuspiciousPort).WithPattern(strconv.Itoa(port))
				}

				return Deny(ReasonSuspiciousPort, SeverityHigh).WithPattern(strconv.Itoa(port))
			}
		}
	}

	// Behavioral hard limit on network requests.
	if e.cfg.Behavioral.MaxNetwork > 0 && counters.NetworkRequests >= e.cfg.Behavioral.MaxNetwork {
		return Deny(ReasonHardLimitExceeded, SeverityCritical).
			WithLimit(e.cfg.Behavioral.MaxNetwork, counters.NetworkRequests+1)
	}

	// Step 7: allow.
	return Allow(ReasonAllowDefault)
}

func isLoopbackLike(host string) bool {
	return host == "localhost" || host == "0.0.0.0" || host == "::1" || host == "127.0.0.1" || host == ""
}

func containsWildcard(domains []string) bool {
	for _, d := range domains {
		if d == "*" {
			return true
		}
	}

	return false
}

// hostMatchesAny reports whether host matches entry exactly, as a strict
// subdomain, or by leading-wildcard pattern (spec.md §8 testable property).
func hostMatchesAny(host string, entries []string) bool {
	host = strings.ToLower(host)

	for _, entry := range entries {
		entry = strings.ToLower(entry)

		if strings.HasPrefix(entry, "*.") {
			suffix := entry[1:] // ".example.com"
			if strings.HasSuffix(host, suffix) {
				return true
			}

			continue
		}

		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}

	return false
}
