package classify

import (
	"net"
	"net/url"
	"strings"
)

// trustedRegistryHosts are package-registry hosts always reachable during
// install mode regardless of the configured network allowlist (spec.md
// §4.1 network resolution order, install-mode fast path).
var trustedRegistryHosts = []string{
	"registry.npmjs.org",
	"pypi.org",
	"files.pythonhosted.org",
	"proxy.golang.org",
	"sum.golang.org",
	"rubygems.org",
	"crates.io",
}

// IsTrustedRegistryHost reports whether host is a well-known package
// registry reachable during install mode.
func IsTrustedRegistryHost(host string) bool {
	host = strings.ToLower(host)

	for _, trusted := range trustedRegistryHosts {
		if host == trusted || strings.HasSuffix(host, "."+trusted) {
			return true
		}
	}

	return false
}

// githubAPIHosts are hosts inspected by the GitHub-API monitor lobe
// (spec.md §4.7).
var githubAPIHosts = []string{
	"api.github.com",
	"raw.githubusercontent.com",
	"uploads.github.com",
}

// IsGitHubAPIHost reports whether host is one of the GitHub API/raw-content
// hosts that the GitHub-API monitor lobe inspects.
func IsGitHubAPIHost(host string) bool {
	host = strings.ToLower(host)

	for _, h := range githubAPIHosts {
		if host == h {
			return true
		}
	}

	return false
}

// IsPrivateOrLoopback reports whether host resolves to (or is literally) an
// RFC 1918, link-local, unique-local, or loopback address. Outbound
// connections to such addresses from installed dependency code are a strong
// lateral-movement signal (spec.md §4.1 network resolution order).
func IsPrivateOrLoopback(host string) bool {
	ip := net.ParseIP(host)
	if ip == nil {
		// Not a literal address; hostnames are resolved by the caller via
		// HostNet before this classifier runs, since classify stays pure
		// and does no I/O.
		return host == "localhost"
	}

	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}

// HostFromTarget extracts the host portion from a dial target or URL
// string, stripping any port.
func HostFromTarget(target string) string {
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		target = u.Host
	}

	if h, _, err := net.SplitHostPort(target); err == nil {
		return h
	}

	return target
}

// IsHTTPWriteMethod reports whether method is one capable of carrying an
// outbound payload, the precondition for exfiltration correlation (spec.md
// §4.4: "outbound POST/PUT").
func IsHTTPWriteMethod(method string) bool {
	switch strings.ToUpper(method) {
	case "POST", "PUT", "PATCH":
		return true
	default:
		return false
	}
}
