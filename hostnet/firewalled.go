package hostnet

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/safedep/depwatch/classify"
	"github.com/safedep/depwatch/config"
	"github.com/safedep/depwatch/exfil"
	"github.com/safedep/depwatch/monitor"
	"github.com/safedep/depwatch/origin"
	"github.com/safedep/depwatch/policy"
)

// Denied is returned when the policy engine denies a network operation.
type Denied struct {
	Verdict policy.Verdict
}

func (d *Denied) Error() string {
	return fmt.Sprintf("network operation denied: %s", d.Verdict.Reason)
}

// validatedConn wraps a net.Conn with the per-socket "already validated"
// marker described in spec.md §3 ("a per-socket 'already validated' flag...
// so that HTTP-layer wrappers can set it to avoid double-checks with
// inaccurate host data"). The raw-socket Dial already evaluated the
// destination; an HTTP client built on top of this connection skips its own
// host check rather than re-deriving (and potentially mis-deriving) the
// target from request framing.
type validatedConn struct {
	net.Conn
	mu        sync.Mutex
	validated bool
}

func (c *validatedConn) markValidated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.validated = true
}

func (c *validatedConn) isValidated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validated
}

// firewalled is the policy-enforcing HostNet. It evaluates every dial and
// request through the behavior monitor, then layers the exfiltration
// detector's independent checks on top.
type firewalled struct {
	inner    HostNet
	mon      *monitor.Monitor
	detector *exfil.Detector
	cfg      config.Config
	env      map[string]string
	onFind   func(exfil.Finding)
}

// NewFirewalled wraps inner with policy enforcement. env is the process
// environment snapshot used for install-phase detection. onFind, if
// non-nil, is invoked synchronously for every exfiltration-detector
// finding — typically wired to the audit logger.
func NewFirewalled(inner HostNet, mon *monitor.Monitor, detector *exfil.Detector, cfg config.Config, env map[string]string, onFind func(exfil.Finding)) HostNet {
	return &firewalled{inner: inner, mon: mon, detector: detector, cfg: cfg, env: env, onFind: onFind}
}

func (f *firewalled) Dial(ctx context.Context, network, addr string) (net.Conn, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	port := 0
	fmt.Sscanf(portStr, "%d", &port)

	op := policy.Operation{
		Kind:   policy.KindNetConnect,
		Target: addr,
		Origin: originFromContext(ctx),
		Port:   port,
	}

	verdict := f.mon.Check(op)
	if !verdict.Allowed {
		return nil, &Denied{Verdict: verdict}
	}

	conn, err := f.inner.Dial(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	wrapped := &validatedConn{Conn: conn}
	wrapped.markValidated()

	f.runExfilChecks(host, "", nil)

	return wrapped, nil
}

func (f *firewalled) Do(ctx context.Context, req Request) (*http.Response, error) {
	host := req.Host
	if host == "" {
		host = classify.HostFromTarget(req.URL)
	}

	if conn, ok := ctx.Value(validatedConnKey{}).(*validatedConn); ok && conn.isValidated() {
		// The raw socket already cleared this destination; still run the
		// content-dependent checks (credential scan, timing correlation,
		// GitHub-API lobe) since those depend on the request body, not
		// just the host.
		if denied := f.checkGitHubAPI(ctx, host, req); denied != nil {
			return nil, denied
		}

		f.runExfilChecks(host, req.Method, req.Body)
		return f.inner.Do(ctx, req)
	}

	op := policy.Operation{
		Kind:   policy.KindNetSend,
		Target: req.URL,
		Origin: originFromContext(ctx),
		Method: req.Method,
		Body:   req.Body,
	}

	verdict := f.mon.Check(op)
	if !verdict.Allowed {
		return nil, &Denied{Verdict: verdict}
	}

	if denied := f.checkGitHubAPI(ctx, host, req); denied != nil {
		return nil, denied
	}

	f.runExfilChecks(host, req.Method, req.Body)

	return f.inner.Do(ctx, req)
}

// checkGitHubAPI runs the GitHub-API monitor lobe (spec.md §4.7) once the
// full request body has been collected, for any request whose host is the
// GitHub API or raw-content domain. Routed through the behavior monitor
// (rather than the policy engine directly) so the verdict is counted and
// audited exactly like every other operation.
func (f *firewalled) checkGitHubAPI(ctx context.Context, host string, req Request) *Denied {
	if !classify.IsGitHubAPIHost(host) {
		return nil
	}

	op := policy.Operation{
		Kind:   policy.KindGitHubAPI,
		Target: req.URL,
		Origin: originFromContext(ctx),
		Method: req.Method,
		Body:   req.Body,
	}

	verdict := f.mon.Check(op)
	if !verdict.Allowed {
		return &Denied{Verdict: verdict}
	}

	return nil
}

func (f *firewalled) Resolve(ctx context.Context, host string) ([]net.IP, error) {
	op := policy.Operation{
		Kind:   policy.KindDNSQuery,
		Target: host,
		Origin: originFromContext(ctx),
	}

	verdict := f.mon.Check(op)
	if !verdict.Allowed {
		return nil, &Denied{Verdict: verdict}
	}

	return f.inner.Resolve(ctx, host)
}

func (f *firewalled) runExfilChecks(host, method string, body []byte) {
	if f.detector == nil {
		return
	}

	if f.onFind == nil {
		return
	}

	findings := f.detector.CheckOutbound(time.Now(), host, method, body, config.IsInstallMode(f.env))
	for _, finding := range findings {
		f.onFind(finding)
	}
}

type validatedConnKey struct{}

// WithValidatedConn threads a raw-socket's validation marker into the
// context an HTTP client uses, so Do can skip re-deriving the host.
func WithValidatedConn(ctx context.Context, conn net.Conn) context.Context {
	vc, ok := conn.(*validatedConn)
	if !ok {
		return ctx
	}

	return context.WithValue(ctx, validatedConnKey{}, vc)
}

func originFromContext(ctx context.Context) origin.Tag {
	tag, _ := origin.FromContext(ctx)
	return tag
}
