// Package mitmnet is the MITM-based alternate network interceptor (spec.md
// §4.2, §4.7 — "see Domain stack"): a goproxy-backed HTTP(S) proxy that
// terminates TLS under its own CA so it can inspect every request's method,
// host, and body, not just the destination a raw-socket Dial sees. Built
// for host programs that run dependency code as a genuinely separate
// process (a subprocess, a container) rather than an embedded interpreter,
// where hostnet.HostNet's in-process wrapping isn't available.
package mitmnet

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/elazarl/goproxy"
	"github.com/safedep/depwatch/classify"
	"github.com/safedep/depwatch/config"
	"github.com/safedep/depwatch/exfil"
	"github.com/safedep/depwatch/hostnet/mitmnet/certmanager"
	"github.com/safedep/depwatch/monitor"
	"github.com/safedep/depwatch/origin"
	"github.com/safedep/depwatch/policy"
	"github.com/safedep/dry/log"
)

// Config configures the MITM proxy server.
type Config struct {
	ListenAddr     string
	CertManager    certmanager.CertificateManager
	ConnectTimeout time.Duration
	RequestTimeout time.Duration

	Engine   *policy.Engine
	Monitor  *monitor.Monitor
	Detector *exfil.Detector
	AppCfg   config.Config
	Env      map[string]string

	OnFinding func(exfil.Finding)
}

// DefaultConfig returns sensible defaults; callers must still set Engine,
// Monitor, and CertManager.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:     "127.0.0.1:0",
		ConnectTimeout: 30 * time.Second,
		RequestTimeout: 5 * time.Minute,
	}
}

// Server is the MITM proxy lifecycle.
type Server interface {
	Start() error
	Stop(ctx context.Context) error
	Address() string
}

type server struct {
	cfg    *Config
	proxy  *goproxy.ProxyHttpServer
	http   *http.Server
	listen net.Listener
}

var _ Server = &server{}

type goproxyLogger struct{}

func (goproxyLogger) Printf(format string, v ...interface{}) {
	log.Debugf("[MITMNET] "+format, v...)
}

// NewServer builds a proxy server wired to cfg's firewall components.
func NewServer(cfg *Config) (Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mitmnet: config is required")
	}

	if cfg.Engine == nil || cfg.Monitor == nil {
		return nil, fmt.Errorf("mitmnet: Engine and Monitor are required")
	}

	if cfg.CertManager == nil {
		return nil, fmt.Errorf("mitmnet: cert manager is required for MITM interception")
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:0"
	}

	gp := goproxy.NewProxyHttpServer()
	gp.Logger = goproxyLogger{}
	gp.Verbose = true
	gp.ConnectDial = func(network, addr string) (net.Conn, error) {
		dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
		return dialer.Dial(network, addr)
	}

	s := &server{cfg: cfg, proxy: gp}
	s.configureMITM()
	s.registerHandlers()

	return s, nil
}

func (s *server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to start listener: %w", err)
	}

	s.listen = listener
	s.http = &http.Server{
		Handler:      s.proxy,
		ReadTimeout:  s.cfg.RequestTimeout,
		WriteTimeout: s.cfg.RequestTimeout,
	}

	log.Debugf("mitmnet listening on %s", s.Address())

	go func() {
		if err := s.http.Serve(s.listen); err != nil && err != http.ErrServerClosed {
			log.Errorf("mitmnet server error: %v", err)
		}
	}()

	return nil
}

func (s *server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}

	return s.http.Shutdown(ctx)
}

func (s *server) Address() string {
	if s.listen == nil {
		return ""
	}

	return s.listen.Addr().String()
}

// configureMITM terminates every CONNECT tunnel under the firewall's own
// CA. Unlike the teacher's selective-interception proxy, the firewall must
// see every host's traffic to apply policy, so there is no tunnel-without-
// interception path.
func (s *server) configureMITM() {
	s.proxy.OnRequest().HandleConnect(goproxy.FuncHttpsHandler(func(host string, ctx *goproxy.ProxyCtx) (*goproxy.ConnectAction, string) {
		rc, err := newRequestContextFromConnect(host, "CONNECT")
		if err != nil {
			log.Errorf("mitmnet: failed to parse CONNECT target %s: %v", host, err)
			return &goproxy.ConnectAction{Action: goproxy.ConnectMitm, TLSConfig: s.tlsConfigFor}, host
		}

		// This is a host-only pre-check so a blocked destination's TLS
		// tunnel is never established at all; it consults the engine
		// directly rather than the monitor so the request actually sent
		// through the tunnel is the one counted (avoids double-counting
		// the same logical request as two network operations).
		verdict := s.cfg.Engine.Check(policy.Operation{
			Kind:   policy.KindNetConnect,
			Target: rc.URL.Host,
			Origin: origin.Tag{Name: origin.Unknown},
		}, s.cfg.Monitor.Counters().Snapshot())

		if !verdict.Allowed {
			log.Debugf("[%s] mitmnet: rejecting CONNECT to %s: %s", rc.RequestID, host, verdict.Reason)
			return &goproxy.ConnectAction{Action: goproxy.ConnectReject}, host
		}

		return &goproxy.ConnectAction{Action: goproxy.ConnectMitm, TLSConfig: s.tlsConfigFor}, host
	}))
}

func (s *server) tlsConfigFor(host string, ctx *goproxy.ProxyCtx) (*tls.Config, error) {
	hostname, _, err := net.SplitHostPort(host)
	if err != nil {
		hostname = host
	}

	return s.cfg.CertManager.GetTLSConfig(hostname)
}

func (s *server) registerHandlers() {
	s.proxy.OnRequest().DoFunc(func(req *http.Request, ctx *goproxy.ProxyCtx) (*http.Request, *http.Response) {
		rc, err := newRequestContext(req)
		if err != nil {
			log.Errorf("mitmnet: failed to build request context: %v", err)
			return req, nil
		}

		body, bodyErr := readAndRestoreBody(req)
		if bodyErr != nil {
			log.Errorf("[%s] mitmnet: failed to read body: %v", rc.RequestID, bodyErr)
		}
		rc.Body = body

		if resp := s.evaluate(rc, req); resp != nil {
			return req, resp
		}

		return req, nil
	})
}

// evaluate runs rc through the behavior monitor, the exfiltration detector,
// and — when the host is a GitHub API/raw-content host — the GitHub-API
// monitor lobe, invoked only now that the full body has been collected
// (spec.md §4.7). It returns a block response, or nil to let the request
// through.
func (s *server) evaluate(rc *requestContext, req *http.Request) *http.Response {
	op := policy.Operation{
		Kind:   policy.KindNetSend,
		Target: rc.URL.String(),
		Origin: origin.Tag{Name: origin.Unknown},
		Method: rc.Method,
		Body:   rc.Body,
	}

	verdict := s.cfg.Monitor.Check(op)
	if !verdict.Allowed {
		return blockResponse(req, verdict.Reason)
	}

	if classify.IsGitHubAPIHost(rc.Hostname) {
		ghVerdict := s.cfg.Engine.CheckGitHubAPI(policy.Operation{
			Kind:   policy.KindGitHubAPI,
			Target: rc.URL.String(),
			Method: rc.Method,
			Body:   rc.Body,
		})

		if !ghVerdict.Allowed {
			return blockResponse(req, ghVerdict.Reason)
		}
	}

	if s.cfg.Detector != nil && s.cfg.OnFinding != nil {
		findings := s.cfg.Detector.CheckOutbound(time.Now(), rc.Hostname, rc.Method, rc.Body, config.IsInstallMode(s.cfg.Env))
		for _, finding := range findings {
			s.cfg.OnFinding(finding)
		}
	}

	return nil
}

func blockResponse(req *http.Request, reason policy.Reason) *http.Response {
	message := fmt.Sprintf("blocked by depwatch firewall: %s", reason)
	resp := goproxy.NewResponse(req, goproxy.ContentTypeText, http.StatusForbidden, message)

	if req.ProtoMajor > 0 {
		resp.Proto = req.Proto
		resp.ProtoMajor = req.ProtoMajor
		resp.ProtoMinor = req.ProtoMinor
	} else {
		resp.Proto = "HTTP/1.1"
		resp.ProtoMajor = 1
		resp.ProtoMinor = 1
	}

	resp.Close = true
	resp.Header.Set("Connection", "close")
	resp.Header.Set("Proxy-Connection", "close")

	return resp
}
