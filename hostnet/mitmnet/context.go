package mitmnet

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// requestContext carries the per-request data the firewall interceptor
// needs, independent of whether the request arrived as a normal proxied
// call or was recovered from a CONNECT tunnel's relative URL.
type requestContext struct {
	URL       *url.URL
	Method    string
	Headers   http.Header
	Body      []byte
	Hostname  string
	RequestID string
	StartTime time.Time
}

func newRequestContext(req *http.Request) (*requestContext, error) {
	var hostname string
	if req.URL != nil {
		hostname = req.URL.Hostname()
	}

	if hostname == "" && req.Host != "" {
		hostname = req.Host
		if host, _, err := net.SplitHostPort(req.Host); err == nil {
			hostname = host
		}
	}

	requestID, err := generateRequestID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request ID: %w", err)
	}

	return &requestContext{
		URL:       req.URL,
		Method:    req.Method,
		Headers:   req.Header,
		Hostname:  hostname,
		RequestID: requestID,
		StartTime: time.Now(),
	}, nil
}

func newRequestContextFromConnect(hostport, method string) (*requestContext, error) {
	urlStr := hostport
	if !strings.Contains(urlStr, "://") {
		urlStr = "//" + urlStr
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CONNECT target: %w", err)
	}

	if parsed.Scheme == "" {
		parsed.Scheme = "https"
	}

	requestID, err := generateRequestID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request ID: %w", err)
	}

	return &requestContext{
		URL:       parsed,
		Method:    method,
		Headers:   make(http.Header),
		Hostname:  parsed.Hostname(),
		RequestID: requestID,
		StartTime: time.Now(),
	}, nil
}

func generateRequestID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
