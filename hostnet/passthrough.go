package hostnet

import (
	"bytes"
	"context"
	"net"
	"net/http"
)

// passthrough is the unfirewalled HostNet: every call goes straight to the
// stdlib. It exists so the firewalled implementation has something concrete
// to wrap, and so tests can exercise policy decisions without a real
// network present.
type passthrough struct {
	dialer *net.Dialer
	client *http.Client
	lookup func(ctx context.Context, host string) ([]net.IP, error)
}

// NewPassthrough returns a HostNet that performs every operation for real,
// with no policy applied.
func NewPassthrough() HostNet {
	dialer := &net.Dialer{}

	return &passthrough{
		dialer: dialer,
		client: &http.Client{},
		lookup: func(ctx context.Context, host string) ([]net.IP, error) {
			return net.DefaultResolver.LookupIP(ctx, "ip", host)
		},
	}
}

func (p *passthrough) Dial(ctx context.Context, network, addr string) (net.Conn, error) {
	return p.dialer.DialContext(ctx, network, addr)
}

func (p *passthrough) Do(ctx context.Context, req Request) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}

	return p.client.Do(httpReq)
}

func (p *passthrough) Resolve(ctx context.Context, host string) ([]net.IP, error) {
	return p.lookup(ctx, host)
}
