package policy

import (
	"testing"

	"github.com/safedep/depwatch/config"
	"github.com/stretchr/testify/assert"
)

func TestCheckNetworkAllowsLocalhost(t *testing.T) {
	cfg := config.DefaultConfig()
	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{Kind: KindNetConnect, Target: "http://localhost:8080"}, CounterSnapshot{})
	assert.True(t, v.Allowed)
}

func TestCheckNetworkBlockedDomainSubstring(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Network.BlockedDomains = []string{"pastebin.com"}

	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{Kind: KindNetConnect, Target: "https://pastebin.com/api"}, CounterSnapshot{})
	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonBlockedDomain, v.Reason)
}

func TestCheckNetworkAllowedDomainsWhitelist(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Network.AllowedDomainsMode = config.AllowedDomainsWhitelist
	cfg.Network.AllowedDomains = []string{"*.example.com"}

	engine := NewEngine(cfg, false)

	allowed := engine.Check(Operation{Kind: KindNetConnect, Target: "https://api.example.com/x"}, CounterSnapshot{})
	assert.True(t, allowed.Allowed)

	denied := engine.Check(Operation{Kind: KindNetConnect, Target: "https://evil.com/x"}, CounterSnapshot{})
	assert.False(t, denied.Allowed)
	assert.Equal(t, ReasonNotInAllowedDomains, denied.Reason)
}

func TestCheckNetworkSuspiciousPort(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Network.SuspiciousPorts = []int{4444}

	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{Kind: KindNetConnect, Target: "https://example.com", Port: 4444}, CounterSnapshot{})
	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonSuspiciousPort, v.Reason)
}

func TestCheckNetworkHardLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Network.BlockedDomains = []string{}
	cfg.Behavioral.MaxNetwork = 5

	engine := NewEngine(cfg, false)

	v := engine.Check(Operation{Kind: KindNetConnect, Target: "https://example.com"}, CounterSnapshot{NetworkRequests: 5})
	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonHardLimitExceeded, v.Reason)
	assert.Equal(t, 5, v.Limit)
	assert.Equal(t, 6, v.Current)
}

func TestHostMatchesAny(t *testing.T) {
	assert.True(t, hostMatchesAny("api.example.com", []string{"example.com"}))
	assert.True(t, hostMatchesAny("example.com", []string{"example.com"}))
	assert.True(t, hostMatchesAny("sub.example.com", []string{"*.example.com"}))
	assert.False(t, hostMatchesAny("evilexample.com", []string{"example.com"}))
}
