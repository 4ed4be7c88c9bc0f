package policy

import (
	"testing"

	"github.com/safedep/depwatch/config"
	"github.com/stretchr/testify/assert"
)

func TestEngineDegradedModeWhenConfigNeverLoaded(t *testing.T) {
	engine := NewEngine(config.Config{}, false)

	v := engine.Check(Operation{Kind: KindRead, Target: "/anything"}, CounterSnapshot{})
	assert.True(t, v.Allowed)
	assert.Equal(t, ReasonFirewallNotReady, v.Reason)
}

func TestEngineConfigAccessor(t *testing.T) {
	cfg := config.DefaultConfig()
	engine := NewEngine(cfg, false)
	assert.Equal(t, cfg.Mode, engine.Config().Mode)
}
