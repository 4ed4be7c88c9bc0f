package monitor

import (
	"testing"

	"github.com/safedep/depwatch/config"
	"github.com/safedep/depwatch/policy"
	"github.com/stretchr/testify/assert"
)

func TestCheckThresholdsFiresExactlyAtLine(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Behavioral.AlertThresholds = config.AlertThresholds{FileReads: 5}

	below := CheckThresholds(cfg, policy.CounterSnapshot{FileReads: 4})
	assert.Empty(t, below)

	at := CheckThresholds(cfg, policy.CounterSnapshot{FileReads: 5})
	assert.Len(t, at, 1)
	assert.Equal(t, AlertFileReads, at[0].Kind)

	above := CheckThresholds(cfg, policy.CounterSnapshot{FileReads: 6})
	assert.Empty(t, above)
}

func TestCheckThresholdsZeroDisables(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Behavioral.AlertThresholds = config.AlertThresholds{}

	alerts := CheckThresholds(cfg, policy.CounterSnapshot{FileReads: 1000, FileWrites: 1000, Network: 1000, Spawns: 1000})
	assert.Empty(t, alerts)
}

func TestCheckThresholdsMultipleCountersAtOnce(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Behavioral.AlertThresholds = config.AlertThresholds{FileWrites: 3, Network: 3}

	alerts := CheckThresholds(cfg, policy.CounterSnapshot{FileWrites: 3, NetworkRequests: 3})
	assert.Len(t, alerts, 2)
}
