package analytics

import (
	"testing"

	"github.com/safedep/depwatch/policy"
	"github.com/stretchr/testify/assert"
)

func TestTrackVerdictIsNoopAndNeverPanicsForAllowAndDeny(t *testing.T) {
	resetState(t)
	t.Setenv(envDisable, "1")

	assert.NotPanics(t, func() {
		TrackVerdict(policy.Allow(policy.ReasonAllowDefault))
	})

	assert.NotPanics(t, func() {
		TrackVerdict(policy.Deny(policy.ReasonBlockedRead, policy.SeverityHigh))
	})
}
