package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowAndDenyConstructors(t *testing.T) {
	a := Allow(ReasonAllowDefault)
	assert.True(t, a.Allowed)
	assert.Equal(t, SeverityInfo, a.Severity)

	d := Deny(ReasonBlockedRead, SeverityHigh)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonBlockedRead, d.Reason)
	assert.Equal(t, SeverityHigh, d.Severity)
}

func TestVerdictBuilders(t *testing.T) {
	v := Deny(ReasonHardLimitExceeded, SeverityCritical).WithLimit(5, 6).WithPattern("p").WithException("ex").WithExtension(".sh")

	assert.Equal(t, 5, v.Limit)
	assert.Equal(t, 6, v.Current)
	assert.Equal(t, "p", v.Pattern)
	assert.Equal(t, "ex", v.Exception)
	assert.Equal(t, ".sh", v.Extension)
}
