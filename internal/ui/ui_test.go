package ui

import (
	"strings"
	"testing"

	"github.com/safedep/depwatch/policy"
	"github.com/stretchr/testify/assert"
)

func TestGetConfirmationOnDenialWithReaderAcceptsYes(t *testing.T) {
	denials := []Denial{{
		Operation: policy.Operation{Kind: policy.KindWrite, Target: "/tmp/payload.sh"},
		Verdict:   policy.Deny(policy.ReasonBlockedExtension, policy.SeverityCritical),
	}}

	ok, err := GetConfirmationOnDenialWithReader(denials, strings.NewReader("y\n"))
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestGetConfirmationOnDenialWithReaderDeniesOnEmptyInput(t *testing.T) {
	denials := []Denial{{
		Operation: policy.Operation{Kind: policy.KindNetConnect, Target: "evil.example.com:443"},
		Verdict:   policy.Deny(policy.ReasonBlockedDomain, policy.SeverityHigh),
	}}

	ok, err := GetConfirmationOnDenialWithReader(denials, strings.NewReader(""))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestGenerateBannerCleansPseudoVersion(t *testing.T) {
	banner := GenerateBanner("v1.2.3-0.20240102150405-abcdef123456", "deadbeefcafe")
	assert.Contains(t, banner, "v1.2.3")
	assert.Contains(t, banner, "deadbe")
	assert.NotContains(t, banner, "20240102150405")
}
