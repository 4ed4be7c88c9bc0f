package analytics

import "github.com/safedep/depwatch/policy"

const (
	eventRun = "depwatch_command_run"

	eventVerdictAllow = "depwatch_verdict_allow"
	eventVerdictDeny  = "depwatch_verdict_deny"

	eventCommandNpm    = "depwatch_command_npm"
	eventCommandPnpm   = "depwatch_command_pnpm"
	eventCommandYarn   = "depwatch_command_yarn"
	eventCommandPip    = "depwatch_command_pip"
	eventCommandUv     = "depwatch_command_uv"
	eventCommandPoetry = "depwatch_command_poetry"

	eventCommandCheckConfig = "depwatch_command_check_config"
	eventCommandAuditTail   = "depwatch_command_audit_tail"
)

// TrackCommandRun fires once per invocation of the depwatch CLI, regardless
// of which subcommand was used.
func TrackCommandRun() {
	TrackEvent(eventRun)
}

func TrackCommandNpm()    { TrackEvent(eventCommandNpm) }
func TrackCommandPnpm()   { TrackEvent(eventCommandPnpm) }
func TrackCommandYarn()   { TrackEvent(eventCommandYarn) }
func TrackCommandPip()    { TrackEvent(eventCommandPip) }
func TrackCommandUv()     { TrackEvent(eventCommandUv) }
func TrackCommandPoetry() { TrackEvent(eventCommandPoetry) }

func TrackCommandCheckConfig() { TrackEvent(eventCommandCheckConfig) }
func TrackCommandAuditTail()   { TrackEvent(eventCommandAuditTail) }

// TrackVerdict records one policy verdict as an anonymized counter —
// reason and severity only, never the operation's target or origin, which
// could leak a dependency name or file path (spec.md §4.6 design intent,
// carried into this ambient analytics layer).
func TrackVerdict(v policy.Verdict) {
	event := eventVerdictAllow
	if !v.Allowed {
		event = eventVerdictDeny
	}

	TrackEventWithProperties(event, map[string]interface{}{
		"reason":   string(v.Reason),
		"severity": string(v.Severity),
	})
}
