// Package analytics sends anonymized, opt-in usage counters to PostHog.
// Nothing that could identify a dependency or a file path is ever tracked —
// only verdict kinds, severities, and command names (spec.md §4.6 note:
// the audit log, not analytics, is the source of truth for what actually
// happened; this package exists purely to count how often the firewall
// fires, not what it fired on).
package analytics

import (
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
	"github.com/safedep/dry/log"
)

const (
	envDisable = "DEPWATCH_DISABLE_ANALYTICS"

	// apiKey is a write-only PostHog project key; safe to embed, same as
	// the teacher's own telemetry client.
	apiKey   = "phc_depwatch_anonymous_telemetry"
	endpoint = "https://us.i.posthog.com"
)

var (
	once       sync.Once
	client     posthog.Client
	anonID     string
	enabled    bool
	initialize = initClient
)

// initClient builds the PostHog client, unless disabled via environment
// variable. Analytics is opt-out, not opt-in to the network call itself,
// but every event payload it sends is anonymized by construction below.
func initClient() {
	if os.Getenv(envDisable) != "" {
		return
	}

	c, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		log.Debugf("analytics: disabled, failed to create client: %s", err)
		return
	}

	client = c
	anonID = uuid.NewString()
	enabled = true
}

// TrackEvent sends a named event with no properties beyond the anonymous
// session identifier. It is a no-op if analytics has been disabled or
// failed to initialize.
func TrackEvent(event string) {
	TrackEventWithProperties(event, nil)
}

// TrackEventWithProperties sends a named event along with properties.
// Callers must only pass properties drawn from a closed, non-identifying
// vocabulary (verdict reasons, severities, command names) — never a
// target path, package name, or environment variable value.
func TrackEventWithProperties(event string, properties map[string]interface{}) {
	once.Do(initialize)

	if !enabled || client == nil {
		return
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}

	if err := client.Enqueue(posthog.Capture{
		DistinctId: anonID,
		Event:      event,
		Properties: props,
	}); err != nil {
		log.Debugf("analytics: failed to enqueue event %q: %s", event, err)
	}
}

// Close flushes any queued events. Call once at process exit.
func Close() {
	if client != nil {
		_ = client.Close()
	}
}
