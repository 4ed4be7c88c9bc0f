package selfprotect

import (
	"time"

	"github.com/safedep/depwatch/config"
)

// fortressWindowDuration is the fortress-mode startup-phase window during
// which extra strictness applies (spec.md §5, SPEC_FULL.md §4).
const fortressWindowDuration = 100 * time.Millisecond

// FortressWindow reports whether the process is still within its startup
// grace period. Constructed once at firewall installation; Active()
// returns true until fortressWindowDuration has elapsed, then false for
// the remainder of the process's life.
type FortressWindow struct {
	armed    bool
	deadline time.Time
}

// NewFortressWindow starts a fortress window from the current moment. The
// window only ever arms when FIREWALL_FORTRESS=1 is set (spec.md §6); a
// process launched without that flag gets a window that is never active,
// rather than max-strictness being unconditional.
func NewFortressWindow() *FortressWindow {
	if !config.IsFortressMode() {
		return &FortressWindow{}
	}

	return &FortressWindow{armed: true, deadline: time.Now().Add(fortressWindowDuration)}
}

// Active reports whether the fortress-mode startup window is still open.
func (w *FortressWindow) Active() bool {
	return w.armed && time.Now().Before(w.deadline)
}
