package monitor

import (
	"fmt"

	"github.com/safedep/depwatch/config"
	"github.com/safedep/depwatch/policy"
)

// AlertKind names which counter crossed its soft threshold.
type AlertKind string

const (
	AlertFileReads  AlertKind = "file_reads"
	AlertFileWrites AlertKind = "file_writes"
	AlertNetwork    AlertKind = "network"
	AlertSpawns     AlertKind = "spawns"
)

// Alert is an informational record emitted when a counter crosses its soft
// alert threshold (spec.md §4.3). Alerts never block the operation that
// triggered them — they only ever reach the audit log.
type Alert struct {
	Kind      AlertKind
	Threshold int
	Current   int
}

func (a Alert) String() string {
	return fmt.Sprintf("%s alert: %d exceeds threshold %d", a.Kind, a.Current, a.Threshold)
}

// CheckThresholds compares a snapshot taken after incrementing against cfg's
// alert thresholds and returns one Alert per counter that has just crossed
// its line. "Just crossed" means the snapshot value equals the threshold
// exactly, so a long-running process that stays above a threshold is
// alerted once, not on every subsequent operation.
func CheckThresholds(cfg config.Config, snapshot policy.CounterSnapshot) []Alert {
	var alerts []Alert

	t := cfg.Behavioral.AlertThresholds

	if t.FileReads > 0 && snapshot.FileReads == t.FileReads {
		alerts = append(alerts, Alert{Kind: AlertFileReads, Threshold: t.FileReads, Current: snapshot.FileReads})
	}

	if t.FileWrites > 0 && snapshot.FileWrites == t.FileWrites {
		alerts = append(alerts, Alert{Kind: AlertFileWrites, Threshold: t.FileWrites, Current: snapshot.FileWrites})
	}

	if t.Network > 0 && snapshot.NetworkRequests == t.Network {
		alerts = append(alerts, Alert{Kind: AlertNetwork, Threshold: t.Network, Current: snapshot.NetworkRequests})
	}

	if t.Spawns > 0 && snapshot.ProcessSpawns == t.Spawns {
		alerts = append(alerts, Alert{Kind: AlertSpawns, Threshold: t.Spawns, Current: snapshot.ProcessSpawns})
	}

	return alerts
}
