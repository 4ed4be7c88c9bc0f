// Package audit implements the "audit" demo subcommand group, a thin CLI
// wrapper around the audit package's Query/RenderTable helpers (spec.md
// §4.6's "Query helpers can read the last N records and apply equality
// filters").
package audit

import (
	"fmt"
	"os"

	"github.com/safedep/depwatch/audit"
	"github.com/safedep/depwatch/config"
	depanalytics "github.com/safedep/depwatch/internal/analytics"
	"github.com/spf13/cobra"
)

func NewAuditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the firewall's audit log",
	}

	cmd.AddCommand(newTailCommand())
	return cmd
}

func newTailCommand() *cobra.Command {
	var (
		n        int
		opType   string
		severity string
		allowed  string
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show the last N audit records, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			depanalytics.TrackCommandAuditTail()

			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			filter := audit.QueryFilter{Type: opType, Severity: severity}
			switch allowed {
			case "true":
				v := true
				filter.Allowed = &v
			case "false":
				v := false
				filter.Allowed = &v
			case "":
			default:
				return fmt.Errorf("--allowed must be true or false, got %q", allowed)
			}

			records, err := audit.Query(cfg.Reporting.AuditFile, n, filter)
			if err != nil {
				return fmt.Errorf("querying audit log %s: %w", cfg.Reporting.AuditFile, err)
			}

			fmt.Fprintln(os.Stdout, audit.RenderTable(records))
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "lines", "n", 20, "Number of most recent records to show")
	cmd.Flags().StringVar(&opType, "type", "", "Filter by operation type, e.g. write, spawn")
	cmd.Flags().StringVar(&severity, "severity", "", "Filter by severity, e.g. critical, high")
	cmd.Flags().StringVar(&allowed, "allowed", "", "Filter by verdict: true or false")

	return cmd
}
