// Package checkconfig implements the "check-config" demo subcommand: load
// the firewall configuration the same way the core would, print where it
// came from, and report any validation problems before a real install
// runs into them.
package checkconfig

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/safedep/depwatch/config"
	"github.com/spf13/cobra"
)

func NewCheckConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Load and print the effective firewall configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			cfg, err = config.ExpandPaths(cfg)
			if err != nil {
				return fmt.Errorf("expanding configured paths: %w", err)
			}

			path := config.DiscoverConfigPath("")
			if path == "" {
				fmt.Fprintln(os.Stdout, "No configuration file found; using built-in defaults.")
			} else {
				fmt.Fprintf(os.Stdout, "Loaded configuration from %s\n", path)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
}
