package config

import "github.com/spf13/cobra"

// ApplyCobraFlags registers the CLI flags the firewall launcher exposes.
// Binding their values into viper is handled by Load, which is called
// after cobra has parsed argv.
func ApplyCobraFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Path to an explicit firewall configuration file")
	cmd.PersistentFlags().String("mode", "", "Override the firewall mode (enabled, alert_only, strict, interactive)")
	cmd.PersistentFlags().String("network-mode", "", "Override the network interceptor mode (monitor, enforce)")
	cmd.PersistentFlags().Int("max-network", 0, "Override the hard limit on outbound network requests")
	cmd.PersistentFlags().Int("max-file-writes", 0, "Override the hard limit on file writes")
	cmd.PersistentFlags().Int("max-spawns", 0, "Override the hard limit on process spawns")
}
