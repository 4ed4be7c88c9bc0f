package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	auditcmd "github.com/safedep/depwatch/cmd/audit"
	"github.com/safedep/depwatch/cmd/checkconfig"
	"github.com/safedep/depwatch/cmd/setup"
	"github.com/safedep/depwatch/cmd/version"
	"github.com/safedep/depwatch/config"
	"github.com/safedep/depwatch/internal/analytics"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found or failed to load")
	}

	cmd := &cobra.Command{
		Use:              "depwatch",
		Short:            "A run-time dependency firewall for package-manager scripts",
		TraverseChildren: true,
	}

	config.ApplyCobraFlags(cmd)

	cmd.AddCommand(setup.NewSetupCommand())
	cmd.AddCommand(checkconfig.NewCheckConfigCommand())
	cmd.AddCommand(auditcmd.NewAuditCommand())
	cmd.AddCommand(version.NewVersionCommand())

	defer analytics.Close()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
