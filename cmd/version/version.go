package version

import (
	"fmt"
	"os"

	"github.com/safedep/depwatch/internal/ui"
	"github.com/safedep/depwatch/internal/version"
	"github.com/spf13/cobra"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(os.Stdout, ui.GenerateBanner(version.Version, version.Commit))
			return nil
		},
	}
}
