// Package setup implements the "setup" demo subcommand: it builds a
// selfprotect.Provider from the discovered configuration and runs the
// given argv through the firewalled process capability, demonstrating the
// only way a host program is meant to reach a dependency's command —
// through the provider, never through os/exec directly (spec.md Design
// Notes §9).
package setup

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/safedep/depwatch/config"
	"github.com/safedep/depwatch/hostproc"
	depanalytics "github.com/safedep/depwatch/internal/analytics"
	"github.com/safedep/depwatch/internal/ui"
	"github.com/safedep/depwatch/origin"
	"github.com/safedep/depwatch/policy"
	"github.com/safedep/depwatch/selfprotect"
	"github.com/spf13/cobra"
)

func NewSetupCommand() *cobra.Command {
	var originName string

	cmd := &cobra.Command{
		Use:   "setup -- <command> [args...]",
		Short: "Run a command under the dependency firewall",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			depanalytics.TrackCommandRun()

			if config.IsVerbose() {
				ui.SetVerbosityLevel(ui.VerbosityLevelVerbose)
			}

			ctx := origin.WithOrigin(context.Background(), origin.Tag{Name: originName})

			// FIREWALL_ACTIVE is the master activation switch (spec.md §6):
			// without it, the firewall installs nothing and the command
			// runs exactly as it would unwrapped.
			if !config.IsFirewallActive() {
				result, err := hostproc.NewPassthrough().Spawn(ctx, hostproc.SpawnSpec{
					Program: args[0],
					Args:    args[1:],
				})
				if err != nil {
					return fmt.Errorf("running %s: %w", args[0], err)
				}

				fmt.Fprint(os.Stdout, string(result.Stdout))
				fmt.Fprint(os.Stderr, string(result.Stderr))

				if result.ExitCode != 0 {
					os.Exit(result.ExitCode)
				}

				return nil
			}

			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			cfg, err = config.ExpandPaths(cfg)
			if err != nil {
				return fmt.Errorf("expanding configured paths: %w", err)
			}

			provider := selfprotect.NewProvider(cfg, config.IsInstallMode(currentEnviron()))
			defer provider.Close()

			result, err := provider.Proc.Spawn(ctx, hostproc.SpawnSpec{
				Program: args[0],
				Args:    args[1:],
			})
			if err != nil {
				var denied *hostproc.Denied
				if errors.As(err, &denied) {
					return ui.Block([]ui.Denial{{
						Operation: policy.Operation{
							Kind:   policy.KindSpawn,
							Target: denied.Target,
							Origin: origin.Tag{Name: originName},
						},
						Verdict: denied.Verdict,
					}})
				}

				return fmt.Errorf("running %s: %w", args[0], err)
			}

			fmt.Fprint(os.Stdout, string(result.Stdout))
			fmt.Fprint(os.Stderr, string(result.Stderr))

			if result.ExitCode != 0 {
				os.Exit(result.ExitCode)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&originName, "origin", "untrusted", "Origin name attributed to the spawned command")

	return cmd
}

func currentEnviron() map[string]string {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				env[kv[:i]] = kv[i+1:]
				break
			}
		}
	}

	return env
}
