// Command oauthapp serves GitHub-style OAuth remote apps over HTTP: login,
// login verification and repository forks.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/giantswarm/oauthapp/config"
)

// version is set at build time.
var version = "dev"

type rootFlags struct {
	configPath string
	envFiles   []string
}

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "oauthapp",
		Short:         "OAuth remote apps for GitHub-style providers",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a YAML, JSON or TOML config file")
	root.PersistentFlags().StringSliceVar(&flags.envFiles, "env-file", nil, "dotenv files to load before the config (default .env)")

	root.AddCommand(newServeCommand(flags), newConfigCommand(flags))
	return root
}

func (f *rootFlags) load() (*config.Config, error) {
	cfg, err := config.Load(f.configPath, f.envFiles...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newConfigCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration ok: providers %s\n", strings.Join(cfg.ProviderNames(), ", "))
			return nil
		},
	})
	return cmd
}
