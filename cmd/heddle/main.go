// Heddle - Attention visualization engine
//
// Heddle lays out transformer attention weights as interactive head, model
// and neuron views, and serves them to notebook hosts over HTTP and
// WebSocket.
//
// Commands:
//   - serve:   host page server for notebook front ends
//   - render:  write an SVG or PNG snapshot of a data file
//   - inspect: interactive shell over one visualization
//   - shape:   table of filter dimensions
//   - init:    write a default config file
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/r3d91ll/heddle/pkg/config"
	"github.com/r3d91ll/heddle/pkg/dataset"
	herrors "github.com/r3d91ll/heddle/pkg/errors"
)

const version = "0.3.0"

func main() {
	if err := NewCLI().Execute(); err != nil {
		herrors.Display(err)
		os.Exit(1)
	}
}

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "heddle",
		Short:         "Attention visualization engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if v, _ := cmd.Flags().GetBool("version"); v {
				versionHandler(cmd, args)
				return
			}
			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: ./heddle.yaml)")

	rootCmd.AddCommand(
		newServeCmd(),
		newRenderCmd(),
		newInspectCmd(),
		newShapeCmd(),
		newInitCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Args:  cobra.NoArgs,
			Run:   versionHandler,
		},
	)
	return rootCmd
}

func versionHandler(cmd *cobra.Command, _ []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "Heddle %s\n", version)
}

// configPath returns the --config flag, or the default location.
func configPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.LoadOrDefault(configPath(cmd))
}

func defaultsFrom(cfg *config.Config) dataset.Defaults {
	return dataset.Defaults{
		View:          cfg.View.Kind,
		DisplayMode:   cfg.View.DisplayMode,
		Bidirectional: cfg.View.Bidirectional,
		Prettify:      cfg.View.Prettify,
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configPath(cmd)
			if err := config.InitConfig(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config initialized at: %s\n", path)
			return nil
		},
	}
}
