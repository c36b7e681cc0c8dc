// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands builds the sonarprep command tree.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sonarprep/sonarprep/internal/analysisconfig"
)

// NewRootCmd constructs the sonarprep root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("SONARPREP_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "sonarprep",
		Short:         "sonarprep - CI pre-processing for SonarQube analysis",
		Long:          "sonarprep prepares CI builds for SonarQube analysis: it generates analyzer rule-set files, retrieves code coverage reports from the build server, and publishes build summaries.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().String("config", "", "path to the sonarprep settings file")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of sonarprep",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sonarprep version %s\n", version)
		},
	})

	cmd.AddCommand(newRuleSetCmd())
	cmd.AddCommand(newCoverageCmd())
	cmd.AddCommand(newSummaryCmd())

	return cmd
}

// loadConfig resolves the settings for a command invocation. Without
// --config the built-in defaults apply.
func loadConfig(cmd *cobra.Command) (analysisconfig.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return analysisconfig.Config{}, err
	}
	if path == "" {
		return analysisconfig.Default(), nil
	}
	return analysisconfig.Load(path)
}

// newLogger builds the process logger; --verbose lowers the level to
// debug.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}
