// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sonarprep/sonarprep/cmd/sonarprep/internal/clierr"
	"github.com/sonarprep/sonarprep/internal/buildserver"
	"github.com/sonarprep/sonarprep/internal/coverage"
	"github.com/sonarprep/sonarprep/internal/fetch"
)

func newCoverageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Code-coverage report operations",
	}
	cmd.AddCommand(newCoverageFetchCmd())
	return cmd
}

func newCoverageFetchCmd() *cobra.Command {
	var (
		buildID  string
		outDir   string
		timeout  time.Duration
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Wait for and download a build's coverage reports",
		Long: `Poll the build server until coverage reports are available for the
given build, then download them. Exhausting the timeout is reported,
not treated as a failure.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return clierr.Wrap(2, "loading settings", err)
			}
			if err := cfg.ValidateServer(); err != nil {
				return clierr.Wrap(2, "configuration", err)
			}

			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if timeout == 0 {
				timeout = cfg.Coverage.Timeout.Std()
			}
			if interval == 0 {
				interval = cfg.Coverage.Interval.Std()
			}

			client := fetch.New(
				fetch.WithUserAgent(cfg.Server.UserAgent),
				fetch.WithBasicAuth(cfg.Server.Username, cfg.Server.Token),
				fetch.WithLogger(logger),
			)
			server := buildserver.NewHTTPServer(cfg.Server.URL, client)
			proc := coverage.NewProcessor(server, client, timeout, interval, logger)

			paths, err := proc.Download(cmd.Context(), buildID, outDir)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No coverage reports available for build %s\n", buildID)
				return nil
			}
			for _, p := range paths {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&buildID, "build-id", "", "build to fetch coverage for")
	cmd.Flags().StringVar(&outDir, "out", "coverage", "directory to download reports into")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "how long to wait for coverage (default from settings)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "delay between availability checks (default from settings)")
	_ = cmd.MarkFlagRequired("build-id")
	return cmd
}
