// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sonarprep/sonarprep/cmd/sonarprep/internal/clierr"
	"github.com/sonarprep/sonarprep/internal/buildserver"
	"github.com/sonarprep/sonarprep/internal/fetch"
)

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Build summary operations",
	}
	cmd.AddCommand(newSummaryPublishCmd())
	return cmd
}

func newSummaryPublishCmd() *cobra.Command {
	var (
		buildID string
		message string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a summary message against a build",
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

			client := fetch.New(
				fetch.WithUserAgent(cfg.Server.UserAgent),
				fetch.WithBasicAuth(cfg.Server.Username, cfg.Server.Token),
				fetch.WithLogger(logger),
			)
			server := buildserver.NewHTTPServer(cfg.Server.URL, client)

			if err := server.PublishSummary(cmd.Context(), buildID, message); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Published summary for build %s\n", buildID)
			return nil
		},
	}

	cmd.Flags().StringVar(&buildID, "build-id", "", "build to publish the summary against")
	cmd.Flags().StringVar(&message, "message", "", "summary message")
	_ = cmd.MarkFlagRequired("build-id")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}
