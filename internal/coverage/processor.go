// SPDX-License-Identifier: AGPL-3.0-or-later

// Package coverage retrieves code-coverage artifacts for a finished
// build. Coverage indexing on the build server lags the build itself,
// so retrieval polls until the reports appear or a deadline passes.
package coverage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/sonarprep/sonarprep/internal/buildserver"
	"github.com/sonarprep/sonarprep/internal/fetch"
	"github.com/sonarprep/sonarprep/internal/poll"
)

const fallbackFileName = "coverage.report"

// Processor downloads a build's coverage reports once the build server
// makes them available.
type Processor struct {
	server   buildserver.Server
	client   *fetch.Client
	timeout  time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// NewProcessor wires a Processor. A nil logger disables logging.
func NewProcessor(server buildserver.Server, client *fetch.Client, timeout, interval time.Duration, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		server:   server,
		client:   client,
		timeout:  timeout,
		interval: interval,
		logger:   logger,
	}
}

// Download polls the build server until coverage report URLs appear
// for buildID, then downloads each report into destDir and publishes a
// summary. It returns the written file paths. Exhausting the poll
// deadline is not an error: no paths come back and the caller decides
// whether that is fatal.
func (p *Processor) Download(ctx context.Context, buildID, destDir string) ([]string, error) {
	var urls []string
	found, err := poll.Until(ctx, p.timeout, p.interval, func(ctx context.Context) (bool, error) {
		got, err := p.server.CoverageReportURLs(ctx, buildID)
		if err != nil {
			return false, err
		}
		if len(got) == 0 {
			p.logger.Debug("coverage not yet available", zap.String("build", buildID))
			return false, nil
		}
		urls = got
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("waiting for coverage of build %s: %w", buildID, err)
	}
	if !found {
		p.logger.Warn("timed out waiting for coverage",
			zap.String("build", buildID),
			zap.Duration("timeout", p.timeout))
		return nil, nil
	}

	paths := make([]string, 0, len(urls))
	for _, u := range urls {
		dest := filepath.Join(destDir, reportFileName(u))
		if err := p.client.Download(ctx, u, dest); err != nil {
			return nil, fmt.Errorf("downloading coverage report for build %s: %w", buildID, err)
		}
		paths = append(paths, dest)
	}

	msg := fmt.Sprintf("Downloaded %d coverage report(s).", len(paths))
	if err := p.server.PublishSummary(ctx, buildID, msg); err != nil {
		// Reports are already on disk; a failed summary must not fail the run.
		p.logger.Warn("publishing summary failed", zap.String("build", buildID), zap.Error(err))
	}

	p.logger.Info("coverage retrieved",
		zap.String("build", buildID),
		zap.Int("reports", len(paths)))
	return paths, nil
}

// reportFileName derives a local file name from a report URL.
func reportFileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallbackFileName
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return fallbackFileName
	}
	return base
}
