// SPDX-License-Identifier: AGPL-3.0-or-later

// Package buildserver exposes the narrow slice of build-server
// capability this tool needs: locating a build's coverage reports and
// publishing a short summary message. The rest of the build server's
// API surface stays behind this interface.
package buildserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sonarprep/sonarprep/internal/fetch"
)

// Server is the capability interface consumed by the coverage
// processor and the CLI.
type Server interface {
	// CoverageReportURLs returns the download URLs of the coverage
	// reports attached to a build. An empty result means the reports
	// are not available yet; callers poll until they appear.
	CoverageReportURLs(ctx context.Context, buildID string) ([]string, error)

	// PublishSummary attaches a one-line summary message to a build.
	PublishSummary(ctx context.Context, buildID, message string) error
}

// HTTPServer talks to the build server's REST surface.
type HTTPServer struct {
	baseURL string
	client  *fetch.Client
}

// NewHTTPServer creates a Server backed by the REST API rooted at
// baseURL, using client for all requests.
func NewHTTPServer(baseURL string, client *fetch.Client) *HTTPServer {
	return &HTTPServer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type coverageDescriptor struct {
	ReportURL string `json:"reportUrl"`
}

type coverageResponse struct {
	Coverage []coverageDescriptor `json:"coverage"`
}

type summaryRequest struct {
	Message string `json:"message"`
}

// CoverageReportURLs queries the coverage endpoint for a build. A 404
// means the build is not indexed yet and is reported as an empty
// result, not an error.
func (s *HTTPServer) CoverageReportURLs(ctx context.Context, buildID string) ([]string, error) {
	url := fmt.Sprintf("%s/builds/%s/coverage", s.baseURL, buildID)
	body, err := s.client.Fetch(ctx, url)
	if errors.Is(err, fetch.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var resp coverageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding coverage response for build %s: %w", buildID, err)
	}

	urls := make([]string, 0, len(resp.Coverage))
	for _, d := range resp.Coverage {
		if d.ReportURL != "" {
			urls = append(urls, d.ReportURL)
		}
	}
	return urls, nil
}

// PublishSummary posts a summary message for a build.
func (s *HTTPServer) PublishSummary(ctx context.Context, buildID, message string) error {
	url := fmt.Sprintf("%s/builds/%s/summary", s.baseURL, buildID)
	payload, err := json.Marshal(summaryRequest{Message: message})
	if err != nil {
		return fmt.Errorf("encoding summary for build %s: %w", buildID, err)
	}
	if err := s.client.PostJSON(ctx, url, payload); err != nil {
		return fmt.Errorf("publishing summary for build %s: %w", buildID, err)
	}
	return nil
}
