package coverage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonarprep/sonarprep/internal/buildserver"
	"github.com/sonarprep/sonarprep/internal/fetch"
)

func newReportServer(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadWaitsForCoverage(t *testing.T) {
	srv := newReportServer(t, "binary coverage data")

	// Coverage shows up on the third poll.
	fake := buildserver.NewFake(nil, nil, []string{srv.URL + "/reports/build42.coverage"})
	proc := NewProcessor(fake, fetch.New(), time.Second, time.Millisecond, nil)

	destDir := t.TempDir()
	paths, err := proc.Download(context.Background(), "42", destDir)
	require.NoError(t, err)

	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(destDir, "build42.coverage"), paths[0])
	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "binary coverage data", string(data))

	assert.Equal(t, 3, fake.Calls())

	summaries := fake.Summaries()
	require.Len(t, summaries, 1)
	assert.Equal(t, "42", summaries[0].BuildID)
	assert.Equal(t, "Downloaded 1 coverage report(s).", summaries[0].Message)
}

func TestDownloadMultipleReports(t *testing.T) {
	srv := newReportServer(t, "data")

	fake := buildserver.NewFake([]string{
		srv.URL + "/a.coverage",
		srv.URL + "/b.coverage",
	})
	proc := NewProcessor(fake, fetch.New(), time.Second, time.Millisecond, nil)

	destDir := t.TempDir()
	paths, err := proc.Download(context.Background(), "7", destDir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(destDir, "a.coverage"),
		filepath.Join(destDir, "b.coverage"),
	}, paths)
}

func TestDownloadTimeoutIsNotAnError(t *testing.T) {
	fake := buildserver.NewFake() // never available
	proc := NewProcessor(fake, fetch.New(), 10*time.Millisecond, 2*time.Millisecond, nil)

	paths, err := proc.Download(context.Background(), "42", t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, paths)
	assert.Empty(t, fake.Summaries(), "no summary without reports")
}

func TestDownloadProbeErrorPropagates(t *testing.T) {
	fake := buildserver.NewFake()
	boom := errors.New("server unreachable")
	fake.FailWith(boom)

	proc := NewProcessor(fake, fetch.New(), time.Second, time.Millisecond, nil)
	_, err := proc.Download(context.Background(), "42", t.TempDir())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, fake.Calls(), "transport errors are not retried")
}

func TestDownloadFailsWhenReportMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	fake := buildserver.NewFake([]string{srv.URL + "/gone.coverage"})
	proc := NewProcessor(fake, fetch.New(), time.Second, time.Millisecond, nil)

	_, err := proc.Download(context.Background(), "42", t.TempDir())
	require.ErrorIs(t, err, fetch.ErrNotFound)
}

func TestReportFileName(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain path", "http://host/reports/a.coverage", "a.coverage"},
		{"query string ignored", "http://host/reports/a.coverage?session=1", "a.coverage"},
		{"root path", "http://host/", "coverage.report"},
		{"unparseable", "://nope", "coverage.report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reportFileName(tt.url))
		})
	}
}
