package buildserver

import (
	"context"
	"sync"
)

// Summary records a message published against a build.
type Summary struct {
	BuildID string
	Message string
}

// Fake is an in-memory Server for tests. Each CoverageReportURLs call
// consumes the next scripted response; the last response repeats once
// the script is exhausted.
type Fake struct {
	mu        sync.Mutex
	responses [][]string
	err       error
	calls     int
	summaries []Summary
}

// NewFake scripts the per-call results of CoverageReportURLs. With no
// responses the fake always reports "not available yet".
func NewFake(responses ...[]string) *Fake {
	return &Fake{responses: responses}
}

// FailWith makes every subsequent CoverageReportURLs call return err.
func (f *Fake) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *Fake) CoverageReportURLs(_ context.Context, _ string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return nil, nil
	}
	idx := f.calls - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx], nil
}

func (f *Fake) PublishSummary(_ context.Context, buildID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.summaries = append(f.summaries, Summary{BuildID: buildID, Message: message})
	return nil
}

// Calls returns how many times CoverageReportURLs was invoked.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Summaries returns the messages published so far.
func (f *Fake) Summaries() []Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Summary, len(f.summaries))
	copy(out, f.summaries)
	return out
}
