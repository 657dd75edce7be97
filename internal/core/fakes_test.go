package core

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"mad-scanner/internal/types"
)

type fakeInspector struct {
	permissions string
	badging     string
	failFor     map[string]bool
}

func (f fakeInspector) Dump(_ context.Context, mode types.DumpMode, artifactPath string) (string, error) {
	if f.failFor[filepath.Base(artifactPath)] {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("inspection tool exited with status 1")
	}
	if mode == types.DumpModeBadging {
		return f.badging, nil
	}
	return f.permissions, nil
}

type fakeDetector struct {
	verdict types.Verdict
	failFor map[string]bool
}

func (f fakeDetector) Detect(_ context.Context, artifactPath string) (types.Verdict, error) {
	if f.failFor[filepath.Base(artifactPath)] {
		return types.Verdict{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("detector crashed")
	}
	return f.verdict, nil
}

type memoryReports struct {
	mu      sync.Mutex
	reports map[string]types.AnalysisReport
	fail    bool
}

func newMemoryReports() *memoryReports {
	return &memoryReports{reports: map[string]types.AnalysisReport{}}
}

func (m *memoryReports) ReportPath(artifactPath string, dir string) string {
	return filepath.Join(dir, filepath.Base(artifactPath)+".report")
}

func (m *memoryReports) Write(report types.AnalysisReport, dir string) (string, error) {
	if m.fail {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("report destination unavailable")
	}
	path := m.ReportPath(report.ArtifactPath, dir)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[path] = report
	return path, nil
}

func (m *memoryReports) snapshot() map[string]types.AnalysisReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]types.AnalysisReport, len(m.reports))
	for key, value := range m.reports {
		out[key] = value
	}
	return out
}

type collectingSink struct {
	mu     sync.Mutex
	alerts []types.AlertEvent
}

func (c *collectingSink) Emit(_ context.Context, alert types.AlertEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = append(c.alerts, alert)
}

func (c *collectingSink) all() []types.AlertEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.AlertEvent(nil), c.alerts...)
}

type fakeSource struct {
	mu       sync.Mutex
	missing  map[string]bool
	block    map[string]chan struct{}
	acquired []string
}

func (f *fakeSource) Acquire(ctx context.Context, request types.ArtifactRequest, destPath string) error {
	if gate, ok := f.block[request.InputName]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.missing[request.InputName] {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no search result for " + strings.TrimSpace(request.Query))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquired = append(f.acquired, destPath)
	return nil
}
