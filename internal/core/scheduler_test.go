package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mad-scanner/internal/types"
)

func TestClampWorkers(t *testing.T) {
	tests := []struct {
		name        string
		requested   int
		max         int
		want        int
		wantClamped bool
	}{
		{name: "in range", requested: 4, max: 8, want: 4},
		{name: "zero", requested: 0, max: 8, want: 1, wantClamped: true},
		{name: "negative", requested: -3, max: 8, want: 1, wantClamped: true},
		{name: "above ceiling", requested: 64, max: 8, want: 8, wantClamped: true},
		{name: "default ceiling", requested: 12, max: 0, want: DefaultMaxWorkers, wantClamped: true},
		{name: "at ceiling", requested: 8, max: 8, want: 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clamped := ClampWorkers(tt.requested, tt.max)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantClamped, clamped)
		})
	}
}

func newTestScheduler(source *fakeSource, analyzer ArtifactAnalyzer, workers int) Scheduler {
	return NewScheduler(source, analyzer, "/out", workers, DefaultMaxWorkers)
}

func defaultAnalyzer(reports *memoryReports) Analyzer {
	return NewAnalyzer(
		fakeInspector{permissions: samplePermissionsDump, badging: sampleBadgingDump},
		fakeDetector{verdict: types.Verdict{Findings: map[string]int{"Clean": 0}}},
		reports,
		&collectingSink{},
		"/out",
	)
}

func inputNames(outcomes []types.TaskOutcome) []string {
	names := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		names = append(names, outcome.InputName)
	}
	sort.Strings(names)
	return names
}

func TestRunSkipsCommentLines(t *testing.T) {
	requests := BuildRequests(ParseInputNames("Foo App\n# skip me\nBar-2\n"))
	scheduler := newTestScheduler(&fakeSource{}, defaultAnalyzer(newMemoryReports()), 2)

	outcomes := scheduler.Run(t.Context(), requests)
	require.Len(t, outcomes, 2)
	if diff := cmp.Diff([]string{"Bar-2", "Foo App"}, inputNames(outcomes)); diff != "" {
		t.Fatalf("unexpected outcomes (-want +got):\n%s", diff)
	}
	for _, outcome := range outcomes {
		assert.True(t, outcome.Succeeded, outcome.Error)
	}
}

func TestRunIsolatesDetectionFailure(t *testing.T) {
	names := []string{"one", "two", "three", "four", "five"}
	reports := newMemoryReports()
	analyzer := NewAnalyzer(
		fakeInspector{permissions: samplePermissionsDump, badging: sampleBadgingDump},
		fakeDetector{
			verdict: types.Verdict{Findings: map[string]int{"Clean": 0}},
			failFor: map[string]bool{"three.apk": true},
		},
		reports,
		&collectingSink{},
		"/out",
	)
	scheduler := newTestScheduler(&fakeSource{}, analyzer, 3)

	outcomes := scheduler.Run(t.Context(), BuildRequests(names))
	require.Len(t, outcomes, 5)
	summary := Summarize(outcomes)
	assert.Equal(t, types.BatchSummary{Total: 5, Succeeded: 5, Degraded: 1, Failed: 0}, summary)

	written := reports.snapshot()
	require.Len(t, written, 5)
	full := 0
	for path, report := range written {
		if report.Verdict != nil {
			full++
			continue
		}
		assert.Equal(t, "/out/three.apk.report", path)
	}
	assert.Equal(t, 4, full)
}

func TestRunAcquisitionFailureIsPerTask(t *testing.T) {
	source := &fakeSource{missing: map[string]bool{"ghost": true}}
	scheduler := newTestScheduler(source, defaultAnalyzer(newMemoryReports()), 2)

	outcomes := scheduler.Run(t.Context(), BuildRequests([]string{"real", "ghost", "other"}))
	require.Len(t, outcomes, 3)
	for _, outcome := range outcomes {
		if outcome.InputName == "ghost" {
			assert.False(t, outcome.Succeeded)
			assert.Equal(t, types.FailureKindAcquisition, outcome.FailureKind)
			continue
		}
		assert.True(t, outcome.Succeeded)
	}
	assert.Len(t, source.acquired, 2)
}

func TestStreamDoesNotWaitForStragglers(t *testing.T) {
	gate := make(chan struct{})
	source := &fakeSource{block: map[string]chan struct{}{"slow": gate}}
	scheduler := newTestScheduler(source, defaultAnalyzer(newMemoryReports()), 2)

	stream := scheduler.Stream(t.Context(), BuildRequests([]string{"slow", "fast-1", "fast-2", "fast-3"}))
	var early []string
	for i := 0; i < 3; i++ {
		select {
		case outcome := <-stream:
			early = append(early, outcome.InputName)
		case <-time.After(5 * time.Second):
			t.Fatal("fast tasks blocked behind slow acquisition")
		}
	}
	sort.Strings(early)
	assert.Equal(t, []string{"fast-1", "fast-2", "fast-3"}, early)

	close(gate)
	last, ok := <-stream
	require.True(t, ok)
	assert.Equal(t, "slow", last.InputName)
	_, ok = <-stream
	assert.False(t, ok, "stream must close after every request reported")
}

func TestRunCanceledBatchReportsEveryRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	scheduler := newTestScheduler(&fakeSource{}, defaultAnalyzer(newMemoryReports()), 2)

	outcomes := scheduler.Run(ctx, BuildRequests([]string{"a", "b", "c"}))
	require.Len(t, outcomes, 3)
	for _, outcome := range outcomes {
		assert.False(t, outcome.Succeeded)
		assert.Equal(t, types.FailureKindCanceled, outcome.FailureKind)
	}
}

func TestRunEmptyBatch(t *testing.T) {
	scheduler := newTestScheduler(&fakeSource{}, defaultAnalyzer(newMemoryReports()), 4)
	assert.Empty(t, scheduler.Run(t.Context(), nil))
}

type panickingAnalyzer struct{}

func (panickingAnalyzer) Analyze(context.Context, string) types.TaskOutcome {
	panic("boom")
}

func TestRunRecoversPanickingTask(t *testing.T) {
	scheduler := newTestScheduler(&fakeSource{}, panickingAnalyzer{}, 1)
	outcomes := scheduler.Run(t.Context(), BuildRequests([]string{"a", "b"}))
	require.Len(t, outcomes, 2)
	for _, outcome := range outcomes {
		assert.False(t, outcome.Succeeded)
		assert.Equal(t, types.FailureKindInternal, outcome.FailureKind)
		assert.NotEmpty(t, outcome.InputName)
	}
}

func TestSummarize(t *testing.T) {
	summary := Summarize([]types.TaskOutcome{
		{Succeeded: true},
		{Succeeded: true, Degraded: true},
		{Succeeded: false},
	})
	assert.Equal(t, types.BatchSummary{Total: 3, Succeeded: 2, Degraded: 1, Failed: 1}, summary)
}

// peakSource records the highest number of Acquire calls in flight.
type peakSource struct {
	mu      sync.Mutex
	current int
	peak    int
}

func (p *peakSource) Acquire(context.Context, types.ArtifactRequest, string) error {
	p.mu.Lock()
	p.current++
	if p.current > p.peak {
		p.peak = p.current
	}
	p.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	p.mu.Lock()
	p.current--
	p.mu.Unlock()
	return nil
}

func TestRunBoundsConcurrencyToClampedPool(t *testing.T) {
	names := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		names = append(names, fmt.Sprintf("app-%d", i))
	}
	source := &peakSource{}
	scheduler := NewScheduler(source, defaultAnalyzer(newMemoryReports()), "/out", 50, 8)

	outcomes := scheduler.Run(t.Context(), BuildRequests(names))
	require.Len(t, outcomes, 40)
	assert.LessOrEqual(t, source.peak, 8)
	assert.Positive(t, source.peak)
}

type panickingSource struct{}

func (panickingSource) Acquire(context.Context, types.ArtifactRequest, string) error {
	panic("network stack exploded")
}

func TestRunRecoversPanickingSource(t *testing.T) {
	scheduler := NewScheduler(panickingSource{}, defaultAnalyzer(newMemoryReports()), "/out", 2, DefaultMaxWorkers)
	outcomes := scheduler.Run(t.Context(), BuildRequests([]string{"a", "b", "c"}))
	require.Len(t, outcomes, 3)
	for _, outcome := range outcomes {
		assert.False(t, outcome.Succeeded)
		assert.Equal(t, types.FailureKindInternal, outcome.FailureKind)
	}
}
