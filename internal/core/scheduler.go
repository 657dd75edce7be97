package core

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"mad-scanner/internal/ports"
	"mad-scanner/internal/types"
)

const (
	MinWorkers        = 1
	DefaultMaxWorkers = 8
	DefaultWorkers    = 4
)

// ArtifactAnalyzer is the per-artifact step run after acquisition.
type ArtifactAnalyzer interface {
	Analyze(ctx context.Context, artifactPath string) types.TaskOutcome
}

// Scheduler fans artifact requests out to a fixed pool of workers. Each
// worker acquires one artifact, analyzes it and reports the outcome before
// taking the next request.
type Scheduler struct {
	Source     ports.ArtifactSourcePort
	Analyzer   ArtifactAnalyzer
	OutputDir  string
	Workers    int
	MaxWorkers int
}

func NewScheduler(source ports.ArtifactSourcePort, analyzer ArtifactAnalyzer, outputDir string, workers int, maxWorkers int) Scheduler {
	return Scheduler{
		Source:     source,
		Analyzer:   analyzer,
		OutputDir:  outputDir,
		Workers:    workers,
		MaxWorkers: maxWorkers,
	}
}

// ClampWorkers bounds a requested pool size to [MinWorkers, maxWorkers].
// A non-positive maxWorkers falls back to DefaultMaxWorkers. The second
// result reports whether the value had to be changed.
func ClampWorkers(requested int, maxWorkers int) (int, bool) {
	if maxWorkers < MinWorkers {
		maxWorkers = DefaultMaxWorkers
	}
	switch {
	case requested < MinWorkers:
		return MinWorkers, true
	case requested > maxWorkers:
		return maxWorkers, true
	default:
		return requested, false
	}
}

// Stream starts the batch and returns outcomes in completion order. The
// channel is closed once every request has produced exactly one outcome.
func (s Scheduler) Stream(ctx context.Context, requests []types.ArtifactRequest) <-chan types.TaskOutcome {
	workerCount := s.workerCount(ctx, len(requests))
	tasks := make(chan types.ArtifactRequest)
	results := make(chan types.TaskOutcome, len(requests))
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for request := range tasks {
				results <- s.process(ctx, request)
			}
		}()
	}
	go func() {
		defer close(tasks)
		for _, request := range requests {
			tasks <- request
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()
	return results
}

// Run drains Stream into a slice, still in completion order.
func (s Scheduler) Run(ctx context.Context, requests []types.ArtifactRequest) []types.TaskOutcome {
	outcomes := make([]types.TaskOutcome, 0, len(requests))
	for outcome := range s.Stream(ctx, requests) {
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (s Scheduler) workerCount(ctx context.Context, pending int) int {
	workers, clamped := ClampWorkers(s.Workers, s.MaxWorkers)
	if clamped {
		log.Ctx(ctx).Warn().
			Int("requested", s.Workers).
			Int("using", workers).
			Msg("worker count out of range, clamped")
	}
	if pending < workers {
		workers = pending
	}
	return workers
}

func (s Scheduler) process(ctx context.Context, request types.ArtifactRequest) (outcome types.TaskOutcome) {
	artifactPath := filepath.Join(s.OutputDir, request.FileName)
	outcome = types.TaskOutcome{InputName: request.InputName, ArtifactPath: artifactPath}
	defer func() {
		if r := recover(); r != nil {
			outcome = failed(outcome, types.FailureKindInternal, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("task panicked").
				WithCause(fmt.Errorf("%v", r)))
		}
		logOutcome(ctx, outcome)
	}()
	assert.NotEmpty(ctx, request.FileName, "artifact file name must be set")
	if err := ctx.Err(); err != nil {
		return failed(outcome, types.FailureKindCanceled, err)
	}
	if s.Source == nil || s.Analyzer == nil {
		return failed(outcome, types.FailureKindInternal, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("scheduler requires artifact source and analyzer"))
	}
	if err := s.Source.Acquire(ctx, request, artifactPath); err != nil {
		return failed(outcome, types.FailureKindAcquisition, err)
	}
	outcome = s.Analyzer.Analyze(ctx, artifactPath)
	outcome.InputName = request.InputName
	return outcome
}

func logOutcome(ctx context.Context, outcome types.TaskOutcome) {
	logger := log.Ctx(ctx)
	switch {
	case !outcome.Succeeded:
		logger.Error().
			Str("input", outcome.InputName).
			Str("kind", string(outcome.FailureKind)).
			Str("error", outcome.Error).
			Msg("task failed")
	case outcome.Degraded:
		logger.Warn().
			Str("input", outcome.InputName).
			Str("report", outcome.ReportPath).
			Msg("task completed with metadata-only report")
	default:
		logger.Info().
			Str("input", outcome.InputName).
			Str("report", outcome.ReportPath).
			Msg("task completed")
	}
}

// Summarize counts outcomes. Degraded outcomes count as succeeded too.
func Summarize(outcomes []types.TaskOutcome) types.BatchSummary {
	summary := types.BatchSummary{Total: len(outcomes)}
	for _, outcome := range outcomes {
		if !outcome.Succeeded {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		if outcome.Degraded {
			summary.Degraded++
		}
	}
	return summary
}
