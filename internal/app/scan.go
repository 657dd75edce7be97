package app

import (
	"context"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mad-scanner/internal/adapters"
	"mad-scanner/internal/core"
	"mad-scanner/internal/ports"
	"mad-scanner/internal/types"
)

func (s Service) Scan(ctx context.Context, req ScanRequest) (ScanResult, error) {
	inputPath := strings.TrimSpace(req.InputPath)
	if inputPath == "" {
		return ScanResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("input list is required")
	}
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		outputDir = "."
	}
	format, err := normalizeFormat(req.Format)
	if err != nil {
		return ScanResult{}, err
	}
	if s.Inputs == nil {
		return ScanResult{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("input list reader is not configured")
	}
	names, err := s.Inputs.ReadNames(inputPath)
	if err != nil {
		return ScanResult{}, err
	}
	source, err := s.source(req)
	if err != nil {
		return ScanResult{}, err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return ScanResult{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("failed to create output directory " + outputDir).
			WithCause(err)
	}

	if zerolog.Ctx(ctx).GetLevel() == zerolog.Disabled {
		ctx = log.Logger.WithContext(ctx)
	}
	analyzer := core.NewAnalyzer(s.inspector(req), s.detector(req), adapters.NewReportFileAdapter(format), s.alerts(), outputDir)
	scheduler := core.NewScheduler(source, analyzer, outputDir, req.Workers, req.MaxWorkers)

	requests := core.BuildRequests(names)
	log.Ctx(ctx).Info().Int("tasks", len(requests)).Str("out_dir", outputDir).Msg("scan started")
	outcomes := scheduler.Run(ctx, requests)
	summary := core.Summarize(outcomes)
	log.Ctx(ctx).Info().
		Int("total", summary.Total).
		Int("succeeded", summary.Succeeded).
		Int("degraded", summary.Degraded).
		Int("failed", summary.Failed).
		Msg("scan finished")
	return ScanResult{
		OutputDir: outputDir,
		Outcomes:  outcomes,
		Summary:   summary,
	}, nil
}

func (s Service) source(req ScanRequest) (ports.ArtifactSourcePort, error) {
	if s.Source != nil {
		return s.Source, nil
	}
	kind := types.SourceKind(strings.ToLower(strings.TrimSpace(string(req.Source))))
	switch kind {
	case "", types.SourceKindStore:
		return adapters.NewStoreSource(strings.TrimSpace(req.StoreURL), req.TimeoutSec), nil
	case types.SourceKindBrowser:
		return adapters.NewBrowserStoreSource(strings.TrimSpace(req.StoreURL), req.TimeoutSec, req.BrowserPath), nil
	case types.SourceKindDirectory:
		dir := strings.TrimSpace(req.SourceDir)
		if dir == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("source directory is required for dir source")
		}
		return adapters.NewDirectorySource(dir), nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported artifact source: " + string(req.Source))
	}
}

func (s Service) inspector(req ScanRequest) ports.InspectorPort {
	if s.Inspector != nil {
		return s.Inspector
	}
	return adapters.NewAaptInspector(strings.TrimSpace(req.ToolPath))
}

func (s Service) detector(req ScanRequest) ports.DetectorPort {
	if s.Detector != nil {
		return s.Detector
	}
	return adapters.NewCommandDetector(strings.TrimSpace(req.DetectorPath), req.DetectorArgs)
}

func (s Service) alerts() ports.AlertSinkPort {
	if s.Alerts != nil {
		return s.Alerts
	}
	return adapters.NewAlertLogSink(nil)
}

func normalizeFormat(format types.ReportFormat) (types.ReportFormat, error) {
	switch types.ReportFormat(strings.ToLower(strings.TrimSpace(string(format)))) {
	case "", types.ReportFormatJSON:
		return types.ReportFormatJSON, nil
	case types.ReportFormatYAML:
		return types.ReportFormatYAML, nil
	default:
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported report format: " + string(format))
	}
}
