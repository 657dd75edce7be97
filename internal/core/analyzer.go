package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"mad-scanner/internal/ports"
	"mad-scanner/internal/shared"
	"mad-scanner/internal/types"
)

// Analyzer runs the per-artifact pipeline: inspection dumps, parsing,
// risk detection, aggregation and report persistence.
type Analyzer struct {
	Inspector ports.InspectorPort
	Detector  ports.DetectorPort
	Reports   ports.ReportWriterPort
	Alerts    ports.AlertSinkPort
	OutputDir string
}

func NewAnalyzer(inspector ports.InspectorPort, detector ports.DetectorPort, reports ports.ReportWriterPort, alerts ports.AlertSinkPort, outputDir string) Analyzer {
	return Analyzer{
		Inspector: inspector,
		Detector:  detector,
		Reports:   reports,
		Alerts:    alerts,
		OutputDir: outputDir,
	}
}

// Analyze never returns an error; every failure is folded into the
// outcome. A detection failure still writes a metadata-only report.
func (a Analyzer) Analyze(ctx context.Context, artifactPath string) (outcome types.TaskOutcome) {
	outcome = types.TaskOutcome{ArtifactPath: artifactPath}
	defer func() {
		if r := recover(); r != nil {
			outcome = failed(outcome, types.FailureKindInternal, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("analysis panicked").
				WithCause(fmt.Errorf("%v", r)))
		}
	}()
	if a.Inspector == nil || a.Detector == nil || a.Reports == nil {
		return failed(outcome, types.FailureKindInternal, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("analyzer requires inspector, detector and report ports"))
	}
	logger := log.Ctx(ctx).With().Str("artifact", artifactPath).Logger()

	permissions, err := a.Inspector.Dump(ctx, types.DumpModePermissions, artifactPath)
	if err != nil {
		return failed(outcome, types.FailureKindToolInvocation, err)
	}
	badging, err := a.Inspector.Dump(ctx, types.DumpModeBadging, artifactPath)
	if err != nil {
		return failed(outcome, types.FailureKindToolInvocation, err)
	}
	metadata := ParseDumps(permissions, badging)
	if !metadata.HasPackageName {
		logger.Warn().Str("kind", string(types.FailureKindParseNotFound)).Msg("package name not found in dumps")
	}

	var verdict *types.Verdict
	detected, detectErr := a.Detector.Detect(ctx, artifactPath)
	if detectErr == nil {
		verdict = &detected
	} else {
		logger.Warn().Err(detectErr).Msg("risk detection failed, writing metadata-only report")
	}

	report, alerts := Aggregate(filepath.Base(artifactPath), metadata, verdict)
	if detectErr != nil {
		report.DetectionError = shared.ErrorMessage(detectErr)
	}
	outcome.Alerts = alerts
	if a.Alerts != nil {
		for _, alert := range alerts {
			a.Alerts.Emit(ctx, alert)
		}
	}

	reportPath, err := a.Reports.Write(report, a.OutputDir)
	if err != nil {
		kind := types.FailureKindDestinationUnavailable
		if errbuilder.CodeOf(err) == errbuilder.CodeInternal {
			kind = types.FailureKindInternal
		}
		return failed(outcome, kind, err)
	}
	outcome.ReportPath = reportPath
	outcome.Succeeded = true
	if detectErr != nil {
		outcome.Degraded = true
		outcome.FailureKind = types.FailureKindDetection
		outcome.Error = shared.ErrorMessage(detectErr)
	}
	logger.Debug().Str("report", reportPath).Int("alerts", len(alerts)).Msg("artifact analyzed")
	return outcome
}

func failed(outcome types.TaskOutcome, kind types.FailureKind, err error) types.TaskOutcome {
	outcome.Succeeded = false
	outcome.Degraded = false
	outcome.FailureKind = kind
	outcome.Error = shared.ErrorMessage(err)
	return outcome
}
