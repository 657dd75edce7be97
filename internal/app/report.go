package app

import (
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Report summarizes every persisted report in an output directory.
func (s Service) Report(req ReportRequest) (ReportResult, error) {
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return ReportResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}
	if s.ReportReader == nil {
		return ReportResult{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("report reader is not configured")
	}
	paths, err := s.ReportReader.List(outputDir)
	if err != nil {
		return ReportResult{}, err
	}
	result := ReportResult{}
	for _, path := range paths {
		report, err := s.ReportReader.Read(path)
		if err != nil {
			return ReportResult{}, err
		}
		summary := ReportSummary{
			Path:             path,
			ArtifactPath:     report.ArtifactPath,
			PackageName:      report.Metadata.PackageName,
			Capabilities:     len(report.Metadata.Capabilities),
			ExecutionTargets: append([]string(nil), report.Metadata.ExecutionTargets...),
			DetectionError:   report.DetectionError,
		}
		if report.Verdict == nil {
			result.MetadataOnly++
		} else {
			summary.BundledArtifacts = len(report.Verdict.BundledArtifacts)
			summary.Findings = sortedKeys(report.Verdict.Findings)
			if summary.BundledArtifacts > 0 {
				result.Packed++
			}
			if hasPositiveFinding(report.Verdict.Findings) {
				result.Malicious++
			}
		}
		result.Reports = append(result.Reports, summary)
	}
	return result, nil
}

func hasPositiveFinding(findings map[string]int) bool {
	for _, count := range findings {
		if count > 0 {
			return true
		}
	}
	return false
}

func sortedKeys[V any](input map[string]V) []string {
	keys := make([]string, 0, len(input))
	for key := range input {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
