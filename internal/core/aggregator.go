package core

import (
	"sort"

	"mad-scanner/internal/types"
)

// Aggregate merges a verdict into the metadata model and returns the
// alerts it implies. A nil verdict produces a metadata-only report and no
// alerts. The packed alert, when present, comes first; malware alerts
// follow in finding-name order.
func Aggregate(artifactPath string, metadata types.ArtifactMetadata, verdict *types.Verdict) (types.AnalysisReport, []types.AlertEvent) {
	report := types.AnalysisReport{
		ArtifactPath: artifactPath,
		Metadata:     normalizeMetadata(metadata),
	}
	if verdict == nil {
		return report, nil
	}
	normalized := normalizeVerdict(*verdict)
	report.Verdict = &normalized

	var alerts []types.AlertEvent
	if len(normalized.BundledArtifacts) > 0 {
		alerts = append(alerts, types.AlertEvent{
			Kind:         types.AlertKindPacked,
			ArtifactPath: artifactPath,
		})
	}
	for _, name := range sortedFindingNames(normalized.Findings) {
		if normalized.Findings[name] <= 0 {
			continue
		}
		alerts = append(alerts, types.AlertEvent{
			Kind:         types.AlertKindMalware,
			ArtifactPath: artifactPath,
			FindingName:  name,
		})
	}
	return report, alerts
}

func normalizeMetadata(metadata types.ArtifactMetadata) types.ArtifactMetadata {
	metadata.Capabilities = normalizeSet(metadata.Capabilities)
	metadata.ExecutionTargets = normalizeSet(metadata.ExecutionTargets)
	if !metadata.HasPackageName {
		metadata.PackageName = ""
	}
	return metadata
}

func normalizeVerdict(verdict types.Verdict) types.Verdict {
	bundled := append([]string{}, verdict.BundledArtifacts...)
	findings := make(map[string]int, len(verdict.Findings))
	for name, count := range verdict.Findings {
		findings[name] = count
	}
	return types.Verdict{
		BundledArtifacts: bundled,
		Findings:         findings,
	}
}

func normalizeSet(values []string) []string {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return sortedSet(set)
}

func sortedFindingNames(findings map[string]int) []string {
	names := make([]string, 0, len(findings))
	for name := range findings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
