package types

// ArtifactRequest describes one input line turned into an acquirable
// artifact. FileName is unique within a batch; BaseFileName is the same
// name without the collision suffix and may repeat.
type ArtifactRequest struct {
	InputName    string
	Query        string
	FileName     string
	BaseFileName string
}

// ArtifactMetadata is what the inspection dumps tell us about an artifact.
// Capabilities and ExecutionTargets are sorted and free of duplicates.
type ArtifactMetadata struct {
	PackageName      string
	HasPackageName   bool
	Capabilities     []string
	ExecutionTargets []string
}

// Verdict is the risk-detection result for one artifact.
type Verdict struct {
	BundledArtifacts []string
	Findings         map[string]int
}

// AnalysisReport is the persisted unit. A nil Verdict means detection
// failed and DetectionError holds the reason.
type AnalysisReport struct {
	ArtifactPath   string
	Metadata       ArtifactMetadata
	Verdict        *Verdict
	DetectionError string
}

type AlertEvent struct {
	Kind         AlertKind
	ArtifactPath string
	FindingName  string
}
