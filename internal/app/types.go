package app

import "mad-scanner/internal/types"

type ScanRequest struct {
	InputPath    string
	OutputDir    string
	ToolPath     string
	Workers      int
	MaxWorkers   int
	DetectorPath string
	DetectorArgs []string
	Source       types.SourceKind
	StoreURL     string
	BrowserPath  string
	SourceDir    string
	Format       types.ReportFormat
	TimeoutSec   int
}

type ScanResult struct {
	OutputDir string
	Outcomes  []types.TaskOutcome
	Summary   types.BatchSummary
}

type ReportRequest struct {
	OutputDir string
}

type ReportSummary struct {
	Path             string
	ArtifactPath     string
	PackageName      string
	Capabilities     int
	ExecutionTargets []string
	BundledArtifacts int
	Findings         []string
	DetectionError   string
}

type ReportResult struct {
	Reports      []ReportSummary
	Packed       int
	Malicious    int
	MetadataOnly int
}
