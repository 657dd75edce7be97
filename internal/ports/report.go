package ports

import "mad-scanner/internal/types"

// ReportWriterPort persists one report under dir and returns the written
// path. Writing the same report twice yields byte-identical files.
type ReportWriterPort interface {
	Write(report types.AnalysisReport, dir string) (string, error)
	ReportPath(artifactPath string, dir string) string
}

type ReportReaderPort interface {
	Read(path string) (types.AnalysisReport, error)
	List(dir string) ([]string, error)
}
