package adapters

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"mad-scanner/internal/ports"
	"mad-scanner/internal/types"
)

const reportSuffix = ".report"

// ReportFileAdapter persists analysis reports as one file per artifact.
// Keys are emitted in alphabetical order so output is reproducible.
type ReportFileAdapter struct {
	Format types.ReportFormat
}

type reportDocument struct {
	ArtifactPath     string         `json:"artifactPath" yaml:"artifactPath"`
	BundledArtifacts []string       `json:"bundledArtifacts" yaml:"bundledArtifacts"`
	Capabilities     []string       `json:"capabilities" yaml:"capabilities"`
	DetectionError   *string        `json:"detectionError" yaml:"detectionError"`
	ExecutionTargets []string       `json:"executionTargets" yaml:"executionTargets"`
	Findings         map[string]int `json:"findings" yaml:"findings"`
	PackageName      *string        `json:"packageName" yaml:"packageName"`
}

func NewReportFileAdapter(format types.ReportFormat) ReportFileAdapter {
	if format == "" {
		format = types.ReportFormatJSON
	}
	return ReportFileAdapter{Format: format}
}

func (a ReportFileAdapter) ReportPath(artifactPath string, dir string) string {
	return filepath.Join(dir, filepath.Base(artifactPath)+reportSuffix)
}

func (a ReportFileAdapter) Write(report types.AnalysisReport, dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("report directory is empty")
	}
	if strings.TrimSpace(report.ArtifactPath) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("report artifact path is empty")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", destinationUnavailable(err)
	}
	if !info.IsDir() {
		return "", destinationUnavailable(errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(dir + " is not a directory"))
	}
	data, err := EncodeReport(report, a.Format)
	if err != nil {
		return "", err
	}
	path := a.ReportPath(report.ArtifactPath, dir)
	if err := writeFileAtomic(dir, path, data); err != nil {
		return "", err
	}
	return path, nil
}

func (a ReportFileAdapter) Read(path string) (types.AnalysisReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.AnalysisReport{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read report").
			WithCause(err)
	}
	return DecodeReport(data)
}

func (a ReportFileAdapter) List(dir string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("report directory is empty")
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("report directory not found").
			WithCause(err)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*"+reportSuffix))
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list reports").
			WithCause(err)
	}
	sort.Strings(paths)
	return paths, nil
}

// EncodeReport renders a report in the requested format.
func EncodeReport(report types.AnalysisReport, format types.ReportFormat) ([]byte, error) {
	doc := toDocument(report)
	switch format {
	case types.ReportFormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to marshal report").
				WithCause(err)
		}
		return data, nil
	case types.ReportFormatJSON, "":
		data, err := json.MarshalIndent(doc, "", "    ")
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to marshal report").
				WithCause(err)
		}
		return append(data, '\n'), nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported report format: " + string(format))
	}
}

// DecodeReport accepts either encoding produced by EncodeReport.
func DecodeReport(data []byte) (types.AnalysisReport, error) {
	var doc reportDocument
	var err error
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return types.AnalysisReport{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse report").
			WithCause(err)
	}
	return fromDocument(doc), nil
}

func toDocument(report types.AnalysisReport) reportDocument {
	doc := reportDocument{
		ArtifactPath:     report.ArtifactPath,
		BundledArtifacts: []string{},
		Capabilities:     sortedCopy(report.Metadata.Capabilities),
		ExecutionTargets: sortedCopy(report.Metadata.ExecutionTargets),
		Findings:         map[string]int{},
	}
	if report.Metadata.HasPackageName {
		name := report.Metadata.PackageName
		doc.PackageName = &name
	}
	if report.Verdict == nil {
		reason := report.DetectionError
		doc.DetectionError = &reason
		return doc
	}
	doc.BundledArtifacts = append(doc.BundledArtifacts, report.Verdict.BundledArtifacts...)
	for name, count := range report.Verdict.Findings {
		doc.Findings[name] = count
	}
	return doc
}

func fromDocument(doc reportDocument) types.AnalysisReport {
	report := types.AnalysisReport{
		ArtifactPath: doc.ArtifactPath,
		Metadata: types.ArtifactMetadata{
			Capabilities:     sortedCopy(doc.Capabilities),
			ExecutionTargets: sortedCopy(doc.ExecutionTargets),
		},
	}
	if doc.PackageName != nil {
		report.Metadata.PackageName = *doc.PackageName
		report.Metadata.HasPackageName = true
	}
	if doc.DetectionError != nil {
		report.DetectionError = *doc.DetectionError
		return report
	}
	verdict := types.Verdict{
		BundledArtifacts: append([]string{}, doc.BundledArtifacts...),
		Findings:         map[string]int{},
	}
	for name, count := range doc.Findings {
		verdict.Findings[name] = count
	}
	report.Verdict = &verdict
	return report
}

func sortedCopy(values []string) []string {
	out := append([]string{}, values...)
	sort.Strings(out)
	return out
}

func writeFileAtomic(dir string, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".report-*")
	if err != nil {
		return destinationUnavailable(err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return destinationUnavailable(err)
	}
	if err := tmp.Close(); err != nil {
		return destinationUnavailable(err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return destinationUnavailable(err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return destinationUnavailable(err)
	}
	return nil
}

func destinationUnavailable(cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("report destination unavailable").
		WithCause(cause)
}

var _ ports.ReportWriterPort = ReportFileAdapter{}
var _ ports.ReportReaderPort = ReportFileAdapter{}
