package app

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mad-scanner/internal/adapters"
	"mad-scanner/internal/types"
)

func TestReportSummarizesOutputDir(t *testing.T) {
	dir := t.TempDir()
	writer := adapters.NewReportFileAdapter(types.ReportFormatJSON)
	_, err := writer.Write(types.AnalysisReport{
		ArtifactPath: "Foo_App.apk",
		Metadata: types.ArtifactMetadata{
			PackageName:      "com.example.foo",
			HasPackageName:   true,
			Capabilities:     []string{"android.permission.INTERNET"},
			ExecutionTargets: []string{"arm64-v8a"},
		},
		Verdict: &types.Verdict{
			BundledArtifacts: []string{"assets/a.dex"},
			Findings:         map[string]int{"Trojan.X": 2, "Adware.Y": 0},
		},
	}, dir)
	require.NoError(t, err)
	_, err = writer.Write(types.AnalysisReport{
		ArtifactPath:   "Bar_2.apk",
		DetectionError: "engine crashed",
	}, dir)
	require.NoError(t, err)

	result, err := NewService().Report(ReportRequest{OutputDir: dir})
	require.NoError(t, err)

	want := ReportResult{
		Reports: []ReportSummary{
			{
				Path:           writer.ReportPath("Bar_2.apk", dir),
				ArtifactPath:   "Bar_2.apk",
				DetectionError: "engine crashed",
			},
			{
				Path:             writer.ReportPath("Foo_App.apk", dir),
				ArtifactPath:     "Foo_App.apk",
				PackageName:      "com.example.foo",
				Capabilities:     1,
				ExecutionTargets: []string{"arm64-v8a"},
				BundledArtifacts: 1,
				Findings:         []string{"Adware.Y", "Trojan.X"},
			},
		},
		Packed:       1,
		Malicious:    1,
		MetadataOnly: 1,
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("unexpected report summary (-want +got):\n%s", diff)
	}
}

func TestReportRequiresOutputDir(t *testing.T) {
	_, err := NewService().Report(ReportRequest{})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
