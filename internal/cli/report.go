package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mad-scanner/internal/app"
)

type reportOptions struct {
	OutDir string
}

func newReportCommand() *cobra.Command {
	opts := reportOptions{}
	cmd := &cobra.Command{
		Use:     "report",
		Short:   "Summarize the reports in an output directory",
		PreRunE: bindOutDir,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.OutDir, "out-dir", "o", ".", "Directory containing .report files")
	return cmd
}

func runReport(cmd *cobra.Command, opts reportOptions) error {
	service := newAppService()
	result, err := service.Report(app.ReportRequest{
		OutputDir: resolveString(cmd, opts.OutDir, "out_dir", "out-dir"),
	})
	if err != nil {
		return err
	}
	for _, report := range result.Reports {
		pkg := report.PackageName
		if pkg == "" {
			pkg = "-"
		}
		fmt.Printf("%s: package=%s capabilities=%d targets=%s\n",
			report.ArtifactPath, pkg, report.Capabilities, strings.Join(report.ExecutionTargets, ","))
		if report.DetectionError != "" {
			fmt.Printf("  detection failed: %s\n", report.DetectionError)
			continue
		}
		if report.BundledArtifacts > 0 {
			fmt.Printf("  packed files: %d\n", report.BundledArtifacts)
		}
		for _, finding := range report.Findings {
			fmt.Printf("  finding: %s\n", finding)
		}
	}
	fmt.Printf("reports: %d packed: %d malicious: %d metadata-only: %d\n",
		len(result.Reports), result.Packed, result.Malicious, result.MetadataOnly)
	return nil
}
