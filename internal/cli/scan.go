package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mad-scanner/internal/app"
	"mad-scanner/internal/core"
	"mad-scanner/internal/types"
)

type scanOptions struct {
	File         string
	OutDir       string
	Aapt2Path    string
	Threads      int
	MaxThreads   int
	Detector     string
	DetectorArgs []string
	Source       string
	StoreURL     string
	BrowserPath  string
	SourceDir    string
	Format       string
	TimeoutSec   int
}

func newScanCommand() *cobra.Command {
	opts := scanOptions{}
	cmd := &cobra.Command{
		Use:     "scan",
		Short:   "Download, inspect and risk-scan every application in an input list",
		PreRunE: bindOutDir,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Input list with one application name per line")
	cmd.Flags().StringVarP(&opts.OutDir, "out-dir", "o", ".", "Directory for downloaded artifacts and reports")
	cmd.Flags().StringVar(&opts.Aapt2Path, "aapt2-path", "aapt2", "Path to the aapt2 binary")
	cmd.Flags().IntVarP(&opts.Threads, "threads", "t", core.DefaultWorkers, "Number of concurrent analysis tasks")
	cmd.Flags().IntVar(&opts.MaxThreads, "max-threads", core.DefaultMaxWorkers, "Upper bound for --threads")
	cmd.Flags().StringVar(&opts.Detector, "detector", "", "Risk detection command; reports are metadata-only when unset")
	cmd.Flags().StringSliceVar(&opts.DetectorArgs, "detector-arg", nil, "Arguments passed to the detector before the artifact path")
	cmd.Flags().StringVar(&opts.Source, "source", string(types.SourceKindStore), "Artifact source (store|browser|dir)")
	cmd.Flags().StringVar(&opts.StoreURL, "store-url", "", "Base URL of the application store")
	cmd.Flags().StringVar(&opts.BrowserPath, "browser-path", "", "Chrome or Chromium binary for --source browser")
	cmd.Flags().StringVar(&opts.SourceDir, "source-dir", "", "Directory of pre-downloaded artifacts for --source dir")
	cmd.Flags().StringVar(&opts.Format, "format", string(types.ReportFormatJSON), "Report format (json|yaml)")
	cmd.Flags().IntVar(&opts.TimeoutSec, "timeout", 300, "Per-request store timeout in seconds")
	_ = viper.BindPFlag("file", cmd.Flags().Lookup("file"))
	_ = viper.BindPFlag("aapt2_path", cmd.Flags().Lookup("aapt2-path"))
	_ = viper.BindPFlag("threads", cmd.Flags().Lookup("threads"))
	_ = viper.BindPFlag("max_threads", cmd.Flags().Lookup("max-threads"))
	_ = viper.BindPFlag("detector", cmd.Flags().Lookup("detector"))
	_ = viper.BindPFlag("detector_args", cmd.Flags().Lookup("detector-arg"))
	_ = viper.BindPFlag("source", cmd.Flags().Lookup("source"))
	_ = viper.BindPFlag("store_url", cmd.Flags().Lookup("store-url"))
	_ = viper.BindPFlag("browser_path", cmd.Flags().Lookup("browser-path"))
	_ = viper.BindPFlag("source_dir", cmd.Flags().Lookup("source-dir"))
	_ = viper.BindPFlag("format", cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("timeout", cmd.Flags().Lookup("timeout"))
	return cmd
}

func runScan(ctx context.Context, cmd *cobra.Command, opts scanOptions) error {
	service := newAppService()
	result, err := service.Scan(ctx, scanRequest(cmd, opts))
	if err != nil {
		return err
	}
	for _, outcome := range result.Outcomes {
		fmt.Println(formatOutcome(outcome))
	}
	fmt.Printf("scanned: %d succeeded: %d degraded: %d failed: %d\n",
		result.Summary.Total, result.Summary.Succeeded, result.Summary.Degraded, result.Summary.Failed)
	return nil
}

func scanRequest(cmd *cobra.Command, opts scanOptions) app.ScanRequest {
	return app.ScanRequest{
		InputPath:    resolveString(cmd, opts.File, "file", "file"),
		OutputDir:    resolveString(cmd, opts.OutDir, "out_dir", "out-dir"),
		ToolPath:     resolveString(cmd, opts.Aapt2Path, "aapt2_path", "aapt2-path"),
		Workers:      resolveInt(cmd, opts.Threads, "threads", "threads"),
		MaxWorkers:   resolveInt(cmd, opts.MaxThreads, "max_threads", "max-threads"),
		DetectorPath: resolveString(cmd, opts.Detector, "detector", "detector"),
		DetectorArgs: resolveStrings(cmd, opts.DetectorArgs, "detector_args", "detector-arg"),
		Source:       types.SourceKind(resolveString(cmd, opts.Source, "source", "source")),
		StoreURL:     resolveString(cmd, opts.StoreURL, "store_url", "store-url"),
		BrowserPath:  resolveString(cmd, opts.BrowserPath, "browser_path", "browser-path"),
		SourceDir:    resolveString(cmd, opts.SourceDir, "source_dir", "source-dir"),
		Format:       types.ReportFormat(resolveString(cmd, opts.Format, "format", "format")),
		TimeoutSec:   resolveInt(cmd, opts.TimeoutSec, "timeout", "timeout"),
	}
}

func formatOutcome(outcome types.TaskOutcome) string {
	switch {
	case outcome.Degraded:
		return fmt.Sprintf("degraded %s -> %s (%s: %s)", outcome.InputName, outcome.ReportPath, outcome.FailureKind, outcome.Error)
	case outcome.Succeeded:
		return fmt.Sprintf("ok %s -> %s", outcome.InputName, outcome.ReportPath)
	default:
		return fmt.Sprintf("failed %s (%s: %s)", outcome.InputName, outcome.FailureKind, outcome.Error)
	}
}
