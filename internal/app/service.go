package app

import (
	"mad-scanner/internal/adapters"
	"mad-scanner/internal/ports"
)

// Service wires ports for the CLI. Inspector, Detector, Source and Alerts
// are optional; when nil, Scan builds them from the request.
type Service struct {
	Inputs       ports.InputListPort
	ReportReader ports.ReportReaderPort
	Inspector    ports.InspectorPort
	Detector     ports.DetectorPort
	Source       ports.ArtifactSourcePort
	Alerts       ports.AlertSinkPort
}

func NewService() Service {
	return Service{
		Inputs:       adapters.NewInputFileAdapter(),
		ReportReader: adapters.NewReportFileAdapter(""),
	}
}
